package pattern

// validate checks the post-flatten structural invariants of §3. A failure
// here indicates a compiler bug: it is never triggered by malformed input
// pattern text (that is rejected earlier, during Parse).
func validate(p *Pattern) error {
	if len(p.Elements) == 0 {
		return &invariantErr{msg: "pattern has no elements"}
	}

	finCount := 0
	finIdx := -1
	for i, e := range p.Elements {
		if e.Kind == KindFin {
			finCount++
			finIdx = i
		}
	}
	if finCount != 1 {
		return &invariantErr{msg: "pattern must have exactly one Fin element"}
	}
	if finIdx != len(p.Elements)-1 {
		return &invariantErr{msg: "Fin element must be last"}
	}
	if p.Elements[finIdx].Next != NoNext {
		return &invariantErr{msg: "Fin element must have Next == -1"}
	}

	maxDepth := 0
	for i, e := range p.Elements {
		if e.Depth > maxDepth {
			maxDepth = e.Depth
		}
		if e.Kind != KindFin {
			if e.Next < 0 || e.Next >= len(p.Elements) {
				return &invariantErr{msg: "element has out-of-range Next"}
			}
		}
		switch e.Kind {
		case KindGroupEnd:
			if e.Jump < 0 || e.Jump >= i {
				return &invariantErr{msg: "GroupEnd.Jump must point strictly earlier"}
			}
			if e.Min < 0 || (e.Max != Unbounded && (e.Max < e.Min || e.Max < 1)) {
				return &invariantErr{msg: "GroupEnd has invalid repetition bounds"}
			}
		case KindAltStart:
			if e.Jump != NoJump {
				return &invariantErr{msg: "AltStart.Jump must be unused"}
			}
		case KindVar:
			if e.VarID < 0 || e.VarID >= len(p.Variables) {
				return &invariantErr{msg: "Var element has out-of-range VarID"}
			}
		}
	}
	if maxDepth != p.MaxDepth {
		return &invariantErr{msg: "MaxDepth does not match maximum element depth"}
	}

	// Chase Next from every element; every chain must terminate at Fin.
	for i, e := range p.Elements {
		if e.Kind == KindFin {
			continue
		}
		cur := e.Next
		steps := 0
		for p.Elements[cur].Kind != KindFin {
			cur = p.Elements[cur].Next
			steps++
			if steps > len(p.Elements)+1 {
				return &invariantErr{msg: "Next chain from an element never reaches Fin"}
			}
		}
		_ = i
	}

	return nil
}

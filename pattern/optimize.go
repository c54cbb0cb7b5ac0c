package pattern

// Optimize applies the three structure-preserving transformations of
// §4.1.3, in order, and is idempotent: Optimize(Optimize(n)) produces a
// structurally equal AST to Optimize(n) (property test, spec §8 #8).
func Optimize(n Node) Node {
	n = unwrap(n)
	n = dedupAlternatives(n)
	n = fuseQuantifiers(n)
	return n
}

// unwrap collapses single-item Seq, Group{1,1}, and flattens one level of
// nested Seq/Alt, recursively.
func unwrap(n Node) Node {
	switch v := n.(type) {
	case *VarNode:
		return v
	case *GroupNode:
		content := unwrap(v.Content)
		if v.Min == 1 && v.Max == 1 {
			return content
		}
		return &GroupNode{Content: content, Min: v.Min, Max: v.Max, Reluctant: v.Reluctant}
	case *SeqNode:
		var flat []Node
		for _, item := range v.Items {
			u := unwrap(item)
			if inner, ok := u.(*SeqNode); ok {
				flat = append(flat, inner.Items...)
			} else {
				flat = append(flat, u)
			}
		}
		if len(flat) == 1 {
			return flat[0]
		}
		return &SeqNode{Items: flat}
	case *AltNode:
		var flat []*SeqNode
		for _, alt := range v.Alternatives {
			u := unwrap(alt)
			if inner, ok := u.(*AltNode); ok {
				flat = append(flat, inner.Alternatives...)
				continue
			}
			seq := asSeq(u)
			flat = append(flat, seq)
		}
		if len(flat) == 1 {
			return flat[0]
		}
		return &AltNode{Alternatives: flat}
	default:
		return n
	}
}

// dedupAlternatives drops any Alt alternative that is structurally equal to
// an earlier one, recursively through the whole tree.
func dedupAlternatives(n Node) Node {
	switch v := n.(type) {
	case *VarNode:
		return v
	case *GroupNode:
		return &GroupNode{Content: dedupAlternatives(v.Content), Min: v.Min, Max: v.Max, Reluctant: v.Reluctant}
	case *SeqNode:
		items := make([]Node, len(v.Items))
		for i, item := range v.Items {
			items[i] = dedupAlternatives(item)
		}
		return &SeqNode{Items: items}
	case *AltNode:
		var kept []*SeqNode
		for _, alt := range v.Alternatives {
			d := dedupAlternatives(alt).(*SeqNode)
			dup := false
			for _, k := range kept {
				if equalNode(k, d) {
					dup = true
					break
				}
			}
			if !dup {
				kept = append(kept, d)
			}
		}
		if len(kept) == 1 {
			return kept[0]
		}
		return &AltNode{Alternatives: kept}
	default:
		return n
	}
}

// fuseQuantifiers applies consecutive-Var fusion inside Seq, and the
// single-fixed-factor Group-of-quantified fusion, recursively.
func fuseQuantifiers(n Node) Node {
	switch v := n.(type) {
	case *VarNode:
		return v
	case *GroupNode:
		content := fuseQuantifiers(v.Content)
		if fused := fuseGroupOfQuant(v, content); fused != nil {
			return fused
		}
		return &GroupNode{Content: content, Min: v.Min, Max: v.Max, Reluctant: v.Reluctant}
	case *SeqNode:
		items := make([]Node, len(v.Items))
		for i, item := range v.Items {
			items[i] = fuseQuantifiers(item)
		}
		fused := fuseSeqVars(items)
		if len(fused) == 1 {
			return fused[0]
		}
		return &SeqNode{Items: fused}
	case *AltNode:
		alts := make([]*SeqNode, len(v.Alternatives))
		for i, alt := range v.Alternatives {
			alts[i] = asSeq(fuseQuantifiers(alt))
		}
		return &AltNode{Alternatives: alts}
	default:
		return n
	}
}

// fuseSeqVars collapses consecutive identical Var{name,1,1} (matching
// reluctant flag) runs into a single Var{name,k,k}.
func fuseSeqVars(items []Node) []Node {
	var out []Node
	i := 0
	for i < len(items) {
		v, ok := items[i].(*VarNode)
		if !ok || v.Min != 1 || v.Max != 1 {
			out = append(out, items[i])
			i++
			continue
		}
		run := 1
		j := i + 1
		for j < len(items) {
			w, ok := items[j].(*VarNode)
			if !ok || w.Name != v.Name || w.Min != 1 || w.Max != 1 || w.Reluctant != v.Reluctant {
				break
			}
			run++
			j++
		}
		if run == 1 {
			out = append(out, v)
		} else {
			out = append(out, &VarNode{Name: v.Name, Min: run, Max: run, Reluctant: v.Reluctant})
		}
		i = j
	}
	return out
}

// fuseGroupOfQuant fuses Group{outer} whose content is a single quantified
// Var or Group{inner}, provided outer.min==outer.max or inner.min==inner.max
// (the single-fixed-factor condition). Returns nil if fusion does not apply.
func fuseGroupOfQuant(outer *GroupNode, content Node) Node {
	fixedFactor := outer.Min == outer.Max
	switch inner := content.(type) {
	case *VarNode:
		if !fixedFactor && inner.Min != inner.Max {
			return nil
		}
		return &VarNode{
			Name:      inner.Name,
			Min:       mulBound(inner.Min, outer.Min),
			Max:       mulBound(inner.Max, outer.Max),
			Reluctant: outer.Reluctant,
		}
	case *GroupNode:
		if !fixedFactor && inner.Min != inner.Max {
			return nil
		}
		return &GroupNode{
			Content:   inner.Content,
			Min:       mulBound(inner.Min, outer.Min),
			Max:       mulBound(inner.Max, outer.Max),
			Reluctant: outer.Reluctant,
		}
	default:
		return nil
	}
}

func mulBound(a, b int) int {
	if a == unbounded || b == unbounded {
		return unbounded
	}
	return a * b
}

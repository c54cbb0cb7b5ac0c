package nfaexec

import (
	"github.com/coregx/rpr/internal/conv"
	"github.com/coregx/rpr/internal/sparse"
	"github.com/coregx/rpr/pattern"
)

// seqCounter mints strictly increasing sequence numbers for freshly forked
// paths. Instance-owned per spec §9's "global mutable counters" note: the
// source uses process-wide counters, this implementation scopes them to one
// Executor (reset on construction).
type seqCounter struct{ next uint64 }

func (c *seqCounter) fresh() uint64 {
	v := c.next
	c.next++
	return v
}

func resetDeeper(counts []int, depth int) {
	for d := depth + 1; d < len(counts); d++ {
		counts[d] = 0
	}
}

// atMax reports whether c has reached max, treating pattern.Unbounded (-1)
// as infinity rather than as a literal bound to compare against.
func atMax(c, max int) bool {
	return max != pattern.Unbounded && c >= max
}

// groupEndTransition applies the GroupEnd element-level rule (§4.2.1): a
// state positioned at a GroupEnd with one more iteration about to complete
// either must loop, must exit, or forks both with greedy/reluctant
// preference order. It is epsilon: it never depends on the row's trueVars,
// and is reused both by expansion (§4.2.3) and by the in-row chained-skip
// recursion that can pass through a GroupEnd before the row is consumed.
func groupEndTransition(e pattern.Element, st MatchState, seq *seqCounter) []MatchState {
	depth := e.Depth
	c := st.Counts[depth] + 1

	switch {
	case c < e.Min:
		loop := st.clone()
		loop.Counts[depth] = c
		resetDeeper(loop.Counts, depth)
		loop.ElementIndex = e.Jump
		return []MatchState{loop}

	case atMax(c, e.Max):
		exit := st.clone()
		exit.Counts[depth] = 0
		exit.ElementIndex = e.Next
		return []MatchState{exit}

	case e.Reluctant:
		// reluctant: exit (clone) first, repeat (fork) second.
		exit := st.clone()
		exit.Counts[depth] = 0
		exit.ElementIndex = e.Next

		repeat := st.clone()
		repeat.Counts[depth] = c
		resetDeeper(repeat.Counts, depth)
		repeat.ElementIndex = e.Jump
		repeat.Summaries = reseedAll(repeat.Summaries, seq.fresh)
		return []MatchState{exit, repeat}

	default:
		// greedy: repeat (clone) first, exit (fork) second.
		repeat := st.clone()
		repeat.Counts[depth] = c
		resetDeeper(repeat.Counts, depth)
		repeat.ElementIndex = e.Jump

		exit := st.clone()
		exit.Counts[depth] = 0
		exit.ElementIndex = e.Next
		exit.Summaries = reseedAll(exit.Summaries, seq.fresh)
		return []MatchState{repeat, exit}
	}
}

// newVisited allocates the per-attempt visited set a chained-skip walk
// threads through resolveEpsilon/consumeWait: one Insert per element index
// entered without consuming a row, so a GroupEnd whose content is entirely
// skippable can never be walked twice on the same attempt. pattern.validate
// does not rule that case out: a group whose content can match zero rows,
// such as "(A?)*", passes validation.
func newVisited(p *pattern.Pattern) *sparse.SparseSet {
	return sparse.NewSparseSet(conv.IntToUint32(len(p.Elements)))
}

// resolveEpsilon repeatedly applies groupEndTransition until the state
// lands on a genuine wait position (Var/AltStart) or Fin (-> Completed).
func resolveEpsilon(p *pattern.Pattern, st MatchState, seq *seqCounter, visited *sparse.SparseSet) []MatchState {
	if !visited.Insert(conv.IntToUint32(st.ElementIndex)) {
		return nil
	}
	e := p.Elements[st.ElementIndex]
	switch e.Kind {
	case pattern.KindVar, pattern.KindAltStart:
		return []MatchState{st}
	case pattern.KindFin:
		done := st.clone()
		done.ElementIndex = Completed
		return []MatchState{done}
	case pattern.KindGroupEnd:
		branches := groupEndTransition(e, st, seq)
		// Snapshot one visited-set clone per branch before recursing into
		// any of them: branch 0 mutates its set in place, and if that
		// happened before branch 1's Clone(), branch 1 would start from
		// post-mutation marks it never actually visited itself (e.g. two
		// nested GroupEnds whose loop branches both land on the same
		// shared group-start index).
		clones := make([]*sparse.SparseSet, len(branches))
		for i := range branches {
			if i == 0 {
				clones[i] = visited
			} else {
				clones[i] = visited.Clone()
			}
		}
		var out []MatchState
		for i, r := range branches {
			out = append(out, resolveEpsilon(p, r, seq, clones[i])...)
		}
		return out
	default:
		return nil
	}
}

// continueConsume resolves any GroupEnd/Fin chain reached by a chained skip
// and, if it lands on a new wait position, recurses into consumeWait to
// keep trying to consume the same row's input there (the "recursively
// attempt to consume the current input at the new element" clauses of
// §4.2.1's Var-mismatch and AltStart rules).
func continueConsume(p *pattern.Pattern, st MatchState, trueVars map[int]bool, seq *seqCounter, visited *sparse.SparseSet) []MatchState {
	var out []MatchState
	for _, r := range resolveEpsilon(p, st, seq, visited) {
		if r.ElementIndex == Completed {
			out = append(out, r)
			continue
		}
		out = append(out, consumeWait(p, r, trueVars, seq, visited)...)
	}
	return out
}

// consumeWait applies the element-level transition of §4.2.1 to a state
// positioned at a wait position (Var or AltStart), given the current row's
// true variable IDs.
func consumeWait(p *pattern.Pattern, st MatchState, trueVars map[int]bool, seq *seqCounter, visited *sparse.SparseSet) []MatchState {
	e := p.Elements[st.ElementIndex]
	switch e.Kind {
	case pattern.KindVar:
		return consumeVar(p, e, st, trueVars, seq, visited)
	case pattern.KindAltStart:
		return consumeAlt(p, e, st, trueVars, seq, visited)
	default:
		return nil
	}
}

func consumeVar(p *pattern.Pattern, e pattern.Element, st MatchState, trueVars map[int]bool, seq *seqCounter, visited *sparse.SparseSet) []MatchState {
	c := st.Counts[e.Depth]

	if trueVars[e.VarID] {
		c1 := c + 1
		matched := st.clone()
		matched.Counts[e.Depth] = c1
		matched.Summaries = withMatchAll(matched.Summaries, e.VarID)

		switch {
		case atMax(c1, e.Max):
			adv := matched
			adv.Counts[e.Depth] = 0
			adv.ElementIndex = e.Next
			return []MatchState{adv}

		case c1 >= e.Min && e.Reluctant:
			// reluctant: advance (clone) first, stay (fork) second.
			adv := matched.clone()
			adv.Counts[e.Depth] = 0
			adv.ElementIndex = e.Next

			stay := matched
			stay.Summaries = reseedAll(stay.Summaries, seq.fresh)
			return []MatchState{adv, stay}

		case c1 >= e.Min:
			// greedy: stay (clone) first, advance (fork) second.
			stay := matched.clone()

			adv := matched
			adv.Counts[e.Depth] = 0
			adv.ElementIndex = e.Next
			adv.Summaries = reseedAll(adv.Summaries, seq.fresh)
			return []MatchState{stay, adv}

		default:
			return []MatchState{matched}
		}
	}

	// mismatch
	if c >= e.Min {
		skip := st.clone()
		skip.Counts[e.Depth] = 0
		skip.ElementIndex = e.Next
		return continueConsume(p, skip, trueVars, seq, visited)
	}
	return nil
}

func consumeAlt(p *pattern.Pattern, e pattern.Element, st MatchState, trueVars map[int]bool, seq *seqCounter, visited *sparse.SparseSet) []MatchState {
	var results []MatchState
	cur := e.Next
	first := true
	for cur != pattern.NoNext {
		armElem := p.Elements[cur]
		armState := st.clone()
		if !first {
			armState.Summaries = reseedAll(armState.Summaries, seq.fresh)
		}
		armState.ElementIndex = cur

		if res := consumeWait(p, armState, trueVars, seq, visited.Clone()); len(res) > 0 {
			results = append(results, res...)
		}
		cur = armElem.Jump
		first = false
	}
	if len(results) > 0 {
		return results
	}

	// No arm could progress: try exiting the enclosing group, if any.
	if e.GroupRef == pattern.NoJump {
		return nil
	}
	ge := p.Elements[e.GroupRef]
	if st.Counts[ge.Depth] < ge.Min {
		return nil
	}
	exit := st.clone()
	exit.Counts[ge.Depth] = 0
	exit.ElementIndex = ge.Next
	return continueConsume(p, exit, trueVars, seq, visited)
}

package nfaexec

import "github.com/coregx/rpr/pattern"

// expand turns the raw post-consumption positions of a step's active
// states into the next wait frontier, per §4.2.3. GroupEnd and Fin are
// epsilon: GroupEnd applies its branching rule and re-enqueues, Fin moves
// to Completed. Var and AltStart are themselves wait positions; each also
// optionally forks an unconditional "skip" branch when its repetition
// minimum is already satisfied, enabling optional-variable/group skipping
// between rows. Processing is FIFO and merges by state hash so that
// lexical (seq) order stays deterministic.
func expand(p *pattern.Pattern, active []MatchState, seq *seqCounter) (wait []MatchState, completed []MatchState) {
	queue := append([]MatchState{}, active...)
	waitSeen := map[string]int{}
	doneSeen := map[string]int{}

	for len(queue) > 0 {
		st := queue[0]
		queue = queue[1:]

		if st.ElementIndex == Completed {
			key := st.hashKey()
			if idx, ok := doneSeen[key]; ok {
				completed[idx].Summaries = mergeSummaries(completed[idx].Summaries, st.Summaries)
			} else {
				doneSeen[key] = len(completed)
				completed = append(completed, st)
			}
			continue
		}

		e := p.Elements[st.ElementIndex]
		switch e.Kind {
		case pattern.KindFin:
			done := st.clone()
			done.ElementIndex = Completed
			queue = append(queue, done)

		case pattern.KindGroupEnd:
			queue = append(queue, groupEndTransition(e, st, seq)...)

		case pattern.KindVar:
			key := st.hashKey()
			if idx, ok := waitSeen[key]; ok {
				wait[idx].Summaries = mergeSummaries(wait[idx].Summaries, st.Summaries)
			} else {
				waitSeen[key] = len(wait)
				wait = append(wait, st)
			}
			if st.Counts[e.Depth] >= e.Min {
				skip := st.clone()
				skip.Summaries = reseedAll(skip.Summaries, seq.fresh)
				skip.Counts[e.Depth] = 0
				skip.ElementIndex = e.Next
				queue = append(queue, skip)
			}

		case pattern.KindAltStart:
			key := st.hashKey()
			if idx, ok := waitSeen[key]; ok {
				wait[idx].Summaries = mergeSummaries(wait[idx].Summaries, st.Summaries)
			} else {
				waitSeen[key] = len(wait)
				wait = append(wait, st)
			}
			if e.GroupRef != pattern.NoJump {
				ge := p.Elements[e.GroupRef]
				if st.Counts[ge.Depth] >= ge.Min {
					skip := st.clone()
					skip.Summaries = reseedAll(skip.Summaries, seq.fresh)
					skip.Counts[ge.Depth] = 0
					skip.ElementIndex = ge.Next
					queue = append(queue, skip)
				}
			}
		}
	}
	return wait, completed
}

// filterNonViable applies §4.2.5: when the row matched none of the
// pattern's variables, a state survives only if it can make progress
// without input (a repetition minimum already satisfied). This stops
// unbounded epsilon-only churn on rows the pattern has no stake in.
func filterNonViable(p *pattern.Pattern, wait []MatchState) []MatchState {
	out := make([]MatchState, 0, len(wait))
	for _, st := range wait {
		e := p.Elements[st.ElementIndex]
		switch e.Kind {
		case pattern.KindVar:
			if st.Counts[e.Depth] >= e.Min {
				out = append(out, st)
			}
		case pattern.KindAltStart:
			if e.GroupRef != pattern.NoJump {
				ge := p.Elements[e.GroupRef]
				if st.Counts[ge.Depth] >= ge.Min {
					out = append(out, st)
				}
			}
		}
	}
	return out
}

// stepRow runs one row's consumption (§4.2.2) followed by expansion
// (§4.2.3) for a context's current wait states, returning the new wait
// frontier and all states that completed (whether directly via Fin during
// consumption, or reached during expansion).
func stepRow(p *pattern.Pattern, waitStates []MatchState, trueVars map[int]bool, anyPatternVarTrue bool, seq *seqCounter) (wait []MatchState, completed []MatchState) {
	var active []MatchState
	for _, st := range waitStates {
		for _, r := range consumeWait(p, st, trueVars, seq, newVisited(p)) {
			if r.ElementIndex == Completed {
				completed = append(completed, r)
			} else {
				active = append(active, r)
			}
		}
	}
	active = dedupStates(active)
	completed = dedupStates(completed)

	expandedWait, expandedDone := expand(p, active, seq)
	wait = dedupStates(expandedWait)
	completed = dedupStates(append(completed, expandedDone...))

	if !anyPatternVarTrue {
		wait = filterNonViable(p, wait)
	}
	return wait, completed
}

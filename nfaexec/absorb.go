package nfaexec

import (
	"sort"

	"github.com/coregx/rpr/pattern"
)

// Absorption records one (earlier, later) pair where later was dropped
// because earlier dominates it, for the diagnostic snapshot stream.
type Absorption struct {
	EarlierID, LaterID int
}

// absorbContexts runs context absorption (§4.3): sorts live, non-completed
// contexts by match_start ascending, and for each pair where an earlier
// context dominates a later one, drops the later. Returns the dropped
// contexts' IDs for the snapshot stream; dropped contexts are marked Dead
// in place (callers remove dead contexts uniformly afterward).
func absorbContexts(p *pattern.Pattern, contexts []*MatchContext) []Absorption {
	var live []*MatchContext
	for _, c := range contexts {
		if !c.Dead && !c.IsCompleted {
			live = append(live, c)
		}
	}
	sort.SliceStable(live, func(i, j int) bool { return live[i].MatchStart < live[j].MatchStart })

	var absorptions []Absorption
	for i, earlier := range live {
		if earlier.Dead {
			continue
		}
		for _, later := range live[i+1:] {
			if later.Dead || later.MatchStart <= earlier.MatchStart {
				continue
			}
			if dominates(p, earlier, later) {
				later.Dead = true
				absorptions = append(absorptions, Absorption{EarlierID: earlier.ID, LaterID: later.ID})
			}
		}
	}
	return absorptions
}

// dominates reports whether earlier dominates later: every state in later
// has a matching-position state in earlier whose counts are at least as
// advanced (§4.3).
func dominates(p *pattern.Pattern, earlier, later *MatchContext) bool {
	for _, ls := range later.States {
		found := false
		for _, es := range earlier.States {
			if es.ElementIndex == ls.ElementIndex && countsDominate(p.Elements[es.ElementIndex], es, ls) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func countsDominate(e pattern.Element, es, ls MatchState) bool {
	if e.Max == pattern.Unbounded {
		for d := range es.Counts {
			if es.Counts[d] < ls.Counts[d] {
				return false
			}
		}
		return true
	}
	for d := range es.Counts {
		if es.Counts[d] != ls.Counts[d] {
			return false
		}
	}
	return true
}

package nfaexec

import "github.com/coregx/rpr/pattern"

// MatchContext is one match attempt: all states that started on the same
// row, per spec §3.
type MatchContext struct {
	ID          int
	MatchStart  int
	MatchEnd    int // -1 until a completion exists
	IsCompleted bool
	Dead        bool

	States         []MatchState
	CompletedPaths []Path

	fallback greedyFallback
	reported bool // true once this context has appeared in a RowResult.JustCompleted
}

type greedyFallback struct {
	set  bool
	path Path
}

func newContext(id, matchStart int, states []MatchState) *MatchContext {
	return &MatchContext{ID: id, MatchStart: matchStart, MatchEnd: -1, States: states}
}

// canConsume reports whether st (positioned at a wait position) can consume
// something from trueVars: a Var directly, or an AltStart through any of
// its arms, searched recursively through nested alternations (§4.2.6 step
// 1, §4.2.8's "live states can actually progress" check).
func canConsume(p *pattern.Pattern, st MatchState, trueVars map[int]bool) bool {
	e := p.Elements[st.ElementIndex]
	switch e.Kind {
	case pattern.KindVar:
		return trueVars[e.VarID]
	case pattern.KindAltStart:
		cur := e.Next
		for cur != pattern.NoNext {
			arm := st
			arm.ElementIndex = cur
			if canConsume(p, arm, trueVars) {
				return true
			}
			cur = p.Elements[cur].Jump
		}
		return false
	default:
		return false
	}
}

func collectPaths(states []MatchState) []Path {
	var out []Path
	for _, st := range states {
		for _, sm := range st.Summaries {
			out = append(out, sm.Paths...)
		}
	}
	return out
}

// dedupPaths drops paths whose variable-ID sequence duplicates an earlier
// one in the slice, preserving first-insertion order (§4.2.4 path dedup,
// §8 property 5).
func dedupPaths(paths []Path) []Path {
	seen := make(map[string]struct{}, len(paths))
	out := make([]Path, 0, len(paths))
	for _, p := range paths {
		k := p.key()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, p)
	}
	return out
}

// rankBest picks the lexically-first path by (length desc, seq asc), per
// §4.2.8's ranking rule.
func rankBest(paths []Path) (best Path, ok bool) {
	for _, p := range paths {
		if !ok || len(p.Vars) > len(best.Vars) || (len(p.Vars) == len(best.Vars) && p.Seq < best.Seq) {
			best, ok = p, true
		}
	}
	return best, ok
}

// appendCompleted merges newly-available paths into CompletedPaths,
// deduplicating against what is already there and preserving order.
func (ctx *MatchContext) appendCompleted(paths []Path) {
	seen := make(map[string]struct{}, len(ctx.CompletedPaths))
	for _, p := range ctx.CompletedPaths {
		seen[p.key()] = struct{}{}
	}
	for _, p := range paths {
		k := p.key()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		ctx.CompletedPaths = append(ctx.CompletedPaths, p)
	}
}

// step runs one row's consumption+expansion (§4.2.2/4.2.3) against the
// context's current wait states, applies greedy deferral/fallback
// (§4.2.8), and updates match_end/is_completed/Dead (§4.2.6/4.2.7).
func (ctx *MatchContext) step(p *pattern.Pattern, trueVars map[int]bool, anyPatternVarTrue bool, seq *seqCounter, patternReluctant bool) {
	oldStates := ctx.States
	wait, completedStates := stepRow(p, ctx.States, trueVars, anyPatternVarTrue, seq)
	ctx.States = wait

	newPaths := dedupPaths(collectPaths(completedStates))

	liveCanProgress := false
	for _, st := range oldStates {
		if canConsume(p, st, trueVars) {
			liveCanProgress = true
			break
		}
	}

	switch {
	case patternReluctant:
		// Reluctant patterns accept the first completion unconditionally;
		// deferral never applies (§4.2.8).
		ctx.appendCompleted(newPaths)

	case len(ctx.States) > 0 && liveCanProgress && anyPatternVarTrue:
		// Live branches remain, at least one of them could actually consume
		// this row, and this row had some pattern variable true at all
		// (§4.2.8): a completion reached this row is only a candidate,
		// recorded as the greedy fallback in case every live branch
		// eventually dies without completing further.
		if best, ok := rankBest(newPaths); ok {
			if !ctx.fallback.set || len(best.Vars) > len(ctx.fallback.path.Vars) {
				ctx.fallback = greedyFallback{set: true, path: best}
			}
		}

	default:
		// Otherwise (§4.2.9): no live branch can still grow this match, so
		// finalize now — commit whatever was deferred, reset the fallback
		// so a later, unrelated completion never silently overwrites it,
		// then fold in anything newly completed this same row.
		if ctx.fallback.set {
			ctx.appendCompleted([]Path{ctx.fallback.path})
			ctx.fallback = greedyFallback{}
		}
		ctx.appendCompleted(newPaths)
	}

	if len(ctx.CompletedPaths) > 0 {
		maxLen := 0
		for _, pth := range ctx.CompletedPaths {
			if len(pth.Vars) > maxLen {
				maxLen = len(pth.Vars)
			}
		}
		ctx.MatchEnd = ctx.MatchStart + maxLen - 1
	}

	if len(ctx.States) == 0 {
		if len(ctx.CompletedPaths) > 0 {
			ctx.IsCompleted = true
		} else {
			ctx.Dead = true
		}
	}
}

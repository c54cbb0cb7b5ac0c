// Package emit implements the emitter (C3): turns completed contexts into
// emissions under SKIP/OUTPUT policies, in start order, deterministically,
// per spec §4.4. It is decoupled from package nfaexec's internal types —
// callers feed it ContextState values built from whatever a MatchContext
// looks like this row, keeping C2 and C3 independent packages composed by
// the top-level driver.
package emit

import (
	"sort"

	"github.com/coregx/rpr/nfaexec"
)

// ContextState is a point-in-time view of a context for the emitter: one
// entry per context that completed this row.
type ContextState struct {
	ID         int
	MatchStart int
	MatchEnd   int
	Paths      []nfaexec.Path // completed_paths, in the order the executor produced them
}

// Emission is one emitted match: {context_id, match_start, match_end,
// paths}, per spec §4.4's emission shape. Paths is one entry under
// OutputOneRow, every completed path in seq order under OutputAllRows.
type Emission struct {
	ContextID  int
	MatchStart int
	MatchEnd   int
	Paths      [][]int // variable IDs; resolve via pattern.Variables for names
}

type queueEntry struct {
	ctx ContextState
}

// Emitter holds the cross-row queueing state of §4.4: completed contexts
// awaiting emission, and the high-water mark of what has already gone out.
type Emitter struct {
	cfg            Config
	queue          []queueEntry
	lastEmittedEnd int
}

// Config configures the emitter's two independent policies.
type Config struct {
	SkipMode   nfaexec.SkipMode
	OutputMode nfaexec.OutputMode
}

// DefaultConfig returns {PAST_LAST, ONE_ROW}.
func DefaultConfig() Config {
	return Config{SkipMode: nfaexec.SkipPastLast, OutputMode: nfaexec.OutputOneRow}
}

// NewEmitter constructs an Emitter with cfg. lastEmittedEnd starts at -1
// (nothing emitted yet), per spec §4.4.
func NewEmitter(cfg Config) *Emitter {
	return &Emitter{cfg: cfg, lastEmittedEnd: -1}
}

// Step processes one row's newly-completed contexts against the current
// set of live (non-completed) contexts' match_starts, per §4.4. Returns
// every emission produced this row, and the IDs of contexts that were
// either emitted or discarded — callers (the top-level driver) must drop
// those from the executor via Executor.DropContext.
func (em *Emitter) Step(justCompleted []ContextState, liveMatchStarts []int) (emissions []Emission, resolvedIDs []int) {
	for _, c := range justCompleted {
		em.queue = append(em.queue, queueEntry{ctx: c})
	}

	earliestStart := -1
	hasActiveAtEarliest := false
	for _, ms := range liveMatchStarts {
		if earliestStart == -1 || ms < earliestStart {
			earliestStart = ms
		}
	}
	for _, e := range em.queue {
		if earliestStart == -1 || e.ctx.MatchStart < earliestStart {
			earliestStart = e.ctx.MatchStart
		}
	}
	for _, ms := range liveMatchStarts {
		if ms == earliestStart {
			hasActiveAtEarliest = true
			break
		}
	}

	// Immediate-emit check (spec §4.4, and the Open Question at §9 about
	// its scope): a just-completed context at earliestStart with no active
	// context there may emit ahead of strict queue order.
	for _, c := range justCompleted {
		if c.MatchStart == earliestStart && !hasActiveAtEarliest {
			if em.tryEmitNow(c) {
				if e, ok := em.emitEntry(c); ok {
					emissions = append(emissions, e)
				}
				resolvedIDs = append(resolvedIDs, c.ID)
				em.removeFromQueue(c.ID)
			}
		}
	}

	activeCtxStart := -1
	for _, ms := range liveMatchStarts {
		if activeCtxStart == -1 || ms < activeCtxStart {
			activeCtxStart = ms
		}
	}

	sort.SliceStable(em.queue, func(i, j int) bool { return em.queue[i].ctx.MatchStart < em.queue[j].ctx.MatchStart })

	var remaining []queueEntry
	for i := 0; i < len(em.queue); i++ {
		entry := em.queue[i]
		c := entry.ctx
		if activeCtxStart != -1 && c.MatchStart >= activeCtxStart {
			remaining = append(remaining, entry)
			continue
		}
		if em.cfg.SkipMode == nfaexec.SkipPastLast && c.MatchStart <= em.lastEmittedEnd {
			resolvedIDs = append(resolvedIDs, c.ID) // discarded: overlaps a previous emission
			continue
		}
		if em.cfg.SkipMode == nfaexec.SkipToNext && activeCtxStart != -1 && c.MatchEnd >= activeCtxStart {
			// The queue is sorted by match_start only, so match_end is not
			// monotone across entries: this entry blocks on an active
			// context, and so might every entry after it. Stop the scan
			// entirely rather than skipping just this one, or a later
			// entry with a smaller match_end could emit out of start order.
			remaining = append(remaining, em.queue[i:]...)
			break
		}
		if e, ok := em.emitEntry(c); ok {
			emissions = append(emissions, e)
		}
		em.lastEmittedEnd = c.MatchEnd
		resolvedIDs = append(resolvedIDs, c.ID)
	}
	em.queue = remaining

	return emissions, resolvedIDs
}

// tryEmitNow applies the PAST_LAST overlap check to an immediate-emit
// candidate; TO_NEXT has nothing extra to check at this point since there
// is, by construction, no active context at its start.
func (em *Emitter) tryEmitNow(c ContextState) bool {
	if em.cfg.SkipMode == nfaexec.SkipPastLast && c.MatchStart <= em.lastEmittedEnd {
		return false
	}
	return true
}

func (em *Emitter) emitEntry(c ContextState) (Emission, bool) {
	if len(c.Paths) == 0 {
		return Emission{}, false
	}
	em.lastEmittedEnd = c.MatchEnd
	var paths [][]int
	switch em.cfg.OutputMode {
	case nfaexec.OutputAllRows:
		sorted := append([]nfaexec.Path(nil), c.Paths...)
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Seq < sorted[j].Seq })
		for _, p := range sorted {
			paths = append(paths, p.Vars)
		}
	default: // OutputOneRow
		best := c.Paths[0]
		for _, p := range c.Paths[1:] {
			if p.Seq < best.Seq {
				best = p
			}
		}
		paths = [][]int{best.Vars}
	}
	return Emission{ContextID: c.ID, MatchStart: c.MatchStart, MatchEnd: c.MatchEnd, Paths: paths}, true
}

func (em *Emitter) removeFromQueue(id int) {
	out := em.queue[:0]
	for _, e := range em.queue {
		if e.ctx.ID != id {
			out = append(out, e)
		}
	}
	em.queue = out
}

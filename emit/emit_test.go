package emit

import (
	"testing"

	"github.com/coregx/rpr/nfaexec"
)

func cs(id, start, end int, vars ...int) ContextState {
	return ContextState{ID: id, MatchStart: start, MatchEnd: end, Paths: []nfaexec.Path{{Seq: uint64(id), Vars: vars}}}
}

func TestEmitter_ImmediateEmit_NoActiveContextAtEarliestStart(t *testing.T) {
	em := NewEmitter(DefaultConfig())
	emissions, resolved := em.Step([]ContextState{cs(1, 0, 0, 0)}, nil)
	if len(emissions) != 1 {
		t.Fatalf("got %d emissions, want 1 (immediate emit, no active context blocking it): %+v", len(emissions), emissions)
	}
	if emissions[0].ContextID != 1 {
		t.Errorf("ContextID = %d, want 1", emissions[0].ContextID)
	}
	if len(resolved) != 1 || resolved[0] != 1 {
		t.Errorf("resolvedIDs = %v, want [1]", resolved)
	}
}

func TestEmitter_QueuesWhenActiveContextBlocksEarliestStart(t *testing.T) {
	em := NewEmitter(DefaultConfig())
	// A live context also starts at 0: the completion at 0 cannot jump the
	// queue, since a longer match starting at the same row might still land.
	emissions, resolved := em.Step([]ContextState{cs(1, 0, 0, 0)}, []int{0})
	if len(emissions) != 0 {
		t.Fatalf("got %d emissions, want 0 (blocked by an active context at the same start): %+v", len(emissions), emissions)
	}
	if len(resolved) != 0 {
		t.Errorf("resolvedIDs = %v, want none yet", resolved)
	}
	if len(em.queue) != 1 {
		t.Fatalf("expected the completion to be queued, got queue len %d", len(em.queue))
	}
}

func TestEmitter_SkipPastLast_DiscardsOverlapping(t *testing.T) {
	em := NewEmitter(Config{SkipMode: nfaexec.SkipPastLast, OutputMode: nfaexec.OutputOneRow})
	em.lastEmittedEnd = 5
	em.queue = []queueEntry{{ctx: cs(1, 2, 6, 0)}} // match_start(2) <= lastEmittedEnd(5): overlaps
	emissions, resolved := em.Step(nil, nil)
	if len(emissions) != 0 {
		t.Fatalf("got %d emissions, want 0 (overlapping match discarded): %+v", len(emissions), emissions)
	}
	if len(resolved) != 1 || resolved[0] != 1 {
		t.Errorf("resolvedIDs = %v, want [1] (discarded, still resolved)", resolved)
	}
	if len(em.queue) != 0 {
		t.Errorf("expected queue drained, got %d entries", len(em.queue))
	}
}

func TestEmitter_SkipToNext_StopsScanRatherThanSkippingBlockedEntry(t *testing.T) {
	// ctxA(start=0,end=5) precedes ctxB(start=1,end=1) in the start-sorted
	// queue. An active context at start=2 means ctxA's end(5) >= 2 must
	// block the entire scan, including ctxB — even though ctxB's own
	// end(1) would not itself block, match_end is not monotone across the
	// start-sorted queue, so a later, smaller match_end must never emit
	// ahead of an earlier, still-blocked one (start-monotone invariant).
	em := NewEmitter(Config{SkipMode: nfaexec.SkipToNext, OutputMode: nfaexec.OutputOneRow})
	em.queue = []queueEntry{
		{ctx: cs(1, 0, 5, 0)},
		{ctx: cs(2, 1, 1, 1)},
	}
	emissions, resolved := em.Step(nil, []int{2})
	if len(emissions) != 0 {
		t.Fatalf("got %d emissions, want 0 (scan must stop at ctxA, never reach ctxB): %+v", len(emissions), emissions)
	}
	if len(resolved) != 0 {
		t.Errorf("resolvedIDs = %v, want none (both entries must remain queued)", resolved)
	}
	if len(em.queue) != 2 {
		t.Fatalf("expected both entries still queued, got %d", len(em.queue))
	}
}

func TestEmitter_SkipToNext_EmitsOnceUnblocked(t *testing.T) {
	em := NewEmitter(Config{SkipMode: nfaexec.SkipToNext, OutputMode: nfaexec.OutputOneRow})
	em.queue = []queueEntry{{ctx: cs(1, 0, 1, 0)}}
	// No active context at all now: match_end(1) cannot be >= a nonexistent
	// active_ctx_start, so the entry is free to emit.
	emissions, resolved := em.Step(nil, nil)
	if len(emissions) != 1 {
		t.Fatalf("got %d emissions, want 1: %+v", len(emissions), emissions)
	}
	if len(resolved) != 1 || resolved[0] != 1 {
		t.Errorf("resolvedIDs = %v, want [1]", resolved)
	}
}

func TestEmitter_OutputAllRows_EmitsEverySortedBySeq(t *testing.T) {
	em := NewEmitter(Config{SkipMode: nfaexec.SkipPastLast, OutputMode: nfaexec.OutputAllRows})
	c := ContextState{ID: 1, MatchStart: 0, MatchEnd: 0, Paths: []nfaexec.Path{
		{Seq: 5, Vars: []int{1}},
		{Seq: 1, Vars: []int{0}},
	}}
	emissions, _ := em.Step([]ContextState{c}, nil)
	if len(emissions) != 1 {
		t.Fatalf("got %d emissions, want 1", len(emissions))
	}
	if len(emissions[0].Paths) != 2 {
		t.Fatalf("got %d paths, want 2 (all rows)", len(emissions[0].Paths))
	}
	if emissions[0].Paths[0][0] != 0 || emissions[0].Paths[1][0] != 1 {
		t.Errorf("Paths = %v, want seq-sorted ([0] then [1])", emissions[0].Paths)
	}
}

func TestEmitter_OutputOneRow_EmitsOnlyLowestSeq(t *testing.T) {
	em := NewEmitter(Config{SkipMode: nfaexec.SkipPastLast, OutputMode: nfaexec.OutputOneRow})
	c := ContextState{ID: 1, MatchStart: 0, MatchEnd: 0, Paths: []nfaexec.Path{
		{Seq: 5, Vars: []int{1}},
		{Seq: 1, Vars: []int{0}},
	}}
	emissions, _ := em.Step([]ContextState{c}, nil)
	if len(emissions) != 1 {
		t.Fatalf("got %d emissions, want 1", len(emissions))
	}
	if len(emissions[0].Paths) != 1 || emissions[0].Paths[0][0] != 0 {
		t.Errorf("Paths = %v, want exactly the lowest-seq path [0]", emissions[0].Paths)
	}
}

func TestEmitter_EmitEntry_EmptyPathsDoesNotEmit(t *testing.T) {
	em := NewEmitter(DefaultConfig())
	emissions, resolved := em.Step([]ContextState{{ID: 1, MatchStart: 0, MatchEnd: 0}}, nil)
	if len(emissions) != 0 {
		t.Fatalf("got %d emissions, want 0 (no completed paths to emit)", len(emissions))
	}
	if len(resolved) != 1 {
		t.Errorf("resolvedIDs = %v, want [1] (still resolved, just nothing emitted)", resolved)
	}
}

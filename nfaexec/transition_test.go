package nfaexec

import (
	"testing"

	"github.com/coregx/rpr/pattern"
)

// onePath builds a MatchState at elementIndex with a single fresh-seq path.
func onePath(elementIndex int, counts []int, seq uint64) MatchState {
	return MatchState{ElementIndex: elementIndex, Counts: append([]int(nil), counts...), Summaries: []Summary{{Paths: []Path{{Seq: seq}}}}}
}

func TestConsumeVar_GreedyOrdersStayBeforeAdvance(t *testing.T) {
	// A+ : Var{min:1,max:inf}, Next points at Fin(index1).
	p := &pattern.Pattern{Elements: []pattern.Element{
		{Kind: pattern.KindVar, VarID: 0, Min: 1, Max: pattern.Unbounded, Next: 1, Jump: pattern.NoJump},
		{Kind: pattern.KindFin, Next: pattern.NoNext, Jump: pattern.NoJump},
	}}
	seq := &seqCounter{next: 1}   // seq 0 already belongs to st's path
	st := onePath(0, []int{1}, 0) // already matched once (count=1)
	out := consumeVar(p, p.Elements[0], st, map[int]bool{0: true}, seq, newVisited(p))
	if len(out) != 2 {
		t.Fatalf("got %d results, want 2 (stay, advance): %+v", len(out), out)
	}
	if out[0].ElementIndex != 0 {
		t.Errorf("result[0].ElementIndex = %d, want 0 (stay first, greedy)", out[0].ElementIndex)
	}
	if out[1].ElementIndex != 1 {
		t.Errorf("result[1].ElementIndex = %d, want 1 (advance second, forked)", out[1].ElementIndex)
	}
	if out[0].Summaries[0].Paths[0].Seq == out[1].Summaries[0].Paths[0].Seq {
		t.Error("stay and advance must carry distinct seqs (advance is a fork)")
	}
}

func TestConsumeVar_ReluctantOrdersAdvanceBeforeStay(t *testing.T) {
	p := &pattern.Pattern{Elements: []pattern.Element{
		{Kind: pattern.KindVar, VarID: 0, Min: 1, Max: pattern.Unbounded, Reluctant: true, Next: 1, Jump: pattern.NoJump},
		{Kind: pattern.KindFin, Next: pattern.NoNext, Jump: pattern.NoJump},
	}}
	seq := &seqCounter{}
	st := onePath(0, []int{0}, 0)
	out := consumeVar(p, p.Elements[0], st, map[int]bool{0: true}, seq, newVisited(p))
	if len(out) != 2 {
		t.Fatalf("got %d results, want 2 (advance, stay): %+v", len(out), out)
	}
	if out[0].ElementIndex != 1 {
		t.Errorf("result[0].ElementIndex = %d, want 1 (advance first, reluctant)", out[0].ElementIndex)
	}
	if out[1].ElementIndex != 0 {
		t.Errorf("result[1].ElementIndex = %d, want 0 (stay second, forked)", out[1].ElementIndex)
	}
}

func TestConsumeVar_UnboundedMaxNeverForcesAdvance(t *testing.T) {
	// A+ matched many times in a row must keep forking a "stay" branch
	// instead of being forced past max, since pattern.Unbounded (-1) is not
	// a literal bound.
	p := &pattern.Pattern{Elements: []pattern.Element{
		{Kind: pattern.KindVar, VarID: 0, Min: 1, Max: pattern.Unbounded, Next: 1, Jump: pattern.NoJump},
		{Kind: pattern.KindFin, Next: pattern.NoNext, Jump: pattern.NoJump},
	}}
	seq := &seqCounter{}
	st := onePath(0, []int{1000}, 0)
	out := consumeVar(p, p.Elements[0], st, map[int]bool{0: true}, seq, newVisited(p))
	if len(out) != 2 {
		t.Fatalf("got %d results at count 1000, want 2 (still forking stay/advance): %+v", len(out), out)
	}
	if out[0].ElementIndex != 0 {
		t.Errorf("result[0].ElementIndex = %d, want 0 (stay), unbounded max must never force a single advance", out[0].ElementIndex)
	}
}

func TestGroupEndTransition_UnboundedMaxNeverForcesExit(t *testing.T) {
	ge := pattern.Element{Kind: pattern.KindGroupEnd, Depth: 0, Min: 1, Max: pattern.Unbounded, Next: 5, Jump: 0}
	seq := &seqCounter{}
	st := onePath(2, []int{500}, 0)
	out := groupEndTransition(ge, st, seq)
	if len(out) != 2 {
		t.Fatalf("got %d results, want 2 (repeat, exit), unbounded max must never force a single exit: %+v", len(out), out)
	}
}

func TestConsumeVar_AtMaxForcesSingleAdvance(t *testing.T) {
	// Var{min:1,max:1}: reaching max always yields exactly one result, no fork.
	p := &pattern.Pattern{Elements: []pattern.Element{
		{Kind: pattern.KindVar, VarID: 0, Min: 1, Max: 1, Next: 1, Jump: pattern.NoJump},
		{Kind: pattern.KindFin, Next: pattern.NoNext, Jump: pattern.NoJump},
	}}
	seq := &seqCounter{}
	st := onePath(0, []int{0}, 0)
	out := consumeVar(p, p.Elements[0], st, map[int]bool{0: true}, seq, newVisited(p))
	if len(out) != 1 {
		t.Fatalf("got %d results, want 1 (deterministic advance at max): %+v", len(out), out)
	}
	if out[0].ElementIndex != 1 {
		t.Errorf("ElementIndex = %d, want 1", out[0].ElementIndex)
	}
}

func TestConsumeVar_MismatchBelowMinDies(t *testing.T) {
	p := &pattern.Pattern{Elements: []pattern.Element{
		{Kind: pattern.KindVar, VarID: 0, Min: 1, Max: 1, Next: 1, Jump: pattern.NoJump},
		{Kind: pattern.KindFin, Next: pattern.NoNext, Jump: pattern.NoJump},
	}}
	seq := &seqCounter{}
	st := onePath(0, []int{0}, 0)
	out := consumeVar(p, p.Elements[0], st, map[int]bool{1: true}, seq, newVisited(p)) // trueVars has a different var
	if out != nil {
		t.Errorf("got %d results, want 0 (min not satisfied, no variable matched)", len(out))
	}
}

func TestConsumeVar_MismatchAtMinSkipsToNext(t *testing.T) {
	// A? B : A is Var{min:0,max:1}, B is Var{min:1,max:1} at Next.
	p := &pattern.Pattern{Elements: []pattern.Element{
		{Kind: pattern.KindVar, VarID: 0, Min: 0, Max: 1, Next: 1, Jump: pattern.NoJump},
		{Kind: pattern.KindVar, VarID: 1, Min: 1, Max: 1, Next: 2, Jump: pattern.NoJump},
		{Kind: pattern.KindFin, Next: pattern.NoNext, Jump: pattern.NoJump},
	}}
	seq := &seqCounter{}
	st := onePath(0, []int{0}, 0)
	// Row matches B, not A: A's mismatch-at-min-satisfied skips straight to B
	// and recursively consumes the same row there.
	out := consumeVar(p, p.Elements[0], st, map[int]bool{1: true}, seq, newVisited(p))
	if len(out) != 1 {
		t.Fatalf("got %d results, want 1 (chained skip consumes B too): %+v", len(out), out)
	}
	if out[0].ElementIndex != 2 {
		t.Errorf("ElementIndex = %d, want 2 (Fin, after consuming B)", out[0].ElementIndex)
	}
}

func TestConsumeAlt_TriesArmsInOrder(t *testing.T) {
	// AltStart -> arm0(VarID0) -jump-> arm1(VarID1) -jump-> NoJump
	p := &pattern.Pattern{Elements: []pattern.Element{
		{Kind: pattern.KindAltStart, Next: 1, Jump: pattern.NoJump, GroupRef: pattern.NoJump},
		{Kind: pattern.KindVar, VarID: 0, Min: 1, Max: 1, Next: 3, Jump: 2},
		{Kind: pattern.KindVar, VarID: 1, Min: 1, Max: 1, Next: 3, Jump: pattern.NoJump},
		{Kind: pattern.KindFin, Next: pattern.NoNext, Jump: pattern.NoJump},
	}}
	seq := &seqCounter{}
	st := onePath(0, []int{0}, 0)
	out := consumeAlt(p, p.Elements[0], st, map[int]bool{1: true}, seq, newVisited(p)) // only arm1's var is true
	if len(out) != 1 {
		t.Fatalf("got %d results, want 1 (only arm1 matches): %+v", len(out), out)
	}
	if out[0].ElementIndex != 3 {
		t.Errorf("ElementIndex = %d, want 3 (Fin, via arm1)", out[0].ElementIndex)
	}
}

func TestConsumeAlt_NoArmMatches_FallsThroughGroupExit(t *testing.T) {
	// (A | B){0,1} C: neither arm matches, but the group's min (0) is already
	// satisfied, so AltStart falls through the group exit and on to C.
	p := &pattern.Pattern{Elements: []pattern.Element{
		{Kind: pattern.KindAltStart, Depth: 1, Next: 1, Jump: pattern.NoJump, GroupRef: 3},
		{Kind: pattern.KindVar, VarID: 0, Depth: 1, Min: 1, Max: 1, Next: 3, Jump: 2},
		{Kind: pattern.KindVar, VarID: 1, Depth: 1, Min: 1, Max: 1, Next: 3, Jump: pattern.NoJump},
		{Kind: pattern.KindGroupEnd, Depth: 0, Min: 0, Max: 1, Next: 4, Jump: 0},
		{Kind: pattern.KindVar, VarID: 2, Depth: 0, Min: 1, Max: 1, Next: 5, Jump: pattern.NoJump},
		{Kind: pattern.KindFin, Next: pattern.NoNext, Jump: pattern.NoJump},
	}}
	seq := &seqCounter{}
	st := onePath(0, []int{0, 0}, 0)
	out := consumeAlt(p, p.Elements[0], st, map[int]bool{2: true}, seq, newVisited(p)) // only C (varID2) is true
	if len(out) != 1 {
		t.Fatalf("got %d results, want 1 (group-exit chain reaches C then Fin): %+v", len(out), out)
	}
	if out[0].ElementIndex != 5 {
		t.Errorf("ElementIndex = %d, want 5 (Fin, after consuming C)", out[0].ElementIndex)
	}
}

func TestGroupEndTransition_BelowMinMustLoop(t *testing.T) {
	ge := pattern.Element{Kind: pattern.KindGroupEnd, Depth: 0, Min: 2, Max: 3, Next: 5, Jump: 0}
	seq := &seqCounter{}
	st := onePath(2, []int{0}, 0) // counts[0]=0, c=1 after increment, still < min(2)
	out := groupEndTransition(ge, st, seq)
	if len(out) != 1 {
		t.Fatalf("got %d results, want 1 (must loop): %+v", len(out), out)
	}
	if out[0].ElementIndex != 0 {
		t.Errorf("ElementIndex = %d, want 0 (jump back to group start)", out[0].ElementIndex)
	}
	if out[0].Counts[0] != 1 {
		t.Errorf("Counts[0] = %d, want 1", out[0].Counts[0])
	}
}

func TestGroupEndTransition_AtMaxMustExit(t *testing.T) {
	ge := pattern.Element{Kind: pattern.KindGroupEnd, Depth: 0, Min: 2, Max: 3, Next: 5, Jump: 0}
	seq := &seqCounter{}
	st := onePath(2, []int{2}, 0) // c = 3, equals max
	out := groupEndTransition(ge, st, seq)
	if len(out) != 1 {
		t.Fatalf("got %d results, want 1 (must exit at max): %+v", len(out), out)
	}
	if out[0].ElementIndex != 5 {
		t.Errorf("ElementIndex = %d, want 5 (Next)", out[0].ElementIndex)
	}
	if out[0].Counts[0] != 0 {
		t.Errorf("Counts[0] = %d, want reset to 0", out[0].Counts[0])
	}
}

func TestGroupEndTransition_GreedyOrdersRepeatBeforeExit(t *testing.T) {
	ge := pattern.Element{Kind: pattern.KindGroupEnd, Depth: 0, Min: 2, Max: 3, Next: 5, Jump: 0}
	seq := &seqCounter{}
	st := onePath(2, []int{1}, 0) // c becomes 2: within [min,max), both loop and exit are valid
	out := groupEndTransition(ge, st, seq)
	if len(out) != 2 {
		t.Fatalf("got %d results, want 2 (repeat, exit): %+v", len(out), out)
	}
	if out[0].ElementIndex != 0 {
		t.Errorf("result[0].ElementIndex = %d, want 0 (repeat first, greedy)", out[0].ElementIndex)
	}
	if out[1].ElementIndex != 5 {
		t.Errorf("result[1].ElementIndex = %d, want 5 (exit second, forked)", out[1].ElementIndex)
	}
}

func TestResolveEpsilon_NestedGroupEndsForkingToSharedIndex(t *testing.T) {
	// ((A?){1,2}){1,2}: the inner and outer GroupEnd both loop back to
	// index 0 (the inner group has no content of its own besides A, so its
	// start and the outer group's start coincide). A state parked at the
	// inner GroupEnd about to fork must be able to reach index 0 via the
	// inner loop-branch (another A?) and, independently, via the outer
	// exit-then-loop branch (another full inner-group iteration) without
	// either spuriously shadowing the other.
	p := &pattern.Pattern{Elements: []pattern.Element{
		{Kind: pattern.KindVar, VarID: 0, Depth: 2, Min: 0, Max: 1, Next: 1, Jump: pattern.NoJump},
		{Kind: pattern.KindGroupEnd, Depth: 1, Min: 1, Max: 2, Next: 2, Jump: 0},
		{Kind: pattern.KindGroupEnd, Depth: 0, Min: 1, Max: 2, Next: 3, Jump: 0},
		{Kind: pattern.KindFin, Next: pattern.NoNext, Jump: pattern.NoJump},
	}}
	seq := &seqCounter{}
	st := onePath(1, []int{0, 0, 1}, 0) // at the inner GroupEnd, one A already matched
	out := resolveEpsilon(p, st, seq, newVisited(p))

	if len(out) != 3 {
		t.Fatalf("got %d results, want 3 (inner loop, outer loop, exit to Fin): %+v", len(out), out)
	}

	var sawInnerLoop, sawOuterLoop, sawExit bool
	for _, r := range out {
		switch {
		case r.ElementIndex == 0 && r.Counts[0] == 0 && r.Counts[1] == 1:
			sawInnerLoop = true
		case r.ElementIndex == 0 && r.Counts[0] == 1 && r.Counts[1] == 0:
			sawOuterLoop = true
		case r.ElementIndex == Completed:
			sawExit = true
		}
	}
	if !sawInnerLoop {
		t.Error("missing inner-loop continuation (ElementIndex=0, Counts=[0,1,*]): dropped by a contaminated visited clone")
	}
	if !sawOuterLoop {
		t.Error("missing outer-loop continuation (ElementIndex=0, Counts=[1,0,*]): dropped by a contaminated visited clone")
	}
	if !sawExit {
		t.Error("missing exit-to-Fin completion")
	}
}

func TestGroupEndTransition_ReluctantOrdersExitBeforeRepeat(t *testing.T) {
	ge := pattern.Element{Kind: pattern.KindGroupEnd, Depth: 0, Min: 2, Max: 3, Reluctant: true, Next: 5, Jump: 0}
	seq := &seqCounter{}
	st := onePath(2, []int{1}, 0)
	out := groupEndTransition(ge, st, seq)
	if len(out) != 2 {
		t.Fatalf("got %d results, want 2 (exit, repeat): %+v", len(out), out)
	}
	if out[0].ElementIndex != 5 {
		t.Errorf("result[0].ElementIndex = %d, want 5 (exit first, reluctant)", out[0].ElementIndex)
	}
	if out[1].ElementIndex != 0 {
		t.Errorf("result[1].ElementIndex = %d, want 0 (repeat second, forked)", out[1].ElementIndex)
	}
}

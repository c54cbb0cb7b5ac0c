// Package nfaexec implements the NFA executor (C2): per-row state
// evolution, context lifecycle, state merging, and absorption, per spec
// §4.2–§4.3. It is driven one row at a time by ProcessRow and never looks
// ahead; package emit (C3) turns its completed contexts into emissions.
package nfaexec

import "github.com/coregx/rpr/pattern"

// Executor runs the row-by-row simulation for one compiled Pattern. One
// instance per partition/stream; all counters (context IDs, path seqs) are
// instance-owned and reset only at construction, per spec §9's note that
// the source's process-wide counters should not be.
type Executor struct {
	pattern *pattern.Pattern

	contexts  []*MatchContext
	nextCtxID int
	seq       seqCounter

	lastRow int
	started bool

	history []RowResult
}

// NewExecutor constructs an Executor for p. It takes no Config: the
// matching semantics in this package do not vary by SKIP/OUTPUT mode,
// which only package emit applies.
func NewExecutor(p *pattern.Pattern) *Executor {
	return &Executor{pattern: p, lastRow: -1}
}

// RowResult is the per-row outcome handed to package emit: every context
// that just completed this row, plus every still-live context's current
// match_start (emit needs this to compute earliest_start/has_active).
type RowResult struct {
	Row             int
	JustCompleted   []CompletedContext
	LiveMatchStarts []int // match_start of every live, non-completed context
	Absorptions     []Absorption
	DeadContextIDs  []int
}

// CompletedContext is one context that reached is_completed this row.
type CompletedContext struct {
	ID         int
	MatchStart int
	MatchEnd   int
	Paths      []Path // completed_paths, in seq order is the caller's job to sort
}

// ProcessRow advances the simulation by one row. rowIndex must be exactly
// one greater than the previous call's (or 0 for the first call); trueVars
// is the set of variable IDs true for this row (names not in the pattern's
// alphabet must already have been filtered out by the caller, per §6).
func (e *Executor) ProcessRow(rowIndex int, trueVars map[int]bool) (RowResult, error) {
	if !e.started {
		if rowIndex != 0 {
			return RowResult{}, &RowError{Got: rowIndex, Want: 0}
		}
		e.started = true
	} else if rowIndex != e.lastRow+1 {
		return RowResult{}, &RowError{Got: rowIndex, Want: e.lastRow + 1}
	}
	e.lastRow = rowIndex

	anyPatternVarTrue := false
	for v := range trueVars {
		if v >= 0 && v < len(e.pattern.Variables) {
			anyPatternVarTrue = true
			break
		}
	}

	// Step 1: try to start a new context.
	if created := e.tryStartContext(rowIndex, trueVars, anyPatternVarTrue); created != nil {
		e.contexts = append(e.contexts, created)
	}

	// Step 2: progress every existing context that didn't just start.
	for _, ctx := range e.contexts {
		if ctx.MatchStart == rowIndex || ctx.Dead || ctx.IsCompleted {
			continue
		}
		ctx.step(e.pattern, trueVars, anyPatternVarTrue, &e.seq, e.pattern.Reluctant)
	}

	// Step 3: absorption.
	absorptions := absorbContexts(e.pattern, e.contexts)

	// Step 4: gather this row's outcome for package emit.
	result := RowResult{Row: rowIndex, Absorptions: absorptions}
	var remaining []*MatchContext
	for _, ctx := range e.contexts {
		switch {
		case ctx.Dead:
			result.DeadContextIDs = append(result.DeadContextIDs, ctx.ID)
		case ctx.IsCompleted:
			if !ctx.reported {
				ctx.reported = true
				result.JustCompleted = append(result.JustCompleted, CompletedContext{
					ID: ctx.ID, MatchStart: ctx.MatchStart, MatchEnd: ctx.MatchEnd,
					Paths: append([]Path(nil), ctx.CompletedPaths...),
				})
			}
			remaining = append(remaining, ctx) // emit package decides removal timing
		default:
			result.LiveMatchStarts = append(result.LiveMatchStarts, ctx.MatchStart)
			remaining = append(remaining, ctx)
		}
	}
	e.contexts = remaining

	e.history = append(e.history, result)
	return result, nil
}

// DropContext removes a context the caller (package emit, via the
// top-level Engine) has finished with — either emitted or discarded. The
// executor itself never decides emission timing.
func (e *Executor) DropContext(id int) {
	out := e.contexts[:0]
	for _, c := range e.contexts {
		if c.ID != id {
			out = append(out, c)
		}
	}
	e.contexts = out
}

func (e *Executor) tryStartContext(rowIndex int, trueVars map[int]bool, anyPatternVarTrue bool) *MatchContext {
	init := MatchState{ElementIndex: 0, Counts: make([]int, e.pattern.MaxDepth+1), Summaries: []Summary{newSummary(e.seq.fresh())}}
	candidates, completedAtStart := expand(e.pattern, []MatchState{init}, &e.seq)
	// completedAtStart holds zero-row completions reached by skipping every
	// element (e.g. expanding "A?" with A false): §4.2.6 step 1 only ever
	// promotes a row to a new context when some candidate can actually
	// consume it, so these are never used to seed a context on their own.
	_ = completedAtStart

	var viable []MatchState
	for _, st := range candidates {
		if canConsume(e.pattern, st, trueVars) {
			viable = append(viable, st)
		}
	}
	if len(viable) == 0 {
		return nil
	}

	ctx := newContext(e.nextCtxID, rowIndex, viable)
	e.nextCtxID++
	ctx.step(e.pattern, trueVars, anyPatternVarTrue, &e.seq, e.pattern.Reluctant)
	return ctx
}

// Pattern returns the compiled pattern this executor runs.
func (e *Executor) Pattern() *pattern.Pattern { return e.pattern }

// Package rpr implements a row pattern recognition engine in the spirit of
// SQL's MATCH_RECOGNIZE PATTERN clause: given a compiled pattern and a
// stream of rows (each reduced to the set of pattern variables true for
// it), it runs a parallel-branching NFA over rows rather than bytes and
// emits matched variable sequences under configurable SKIP/OUTPUT
// policies. See package pattern for compilation (C1), package nfaexec for
// the row-by-row executor (C2), and package emit for the emission queue
// (C3); this file wires the three into one convenience entry point, the
// way the teacher corpus's top-level regex.go composes its own compiler,
// engine and match types for callers who don't need the subpackages
// directly.
package rpr

import (
	"github.com/coregx/rpr/emit"
	"github.com/coregx/rpr/nfaexec"
	"github.com/coregx/rpr/pattern"
)

// Engine drives one compiled pattern over a row stream: ProcessRow feeds
// one row at a time to the executor, then the emitter, returning whatever
// matches are ready to hand to a caller this row.
type Engine struct {
	pattern  *pattern.Pattern
	executor *nfaexec.Executor
	emitter  *emit.Emitter
}

// Config bundles the emitter's two independent policies, mirroring
// emit.Config one level up so callers of this package don't need to
// import package emit just to build one.
type Config = emit.Config

// DefaultConfig returns {PAST_LAST, ONE_ROW}, spec §4.4's defaults.
func DefaultConfig() Config {
	return emit.DefaultConfig()
}

// Compile parses src into a Pattern and builds an Engine ready to run
// over a row stream, using cfg's SKIP/OUTPUT policies.
func Compile(src string, cfg Config) (*Engine, error) {
	p, err := pattern.Compile(src)
	if err != nil {
		return nil, err
	}
	return NewEngine(p, cfg), nil
}

// NewEngine builds an Engine from an already-compiled Pattern.
func NewEngine(p *pattern.Pattern, cfg Config) *Engine {
	return &Engine{
		pattern:  p,
		executor: nfaexec.NewExecutor(p),
		emitter:  emit.NewEmitter(cfg),
	}
}

// Pattern returns the compiled pattern this engine runs.
func (eng *Engine) Pattern() *pattern.Pattern { return eng.pattern }

// ProcessRow advances the engine by one row: trueVars is the set of
// pattern variable IDs true for this row (resolve names via
// Pattern().VariableID, or use package ingest to derive this set from raw
// row text). rowIndex must follow the same strictly-sequential rule as
// nfaexec.Executor.ProcessRow.
//
// Every resolved context (emitted or discarded) is dropped from the
// executor before ProcessRow returns, so callers never need to call
// nfaexec.Executor.DropContext themselves.
func (eng *Engine) ProcessRow(rowIndex int, trueVars map[int]bool) ([]emit.Emission, error) {
	res, err := eng.executor.ProcessRow(rowIndex, trueVars)
	if err != nil {
		return nil, err
	}

	justCompleted := make([]emit.ContextState, len(res.JustCompleted))
	for i, cc := range res.JustCompleted {
		justCompleted[i] = emit.ContextState{
			ID: cc.ID, MatchStart: cc.MatchStart, MatchEnd: cc.MatchEnd, Paths: cc.Paths,
		}
	}

	// res.DeadContextIDs are already gone from the executor's own context
	// list (ProcessRow drops them before returning); only emitter-resolved
	// IDs (emitted or skip-discarded) still need an explicit drop.
	emissions, resolvedIDs := eng.emitter.Step(justCompleted, res.LiveMatchStarts)
	for _, id := range resolvedIDs {
		eng.executor.DropContext(id)
	}
	return emissions, nil
}

// Names resolves an emission's variable-ID path to variable names, in
// match order.
func (eng *Engine) Names(path []int) []string {
	names := make([]string, len(path))
	for i, id := range path {
		if id >= 0 && id < len(eng.pattern.Variables) {
			names[i] = eng.pattern.Variables[id]
		}
	}
	return names
}

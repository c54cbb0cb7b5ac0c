// Package ingest maps raw row input (CSV records, free text) to the
// trueVars set an nfaexec.Executor needs per row (spec §6's "external
// collaborator" contract). The engine itself never parses text or
// evaluates DEFINE predicates; ingest is a reference driver-side
// component, not part of the matching core.
package ingest

import (
	"github.com/coregx/ahocorasick"
	"github.com/coregx/rpr/pattern"
)

// BuildVariableAutomaton compiles an Aho-Corasick automaton over a
// pattern's variable names, so a single scan of a row's raw text field
// finds every variable name occurring in it. Mirrors the teacher's
// large-literal-alternation strategy (coregex's meta.buildStrategyEngines
// building one ahocorasick.Automaton from literal.Seq), here used for
// row ingestion rather than regex literal-alternation dispatch.
func BuildVariableAutomaton(p *pattern.Pattern) (*ahocorasick.Automaton, error) {
	builder := ahocorasick.NewBuilder()
	for _, name := range p.Variables {
		builder.AddPattern([]byte(name))
	}
	return builder.Build()
}

// VarsFromText scans text with automaton and returns every pattern
// variable name found in it, in first-occurrence order with duplicates
// removed. Since the automaton was built exclusively from variables'
// own names, a matched span's bytes equal the variable name verbatim —
// no separate pattern-ID lookup is needed.
func VarsFromText(automaton *ahocorasick.Automaton, text []byte) []string {
	var found []string
	seen := make(map[string]struct{})

	pos := 0
	for pos <= len(text) {
		m := automaton.Find(text, pos)
		if m == nil {
			break
		}
		name := string(text[m.Start:m.End])
		if _, ok := seen[name]; !ok {
			seen[name] = struct{}{}
			found = append(found, name)
		}
		if m.End <= pos {
			pos++ // guard against a zero-width match stalling the scan
			continue
		}
		pos = m.End
	}
	return found
}

// TrueVarSet resolves a slice of variable names against a pattern's
// variable alphabet, producing the map[int]bool form nfaexec.Executor.
// ProcessRow expects. Unknown names are silently skipped: a row's raw
// text may legitimately mention words that are not pattern variables.
func TrueVarSet(p *pattern.Pattern, names []string) map[int]bool {
	out := make(map[int]bool, len(names))
	for _, n := range names {
		if id, ok := p.VariableID(n); ok {
			out[id] = true
		}
	}
	return out
}

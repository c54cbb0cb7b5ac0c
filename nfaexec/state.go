package nfaexec

import (
	"strconv"
	"strings"
)

// Completed is the element-index sentinel meaning a state has reached Fin.
const Completed = -1

// Path is one candidate match: the variable IDs consumed in order, one per
// row, tagged with the sequence number assigned when it was first
// materialized (§3's Sequence number invariant). Seq is preserved across
// clones and reassigned fresh only when the path is produced by a fork.
type Path struct {
	Seq  uint64
	Vars []int
}

func (p Path) clone() Path {
	vars := make([]int, len(p.Vars))
	copy(vars, p.Vars)
	return Path{Seq: p.Seq, Vars: vars}
}

// withVar returns a copy of p with v appended, same Seq (clone semantics;
// callers that need fork semantics reassign Seq separately).
func (p Path) withVar(v int) Path {
	vars := make([]int, len(p.Vars)+1)
	copy(vars, p.Vars)
	vars[len(p.Vars)] = v
	return Path{Seq: p.Seq, Vars: vars}
}

// key is the exact-sequence dedup key used by path merging (§4.2.4).
func (p Path) key() string {
	var b strings.Builder
	for i, v := range p.Vars {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(v))
	}
	return b.String()
}

// Names resolves p.Vars through the given alphabet.
func (p Path) Names(variables []string) []string {
	names := make([]string, len(p.Vars))
	for i, v := range p.Vars {
		names[i] = variables[v]
	}
	return names
}

// Summary bundles an aggregate key (reserved for SUM/COUNT/FIRST/LAST/MIN/MAX;
// always "" in this engine, which does not evaluate MEASURES) with the
// ordered, deduplicated list of paths that must travel and merge with it.
type Summary struct {
	Aggregates string
	Paths      []Path
}

func newSummary(seq uint64) Summary {
	return Summary{Paths: []Path{{Seq: seq}}}
}

func (s Summary) clone() Summary {
	paths := make([]Path, len(s.Paths))
	for i, p := range s.Paths {
		paths[i] = p.clone()
	}
	return Summary{Aggregates: s.Aggregates, Paths: paths}
}

// withMatch returns a copy of s with v appended to every one of its paths;
// every active path extends by the matched variable (spec §9 design note).
func (s Summary) withMatch(v int) Summary {
	paths := make([]Path, len(s.Paths))
	for i, p := range s.Paths {
		paths[i] = p.withVar(v)
	}
	return Summary{Aggregates: s.Aggregates, Paths: paths}
}

// reseed replaces the Seq of every path in s with a freshly minted one (used
// when s belongs to a forked branch, per the Sequence number invariant).
func (s Summary) reseed(next func() uint64) Summary {
	paths := make([]Path, len(s.Paths))
	for i, p := range s.Paths {
		paths[i] = Path{Seq: next(), Vars: p.Vars}
	}
	return Summary{Aggregates: s.Aggregates, Paths: paths}
}

func cloneSummaries(in []Summary) []Summary {
	out := make([]Summary, len(in))
	for i, s := range in {
		out[i] = s.clone()
	}
	return out
}

func withMatchAll(in []Summary, v int) []Summary {
	out := make([]Summary, len(in))
	for i, s := range in {
		out[i] = s.withMatch(v)
	}
	return out
}

func reseedAll(in []Summary, next func() uint64) []Summary {
	out := make([]Summary, len(in))
	for i, s := range in {
		out[i] = s.reseed(next)
	}
	return out
}

// mergeSummaries merges src's summaries into dst in place (§4.2.4): a
// summary with an equal Aggregates key has its paths merged; otherwise a
// deep copy of the summary is appended.
func mergeSummaries(dst []Summary, src []Summary) []Summary {
	for _, s := range src {
		idx := -1
		for i := range dst {
			if dst[i].Aggregates == s.Aggregates {
				idx = i
				break
			}
		}
		if idx == -1 {
			dst = append(dst, s.clone())
			continue
		}
		dst[idx] = mergePaths(dst[idx], s)
	}
	return dst
}

func mergePaths(dst, src Summary) Summary {
	seen := make(map[string]struct{}, len(dst.Paths))
	for _, p := range dst.Paths {
		seen[p.key()] = struct{}{}
	}
	for _, p := range src.Paths {
		k := p.key()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		dst.Paths = append(dst.Paths, p.clone())
	}
	return dst
}

// MatchState is a single live point in the simulation, per spec §3.
type MatchState struct {
	ElementIndex int // Completed once the state has reached Fin
	Counts       []int
	Summaries    []Summary
}

func (s MatchState) clone() MatchState {
	counts := make([]int, len(s.Counts))
	copy(counts, s.Counts)
	return MatchState{ElementIndex: s.ElementIndex, Counts: counts, Summaries: cloneSummaries(s.Summaries)}
}

// hashKey identifies state equivalence (§3): element_index and counts,
// ignoring summaries.
func (s MatchState) hashKey() string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(s.ElementIndex))
	b.WriteByte(':')
	for i, c := range s.Counts {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(c))
	}
	return b.String()
}

// dedupStates deduplicates states by hashKey, preserving first-insertion
// order and merging summaries on collision (spec §4.2.2 step 2).
func dedupStates(states []MatchState) []MatchState {
	seen := make(map[string]int, len(states))
	out := make([]MatchState, 0, len(states))
	for _, st := range states {
		key := st.hashKey()
		if idx, ok := seen[key]; ok {
			out[idx].Summaries = mergeSummaries(out[idx].Summaries, st.Summaries)
			continue
		}
		seen[key] = len(out)
		out = append(out, st)
	}
	return out
}

// Package pattern implements the compiler (C1) for the row-pattern-recognition
// engine: tokenize → AST → optimize → flat Pattern, per spec §4.1.
package pattern

import (
	"fmt"
	"strings"

	"github.com/coregx/rpr/internal/conv"
)

// ElementKind tags the variant of a compiled PatternElement. This replaces
// the source engine's signed-varId encoding (varId >= 0 for Var, -1/-2/-3 as
// markers) with an explicit tagged variant, per design note in spec §9.
type ElementKind uint8

const (
	// KindVar consumes one row, matching a single variable.
	KindVar ElementKind = iota
	// KindAltStart begins an alternation; Next is the first arm's first
	// element, each arm's first element chains to the next arm via its own
	// Jump, and AltStart's own Jump is unused.
	KindAltStart
	// KindGroupEnd closes a repeatable group; Jump points to the group start.
	KindGroupEnd
	// KindFin is the single sentinel marking pattern completion.
	KindFin
)

func (k ElementKind) String() string {
	switch k {
	case KindVar:
		return "Var"
	case KindAltStart:
		return "AltStart"
	case KindGroupEnd:
		return "GroupEnd"
	case KindFin:
		return "Fin"
	default:
		return "Unknown"
	}
}

// NoJump/NoNext mark an unused or not-yet-resolved link. Resolved, valid
// compiled patterns never leave Next as NoNext (the flattener rewrites every
// placeholder to a real index before returning).
const (
	NoNext = -1
	NoJump = -1
)

// Unbounded represents an infinite repetition upper bound.
const Unbounded = unbounded

// Element is one slot in a compiled Pattern's flat program, per spec §3.
type Element struct {
	Kind      ElementKind
	VarID     int // valid only when Kind == KindVar
	Depth     int // nesting depth, indexes MatchState.Counts
	Min, Max  int // repetition bounds; Max may be Unbounded
	Next      int // index to advance to; resolved to Fin's index if nothing else
	Jump      int // meaning depends on Kind: see doc on each Kind above
	Reluctant bool

	// GroupRef is valid only when Kind == KindAltStart: the index of the
	// nearest enclosing GroupEnd, or NoJump if the alternation is not
	// nested in any repeatable group. The executor's AltStart transition
	// (§4.2.1) uses it to check whether a failed arm search may instead
	// exit the enclosing group. This is the typed accessor the design
	// notes (§9) ask for in place of a raw integer reused across kinds.
	GroupRef int
}

// Pattern is a compiled program: a flat element array plus the metadata the
// executor needs to run it.
type Pattern struct {
	Elements  []Element
	Variables []string // varID = index
	MaxDepth  int
	Reluctant bool // true iff any element is reluctant

	varIndex map[string]int
}

// FinIndex returns the index of the pattern's single Fin sentinel.
func (p *Pattern) FinIndex() int {
	return len(p.Elements) - 1
}

// VariableID resolves a variable name to its compiled ID.
func (p *Pattern) VariableID(name string) (int, bool) {
	id, ok := p.varIndex[name]
	return id, ok
}

// String renders a human-readable disassembly of the compiled program:
// index, kind, depth, bounds, links, one element per line.
func (p *Pattern) String() string {
	var b strings.Builder
	for i, e := range p.Elements {
		fmt.Fprintf(&b, "%3d: %-8s depth=%d", i, e.Kind, e.Depth)
		if e.Kind == KindVar {
			fmt.Fprintf(&b, " var=%s", p.Variables[e.VarID])
		}
		if e.Kind != KindFin {
			fmt.Fprintf(&b, " min=%d max=%s next=%d jump=%d", e.Min, boundStr(e.Max), e.Next, e.Jump)
		}
		if e.Reluctant {
			b.WriteString(" reluctant")
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func boundStr(n int) string {
	if n == unbounded {
		return "∞"
	}
	return fmt.Sprintf("%d", n)
}

// varTable interns variable names to small IDs in order of first appearance.
type varTable struct {
	names []string
	index map[string]int
}

func newVarTable() *varTable {
	return &varTable{index: make(map[string]int)}
}

func (t *varTable) id(name string) int {
	if id, ok := t.index[name]; ok {
		return id
	}
	id := len(t.names)
	t.names = append(t.names, name)
	t.index[name] = id
	_ = conv.IntToUint16(id) // enforce the 16-bit variable-ID budget
	return id
}

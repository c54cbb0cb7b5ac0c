package pattern

import (
	"strconv"
	"strings"
)

// ASTString renders an AST back to pattern-string form. For any AST produced
// by Parse, re-parsing ASTString's output yields a structurally equal AST
// (spec §8 property 9, modulo whitespace); ASTString always emits the
// canonical form (a single space between sequence items and no other
// whitespace), so round-tripping is exact.
func ASTString(n Node) string {
	var b strings.Builder
	writeNode(&b, n, false)
	return b.String()
}

// writeNode writes n into b. parenAlt, when true, forces an Alt to be
// wrapped in parentheses even at quantifier-bound 1,1 (needed when n is
// itself one item of an enclosing Seq, since bare "a|b" inside a Seq would
// re-parse as the whole alternation rather than one concatenated term).
func writeNode(b *strings.Builder, n Node, parenAlt bool) {
	switch v := n.(type) {
	case *VarNode:
		b.WriteString(v.Name)
		writeQuant(b, v.Min, v.Max, v.Reluctant)
	case *GroupNode:
		b.WriteByte('(')
		writeNode(b, v.Content, false)
		b.WriteByte(')')
		writeQuant(b, v.Min, v.Max, v.Reluctant)
	case *SeqNode:
		for i, item := range v.Items {
			if i > 0 {
				b.WriteByte(' ')
			}
			_, isAlt := item.(*AltNode)
			writeNode(b, item, isAlt)
		}
	case *AltNode:
		if parenAlt {
			b.WriteByte('(')
		}
		for i, alt := range v.Alternatives {
			if i > 0 {
				b.WriteByte('|')
			}
			writeNode(b, alt, false)
		}
		if parenAlt {
			b.WriteByte(')')
		}
	}
}

// writeQuant writes the canonical quantifier suffix for (min,max), if any.
func writeQuant(b *strings.Builder, min, max int, reluctant bool) {
	switch {
	case min == 1 && max == 1 && !reluctant:
		return
	case min == 1 && max == 1:
		b.WriteString("{1}")
	case min == 0 && max == 1:
		b.WriteByte('?')
	case min == 0 && max == unbounded:
		b.WriteByte('*')
	case min == 1 && max == unbounded:
		b.WriteByte('+')
	case max == unbounded:
		b.WriteByte('{')
		b.WriteString(strconv.Itoa(min))
		b.WriteString(",}")
	case min == max:
		b.WriteByte('{')
		b.WriteString(strconv.Itoa(min))
		b.WriteByte('}')
	default:
		b.WriteByte('{')
		b.WriteString(strconv.Itoa(min))
		b.WriteByte(',')
		b.WriteString(strconv.Itoa(max))
		b.WriteByte('}')
	}
	if reluctant {
		b.WriteByte('?')
	}
}

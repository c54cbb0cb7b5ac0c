package pattern

// Node is an AST node: Var, Group, Seq, or Alt. It is a closed sum type —
// callers switch on the concrete type, not an interface method.
type Node interface {
	astNode()
}

// VarNode is a single pattern variable reference with its own repetition bounds.
type VarNode struct {
	Name      string
	Min, Max  int // Max == unbounded means infinity
	Reluctant bool
}

// GroupNode is a parenthesized sub-pattern with its own repetition bounds.
type GroupNode struct {
	Content   Node
	Min, Max  int
	Reluctant bool
}

// SeqNode is an ordered concatenation. Order is significant for lexical order.
type SeqNode struct {
	Items []Node
}

// AltNode is an ordered disjunction; each alternative is itself a SeqNode.
// Order is significant: it determines arm-preference in nfaexec's consumeAlt.
type AltNode struct {
	Alternatives []*SeqNode
}

func (*VarNode) astNode()   {}
func (*GroupNode) astNode() {}
func (*SeqNode) astNode()   {}
func (*AltNode) astNode()   {}

// equalNode reports deep structural equality, used by alternative dedup.
func equalNode(a, b Node) bool {
	switch av := a.(type) {
	case *VarNode:
		bv, ok := b.(*VarNode)
		return ok && av.Name == bv.Name && av.Min == bv.Min && av.Max == bv.Max && av.Reluctant == bv.Reluctant
	case *GroupNode:
		bv, ok := b.(*GroupNode)
		return ok && av.Min == bv.Min && av.Max == bv.Max && av.Reluctant == bv.Reluctant && equalNode(av.Content, bv.Content)
	case *SeqNode:
		bv, ok := b.(*SeqNode)
		if !ok || len(av.Items) != len(bv.Items) {
			return false
		}
		for i := range av.Items {
			if !equalNode(av.Items[i], bv.Items[i]) {
				return false
			}
		}
		return true
	case *AltNode:
		bv, ok := b.(*AltNode)
		if !ok || len(av.Alternatives) != len(bv.Alternatives) {
			return false
		}
		for i := range av.Alternatives {
			if !equalNode(av.Alternatives[i], bv.Alternatives[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

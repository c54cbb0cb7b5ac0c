package pattern

// Compile turns a pattern string into a compiled Pattern: tokenize → parse →
// optimize → flatten, per spec §4.1. Returns a *SyntaxError for any grammar
// violation, or *invariantErr if the flattener produces a structurally
// inconsistent program (an internal compiler bug, not a user error).
func Compile(src string) (*Pattern, error) {
	ast, err := Parse(src)
	if err != nil {
		return nil, err
	}
	return CompileAST(Optimize(ast))
}

// CompileAST flattens an already-parsed (and optionally optimized) AST into
// a Pattern, skipping the tokenize/parse step. Exposed so tools and tests
// can exercise compilation and optimization independently (spec §8
// properties 8 and 9 need exactly this split).
func CompileAST(ast Node) (*Pattern, error) {
	c := &compiler{vars: newVarTable()}
	rootBox := NoJump
	start, dangling := c.flatten(ast, 0, &rootBox)
	finIdx := c.emit(Element{Kind: KindFin, Next: NoNext, Jump: NoJump})
	c.patch(dangling, finIdx)
	_ = start // the executor always begins simulation at element 0

	for _, ref := range c.pendingGroupRefs {
		c.elements[ref.idx].GroupRef = *ref.box
	}

	p := &Pattern{
		Elements:  c.elements,
		Variables: c.vars.names,
		MaxDepth:  c.maxDepth,
		Reluctant: c.reluctant,
		varIndex:  c.vars.index,
	}
	if err := validate(p); err != nil {
		return nil, err
	}
	return p, nil
}

type pendingGroupRef struct {
	idx int  // AltStart element index
	box *int // resolves to nearest enclosing GroupEnd index once known, or stays NoJump
}

type compiler struct {
	elements         []Element
	vars             *varTable
	maxDepth         int
	reluctant        bool
	pendingGroupRefs []pendingGroupRef
}

func (c *compiler) emit(e Element) int {
	idx := len(c.elements)
	c.elements = append(c.elements, e)
	if e.Depth > c.maxDepth {
		c.maxDepth = e.Depth
	}
	if e.Reluctant {
		c.reluctant = true
	}
	return idx
}

func (c *compiler) patch(dangling []int, target int) {
	for _, idx := range dangling {
		c.elements[idx].Next = target
	}
}

// flatten emits n's elements at the given depth and returns its start index
// and the list of element indices whose Next field is not yet resolved (the
// caller must patch them to whatever follows n in its enclosing context).
// enclosing points at the nearest enclosing group's eventual GroupEnd index
// (still NoJump if not yet known, or permanently NoJump at top level).
func (c *compiler) flatten(n Node, depth int, enclosing *int) (start int, dangling []int) {
	switch v := n.(type) {
	case *VarNode:
		id := c.vars.id(v.Name)
		idx := c.emit(Element{
			Kind: KindVar, VarID: id, Depth: depth,
			Min: v.Min, Max: v.Max, Next: NoNext, Jump: NoJump, Reluctant: v.Reluctant,
		})
		return idx, []int{idx}

	case *GroupNode:
		if v.Min == 1 && v.Max == 1 {
			// Pure grouping, no repetition: no GroupEnd, content belongs to
			// whatever already encloses this Group.
			return c.flatten(v.Content, depth+1, enclosing)
		}
		box := NoJump
		contentStart, contentDangling := c.flatten(v.Content, depth+1, &box)
		geIdx := c.emit(Element{
			Kind: KindGroupEnd, Depth: depth,
			Min: v.Min, Max: v.Max, Next: NoNext, Jump: contentStart, Reluctant: v.Reluctant,
		})
		box = geIdx
		c.patch(contentDangling, geIdx)
		return contentStart, []int{geIdx}

	case *SeqNode:
		start, dangling = c.flatten(v.Items[0], depth, enclosing)
		for _, item := range v.Items[1:] {
			itemStart, itemDangling := c.flatten(item, depth, enclosing)
			c.patch(dangling, itemStart)
			dangling = itemDangling
		}
		return start, dangling

	case *AltNode:
		altStartIdx := c.emit(Element{Kind: KindAltStart, Depth: depth, Next: NoNext, Jump: NoJump})
		c.pendingGroupRefs = append(c.pendingGroupRefs, pendingGroupRef{idx: altStartIdx, box: enclosing})

		var armStarts []int
		var allDangling []int
		for _, alt := range v.Alternatives {
			armStart, armDangling := c.flatten(alt, depth+1, enclosing)
			armStarts = append(armStarts, armStart)
			allDangling = append(allDangling, armDangling...)
		}
		c.elements[altStartIdx].Next = armStarts[0]
		for i := 0; i < len(armStarts)-1; i++ {
			c.elements[armStarts[i]].Jump = armStarts[i+1]
		}
		c.elements[armStarts[len(armStarts)-1]].Jump = NoJump
		return altStartIdx, allDangling

	default:
		panic("pattern: unknown AST node type")
	}
}

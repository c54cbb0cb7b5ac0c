package pattern

// Parse compiles a pattern string into an AST, applying the grammar and
// context-sensitive rejections of §4.1.1. It does not optimize or flatten;
// use Compile for that.
func Parse(src string) (Node, error) {
	toks, err := tokenize(src)
	if err != nil {
		return nil, withPattern(err, src)
	}
	p := &parser{toks: toks, src: src}
	node, err := p.parseAlt(true)
	if err != nil {
		return nil, withPattern(err, src)
	}
	if p.peek().kind != tokEOF {
		return nil, withPattern(syntaxErr(p.peek().offset, "unexpected trailing token"), src)
	}
	return node, nil
}

// withPattern fills in a *SyntaxError's Pattern field with the full source
// it was parsed from. Every SyntaxError is constructed deep inside the
// tokenizer or parser without access to the original string; Parse is the
// one place that has it, so it stamps the error here on the way out.
func withPattern(err error, src string) error {
	if se, ok := err.(*SyntaxError); ok {
		se.Pattern = src
	}
	return err
}

type parser struct {
	toks []token
	pos  int
	src  string
}

func (p *parser) peek() token { return p.toks[p.pos] }
func (p *parser) advance() token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

// parseAlt parses alt := seq ('|' seq)*, rejecting leading/trailing/doubled
// '|' and empty alternatives. topLevel marks the whole-pattern call; it is
// not consulted, and the grammar and error messages are the same either way.
func (p *parser) parseAlt(topLevel bool) (Node, error) {
	if p.peek().kind == tokAlt {
		return nil, syntaxErr(p.peek().offset, "leading | is not allowed")
	}
	first, err := p.parseSeq()
	if err != nil {
		return nil, err
	}
	alts := []*SeqNode{asSeq(first)}
	for p.peek().kind == tokAlt {
		barOffset := p.peek().offset
		p.advance()
		if p.peek().kind == tokAlt {
			return nil, syntaxErr(p.peek().offset, "empty alternative between || is not allowed")
		}
		if p.peek().kind == tokRParen || p.peek().kind == tokEOF {
			return nil, syntaxErr(barOffset, "trailing | is not allowed")
		}
		next, err := p.parseSeq()
		if err != nil {
			return nil, err
		}
		alts = append(alts, asSeq(next))
	}
	if len(alts) == 1 {
		return alts[0], nil
	}
	return &AltNode{Alternatives: alts}, nil
}

func asSeq(n Node) *SeqNode {
	if s, ok := n.(*SeqNode); ok {
		return s
	}
	return &SeqNode{Items: []Node{n}}
}

// parseSeq parses seq := atomWithQuant*, stopping at '|', ')', or EOF.
func (p *parser) parseSeq() (Node, error) {
	var items []Node
	for {
		switch p.peek().kind {
		case tokAlt, tokRParen, tokEOF:
			return &SeqNode{Items: items}, nil
		}
		item, err := p.parseAtom()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
}

// parseAtom parses a single Var or parenthesized Group, then an optional
// trailing quantifier.
func (p *parser) parseAtom() (Node, error) {
	tok := p.peek()
	switch tok.kind {
	case tokVar:
		p.advance()
		node := &VarNode{Name: tok.name, Min: 1, Max: 1}
		return p.applyOptionalQuant(node, func(min, max int, reluctant bool) Node {
			return &VarNode{Name: tok.name, Min: min, Max: max, Reluctant: reluctant}
		})
	case tokLParen:
		return p.parseGroup()
	case tokQuant:
		return nil, syntaxErr(tok.offset, "quantifier with no preceding atom")
	default:
		return nil, syntaxErr(tok.offset, "expected variable or '('")
	}
}

func (p *parser) parseGroup() (Node, error) {
	lparenOffset := p.peek().offset
	p.advance() // consume '('
	if p.peek().kind == tokRParen {
		return nil, syntaxErr(lparenOffset, "empty group () is not allowed")
	}
	if p.peek().kind == tokAlt {
		return nil, syntaxErr(p.peek().offset, "alternation cannot start immediately inside '('")
	}
	content, err := p.parseAlt(false)
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokRParen {
		return nil, syntaxErr(p.peek().offset, "expected ')'")
	}
	p.advance() // consume ')'
	node := &GroupNode{Content: content, Min: 1, Max: 1}
	return p.applyOptionalQuant(node, func(min, max int, reluctant bool) Node {
		return &GroupNode{Content: content, Min: min, Max: max, Reluctant: reluctant}
	})
}

// applyOptionalQuant consumes a trailing QUANT token if present and applies
// rebuild to produce the quantified node; otherwise returns base unchanged.
func (p *parser) applyOptionalQuant(base Node, rebuild func(min, max int, reluctant bool) Node) (Node, error) {
	if p.peek().kind != tokQuant {
		return base, nil
	}
	q := p.advance()
	return rebuild(q.min, q.max, q.reluctant), nil
}

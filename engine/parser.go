package engine

import (
	"strconv"
)

// parser is a recursive-descent parser over the lexer with one token of
// lookahead.
type parser struct {
	lx  *lexer
	tok token
}

func newParser(src string) (*parser, error) {
	p := &parser{lx: newLexer(src)}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *parser) advance() error {
	tok, err := p.lx.next()
	if err != nil {
		return err
	}
	p.tok = tok
	return nil
}

func (p *parser) expect(k tokenKind) error {
	if p.tok.kind != k {
		return p.unexpected(k.String())
	}
	return p.advance()
}

func (p *parser) unexpected(wanted string) *SyntaxError {
	return &SyntaxError{
		Line: p.tok.line,
		Col:  p.tok.col,
		Msg:  "expected " + wanted + ", found " + p.tok.kind.String(),
	}
}

// ParseProgram parses a sequence of facts and rules.
func ParseProgram(src string) ([]Clause, error) {
	p, err := newParser(src)
	if err != nil {
		return nil, err
	}
	var clauses []Clause
	for p.tok.kind != tokenEOF {
		c, err := p.clause()
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, c)
	}
	return clauses, nil
}

// ParseQuery parses a goal sequence, with an optional "?-" prefix and an
// optional terminating period.
func ParseQuery(src string) ([]Term, error) {
	p, err := newParser(src)
	if err != nil {
		return nil, err
	}
	if p.tok.kind == tokenQuestion {
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	goals, err := p.terms()
	if err != nil {
		return nil, err
	}
	if p.tok.kind == tokenDot {
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	if p.tok.kind != tokenEOF {
		return nil, p.unexpected("end of query")
	}
	return goals, nil
}

// ParseTerm parses a single term.
func ParseTerm(src string) (Term, error) {
	p, err := newParser(src)
	if err != nil {
		return nil, err
	}
	t, err := p.expr()
	if err != nil {
		return nil, err
	}
	if p.tok.kind == tokenDot {
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	if p.tok.kind != tokenEOF {
		return nil, p.unexpected("end of term")
	}
	return t, nil
}

func (p *parser) clause() (Clause, error) {
	head, err := p.expr()
	if err != nil {
		return Clause{}, err
	}
	var body []Term
	if p.tok.kind == tokenNeck {
		if err := p.advance(); err != nil {
			return Clause{}, err
		}
		body, err = p.terms()
		if err != nil {
			return Clause{}, err
		}
	}
	if err := p.expect(tokenDot); err != nil {
		return Clause{}, err
	}
	return Clause{Head: head, Body: body}, nil
}

// terms parses a comma-separated goal sequence.
func (p *parser) terms() ([]Term, error) {
	var out []Term
	for {
		t, err := p.expr()
		if err != nil {
			return nil, err
		}
		out = append(out, t)
		if p.tok.kind != tokenComma {
			return out, nil
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
}

func (p *parser) expr() (Term, error) {
	return p.comparison()
}

func isRel(k tokenKind) bool {
	switch k {
	case tokenLess, tokenLessEq, tokenGreater, tokenGreaterEq:
		return true
	default:
		return false
	}
}

// comparison parses range-constrained variables: "0 <= X < 10" with either
// bound optional, in either comparison direction.
func (p *parser) comparison() (Term, error) {
	line, col := p.tok.line, p.tok.col
	left, err := p.additive()
	if err != nil {
		return nil, err
	}
	if !isRel(p.tok.kind) {
		return left, nil
	}
	op1 := p.tok.kind
	if err := p.advance(); err != nil {
		return nil, err
	}
	mid, err := p.additive()
	if err != nil {
		return nil, err
	}
	if !isRel(p.tok.kind) {
		return p.rangeFromPair(line, col, left, op1, mid)
	}
	op2 := p.tok.kind
	if err := p.advance(); err != nil {
		return nil, err
	}
	right, err := p.additive()
	if err != nil {
		return nil, err
	}
	return p.rangeFromChain(line, col, left, op1, mid, op2, right)
}

func rangeErr(line, col int, msg string) *SyntaxError {
	return &SyntaxError{Line: line, Col: col, Msg: msg}
}

// rangeFromPair builds a one-sided range: "X < 10", "10 > X", "0 <= X".
func (p *parser) rangeFromPair(line, col int, left Term, op tokenKind, right Term) (Term, error) {
	if v, ok := left.(Variable); ok {
		n, ok := right.(Integer)
		if !ok {
			return nil, rangeErr(line, col, "range bound must be an integer")
		}
		r := RangeVar{Name: string(v)}
		switch op {
		case tokenLess:
			r.Max = &Bound{Value: n}
		case tokenLessEq:
			r.Max = &Bound{Value: n, Inclusive: true}
		case tokenGreater:
			r.Min = &Bound{Value: n}
		case tokenGreaterEq:
			r.Min = &Bound{Value: n, Inclusive: true}
		}
		return r, nil
	}
	if v, ok := right.(Variable); ok {
		n, ok := left.(Integer)
		if !ok {
			return nil, rangeErr(line, col, "range bound must be an integer")
		}
		r := RangeVar{Name: string(v)}
		switch op {
		case tokenLess:
			r.Min = &Bound{Value: n}
		case tokenLessEq:
			r.Min = &Bound{Value: n, Inclusive: true}
		case tokenGreater:
			r.Max = &Bound{Value: n}
		case tokenGreaterEq:
			r.Max = &Bound{Value: n, Inclusive: true}
		}
		return r, nil
	}
	return nil, rangeErr(line, col, "range constraint needs a variable on one side")
}

// rangeFromChain builds a two-sided range: "0 <= X < 10" or "10 > X >= 0".
func (p *parser) rangeFromChain(line, col int, left Term, op1 tokenKind, mid Term, op2 tokenKind, right Term) (Term, error) {
	v, ok := mid.(Variable)
	if !ok {
		return nil, rangeErr(line, col, "chained range constraint needs a variable in the middle")
	}
	lo, ok := left.(Integer)
	if !ok {
		return nil, rangeErr(line, col, "range bound must be an integer")
	}
	hi, ok := right.(Integer)
	if !ok {
		return nil, rangeErr(line, col, "range bound must be an integer")
	}

	ascending := op1 == tokenLess || op1 == tokenLessEq
	if ascending != (op2 == tokenLess || op2 == tokenLessEq) {
		return nil, rangeErr(line, col, "range comparisons must point the same way")
	}

	r := RangeVar{Name: string(v)}
	if ascending {
		r.Min = &Bound{Value: lo, Inclusive: op1 == tokenLessEq}
		r.Max = &Bound{Value: hi, Inclusive: op2 == tokenLessEq}
	} else {
		r.Max = &Bound{Value: lo, Inclusive: op1 == tokenGreaterEq}
		r.Min = &Bound{Value: hi, Inclusive: op2 == tokenGreaterEq}
	}
	return r, nil
}

func (p *parser) additive() (Term, error) {
	left, err := p.multiplicative()
	if err != nil {
		return nil, err
	}
	for p.tok.kind == tokenPlus || p.tok.kind == tokenMinus {
		op := OpAdd
		if p.tok.kind == tokenMinus {
			op = OpSub
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.multiplicative()
		if err != nil {
			return nil, err
		}
		left = Expr{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) multiplicative() (Term, error) {
	left, err := p.primary()
	if err != nil {
		return nil, err
	}
	for p.tok.kind == tokenStar || p.tok.kind == tokenSlash {
		op := OpMul
		if p.tok.kind == tokenSlash {
			op = OpDiv
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.primary()
		if err != nil {
			return nil, err
		}
		left = Expr{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) primary() (Term, error) {
	tok := p.tok
	switch tok.kind {
	case tokenInteger:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return p.integer(tok, false)

	case tokenMinus:
		if err := p.advance(); err != nil {
			return nil, err
		}
		num := p.tok
		if num.kind != tokenInteger {
			return nil, p.unexpected("integer after '-'")
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		return p.integer(num, true)

	case tokenVariable:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return Variable(tok.text), nil

	case tokenAtom:
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.tok.kind != tokenLParen {
			return Atom(tok.text), nil
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		args, err := p.terms()
		if err != nil {
			return nil, err
		}
		if err := p.expect(tokenRParen); err != nil {
			return nil, err
		}
		return Struct{Functor: tok.text, Args: args}, nil

	case tokenLBracket:
		return p.list()

	case tokenLParen:
		if err := p.advance(); err != nil {
			return nil, err
		}
		t, err := p.expr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(tokenRParen); err != nil {
			return nil, err
		}
		return t, nil

	default:
		return nil, p.unexpected("term")
	}
}

func (p *parser) integer(tok token, negative bool) (Term, error) {
	text := tok.text
	if negative {
		text = "-" + text
	}
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return nil, &SyntaxError{Line: tok.line, Col: tok.col, Msg: "integer out of range: " + text}
	}
	return Integer(n), nil
}

func (p *parser) list() (Term, error) {
	if err := p.advance(); err != nil { // '['
		return nil, err
	}
	if p.tok.kind == tokenRBracket {
		if err := p.advance(); err != nil {
			return nil, err
		}
		return List{}, nil
	}
	items, err := p.terms()
	if err != nil {
		return nil, err
	}
	var tail Term
	if p.tok.kind == tokenBar {
		if err := p.advance(); err != nil {
			return nil, err
		}
		tail, err = p.expr()
		if err != nil {
			return nil, err
		}
	}
	if err := p.expect(tokenRBracket); err != nil {
		return nil, err
	}
	return List{Items: items, Tail: tail}, nil
}

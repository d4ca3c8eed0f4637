// Package expr parses and evaluates arithmetic expressions over decimal numbers,
// the four basic operators, unary signs, and parentheses.
//
// Nothing beyond arithmetic can be expressed: the grammar is closed and the
// evaluator walks a small AST.
//
//	expr    := term (('+' | '-') term)*
//	term    := unary (('*' | '/') unary)*
//	unary   := ('+' | '-') unary | primary
//	primary := number | '(' expr ')'
package expr

import (
	"fmt"
	"strings"
)

// Node is an expression tree node: *Number, *Unary or *Binary.
type Node interface {
	Pos() int
}

type Number struct {
	Lit    string
	Offset int
}

func (n *Number) Pos() int { return n.Offset }

type Unary struct {
	Op     byte
	X      Node
	Offset int
}

func (n *Unary) Pos() int { return n.Offset }

type Binary struct {
	Op     byte
	X, Y   Node
	Offset int
}

func (n *Binary) Pos() int { return n.Offset }

// SyntaxError reports a malformed expression. Pos is a byte offset into the input.
type SyntaxError struct {
	Pos int
	Msg string
}

func (e *SyntaxError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s at position %d", e.Msg, e.Pos)
}

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokOp
	tokLParen
	tokRParen
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

func (t token) String() string {
	if t.kind == tokEOF {
		return "end of expression"
	}
	return fmt.Sprintf("%q", t.text)
}

func tokenize(src string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == ' ' || c == '\t':
			i++
		case c == '+' || c == '-' || c == '*' || c == '/':
			toks = append(toks, token{kind: tokOp, text: src[i : i+1], pos: i})
			i++
		case c == '(':
			toks = append(toks, token{kind: tokLParen, text: "(", pos: i})
			i++
		case c == ')':
			toks = append(toks, token{kind: tokRParen, text: ")", pos: i})
			i++
		case isDigit(c) || c == '.':
			start := i
			dots := 0
			for i < len(src) && (isDigit(src[i]) || src[i] == '.') {
				if src[i] == '.' {
					dots++
				}
				i++
			}
			lit := src[start:i]
			if dots > 1 || lit == "." {
				return nil, &SyntaxError{Pos: start, Msg: fmt.Sprintf("invalid number %q", lit)}
			}
			if dots == 0 && len(lit) > 1 && lit[0] == '0' && strings.Trim(lit, "0") != "" {
				return nil, &SyntaxError{Pos: start, Msg: "leading zeros in decimal integer literals are not permitted"}
			}
			toks = append(toks, token{kind: tokNumber, text: lit, pos: start})
		default:
			return nil, &SyntaxError{Pos: i, Msg: fmt.Sprintf("invalid character %q", c)}
		}
	}
	toks = append(toks, token{kind: tokEOF, pos: len(src)})
	return toks, nil
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

type parser struct {
	toks []token
	i    int
}

// Parse builds the expression tree for src.
func Parse(src string) (Node, error) {
	toks, err := tokenize(src)
	if err != nil {
		return nil, err
	}
	if len(toks) == 1 {
		return nil, &SyntaxError{Pos: 0, Msg: "empty expression"}
	}
	p := &parser{toks: toks}
	n, err := p.expr()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, &SyntaxError{Pos: t.pos, Msg: "unexpected " + t.String()}
	}
	return n, nil
}

func (p *parser) peek() token { return p.toks[p.i] }

func (p *parser) next() token {
	t := p.toks[p.i]
	if t.kind != tokEOF {
		p.i++
	}
	return t
}

func (p *parser) expr() (Node, error) {
	x, err := p.term()
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		if t.kind != tokOp || (t.text != "+" && t.text != "-") {
			return x, nil
		}
		p.next()
		y, err := p.term()
		if err != nil {
			return nil, err
		}
		x = &Binary{Op: t.text[0], X: x, Y: y, Offset: t.pos}
	}
}

func (p *parser) term() (Node, error) {
	x, err := p.unary()
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		if t.kind != tokOp || (t.text != "*" && t.text != "/") {
			return x, nil
		}
		p.next()
		y, err := p.unary()
		if err != nil {
			return nil, err
		}
		x = &Binary{Op: t.text[0], X: x, Y: y, Offset: t.pos}
	}
}

func (p *parser) unary() (Node, error) {
	t := p.peek()
	if t.kind == tokOp && (t.text == "+" || t.text == "-") {
		p.next()
		x, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &Unary{Op: t.text[0], X: x, Offset: t.pos}, nil
	}
	return p.primary()
}

func (p *parser) primary() (Node, error) {
	t := p.next()
	switch t.kind {
	case tokNumber:
		return &Number{Lit: t.text, Offset: t.pos}, nil
	case tokLParen:
		x, err := p.expr()
		if err != nil {
			return nil, err
		}
		if c := p.next(); c.kind != tokRParen {
			return nil, &SyntaxError{Pos: c.pos, Msg: "expected \")\", got " + c.String()}
		}
		return x, nil
	default:
		return nil, &SyntaxError{Pos: t.pos, Msg: "unexpected " + t.String()}
	}
}

// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package cnf

import (
	"io"
	"text/scanner"

	"github.com/dalzilio/mtbdd"
	"github.com/pkg/errors"
)

// Parse reads a formula from r and returns its BDD. The syntax is the one of
// the gophersat bf package, with operators "=" (equivalence), "->"
// (implication), "|" (disjunction), "&" (conjunction) and the prefix negation
// "^", in order of increasing priority. Binary operators associate to the
// right. Map vars gives the BDD variable of each identifier; the constants 1
// and 0 stand for true and false.
func Parse(b *mtbdd.BDD, r io.Reader, vars map[string]int) (mtbdd.Node, error) {
	p := &parser{b: b, vars: vars}
	p.s.Init(r)
	p.s.Error = func(s *scanner.Scanner, msg string) { p.err = errors.Errorf("%s at %s", msg, s.Pos()) }
	p.scan()
	n, err := p.parseEquiv()
	if err != nil {
		return mtbdd.Null, err
	}
	if !p.eof || p.err != nil {
		b.Free(n)
		return mtbdd.Null, p.unexpected()
	}
	return n, nil
}

// Identifiers returns the variable names occurring in a formula, in the order
// of their first occurrence.
func Identifiers(r io.Reader) []string {
	var s scanner.Scanner
	s.Init(r)
	s.Error = func(*scanner.Scanner, string) {}
	seen := make(map[string]bool)
	var res []string
	for tok := s.Scan(); tok != scanner.EOF; tok = s.Scan() {
		if tok != scanner.Ident {
			continue
		}
		if name := s.TokenText(); !seen[name] {
			seen[name] = true
			res = append(res, name)
		}
	}
	return res
}

type parser struct {
	b     *mtbdd.BDD
	vars  map[string]int
	s     scanner.Scanner
	eof   bool
	token string
	err   error
}

func isOperator(token string) bool {
	switch token {
	case "=", "-", "|", "&", "^", "(", ")":
		return true
	}
	return false
}

func (p *parser) scan() {
	if p.eof {
		return
	}
	p.eof = p.s.Scan() == scanner.EOF
	p.token = p.s.TokenText()
}

func (p *parser) unexpected() error {
	if p.err != nil {
		return p.err
	}
	if p.eof {
		return errors.Errorf("unexpected end of formula at %s", p.s.Pos())
	}
	return errors.Errorf("unexpected token %q at %s", p.token, p.s.Pos())
}

// binary parses a right associative operator; next parses the operands and
// ok reports if the current token is the operator.
func (p *parser) binary(next func() (mtbdd.Node, error), ok func() bool, op func(x, y mtbdd.Node) mtbdd.Node, self func() (mtbdd.Node, error)) (mtbdd.Node, error) {
	left, err := next()
	if err != nil {
		return mtbdd.Null, err
	}
	if p.eof || !ok() {
		if p.err != nil {
			p.b.Free(left)
			return mtbdd.Null, p.err
		}
		return left, nil
	}
	p.scan()
	right, err := self()
	if err != nil {
		p.b.Free(left)
		return mtbdd.Null, err
	}
	res := op(left, right)
	p.b.Free(left)
	p.b.Free(right)
	if res == mtbdd.Null {
		return mtbdd.Null, errors.Errorf("parse: %v", p.b.Err())
	}
	return res, nil
}

func (p *parser) parseEquiv() (mtbdd.Node, error) {
	return p.binary(p.parseImplies, func() bool { return p.token == "=" }, p.b.Equiv, p.parseEquiv)
}

func (p *parser) parseImplies() (mtbdd.Node, error) {
	arrow := func() bool {
		if p.token != "-" {
			return false
		}
		p.scan()
		if p.eof || p.token != ">" {
			p.err = errors.Errorf("invalid token %q at %s", "-"+p.token, p.s.Pos())
			return false
		}
		return true
	}
	return p.binary(p.parseOr, arrow, p.b.Imp, p.parseImplies)
}

func (p *parser) parseOr() (mtbdd.Node, error) {
	or := func(x, y mtbdd.Node) mtbdd.Node { return p.b.Or(x, y) }
	return p.binary(p.parseAnd, func() bool { return p.token == "|" }, or, p.parseOr)
}

func (p *parser) parseAnd() (mtbdd.Node, error) {
	and := func(x, y mtbdd.Node) mtbdd.Node { return p.b.And(x, y) }
	return p.binary(p.parseNot, func() bool { return p.token == "&" }, and, p.parseAnd)
}

func (p *parser) parseNot() (mtbdd.Node, error) {
	if p.eof {
		return mtbdd.Null, p.unexpected()
	}
	if p.token != "^" {
		return p.parseBasic()
	}
	p.scan()
	n, err := p.parseNot()
	if err != nil {
		return mtbdd.Null, err
	}
	res := p.b.Not(n)
	p.b.Free(n)
	return res, nil
}

func (p *parser) parseBasic() (mtbdd.Node, error) {
	switch p.token {
	case "(":
		p.scan()
		n, err := p.parseEquiv()
		if err != nil {
			return mtbdd.Null, err
		}
		if p.eof || p.token != ")" {
			p.b.Free(n)
			return mtbdd.Null, errors.Errorf("expected closing parenthesis at %s", p.s.Pos())
		}
		p.scan()
		return n, nil
	case "1":
		p.scan()
		return mtbdd.One, nil
	case "0":
		p.scan()
		return mtbdd.Zero, nil
	}
	v, ok := p.vars[p.token]
	if !ok {
		if p.err != nil || isOperator(p.token) {
			return mtbdd.Null, p.unexpected()
		}
		return mtbdd.Null, errors.Errorf("unknown variable %q at %s", p.token, p.s.Pos())
	}
	if v < 0 || v >= p.b.Varnum() {
		return mtbdd.Null, errors.Errorf("variable %q mapped to unknown BDD variable %d", p.token, v)
	}
	p.scan()
	return p.b.Ithvar(v), nil
}

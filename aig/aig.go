// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

// Package aig translates Boolean functions represented by BDD into
// and-inverter circuits and uses a SAT solver to compare them.
//
// Each BDD node becomes a multiplexer on its variable, so the size of the
// circuit is linear in the size of the BDD. Complemented edges map to negated
// literals.
package aig

import (
	"sort"

	"github.com/dalzilio/mtbdd"
	"github.com/go-air/gini"
	"github.com/go-air/gini/logic"
	"github.com/go-air/gini/z"
	"github.com/pkg/errors"
)

// ErrNotBoolean is returned when a node reaches a multi-terminal leaf, or is
// Null.
var ErrNotBoolean = errors.New("node is not a Boolean function")

// Circuit is an and-inverter graph shared by the functions of one BDD.
type Circuit struct {
	C      *logic.C
	b      *mtbdd.BDD
	inputs map[int]z.Lit        // input of each BDD variable (by identity)
	memo   map[mtbdd.Node]z.Lit // literal of each translated node
}

// New returns an empty circuit for functions of b.
func New(b *mtbdd.BDD) *Circuit {
	return &Circuit{
		C:      logic.NewCCap(2*b.Varnum() + 16),
		b:      b,
		inputs: make(map[int]z.Lit),
		memo:   make(map[mtbdd.Node]z.Lit),
	}
}

// Input returns the input literal associated with BDD variable v. Inputs are
// created on demand.
func (c *Circuit) Input(v int) z.Lit {
	if m, ok := c.inputs[v]; ok {
		return m
	}
	m := c.C.Lit()
	c.inputs[v] = m
	return m
}

// Inputs returns the BDD variables that have an input in c, in increasing
// order.
func (c *Circuit) Inputs() []int {
	res := make([]int, 0, len(c.inputs))
	for v := range c.inputs {
		res = append(res, v)
	}
	sort.Ints(res)
	return res
}

// FromBDD returns a literal of c equivalent to n.
func (c *Circuit) FromBDD(n mtbdd.Node) (z.Lit, error) {
	switch c.b.Type(n) {
	case mtbdd.TypeOverflow:
		return z.LitNull, errors.Wrap(ErrNotBoolean, "null node")
	case mtbdd.TypeConstant:
		return z.LitNull, errors.Wrap(ErrNotBoolean, "multi-terminal leaf")
	}
	return c.translate(n)
}

func (c *Circuit) translate(n mtbdd.Node) (z.Lit, error) {
	switch n {
	case mtbdd.One:
		return c.C.T, nil
	case mtbdd.Zero:
		return c.C.F, nil
	}
	if n.IsComplement() {
		m, err := c.translate(n.Not())
		return m.Not(), err
	}
	if m, ok := c.memo[n]; ok {
		return m, nil
	}
	if c.b.IsTerminal(n) {
		return z.LitNull, errors.Wrap(ErrNotBoolean, "multi-terminal leaf")
	}
	high, err := c.translate(c.b.High(n))
	if err != nil {
		return z.LitNull, err
	}
	low, err := c.translate(c.b.Low(n))
	if err != nil {
		return z.LitNull, err
	}
	m := c.C.Choice(c.Input(c.b.VarID(n)), high, low)
	c.memo[n] = m
	return m, nil
}

// Eval returns the value of literal m when each BDD variable v takes the
// value values[v]. Missing variables are false.
func (c *Circuit) Eval(m z.Lit, values map[int]bool) bool {
	vs := make([]bool, c.C.Len())
	// variable 1 is the constant true of the circuit
	vs[1] = true
	for v, in := range c.inputs {
		vs[in.Var()] = values[v]
	}
	c.C.Eval(vs)
	return vs[m.Var()] == m.IsPos()
}

// ************************************************************

// model reads the value of every input after a successful call to Solve.
// Inputs that do not appear in the problem are false.
func (c *Circuit) model(g *gini.Gini) map[int]bool {
	res := make(map[int]bool, len(c.inputs))
	top := g.MaxVar()
	for v, in := range c.inputs {
		res[v] = in.Var() <= top && g.Value(in)
	}
	return res
}

// Satisfiable uses a SAT solver to decide if n has a satisfying assignment.
// When it does, we return an assignment of the variables of n.
func (c *Circuit) Satisfiable(n mtbdd.Node) (map[int]bool, bool, error) {
	m, err := c.FromBDD(n)
	if err != nil {
		return nil, false, err
	}
	switch m {
	case c.C.T:
		return map[int]bool{}, true, nil
	case c.C.F:
		return nil, false, nil
	}
	g := gini.New()
	c.C.ToCnfFrom(g, m)
	g.Add(m)
	g.Add(0)
	if g.Solve() != 1 {
		return nil, false, nil
	}
	return c.model(g), true, nil
}

// Equivalent checks with a SAT solver that f and g denote the same function.
// We build a miter, the exclusive or of the two circuits, and look for an
// assignment that makes it true. When f and g differ, we return such an
// assignment as a witness.
func Equivalent(b *mtbdd.BDD, f, g mtbdd.Node) (bool, map[int]bool, error) {
	c := New(b)
	mf, err := c.FromBDD(f)
	if err != nil {
		return false, nil, err
	}
	mg, err := c.FromBDD(g)
	if err != nil {
		return false, nil, err
	}
	miter := c.C.Xor(mf, mg)
	switch miter {
	case c.C.F:
		return true, nil, nil
	case c.C.T:
		return false, map[int]bool{}, nil
	}
	s := gini.New()
	c.C.ToCnfFrom(s, miter)
	s.Add(miter)
	s.Add(0)
	if s.Solve() != 1 {
		return true, nil, nil
	}
	return false, c.model(s), nil
}

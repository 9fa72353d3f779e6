// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package mtbdd

import (
	"math"
	"math/big"

	"github.com/pkg/errors"
)

// Satisfy returns a cube (a conjunction of literals with at most one node per
// level) that implies n. We follow else branches whenever possible. The
// result is Zero if n is unsatisfiable.
func (b *BDD) Satisfy(n Node) Node {
	return b.firewall("Satisfy", []Node{n}, func() (Node, error) {
		if !b.isbool(n) {
			b.warn("operand of Satisfy is not Boolean")
			return Null, nil
		}
		return b.satisfy(n)
	})
}

func (b *BDD) satisfy(n Node) (Node, error) {
	if b.isconst(n) {
		return n, nil
	}
	v := b.nodes[n.id()].index
	if low := b.low(n); low != Zero {
		res, err := b.satisfy(low)
		if err != nil {
			return Null, err
		}
		return b.makenode(v, Zero, res)
	}
	res, err := b.satisfy(b.high(n))
	if err != nil {
		return Null, err
	}
	return b.makenode(v, res, Zero)
}

// SatisfySupport returns a cube that implies n and that contains a literal for
// every variable marked in association assoc, and for the variables needed
// by n. Marked variables that n does not test take the value false.
func (b *BDD) SatisfySupport(n Node, assoc int) Node {
	a := b.getassoc(assoc)
	if a == nil {
		return Null
	}
	return b.firewall("SatisfySupport", []Node{n}, func() (Node, error) {
		if !b.isbool(n) {
			b.warn("operand of SatisfySupport is not Boolean")
			return Null, nil
		}
		if n == Zero {
			return Zero, nil
		}
		vars := []int{}
		for v, s := range a.slots {
			if s != Null {
				vars = append(vars, v)
			}
		}
		b.cache.level++
		cube, err := b.makecube(vars, nil)
		b.cache.level--
		if err != nil {
			return Null, err
		}
		return b.satsupport(n, cube)
	})
}

func (b *BDD) satsupport(n, cube Node) (Node, error) {
	if cube == One {
		return b.satisfy(n)
	}
	ln, lc := b.level(n), b.level(cube)
	var v uint32
	var high, low Node
	var err error
	switch {
	case lc < ln:
		v = b.level2var[lc]
		high = Zero
		low, err = b.satsupport(n, b.high(cube))
	default:
		next := cube
		if lc == ln {
			next = b.high(cube)
		}
		v = b.level2var[ln]
		if nl := b.low(n); nl != Zero {
			high = Zero
			low, err = b.satsupport(nl, next)
		} else {
			low = Zero
			high, err = b.satsupport(b.high(n), next)
		}
	}
	if err != nil {
		return Null, err
	}
	return b.makenode(v, high, low)
}

// ************************************************************

// Intersects returns a cube that implies both f and g, or Zero if their
// conjunction is unsatisfiable. We never build the conjunction.
func (b *BDD) Intersects(f, g Node) Node {
	return b.firewall("Intersects", []Node{f, g}, func() (Node, error) {
		if !b.isbool(f) || !b.isbool(g) {
			b.warn("operands of Intersects are not Boolean")
			return Null, nil
		}
		return b.intersects(f, g)
	})
}

// Implies returns a cube that implies f and not g, or Zero if f implies g.
func (b *BDD) Implies(f, g Node) Node {
	return b.firewall("Implies", []Node{f, g}, func() (Node, error) {
		if !b.isbool(f) || !b.isbool(g) {
			b.warn("operands of Implies are not Boolean")
			return Null, nil
		}
		return b.intersects(f, g.Not())
	})
}

func (b *BDD) intersects(f, g Node) (Node, error) {
	switch {
	case f == Zero || g == Zero || f == g.Not():
		return Zero, nil
	case f == One:
		return b.satisfy(g)
	case g == One || f == g:
		return b.satisfy(f)
	}
	if b.precedes(g, f) {
		f, g = g, f
	}
	if res, ok := b.lookupnode(kindBinary, opIntersects, f, g, Null); ok {
		return res, nil
	}
	top := min2(b.level(f), b.level(g))
	v := b.level2var[top]
	f1, f0 := b.cofactors(f, top)
	g1, g0 := b.cofactors(g, top)
	res, err := b.intersects(f0, g0)
	if err != nil {
		return Null, err
	}
	if res != Zero {
		res, err = b.makenode(v, Zero, res)
	} else {
		if res, err = b.intersects(f1, g1); err == nil && res != Zero {
			res, err = b.makenode(v, res, Zero)
		}
	}
	if err != nil {
		return Null, err
	}
	b.insertnode(kindBinary, opIntersects, f, g, Null, res)
	return res, nil
}

// ************************************************************

// Leq reports whether f implies g. This operation never creates nodes.
func (b *BDD) Leq(f, g Node) bool {
	if !b.checkptr(f) || !b.checkptr(g) || !b.isbool(f) || !b.isbool(g) {
		b.warn("wrong operands (%d, %d) in call to Leq", f, g)
		return false
	}
	return b.leq(f, g)
}

func (b *BDD) leq(f, g Node) bool {
	switch {
	case f == Zero || g == One || f == g:
		return true
	case f == One || g == Zero || f == g.Not():
		return false
	}
	if data, ok := b.lookupdata(kindBinaryData, opLeq, f, g); ok {
		return data[0] == 1
	}
	top := min2(b.level(f), b.level(g))
	f1, f0 := b.cofactors(f, top)
	g1, g0 := b.cofactors(g, top)
	res := b.leq(f1, g1) && b.leq(f0, g0)
	data := [2]uint64{}
	if res {
		data[0] = 1
	}
	b.insertdata(kindBinaryData, opLeq, f, g, data)
	return res
}

// SatisfyingFraction returns the fraction of the variable assignments that
// satisfy n.
func (b *BDD) SatisfyingFraction(n Node) float64 {
	if !b.checkptr(n) || !b.isbool(n) {
		b.warn("wrong operand (%d) in call to SatisfyingFraction", n)
		return 0
	}
	return b.fraction(n)
}

func (b *BDD) fraction(n Node) float64 {
	switch n {
	case One:
		return 1
	case Zero:
		return 0
	}
	if n.IsComplement() {
		return 1 - b.fraction(n.Not())
	}
	if data, ok := b.lookupdata(kindUnaryData, opFraction, n, Null); ok {
		return math.Float64frombits(data[0])
	}
	res := (b.fraction(b.high(n)) + b.fraction(b.low(n))) / 2
	b.insertdata(kindUnaryData, opFraction, n, Null, [2]uint64{math.Float64bits(res)})
	return res
}

// ************************************************************

// Satcount computes the number of satisfying variable assignments for the
// function denoted by n, over all the variables of b. We return a result
// using arbitrary-precision arithmetic to avoid possible overflows. The result
// is zero (and we log a warning) if n is not a Boolean function.
func (b *BDD) Satcount(n Node) *big.Int {
	res := big.NewInt(0)
	if !b.checkptr(n) || !b.isbool(n) {
		b.warn("wrong operand (%d) in call to Satcount", n)
		return res
	}
	// We compute 2^level with a bit shift 1 << level
	res.SetBit(res, int(b.countlevel(n)), 1)
	satc := make(map[Node]*big.Int)
	return res.Mul(res, b.satcount(n, satc))
}

// countlevel is the level of n, where leaves are at level Varnum.
func (b *BDD) countlevel(n Node) int32 {
	if b.isconst(n) {
		return int32(len(b.level2var))
	}
	return b.level(n)
}

// satcount returns the number of assignments of the variables at levels
// greater or equal to the level of n.
func (b *BDD) satcount(n Node, satc map[Node]*big.Int) *big.Int {
	switch n {
	case One:
		return big.NewInt(1)
	case Zero:
		return big.NewInt(0)
	}
	level := b.countlevel(n)
	if n.IsComplement() {
		res := big.NewInt(0)
		res.SetBit(res, len(b.level2var)-int(level), 1)
		return res.Sub(res, b.satcount(n.Not(), satc))
	}
	// we use satc to memoize the value of satcount for each nodes
	if res, ok := satc[n]; ok {
		return res
	}
	res := big.NewInt(0)
	for _, child := range []Node{b.low(n), b.high(n)} {
		two := big.NewInt(0)
		two.SetBit(two, int(b.countlevel(child)-level-1), 1)
		res.Add(res, two.Mul(two, b.satcount(child, satc)))
	}
	satc[n] = res
	return res
}

// Allsat Iterates through all legal variable assignments for n and calls the
// function f on each of them. We pass an int slice of length varnum to f,
// indexed by variable identity, where each entry is either 0 if the variable
// is false, 1 if it is true, and -1 if it is a don't care. We stop and return
// an error if f returns an error at some point. The slice is reused between
// calls.
//
// The following is an example of a callback handler that counts the number of
// possible assignments (such that we do not count don't care twice):
//     acc := new(int)
//     b.Allsat(n, func(varset []int) error {
//       *acc++
//        return nil
//      })
func (b *BDD) Allsat(n Node, f func([]int) error) error {
	if !b.checkptr(n) || !b.isbool(n) {
		return errors.Errorf("wrong node in call to Allsat (%d)", n)
	}
	prof := make([]int, len(b.varset))
	for k := range prof {
		prof[k] = -1
	}
	// the function does not create new nodes, so we do not need to take care of
	// garbage collections
	return b.allsat(n, prof, f)
}

func (b *BDD) allsat(n Node, prof []int, f func([]int) error) error {
	switch n {
	case One:
		return f(prof)
	case Zero:
		return nil
	}
	v := b.nodes[n.id()].index
	defer func() { prof[v] = -1 }()
	if low := b.low(n); low != Zero {
		prof[v] = 0
		if err := b.allsat(low, prof, f); err != nil {
			return err
		}
	}
	if high := b.high(n); high != Zero {
		prof[v] = 1
		if err := b.allsat(high, prof, f); err != nil {
			return err
		}
	}
	return nil
}

// Eval returns the leaf reached in n when each variable k takes the value
// values[k]. For a Boolean function, the result is One or Zero.
func (b *BDD) Eval(n Node, values []bool) Node {
	if !b.checkptr(n) {
		return Null
	}
	if len(values) < len(b.varset) {
		b.warn("%d values for %d variables in call to Eval", len(values), len(b.varset))
		return Null
	}
	for !b.isconst(n) {
		if values[b.nodes[n.id()].index] {
			n = b.high(n)
		} else {
			n = b.low(n)
		}
	}
	return n
}

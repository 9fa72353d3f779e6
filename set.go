// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package mtbdd

// And returns the logical 'and' of a sequence of nodes.
func (b *BDD) And(n ...Node) Node {
	return b.fold("And", OPand, One, n)
}

// Or returns the logical 'or' of a sequence of BDDs.
func (b *BDD) Or(n ...Node) Node {
	return b.fold("Or", OPor, Zero, n)
}

// Xor returns the logical 'exclusive or' of a sequence of BDDs.
func (b *BDD) Xor(n ...Node) Node {
	return b.fold("Xor", OPxor, Zero, n)
}

func (b *BDD) fold(name string, op Operator, unit Node, n []Node) Node {
	return b.firewall(name, n, func() (Node, error) {
		res := unit
		for _, v := range n {
			if !b.isbool(v) {
				b.warn("operands of %s are not Boolean", op)
				return Null, nil
			}
			var err error
			if res, err = b.apply(res, v, op); err != nil {
				return Null, err
			}
		}
		return res, nil
	})
}

// Imp returns the logical 'implication' between two BDDs.
func (b *BDD) Imp(n1, n2 Node) Node {
	return b.Apply(n1, n2, OPimp)
}

// Equiv returns the logical 'bi-implication' between two BDDs.
func (b *BDD) Equiv(n1, n2 Node) Node {
	return b.Apply(n1, n2, OPbiimp)
}

// Diff returns the set difference between two BDDs (n1 and not n2).
func (b *BDD) Diff(n1, n2 Node) Node {
	return b.Apply(n1, n2, OPdiff)
}

// Equal tests equivalence between nodes. Since BDDs are canonical, this is
// the same as comparing nodes.
func (b *BDD) Equal(n1, n2 Node) bool {
	return n1 != Null && n1 == n2
}

// ************************************************************

// Makeset returns a node corresponding to the conjunction (the cube) of all
// the variables in varset, in their positive form. Variables are given by
// their identity. It is such that Scanset(Makeset(a)) == a, up to the order of
// the variables. It returns Null and logs a warning if one of the variables
// does not exist.
func (b *BDD) Makeset(varset []int) Node {
	for _, v := range varset {
		if v < 0 || v >= len(b.varset) {
			b.warn("unknown variable used (%d) in call to Makeset", v)
			return Null
		}
	}
	return b.firewall("Makeset", nil, func() (Node, error) {
		return b.makecube(varset, nil)
	})
}

// makecube returns the cube of the variables in vars, with a negative literal
// for variable vars[k] when neg[k] is true.
func (b *BDD) makecube(vars []int, neg []bool) (Node, error) {
	res := One
	for k, v := range vars {
		lit := b.varset[v]
		if neg != nil && neg[k] {
			lit = lit.Not()
		}
		var err error
		if res, err = b.apply(res, lit, OPand); err != nil {
			return Null, err
		}
	}
	return res, nil
}

// Scanset returns the set of variables (identities) found when following the
// high branch of node n, in the order of their levels. This is the dual of
// function Makeset. The result is nil if n is not a valid node.
func (b *BDD) Scanset(n Node) []int {
	if !b.checkptr(n) {
		return nil
	}
	res := []int{}
	for i := n; !b.isconst(i); i = b.high(i) {
		res = append(res, int(b.nodes[i.id()].index))
	}
	return res
}

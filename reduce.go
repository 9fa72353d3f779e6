// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package mtbdd

// Reduce returns a function that agrees with n wherever the care set c holds,
// and is usually smaller than n (this operation is also known as restrict).
// The result does not depend on variables that are not in the support of n.
// When c is the constant false, every function is a valid result and we
// return Zero.
func (b *BDD) Reduce(n, c Node) Node {
	return b.firewall("Reduce", []Node{n, c}, func() (Node, error) {
		if !b.isbool(c) {
			b.warn("care set in call to Reduce is not Boolean")
			return Null, nil
		}
		return b.reduce(n, c)
	})
}

func (b *BDD) reduce(f, c Node) (Node, error) {
	switch {
	case c == Zero:
		return Zero, nil
	case c == One || b.isconst(f):
		return f, nil
	case f == c:
		return One, nil
	case f == c.Not():
		return Zero, nil
	}
	if res, ok := b.lookupnode(kindBinary, opReduce, f, c, Null); ok {
		return res, nil
	}
	var res Node
	var err error
	lf, lc := b.level(f), b.level(c)
	if lc < lf {
		// f does not depend on the top variable of c
		var cc Node
		b.cache.level++
		cc, err = b.ite(b.high(c), One, b.low(c))
		b.cache.level--
		if err != nil {
			return Null, err
		}
		res, err = b.reduce(f, cc)
	} else {
		f1, f0 := b.high(f), b.low(f)
		c1, c0 := b.cofactors(c, lf)
		switch {
		case c1 == Zero:
			res, err = b.reduce(f0, c0)
		case c0 == Zero:
			res, err = b.reduce(f1, c1)
		default:
			res, err = b.cofactorrec(b.nodes[f.id()].index, f1, c1, f0, c0, b.reduce)
		}
	}
	if err != nil {
		return Null, err
	}
	b.insertnode(kindBinary, opReduce, f, c, Null, res)
	return res, nil
}

// cofactorrec applies op on both branches and builds the node for variable v.
func (b *BDD) cofactorrec(v uint32, f1, c1, f0, c0 Node, op func(f, c Node) (Node, error)) (Node, error) {
	high, err := op(f1, c1)
	if err != nil {
		return Null, err
	}
	low, err := op(f0, c0)
	if err != nil {
		return Null, err
	}
	return b.makenode(v, high, low)
}

// ************************************************************

// Cofactor returns the generalized cofactor of n with respect to c (this
// operation is also known as constrain). The result agrees with n wherever c
// holds. When c is the constant false we return Zero.
func (b *BDD) Cofactor(n, c Node) Node {
	return b.firewall("Cofactor", []Node{n, c}, func() (Node, error) {
		if !b.isbool(c) {
			b.warn("care set in call to Cofactor is not Boolean")
			return Null, nil
		}
		return b.constrain(n, c)
	})
}

func (b *BDD) constrain(f, c Node) (Node, error) {
	switch {
	case c == Zero:
		return Zero, nil
	case c == One || b.isconst(f):
		return f, nil
	case f == c:
		return One, nil
	case f == c.Not():
		return Zero, nil
	}
	if res, ok := b.lookupnode(kindBinary, opCofactor, f, c, Null); ok {
		return res, nil
	}
	top := min2(b.level(f), b.level(c))
	f1, f0 := b.cofactors(f, top)
	c1, c0 := b.cofactors(c, top)
	var res Node
	var err error
	switch {
	case c1 == Zero:
		res, err = b.constrain(f0, c0)
	case c0 == Zero:
		res, err = b.constrain(f1, c1)
	default:
		res, err = b.cofactorrec(b.level2var[top], f1, c1, f0, c0, b.constrain)
	}
	if err != nil {
		return Null, err
	}
	b.insertnode(kindBinary, opCofactor, f, c, Null, res)
	return res, nil
}

// ************************************************************

// CProject returns the compatible projection of n on the variables marked for
// quantification in association assoc. For every assignment of the other
// variables that can be extended into a solution of n, the result has exactly
// one solution: the one where the marked variables take the value true
// whenever possible, in the order of their levels. The result implies n.
func (b *BDD) CProject(n Node, assoc int) Node {
	a := b.getassoc(assoc)
	if a == nil {
		return Null
	}
	return b.firewall("CProject", []Node{n}, func() (Node, error) {
		if !b.isbool(n) {
			b.warn("operand of CProject is not Boolean")
			return Null, nil
		}
		cube, err := b.existscube(a)
		if err != nil {
			return Null, err
		}
		return b.cproject(n, cube, a)
	})
}

// existscube returns the conjunction of the variables marked in a.
func (b *BDD) existscube(a *assoc) (Node, error) {
	vars := []int{}
	for v, s := range a.slots {
		if s == quantmark {
			vars = append(vars, v)
		}
	}
	b.cache.level++
	defer func() { b.cache.level-- }()
	return b.makecube(vars, nil)
}

func (b *BDD) cproject(f, cube Node, a *assoc) (Node, error) {
	if f == Zero || cube == One {
		return f, nil
	}
	tag := mktag(opCProject, uint32(a.id))
	if res, ok := b.lookupnode(kindBinary, tag, f, cube, Null); ok {
		return res, nil
	}
	lf, lc := b.level(f), b.level(cube)
	var res Node
	var err error
	switch {
	case lc < lf:
		// the variable is free in f; we choose true
		var high Node
		if high, err = b.cproject(f, b.high(cube), a); err != nil {
			return Null, err
		}
		res, err = b.makenode(b.level2var[lc], high, Zero)
	case lf < lc:
		res, err = b.cofactorrec(b.level2var[lf], b.high(f), cube, b.low(f), cube, func(g, c Node) (Node, error) {
			return b.cproject(g, c, a)
		})
	default:
		res, err = b.cprojectvar(f, cube, a)
	}
	if err != nil {
		return Null, err
	}
	b.insertnode(kindBinary, tag, f, cube, Null, res)
	return res, nil
}

// cprojectvar handles the case where the top variable of f is marked. The else
// branch is only taken for assignments where the then branch has no solution.
func (b *BDD) cprojectvar(f, cube Node, a *assoc) (Node, error) {
	next := b.high(cube)
	f1, f0 := b.high(f), b.low(f)
	high, err := b.cproject(f1, next, a)
	if err != nil {
		return Null, err
	}
	low, err := b.cproject(f0, next, a)
	if err != nil {
		return Null, err
	}
	ex, err := b.exists(f1, a)
	if err != nil {
		return Null, err
	}
	b.cache.level++
	low, err = b.ite(ex, Zero, low)
	b.cache.level--
	if err != nil {
		return Null, err
	}
	return b.makenode(b.nodes[f.id()].index, high, low)
}

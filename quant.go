// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package mtbdd

// Exists returns the existential quantification of n for the variables marked
// in the association with identifier assoc (see NewAssoc). We return Null,
// and log a warning, if n is not a Boolean function or the association does
// not exist.
func (b *BDD) Exists(n Node, assoc int) Node {
	return b.quantify("Exists", n, assoc, false)
}

// Forall returns the universal quantification of n for the variables marked in
// association assoc.
func (b *BDD) Forall(n Node, assoc int) Node {
	return b.quantify("Forall", n, assoc, true)
}

// Smooth is another name for Exists.
func (b *BDD) Smooth(n Node, assoc int) Node {
	return b.quantify("Smooth", n, assoc, false)
}

func (b *BDD) quantify(name string, n Node, id int, dual bool) Node {
	a := b.getassoc(id)
	if a == nil {
		return Null
	}
	return b.firewall(name, []Node{n}, func() (Node, error) {
		if !b.isbool(n) {
			b.warn("operand of %s is not Boolean", name)
			return Null, nil
		}
		if dual {
			res, err := b.exists(n.Not(), a)
			return res.Not(), err
		}
		return b.exists(n, a)
	})
}

// exists returns the quantification of n. We stop as soon as the top variable
// of n is after every variable of the association. When the then branch of a
// quantified variable is the constant true, we do not need to look at the
// else branch.
func (b *BDD) exists(n Node, a *assoc) (Node, error) {
	if b.isconst(n) || b.level(n) > a.last {
		return n, nil
	}
	tag := mktag(opExists, uint32(a.id))
	if res, ok := b.lookupnode(kindBinary, tag, n, Null, Null); ok {
		return res, nil
	}
	v := b.nodes[n.id()].index
	high, err := b.exists(b.high(n), a)
	if err != nil {
		return Null, err
	}
	var res Node
	switch {
	case a.slots[v] == quantmark && high == One:
		res = One
	case a.slots[v] == quantmark:
		low, err := b.exists(b.low(n), a)
		if err != nil {
			return Null, err
		}
		b.cache.level++
		res, err = b.ite(high, One, low)
		b.cache.level--
		if err != nil {
			return Null, err
		}
	default:
		low, err := b.exists(b.low(n), a)
		if err != nil {
			return Null, err
		}
		if res, err = b.makenode(v, high, low); err != nil {
			return Null, err
		}
	}
	b.insertnode(kindBinary, tag, n, Null, Null, res)
	return res, nil
}

// ************************************************************

// RelProd returns the relational product of left and right with respect to the
// variables marked in association assoc, meaning the result of (Exists assoc
// . left & right). This is done in a bottom up manner such that both the
// conjunction and quantification are done on the lower nodes before stepping
// up to the higher nodes, without building the full conjunction.
func (b *BDD) RelProd(left, right Node, assoc int) Node {
	a := b.getassoc(assoc)
	if a == nil {
		return Null
	}
	return b.firewall("RelProd", []Node{left, right}, func() (Node, error) {
		if !b.isbool(left) || !b.isbool(right) {
			b.warn("operands of RelProd are not Boolean")
			return Null, nil
		}
		return b.relprod(left, right, a)
	})
}

func (b *BDD) relprod(f, g Node, a *assoc) (Node, error) {
	switch {
	case f == Zero || g == Zero || f == g.Not():
		return Zero, nil
	case f == One && g == One:
		return One, nil
	case f == One:
		return b.exists(g, a)
	case g == One || f == g:
		return b.exists(f, a)
	}
	if b.level(f) > a.last && b.level(g) > a.last {
		b.cache.level++
		res, err := b.apply(f, g, OPand)
		b.cache.level--
		return res, err
	}
	if b.precedes(g, f) {
		f, g = g, f
	}
	tag := mktag(opRelProd, uint32(a.id))
	if res, ok := b.lookupnode(kindBinary, tag, f, g, Null); ok {
		return res, nil
	}
	top := min2(b.level(f), b.level(g))
	v := b.level2var[top]
	f1, f0 := b.cofactors(f, top)
	g1, g0 := b.cofactors(g, top)
	high, err := b.relprod(f1, g1, a)
	if err != nil {
		return Null, err
	}
	var res Node
	switch {
	case a.slots[v] == quantmark && high == One:
		res = One
	case a.slots[v] == quantmark:
		low, err := b.relprod(f0, g0, a)
		if err != nil {
			return Null, err
		}
		b.cache.level++
		res, err = b.ite(high, One, low)
		b.cache.level--
		if err != nil {
			return Null, err
		}
	default:
		low, err := b.relprod(f0, g0, a)
		if err != nil {
			return Null, err
		}
		if res, err = b.makenode(v, high, low); err != nil {
			return Null, err
		}
	}
	b.insertnode(kindBinary, tag, f, g, Null, res)
	return res, nil
}

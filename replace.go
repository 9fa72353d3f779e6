// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package mtbdd

// Substitute returns the result of replacing simultaneously, in n, every
// variable of association assoc by its associated function (see NewAssoc).
// Variables marked for quantification, or not in the association, are left
// unchanged.
func (b *BDD) Substitute(n Node, assoc int) Node {
	a := b.getassoc(assoc)
	if a == nil {
		return Null
	}
	return b.firewall("Substitute", []Node{n}, func() (Node, error) {
		return b.substitute(n, a)
	})
}

func (b *BDD) substitute(n Node, a *assoc) (Node, error) {
	if b.isconst(n) || b.level(n) > a.last {
		return n, nil
	}
	tag := mktag(opSubst, uint32(a.id))
	if res, ok := b.lookupnode(kindBinary, tag, n, Null, Null); ok {
		return res, nil
	}
	v := b.nodes[n.id()].index
	high, err := b.substitute(b.high(n), a)
	if err != nil {
		return Null, err
	}
	low, err := b.substitute(b.low(n), a)
	if err != nil {
		return Null, err
	}
	repl := a.slots[v]
	if repl == Null || repl == quantmark {
		repl = b.varset[v]
	}
	b.cache.level++
	res, err := b.ite(repl, high, low)
	b.cache.level--
	if err != nil {
		return Null, err
	}
	b.insertnode(kindBinary, tag, n, Null, Null, res)
	return res, nil
}

// ************************************************************

// Compose returns the result of substituting variable v (given by its
// identity) by g in n. When g is a constant, the result is a cofactor of n
// and we use a faster algorithm.
func (b *BDD) Compose(n Node, v int, g Node) Node {
	if v < 0 || v >= len(b.varset) {
		b.warn("unknown variable used (%d) in call to Compose", v)
		return Null
	}
	return b.firewall("Compose", []Node{n, g}, func() (Node, error) {
		if !b.isbool(g) {
			b.warn("function in call to Compose is not Boolean")
			return Null, nil
		}
		if g == One || g == Zero {
			return b.restrictvar(n, uint32(v), g == One)
		}
		return b.compose(n, uint32(v), g)
	})
}

func (b *BDD) compose(n Node, v uint32, g Node) (Node, error) {
	lv := b.var2level[v]
	if b.level(n) > lv {
		return n, nil
	}
	proj := b.varset[v]
	if res, ok := b.lookupnode(kindTernary, opCompose, n, g, proj); ok {
		return res, nil
	}
	var res Node
	var err error
	if b.level(n) == lv {
		b.cache.level++
		res, err = b.ite(g, b.high(n), b.low(n))
		b.cache.level--
	} else {
		var high, low Node
		if high, err = b.compose(b.high(n), v, g); err != nil {
			return Null, err
		}
		if low, err = b.compose(b.low(n), v, g); err != nil {
			return Null, err
		}
		b.cache.level++
		res, err = b.ite(b.varset[b.nodes[n.id()].index], high, low)
		b.cache.level--
	}
	if err != nil {
		return Null, err
	}
	b.insertnode(kindTernary, opCompose, n, g, proj, res)
	return res, nil
}

// restrictvar returns the cofactor of n where variable v is replaced by the
// constant val.
func (b *BDD) restrictvar(n Node, v uint32, val bool) (Node, error) {
	lv := b.var2level[v]
	switch l := b.level(n); {
	case l > lv:
		return n, nil
	case l == lv && val:
		return b.high(n), nil
	case l == lv:
		return b.low(n), nil
	}
	g := b.From(val)
	proj := b.varset[v]
	if res, ok := b.lookupnode(kindTernary, opCompose, n, g, proj); ok {
		return res, nil
	}
	high, err := b.restrictvar(b.high(n), v, val)
	if err != nil {
		return Null, err
	}
	low, err := b.restrictvar(b.low(n), v, val)
	if err != nil {
		return Null, err
	}
	res, err := b.makenode(b.nodes[n.id()].index, high, low)
	if err != nil {
		return Null, err
	}
	b.insertnode(kindTernary, opCompose, n, g, proj, res)
	return res, nil
}

// ************************************************************

// SwapVars returns the function obtained by exchanging the roles of variables
// x and y (given by their identity) in n.
func (b *BDD) SwapVars(n Node, x, y int) Node {
	if x < 0 || x >= len(b.varset) || y < 0 || y >= len(b.varset) {
		b.warn("unknown variable used (%d, %d) in call to SwapVars", x, y)
		return Null
	}
	if x == y {
		return b.Ref(n)
	}
	return b.firewall("SwapVars", []Node{n}, func() (Node, error) {
		vx, vy := uint32(x), uint32(y)
		if b.var2level[vx] > b.var2level[vy] {
			vx, vy = vy, vx
		}
		return b.swapvars(n, vx, vy)
	})
}

// swapvars computes the swap when x is before y in the order. Above x, we
// simply rebuild the nodes. At the first node at or below the level of x, the
// result is ite(x, ite(y, f11, f01), ite(y, f10, f00)) where fab is the
// cofactor of n with x set to a and y set to b.
func (b *BDD) swapvars(n Node, x, y uint32) (Node, error) {
	if b.level(n) > b.var2level[y] {
		return n, nil
	}
	px, py := b.varset[x], b.varset[y]
	if res, ok := b.lookupnode(kindTernary, opSwap, n, px, py); ok {
		return res, nil
	}
	var res Node
	if b.level(n) < b.var2level[x] {
		high, err := b.swapvars(b.high(n), x, y)
		if err != nil {
			return Null, err
		}
		low, err := b.swapvars(b.low(n), x, y)
		if err != nil {
			return Null, err
		}
		if res, err = b.makenode(b.nodes[n.id()].index, high, low); err != nil {
			return Null, err
		}
	} else {
		var fab [2][2]Node
		for a := 0; a < 2; a++ {
			fa, err := b.restrictvar(n, x, a == 1)
			if err != nil {
				return Null, err
			}
			for c := 0; c < 2; c++ {
				if fab[a][c], err = b.restrictvar(fa, y, c == 1); err != nil {
					return Null, err
				}
			}
		}
		var err error
		b.cache.level++
		res, err = b.swapcofactors(px, py, fab)
		b.cache.level--
		if err != nil {
			return Null, err
		}
	}
	b.insertnode(kindTernary, opSwap, n, px, py, res)
	return res, nil
}

func (b *BDD) swapcofactors(px, py Node, fab [2][2]Node) (Node, error) {
	high, err := b.ite(py, fab[1][1], fab[0][1])
	if err != nil {
		return Null, err
	}
	low, err := b.ite(py, fab[1][0], fab[0][0])
	if err != nil {
		return Null, err
	}
	return b.ite(px, high, low)
}

// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package mtbdd

// Not returns the negation of the expression corresponding to node n. Since
// we use complement edges, this operation never creates nodes; it is the same
// as n.Not() except that the result is referenced.
func (b *BDD) Not(n Node) Node {
	if !b.checkptr(n) {
		return Null
	}
	return b.Ref(n.Not())
}

// Ite, short for if-then-else operator, computes the BDD for the expression [(f
// /\ g) \/ (not f /\ h)] more efficiently than doing the three operations
// separately. The condition f must be a Boolean function, but g and h may
// reach multi-terminal leaves.
func (b *BDD) Ite(f, g, h Node) Node {
	return b.firewall("Ite", []Node{f, g, h}, func() (Node, error) {
		if !b.isbool(f) {
			b.warn("condition in call to Ite is not Boolean (%d)", f)
			return Null, nil
		}
		return b.ite(f, g, h)
	})
}

// precedes is the total order on nodes used to choose a representative for
// symmetric calls: smaller level first, then smaller index.
func (b *BDD) precedes(x, y Node) bool {
	lx, ly := b.level(x), b.level(y)
	if lx != ly {
		return lx < ly
	}
	return x.regular() < y.regular()
}

func (b *BDD) ite(f, g, h Node) (Node, error) {
	// terminal and degenerate cases
	switch {
	case f == One:
		return g, nil
	case f == Zero:
		return h, nil
	case g == h:
		return g, nil
	}
	switch {
	case f == g:
		g = One
	case f == g.Not():
		g = Zero
	}
	switch {
	case f == h:
		h = Zero
	case f == h.Not():
		h = One
	}
	switch {
	case g == h:
		return g, nil
	case g == One && h == Zero:
		return f, nil
	case g == Zero && h == One:
		return f.Not(), nil
	}

	// we choose a representative for equivalent calls (standard triples)
	switch {
	case g == One && b.isbool(h):
		if b.precedes(h, f) {
			f, h = h, f
		}
	case h == Zero && b.isbool(g):
		if b.precedes(g, f) {
			f, g = g, f
		}
	case h == One && b.isbool(g):
		if b.precedes(g, f) {
			f, g = g.Not(), f.Not()
		}
	case g == Zero && b.isbool(h):
		if b.precedes(h, f) {
			f, h = h.Not(), f.Not()
		}
	case g == h.Not():
		if b.precedes(g, f) {
			f, g, h = g, f, f.Not()
		}
	}
	// the condition and the then branch are never complemented
	if f.IsComplement() {
		f = f.Not()
		g, h = h, g
	}
	neg := g.IsComplement()
	if neg {
		g, h = g.Not(), h.Not()
	}

	if res, ok := b.lookupnode(kindITE, 0, f, g, h); ok {
		return res.negif(neg), nil
	}
	top := min3(b.level(f), b.level(g), b.level(h))
	f1, f0 := b.cofactors(f, top)
	g1, g0 := b.cofactors(g, top)
	h1, h0 := b.cofactors(h, top)
	high, err := b.ite(f1, g1, h1)
	if err != nil {
		return Null, err
	}
	low, err := b.ite(f0, g0, h0)
	if err != nil {
		return Null, err
	}
	res, err := b.makenode(b.level2var[top], high, low)
	if err != nil {
		return Null, err
	}
	b.insertnode(kindITE, 0, f, g, h, res)
	return res.negif(neg), nil
}

// ************************************************************

// Apply performs all of the basic bdd operations with two operands, such as
// AND, OR etc. Left and right are the operand and opr is the requested
// operation and must be one of the following:
//
//  Identifier    Description             Truth table
//
//  OPand         logical and             [0,0,0,1]
//  OPxor         logical xor             [0,1,1,0]
//  OPor          logical or              [0,1,1,1]
//  OPnand        logical not-and         [1,1,1,0]
//  OPnor         logical not-or          [1,0,0,0]
//  OPimp         implication             [1,1,0,1]
//  OPbiimp       equivalence             [1,0,0,1]
//  OPdiff        set difference          [0,0,1,0]
//  OPless        less than               [0,1,0,0]
//  OPinvimp      reverse implication     [1,0,1,1]
//
// Every operation is computed with Ite, using the fact that op(f, g) is equal
// to ite(f, op(1, g), op(0, g)).
func (b *BDD) Apply(left Node, right Node, op Operator) Node {
	if op < 0 || op >= opcount {
		b.warn("unknown operator (%d) in call to Apply", op)
		return Null
	}
	return b.firewall("Apply", []Node{left, right}, func() (Node, error) {
		if !b.isbool(left) || !b.isbool(right) {
			b.warn("operands of %s are not Boolean", op)
			return Null, nil
		}
		return b.apply(left, right, op)
	})
}

func (b *BDD) apply(f, g Node, op Operator) (Node, error) {
	return b.ite(f, op.partial(1, g), op.partial(0, g))
}

// ************************************************************

// ApplyN computes a generic n-ary operation over the nodes in args. The
// function fn is called on the current operands before any recursion and
// should return a result and true when it can decide the value of the
// operation (for instance when all the operands are terminals), and false
// otherwise; in this case we cofactor all operands on their topmost variable
// and recurse. Results are cached (when there are at most 3 operands) with a
// fresh tag, so that unrelated calls never share cache entries.
//
// Nodes returned by fn must be either operands (or their descendants) or
// results of operations called from fn, such as Terminal.
func (b *BDD) ApplyN(fn func(args []Node) (Node, bool), args ...Node) Node {
	if len(args) == 0 {
		b.warn("no operands in call to ApplyN")
		return Null
	}
	return b.firewall("ApplyN", args, func() (Node, error) {
		return b.applyn(b.cache.freshtag(), fn, args)
	})
}

func (b *BDD) applyn(tag uint32, fn func([]Node) (Node, bool), args []Node) (Node, error) {
	res, ok := fn(args)
	if err := b.nestederror(); err != nil {
		return Null, err
	}
	if ok {
		return b.tempref(res), nil
	}
	var key [3]Node
	cached := len(args) <= 3
	if cached {
		key = [3]Node{Null, Null, Null}
		copy(key[:], args)
		if res, ok := b.lookupnode(kindTernary, tag, key[0], key[1], key[2]); ok {
			return res, nil
		}
	}
	top := _CONSTLEVEL
	for _, n := range args {
		top = min2(top, b.level(n))
	}
	if top == _CONSTLEVEL {
		b.warn("no result for terminal operands in call to ApplyN")
		return Null, nil
	}
	highs := make([]Node, len(args))
	lows := make([]Node, len(args))
	for k, n := range args {
		highs[k], lows[k] = b.cofactors(n, top)
	}
	high, err := b.applyn(tag, fn, highs)
	if err != nil || high == Null {
		return Null, err
	}
	low, err := b.applyn(tag, fn, lows)
	if err != nil || low == Null {
		return Null, err
	}
	res, err = b.makenode(b.level2var[top], high, low)
	if err != nil {
		return Null, err
	}
	if cached {
		b.insertnode(kindTernary, tag, key[0], key[1], key[2], res)
	}
	return res, nil
}

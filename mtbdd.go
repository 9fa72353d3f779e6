// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package mtbdd

// NodeType is the classification of a node returned by Type.
type NodeType int

// Possible results of Type
const (
	TypeZero        NodeType = iota // the constant Zero
	TypeOne                         // the constant One
	TypeConstant                    // a multi-terminal leaf
	TypePosVar                      // a positive literal
	TypeNegVar                      // a negative literal
	TypeNonTerminal                 // any other function
	TypeOverflow                    // Null, the result of a failed operation
)

var typenames = [...]string{
	TypeZero:        "zero",
	TypeOne:         "one",
	TypeConstant:    "constant",
	TypePosVar:      "posvar",
	TypeNegVar:      "negvar",
	TypeNonTerminal: "nonterminal",
	TypeOverflow:    "overflow",
}

func (t NodeType) String() string {
	if t < 0 || int(t) >= len(typenames) {
		return "unknown"
	}
	return typenames[t]
}

// Type returns the classification of n.
func (b *BDD) Type(n Node) NodeType {
	switch {
	case !b.checkptr(n):
		return TypeOverflow
	case n == One:
		return TypeOne
	case n == Zero:
		return TypeZero
	case b.isconst(n):
		return TypeConstant
	case b.isvar(n) && n.IsComplement():
		return TypeNegVar
	case b.isvar(n):
		return TypePosVar
	}
	return TypeNonTerminal
}

// ************************************************************

// MTApply combines two multi-terminal functions pointwise. Function op is
// called on pairs of leaves (One, Zero or multi-terminal leaves) and should
// return a leaf, usually built with Terminal.
func (b *BDD) MTApply(f, g Node, op func(x, y Node) Node) Node {
	return b.ApplyN(func(args []Node) (Node, bool) {
		if b.isconst(args[0]) && b.isconst(args[1]) {
			return op(args[0], args[1]), true
		}
		return Null, false
	}, f, g)
}

// MTMap applies op on every leaf of f.
func (b *BDD) MTMap(f Node, op func(x Node) Node) Node {
	return b.ApplyN(func(args []Node) (Node, bool) {
		if b.isconst(args[0]) {
			return op(args[0]), true
		}
		return Null, false
	}, f)
}

// Leaves returns the multi-terminal leaves reachable from n, taking into
// account complement edges. One and Zero are not included.
func (b *BDD) Leaves(n Node) []Value {
	if !b.checkptr(n) {
		return nil
	}
	res := []Value{}
	seen := make(map[Node]bool)
	var walk func(n Node)
	walk = func(n Node) {
		if seen[n] || !b.nodes[n.id()].mt {
			return
		}
		seen[n] = true
		if b.isconst(n) {
			v, _ := b.Value(n)
			res = append(res, v)
			return
		}
		walk(b.high(n))
		walk(b.low(n))
	}
	walk(n)
	return res
}

// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package mtbdd

import "math"

// Node is a reference to a function in a BDD. It packs the index of a vertex
// in the node table together with a complement bit (the least significant
// bit). Two nodes that differ only by their complement bit denote a function
// and its negation, sharing the same storage.
type Node uint32

const (
	// One is the node for the constant function true.
	One Node = 0
	// Zero is the node for the constant function false. It is the complement
	// of One.
	Zero Node = 1
	// Null is returned by operations that failed. It is never a valid node.
	Null Node = math.MaxUint32
)

// Not returns the negation of n without allocating anything. The negation of
// Null is Null.
func (n Node) Not() Node {
	if n == Null {
		return Null
	}
	return n ^ 1
}

// IsComplement reports whether n is a complemented reference.
func (n Node) IsComplement() bool {
	return n != Null && n&1 == 1
}

func (n Node) id() uint32 {
	return uint32(n) >> 1
}

func (n Node) regular() Node {
	return n &^ 1
}

// negif complements n when c is true.
func (n Node) negif(c bool) Node {
	if c {
		return n ^ 1
	}
	return n
}

func mknode(id uint32, neg bool) Node {
	return Node(id<<1).negif(neg)
}

// ************************************************************

// _CONSTINDEX is the variable identity used for terminal vertices and
// _FREEINDEX marks a vertex that is on the free list.
const (
	_CONSTINDEX uint32 = math.MaxUint32
	_FREEINDEX  uint32 = math.MaxUint32 - 1
)

// _CONSTLEVEL is the level of terminal vertices; they always come after every
// variable in the order.
const _CONSTLEVEL int32 = math.MaxInt32

type bddnode struct {
	index  uint32 // Variable identity (stable), _CONSTINDEX for terminals
	high   Node   // Then branch; never complemented
	low    Node   // Else branch
	refcou int32  // Count the number of external references (saturating)
	temp   int32  // Transient references taken by the running operation
	rrefs  int32  // Number of parents, only meaningful during reordering
	mark   uint32 // Generation stamp of the last GC marking this vertex
	next   uint32 // Next vertex in a hash chain or in the free list, 0 if last
	mt     bool   // True if a multi-terminal leaf is reachable from this vertex
}

func (b *BDD) isconst(n Node) bool {
	return b.nodes[n.id()].index == _CONSTINDEX
}

// level returns the position in the current order of the top variable of n.
func (b *BDD) level(n Node) int32 {
	idx := b.nodes[n.id()].index
	if idx == _CONSTINDEX {
		return _CONSTLEVEL
	}
	return b.var2level[idx]
}

func (b *BDD) high(n Node) Node {
	return b.nodes[n.id()].high.negif(n.IsComplement())
}

func (b *BDD) low(n Node) Node {
	return b.nodes[n.id()].low.negif(n.IsComplement())
}

// cofactors returns the high and low cofactors of n with respect to the
// variable at the given level. When the top variable of n is below level, n
// does not depend on it and we return n twice.
func (b *BDD) cofactors(n Node, level int32) (Node, Node) {
	if b.level(n) != level {
		return n, n
	}
	return b.high(n), b.low(n)
}

// isbool reports whether n only reaches the terminals One and Zero.
func (b *BDD) isbool(n Node) bool {
	return !b.nodes[n.id()].mt
}

func min3(p, q, r int32) int32 {
	if p <= q {
		if p <= r {
			return p
		}
		return r
	}
	if q <= r {
		return q
	}
	return r
}

func min2(p, q int32) int32 {
	if p < q {
		return p
	}
	return q
}

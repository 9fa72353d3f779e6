// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package mtbdd

import "github.com/sirupsen/logrus"

// NewVarFirst creates a new variable placed before every other variable in the
// order and returns its projection function. The identity of the new variable
// is the previous value of Varnum.
func (b *BDD) NewVarFirst() Node {
	return b.newvar(0)
}

// NewVarLast creates a new variable placed after every other variable in the
// order.
func (b *BDD) NewVarLast() Node {
	return b.newvar(int32(len(b.level2var)))
}

// NewVarBefore creates a new variable placed just before the top variable of
// n. If n is not a variable (a node with a single variable in its support),
// we log a warning and add the variable last.
func (b *BDD) NewVarBefore(n Node) Node {
	if !b.isvar(n) {
		b.warn("node %d is not a variable in call to NewVarBefore", n)
		return b.NewVarLast()
	}
	return b.newvar(b.level(n))
}

// NewVarAfter creates a new variable placed just after the top variable of n.
// See NewVarBefore.
func (b *BDD) NewVarAfter(n Node) Node {
	if !b.isvar(n) {
		b.warn("node %d is not a variable in call to NewVarAfter", n)
		return b.NewVarLast()
	}
	return b.newvar(b.level(n) + 1)
}

// isvar reports whether n is a positive or negative literal.
func (b *BDD) isvar(n Node) bool {
	if !b.checkptr(n) || b.isconst(n) {
		return false
	}
	nd := &b.nodes[n.id()]
	return nd.high == One && nd.low == Zero
}

func (b *BDD) newvar(level int32) Node {
	if b.inop {
		b.warn("cannot create a variable inside an operation")
		return Null
	}
	if len(b.var2level) >= _MAXVAR {
		return b.seterror(ErrOverflow, "too many variables (%d)", len(b.var2level))
	}
	v := uint32(len(b.var2level))
	for k := range b.var2level {
		if b.var2level[k] >= level {
			b.var2level[k]++
		}
	}
	b.var2level = append(b.var2level, level)
	b.level2var = append(b.level2var, 0)
	copy(b.level2var[level+1:], b.level2var[level:])
	b.level2var[level] = v
	b.subtables = append(b.subtables, newsubtable())
	id := b.allocnode()
	b.nodes[id] = bddnode{index: v, high: One, low: Zero, refcou: _MAXREFCOUNT}
	b.insert(v, id)
	b.varset = append(b.varset, mknode(id, false))
	b.assocs.newvar(level)
	b.tree.newvar(level, int32(len(b.level2var)))
	b.logger.WithFields(logrus.Fields{"var": v, "level": level}).Debug("new variable")
	return b.varset[v]
}

// ************************************************************

// Block is a group of variables that are contiguous in the order. Blocks are
// organized in a tree whose root spans every variable. Reordering algorithms
// move blocks as a whole and never move a variable outside of its block. The
// children of a block that is not reorderable keep their relative order.
type Block struct {
	first       int32 // level of the first variable in the block
	last        int32 // level of the last variable in the block
	reorderable bool
	children    []*Block // sorted by levels
	parent      *Block
}

// First returns the level of the first variable in the block.
func (bl *Block) First() int {
	return int(bl.first)
}

// Last returns the level of the last variable in the block.
func (bl *Block) Last() int {
	return int(bl.last)
}

// Reorderable reports whether the children of the block can be permuted.
func (bl *Block) Reorderable() bool {
	return bl.reorderable
}

// Children returns the sub-blocks of bl.
func (bl *Block) Children() []*Block {
	return bl.children
}

// Blocks returns the root of the block tree.
func (b *BDD) Blocks() *Block {
	return b.tree
}

// NewBlock creates a block for the n variables that follow (and include)
// variable v in the current order. The new block must not overlap partially
// with an existing block. We return nil, and log a warning, if the block is
// not valid.
func (b *BDD) NewBlock(v Node, n int, reorderable bool) *Block {
	if !b.isvar(v) || n < 1 {
		b.warn("bad arguments (%d, %d) in call to NewBlock", v, n)
		return nil
	}
	first := b.level(v)
	last := first + int32(n) - 1
	if int(last) >= len(b.level2var) {
		b.warn("block [%d,%d] exceeds the number of variables", first, last)
		return nil
	}
	parent := b.tree
	for found := true; found; {
		found = false
		for _, c := range parent.children {
			if c.first <= first && last <= c.last {
				if c.first == first && c.last == last {
					b.warn("block [%d,%d] already exists", first, last)
					return nil
				}
				parent, found = c, true
				break
			}
		}
	}
	nb := &Block{first: first, last: last, reorderable: reorderable, parent: parent}
	children := []*Block{}
	for _, c := range parent.children {
		switch {
		case c.last < first || c.first > last:
			children = append(children, c)
		case first <= c.first && c.last <= last:
			c.parent = nb
			nb.children = append(nb.children, c)
		default:
			b.warn("block [%d,%d] overlaps with block [%d,%d]", first, last, c.first, c.last)
			for _, d := range nb.children {
				d.parent = parent
			}
			return nil
		}
	}
	pos := len(children)
	for k, c := range children {
		if c.first > last {
			pos = k
			break
		}
	}
	children = append(children, nil)
	copy(children[pos+1:], children[pos:])
	children[pos] = nb
	parent.children = children
	return nb
}

// newvar updates the block ranges after the creation of a variable at the
// given level. The new variable belongs to every block strictly containing the
// level.
func (bl *Block) newvar(level, varnum int32) {
	if bl.parent == nil {
		bl.first, bl.last = 0, varnum-1
	} else {
		if bl.first >= level {
			bl.first++
		}
		if bl.last >= level {
			bl.last++
		}
	}
	for _, c := range bl.children {
		c.newvar(level, varnum)
	}
}

// shift moves the block and its descendants by delta levels.
func (bl *Block) shift(delta int32) {
	bl.first += delta
	bl.last += delta
	for _, c := range bl.children {
		c.shift(delta)
	}
}

func (bl *Block) size() int32 {
	return bl.last - bl.first + 1
}

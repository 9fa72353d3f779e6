// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package mtbdd

import (
	"sort"

	"github.com/sirupsen/logrus"
)

// ReorderMethod is the heuristic used to improve the variable order.
type ReorderMethod int

// Available reordering methods.
const (
	ReorderNone    ReorderMethod = iota // no reordering
	ReorderWindow3                      // stable window permutations of size 2 and 3
	ReorderSift                         // sifting of blocks
	ReorderHybrid                       // sifting with an adaptive growth bound
)

var reordernames = [...]string{
	ReorderNone:    "none",
	ReorderWindow3: "window3",
	ReorderSift:    "sift",
	ReorderHybrid:  "hybrid",
}

func (m ReorderMethod) String() string {
	if m < 0 || int(m) >= len(reordernames) {
		return "unknown"
	}
	return reordernames[m]
}

// ParseReorderMethod returns the method with the given name.
func ParseReorderMethod(name string) (ReorderMethod, bool) {
	for k, s := range reordernames {
		if s == name {
			return ReorderMethod(k), true
		}
	}
	return ReorderNone, false
}

type reorderState struct {
	growth  float64 // current growth bound for sifting
	running bool
}

// SetReordering sets the method used for dynamic reordering. Reordering is
// triggered when a garbage collection does not reclaim enough nodes.
func (b *BDD) SetReordering(method ReorderMethod) {
	b.reordering = method
}

// Reorder improves the variable order using the given method. Functions are
// not changed (an evaluation over variable identities gives the same result),
// only the number of nodes may change. It returns the number of live nodes
// after reordering.
func (b *BDD) Reorder(method ReorderMethod) int {
	if b.inop {
		b.warn("call to Reorder inside an operation")
		return b.livenodes
	}
	b.reorder(method)
	return b.livenodes
}

// reorderauto is called when an operation stops because the table is too
// full.
func (b *BDD) reorderauto() {
	b.reorder(b.reordering)
	if 3*b.livenodes > 2*b.gcthreshold {
		b.gcthreshold *= 2
	}
}

func (b *BDD) reorder(method ReorderMethod) {
	if method == ReorderNone || len(b.level2var) < 2 {
		return
	}
	b.reord.running = true
	b.gc()
	b.cache.reset()
	b.setrrefs()
	before := b.livenodes
	switch method {
	case ReorderWindow3:
		b.reorderblock(b.tree, b.window3)
	case ReorderSift:
		b.reorderblock(b.tree, b.sift(b.maxgrowth))
	case ReorderHybrid:
		b.reorderblock(b.tree, b.sift(b.reord.growth))
		if float64(b.livenodes) < 0.9*float64(before) {
			b.reord.growth *= 1.1
		} else {
			b.reord.growth *= 0.9
		}
		if b.reord.growth < 1.05 {
			b.reord.growth = 1.05
		}
		if b.reord.growth > 2.0 {
			b.reord.growth = 2.0
		}
	}
	b.cache.reset()
	b.reorderings++
	b.reord.running = false
	b.logger.WithFields(logrus.Fields{
		"method": method,
		"before": before,
		"after":  b.livenodes,
	}).Debug("reordering")
}

// setrrefs computes the number of references to each node: one for each
// parent, plus one if the node has an external or temporary reference.
func (b *BDD) setrrefs() {
	for k := range b.nodes {
		b.nodes[k].rrefs = 0
	}
	for k := range b.nodes {
		nd := &b.nodes[k]
		if nd.index == _FREEINDEX {
			continue
		}
		if nd.refcou > 0 || nd.temp > 0 {
			nd.rrefs++
		}
		if nd.index != _CONSTINDEX {
			b.nodes[nd.high.id()].rrefs++
			b.nodes[nd.low.id()].rrefs++
		}
	}
}

// ************************************************************

// exchange swaps the variables at levels l and l+1. Nodes of the variable at
// level l that depend on the variable at level l+1 are rewritten in place, so
// that every node keeps denoting the same function.
func (b *BDD) exchange(l int32) {
	x, y := b.level2var[l], b.level2var[l+1]
	st := &b.subtables[x]
	var moved []uint32
	var stay []uint32
	for _, k := range st.buckets {
		for ; k != 0; k = b.nodes[k].next {
			nd := &b.nodes[k]
			if b.level(nd.high) == l+1 || b.level(nd.low) == l+1 {
				moved = append(moved, k)
			} else {
				stay = append(stay, k)
			}
		}
	}
	for k := range st.buckets {
		st.buckets[k] = 0
	}
	st.count = 0
	for _, k := range stay {
		b.insert(x, k)
	}
	for _, k := range moved {
		f1, f0 := b.nodes[k].high, b.nodes[k].low
		f11, f10 := b.cofactors(f1, l+1)
		f01, f00 := b.cofactors(f0, l+1)
		high := b.findreorder(x, f11, f01)
		low := b.findreorder(x, f10, f00)
		b.nodes[k].index = y
		b.nodes[k].high = high
		b.nodes[k].low = low
		b.insert(y, k)
		b.derefreorder(f1)
		b.derefreorder(f0)
	}
	b.level2var[l], b.level2var[l+1] = y, x
	b.var2level[x], b.var2level[y] = l+1, l
	b.assocs.exchange(l, x, y)
}

// findreorder is the version of makenode used during reordering. It never
// triggers a garbage collection and counts references in rrefs.
func (b *BDD) findreorder(v uint32, high, low Node) Node {
	if high == low {
		b.nodes[high.id()].rrefs++
		return high
	}
	if high.IsComplement() {
		return b.findreorder(v, high.Not(), low.Not()).Not()
	}
	st := &b.subtables[v]
	for k := st.buckets[nodehash(high, low, len(st.buckets))]; k != 0; k = b.nodes[k].next {
		if b.nodes[k].high == high && b.nodes[k].low == low {
			b.nodes[k].rrefs++
			return mknode(k, false)
		}
	}
	id := b.allocnode()
	b.nodes[id] = bddnode{
		index: v,
		high:  high,
		low:   low,
		rrefs: 1,
		mt:    b.nodes[high.id()].mt || b.nodes[low.id()].mt,
	}
	b.nodes[high.id()].rrefs++
	b.nodes[low.id()].rrefs++
	b.insert(v, id)
	return mknode(id, false)
}

// derefreorder removes a reference to n and frees the nodes that are no longer
// used.
func (b *BDD) derefreorder(n Node) {
	id := n.id()
	if id == 0 {
		return
	}
	nd := &b.nodes[id]
	nd.rrefs--
	if nd.rrefs > 0 {
		return
	}
	if nd.index == _CONSTINDEX {
		v := b.values[id]
		delete(b.terminals, v)
		delete(b.values, id)
		b.hooks.Free(v)
		b.freenode(id)
		return
	}
	high, low := nd.high, nd.low
	b.unlink(id)
	b.freenode(id)
	b.derefreorder(high)
	b.derefreorder(low)
}

// ************************************************************

// unit is a group of variables moved as a whole: either a single variable or
// a sub-block.
type unit struct {
	size  int32
	block *Block
}

// units returns the units of block bl, in the order of their levels.
func (bl *Block) units() []*unit {
	res := []*unit{}
	next := 0
	for l := bl.first; l <= bl.last; {
		if next < len(bl.children) && bl.children[next].first == l {
			c := bl.children[next]
			res = append(res, &unit{size: c.size(), block: c})
			l = c.last + 1
			next++
			continue
		}
		res = append(res, &unit{size: 1})
		l++
	}
	return res
}

// swapunits exchanges units u[k] and u[k+1] of block bl, where the first unit
// starts at level first.
func (b *BDD) swapunits(bl *Block, u []*unit, k int, first int32) {
	s, t := u[k].size, u[k+1].size
	for i := int32(0); i < s; i++ {
		for j := int32(0); j < t; j++ {
			b.exchange(first + s - 1 - i + j)
		}
	}
	if u[k].block != nil {
		u[k].block.shift(t)
	}
	if u[k+1].block != nil {
		u[k+1].block.shift(-s)
	}
	u[k], u[k+1] = u[k+1], u[k]
	sortchildren(bl)
}

func sortchildren(bl *Block) {
	sort.Slice(bl.children, func(i, j int) bool {
		return bl.children[i].first < bl.children[j].first
	})
}

// unitstart returns the level of the first variable of unit u[k].
func unitstart(bl *Block, u []*unit, k int) int32 {
	l := bl.first
	for i := 0; i < k; i++ {
		l += u[i].size
	}
	return l
}

// reorderblock applies method on the units of bl, if it is reorderable, then
// recursively on its sub-blocks.
func (b *BDD) reorderblock(bl *Block, method func(bl *Block, u []*unit)) {
	if bl.reorderable {
		u := bl.units()
		if len(u) > 1 {
			method(bl, u)
		}
	}
	for _, c := range bl.children {
		b.reorderblock(c, method)
	}
}

// ************************************************************

// window2 swaps units k and k+1 and keeps the swap if the number of nodes
// decreases.
func (b *BDD) window2(bl *Block, u []*unit, k int) bool {
	size := b.livenodes
	first := unitstart(bl, u, k)
	b.swapunits(bl, u, k, first)
	if b.livenodes < size {
		return true
	}
	b.swapunits(bl, u, k, first)
	return false
}

// window3 tries the 6 permutations of units k, k+1 and k+2 and keeps the best
// one.
func (b *BDD) window3perm(bl *Block, u []*unit, k int) bool {
	moves := [6]int{0, 1, 0, 1, 0, 1}
	first := unitstart(bl, u, k)
	start := b.livenodes
	best, bestsize := 0, start
	for m := 0; m < 5; m++ {
		p := k + moves[m]
		b.swapunits(bl, u, p, unitstart(bl, u, p))
		if b.livenodes < bestsize {
			best, bestsize = m+1, b.livenodes
		}
	}
	if best == 0 {
		b.swapunits(bl, u, k+1, first+u[k].size)
		return false
	}
	for m := 4; m >= best; m-- {
		p := k + moves[m]
		b.swapunits(bl, u, p, unitstart(bl, u, p))
	}
	return true
}

// window3 is the stable version of window permutation: after an improvement,
// the neighboring windows are tried again.
func (b *BDD) window3(bl *Block, u []*unit) {
	if len(u) == 2 {
		b.window2(bl, u, 0)
		return
	}
	n := len(u) - 2
	todo := make([]bool, n)
	for k := range todo {
		todo[k] = true
	}
	for again := true; again; {
		again = false
		for k := 0; k < n; k++ {
			if !todo[k] {
				continue
			}
			todo[k] = false
			if b.window3perm(bl, u, k) {
				again = true
				for i := k - 2; i <= k+2; i++ {
					if i >= 0 && i < n {
						todo[i] = true
					}
				}
			}
		}
	}
}

// ************************************************************

// weight returns the average number of nodes per level in unit u[k].
func (b *BDD) weight(bl *Block, u []*unit, k int) float64 {
	first := unitstart(bl, u, k)
	total := 0
	for l := first; l < first+u[k].size; l++ {
		total += b.subtables[b.level2var[l]].count
	}
	return float64(total) / float64(u[k].size)
}

// sift returns a method that moves each unit of a block, in order of
// decreasing weight, to every reachable position and leaves it at the one
// giving the smallest number of nodes. We stop moving in one direction as soon
// as the size exceeds the best size found times growth.
func (b *BDD) sift(growth float64) func(bl *Block, u []*unit) {
	if growth < 1.0 {
		growth = 1.0
	}
	return func(bl *Block, u []*unit) {
		weights := make(map[*unit]float64, len(u))
		for k := range u {
			weights[u[k]] = b.weight(bl, u, k)
		}
		order := make([]*unit, len(u))
		copy(order, u)
		sort.SliceStable(order, func(i, j int) bool {
			return weights[order[i]] > weights[order[j]]
		})
		for _, un := range order {
			b.siftunit(bl, u, indexof(u, un), growth)
		}
	}
}

func indexof(u []*unit, un *unit) int {
	for k := range u {
		if u[k] == un {
			return k
		}
	}
	return -1
}

func (b *BDD) siftunit(bl *Block, u []*unit, pos int, growth float64) {
	best, bestsize := pos, b.livenodes
	// down
	for pos < len(u)-1 && float64(b.livenodes) <= growth*float64(bestsize) {
		b.swapunits(bl, u, pos, unitstart(bl, u, pos))
		pos++
		if b.livenodes < bestsize {
			best, bestsize = pos, b.livenodes
		}
	}
	// up
	for pos > 0 && float64(b.livenodes) <= growth*float64(bestsize) {
		b.swapunits(bl, u, pos-1, unitstart(bl, u, pos-1))
		pos--
		if b.livenodes < bestsize {
			best, bestsize = pos, b.livenodes
		}
	}
	// back to the best position
	for pos < best {
		b.swapunits(bl, u, pos, unitstart(bl, u, pos))
		pos++
	}
	for pos > best {
		b.swapunits(bl, u, pos-1, unitstart(bl, u, pos-1))
		pos--
	}
}

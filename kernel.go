// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package mtbdd

// _MINFREENODES is the minimal number of nodes (%) that has to be reclaimed by
// a garbage collection unless the GC threshold should be raised.
const _MINFREENODES int = 20

// _MAXVAR is the maximal number of variables in the BDD.
const _MAXVAR int = 0x1FFFFF

// _MAXREFCOUNT is the maximal value of the reference counter (refcou), also
// used to stick nodes (like constants and variables) in the node list.
const _MAXREFCOUNT int32 = 0x3FF

// _DEFAULTCHECKINTERVAL is the default number of node creations between two
// tests of the abort flag.
const _DEFAULTCHECKINTERVAL int = 256

// _MINBUCKETS is the initial number of buckets in a unique subtable.
const _MINBUCKETS int = 7

// subtable is the unique table of a single variable. Nodes are chained
// through their next field, with 0 marking the end of a chain.
type subtable struct {
	buckets []uint32
	count   int
}

func newsubtable() subtable {
	return subtable{buckets: make([]uint32, bdd_prime_gte(_MINBUCKETS))}
}

func nodehash(high, low Node, size int) int {
	return int(_PAIR(uint64(high), uint64(low)) % uint64(size))
}

// makenode returns the unique node for variable v with the given branches. A
// complemented then branch is pushed on the result so that stored nodes always
// have a regular high edge. The result is temporarily referenced.
func (b *BDD) makenode(v uint32, high, low Node) (Node, error) {
	if high == low {
		return b.tempref(high), nil
	}
	if high.IsComplement() {
		res, err := b.makenode(v, high.Not(), low.Not())
		return res.Not(), err
	}
	b.cache.uniqueAccess++
	st := &b.subtables[v]
	for k := st.buckets[nodehash(high, low, len(st.buckets))]; k != 0; k = b.nodes[k].next {
		b.cache.uniqueChain++
		if b.nodes[k].high == high && b.nodes[k].low == low {
			b.cache.uniqueHit++
			return b.tempref(mknode(k, false)), nil
		}
	}
	b.cache.uniqueMiss++
	if err := b.checkpoint(); err != nil {
		return Null, err
	}
	id := b.allocnode()
	b.nodes[id] = bddnode{
		index: v,
		high:  high,
		low:   low,
		mt:    b.nodes[high.id()].mt || b.nodes[low.id()].mt,
	}
	b.insert(v, id)
	return b.tempref(mknode(id, false)), nil
}

// insert adds node id in the subtable of variable v, doubling the number of
// buckets when the table holds more than 4 nodes per bucket.
func (b *BDD) insert(v uint32, id uint32) {
	st := &b.subtables[v]
	if st.count >= 4*len(st.buckets) {
		b.rehash(v, bdd_prime_gte(2*len(st.buckets)))
	}
	h := nodehash(b.nodes[id].high, b.nodes[id].low, len(st.buckets))
	b.nodes[id].next = st.buckets[h]
	st.buckets[h] = id
	st.count++
}

func (b *BDD) rehash(v uint32, size int) {
	st := &b.subtables[v]
	old := st.buckets
	st.buckets = make([]uint32, size)
	for _, k := range old {
		for k != 0 {
			next := b.nodes[k].next
			h := nodehash(b.nodes[k].high, b.nodes[k].low, size)
			b.nodes[k].next = st.buckets[h]
			st.buckets[h] = k
			k = next
		}
	}
	b.logger.WithField("var", v).WithField("buckets", size).Debug("unique table resized")
}

// unlink removes node id from the subtable of its variable. It does not free
// the node.
func (b *BDD) unlink(id uint32) {
	v := b.nodes[id].index
	st := &b.subtables[v]
	h := nodehash(b.nodes[id].high, b.nodes[id].low, len(st.buckets))
	if st.buckets[h] == id {
		st.buckets[h] = b.nodes[id].next
		st.count--
		return
	}
	for k := st.buckets[h]; k != 0; k = b.nodes[k].next {
		if b.nodes[k].next == id {
			b.nodes[k].next = b.nodes[id].next
			st.count--
			return
		}
	}
	b.fatal("node %d not found in unique table of variable %d", id, v)
}

// ************************************************************

// allocnode returns the index of a fresh vertex, taken from the free list if
// possible. The vertex content is undefined.
func (b *BDD) allocnode() uint32 {
	b.produced++
	b.livenodes++
	if b.freepos != 0 {
		id := b.freepos
		b.freepos = b.nodes[id].next
		b.freenum--
		return id
	}
	if len(b.nodes) == cap(b.nodes) {
		b.logger.WithField("nodes", len(b.nodes)).Debug("node table resized")
	}
	b.nodes = append(b.nodes, bddnode{})
	return uint32(len(b.nodes) - 1)
}

func (b *BDD) freenode(id uint32) {
	b.nodes[id] = bddnode{index: _FREEINDEX, next: b.freepos}
	b.freepos = id
	b.freenum++
	b.livenodes--
}

// ************************************************************

// tempref protects n from garbage collection until the end of the current
// operation.
func (b *BDD) tempref(n Node) Node {
	if n == Null {
		return n
	}
	id := n.id()
	if id == 0 {
		return n
	}
	if b.nodes[id].temp == 0 {
		b.temps = append(b.temps, id)
	}
	b.nodes[id].temp++
	return n
}

func (b *BDD) cleartemps() {
	for _, id := range b.temps {
		b.nodes[id].temp = 0
	}
	b.temps = b.temps[:0]
}

// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package mtbdd

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kinds of entries in the operation cache
const (
	kindNone       uint8 = iota // empty slot
	kindITE                     // (f, g, h) -> node
	kindBinary                  // (tag, f, g) -> node
	kindTernary                 // (tag, f, g, h) -> node
	kindUnaryData               // (tag, f) -> data
	kindBinaryData              // (tag, f, g) -> data
	kindUser                    // first user-registered kind
)

// _MAXUSERKINDS is the number of kinds that can be added with
// RegisterCacheKind.
const _MAXUSERKINDS = 4

// Operation codes, stored in the 8 low bits of entry tags. Apply uses the
// value of its Operator. The remaining bits hold an association id or a
// fresh number for generic operations.
const (
	opExists uint32 = 0x10 + iota
	opRelProd
	opSubst
	opCompose
	opCProject
	opSwap
	opReduce
	opCofactor
	opIntersects
	opLeq
	opFraction
	opApplyN
)

// _MAXTAGID is the largest identifier that fits in a tag.
const _MAXTAGID uint32 = 1<<24 - 1

func mktag(op uint32, id uint32) uint32 {
	return id<<8 | op
}

// ************************************************************

type cacheEntry struct {
	kind uint8
	tag  uint32
	a    Node
	b    Node
	c    Node
	res  Node
	data [2]uint64
}

// cachebin holds two entries, the most recently used in slot 0.
type cachebin [2]cacheEntry

// opcache is used for caching ITE, apply, quantification, etc. results.
type opcache struct {
	table  []cachebin
	level  int        // when positive, lookups and inserts only use slot 0
	users  []CacheOps // operations of user kinds
	tagseq uint32     // last fresh tag id
	cacheStat
}

// cacheStat stores status information about cache usage
type cacheStat struct {
	uniqueAccess int // accesses to the unique node table
	uniqueChain  int // iterations through the cache chains in the unique node table
	uniqueHit    int // entries actually found in the the unique node table
	uniqueMiss   int // entries not found in the the unique node table
	opHit        int // entries found in the operator caches
	opMiss       int // entries not found in the operator caches
	opPurged     int // entries removed by garbage collections
}

func (c *opcache) init(size int) {
	if size <= 0 {
		size = 1
	}
	c.table = make([]cachebin, bdd_prime_gte(size))
}

func (c *opcache) hash(e *cacheEntry) uint64 {
	if e.kind >= kindUser {
		return c.users[e.kind-kindUser].Rehash(e.public())
	}
	return entryhash(e.kind, e.tag, e.a, e.b, e.c)
}

func (c *opcache) bin(e *cacheEntry) *cachebin {
	return &c.table[c.hash(e)%uint64(len(c.table))]
}

func (e *cacheEntry) matches(key *cacheEntry) bool {
	return e.kind == key.kind && e.tag == key.tag && e.a == key.a && e.b == key.b && e.c == key.c
}

// lookup returns the entry matching the key part of e (kind, tag and
// operands). A hit in slot 1 is promoted to slot 0.
func (c *opcache) lookup(key cacheEntry) (cacheEntry, bool) {
	bin := c.bin(&key)
	if bin[0].matches(&key) {
		c.opHit++
		return bin[0], true
	}
	if c.level == 0 && bin[1].matches(&key) {
		c.opHit++
		bin[0], bin[1] = bin[1], bin[0]
		return bin[0], true
	}
	c.opMiss++
	return cacheEntry{}, false
}

func (c *opcache) insert(e cacheEntry) {
	bin := c.bin(&e)
	if c.level == 0 {
		bin[1] = bin[0]
	}
	bin[0] = e
}

// flush drops the entries matching pred.
func (c *opcache) flush(pred func(e *cacheEntry) bool) {
	for k := range c.table {
		bin := &c.table[k]
		for s := 1; s >= 0; s-- {
			if bin[s].kind != kindNone && pred(&bin[s]) {
				bin[s] = cacheEntry{}
			}
		}
		if bin[0].kind == kindNone {
			bin[0], bin[1] = bin[1], cacheEntry{}
		}
	}
}

func (c *opcache) reset() {
	for k := range c.table {
		c.table[k] = cachebin{}
	}
}

// resize changes the number of bins and rehashes the existing entries.
func (c *opcache) resize(size int) {
	old := c.table
	c.init(size)
	saved := c.level
	c.level = 0
	for k := range old {
		for s := 1; s >= 0; s-- {
			if old[k][s].kind != kindNone {
				c.insert(old[k][s])
			}
		}
	}
	c.level = saved
}

// freshtag returns a tag that was never used since the last wrap around. On
// wrap around we flush every entry of generic operations.
func (c *opcache) freshtag() uint32 {
	c.tagseq++
	if c.tagseq > _MAXTAGID {
		c.tagseq = 1
		c.flush(func(e *cacheEntry) bool {
			return e.tag&0xFF == opApplyN
		})
	}
	return mktag(opApplyN, c.tagseq)
}

// ************************************************************

// purge removes the cache entries that refer to nodes not marked by the
// current garbage collection. It must be called after marking and before
// sweeping.
func (b *BDD) cachepurge() {
	live := func(n Node) bool {
		return n == Null || b.ismarked(n)
	}
	purged := 0
	b.cache.flush(func(e *cacheEntry) bool {
		var ok bool
		if e.kind >= kindUser {
			ops := b.cache.users[e.kind-kindUser]
			ok = ops.Live(e.public(), live)
			if !ok {
				ops.Purge(e.public())
			}
		} else {
			ok = live(e.a) && live(e.b) && live(e.c) && live(e.res)
		}
		if !ok {
			purged++
		}
		return !ok
	})
	b.cache.opPurged += purged
}

// cachegrow doubles the number of bins when the number of live nodes exceeds
// cacheratio times the size of the cache.
func (b *BDD) cachegrow() {
	if b.cacheratio <= 0 || b.livenodes <= b.cacheratio*len(b.cache.table) {
		return
	}
	b.cache.resize(2 * len(b.cache.table))
	b.logger.WithField("bins", len(b.cache.table)).Debug("cache resized")
}

// lookupnode returns the (temporarily referenced) result of a cached
// operation.
func (b *BDD) lookupnode(kind uint8, tag uint32, f, g, h Node) (Node, bool) {
	e, ok := b.cache.lookup(cacheEntry{kind: kind, tag: tag, a: f, b: g, c: h})
	if !ok {
		return Null, false
	}
	return b.tempref(e.res), true
}

func (b *BDD) insertnode(kind uint8, tag uint32, f, g, h, res Node) {
	b.cache.insert(cacheEntry{kind: kind, tag: tag, a: f, b: g, c: h, res: res})
}

func (b *BDD) lookupdata(kind uint8, tag uint32, f, g Node) ([2]uint64, bool) {
	e, ok := b.cache.lookup(cacheEntry{kind: kind, tag: tag, a: f, b: g, c: Null, res: Null})
	return e.data, ok
}

func (b *BDD) insertdata(kind uint8, tag uint32, f, g Node, data [2]uint64) {
	b.cache.insert(cacheEntry{kind: kind, tag: tag, a: f, b: g, c: Null, res: Null, data: data})
}

// ************************************************************

// CacheEntry is the content of an entry in the operation cache, as seen by
// user-registered kinds.
type CacheEntry struct {
	Tag     uint32
	A, B, C Node
	Result  Node
}

func (e *cacheEntry) public() CacheEntry {
	return CacheEntry{Tag: e.tag, A: e.a, B: e.b, C: e.c, Result: e.res}
}

// CacheOps defines the behavior of a user kind of cache entries. Rehash
// computes the hash of an entry (its position in the cache). Live is called
// during garbage collections and must report whether the entry is still
// valid, given a predicate telling which nodes survive the collection. Purge
// is called on entries removed by a collection. Return computes the result of
// a cache hit. Flush selects the entries dropped by FlushCache.
type CacheOps interface {
	Rehash(e CacheEntry) uint64
	Live(e CacheEntry, live func(Node) bool) bool
	Purge(e CacheEntry)
	Return(e CacheEntry) Node
	Flush(e CacheEntry, arg interface{}) bool
}

// RegisterCacheKind adds a new kind of entries to the operation cache and
// returns its identifier. At most 4 kinds can be registered.
func (b *BDD) RegisterCacheKind(ops CacheOps) (int, error) {
	if len(b.cache.users) >= _MAXUSERKINDS {
		return -1, errors.Errorf("too many cache kinds (max %d)", _MAXUSERKINDS)
	}
	b.cache.users = append(b.cache.users, ops)
	return int(kindUser) + len(b.cache.users) - 1, nil
}

func (b *BDD) userkind(kind int) bool {
	if kind < int(kindUser) || kind >= int(kindUser)+len(b.cache.users) {
		b.warn("unknown cache kind (%d)", kind)
		return false
	}
	return true
}

// CacheLookup searches the cache for an entry of a user kind.
func (b *BDD) CacheLookup(kind int, tag uint32, f, g, h Node) (Node, bool) {
	if !b.userkind(kind) {
		return Null, false
	}
	e, ok := b.cache.lookup(cacheEntry{kind: uint8(kind), tag: tag, a: f, b: g, c: h})
	if !ok {
		return Null, false
	}
	res := b.cache.users[kind-int(kindUser)].Return(e.public())
	if b.inop {
		b.tempref(res)
	}
	return res, true
}

// CacheInsert adds an entry of a user kind in the cache.
func (b *BDD) CacheInsert(kind int, tag uint32, f, g, h, res Node) {
	if !b.userkind(kind) {
		return
	}
	b.cache.insert(cacheEntry{kind: uint8(kind), tag: tag, a: f, b: g, c: h, res: res})
}

// FlushCache removes the entries of a user kind selected by the Flush method
// of the kind.
func (b *BDD) FlushCache(kind int, arg interface{}) {
	if !b.userkind(kind) {
		return
	}
	ops := b.cache.users[kind-int(kindUser)]
	b.cache.flush(func(e *cacheEntry) bool {
		return e.kind == uint8(kind) && ops.Flush(e.public(), arg)
	})
}

// ************************************************************

// Prints information about the cache performance. The information contains the
// number of accesses to the unique node table, the number of times a node was
// (not) found there and how many times a hash chain had to traversed. Hit and
// miss count is also given for the operator caches.
func (c cacheStat) String() string {
	res := fmt.Sprintf("Unique Access:  %d\n", c.uniqueAccess)
	res += fmt.Sprintf("Unique Chain:   %d\n", c.uniqueChain)
	res += fmt.Sprintf("Unique Hit:     %d\n", c.uniqueHit)
	res += fmt.Sprintf("Unique Miss:    %d\n", c.uniqueMiss)
	res += fmt.Sprintf("Operator Hits:  %d\n", c.opHit)
	res += fmt.Sprintf("Operator Miss:  %d\n", c.opMiss)
	res += fmt.Sprintf("Purged:         %d", c.opPurged)
	return res
}

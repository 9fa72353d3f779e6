// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package mtbdd

import (
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// BDD is a manager for a universe of shared Binary Decision Diagrams. It owns
// the node table, the operation cache, the variable order and the variable
// associations. Nodes from different managers must never be mixed.
//
// A BDD is not safe for concurrent use, but independent managers can be used
// from different goroutines.
type BDD struct {
	nodes      []bddnode          // List of all the BDD nodes. Terminal One is always kept at index 0
	freepos    uint32             // First free node, 0 if none
	freenum    int                // Number of free nodes
	livenodes  int                // Number of nodes in use (including terminals)
	subtables  []subtable         // Unique tables, indexed by variable identity
	terminals  map[Value]uint32   // Unique table for multi-terminal leaves
	values     map[uint32]Value   // Payload of multi-terminal leaves
	var2level  []int32            // Position in the order of each variable
	level2var  []uint32           // Variable identity at each position
	varset     []Node             // Projection function of each variable
	temps      []uint32           // Nodes with a non zero temp count
	gcgen      uint32             // Current GC generation
	inop       bool               // True while running inside a firewall
	nested     error              // Error raised by a nested public call (from a callback)
	retrying   bool               // True when replaying an operation after reordering
	abortflag  int32              // Set asynchronously by Abort
	allocs     int                // Node creations since the last abort check
	cache      opcache            // Operation cache
	assocs     assocRegistry      // Variable associations
	tree       *Block             // Root of the variable block tree
	reord      reorderState       // Dynamic reordering state
	hooks      TerminalHooks      // Strategy for multi-terminal leaves
	onOverflow func()             // Called when an operation exceeds the node limit
	onAbort    func()             // Called when an operation is aborted
	logger     logrus.FieldLogger // Destination of warnings and traces
	configs                       // Configurable parameters
	bddStats                      // Information about the BDD
	error                         // Error status to help chain operations
}

// bddStats stores status information about a BDD.
type bddStats struct {
	produced    int // Total number of new nodes ever produced
	gcs         int // Number of garbage collections
	reclaimed   int // Number of nodes freed by garbage collections
	reorderings int // Number of reorderings
	overflows   int // Number of operations stopped by the node limit
	aborts      int // Number of aborted operations
}

// ************************************************************

// New returns a new BDD with varnum variables, with identities 0 to varnum-1
// in this order. Options, such as Nodesize or Cacheratio, can be used to
// configure the manager.
func New(varnum int, options ...func(*configs)) (*BDD, error) {
	c := makeconfigs(varnum)
	for _, f := range options {
		f(c)
	}
	if varnum < 0 || varnum > _MAXVAR {
		return nil, errors.Wrapf(ErrOverflow, "bad number of variable (%d)", varnum)
	}
	b := &BDD{configs: *c}
	b.logger = c.logger
	if b.logger == nil {
		b.logger = defaultLogger()
	}
	b.hooks = c.hooks
	if b.hooks == nil {
		b.hooks = defaultHooks{}
	}
	b.nodes = make([]bddnode, 1, b.nodesize)
	b.nodes[0] = bddnode{index: _CONSTINDEX, refcou: _MAXREFCOUNT}
	b.livenodes = 1
	b.terminals = make(map[Value]uint32)
	b.values = make(map[uint32]Value)
	b.cache.init(b.cachesize)
	b.assocs.init()
	b.tree = &Block{first: 0, last: -1, reorderable: true}
	b.reord.growth = b.maxgrowth
	for k := 0; k < varnum; k++ {
		b.NewVarLast()
	}
	if b.error != nil {
		return nil, b.error
	}
	b.logger.WithFields(logrus.Fields{
		"varnum":   varnum,
		"nodesize": b.nodesize,
		"cache":    len(b.cache.table),
	}).Debug("new BDD")
	return b, nil
}

func defaultLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.WarnLevel)
	return l
}

// ************************************************************

// OnOverflow sets a function called each time an operation is stopped because
// the number of nodes reached the limit set with Maxnodesize.
func (b *BDD) OnOverflow(f func()) {
	b.onOverflow = f
}

// OnAbort sets a function called each time an operation is aborted.
func (b *BDD) OnAbort(f func()) {
	b.onAbort = f
}

// Varnum returns the number of defined variables.
func (b *BDD) Varnum() int {
	return len(b.level2var)
}

// True returns the constant true BDD
func (b *BDD) True() Node {
	return One
}

// False returns the constant false BDD
func (b *BDD) False() Node {
	return Zero
}

// From returns a (constant) Node from a boolean value.
func (b *BDD) From(v bool) Node {
	if v {
		return One
	}
	return Zero
}

// checkptr reports whether n is a valid, live node of b.
func (b *BDD) checkptr(n Node) bool {
	if n == Null {
		return false
	}
	id := n.id()
	if int(id) >= len(b.nodes) {
		return false
	}
	return b.nodes[id].index != _FREEINDEX
}

// Ithvar returns the projection function of the variable with identity i (the
// i'th variable created in b). The result does not need to be freed. We
// return Null and log a warning if the variable does not exist.
func (b *BDD) Ithvar(i int) Node {
	if i < 0 || i >= len(b.varset) {
		b.warn("unknown variable used (%d) in call to Ithvar", i)
		return Null
	}
	return b.varset[i]
}

// NIthvar returns the negation of the i'th variable. See Ithvar.
func (b *BDD) NIthvar(i int) Node {
	return b.Ithvar(i).Not()
}

// VarAtLevel returns the projection function of the variable currently at
// position level in the order.
func (b *BDD) VarAtLevel(level int) Node {
	if level < 0 || level >= len(b.level2var) {
		b.warn("unknown level (%d) in call to VarAtLevel", level)
		return Null
	}
	return b.varset[b.level2var[level]]
}

// VarID returns the identity of the top variable of n, or -1 if n is a
// constant.
func (b *BDD) VarID(n Node) int {
	if !b.checkptr(n) || b.isconst(n) {
		return -1
	}
	return int(b.nodes[n.id()].index)
}

// Level returns the position in the current order of the top variable of n,
// or Varnum() if n is a constant.
func (b *BDD) Level(n Node) int {
	if !b.checkptr(n) {
		return -1
	}
	if b.isconst(n) {
		return len(b.level2var)
	}
	return int(b.level(n))
}

// Low returns the false branch of a BDD. We return Null if n is a constant.
func (b *BDD) Low(n Node) Node {
	if !b.checkptr(n) || b.isconst(n) {
		return Null
	}
	return b.low(n)
}

// High returns the true branch of a BDD. We return Null if n is a constant.
func (b *BDD) High(n Node) Node {
	if !b.checkptr(n) || b.isconst(n) {
		return Null
	}
	return b.high(n)
}

// Order returns the variable identities in their current order.
func (b *BDD) Order() []int {
	res := make([]int, len(b.level2var))
	for k, v := range b.level2var {
		res[k] = int(v)
	}
	return res
}

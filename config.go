// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package mtbdd

import "github.com/sirupsen/logrus"

// configs is used to store the values of different parameters of the BDD
type configs struct {
	varnum        int                // number of BDD variables created by New
	nodesize      int                // initial number of nodes in the table
	cachesize     int                // initial cache size (number of bins)
	cacheratio    int                // max number of live nodes per cache bin before the cache grows (0 if size constant)
	maxnodesize   int                // Maximum total number of nodes (0 if no limit)
	gcthreshold   int                // Number of live nodes that triggers a garbage collection
	minfreenodes  int                // Minimum ratio (%) of nodes that should be freed by a GC before we raise the threshold
	checkinterval int                // Number of node creations between two checks of the abort flag
	reordering    ReorderMethod      // Method used for dynamic reordering (ReorderNone to disable)
	maxgrowth     float64            // Size growth bound used when sifting
	logger        logrus.FieldLogger // Logger used for warnings, debug traces and fatal errors
	hooks         TerminalHooks      // Canonicalization strategy for multi-terminal leaves
}

func makeconfigs(varnum int) *configs {
	c := &configs{varnum: varnum}
	c.nodesize = 2*varnum + 1024
	c.cachesize = 10000
	c.gcthreshold = 1 << 16
	c.minfreenodes = _MINFREENODES
	c.checkinterval = _DEFAULTCHECKINTERVAL
	c.maxgrowth = 1.2
	return c
}

// Nodesize is a configuration option (function). Used as a parameter in New it
// sets a preferred initial size for the node table. The size of the BDD can
// increase during computation.
func Nodesize(size int) func(*configs) {
	return func(c *configs) {
		if size > 0 {
			c.nodesize = size
		}
	}
}

// Maxnodesize is a configuration option (function). Used as a parameter in New
// it sets a limit to the number of live nodes in the BDD. An operation trying
// to raise the number of nodes above this limit will stop with an overflow
// error and return Null. The default value (0) means that there is no limit.
func Maxnodesize(size int) func(*configs) {
	return func(c *configs) {
		c.maxnodesize = size
	}
}

// GCThreshold is a configuration option (function). Used as a parameter in New
// it sets the number of live nodes that triggers the first garbage
// collection. The threshold grows when collections do not reclaim enough
// nodes (see Minfreenodes).
func GCThreshold(size int) func(*configs) {
	return func(c *configs) {
		if size > 0 {
			c.gcthreshold = size
		}
	}
}

// Minfreenodes is a configuration option (function). Used as a parameter in New
// it sets the ratio of free nodes (%) that has to be reclaimed by a garbage
// collection. When a collection frees less than this ratio, the GC threshold
// is doubled. The default value is 20%.
func Minfreenodes(ratio int) func(*configs) {
	return func(c *configs) {
		c.minfreenodes = ratio
	}
}

// Cachesize is a configuration option (function). Used as a parameter in New it
// sets the initial number of bins in the operation cache. Each bin holds two
// entries. The default value is 10 000.
func Cachesize(size int) func(*configs) {
	return func(c *configs) {
		c.cachesize = size
	}
}

// Cacheratio is a configuration option (function). Used as a parameter in New
// it sets a "cache ratio" so that the operation cache can grow with the node
// table. With a cache ratio of r, the cache doubles its size each time the
// number of live nodes is more than r times the number of bins. The default
// value (0) means that the cache size never grows.
func Cacheratio(ratio int) func(*configs) {
	return func(c *configs) {
		c.cacheratio = ratio
	}
}

// CheckInterval is a configuration option (function). It sets the number of
// node creations between two tests of the abort flag (see Abort).
func CheckInterval(n int) func(*configs) {
	return func(c *configs) {
		if n > 0 {
			c.checkinterval = n
		}
	}
}

// Reordering is a configuration option (function). It enables dynamic
// variable reordering with the given method.
func Reordering(method ReorderMethod) func(*configs) {
	return func(c *configs) {
		c.reordering = method
	}
}

// MaxGrowth is a configuration option (function). It bounds the relative size
// increase accepted while sifting a block (for instance 1.2 allows a block to
// go through positions where the BDD is 20% larger than the best size found so
// far). The value is adapted between runs by ReorderHybrid.
func MaxGrowth(factor float64) func(*configs) {
	return func(c *configs) {
		if factor >= 1.0 {
			c.maxgrowth = factor
		}
	}
}

// Logger is a configuration option (function). It sets the logger used for
// warnings, debug traces (garbage collection, resizing, reordering) and fatal
// errors. By default we use a logrus logger at level Warn.
func Logger(l logrus.FieldLogger) func(*configs) {
	return func(c *configs) {
		c.logger = l
	}
}

// Hooks is a configuration option (function). It sets the strategy used to
// canonicalize multi-terminal leaves (see TerminalHooks).
func Hooks(h TerminalHooks) func(*configs) {
	return func(c *configs) {
		c.hooks = h
	}
}

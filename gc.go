// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package mtbdd

import (
	"sync/atomic"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Ref increases the reference count on node n and returns n so that calls can
// be easily chained together. A call to Ref never raises an error, even if n is
// Null or not a live node.
//
// Reference counting is done on externally referenced nodes only. Every
// operation returns a node with one more reference, that the caller should
// release with Free when the node is no longer needed.
func (b *BDD) Ref(n Node) Node {
	if !b.checkptr(n) {
		return n
	}
	if nd := &b.nodes[n.id()]; nd.refcou < _MAXREFCOUNT {
		nd.refcou++
	}
	return n
}

// Free decreases the reference count on node n. Freeing a node that has no
// references is a fatal error (we panic). Nodes with a saturated count, such
// as constants and variables, are never reclaimed.
func (b *BDD) Free(n Node) {
	if n == Null {
		return
	}
	if !b.checkptr(n) {
		b.fatal("free of an unused node (%d)", n)
		return
	}
	nd := &b.nodes[n.id()]
	switch {
	case nd.refcou == 0:
		b.fatal("free of a node with no references (%d)", n)
	case nd.refcou < _MAXREFCOUNT:
		nd.refcou--
	}
}

// Refs returns the number of external references on n.
func (b *BDD) Refs(n Node) int {
	if !b.checkptr(n) {
		return 0
	}
	return int(b.nodes[n.id()].refcou)
}

// *************************************************************************

// GC forces a garbage collection. It returns the number of nodes reclaimed.
func (b *BDD) GC() int {
	if b.inop {
		b.warn("call to GC inside an operation")
		return 0
	}
	before := b.livenodes
	b.gc()
	return before - b.livenodes
}

// gc is the garbage collector called for reclaiming memory. We mark every
// node reachable from a node with an external or temporary reference, purge
// the cache, then free the unmarked nodes. Allocated nodes that are not
// reclaimed do not move.
func (b *BDD) gc() {
	before := b.livenodes
	b.gcgen++
	for k := range b.nodes {
		nd := &b.nodes[k]
		if nd.index != _FREEINDEX && (nd.refcou > 0 || nd.temp > 0) {
			b.markrec(uint32(k))
		}
	}
	b.cachepurge()
	for v := range b.subtables {
		st := &b.subtables[v]
		for h, k := range st.buckets {
			prev := uint32(0)
			for k != 0 {
				next := b.nodes[k].next
				if b.nodes[k].mark == b.gcgen {
					prev = k
				} else {
					if prev == 0 {
						st.buckets[h] = next
					} else {
						b.nodes[prev].next = next
					}
					st.count--
					b.freenode(k)
				}
				k = next
			}
		}
	}
	b.sweepterminals()
	b.gcs++
	b.reclaimed += before - b.livenodes
	b.logger.WithFields(logrus.Fields{
		"live":  b.livenodes,
		"freed": before - b.livenodes,
		"gcs":   b.gcs,
	}).Debug("garbage collection")
}

func (b *BDD) markrec(id uint32) {
	nd := &b.nodes[id]
	if nd.mark == b.gcgen {
		return
	}
	nd.mark = b.gcgen
	if nd.index == _CONSTINDEX {
		return
	}
	b.markrec(nd.high.id())
	b.markrec(nd.low.id())
}

// ismarked reports whether n survives the current garbage collection.
func (b *BDD) ismarked(n Node) bool {
	return n.id() == 0 || b.nodes[n.id()].mark == b.gcgen
}

// *************************************************************************

// Abort asks the running operation (if any) to stop at its next checkpoint.
// The operation returns Null and the callback set with OnAbort is called.
// Abort is the only method of a BDD that can be called from another
// goroutine.
func (b *BDD) Abort() {
	atomic.StoreInt32(&b.abortflag, 1)
}

// checkpoint is called before creating a node. It tests the abort flag, runs
// garbage collections and decides if the operation should stop for reordering
// or because the node limit is reached.
func (b *BDD) checkpoint() error {
	b.allocs++
	if b.allocs >= b.checkinterval {
		b.allocs = 0
		if atomic.LoadInt32(&b.abortflag) != 0 {
			return ErrAborted
		}
	}
	if b.livenodes >= b.gcthreshold {
		before := b.livenodes
		b.gc()
		if b.reordering != ReorderNone && !b.retrying && !b.reord.running && 3*b.livenodes > 2*b.gcthreshold {
			return errRetry
		}
		if (before-b.livenodes)*100 < before*b.minfreenodes {
			b.gcthreshold *= 2
			b.logger.WithField("threshold", b.gcthreshold).Debug("GC threshold raised")
		}
	}
	b.cachegrow()
	if b.maxnodesize > 0 && b.livenodes >= b.maxnodesize {
		return ErrOverflow
	}
	return nil
}

// firewall runs an operation and takes care of the results. On success, the
// result gets an external reference and every temporary reference is
// released. If the operation stops because of a checkpoint, we clean up, call
// the callbacks, record the error and return Null. The operands in args are
// protected during the whole operation.
//
// A firewall entered from inside another operation (for instance from a
// callback in ApplyN) runs the function directly; errors are passed to the
// enclosing operation.
func (b *BDD) firewall(op string, args []Node, fn func() (Node, error)) Node {
	for _, n := range args {
		if n == Null {
			return Null
		}
		if !b.checkptr(n) {
			b.warn("wrong operand in call to %s (%d)", op, n)
			return Null
		}
	}
	if b.inop {
		res, err := fn()
		if err != nil {
			if b.nested == nil {
				b.nested = err
			}
			return Null
		}
		return res
	}
	b.inop = true
	for _, n := range args {
		b.tempref(n)
	}
	res, err := fn()
	if errors.Is(err, errRetry) {
		b.cleartemps()
		for _, n := range args {
			b.tempref(n)
		}
		b.reorderauto()
		b.retrying = true
		res, err = fn()
		b.retrying = false
	}
	b.nested = nil
	if err != nil {
		b.cleartemps()
		b.inop = false
		switch {
		case errors.Is(err, ErrOverflow):
			b.overflows++
			b.gc()
			if b.onOverflow != nil {
				b.onOverflow()
			}
		case errors.Is(err, ErrAborted):
			b.aborts++
			atomic.StoreInt32(&b.abortflag, 0)
			if b.onAbort != nil {
				b.onAbort()
			}
		}
		return b.seterror(err, "%s", op)
	}
	b.Ref(res)
	b.cleartemps()
	b.inop = false
	return res
}

// nestederror returns (and clears) the error raised by a public operation
// called from a callback.
func (b *BDD) nestederror() error {
	err := b.nested
	b.nested = nil
	return err
}

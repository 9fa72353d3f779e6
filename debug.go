// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package mtbdd

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// logTable outputs the node table at trace level.
func (b *BDD) logTable() {
	if l, ok := b.logger.(*logrus.Logger); ok && !l.IsLevelEnabled(logrus.TraceLevel) {
		return
	}
	for k, n := range b.nodes {
		if n.index == _FREEINDEX {
			continue
		}
		b.logger.WithFields(logrus.Fields{
			"id":    k,
			"var":   n.index,
			"high":  n.high,
			"low":   n.low,
			"refs":  n.refcou,
			"temps": n.temp,
			"next":  n.next,
		}).Trace("node")
	}
}

// Check verifies the invariants of the node table: stored nodes are reduced,
// unique in their subtable, have a regular high edge and children at a
// greater level. It also checks the variable order tables. It returns nil if
// everything is fine.
func (b *BDD) Check() error {
	for l, v := range b.level2var {
		if b.var2level[v] != int32(l) {
			return errors.Errorf("variable %d at level %d has position %d", v, l, b.var2level[v])
		}
	}
	live := 0
	for k := range b.nodes {
		if b.nodes[k].index != _FREEINDEX {
			live++
		}
	}
	if live != b.livenodes {
		return errors.Errorf("%d live nodes, counter is %d", live, b.livenodes)
	}
	inserted := 0
	for v := range b.subtables {
		st := &b.subtables[v]
		count := 0
		keys := make(map[[2]Node]bool)
		for _, k := range st.buckets {
			for ; k != 0; k = b.nodes[k].next {
				count++
				nd := &b.nodes[k]
				switch {
				case nd.index != uint32(v):
					return errors.Errorf("node %d of variable %d in subtable %d", k, nd.index, v)
				case nd.high == nd.low:
					return errors.Errorf("node %d is not reduced", k)
				case nd.high.IsComplement():
					return errors.Errorf("node %d has a complemented high edge", k)
				case !b.checkptr(nd.high) || !b.checkptr(nd.low):
					return errors.Errorf("node %d has a dangling edge", k)
				case b.level(nd.high) <= b.var2level[v] || b.level(nd.low) <= b.var2level[v]:
					return errors.Errorf("node %d is not ordered", k)
				case keys[[2]Node{nd.high, nd.low}]:
					return errors.Errorf("node %d is a duplicate", k)
				}
				keys[[2]Node{nd.high, nd.low}] = true
			}
		}
		if count != st.count {
			return errors.Errorf("subtable %d holds %d nodes, counter is %d", v, count, st.count)
		}
		inserted += count
	}
	if inserted+len(b.terminals)+1 != b.livenodes {
		b.logTable()
		return errors.Errorf("%d nodes in tables, %d live nodes", inserted+len(b.terminals)+1, b.livenodes)
	}
	return nil
}

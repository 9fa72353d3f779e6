// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package mtbdd

import "github.com/sirupsen/logrus"

// Value is the payload of a multi-terminal leaf. Its meaning is left to the
// client; the BDD only compares payloads for equality.
type Value [2]uint64

// TerminalHooks is the strategy used to store multi-terminal leaves. Since a
// complemented edge denotes the negation of a function, a leaf reached
// through a complemented edge stands for the transformed value of the stored
// payload.
//
// Canonical reports whether a payload is stored as is. Other payloads are
// stored through their Transform, which must be an involution mapping them to
// canonical payloads. Free is called when a leaf is reclaimed by the garbage
// collector.
type TerminalHooks interface {
	Canonical(v Value) bool
	Transform(v Value) Value
	Free(v Value)
}

// defaultHooks treats payloads as signed integers (stored in the first word)
// that are canonical when non negative; the transform is the bitwise negation
// of both words.
type defaultHooks struct{}

func (defaultHooks) Canonical(v Value) bool  { return v[0]>>63 == 0 }
func (defaultHooks) Transform(v Value) Value { return Value{^v[0], ^v[1]} }
func (defaultHooks) Free(Value)              {}

// ************************************************************

// terminal returns the (temporarily referenced) leaf for payload v.
func (b *BDD) terminal(v Value) (Node, error) {
	neg := !b.hooks.Canonical(v)
	if neg {
		v = b.hooks.Transform(v)
	}
	if id, ok := b.terminals[v]; ok {
		return b.tempref(mknode(id, neg)), nil
	}
	if err := b.checkpoint(); err != nil {
		return Null, err
	}
	id := b.allocnode()
	b.nodes[id] = bddnode{index: _CONSTINDEX, mt: true}
	b.terminals[v] = id
	b.values[id] = v
	return b.tempref(mknode(id, neg)), nil
}

// Terminal returns the multi-terminal leaf with payload v. The result is
// referenced, like the result of every operation.
func (b *BDD) Terminal(v Value) Node {
	return b.firewall("Terminal", nil, func() (Node, error) {
		return b.terminal(v)
	})
}

// Value returns the payload of leaf n, taking into account the complement bit.
// The boolean is false if n is not a multi-terminal leaf.
func (b *BDD) Value(n Node) (Value, bool) {
	if !b.checkptr(n) || !b.isconst(n) || n.id() == 0 {
		return Value{}, false
	}
	v := b.values[n.id()]
	if n.IsComplement() {
		v = b.hooks.Transform(v)
	}
	return v, true
}

// IsTerminal reports whether n is a leaf (One, Zero, or a multi-terminal
// leaf).
func (b *BDD) IsTerminal(n Node) bool {
	return b.checkptr(n) && b.isconst(n)
}

// sweepterminals frees the unmarked multi-terminal leaves and calls the Free
// hook on their payload.
func (b *BDD) sweepterminals() int {
	freed := 0
	for v, id := range b.terminals {
		if b.nodes[id].mark == b.gcgen || b.nodes[id].refcou > 0 || b.nodes[id].temp > 0 {
			continue
		}
		delete(b.terminals, v)
		delete(b.values, id)
		b.hooks.Free(v)
		b.freenode(id)
		freed++
	}
	if freed > 0 {
		b.logger.WithFields(logrus.Fields{"leaves": freed}).Debug("terminals reclaimed")
	}
	return freed
}

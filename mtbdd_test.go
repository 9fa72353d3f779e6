// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package mtbdd

import (
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTerminals(t *testing.T) {
	bdd, _ := New(3)
	n := bdd.Terminal(Value{42, 7})
	require.NotEqual(t, Null, n)
	assert.Equal(t, n, bdd.Terminal(Value{42, 7}), "leaves are hash-consed")
	assert.False(t, n.IsComplement())
	v, ok := bdd.Value(n)
	assert.True(t, ok)
	assert.Equal(t, Value{42, 7}, v)
	// non canonical payloads are stored through their transform
	neg := Value{^uint64(41), ^uint64(7)}
	m := bdd.Terminal(neg)
	assert.True(t, m.IsComplement())
	assert.Equal(t, bdd.Terminal(Value{41, 7}), m.Not())
	v, _ = bdd.Value(m)
	assert.Equal(t, neg, v)
	assert.Equal(t, 2, bdd.Statistics().Terminals)
	_, ok = bdd.Value(One)
	assert.False(t, ok)
	assert.True(t, bdd.IsTerminal(n))
	assert.True(t, bdd.IsTerminal(Zero))
	assert.False(t, bdd.IsTerminal(bdd.Ithvar(0)))
}

func TestType(t *testing.T) {
	bdd, _ := New(3)
	cases := []struct {
		n        Node
		expected NodeType
	}{
		{One, TypeOne},
		{Zero, TypeZero},
		{bdd.Terminal(Value{3, 0}), TypeConstant},
		{bdd.Ithvar(1), TypePosVar},
		{bdd.NIthvar(2), TypeNegVar},
		{bdd.And(bdd.Ithvar(0), bdd.Ithvar(1)), TypeNonTerminal},
		{bdd.Ite(bdd.Ithvar(0), bdd.Terminal(Value{1, 0}), Zero), TypeNonTerminal},
		{Null, TypeOverflow},
	}
	for _, tt := range cases {
		assert.Equal(t, tt.expected, bdd.Type(tt.n), "type of %s", bdd.Print(tt.n))
	}
	assert.Equal(t, "posvar", TypePosVar.String())
}

func leafvalues(vs []Value) []uint64 {
	res := make([]uint64, len(vs))
	for k, v := range vs {
		res[k] = v[0]
	}
	sort.Slice(res, func(i, j int) bool { return res[i] < res[j] })
	return res
}

func TestMTApply(t *testing.T) {
	bdd, _ := New(3)
	leaf := func(v uint64) Node { return bdd.Terminal(Value{v, 0}) }
	f := bdd.Ite(bdd.Ithvar(0), leaf(3), leaf(1))
	g := bdd.Ite(bdd.Ithvar(2), leaf(3), leaf(5))
	max := bdd.MTApply(f, g, func(x, y Node) Node {
		vx, _ := bdd.Value(x)
		vy, _ := bdd.Value(y)
		if vx[0] > vy[0] {
			return x
		}
		return y
	})
	assert.Empty(t, cmp.Diff([]uint64{3, 5}, leafvalues(bdd.Leaves(max))))
	assert.Equal(t, leaf(5), bdd.Eval(max, []bool{true, false, false}))
	assert.Equal(t, leaf(3), bdd.Eval(max, []bool{true, false, true}))
	// the result does not depend on x0 when x2 is true
	assert.Equal(t, leaf(3), bdd.Eval(max, []bool{false, false, true}))
	double := bdd.MTMap(f, func(x Node) Node {
		v, _ := bdd.Value(x)
		return bdd.Terminal(Value{2 * v[0], 0})
	})
	assert.Empty(t, cmp.Diff([]uint64{2, 6}, leafvalues(bdd.Leaves(double))))
	assert.Equal(t, bdd.Ite(bdd.Ithvar(0), leaf(6), leaf(2)), double)
	require.NoError(t, bdd.Check())
}

func TestMTLeavesComplement(t *testing.T) {
	bdd, _ := New(2)
	a := bdd.Terminal(Value{1, 0})
	f := bdd.Ite(bdd.Ithvar(0), a, a.Not())
	vs := bdd.Leaves(f)
	require.Len(t, vs, 2)
	assert.ElementsMatch(t, []Value{{1, 0}, {^uint64(1), ^uint64(0)}}, vs)
	assert.Equal(t, []Value{}, bdd.Leaves(bdd.Ithvar(1)))
}

type countingHooks struct {
	defaultHooks
	freed []Value
}

func (h *countingHooks) Free(v Value) {
	h.freed = append(h.freed, v)
}

func TestTerminalHooks(t *testing.T) {
	hooks := &countingHooks{}
	bdd, _ := New(2, Hooks(hooks))
	keep := bdd.Terminal(Value{1, 0})
	n := bdd.Terminal(Value{2, 0})
	f := bdd.Ite(bdd.Ithvar(0), n, keep)
	bdd.GC()
	assert.Empty(t, hooks.freed)
	bdd.Free(f)
	bdd.Free(n)
	bdd.GC()
	assert.Equal(t, []Value{{2, 0}}, hooks.freed)
	assert.Equal(t, 1, bdd.Statistics().Terminals)
	require.NoError(t, bdd.Check())
	// a new leaf with the same payload is a fresh node
	m := bdd.Terminal(Value{2, 0})
	v, ok := bdd.Value(m)
	assert.True(t, ok)
	assert.Equal(t, Value{2, 0}, v)
}

func TestBooleanOnLeaves(t *testing.T) {
	bdd, _ := New(2)
	n := bdd.Terminal(Value{2, 0})
	// Boolean operators reject multi-terminal operands
	assert.Equal(t, 0, bdd.Satcount(n).Sign())
	assert.False(t, bdd.Leq(n, One))
}

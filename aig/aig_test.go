// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package aig

import (
	"testing"

	"github.com/dalzilio/mtbdd"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// assignments returns every assignment of nvars variables, both as a slice
// and as a map.
func assignments(nvars int) ([][]bool, []map[int]bool) {
	var slices [][]bool
	var maps []map[int]bool
	for x := 0; x < 1<<uint(nvars); x++ {
		s := make([]bool, nvars)
		m := make(map[int]bool, nvars)
		for k := 0; k < nvars; k++ {
			s[k] = x>>uint(k)&1 == 1
			m[k] = s[k]
		}
		slices = append(slices, s)
		maps = append(maps, m)
	}
	return slices, maps
}

func sample(b *mtbdd.BDD) []mtbdd.Node {
	x0, x1, x2, x3 := b.Ithvar(0), b.Ithvar(1), b.Ithvar(2), b.Ithvar(3)
	return []mtbdd.Node{
		mtbdd.One,
		mtbdd.Zero,
		x2,
		b.NIthvar(1),
		b.And(x0, x1),
		b.Xor(x0, x1, x3),
		b.Or(b.And(x0, x2), b.And(b.Not(x0), x3)),
		b.Imp(b.Equiv(x1, x2), x3),
	}
}

func TestFromBDD(t *testing.T) {
	b, _ := mtbdd.New(4)
	c := New(b)
	slices, maps := assignments(4)
	for _, n := range sample(b) {
		m, err := c.FromBDD(n)
		require.NoError(t, err)
		for k := range slices {
			want := b.Eval(n, slices[k]) == mtbdd.One
			assert.Equal(t, want, c.Eval(m, maps[k]), "%s on %v", b.Print(n), slices[k])
		}
	}
	// translation is memoized
	f := b.Xor(b.Ithvar(0), b.Ithvar(1), b.Ithvar(3))
	size := c.C.Len()
	m1, _ := c.FromBDD(f)
	m2, _ := c.FromBDD(b.Not(f))
	assert.Equal(t, size, c.C.Len())
	assert.Equal(t, m1.Not(), m2)
	assert.Equal(t, []int{0, 1, 2, 3}, c.Inputs())
}

func TestNotBoolean(t *testing.T) {
	b, _ := mtbdd.New(2)
	c := New(b)
	_, err := c.FromBDD(mtbdd.Null)
	assert.True(t, errors.Is(err, ErrNotBoolean))
	leaf := b.Terminal(mtbdd.Value{3, 0})
	_, err = c.FromBDD(leaf)
	assert.True(t, errors.Is(err, ErrNotBoolean))
	f := b.Ite(b.Ithvar(0), leaf, mtbdd.Zero)
	_, err = c.FromBDD(f)
	assert.True(t, errors.Is(err, ErrNotBoolean))
	_, _, err = Equivalent(b, f, mtbdd.One)
	assert.Error(t, err)
}

func TestSatisfiable(t *testing.T) {
	b, _ := mtbdd.New(4)
	x0, x1, x3 := b.Ithvar(0), b.Ithvar(1), b.Ithvar(3)
	c := New(b)
	for _, n := range sample(b) {
		model, sat, err := c.Satisfiable(n)
		require.NoError(t, err)
		assert.Equal(t, n != mtbdd.Zero, sat, b.Print(n))
		if !sat {
			continue
		}
		values := make([]bool, 4)
		for v, val := range model {
			values[v] = val
		}
		assert.Equal(t, mtbdd.One, b.Eval(n, values), "model of %s", b.Print(n))
	}
	// a contradiction that is not trivial for the circuit
	_, sat, err := c.Satisfiable(b.And(b.Xor(x0, x1), b.Equiv(x0, x1), x3))
	require.NoError(t, err)
	assert.False(t, sat)
}

func TestEquivalent(t *testing.T) {
	b, _ := mtbdd.New(4)
	x0, x1, x2, x3 := b.Ithvar(0), b.Ithvar(1), b.Ithvar(2), b.Ithvar(3)
	f := b.Or(x0, x2)
	g := b.Xor(x1, x3)

	eq, _, err := Equivalent(b, b.And(f, g), b.Not(b.Or(b.Not(f), b.Not(g))))
	require.NoError(t, err)
	assert.True(t, eq)
	eq, _, err = Equivalent(b, mtbdd.One, b.Or(x0, b.Not(x0)))
	require.NoError(t, err)
	assert.True(t, eq)

	h := b.Or(f, g)
	eq, witness, err := Equivalent(b, b.And(f, g), h)
	require.NoError(t, err)
	assert.False(t, eq)
	values := make([]bool, 4)
	for v, val := range witness {
		values[v] = val
	}
	assert.NotEqual(t, b.Eval(b.And(f, g), values), b.Eval(h, values), "witness %v", values)

	eq, witness, err = Equivalent(b, mtbdd.One, mtbdd.Zero)
	require.NoError(t, err)
	assert.False(t, eq)
	assert.Empty(t, witness)
}

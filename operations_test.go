// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package mtbdd

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//********************************************************************************************

func TestMinus(t *testing.T) {
	var minusTests = []struct {
		p, q, r  int32
		expected int32
	}{
		{3, 2, 3, 2},
		{4, 4, 4, 4},
		{2, 3, 3, 2},
		{3, 2, 2, 2},
		{3, 3, 2, 2},
		{1, 2, 3, 1},
	}
	for _, tt := range minusTests {
		assert.Equal(t, tt.expected, min3(tt.p, tt.q, tt.r), "min3(%d, %d, %d)", tt.p, tt.q, tt.r)
	}
}

// fromTruthTable builds the function of nvars variables whose value for the
// assignment x (variable k is bit k of x) is bit x of tt.
func fromTruthTable(bdd *BDD, tt uint64, nvars int) Node {
	var rec func(k int, x uint64) Node
	rec = func(k int, x uint64) Node {
		if k < 0 {
			return bdd.From(tt>>x&1 == 1)
		}
		return bdd.Ite(bdd.Ithvar(k), rec(k-1, x|1<<uint(k)), rec(k-1, x))
	}
	return rec(nvars-1, 0)
}

// toTruthTable evaluates n on every assignment of the first nvars variables.
func toTruthTable(bdd *BDD, n Node, nvars int) uint64 {
	res := uint64(0)
	values := make([]bool, bdd.Varnum())
	for x := uint64(0); x < 1<<uint(nvars); x++ {
		for k := 0; k < nvars; k++ {
			values[k] = x>>uint(k)&1 == 1
		}
		if bdd.Eval(n, values) == One {
			res |= 1 << x
		}
	}
	return res
}

func TestTruthTables(t *testing.T) {
	bdd, err := New(5)
	require.NoError(t, err)
	r := rand.New(rand.NewSource(42))
	for i := 0; i < 50; i++ {
		t1, t2 := uint64(r.Uint32()), uint64(r.Uint32())
		f1 := fromTruthTable(bdd, t1, 5)
		f2 := fromTruthTable(bdd, t2, 5)
		require.Equal(t, t1, toTruthTable(bdd, f1, 5))
		assert.Equal(t, fromTruthTable(bdd, t1&t2, 5), bdd.And(f1, f2), "and of %#x and %#x", t1, t2)
		assert.Equal(t, fromTruthTable(bdd, t1|t2, 5), bdd.Or(f1, f2), "or of %#x and %#x", t1, t2)
		assert.Equal(t, fromTruthTable(bdd, t1^t2, 5), bdd.Xor(f1, f2), "xor of %#x and %#x", t1, t2)
	}
	require.False(t, bdd.Errored())
	require.NoError(t, bdd.Check())
}

func TestApplyOperators(t *testing.T) {
	bdd, _ := New(5)
	t1, t2 := uint64(0xCAFEBABE), uint64(0x0F0F1234)
	f1, f2 := fromTruthTable(bdd, t1, 5), fromTruthTable(bdd, t2, 5)
	mask := uint64(0xFFFFFFFF)
	expected := map[Operator]uint64{
		OPand:    t1 & t2,
		OPxor:    t1 ^ t2,
		OPor:     t1 | t2,
		OPnand:   ^(t1 & t2) & mask,
		OPnor:    ^(t1 | t2) & mask,
		OPimp:    (^t1 | t2) & mask,
		OPbiimp:  ^(t1 ^ t2) & mask,
		OPdiff:   t1 &^ t2,
		OPless:   ^t1 & t2 & mask,
		OPinvimp: (t1 | ^t2) & mask,
	}
	for op, tt := range expected {
		assert.Equal(t, tt, toTruthTable(bdd, bdd.Apply(f1, f2, op), 5), "operator %s", op)
	}
}

func TestHashConsing(t *testing.T) {
	bdd, _ := New(6)
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 30; i++ {
		f := fromTruthTable(bdd, r.Uint64(), 6)
		g := fromTruthTable(bdd, r.Uint64(), 6)
		assert.Equal(t, bdd.And(f, g), bdd.And(g, f))
		assert.Equal(t, bdd.Or(f, g), bdd.Or(g, f))
		size := bdd.Statistics().Produced
		assert.Equal(t, f, f.Not().Not())
		assert.Equal(t, f.Not(), bdd.Not(f))
		assert.Equal(t, size, bdd.Statistics().Produced, "negation should not create nodes")
	}
}

func TestIteLaw(t *testing.T) {
	bdd, _ := New(6)
	r := rand.New(rand.NewSource(3))
	for i := 0; i < 30; i++ {
		f := fromTruthTable(bdd, r.Uint64(), 6)
		g := fromTruthTable(bdd, r.Uint64(), 6)
		h := fromTruthTable(bdd, r.Uint64(), 6)
		actual := bdd.Ite(f, g, h)
		expected := bdd.Or(bdd.And(f, g), bdd.And(bdd.Not(f), h))
		require.Equal(t, expected, actual)
		assert.Equal(t, One, bdd.Equiv(actual, expected))
	}
}

//********************************************************************************************

// TestOperations implements the same tests than the bddtest program in the
// Buddy distribution. It uses function Allsat for checking that all assignments
// are detected.
func TestOperations(t *testing.T) {
	bdd, _ := New(4, Nodesize(1000), Cachesize(1000))
	varnum := 4

	check := func(x Node) error {
		allsatBDD := x
		allsatSumBDD := bdd.False()
		// Calculate whole set of asignments and remove all assignments
		// from original set
		err := bdd.Allsat(x, func(varset []int) error {
			x := bdd.True()
			for k, v := range varset {
				switch v {
				case 0:
					x = bdd.And(x, bdd.NIthvar(k))
				case 1:
					x = bdd.And(x, bdd.Ithvar(k))
				}
			}
			// Sum up all assignments
			allsatSumBDD = bdd.Or(allsatSumBDD, x)
			// Remove assignment from initial set
			allsatBDD = bdd.Apply(allsatBDD, x, OPdiff)
			return nil
		})
		if err != nil {
			return err
		}
		// Now the summed set should be equal to the original set and the
		// subtracted set should be empty
		if !bdd.Equal(allsatSumBDD, x) {
			return fmt.Errorf("AllSat sum is not the initial BDD")
		}
		if !bdd.Equal(allsatBDD, bdd.False()) {
			return fmt.Errorf("AllSat is not False")
		}
		return nil
	}

	a := bdd.Ithvar(0)
	b := bdd.Ithvar(1)
	c := bdd.Ithvar(2)
	d := bdd.Ithvar(3)
	na := bdd.NIthvar(0)
	nb := bdd.NIthvar(1)
	nc := bdd.NIthvar(2)
	nd := bdd.NIthvar(3)

	require.NoError(t, check(bdd.True()))
	require.NoError(t, check(bdd.False()))
	// a & b | !a & !b
	require.NoError(t, check(bdd.Or(bdd.And(a, b), bdd.And(na, nb))))
	// a & b | c & d
	require.NoError(t, check(bdd.Or(bdd.And(a, b), bdd.And(c, d))))
	// a & !b | a & !d | a & b & !c
	require.NoError(t, check(bdd.Or(bdd.And(a, nb), bdd.And(a, nd), bdd.And(a, b, nc))))

	for i := 0; i < varnum; i++ {
		require.NoError(t, check(bdd.Ithvar(i)))
		require.NoError(t, check(bdd.NIthvar(i)))
	}

	set := bdd.True()
	for i := 0; i < 50; i++ {
		v := rand.Intn(varnum)
		if rand.Intn(2) == 0 {
			set = bdd.Or(set, bdd.Ithvar(v))
		} else {
			set = bdd.And(set, bdd.NIthvar(v))
		}
		require.NoError(t, check(set))
	}
}

func TestApplyN(t *testing.T) {
	bdd, _ := New(5)
	t1, t2, t3 := uint64(0x12345678), uint64(0x9ABCDEF0), uint64(0x0FF00FF0)
	f1 := fromTruthTable(bdd, t1, 5)
	f2 := fromTruthTable(bdd, t2, 5)
	f3 := fromTruthTable(bdd, t3, 5)
	// majority of three functions
	maj := bdd.ApplyN(func(args []Node) (Node, bool) {
		count := 0
		for _, n := range args {
			switch n {
			case One:
				count++
			case Zero:
			default:
				return Null, false
			}
		}
		return bdd.From(count >= 2), true
	}, f1, f2, f3)
	expected := (t1 & t2) | (t1 & t3) | (t2 & t3)
	assert.Equal(t, expected, toTruthTable(bdd, maj, 5))
	// two calls do not share cache entries
	inv := bdd.ApplyN(func(args []Node) (Node, bool) {
		if bdd.IsTerminal(args[0]) {
			return args[0].Not(), true
		}
		return Null, false
	}, maj)
	assert.Equal(t, maj.Not(), inv)
}

func TestMakeset(t *testing.T) {
	bdd, _ := New(8)
	set := bdd.Makeset([]int{5, 1, 3})
	assert.Equal(t, []int{1, 3, 5}, bdd.Scanset(set))
	assert.Equal(t, bdd.And(bdd.Ithvar(1), bdd.Ithvar(3), bdd.Ithvar(5)), set)
	assert.Equal(t, []int{1, 3, 5}, bdd.SupportVars(bdd.Xor(bdd.Ithvar(5), bdd.Ithvar(1), bdd.Ithvar(3))))
	assert.Equal(t, set, bdd.Support(bdd.Or(bdd.Ithvar(1), bdd.And(bdd.Ithvar(3), bdd.NIthvar(5)))))
}

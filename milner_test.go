// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package mtbdd

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// milnerSystem is an example of using BDD for state space computation. It is
// directly adapted from a sample program of the BuDDy distribution. It computes the
// reachable state of a system composed of N cyclers. For this system, we have
// an analytical formula to compute the size of the state space. When fast is
// true we use the relational product, otherwise we compute the conjunction
// then the quantification.
func milnerSystem(N int, fast bool, options ...func(*configs)) (*BDD, Node, error) {
	bdd, err := New(N*6, options...)
	if err != nil {
		return nil, Null, err
	}
	c := make([]Node, N)
	cp := make([]Node, N)
	t := make([]Node, N)
	tp := make([]Node, N)
	h := make([]Node, N)
	hp := make([]Node, N)

	for n := 0; n < N; n++ {
		c[n] = bdd.Ithvar(n * 6)
		cp[n] = bdd.Ithvar(n*6 + 1)
		t[n] = bdd.Ithvar(n*6 + 2)
		tp[n] = bdd.Ithvar(n*6 + 3)
		h[n] = bdd.Ithvar(n*6 + 4)
		hp[n] = bdd.Ithvar(n*6 + 5)
	}

	nvar := make([]int, N*3)
	pvar := make([]int, N*3)
	nproj := make([]Node, N*3)
	for n := 0; n < N*3; n++ {
		nvar[n] = n * 2   // normal variables
		pvar[n] = n*2 + 1 // primed variables
		nproj[n] = bdd.Ithvar(nvar[n])
	}
	replacer := bdd.NewAssoc(pvar, nproj)
	normvar := bdd.NewAssoc(nvar, nil)

	// We create a BDD for the initial state of Milner's cyclers.
	I := bdd.And(c[0], bdd.Not(h[0]), bdd.Not(t[0]))
	for i := 1; i < N; i++ {
		I = bdd.And(I, bdd.Not(c[i]), bdd.Not(h[i]), bdd.Not(t[i]))
	}

	// A builds a BDD expressing that all other variables than 'z' is unchanged.
	A := func(x, y []Node, z int) Node {
		res := bdd.True()
		for i := 0; i < N; i++ {
			if i != z {
				res = bdd.And(res, bdd.Equiv(x[i], y[i]))
			}
		}
		return res
	}

	// Now we compute the transition relation
	T := bdd.False() // The monolithic transition relation
	for i := 0; i < N; i++ {
		P1 := bdd.And(c[i], bdd.Not(cp[i]), tp[i], bdd.Not(t[i]), hp[i], A(c, cp, i), A(t, tp, i), A(h, hp, i))
		P2 := bdd.And(h[i], bdd.Not(hp[i]), cp[(i+1)%N], A(c, cp, (i+1)%N), A(h, hp, i), A(t, tp, N))
		E := bdd.And(t[i], bdd.Not(tp[i]), A(t, tp, i), A(h, hp, N), A(c, cp, N))
		T = bdd.Or(T, P1, P2, E)
	}

	// We compute the reachable states.
	R := I // Reachable state space
	for {
		var img Node
		if fast {
			img = bdd.RelProd(R, T, normvar)
		} else {
			conj := bdd.And(R, T)
			img = bdd.Exists(conj, normvar)
			bdd.Free(conj)
		}
		next := bdd.Substitute(img, replacer)
		bdd.Free(img)
		nR := bdd.Or(next, R)
		bdd.Free(next)
		if nR == Null {
			return bdd, Null, bdd.Err()
		}
		if nR == R {
			bdd.Free(nR)
			break
		}
		bdd.Free(R)
		R = nR
	}
	return bdd, R, bdd.Err()
}

func milnerExpected(N int) *big.Int {
	expected := big.NewInt(int64(N))
	pow := big.NewInt(0)
	pow.SetBit(pow, 4*N+1, 1)
	return expected.Mul(expected, pow)
}

func TestMilnerSlow(t *testing.T) {
	for _, N := range []int{4, 5, 7, 11} {
		// we choose a small threshold to stress test garbage collection
		fast, Rfast, err := milnerSystem(N, true, Nodesize(100), GCThreshold(500))
		require.NoError(t, err)
		slow, Rslow, err := milnerSystem(N, false, Nodesize(100), GCThreshold(500))
		require.NoError(t, err)
		require.Zero(t, milnerExpected(N).Cmp(fast.Satcount(Rfast)), "Milner(%d) fast: %s", N, fast.Satcount(Rfast))
		require.Zero(t, milnerExpected(N).Cmp(slow.Satcount(Rslow)), "Milner(%d) slow: %s", N, slow.Satcount(Rslow))
		require.NoError(t, fast.Check())
	}
}

func TestMilner(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping large Milner systems in short mode")
	}
	for _, N := range []int{16, 20, 30, 50} {
		bdd, R, err := milnerSystem(N, true, Nodesize(100000), Cachesize(25000), Cacheratio(25))
		require.NoError(t, err)
		require.Zero(t, milnerExpected(N).Cmp(bdd.Satcount(R)), "Milner(%d): %s", N, bdd.Satcount(R))
	}
}

func TestMilnerReorder(t *testing.T) {
	for _, method := range []ReorderMethod{ReorderWindow3, ReorderSift, ReorderHybrid} {
		N := 8
		bdd, R, err := milnerSystem(N, true, GCThreshold(2000), Reordering(method))
		require.NoError(t, err, "method %s", method)
		require.Zero(t, milnerExpected(N).Cmp(bdd.Satcount(R)), "Milner(%d) with %s: %s", N, method, bdd.Satcount(R))
		assert.Greater(t, bdd.Statistics().Reorderings, 0, "method %s", method)
		require.NoError(t, bdd.Check())
	}
}

func BenchmarkMilner(b *testing.B) {
	for n := 0; n < b.N; n++ {
		if _, _, err := milnerSystem(150, true, Nodesize(500000), Cachesize(125000), Cacheratio(25)); err != nil {
			b.Error(err)
		}
	}
}

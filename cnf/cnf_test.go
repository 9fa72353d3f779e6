// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package cnf

import (
	"bytes"
	"strings"
	"testing"

	"github.com/crillab/gophersat/bf"
	"github.com/dalzilio/mtbdd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var letters = map[string]int{"a": 0, "b": 1, "c": 2, "d": 3}

func defaults() map[string]int {
	return map[string]int{"x0": 0, "x1": 1, "x2": 2, "x3": 3}
}

func TestParse(t *testing.T) {
	b, _ := mtbdd.New(4)
	a, bb, c, d := b.Ithvar(0), b.Ithvar(1), b.Ithvar(2), b.Ithvar(3)
	tests := []struct {
		text string
		want mtbdd.Node
	}{
		{"a", a},
		{"^^a", a},
		{"a & b | ^c", b.Or(b.And(a, bb), b.Not(c))},
		{"a -> b -> c", b.Imp(a, b.Imp(bb, c))},
		{"(a | b) = ^(c & d)", b.Equiv(b.Or(a, bb), b.Not(b.And(c, d)))},
		{"a & 1", a},
		{"a | 0 | ^d", b.Or(a, b.Not(d))},
		{"a & ^a", mtbdd.Zero},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			n, err := Parse(b, strings.NewReader(tt.text), letters)
			require.NoError(t, err)
			assert.Equal(t, tt.want, n)
			// same result as the gophersat parser
			if strings.ContainsAny(tt.text, "01") {
				return
			}
			f, err := bf.Parse(strings.NewReader(tt.text))
			require.NoError(t, err)
			m, err := FromFormula(b, f, letters)
			require.NoError(t, err)
			assert.Equal(t, tt.want, m)
		})
	}
	require.NoError(t, b.Check())
}

func TestParseErrors(t *testing.T) {
	b, _ := mtbdd.New(4)
	for _, text := range []string{"", "a &", "a & e", "a - b", "(a | b", "a b", "a | )", "& a"} {
		_, err := Parse(b, strings.NewReader(text), letters)
		assert.Error(t, err, "%q", text)
	}
	_, err := Parse(b, strings.NewReader("a"), map[string]int{"a": 7})
	assert.Error(t, err)
	assert.False(t, b.Errored())
	require.NoError(t, b.Check())
}

func TestFormulaRoundTrip(t *testing.T) {
	b, _ := mtbdd.New(4)
	x0, x1, x2, x3 := b.Ithvar(0), b.Ithvar(1), b.Ithvar(2), b.Ithvar(3)
	for _, n := range []mtbdd.Node{
		mtbdd.One,
		mtbdd.Zero,
		b.NIthvar(2),
		b.Xor(x0, x1, x3),
		b.Or(b.And(x0, x2), b.And(b.Not(x0), x3)),
	} {
		f, err := Formula(b, n, nil)
		require.NoError(t, err)
		m, err := FromFormula(b, f, defaults())
		require.NoError(t, err)
		assert.Equal(t, n, m, "%s gives %s", b.Print(n), f)
	}
}

func TestFormulaErrors(t *testing.T) {
	b, _ := mtbdd.New(2)
	leaf := b.Terminal(mtbdd.Value{2, 0})
	_, err := Formula(b, leaf, nil)
	assert.Error(t, err)
	_, err = Formula(b, b.Ite(b.Ithvar(0), leaf, mtbdd.One), nil)
	assert.Error(t, err)
	_, err = FromFormula(b, bf.And(bf.Var("x0"), bf.Var("y")), defaults())
	assert.Error(t, err, "y has no binding")
	_, err = FromFormula(b, bf.Var("x0"), map[string]int{"x0": 5})
	assert.Error(t, err)
}

func TestSolve(t *testing.T) {
	b, _ := mtbdd.New(4)
	x0, x1, x2 := b.Ithvar(0), b.Ithvar(1), b.Ithvar(2)
	f := b.And(b.Xor(x0, b.And(x1, x2)), b.Imp(x0, x2))
	model, sat, err := Solve(b, f, nil)
	require.NoError(t, err)
	require.True(t, sat)
	values := make([]bool, 4)
	for v, val := range model {
		values[v] = val
	}
	assert.Equal(t, mtbdd.One, b.Eval(f, values))

	_, sat, err = Solve(b, b.And(f, b.Not(f)), nil)
	require.NoError(t, err)
	assert.False(t, sat)
	_, sat, _ = Solve(b, b.Not(b.Or(x0, x1, b.Not(b.And(x0, x1)))), nil)
	assert.False(t, sat)
}

func TestDimacs(t *testing.T) {
	b, _ := mtbdd.New(3)
	f := b.Or(b.Ithvar(0), b.NIthvar(2))
	var buf bytes.Buffer
	require.NoError(t, Dimacs(&buf, b, f, func(v int) string { return string(rune('a' + v)) }))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "p cnf 2 1\n"), out)
	assert.Contains(t, out, "c a=")
	assert.Contains(t, out, "c c=")
	assert.NotContains(t, out, "c b=")
}

func TestIdentifiers(t *testing.T) {
	assert.Equal(t, []string{"b", "a", "c2"}, Identifiers(strings.NewReader("b & (a | ^b) -> c2 = 1")))
	assert.Empty(t, Identifiers(strings.NewReader("1 & 0")))
}

// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package mtbdd

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintDot(t *testing.T) {
	bdd, _ := New(3)
	f := bdd.Xor(bdd.Ithvar(0), bdd.Ithvar(2))
	var buf bytes.Buffer
	require.NoError(t, bdd.PrintDot(&buf, f, func(v int) string { return fmt.Sprintf("v%d", v) }))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "digraph G {"))
	assert.Contains(t, out, "label=\"v0\"")
	assert.Contains(t, out, "label=\"v2\"")
	assert.NotContains(t, out, "label=\"v1\"")
	assert.Contains(t, out, "arrowhead=dot", "xor uses complemented edges")
	assert.Error(t, bdd.PrintDot(&buf, Node(9999), nil))
}

func TestPrint(t *testing.T) {
	bdd, _ := New(3)
	assert.Equal(t, "True", bdd.Print(One))
	assert.Equal(t, "False", bdd.Print(Zero))
	assert.Equal(t, "Null", bdd.Print(Null))
	assert.Equal(t, "Leaf(0x5, 0x0)", bdd.Print(bdd.Terminal(Value{5, 0})))
	assert.True(t, strings.HasPrefix(bdd.Print(bdd.NIthvar(1)), "!"))
	var buf bytes.Buffer
	require.NoError(t, bdd.PrintSet(&buf, bdd.And(bdd.Ithvar(0), bdd.Ithvar(1))))
	assert.Contains(t, buf.String(), "root:")
}

func TestSizeProfile(t *testing.T) {
	bdd, _ := New(4)
	f := bdd.And(bdd.Ithvar(0), bdd.Ithvar(1), bdd.Ithvar(3))
	// three variable nodes and the constant
	assert.Equal(t, 4, bdd.Size(f))
	assert.Equal(t, []int{1, 1, 0, 1}, bdd.Profile(f))
	// negation shares every node
	assert.Equal(t, 4, bdd.Size(f, f.Not()))
	assert.Equal(t, 5, bdd.Size(f, bdd.Ithvar(2)))
	assert.Equal(t, 1, bdd.Size(One))
}

func TestStatistics(t *testing.T) {
	bdd, _ := New(6, Nodesize(1000), Cachesize(500))
	for i := 0; i < 5; i++ {
		bdd.Xor(bdd.Ithvar(i), bdd.Ithvar(i+1))
	}
	bdd.Xor(bdd.Ithvar(0), bdd.Ithvar(1))
	s := bdd.Statistics()
	assert.Equal(t, 6, s.Varnum)
	assert.Equal(t, s.Allocated, s.Live+s.Free)
	assert.Greater(t, s.Produced, 6)
	assert.Greater(t, s.CacheSize, 0)
	assert.Greater(t, s.CacheHits+s.UniqueHits, 0)
	text := bdd.Stats()
	assert.Contains(t, text, "Varnum:")
	assert.Contains(t, text, "Operator Hits:")
}

// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package mtbdd

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dumpbytes(t *testing.T, bdd *BDD, n Node, vars []int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, bdd.Dump(&buf, n, vars))
	return buf.Bytes()
}

func identity(n int) []int {
	res := make([]int, n)
	for k := range res {
		res[k] = k
	}
	return res
}

func TestDumpRoundTrip(t *testing.T) {
	bdd, _ := New(6)
	f := bdd.Xor(interleaved(bdd, 3), bdd.Ithvar(4).Not())
	g := bdd.Ite(bdd.Ithvar(0), bdd.Terminal(Value{3, 1}), bdd.Ite(bdd.Ithvar(5), bdd.Terminal(Value{^uint64(3), 0}), Zero))
	for _, n := range []Node{One, Zero, bdd.Ithvar(2), bdd.NIthvar(3), f, f.Not(), g, bdd.Terminal(Value{7, 7})} {
		data := dumpbytes(t, bdd, n, identity(6))
		res, err := bdd.Undump(bytes.NewReader(data), identity(6))
		require.NoError(t, err)
		assert.Equal(t, n, res, "round trip of %s", bdd.Print(n))
	}
	require.NoError(t, bdd.Check())
}

func TestDumpRenaming(t *testing.T) {
	src, _ := New(6)
	f := src.Or(interleaved(src, 3), src.And(src.Ithvar(1), src.NIthvar(4)))
	data := dumpbytes(t, src, f, identity(6))
	perm := []int{3, 5, 0, 1, 2, 4}
	dst, _ := New(6)
	g, err := dst.Undump(bytes.NewReader(data), perm)
	require.NoError(t, err)
	srcvals, dstvals := make([]bool, 6), make([]bool, 6)
	for x := 0; x < 64; x++ {
		for k := 0; k < 6; k++ {
			srcvals[k] = x>>uint(k)&1 == 1
			dstvals[perm[k]] = srcvals[k]
		}
		assert.Equal(t, src.Eval(f, srcvals), dst.Eval(g, dstvals), "assignment %#x", x)
	}
	assert.Equal(t, 0, src.Satcount(f).Cmp(dst.Satcount(g)))
}

func TestDumpSharing(t *testing.T) {
	bdd, _ := New(8)
	f := interleaved(bdd, 4)
	data := dumpbytes(t, bdd, f, identity(8))
	shared := binary.BigEndian.Uint32(data[8:12])
	assert.Greater(t, shared, uint32(0), "the dump uses labels")
	// one byte per code with 8 variables
	assert.Less(t, len(data), 12+2*3*bdd.Size(f))
	// a dump of a subset of the variables
	h := bdd.And(bdd.Ithvar(6), bdd.Ithvar(2))
	data = dumpbytes(t, bdd, h, []int{6, 2})
	res, err := bdd.Undump(bytes.NewReader(data), []int{1, 0})
	require.NoError(t, err)
	assert.Equal(t, bdd.And(bdd.Ithvar(0), bdd.Ithvar(1)), res)
}

func TestDumpSequence(t *testing.T) {
	bdd, _ := New(6)
	f := bdd.Xor(interleaved(bdd, 3), bdd.Ithvar(4))
	g := bdd.Ite(bdd.Ithvar(5), bdd.Terminal(Value{3, 0}), bdd.NIthvar(0))
	var buf bytes.Buffer
	require.NoError(t, bdd.Dump(&buf, f, identity(6)))
	require.NoError(t, bdd.Dump(&buf, g, identity(6)))
	buf.WriteString("tail")
	r := bytes.NewReader(buf.Bytes())
	res, err := bdd.Undump(r, identity(6))
	require.NoError(t, err)
	assert.Equal(t, f, res)
	res, err = bdd.Undump(r, identity(6))
	require.NoError(t, err)
	assert.Equal(t, g, res)
	// the bytes after the second dump are left in the stream
	rest, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "tail", string(rest))
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errors.New("disk full")
}

type failingReader struct{}

func (failingReader) Read(p []byte) (int, error) {
	return 0, errors.New("connection reset")
}

func TestDumpErrors(t *testing.T) {
	logger, _ := test.NewNullLogger()
	bdd, _ := New(4, Logger(logger))
	f := bdd.Or(bdd.And(bdd.Ithvar(0), bdd.Ithvar(1)), bdd.Ithvar(3))

	err := bdd.Dump(io.Discard, f, []int{0, 1})
	assert.True(t, errors.Is(err, ErrDumpVars), "missing variable: %v", err)
	err = bdd.Dump(io.Discard, f, []int{0, 1, 3, 1})
	assert.True(t, errors.Is(err, ErrDumpVars), "duplicate variable: %v", err)
	err = bdd.Dump(io.Discard, bdd.Ithvar(2), []int{0, 1})
	assert.True(t, errors.Is(err, ErrDumpVars), "missing literal: %v", err)
	err = bdd.Dump(failingWriter{}, f, identity(4))
	assert.True(t, errors.Is(err, ErrDumpIO), "writer error: %v", err)

	data := dumpbytes(t, bdd, f, identity(4))
	_, err = bdd.Undump(bytes.NewReader(data), identity(3))
	assert.True(t, errors.Is(err, ErrDumpVars), "wrong variable count: %v", err)
	_, err = bdd.Undump(bytes.NewReader(data), []int{0, 1, 2, 9})
	assert.True(t, errors.Is(err, ErrDumpVars), "unknown variable: %v", err)
	_, err = bdd.Undump(bytes.NewReader(data[:5]), identity(4))
	assert.True(t, errors.Is(err, ErrDumpEOF), "truncated header: %v", err)
	_, err = bdd.Undump(bytes.NewReader(data[:len(data)-1]), identity(4))
	assert.True(t, errors.Is(err, ErrDumpEOF), "truncated body: %v", err)
	_, err = bdd.Undump(failingReader{}, identity(4))
	assert.True(t, errors.Is(err, ErrDumpIO), "reader error: %v", err)

	bad := append([]byte{}, data...)
	bad[0] = 'X'
	_, err = bdd.Undump(bytes.NewReader(bad), identity(4))
	assert.True(t, errors.Is(err, ErrDumpFormat), "bad magic: %v", err)

	// a reference to a label that was never defined
	var header [12]byte
	binary.BigEndian.PutUint32(header[0:], _DUMPMAGIC)
	binary.BigEndian.PutUint32(header[4:], 1)
	bad = append(header[:], byte(sentinel(codePosNode, 1)), 0)
	_, err = bdd.Undump(bytes.NewReader(bad), []int{0})
	assert.True(t, errors.Is(err, ErrDumpFormat), "unknown label: %v", err)
	// a variable number out of range
	bad = append(header[:], 3, byte(sentinel(codeTrue, 1)), byte(sentinel(codeFalse, 1)))
	_, err = bdd.Undump(bytes.NewReader(bad), []int{0})
	assert.True(t, errors.Is(err, ErrDumpFormat), "bad variable: %v", err)

	// failed reads do not leave the BDD in error
	assert.False(t, bdd.Errored())
	require.NoError(t, bdd.Check())
}

func TestDumpWidth(t *testing.T) {
	assert.Equal(t, 1, dumpwidth(0))
	assert.Equal(t, 1, dumpwidth(248))
	assert.Equal(t, 2, dumpwidth(249))
	assert.Equal(t, 2, dumpwidth(1<<16-8))
	assert.Equal(t, 3, dumpwidth(1<<16-7))
	assert.Equal(t, 4, dumpwidth(1<<24))
	assert.Equal(t, uint32(255), sentinel(codeTrue, 1))
	assert.Equal(t, ^uint32(0)-codeNodeLabel, sentinel(codeNodeLabel, 4))
}

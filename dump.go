// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package mtbdd

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// _DUMPMAGIC is the first word of every dump.
const _DUMPMAGIC uint32 = 0x42444431

// Reserved codes, counted down from the largest integer that fits in the
// width of a dump. Every other code is a variable number or a label.
const (
	codeTrue uint32 = iota
	codeFalse
	codeConstant
	codePosVar
	codeNegVar
	codePosNode
	codeNegNode
	codeNodeLabel
	_NUMCODES
)

// dumpwidth returns the number of bytes (1 to 4) needed to encode values
// smaller than max, plus the reserved codes.
func dumpwidth(max uint32) int {
	w := 1
	for ; w < 4; w++ {
		if uint64(max)+uint64(_NUMCODES) <= 1<<(8*uint(w)) {
			break
		}
	}
	return w
}

// sentinel returns the value of a reserved code for width w.
func sentinel(code uint32, w int) uint32 {
	top := uint32(1<<(8*uint(w)) - 1)
	if w == 4 {
		top = ^uint32(0)
	}
	return top - code
}

// ************************************************************

type dumper struct {
	b      *BDD
	w      *bufio.Writer
	width  int
	wire   map[uint32]uint32 // wire number of each variable identity
	seen   map[uint32]bool
	shared map[uint32]bool
	labels map[uint32]uint32 // label of shared nodes already written
	sign   map[uint32]bool   // polarity used when a label was written
	err    error
}

// Dump writes the function n on w. The variables are numbered on the wire by
// their position in vars, which must not contain duplicates and must include
// the support of n. The result can be read back with Undump, possibly in a
// different BDD, using the same variable numbering.
func (b *BDD) Dump(w io.Writer, n Node, vars []int) error {
	if !b.checkptr(n) {
		return errors.Errorf("wrong node in call to Dump (%d)", n)
	}
	d := &dumper{
		b:      b,
		wire:   make(map[uint32]uint32, len(vars)),
		seen:   make(map[uint32]bool),
		shared: make(map[uint32]bool),
		labels: make(map[uint32]uint32),
		sign:   make(map[uint32]bool),
	}
	for k, v := range vars {
		if v < 0 || v >= len(b.varset) {
			return errors.Wrapf(ErrDumpVars, "unknown variable %d", v)
		}
		if _, ok := d.wire[uint32(v)]; ok {
			return errors.Wrapf(ErrDumpVars, "duplicate variable %d", v)
		}
		d.wire[uint32(v)] = uint32(k)
	}
	if err := d.mark(n); err != nil {
		return err
	}
	max := uint32(len(vars))
	if s := uint32(len(d.shared)); s > max {
		max = s
	}
	d.width = dumpwidth(max)
	d.w = bufio.NewWriter(w)
	var header [12]byte
	binary.BigEndian.PutUint32(header[0:], _DUMPMAGIC)
	binary.BigEndian.PutUint32(header[4:], uint32(len(vars)))
	binary.BigEndian.PutUint32(header[8:], uint32(len(d.shared)))
	d.write(header[:])
	d.encode(n)
	if d.err == nil {
		if err := d.w.Flush(); err != nil {
			d.err = errors.Wrap(ErrDumpIO, err.Error())
		}
	}
	return d.err
}

// mark is the first pass: we find the nodes reached more than once and check
// that the support of n is included in the variable list.
func (d *dumper) mark(n Node) error {
	b := d.b
	if b.isconst(n) || b.isvar(n) {
		return nil
	}
	id := n.id()
	if d.seen[id] {
		d.shared[id] = true
		return nil
	}
	d.seen[id] = true
	if _, ok := d.wire[b.nodes[id].index]; !ok {
		return errors.Wrapf(ErrDumpVars, "variable %d is not in the list", b.nodes[id].index)
	}
	if err := d.mark(b.nodes[id].high); err != nil {
		return err
	}
	return d.mark(b.nodes[id].low)
}

func (d *dumper) write(p []byte) {
	if d.err != nil {
		return
	}
	if _, err := d.w.Write(p); err != nil {
		d.err = errors.Wrap(ErrDumpIO, err.Error())
	}
}

func (d *dumper) code(x uint32) {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], x)
	d.write(buf[4-d.width:])
}

func (d *dumper) sentinel(code uint32) {
	d.code(sentinel(code, d.width))
}

// encode is the second pass. The complement of an edge is pushed to the
// children of the node so that only labels carry a polarity.
func (d *dumper) encode(n Node) {
	b := d.b
	switch {
	case d.err != nil:
		return
	case n == One:
		d.sentinel(codeTrue)
		return
	case n == Zero:
		d.sentinel(codeFalse)
		return
	case b.isconst(n):
		v, _ := b.Value(n)
		d.sentinel(codeConstant)
		var buf [16]byte
		binary.BigEndian.PutUint64(buf[0:], v[0])
		binary.BigEndian.PutUint64(buf[8:], v[1])
		d.write(buf[:])
		return
	}
	id := n.id()
	v := b.nodes[id].index
	if b.isvar(n) {
		if _, ok := d.wire[v]; !ok {
			d.err = errors.Wrapf(ErrDumpVars, "variable %d is not in the list", v)
			return
		}
		if n.IsComplement() {
			d.sentinel(codeNegVar)
		} else {
			d.sentinel(codePosVar)
		}
		d.code(d.wire[v])
		return
	}
	if label, ok := d.labels[id]; ok {
		if d.sign[id] == n.IsComplement() {
			d.sentinel(codePosNode)
		} else {
			d.sentinel(codeNegNode)
		}
		d.code(label)
		return
	}
	if d.shared[id] {
		d.labels[id] = uint32(len(d.labels))
		d.sign[id] = n.IsComplement()
		d.sentinel(codeNodeLabel)
	}
	d.code(d.wire[v])
	d.encode(b.high(n))
	d.encode(b.low(n))
}

// ************************************************************

type undumper struct {
	b      *BDD
	r      io.Reader
	width  int
	vars   []int
	labels []Node
	shared uint32
}

// Undump reads a function written by Dump. The variable at position k on the
// wire is mapped to the variable with identity vars[k]. The result is
// referenced. We return ErrDumpFormat, ErrDumpEOF, ErrDumpIO, ErrDumpVars or
// ErrOverflow (wrapped) if the input cannot be read; partial results are
// released in this case.
func (b *BDD) Undump(r io.Reader, vars []int) (Node, error) {
	u := &undumper{b: b, r: r, vars: vars}
	var header [12]byte
	if err := u.read(header[:]); err != nil {
		return Null, err
	}
	if binary.BigEndian.Uint32(header[0:]) != _DUMPMAGIC {
		return Null, errors.Wrap(ErrDumpFormat, "bad magic number")
	}
	varcount := binary.BigEndian.Uint32(header[4:])
	if int(varcount) != len(vars) {
		return Null, errors.Wrapf(ErrDumpVars, "dump has %d variables, list has %d", varcount, len(vars))
	}
	for _, v := range vars {
		if v < 0 || v >= len(b.varset) {
			return Null, errors.Wrapf(ErrDumpVars, "unknown variable %d", v)
		}
	}
	u.shared = binary.BigEndian.Uint32(header[8:])
	max := varcount
	if u.shared > max {
		max = u.shared
	}
	u.width = dumpwidth(max)
	// bytes of the body consumed so far, replayed when the operation is retried
	var consumed bytes.Buffer
	live := io.TeeReader(r, &consumed)
	var derr error
	res := b.firewall("Undump", nil, func() (Node, error) {
		u.r = io.MultiReader(bytes.NewReader(append([]byte(nil), consumed.Bytes()...)), live)
		u.labels = u.labels[:0]
		res, err := u.decode()
		if err != nil {
			if errors.Is(err, ErrOverflow) || errors.Is(err, ErrAborted) || errors.Is(err, errRetry) {
				return Null, err
			}
			derr = err
			return Null, nil
		}
		return res, nil
	})
	if derr != nil {
		return Null, derr
	}
	if res == Null {
		if err := b.Err(); err != nil {
			return Null, err
		}
		return Null, errors.Wrap(ErrOverflow, "undump")
	}
	return res, nil
}

func (u *undumper) read(p []byte) error {
	if _, err := io.ReadFull(u.r, p); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return errors.Wrap(ErrDumpEOF, err.Error())
		}
		return errors.Wrap(ErrDumpIO, err.Error())
	}
	return nil
}

func (u *undumper) code() (uint32, error) {
	var buf [4]byte
	if err := u.read(buf[4-u.width:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(buf[:]), nil
}

func (u *undumper) decode() (Node, error) {
	b := u.b
	x, err := u.code()
	if err != nil {
		return Null, err
	}
	switch x {
	case sentinel(codeTrue, u.width):
		return One, nil
	case sentinel(codeFalse, u.width):
		return Zero, nil
	case sentinel(codeConstant, u.width):
		var buf [16]byte
		if err := u.read(buf[:]); err != nil {
			return Null, err
		}
		return b.terminal(Value{binary.BigEndian.Uint64(buf[0:]), binary.BigEndian.Uint64(buf[8:])})
	case sentinel(codePosVar, u.width), sentinel(codeNegVar, u.width):
		k, err := u.code()
		if err != nil {
			return Null, err
		}
		if int(k) >= len(u.vars) {
			return Null, errors.Wrapf(ErrDumpFormat, "variable number %d out of range", k)
		}
		return b.varset[u.vars[k]].negif(x == sentinel(codeNegVar, u.width)), nil
	case sentinel(codePosNode, u.width), sentinel(codeNegNode, u.width):
		k, err := u.code()
		if err != nil {
			return Null, err
		}
		if int(k) >= len(u.labels) || u.labels[k] == Null {
			return Null, errors.Wrapf(ErrDumpFormat, "unknown label %d", k)
		}
		return u.labels[k].negif(x == sentinel(codeNegNode, u.width)), nil
	case sentinel(codeNodeLabel, u.width):
		if uint32(len(u.labels)) >= u.shared {
			return Null, errors.Wrap(ErrDumpFormat, "too many labels")
		}
		label := len(u.labels)
		u.labels = append(u.labels, Null)
		res, err := u.node()
		if err != nil {
			return Null, err
		}
		u.labels[label] = res
		return res, nil
	}
	if x >= uint32(len(u.vars)) {
		return Null, errors.Wrapf(ErrDumpFormat, "unexpected code %d", x)
	}
	return u.nodeof(x)
}

// node reads the variable number, then the two branches, of a node.
func (u *undumper) node() (Node, error) {
	x, err := u.code()
	if err != nil {
		return Null, err
	}
	if x >= uint32(len(u.vars)) {
		return Null, errors.Wrapf(ErrDumpFormat, "variable number %d out of range", x)
	}
	return u.nodeof(x)
}

func (u *undumper) nodeof(x uint32) (Node, error) {
	high, err := u.decode()
	if err != nil {
		return Null, err
	}
	low, err := u.decode()
	if err != nil {
		return Null, err
	}
	return u.b.ite(u.b.varset[u.vars[x]], high, low)
}

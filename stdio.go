// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package mtbdd

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/pkg/errors"
)

// Statistics is a snapshot of the counters of a BDD.
type Statistics struct {
	Varnum       int     // Number of variables
	Allocated    int     // Size of the node table
	Live         int     // Nodes in use, including leaves
	Free         int     // Nodes in the free list
	Produced     int     // Total number of nodes ever created
	Terminals    int     // Multi-terminal leaves
	GCs          int     // Garbage collections
	Reclaimed    int     // Nodes freed by garbage collections
	Reorderings  int     // Number of reorderings
	Overflows    int     // Operations stopped by the node limit
	Aborts       int     // Aborted operations
	CacheSize    int     // Number of bins in the operation cache
	CacheHits    int     // Hits in the operation cache
	CacheMisses  int     // Misses in the operation cache
	CachePurged  int     // Cache entries removed by garbage collections
	UniqueHits   int     // Hits in the unique table
	UniqueMisses int     // Misses in the unique table
	Growth       float64 // Current growth bound for sifting
}

// Statistics returns the current value of the counters of b.
func (b *BDD) Statistics() Statistics {
	return Statistics{
		Varnum:       len(b.level2var),
		Allocated:    len(b.nodes),
		Live:         b.livenodes,
		Free:         b.freenum,
		Produced:     b.produced,
		Terminals:    len(b.terminals),
		GCs:          b.gcs,
		Reclaimed:    b.reclaimed,
		Reorderings:  b.reorderings,
		Overflows:    b.overflows,
		Aborts:       b.aborts,
		CacheSize:    len(b.cache.table),
		CacheHits:    b.cache.opHit,
		CacheMisses:  b.cache.opMiss,
		CachePurged:  b.cache.opPurged,
		UniqueHits:   b.cache.uniqueHit,
		UniqueMisses: b.cache.uniqueMiss,
		Growth:       b.reord.growth,
	}
}

// Stats returns a textual description of the BDD statistics.
func (b *BDD) Stats() string {
	s := b.Statistics()
	var sb strings.Builder
	tw := tabwriter.NewWriter(&sb, 0, 0, 1, ' ', 0)
	fmt.Fprintf(tw, "Varnum:\t%d\n", s.Varnum)
	fmt.Fprintf(tw, "Allocated:\t%d\n", s.Allocated)
	fmt.Fprintf(tw, "Produced:\t%d\n", s.Produced)
	r := 0.0
	if s.Allocated > 0 {
		r = float64(s.Free) / float64(s.Allocated) * 100
	}
	fmt.Fprintf(tw, "Free:\t%d\t(%.3g %%)\n", s.Free, r)
	fmt.Fprintf(tw, "Used:\t%d\t(%.3g %%)\n", s.Live, 100.0-r)
	fmt.Fprintf(tw, "Terminals:\t%d\n", s.Terminals)
	fmt.Fprintf(tw, "# of GC:\t%d\n", s.GCs)
	fmt.Fprintf(tw, "Reclaimed:\t%d\n", s.Reclaimed)
	fmt.Fprintf(tw, "Reorderings:\t%d\n", s.Reorderings)
	fmt.Fprintf(tw, "Overflows:\t%d\n", s.Overflows)
	fmt.Fprintf(tw, "Aborts:\t%d\n", s.Aborts)
	tw.Flush()
	sb.WriteString(b.cache.cacheStat.String())
	return sb.String()
}

// ************************************************************

// Print returns a one-line description of node n.
func (b *BDD) Print(n Node) string {
	switch {
	case n == Null:
		return "Null"
	case !b.checkptr(n):
		return fmt.Sprintf("Error (%d not a valid node)", n)
	case n == One:
		return "True"
	case n == Zero:
		return "False"
	case b.isconst(n):
		v, _ := b.Value(n)
		return fmt.Sprintf("Leaf(%#x, %#x)", v[0], v[1])
	}
	nd := &b.nodes[n.id()]
	neg := ""
	if n.IsComplement() {
		neg = "!"
	}
	return fmt.Sprintf("%s(%d[%d] ? %d : %d)", neg, n.id(), nd.index, nd.high, nd.low)
}

// reachable returns the identities of the nodes reachable from n, sorted by level
// then identity. We use a local visited set.
func (b *BDD) reachable(n ...Node) []uint32 {
	seen := make(map[uint32]bool)
	var walk func(id uint32)
	walk = func(id uint32) {
		if seen[id] {
			return
		}
		seen[id] = true
		if nd := &b.nodes[id]; nd.index != _CONSTINDEX {
			walk(nd.high.id())
			walk(nd.low.id())
		}
	}
	for _, r := range n {
		if b.checkptr(r) {
			walk(r.id())
		}
	}
	res := make([]uint32, 0, len(seen))
	for id := range seen {
		res = append(res, id)
	}
	sort.Slice(res, func(i, j int) bool {
		li, lj := b.level(mknode(res[i], false)), b.level(mknode(res[j], false))
		if li != lj {
			return li < lj
		}
		return res[i] < res[j]
	})
	return res
}

// PrintSet writes a table with the nodes reachable from n on w.
func (b *BDD) PrintSet(w io.Writer, n Node) error {
	if !b.checkptr(n) {
		_, err := fmt.Fprintf(w, "ERROR: wrong node (%d)\n", n)
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)
	fmt.Fprintf(tw, "root:\t%d\n", n)
	for _, id := range b.reachable(n) {
		nd := &b.nodes[id]
		if nd.index == _CONSTINDEX {
			fmt.Fprintf(tw, "%d\t%s\n", id, b.Print(mknode(id, false)))
			continue
		}
		fmt.Fprintf(tw, "%d\t[%d @ %d]\t? %d\t: %d\t| refs %d\n", id, nd.index, b.var2level[nd.index], nd.high, nd.low, nd.refcou)
	}
	return tw.Flush()
}

// PrintDot writes a GraphViz description of the BDD with root n on w. Function
// names, when not nil, gives the label of each variable (by identity). Low
// edges are dotted and complemented edges end with a dot.
func (b *BDD) PrintDot(w io.Writer, n Node, names func(v int) string) error {
	if !b.checkptr(n) {
		return errors.Errorf("wrong node in call to PrintDot (%d)", n)
	}
	if names == nil {
		names = func(v int) string { return fmt.Sprintf("x%d", v) }
	}
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "digraph G {")
	fmt.Fprintf(bw, "root [shape=plaintext, label=\"\"];\n")
	fmt.Fprintf(bw, "root -> %d%s;\n", n.id(), dotarrow(n))
	for _, id := range b.reachable(n) {
		nd := &b.nodes[id]
		switch {
		case id == 0:
			fmt.Fprintln(bw, "0 [shape=box, label=\"1\", style=filled, height=0.3, width=0.3];")
		case nd.index == _CONSTINDEX:
			v := b.values[id]
			fmt.Fprintf(bw, "%d [shape=box, label=\"%#x,%#x\"];\n", id, v[0], v[1])
		default:
			fmt.Fprintf(bw, "%d [label=\"%s\"];\n", id, names(int(nd.index)))
			fmt.Fprintf(bw, "%d -> %d;\n", id, nd.high.id())
			fmt.Fprintf(bw, "%d -> %d [style=dotted%s];\n", id, nd.low.id(), dotneg(nd.low))
		}
	}
	fmt.Fprintln(bw, "}")
	return bw.Flush()
}

func dotarrow(n Node) string {
	if n.IsComplement() {
		return " [arrowhead=dot]"
	}
	return ""
}

func dotneg(n Node) string {
	if n.IsComplement() {
		return ", arrowhead=dot"
	}
	return ""
}

// ************************************************************

// Size returns the number of nodes (including leaves) shared by the BDDs in
// n.
func (b *BDD) Size(n ...Node) int {
	return len(b.reachable(n...))
}

// Profile returns the number of nodes at each level (by position in the
// current order) in the BDD with root n.
func (b *BDD) Profile(n Node) []int {
	res := make([]int, len(b.level2var))
	for _, id := range b.reachable(n) {
		if nd := &b.nodes[id]; nd.index != _CONSTINDEX {
			res[b.var2level[nd.index]]++
		}
	}
	return res
}

// SupportVars returns the identities of the variables that n depends on, in
// the order of their levels.
func (b *BDD) SupportVars(n Node) []int {
	res := []int{}
	seen := make(map[uint32]bool)
	for _, id := range b.reachable(n) {
		if nd := &b.nodes[id]; nd.index != _CONSTINDEX && !seen[nd.index] {
			seen[nd.index] = true
			res = append(res, int(nd.index))
		}
	}
	return res
}

// Support returns the conjunction of the variables that n depends on.
func (b *BDD) Support(n Node) Node {
	return b.firewall("Support", []Node{n}, func() (Node, error) {
		return b.makecube(b.SupportVars(n), nil)
	})
}

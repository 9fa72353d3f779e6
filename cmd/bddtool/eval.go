// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/dalzilio/mtbdd"
	"github.com/dalzilio/mtbdd/aig"
	"github.com/dalzilio/mtbdd/cnf"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type evalOptions struct {
	dot     string
	dump    string
	reorder string
	dimacs  bool
	sat     bool
}

func newEvalCmd(a *app) *cobra.Command {
	var opts evalOptions
	cmd := &cobra.Command{
		Use:   "eval <formula>",
		Short: "Build the BDD of a formula and print its statistics",
		Long: `The eval command builds the BDD of a formula and prints the variable
order, the number of satisfying assignments, the number of nodes and the
support of the result.

Example:
  bddtool eval "a & b | ^c"
  bddtool eval --vars c,b,a --dot out.dot "(a | b) = c"
  bddtool eval --reorder sift --dump out.bdd "a1 & b1 | a2 & b2 | a3 & b3"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runEval(cmd.OutOrStdout(), args[0], opts)
		},
	}
	fs := cmd.Flags()
	fs.StringVar(&opts.dot, "dot", "", "write the BDD in DOT format to this file")
	fs.StringVar(&opts.dump, "dump", "", "save the BDD in binary format to this file")
	fs.StringVar(&opts.reorder, "reorder", "", "reorder variables with this method before printing")
	fs.BoolVar(&opts.dimacs, "cnf", false, "print the clauses of the BDD in DIMACS format")
	fs.BoolVar(&opts.sat, "sat", false, "print a satisfying assignment found by a SAT solver")
	return cmd
}

func (a *app) runEval(w io.Writer, formula string, opts evalOptions) error {
	b, names, nodes, err := a.build(a.log, formula)
	if err != nil {
		return err
	}
	n := nodes[0]
	if opts.reorder != "" {
		method, ok := mtbdd.ParseReorderMethod(opts.reorder)
		if !ok {
			return errors.Errorf("unknown reordering method %q", opts.reorder)
		}
		before := b.Size(n)
		b.Reorder(method)
		a.log.WithFields(logrus.Fields{
			"method": method,
			"before": before,
			"after":  b.Size(n),
		}).Debug("reorder")
	}
	report(w, b, n, names)
	if opts.sat {
		if err := solve(w, b, n, names); err != nil {
			return err
		}
	}
	if opts.dimacs {
		if err := cnf.Dimacs(w, b, n, namer(names)); err != nil {
			return err
		}
	}
	if opts.dot != "" {
		if err := writeFile(opts.dot, func(f io.Writer) error { return b.PrintDot(f, n, namer(names)) }); err != nil {
			return err
		}
	}
	if opts.dump != "" {
		if err := writeFile(opts.dump, func(f io.Writer) error { return b.Dump(f, n, identity(b.Varnum())) }); err != nil {
			return err
		}
	}
	return nil
}

// report prints the variable order and the statistics of n.
func report(w io.Writer, b *mtbdd.BDD, n mtbdd.Node, names []string) {
	name := namer(names)
	order := []string{}
	for _, v := range b.Order() {
		order = append(order, name(v))
	}
	support := b.SupportVars(n)
	sort.Ints(support)
	supp := []string{}
	for _, v := range support {
		supp = append(supp, name(v))
	}
	fmt.Fprintf(w, "variables: %s\n", strings.Join(order, " "))
	fmt.Fprintf(w, "satcount:  %s\n", b.Satcount(n))
	fmt.Fprintf(w, "nodes:     %d\n", b.Size(n))
	fmt.Fprintf(w, "support:   %s\n", strings.Join(supp, " "))
}

// solve prints a model of n found with the SAT solver, after checking it on
// the BDD.
func solve(w io.Writer, b *mtbdd.BDD, n mtbdd.Node, names []string) error {
	model, sat, err := aig.New(b).Satisfiable(n)
	if err != nil {
		return err
	}
	if !sat {
		fmt.Fprintln(w, "model:     unsatisfiable")
		return nil
	}
	values := make([]bool, b.Varnum())
	for v, val := range model {
		values[v] = val
	}
	if b.Eval(n, values) != mtbdd.One {
		return errors.Errorf("model %s does not satisfy the BDD", assignment(names, model))
	}
	fmt.Fprintf(w, "model:     %s\n", assignment(names, model))
	return nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "cannot create output file")
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return errors.Wrap(f.Close(), path)
}

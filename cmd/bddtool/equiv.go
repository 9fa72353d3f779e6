// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package main

import (
	"fmt"
	"io"

	"github.com/dalzilio/mtbdd/aig"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newEquivCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "equiv <formula> <formula>",
		Short: "Check that two formulas are equivalent",
		Long: `The equiv command compares the BDD of two formulas and checks the
result with a SAT solver. When the formulas differ, it prints an assignment on
which they take different values.

Example:
  bddtool equiv "a -> b" "^a | b"`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runEquiv(cmd.OutOrStdout(), args[0], args[1])
		},
	}
}

func (a *app) runEquiv(w io.Writer, f, g string) error {
	b, names, nodes, err := a.build(a.log, f, g)
	if err != nil {
		return err
	}
	same := nodes[0] == nodes[1]
	eq, witness, err := aig.Equivalent(b, nodes[0], nodes[1])
	if err != nil {
		return err
	}
	if eq != same {
		return errors.Errorf("SAT solver and BDD disagree on %q and %q", f, g)
	}
	if same {
		fmt.Fprintln(w, "equivalent")
		return nil
	}
	fmt.Fprintf(w, "different: %s\n", assignment(names, witness))
	return nil
}

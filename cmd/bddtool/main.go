// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

// Command bddtool builds BDDs from propositional formulas and reports on
// them. It can print statistics, export diagrams in DOT or DIMACS format,
// save and load BDDs in the binary dump format, and check the equivalence of
// formulas with a SAT solver.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

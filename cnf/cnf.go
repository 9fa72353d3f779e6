// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

// Package cnf converts between Boolean functions represented by BDD and the
// propositional formulas of the gophersat solver.
//
// A BDD is translated into a formula in conjunctive normal form with one
// clause for each path leading to the constant false. Formulas are translated
// back into BDD by Shannon expansion, or directly from their textual syntax
// with Parse.
package cnf

import (
	"fmt"
	"io"
	"sort"

	"github.com/crillab/gophersat/bf"
	"github.com/dalzilio/mtbdd"
	"github.com/pkg/errors"
)

// DefaultName is the name used for variable v when no naming function is
// given.
func DefaultName(v int) string {
	return fmt.Sprintf("x%d", v)
}

// Formula returns a formula in conjunctive normal form equivalent to n. Each
// clause is the negation of a path from the root of n to Zero. Function name
// gives the name of variables; we use DefaultName if it is nil.
func Formula(b *mtbdd.BDD, n mtbdd.Node, name func(int) string) (bf.Formula, error) {
	if name == nil {
		name = DefaultName
	}
	switch b.Type(n) {
	case mtbdd.TypeOne:
		return bf.True, nil
	case mtbdd.TypeZero:
		return bf.False, nil
	case mtbdd.TypeConstant, mtbdd.TypeOverflow:
		return nil, errors.Errorf("cannot translate node %s into a formula", b.Print(n))
	}
	nn := b.Not(n)
	defer b.Free(nn)
	var clauses []bf.Formula
	err := b.Allsat(nn, func(cube []int) error {
		var lits []bf.Formula
		for v, val := range cube {
			switch val {
			case 0:
				lits = append(lits, bf.Var(name(v)))
			case 1:
				lits = append(lits, bf.Not(bf.Var(name(v))))
			}
		}
		clauses = append(clauses, bf.Or(lits...))
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "cannot translate node into a formula")
	}
	return bf.And(clauses...), nil
}

// Dimacs writes the clauses of n in DIMACS format on w. The mapping from
// variable names to DIMACS indices is given in comment lines.
func Dimacs(w io.Writer, b *mtbdd.BDD, n mtbdd.Node, name func(int) string) error {
	f, err := Formula(b, n, name)
	if err != nil {
		return err
	}
	return errors.Wrap(bf.Dimacs(f, w), "dimacs")
}

// Solve uses the SAT solver of gophersat to find an assignment satisfying n.
// The model gives a value to every variable in the support of n.
func Solve(b *mtbdd.BDD, n mtbdd.Node, name func(int) string) (map[int]bool, bool, error) {
	if name == nil {
		name = DefaultName
	}
	switch b.Type(n) {
	case mtbdd.TypeOne:
		return map[int]bool{}, true, nil
	case mtbdd.TypeZero:
		return nil, false, nil
	}
	f, err := Formula(b, n, name)
	if err != nil {
		return nil, false, err
	}
	model := bf.Solve(f)
	if model == nil {
		return nil, false, nil
	}
	res := make(map[int]bool)
	for _, v := range b.SupportVars(n) {
		res[v] = model[name(v)]
	}
	return res, true, nil
}

// FromFormula returns the BDD of formula f, where vars associates a BDD
// variable to every variable name in f. We build the result by Shannon
// expansion on every variable in vars, so the cost is exponential in the size
// of vars.
func FromFormula(b *mtbdd.BDD, f bf.Formula, vars map[string]int) (mtbdd.Node, error) {
	names := make([]string, 0, len(vars))
	for name, v := range vars {
		if v < 0 || v >= b.Varnum() {
			return mtbdd.Null, errors.Errorf("variable %q mapped to unknown BDD variable %d", name, v)
		}
		names = append(names, name)
	}
	// expand variables in the order of their level
	sort.Slice(names, func(i, j int) bool {
		li, lj := b.Level(b.Ithvar(vars[names[i]])), b.Level(b.Ithvar(vars[names[j]]))
		return li < lj
	})
	model := make(map[string]bool, len(names))
	for _, name := range names {
		model[name] = false
	}
	if _, err := eval(f, model); err != nil {
		return mtbdd.Null, err
	}
	res := expand(b, f, names, vars, model)
	if b.Errored() {
		return mtbdd.Null, b.Err()
	}
	return res, nil
}

func eval(f bf.Formula, model map[string]bool) (res bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("cannot evaluate formula: %v", r)
		}
	}()
	return f.Eval(model), nil
}

func expand(b *mtbdd.BDD, f bf.Formula, names []string, vars map[string]int, model map[string]bool) mtbdd.Node {
	if len(names) == 0 {
		return b.From(f.Eval(model))
	}
	name := names[0]
	model[name] = true
	high := expand(b, f, names[1:], vars, model)
	model[name] = false
	low := expand(b, f, names[1:], vars, model)
	res := b.Ite(b.Ithvar(vars[name]), high, low)
	b.Free(high)
	b.Free(low)
	return res
}

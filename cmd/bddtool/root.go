// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dalzilio/mtbdd"
	"github.com/dalzilio/mtbdd/cnf"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// app holds the state shared by all the commands.
type app struct {
	configPath string
	verbose    bool
	flags      Config // values of the command line flags
	cfg        Config // settings in use, after loading the configuration file
	log        *logrus.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{log: logrus.New()}
	cmd := &cobra.Command{
		Use:   "bddtool",
		Short: "Build and inspect binary decision diagrams",
		Long: `bddtool builds the BDD of propositional formulas and reports on them.

Formulas use the operators "=" (equivalence), "->" (implication), "|" (or),
"&" (and) and the prefix negation "^", in order of increasing priority. The
constants 1 and 0 stand for true and false.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}
	pf := cmd.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "YAML file with the settings of BDD managers")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "enable debug traces")
	addManagerFlags(pf, &a.flags)
	cmd.AddCommand(newEvalCmd(a), newUndumpCmd(a), newEquivCmd(a), newBatchCmd(a))
	return cmd
}

func (a *app) setup(cmd *cobra.Command) error {
	a.log.SetOutput(cmd.ErrOrStderr())
	a.log.SetLevel(logrus.WarnLevel)
	if a.verbose {
		a.log.SetLevel(logrus.DebugLevel)
	}
	a.cfg = defaultConfig()
	if a.configPath != "" {
		if err := loadConfig(a.configPath, &a.cfg); err != nil {
			return err
		}
	}
	override(&a.cfg, &a.flags, cmd.Flags())
	a.log.WithFields(logrus.Fields{
		"config":     a.configPath,
		"reordering": a.cfg.Reordering,
		"cachesize":  a.cfg.Cachesize,
		"vars":       len(a.cfg.Vars),
	}).Debug("settings")
	return nil
}

// variables returns the names of BDD variables: the names given in the
// settings, followed by the other identifiers of the formulas in order of
// occurrence.
func (a *app) variables(formulas ...string) []string {
	res := append([]string{}, a.cfg.Vars...)
	seen := make(map[string]bool)
	for _, name := range res {
		seen[name] = true
	}
	for _, f := range formulas {
		for _, name := range cnf.Identifiers(strings.NewReader(f)) {
			if !seen[name] {
				seen[name] = true
				res = append(res, name)
			}
		}
	}
	return res
}

// build returns a new manager with the BDD of each formula.
func (a *app) build(logger logrus.FieldLogger, formulas ...string) (*mtbdd.BDD, []string, []mtbdd.Node, error) {
	names := a.variables(formulas...)
	b, err := a.cfg.newBDD(len(names), logger)
	if err != nil {
		return nil, nil, nil, err
	}
	vars := make(map[string]int, len(names))
	for k, name := range names {
		vars[name] = k
	}
	nodes := make([]mtbdd.Node, len(formulas))
	for k, f := range formulas {
		n, err := cnf.Parse(b, strings.NewReader(f), vars)
		if err != nil {
			return nil, nil, nil, errors.Wrapf(err, "formula %q", f)
		}
		nodes[k] = n
	}
	return b, names, nodes, nil
}

// namer returns a naming function for BDD variables.
func namer(names []string) func(int) string {
	return func(v int) string {
		if v < len(names) {
			return names[v]
		}
		return cnf.DefaultName(v)
	}
}

// assignment prints the values of a model, ordered by variable.
func assignment(names []string, model map[int]bool) string {
	vars := make([]int, 0, len(model))
	for v := range model {
		vars = append(vars, v)
	}
	sort.Ints(vars)
	name := namer(names)
	res := make([]string, len(vars))
	for k, v := range vars {
		val := 0
		if model[v] {
			val = 1
		}
		res[k] = fmt.Sprintf("%s=%d", name(v), val)
	}
	return strings.Join(res, " ")
}

func identity(n int) []int {
	res := make([]int, n)
	for k := range res {
		res[k] = k
	}
	return res
}

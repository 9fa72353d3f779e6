// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package main

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// maxDumpVars bounds the number of variables accepted in a dump header.
const maxDumpVars = 1 << 16

func newUndumpCmd(a *app) *cobra.Command {
	var dot string
	cmd := &cobra.Command{
		Use:   "undump <file>",
		Short: "Load a BDD saved with eval --dump and print its statistics",
		Long: `The undump command loads a BDD saved in binary format. Variables are
named after the --vars flag, or x0, x1, ... when no names are given.

Example:
  bddtool undump out.bdd
  bddtool undump --vars a,b,c --dot out.dot out.bdd`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runUndump(cmd.OutOrStdout(), args[0], dot)
		},
	}
	cmd.Flags().StringVar(&dot, "dot", "", "write the BDD in DOT format to this file")
	return cmd
}

func (a *app) runUndump(w io.Writer, path string, dot string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "cannot read dump")
	}
	if len(data) < 8 {
		return errors.Errorf("%s: file too short for a BDD dump", path)
	}
	count := int(binary.BigEndian.Uint32(data[4:8]))
	if count > maxDumpVars {
		return errors.Errorf("%s: too many variables (%d)", path, count)
	}
	b, err := a.cfg.newBDD(count, a.log.WithField("file", path))
	if err != nil {
		return err
	}
	n, err := b.Undump(bytes.NewReader(data), identity(count))
	if err != nil {
		return errors.Wrap(err, path)
	}
	report(w, b, n, a.cfg.Vars)
	if dot != "" {
		return writeFile(dot, func(f io.Writer) error { return b.PrintDot(f, n, namer(a.cfg.Vars)) })
	}
	return nil
}

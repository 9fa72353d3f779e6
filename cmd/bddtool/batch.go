// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math/big"
	"os"
	"strings"

	"github.com/dalzilio/mtbdd"
	"github.com/dalzilio/mtbdd/cnf"
	"github.com/dalzilio/mtbdd/metrics"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

type batchOptions struct {
	jobs    int
	metrics bool
}

// batchResult is the outcome of processing one file.
type batchResult struct {
	file     string
	formulas int
	satcount *big.Int
	nodes    int
}

func newBatchCmd(a *app) *cobra.Command {
	var opts batchOptions
	cmd := &cobra.Command{
		Use:   "batch <file>...",
		Short: "Compute the conjunction of the formulas in each file",
		Long: `The batch command reads files with one formula per line (empty lines and
lines starting with # are ignored) and computes the conjunction of the formulas
of each file. Files are processed concurrently, each with its own BDD manager.

Example:
  bddtool batch --jobs 4 constraints/*.txt
  bddtool batch --metrics --cachesize 50000 big.txt`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runBatch(cmd.Context(), cmd.OutOrStdout(), args, opts)
		},
	}
	fs := cmd.Flags()
	fs.IntVarP(&opts.jobs, "jobs", "j", 0, "number of files processed at the same time (0 for no limit)")
	fs.BoolVar(&opts.metrics, "metrics", false, "print the statistics of each manager")
	return cmd
}

func (a *app) runBatch(ctx context.Context, w io.Writer, files []string, opts batchOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	collector := metrics.NewCollector()
	results := make([]batchResult, len(files))
	g, ctx := errgroup.WithContext(ctx)
	if opts.jobs > 0 {
		g.SetLimit(opts.jobs)
	}
	for k, file := range files {
		k, file := k, file
		g.Go(func() error {
			res, err := a.process(ctx, file, collector)
			if err != nil {
				return errors.Wrap(err, file)
			}
			results[k] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	for _, r := range results {
		fmt.Fprintf(w, "%s: %d formulas, satcount %s, %d nodes\n", r.file, r.formulas, r.satcount, r.nodes)
	}
	if opts.metrics {
		return printMetrics(w, collector)
	}
	return nil
}

// process computes the conjunction of the formulas in file with a new
// manager.
func (a *app) process(ctx context.Context, file string, collector *metrics.Collector) (batchResult, error) {
	lines, err := readFormulas(file)
	if err != nil {
		return batchResult{}, err
	}
	names := a.variables(lines...)
	b, err := a.cfg.newBDD(len(names), a.log.WithField("file", file))
	if err != nil {
		return batchResult{}, err
	}
	vars := make(map[string]int, len(names))
	for k, name := range names {
		vars[name] = k
	}
	res := mtbdd.One
	for k, line := range lines {
		if err := ctx.Err(); err != nil {
			return batchResult{}, err
		}
		n, err := cnf.Parse(b, strings.NewReader(line), vars)
		if err != nil {
			return batchResult{}, errors.Wrapf(err, "formula %d", k+1)
		}
		next := b.And(res, n)
		b.Free(res)
		b.Free(n)
		if next == mtbdd.Null {
			return batchResult{}, errors.Wrapf(b.Err(), "formula %d", k+1)
		}
		res = next
		collector.ObserveBDD(file, b)
	}
	collector.ObserveBDD(file, b)
	return batchResult{
		file:     file,
		formulas: len(lines),
		satcount: b.Satcount(res),
		nodes:    b.Size(res),
	}, nil
}

func readFormulas(file string) ([]string, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var res []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		res = append(res, line)
	}
	return res, scanner.Err()
}

// printMetrics prints the metrics of every manager, one per line, in the
// order of the Prometheus registry.
func printMetrics(w io.Writer, collector *metrics.Collector) error {
	reg := prometheus.NewRegistry()
	if err := reg.Register(collector); err != nil {
		return err
	}
	families, err := reg.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			value := m.GetCounter().GetValue()
			if m.GetGauge() != nil {
				value = m.GetGauge().GetValue()
			}
			manager := ""
			for _, l := range m.GetLabel() {
				if l.GetName() == "manager" {
					manager = l.GetValue()
				}
			}
			fmt.Fprintf(w, "%s{manager=%q} %g\n", mf.GetName(), manager, value)
		}
	}
	return nil
}

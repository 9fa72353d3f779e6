// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

// Package metrics exports the statistics of BDD managers as Prometheus
// metrics.
//
// A manager is not safe for concurrent use, so the collector never reads it
// directly. The goroutine owning a manager publishes snapshots with Observe,
// and Collect reports the last snapshot of every manager.
package metrics

import (
	"sort"
	"sync"

	"github.com/dalzilio/mtbdd"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "mtbdd"

type metric struct {
	desc  *prometheus.Desc
	kind  prometheus.ValueType
	value func(s mtbdd.Statistics) float64
}

func newMetric(name, help string, kind prometheus.ValueType, value func(s mtbdd.Statistics) float64) metric {
	return metric{
		desc:  prometheus.NewDesc(prometheus.BuildFQName(namespace, "", name), help, []string{"manager"}, nil),
		kind:  kind,
		value: value,
	}
}

var metrics = []metric{
	newMetric("variables", "Number of BDD variables.", prometheus.GaugeValue,
		func(s mtbdd.Statistics) float64 { return float64(s.Varnum) }),
	newMetric("nodes_allocated", "Size of the node table.", prometheus.GaugeValue,
		func(s mtbdd.Statistics) float64 { return float64(s.Allocated) }),
	newMetric("nodes_live", "Nodes in use.", prometheus.GaugeValue,
		func(s mtbdd.Statistics) float64 { return float64(s.Live) }),
	newMetric("terminals", "Multi-terminal leaves in use.", prometheus.GaugeValue,
		func(s mtbdd.Statistics) float64 { return float64(s.Terminals) }),
	newMetric("nodes_produced_total", "Nodes created since the manager started.", prometheus.CounterValue,
		func(s mtbdd.Statistics) float64 { return float64(s.Produced) }),
	newMetric("gc_total", "Garbage collections.", prometheus.CounterValue,
		func(s mtbdd.Statistics) float64 { return float64(s.GCs) }),
	newMetric("gc_reclaimed_total", "Nodes freed by garbage collections.", prometheus.CounterValue,
		func(s mtbdd.Statistics) float64 { return float64(s.Reclaimed) }),
	newMetric("reorderings_total", "Dynamic and explicit reorderings.", prometheus.CounterValue,
		func(s mtbdd.Statistics) float64 { return float64(s.Reorderings) }),
	newMetric("overflows_total", "Operations stopped by the node limit.", prometheus.CounterValue,
		func(s mtbdd.Statistics) float64 { return float64(s.Overflows) }),
	newMetric("aborts_total", "Aborted operations.", prometheus.CounterValue,
		func(s mtbdd.Statistics) float64 { return float64(s.Aborts) }),
	newMetric("cache_bins", "Bins in the operation cache.", prometheus.GaugeValue,
		func(s mtbdd.Statistics) float64 { return float64(s.CacheSize) }),
	newMetric("cache_hits_total", "Hits in the operation cache.", prometheus.CounterValue,
		func(s mtbdd.Statistics) float64 { return float64(s.CacheHits) }),
	newMetric("cache_misses_total", "Misses in the operation cache.", prometheus.CounterValue,
		func(s mtbdd.Statistics) float64 { return float64(s.CacheMisses) }),
	newMetric("unique_hits_total", "Hits in the unique table.", prometheus.CounterValue,
		func(s mtbdd.Statistics) float64 { return float64(s.UniqueHits) }),
	newMetric("unique_misses_total", "Misses in the unique table.", prometheus.CounterValue,
		func(s mtbdd.Statistics) float64 { return float64(s.UniqueMisses) }),
}

// Collector is a prometheus.Collector reporting the statistics of a set of
// named BDD managers.
type Collector struct {
	mu    sync.Mutex
	stats map[string]mtbdd.Statistics
}

// NewCollector returns a collector with no managers.
func NewCollector() *Collector {
	return &Collector{stats: make(map[string]mtbdd.Statistics)}
}

// Observe records the statistics of the manager with the given name.
func (c *Collector) Observe(name string, s mtbdd.Statistics) {
	c.mu.Lock()
	c.stats[name] = s
	c.mu.Unlock()
}

// ObserveBDD is a shortcut for Observe(name, b.Statistics()). It must be
// called by the goroutine using b.
func (c *Collector) ObserveBDD(name string, b *mtbdd.BDD) {
	c.Observe(name, b.Statistics())
}

// Forget removes a manager from the collector.
func (c *Collector) Forget(name string) {
	c.mu.Lock()
	delete(c.stats, name)
	c.mu.Unlock()
}

// Managers returns the names of observed managers in increasing order.
func (c *Collector) Managers() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	res := make([]string, 0, len(c.stats))
	for name := range c.stats {
		res = append(res, name)
	}
	sort.Strings(res)
	return res
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, m := range metrics {
		ch <- m.desc
	}
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for name, s := range c.stats {
		for _, m := range metrics {
			ch <- prometheus.MustNewConstMetric(m.desc, m.kind, m.value(s), name)
		}
	}
}

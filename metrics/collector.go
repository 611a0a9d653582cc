// Package metrics exports allocator occupancy to prometheus.
package metrics

import (
	"github.com/forestrie/go-jsonarena/arena"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "jsonarena"

var (
	capacityDesc = prometheus.NewDesc(
		namespace+"_arena_capacity_bytes",
		"The size of the arena block.",
		[]string{"arena"}, nil,
	)
	usedDesc = prometheus.NewDesc(
		namespace+"_arena_used_bytes",
		"Bytes consumed by the bump cursor, including the header and alignment padding.",
		[]string{"arena"}, nil,
	)
	liveDesc = prometheus.NewDesc(
		namespace+"_arena_live_bytes",
		"Bytes handed out and not yet freed.",
		[]string{"arena"}, nil,
	)
	allocsDesc = prometheus.NewDesc(
		namespace+"_arena_allocations_total",
		"Successful allocations.",
		[]string{"arena"}, nil,
	)
	freesDesc = prometheus.NewDesc(
		namespace+"_arena_frees_total",
		"Regions returned to the allocator.",
		[]string{"arena"}, nil,
	)
	failuresDesc = prometheus.NewDesc(
		namespace+"_arena_allocation_failures_total",
		"Allocations refused for lack of space.",
		[]string{"arena"}, nil,
	)
)

// ArenaCollector reads arena.Stats on every scrape. Scrapes must not run
// concurrently with allocation, the allocators do no locking.
type ArenaCollector struct {
	name  string
	alloc arena.Allocator
}

func NewArenaCollector(name string, alloc arena.Allocator) *ArenaCollector {
	return &ArenaCollector{name: name, alloc: alloc}
}

func (c *ArenaCollector) Describe(descs chan<- *prometheus.Desc) {
	descs <- capacityDesc
	descs <- usedDesc
	descs <- liveDesc
	descs <- allocsDesc
	descs <- freesDesc
	descs <- failuresDesc
}

func (c *ArenaCollector) Collect(m chan<- prometheus.Metric) {
	st := c.alloc.Stats()
	m <- prometheus.MustNewConstMetric(capacityDesc, prometheus.GaugeValue, float64(st.Capacity), c.name)
	m <- prometheus.MustNewConstMetric(usedDesc, prometheus.GaugeValue, float64(st.Used), c.name)
	m <- prometheus.MustNewConstMetric(liveDesc, prometheus.GaugeValue, float64(st.Live), c.name)
	m <- prometheus.MustNewConstMetric(allocsDesc, prometheus.CounterValue, float64(st.Allocs), c.name)
	m <- prometheus.MustNewConstMetric(freesDesc, prometheus.CounterValue, float64(st.Frees), c.name)
	m <- prometheus.MustNewConstMetric(failuresDesc, prometheus.CounterValue, float64(st.Failures), c.name)
}

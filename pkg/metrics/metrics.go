// Package metrics holds the Prometheus collectors shared by the execution core.
package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "leapdb"

const (
	MetricEvictions        = "eviction_total"
	MetricEvictionFailures = "eviction_failures_total"
	MetricBufferHits       = "buffer_hits_total"
	MetricBufferMisses     = "buffer_misses_total"
	MetricSortRuns         = "sort_runs_total"
	MetricSortMergePasses  = "sort_merge_passes_total"
	MetricSortMergeFanIn   = "sort_merge_fan_in"
	MetricJoinOutput       = "join_output_rows_total"
	MetricJoinProbes       = "join_probes_total"
)

var CounterEvictions = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      MetricEvictions,
		Help:      "Frames chosen as eviction victims, by policy.",
	},
	[]string{"policy"},
)

var CounterEvictionFailures = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      MetricEvictionFailures,
		Help:      "Eviction requests that failed because every frame was pinned.",
	},
	[]string{"policy"},
)

var CounterBufferHits = prometheus.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      MetricBufferHits,
		Help:      "Page fetches served from a resident frame.",
	},
)

var CounterBufferMisses = prometheus.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      MetricBufferMisses,
		Help:      "Page fetches that had to load the page.",
	},
)

var CounterSortRuns = prometheus.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      MetricSortRuns,
		Help:      "Sorted runs produced by pass 0 of external sort.",
	},
)

var CounterSortMergePasses = prometheus.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      MetricSortMergePasses,
		Help:      "Merge passes executed by external sort.",
	},
)

var HistogramSortMergeFanIn = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      MetricSortMergeFanIn,
		Help:      "Number of runs merged by a single k-way merge.",
		Buckets:   prometheus.LinearBuckets(1, 2, 8),
	},
)

var CounterJoinOutput = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      MetricJoinOutput,
		Help:      "Rows emitted by join operators, by algorithm.",
	},
	[]string{"algorithm"},
)

var CounterJoinProbes = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      MetricJoinProbes,
		Help:      "Index probes or seeks issued by join operators, by algorithm.",
	},
	[]string{"algorithm"},
)

func init() {
	prometheus.MustRegister(CounterEvictions)
	prometheus.MustRegister(CounterEvictionFailures)
	prometheus.MustRegister(CounterBufferHits)
	prometheus.MustRegister(CounterBufferMisses)
	prometheus.MustRegister(CounterSortRuns)
	prometheus.MustRegister(CounterSortMergePasses)
	prometheus.MustRegister(HistogramSortMergeFanIn)
	prometheus.MustRegister(CounterJoinOutput)
	prometheus.MustRegister(CounterJoinProbes)
}

// Package metrics exposes Prometheus instrumentation for the analysis
// pipeline, grouped by pipeline stage the way graph-engine's
// internal/metrics/collector.go groups its request, analysis, and graph
// metrics. A nil *Collector is tolerated by every recording method so
// instrumentation stays optional at every call site.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector records per-stage duration, per-pattern ring counts, and
// per-run account/ring totals for one or many analyses.
type Collector struct {
	stageDuration   *prometheus.HistogramVec
	ringsByPattern  *prometheus.CounterVec
	accountsScored  prometheus.Counter
	analysesTotal   prometheus.Counter
	assemblyLatency prometheus.Histogram
}

// NewCollector registers the engine's metrics against the given registerer.
// Passing prometheus.NewRegistry() keeps tests isolated from the global
// default registry.
func NewCollector(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)
	return &Collector{
		stageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "mule_detection",
			Name:      "pipeline_stage_duration_seconds",
			Help:      "Duration of each analysis pipeline stage.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"stage"}),
		ringsByPattern: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mule_detection",
			Name:      "rings_detected_total",
			Help:      "Rings detected, labeled by pattern type.",
		}, []string{"pattern_type"}),
		accountsScored: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "mule_detection",
			Name:      "accounts_scored_total",
			Help:      "Total accounts that received a suspicion score from at least one ring.",
		}),
		analysesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "mule_detection",
			Name:      "analyses_total",
			Help:      "Total completed analysis runs.",
		}),
		assemblyLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "mule_detection",
			Name:      "report_assembly_duration_seconds",
			Help:      "Duration of the final report assembly stage.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

// ObserveStage records how long a named pipeline stage took.
func (c *Collector) ObserveStage(stage string, d time.Duration) {
	if c == nil {
		return
	}
	c.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// AddRings increments the per-pattern ring counter by count.
func (c *Collector) AddRings(patternType string, count int) {
	if c == nil || count == 0 {
		return
	}
	c.ringsByPattern.WithLabelValues(patternType).Add(float64(count))
}

// AddAccountsScored increments the scored-accounts counter by count.
func (c *Collector) AddAccountsScored(count int) {
	if c == nil {
		return
	}
	c.accountsScored.Add(float64(count))
}

// ObserveAssembly records the report-assembly stage duration.
func (c *Collector) ObserveAssembly(d time.Duration) {
	if c == nil {
		return
	}
	c.assemblyLatency.Observe(d.Seconds())
}

// IncAnalyses increments the completed-analysis counter.
func (c *Collector) IncAnalyses() {
	if c == nil {
		return
	}
	c.analysesTotal.Inc()
}

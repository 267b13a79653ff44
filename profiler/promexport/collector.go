// Package promexport exposes aggregate profiler statistics as Prometheus
// counters.
package promexport

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/alexander-akhmetov/timekeeper/profiler"
)

// Collector reads an Aggregate on every scrape.
type Collector struct {
	agg *profiler.Aggregate

	calls       *prometheus.Desc
	errors      *prometheus.Desc
	seconds     *prometheus.Desc
	selfSeconds *prometheus.Desc
}

// NewCollector returns a collector over agg. Metric names are prefixed
// with namespace when it is non-empty.
func NewCollector(agg *profiler.Aggregate, namespace string) *Collector {
	labels := []string{"function"}
	name := func(n string) string { return prometheus.BuildFQName(namespace, "profiled", n) }

	return &Collector{
		agg: agg,
		calls: prometheus.NewDesc(name("calls_total"),
			"Completed instrumented calls.", labels, nil),
		errors: prometheus.NewDesc(name("errors_total"),
			"Instrumented calls that returned an error or panicked.", labels, nil),
		seconds: prometheus.NewDesc(name("seconds_total"),
			"Total time spent in instrumented calls.", labels, nil),
		selfSeconds: prometheus.NewDesc(name("self_seconds_total"),
			"Time spent in instrumented calls excluding instrumented callees.", labels, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.calls
	ch <- c.errors
	ch <- c.seconds
	ch <- c.selfSeconds
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	for _, s := range c.agg.Snapshot() {
		ch <- prometheus.MustNewConstMetric(c.calls, prometheus.CounterValue, float64(s.Calls), s.Name)
		ch <- prometheus.MustNewConstMetric(c.errors, prometheus.CounterValue, float64(s.Errors), s.Name)
		ch <- prometheus.MustNewConstMetric(c.seconds, prometheus.CounterValue, s.Total.Seconds(), s.Name)
		ch <- prometheus.MustNewConstMetric(c.selfSeconds, prometheus.CounterValue, s.Self.Seconds(), s.Name)
	}
}

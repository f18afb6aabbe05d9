// Package metrics exposes the resolver's per-upstream PerformanceMetrics
// (§4.3) as Prometheus gauges/counters, for callers who opt in with
// EnableStats. The collector is pull-model: Collect snapshots the
// registry on every scrape rather than duplicating counters that
// upstream.Registry already owns, the same "metrics live in one place,
// read on demand" shape the registry's own RWMutex-guarded map uses.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/haukened/dnsx/internal/dnsx/upstream"
)

const namespace = "dnsx"

// Collector implements prometheus.Collector over an *upstream.Registry.
// It is never registered against the global default registry — a caller
// opting into EnableStats supplies its own prometheus.Registerer, kept
// by the builder, not by this package.
type Collector struct {
	registry *upstream.Registry

	total               *prometheus.Desc
	successes           *prometheus.Desc
	failures            *prometheus.Desc
	consecutiveFailures *prometheus.Desc
	emaLatencySeconds   *prometheus.Desc
	cdnAccuracy         *prometheus.Desc
	health              *prometheus.Desc
}

// NewCollector builds a Collector reading from registry. Call
// Register to attach it to a prometheus.Registerer.
func NewCollector(registry *upstream.Registry) *Collector {
	labels := []string{"upstream", "protocol"}
	return &Collector{
		registry: registry,
		total: prometheus.NewDesc(
			namespace+"_upstream_queries_total", "Total queries attempted against an upstream.", labels, nil),
		successes: prometheus.NewDesc(
			namespace+"_upstream_successes_total", "Successful wire exchanges against an upstream.", labels, nil),
		failures: prometheus.NewDesc(
			namespace+"_upstream_failures_total", "Transport-layer failures against an upstream.", labels, nil),
		consecutiveFailures: prometheus.NewDesc(
			namespace+"_upstream_consecutive_failures", "Current consecutive-failure streak.", labels, nil),
		emaLatencySeconds: prometheus.NewDesc(
			namespace+"_upstream_ema_latency_seconds", "Exponential moving average response latency.", labels, nil),
		cdnAccuracy: prometheus.NewDesc(
			namespace+"_upstream_cdn_accuracy_ratio", "Running mean of EDNS Client Subnet scope accuracy, in [0,1].", labels, nil),
		health: prometheus.NewDesc(
			namespace+"_upstream_health", "Health state: 0=unknown, 1=healthy, 2=unhealthy.", labels, nil),
	}
}

// Register attaches c to reg. Returns an error if any metric name
// collides with one already registered on reg.
func Register(reg prometheus.Registerer, registry *upstream.Registry) (*Collector, error) {
	c := NewCollector(registry)
	if err := reg.Register(c); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.total
	ch <- c.successes
	ch <- c.failures
	ch <- c.consecutiveFailures
	ch <- c.emaLatencySeconds
	ch <- c.cdnAccuracy
	ch <- c.health
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	for _, name := range c.registry.Names() {
		spec, m, ok := c.registry.Get(name)
		if !ok {
			continue
		}
		protocol := spec.Kind.String()

		ch <- prometheus.MustNewConstMetric(c.total, prometheus.CounterValue, float64(m.Total), name, protocol)
		ch <- prometheus.MustNewConstMetric(c.successes, prometheus.CounterValue, float64(m.Successes), name, protocol)
		ch <- prometheus.MustNewConstMetric(c.failures, prometheus.CounterValue, float64(m.Failures), name, protocol)
		ch <- prometheus.MustNewConstMetric(c.consecutiveFailures, prometheus.GaugeValue, float64(m.ConsecutiveFailures), name, protocol)
		ch <- prometheus.MustNewConstMetric(c.emaLatencySeconds, prometheus.GaugeValue, m.EMALatency.Seconds(), name, protocol)
		ch <- prometheus.MustNewConstMetric(c.cdnAccuracy, prometheus.GaugeValue, m.CDNAccuracy, name, protocol)
		ch <- prometheus.MustNewConstMetric(c.health, prometheus.GaugeValue, healthValue(m.Health), name, protocol)
	}
}

func healthValue(h upstream.Health) float64 {
	switch h {
	case upstream.HealthHealthy:
		return 1
	case upstream.HealthUnhealthy:
		return 2
	default:
		return 0
	}
}

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the process-wide Prometheus collectors. All record methods
// are nil-safe so components can run without metrics in tests.
type Metrics struct {
	ProviderRequests   *prometheus.CounterVec
	GenerationRequests *prometheus.CounterVec
	GenerationLatency  *prometheus.HistogramVec
}

// New registers the collectors on reg and returns them.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ProviderRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "support_provider_requests_total",
			Help: "Enrichment provider lookups by provider and outcome.",
		}, []string{"provider", "outcome"}),
		GenerationRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "support_generation_requests_total",
			Help: "Generation provider calls by result.",
		}, []string{"result"}),
		GenerationLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "support_generation_latency_seconds",
			Help:    "Generation provider call latency by HTTP status.",
			Buckets: prometheus.DefBuckets,
		}, []string{"status"}),
	}
	reg.MustRegister(m.ProviderRequests, m.GenerationRequests, m.GenerationLatency)
	return m
}

// RecordProvider counts one enrichment lookup.
func (m *Metrics) RecordProvider(provider, outcome string) {
	if m == nil {
		return
	}
	m.ProviderRequests.WithLabelValues(provider, outcome).Inc()
}

// RecordGeneration counts one generation call.
func (m *Metrics) RecordGeneration(result string) {
	if m == nil {
		return
	}
	m.GenerationRequests.WithLabelValues(result).Inc()
}

// ObserveGenerationLatency records one generation call's duration.
func (m *Metrics) ObserveGenerationLatency(status string, d time.Duration) {
	if m == nil {
		return
	}
	m.GenerationLatency.WithLabelValues(status).Observe(d.Seconds())
}

package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "docsig"

// Metrics groups the collectors for one process. Methods on a nil *Metrics
// are no-ops.
type Metrics struct {
	registry      *prometheus.Registry
	signatures    prometheus.Counter
	appends       *prometheus.CounterVec
	verifications *prometheus.CounterVec
	registryCalls *prometheus.HistogramVec
}

// NewMetrics creates a new Metrics on a private registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: registry,
		signatures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "signatures_total",
			Help:      "Document digests signed.",
		}),
		appends: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "appends_total",
			Help:      "Registry append attempts by result.",
		}, []string{"result"}),
		verifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "verifications_total",
			Help:      "Verification verdicts by reason.",
		}, []string{"reason"}),
		registryCalls: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "registry_call_seconds",
			Help:      "Latency of registry calls by operation and outcome.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op", "outcome"}),
	}
	registry.MustRegister(m.signatures, m.appends, m.verifications, m.registryCalls)
	return m
}

// Registry returns the underlying prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the collected metrics in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveSignature() {
	if m == nil {
		return
	}
	m.signatures.Inc()
}

func (m *Metrics) ObserveAppend(result string) {
	if m == nil {
		return
	}
	m.appends.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveVerification(reason string) {
	if m == nil {
		return
	}
	m.verifications.WithLabelValues(reason).Inc()
}

// ObserveRegistryCall records one registry round trip.
func (m *Metrics) ObserveRegistryCall(op string, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.registryCalls.WithLabelValues(op, outcome).Observe(elapsed.Seconds())
}

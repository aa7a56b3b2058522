// Package metrics registers the Prometheus collectors for the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the service collectors. A nil *Metrics is a no-op receiver
// so tests can skip registration.
type Metrics struct {
	Verifications     *prometheus.CounterVec
	CapabilityCalls   *prometheus.CounterVec
	CapabilityLatency *prometheus.HistogramVec
	WriteFailures     prometheus.Counter
}

// New creates and registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Verifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mediguard_verifications_total",
			Help: "Prescription verification attempts by outcome.",
		}, []string{"outcome"}),
		CapabilityCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mediguard_capability_calls_total",
			Help: "Generative capability invocations by capability and outcome.",
		}, []string{"capability", "outcome"}),
		CapabilityLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mediguard_capability_latency_seconds",
			Help:    "Generative capability call latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"capability"}),
		WriteFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mediguard_async_write_failures_total",
			Help: "Record store writes that failed after an optimistic return.",
		}),
	}
	reg.MustRegister(m.Verifications, m.CapabilityCalls, m.CapabilityLatency, m.WriteFailures)
	return m
}

// ObserveCapability records one capability call.
func (m *Metrics) ObserveCapability(capability, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.CapabilityCalls.WithLabelValues(capability, outcome).Inc()
	m.CapabilityLatency.WithLabelValues(capability).Observe(seconds)
}

// ObserveVerification records one verification attempt.
func (m *Metrics) ObserveVerification(outcome string) {
	if m == nil {
		return
	}
	m.Verifications.WithLabelValues(outcome).Inc()
}

// ObserveWriteFailure records one failed asynchronous store write.
func (m *Metrics) ObserveWriteFailure() {
	if m == nil {
		return
	}
	m.WriteFailures.Inc()
}

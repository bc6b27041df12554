// Package metrics holds the prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Activations counts activation attempts by result (success, rejected, error).
	Activations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ncp_activation_attempts_total",
			Help: "Total activation attempts by result",
		},
		[]string{"result"},
	)

	// Probes counts container runtime queries by result (ok, error).
	Probes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ncp_runtime_probes_total",
			Help: "Total container runtime probes by result",
		},
		[]string{"result"},
	)

	probeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "ncp_runtime_probe_duration_seconds",
		Help:    "Duration of container runtime probes",
		Buckets: prometheus.DefBuckets,
	})

	// StackReady is 1 once the AIO apache container has been seen running.
	StackReady = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ncp_aio_ready",
		Help: "Whether the Nextcloud AIO stack reported ready",
	})
)

// RecordProbe records the outcome and duration of one runtime probe.
func RecordProbe(seconds float64, err error) {
	probeDuration.Observe(seconds)
	if err != nil {
		Probes.WithLabelValues("error").Inc()
		return
	}
	Probes.WithLabelValues("ok").Inc()
}

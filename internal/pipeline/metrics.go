package pipeline

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics collects per-attempt counters and latencies for every pipeline that shares it.
type Metrics struct {
	attempts  *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	fallbacks *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on reg. A nil reg leaves them
// unregistered, which tests use to avoid touching the default registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "taleweaver",
			Subsystem: "generation",
			Name:      "attempts_total",
			Help:      "Provider attempts by modality, provider and outcome.",
		}, []string{"modality", "provider", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "taleweaver",
			Subsystem: "generation",
			Name:      "attempt_duration_seconds",
			Help:      "Wall time of a single provider attempt.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"modality", "provider"}),
		fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "taleweaver",
			Subsystem: "generation",
			Name:      "fallbacks_total",
			Help:      "Requests served by the terminal fallback.",
		}, []string{"modality"}),
	}

	if reg != nil {
		reg.MustRegister(m.attempts, m.duration, m.fallbacks)
	}

	return m
}

func (m *Metrics) observe(modality Modality, provider string, status Status, d time.Duration) {
	if m == nil {
		return
	}
	m.attempts.WithLabelValues(string(modality), provider, string(status)).Inc()
	m.duration.WithLabelValues(string(modality), provider).Observe(d.Seconds())
}

func (m *Metrics) fallback(modality Modality) {
	if m == nil {
		return
	}
	m.fallbacks.WithLabelValues(string(modality)).Inc()
}

package dialog

import "github.com/prometheus/client_golang/prometheus"

// Metrics aggregates the controller's Prometheus instruments.
type Metrics struct {
	Events          *prometheus.CounterVec
	Errors          *prometheus.CounterVec
	ComputeDuration prometheus.Histogram
}

// NewMetrics builds and registers the dialog metrics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pgdbot_events_total",
				Help: "Total number of dialog events processed",
			},
			[]string{"kind"},
		),
		Errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pgdbot_errors_total",
				Help: "Total number of errors by class",
			},
			[]string{"class"},
		),
		ComputeDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name: "pgdbot_compute_duration_seconds",
				Help: "Duration of calculation engine invocations",
			},
		),
	}
	reg.MustRegister(m.Events, m.Errors, m.ComputeDuration)
	return m
}

func (m *Metrics) event(kind string) {
	if m != nil {
		m.Events.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) errored(class string) {
	if m != nil {
		m.Errors.WithLabelValues(class).Inc()
	}
}

func (m *Metrics) observeCompute(seconds float64) {
	if m != nil {
		m.ComputeDuration.Observe(seconds)
	}
}

package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts documents and templates across runs.
type Metrics struct {
	Documents *prometheus.CounterVec
	Skipped   *prometheus.CounterVec
	Templates prometheus.Counter
}

// NewMetrics creates the counters and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Documents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "timeliner_documents_total",
				Help: "Count of documents by outcome",
			},
			[]string{"status"},
		),
		Skipped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "timeliner_documents_skipped_total",
				Help: "Count of skipped documents by reason",
			},
			[]string{"reason"},
		),
		Templates: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "timeliner_templates_total",
				Help: "Number of templates emitted",
			},
		),
	}

	reg.MustRegister(m.Documents)
	reg.MustRegister(m.Skipped)
	reg.MustRegister(m.Templates)

	return m
}

// ObserveRejected counts documents rejected before formatting.
func (m *Metrics) ObserveRejected(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.Documents.WithLabelValues("skipped").Add(float64(n))
	m.Skipped.WithLabelValues(string(SkipReasonMalformed)).Add(float64(n))
}

func (m *Metrics) observeSkipped(reason SkipReason) {
	if m == nil {
		return
	}
	m.Documents.WithLabelValues("skipped").Inc()
	m.Skipped.WithLabelValues(string(reason)).Inc()
}

func (m *Metrics) observeFiltered() {
	if m == nil {
		return
	}
	m.Documents.WithLabelValues("filtered").Inc()
}

func (m *Metrics) observeAccepted(templates int) {
	if m == nil {
		return
	}
	m.Documents.WithLabelValues("accepted").Inc()
	m.Templates.Add(float64(templates))
}

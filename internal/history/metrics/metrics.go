package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the ticket-history aggregator.
type Metrics struct {
	Requests         *prometheus.CounterVec
	SectionFailures  *prometheus.CounterVec
	SectionDuration  *prometheus.HistogramVec
	UnresolvedTicket *prometheus.CounterVec
}

// New registers the history metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Requests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "account_history_requests_total",
			Help: "Ticket-history requests by outcome (complete, partial, rejected, error)",
		}, []string{"result"}),
		SectionFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "account_history_section_failures_total",
			Help: "Mode sections degraded to an error marker",
		}, []string{"mode", "code"}),
		SectionDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "account_history_section_duration_seconds",
			Help:    "Time to fetch and enrich one mode section",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"mode"}),
		UnresolvedTicket: f.NewCounterVec(prometheus.CounterOpts{
			Name: "account_history_unresolved_tickets_total",
			Help: "Tickets returned without enrichment because their schedule no longer resolves",
		}, []string{"mode"}),
	}
}

func (m *Metrics) IncRequest(result string) {
	m.Requests.WithLabelValues(result).Inc()
}

func (m *Metrics) IncSectionFailure(mode, code string) {
	m.SectionFailures.WithLabelValues(mode, code).Inc()
}

func (m *Metrics) ObserveSection(mode string, start time.Time) {
	m.SectionDuration.WithLabelValues(mode).Observe(time.Since(start).Seconds())
}

func (m *Metrics) IncUnresolved(mode string) {
	m.UnresolvedTicket.WithLabelValues(mode).Inc()
}

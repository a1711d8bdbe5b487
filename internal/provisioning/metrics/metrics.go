package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for signup, login and approval.
type Metrics struct {
	Signups        *prometheus.CounterVec
	Logins         *prometheus.CounterVec
	Compensations  *prometheus.CounterVec
	SignupDuration *prometheus.HistogramVec
}

// New registers the provisioning metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Signups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "account_signups_total",
			Help: "Signups by identity kind and outcome",
		}, []string{"kind", "result"}),
		Logins: f.NewCounterVec(prometheus.CounterOpts{
			Name: "account_logins_total",
			Help: "Logins by identity kind and outcome",
		}, []string{"kind", "result"}),
		Compensations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "account_compensations_total",
			Help: "Compensating actions run after a failed cross-store write",
		}, []string{"operation", "result"}),
		SignupDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "account_signup_duration_seconds",
			Help:    "Duration of signup operations including hashing",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"kind"}),
	}
}

func (m *Metrics) IncSignup(kind, result string) {
	m.Signups.WithLabelValues(kind, result).Inc()
}

func (m *Metrics) IncLogin(kind, result string) {
	m.Logins.WithLabelValues(kind, result).Inc()
}

func (m *Metrics) IncCompensation(operation, result string) {
	m.Compensations.WithLabelValues(operation, result).Inc()
}

// ObserveSignup records the duration since start.
func (m *Metrics) ObserveSignup(kind string, start time.Time) {
	m.SignupDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
}

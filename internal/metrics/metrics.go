package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "committee_http_requests_total",
			Help: "HTTP requests by method, route and status.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "committee_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// JobRunsTotal counts debt job invocations by trigger and outcome
	// (sent, no_debts, no_recipients, preview, failed).
	JobRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "committee_debt_job_runs_total",
			Help: "Debt job runs by trigger and outcome.",
		},
		[]string{"trigger", "outcome"},
	)

	JobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "committee_debt_job_duration_seconds",
			Help:    "Debt job wall-clock time.",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 60, 300},
		},
		[]string{"trigger"},
	)

	MailSendsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "committee_mail_sends_total",
			Help: "Per-recipient mail attempts by result.",
		},
		[]string{"result"},
	)

	ResidentsWithDebt = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "committee_residents_with_debt",
		Help: "Residents owing money at the last collection.",
	})

	DebtGrandTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "committee_debt_grand_total",
		Help: "Total debt at the last collection.",
	})
)

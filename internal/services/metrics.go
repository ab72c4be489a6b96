package services

import "github.com/prometheus/client_golang/prometheus"

var (
	// emailsSent counts dispatch steps by lead kind, step and result.
	emailsSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_emails_total",
			Help: "Lead notification emails by kind, step and result.",
		},
		[]string{"kind", "step", "result"},
	)

	// pagesSent counts on-call pages by result.
	pagesSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_oncall_pages_total",
			Help: "On-call pages published for emergency leads.",
		},
		[]string{"result"},
	)

	// reviewFetches counts reviews lookups by source: cache, upstream,
	// stale (upstream failed, cache served) or error.
	reviewFetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reviews_fetch_total",
			Help: "Reviews lookups by source.",
		},
		[]string{"source"},
	)
)

func init() {
	prometheus.MustRegister(emailsSent, pagesSent, reviewFetches)
}

package handlers

import "github.com/prometheus/client_golang/prometheus"

// Submission outcomes as recorded in lead_submissions_total. Throttled
// requests never reach a handler and are counted by the rate-limit middleware.
const (
	outcomeAccepted = "accepted"
	outcomeInvalid  = "invalid"
	outcomeFailed   = "dispatch_failed"
	outcomeError    = "error"
	outcomeReplayed = "replayed"
)

var leadSubmissions = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "lead_submissions_total",
		Help: "Lead form submissions by kind and outcome.",
	},
	[]string{"kind", "outcome"},
)

func init() {
	prometheus.MustRegister(leadSubmissions)
}

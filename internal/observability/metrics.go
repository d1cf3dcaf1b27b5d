package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// EdgeRequests counts edge filter outcomes: skipped, redirected, passed, refresh_failed.
	EdgeRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kingdojo",
		Name:      "edge_requests_total",
		Help:      "Requests seen by the admin edge filter, by outcome.",
	}, []string{"outcome"})

	// GateDecisions counts privilege gate decisions: unauthenticated, authorized, denied, query_error.
	GateDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kingdojo",
		Name:      "privilege_gate_decisions_total",
		Help:      "Admin privilege gate decisions.",
	}, []string{"decision"})

	// LoginAttempts counts admin sign-in attempts by result.
	LoginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kingdojo",
		Name:      "admin_login_attempts_total",
		Help:      "Admin sign-in attempts.",
	}, []string{"result"})
)

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthAttempts records authentication attempts by result (success|failure).
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "talenthr_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
		[]string{"result"},
	)

	// ActiveSessions tracks active sessions (not expired/revoked).
	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "talenthr_active_sessions",
			Help: "Number of active sessions",
		},
	)

	// ClockEvents counts attendance clock events by kind (in|out).
	ClockEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "talenthr_clock_events_total",
			Help: "Total number of attendance clock events",
		},
		[]string{"kind"},
	)

	// InvitationEvents counts invitation lifecycle transitions.
	InvitationEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "talenthr_invitation_events_total",
			Help: "Total number of invitation lifecycle events",
		},
		[]string{"event"},
	)

	// RoleChecks counts role gate evaluations and their outcome (allowed|denied).
	RoleChecks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "talenthr_role_checks_total",
			Help: "Total number of role gate evaluations",
		},
		[]string{"result"},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "talenthr_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

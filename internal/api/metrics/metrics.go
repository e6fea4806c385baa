// Package metrics defines and registers all custom Prometheus metrics for the
// account service. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics register with the default Prometheus registry at import time via
// promauto; the /metrics endpoint exposes them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "account"

// RegistrationsTotal counts registration attempts.
// Label:
//   - result: "ok", "invalid", "conflict", "error"
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of registration attempts, by result.",
	},
	[]string{"result"},
)

// LoginsTotal counts login attempts.
// Label:
//   - result: "ok", "invalid", "not_found", "rejected", "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// LogoutsTotal counts completed logouts.
var LogoutsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logouts_total",
		Help:      "Total number of completed logouts.",
	},
)

// TokenVerificationsTotal counts access-token checks in the session middleware.
// Label:
//   - result: "ok", "missing", "invalid", "unknown_account"
var TokenVerificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_verifications_total",
		Help:      "Total number of session middleware token checks, by result.",
	},
	[]string{"result"},
)

// RegistrationDuration measures end-to-end registration latency, dominated by
// the media uploads and the bcrypt hash.
var RegistrationDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "registration_duration_seconds",
		Help:      "Duration of the registration flow including media uploads.",
		Buckets:   prometheus.DefBuckets, // .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10
	},
)

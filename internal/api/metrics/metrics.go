// Package metrics defines the custom Prometheus metrics of the TaskFlow API.
// It is the single source of truth for metric names, labels, and help strings.
//
// Metrics register themselves with the default registry on package load;
// HTTP request metrics come from echoprometheus and share the namespace.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const Namespace = "taskflow"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// AuthEventsTotal counts session lifecycle outcomes.
// Labels:
//   - action: "register", "login" or "refresh"
//   - result: "success" or the error kind (e.g. "unauthorized", "conflict")
var AuthEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "auth_events_total",
		Help:      "Total number of register, login and refresh attempts by result.",
	},
	[]string{"action", "result"},
)

// ── Task metrics ──────────────────────────────────────────────────────────────

// TaskMutationsTotal counts successful task writes.
// Label:
//   - operation: "create", "update" or "delete"
var TaskMutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "task_mutations_total",
		Help:      "Total number of successful task mutations, by operation.",
	},
	[]string{"operation"},
)

// OwnershipDeniedTotal counts requests rejected because the task belongs to
// another user.
var OwnershipDeniedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "ownership_denied_total",
		Help:      "Total number of task requests rejected by the ownership check.",
	},
)

// RateLimitedTotal counts requests rejected by the auth-route rate limiter.
// Label:
//   - route: the matched route path (e.g. "/auth/login")
var RateLimitedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "rate_limited_total",
		Help:      "Total number of requests rejected by the rate limiter.",
	},
	[]string{"route"},
)

// Package metrics defines and registers all custom Prometheus metrics for the
// SafeLedger dashboard. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "safeledger_dashboard"

// ── Ledger backend metrics ────────────────────────────────────────────────────

// BackendRequestsTotal counts calls to the ledger backend.
// Labels:
//   - endpoint: backend path template (e.g. "/postings/", "/companies/{id}/")
//   - method: HTTP method
//   - code: response status code, or "error" when no response arrived
var BackendRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "backend_requests_total",
		Help:      "Total number of requests sent to the ledger backend.",
	},
	[]string{"endpoint", "method", "code"},
)

// BackendRequestDuration measures ledger backend round trips.
// Label:
//   - endpoint: backend path template
var BackendRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "backend_request_duration_seconds",
		Help:      "Duration of ledger backend requests.",
		Buckets:   prometheus.DefBuckets, // .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10
	},
	[]string{"endpoint"},
)

// ── Posting snapshot cache ────────────────────────────────────────────────────

// PostingCacheTotal counts snapshot cache lookups.
// Label:
//   - result: "hit" or "miss"
var PostingCacheTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "posting_cache_total",
		Help:      "Total number of posting snapshot lookups, labelled by result (hit/miss).",
	},
	[]string{"result"},
)

// StaleResponsesTotal counts fetch results discarded because their scope was invalidated in flight.
var StaleResponsesTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stale_responses_total",
		Help:      "Total number of posting fetches discarded after their cache key was invalidated.",
	},
)

// ── Session and scope ─────────────────────────────────────────────────────────

// SessionResolutionsTotal counts session resolutions.
// Label:
//   - state: "authenticated" or "unauthenticated"
var SessionResolutionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_resolutions_total",
		Help:      "Total number of session resolutions against the ledger backend.",
	},
	[]string{"state"},
)

// ScopeChangesTotal counts persisted company scope changes.
// Label:
//   - source: "default", "user" or "reset"
var ScopeChangesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "scope_changes_total",
		Help:      "Total number of company scope changes.",
	},
	[]string{"source"},
)

// ── Mutations and audit ───────────────────────────────────────────────────────

// MutationsTotal counts create/update/delete operations proxied to the backend.
// Labels:
//   - resource: "company", "customer", "accountant", "posting", "model", "session"
//   - action: "create", "update", "delete", "retrain", "login", "logout"
//   - outcome: "success" or "failure"
var MutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "mutations_total",
		Help:      "Total number of mutations, by resource, action and outcome.",
	},
	[]string{"resource", "action", "outcome"},
)

// AuditQueueDepth tracks the number of audit entries waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var AuditQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Current number of audit entries pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// AuditDroppedTotal counts audit entries dropped because their worker queue was full.
var AuditDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_dropped_total",
		Help:      "Total number of audit entries dropped on a full queue.",
	},
)

// Package metrics registers the service's Prometheus collectors. It is
// the single source of truth for metric names and labels; everything is
// registered with the default registry at package init via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "ticketflow"

// IdentityResolutionsTotal counts identity resolutions by the fallback
// level that satisfied them.
// Labels:
//   - source: "memory", "store", "refresh", "fragments", "absent"
var IdentityResolutionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "identity_resolutions_total",
		Help:      "Identity resolutions, labelled by the fallback source that satisfied them.",
	},
	[]string{"source"},
)

// AccessDecisionsTotal counts route-group access decisions.
// Labels:
//   - group: the requested route group
//   - result: "admit" or "deny"
var AccessDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "access_decisions_total",
		Help:      "Route-group access decisions by group and result.",
	},
	[]string{"group", "result"},
)

// SyncCyclesTotal counts synchronization cycles.
// Labels:
//   - kind: the trigger kind ("periodic", "manual", ...)
//   - result: "ok", "error", "skipped"
var SyncCyclesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sync_cycles_total",
		Help:      "Notification synchronization cycles by trigger kind and result.",
	},
	[]string{"kind", "result"},
)

// ReconcileMergesTotal counts merge decisions inside the reconciliation
// engine.
// Label:
//   - result: "inserted" (new id) or "refreshed" (existing id, sticky read kept)
var ReconcileMergesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reconcile_merges_total",
		Help:      "Notification merge decisions by result (inserted/refreshed).",
	},
	[]string{"result"},
)

// FeedUnread tracks the unread count of the last committed feed snapshot.
var FeedUnread = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "feed_unread",
		Help:      "Unread notifications in the last committed feed snapshot.",
	},
)

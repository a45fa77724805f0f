// Package metrics defines and registers the custom Prometheus metrics of the
// sweet shop API. Metrics are registered with the default registry on import.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "sweetshop"

// ── Inventory metrics ─────────────────────────────────────────────────────────

// PurchasesTotal counts purchase attempts.
// Label:
//   - result: "ok", "insufficient_stock", "not_found" or "error"
var PurchasesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "purchases_total",
		Help:      "Total number of purchase attempts, by result.",
	},
	[]string{"result"},
)

// UnitsSoldTotal counts units removed from stock by successful purchases.
var UnitsSoldTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "units_sold_total",
		Help:      "Total number of units sold.",
	},
)

// RestocksTotal counts restock attempts.
// Label:
//   - result: "ok", "invalid_quantity", "not_found" or "error"
var RestocksTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "restocks_total",
		Help:      "Total number of restock attempts, by result.",
	},
	[]string{"result"},
)

// ── Auth metrics ──────────────────────────────────────────────────────────────

// AuthAttemptsTotal counts register and login calls.
// Labels:
//   - action: "register" or "login"
//   - result: "ok" or "failed"
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Total number of authentication attempts.",
	},
	[]string{"action", "result"},
)

// ── Movement dispatcher metrics ───────────────────────────────────────────────

// MovementQueueDepth tracks the number of movements waiting in each worker channel.
var MovementQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "movement_queue_depth",
		Help:      "Current number of stock movements pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// MovementProcessingDuration measures how long persisting one movement takes.
// Label:
//   - result: "ok" or "error"
var MovementProcessingDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "movement_processing_duration_seconds",
		Help:      "Duration of stock movement processing from dequeue to persistence.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"result"},
)

// MovementsDroppedTotal counts movements discarded because the dispatcher was stopped.
var MovementsDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "movements_dropped_total",
		Help:      "Total number of stock movements dropped after shutdown.",
	},
)

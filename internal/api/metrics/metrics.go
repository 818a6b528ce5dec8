// Package metrics defines and registers all custom Prometheus metrics for
// the identity system. It is the single source of truth for metric names,
// labels, and help strings.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "identity"

// LoginsTotal counts authentication attempts.
// Label:
//   - result: "success", "denied", or "throttled"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of authentication attempts, by result.",
	},
	[]string{"result"},
)

// RoleChangesTotal counts successfully applied role mutations.
// Label:
//   - next_role: the role granted (e.g. "ADMIN")
var RoleChangesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "role_changes_total",
		Help:      "Total number of successful role changes, by resulting role.",
	},
	[]string{"next_role"},
)

// PromotionTokensIssuedTotal counts minted promotion tokens.
var PromotionTokensIssuedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "promotion_tokens_issued_total",
		Help:      "Total number of promotion tokens issued.",
	},
)

// PromotionRedemptionsTotal counts redemption attempts.
// Label:
//   - result: "success" or "rejected"
var PromotionRedemptionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "promotion_redemptions_total",
		Help:      "Total number of promotion token redemption attempts, by result.",
	},
	[]string{"result"},
)

// SecurityEventsQueueDepth tracks pending events per dispatcher worker.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var SecurityEventsQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "security_events_queue_depth",
		Help:      "Current number of security events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// SecurityEventsDroppedTotal counts events discarded under backpressure.
var SecurityEventsDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "security_events_dropped_total",
		Help:      "Total number of security events dropped because a worker channel was full.",
	},
)

// Package metrics defines and registers the custom Prometheus metrics for
// the trading platform. It is the single source of truth for metric
// names, labels, and help strings; registration happens at import time
// via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "trading"

// ── Trade metrics ─────────────────────────────────────────────────────────────

// TradesPlacedTotal counts trades accepted into pending state.
// Label:
//   - direction: "high" or "low"
var TradesPlacedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "trades_placed_total",
		Help:      "Total number of trades placed, by direction.",
	},
	[]string{"direction"},
)

// TradesSettledTotal counts settlements that reached terminal state.
// Label:
//   - result: "win" or "loss"
var TradesSettledTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "trades_settled_total",
		Help:      "Total number of trades settled, by result.",
	},
	[]string{"result"},
)

// ── Ledger metrics ────────────────────────────────────────────────────────────

// LedgerRejectionsTotal counts ledger mutations rejected before any state
// change.
// Label:
//   - reason: "insufficient_funds" or "invalid_amount"
var LedgerRejectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ledger_rejections_total",
		Help:      "Total number of rejected ledger mutations, by reason.",
	},
	[]string{"reason"},
)

// WalletDepositsTotal counts successful deposits.
var WalletDepositsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "wallet_deposits_total",
		Help:      "Total number of successful wallet deposits.",
	},
)

// WalletWithdrawalsTotal counts successful withdrawals.
var WalletWithdrawalsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "wallet_withdrawals_total",
		Help:      "Total number of successful wallet withdrawals.",
	},
)

// ── Security metrics ──────────────────────────────────────────────────────────

// CSRFRejectionsTotal counts state-changing requests rejected by the
// double-submit CSRF check.
var CSRFRejectionsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "csrf_rejections_total",
		Help:      "Total number of requests rejected by the CSRF check.",
	},
)

// BootstrapAttemptsTotal counts admin bootstrap attempts.
// Label:
//   - outcome: "created", "exists", "rate_limited", "invalid"
var BootstrapAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bootstrap_attempts_total",
		Help:      "Total number of admin bootstrap attempts, by outcome.",
	},
	[]string{"outcome"},
)

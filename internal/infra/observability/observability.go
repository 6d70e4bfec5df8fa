// Package observability exposes Prometheus metrics for the economy engine.
// Metrics are registered via promauto at package init and served on /metrics
// when enabled in the daemon config.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ─── Request Lifecycle Metrics ──────────────────────────────────────────────

var (
	// RequestsSubmitted counts consumption request submissions, labeled by
	// whether the request was priced as extra.
	RequestsSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pufflog_requests_submitted_total",
		Help: "Consumption requests submitted, by extra flag.",
	}, []string{"extra"})

	// RequestsDecided counts admin decisions on consumption requests.
	RequestsDecided = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pufflog_requests_decided_total",
		Help: "Consumption requests approved or rejected.",
	}, []string{"decision"})

	// RedemptionsDecided counts admin decisions on reward redemptions.
	RedemptionsDecided = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pufflog_redemptions_decided_total",
		Help: "Reward redemptions validated or rejected.",
	}, []string{"decision"})

	// SubmissionsRejected counts submissions refused before persisting,
	// labeled by reason (insufficient_xp, invalid_input, blocked).
	SubmissionsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pufflog_submissions_rejected_total",
		Help: "Submissions refused before any mutation, by reason.",
	}, []string{"reason"})
)

// ─── Ledger Metrics ─────────────────────────────────────────────────────────

var (
	// XpDebited counts XP debited from user balances, by entry kind.
	XpDebited = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pufflog_xp_debited_total",
		Help: "XP debited, by ledger entry kind.",
	}, []string{"kind"})

	// XpCredited counts XP credited to user balances, by entry kind.
	XpCredited = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pufflog_xp_credited_total",
		Help: "XP credited, by ledger entry kind.",
	}, []string{"kind"})

	// ExcessPenalties counts excess penalties actually applied (duplicates
	// suppressed by the uniqueness guard are not counted).
	ExcessPenalties = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pufflog_excess_penalties_total",
		Help: "Excess penalty entries created.",
	})

	// MissionsFinalized counts mission instances finalized, by outcome.
	MissionsFinalized = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pufflog_missions_finalized_total",
		Help: "Mission instances finalized, by outcome.",
	}, []string{"outcome"})
)

// RecordLedgerDelta routes a signed delta to the right counter.
func RecordLedgerDelta(kind string, delta int64) {
	if delta < 0 {
		XpDebited.WithLabelValues(kind).Add(float64(-delta))
	} else if delta > 0 {
		XpCredited.WithLabelValues(kind).Add(float64(delta))
	}
}

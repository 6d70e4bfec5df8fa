package domain

import "time"

// ─── XP Ledger Types ────────────────────────────────────────────────────────
// The ledger is the single source of truth for a user's XP balance.
// Entries are append-only and immutable; a reversal is a NEW entry with a
// semantically inverse kind carrying the same reference id as the original.
// Balance is always recomputed as SUM(delta) — never cached in a column.

// EntryKind is the closed set of economic reasons an entry can exist.
type EntryKind string

const (
	KindSubmissionDebit  EntryKind = "submission_debit" // extra request priced at submit time
	KindPurchaseDebit    EntryKind = "purchase_debit"   // legacy debit kind, still refundable
	KindRefundCig        EntryKind = "refund_cig"       // reversal of a request debit
	KindRewardDebit      EntryKind = "reward_debit"     // redemption cost at creation
	KindRefundReward     EntryKind = "refund_reward"    // reversal of a redemption debit
	KindExcessPenalty    EntryKind = "excess_penalty"   // once-per-day over-threshold fine
	KindMissionAward     EntryKind = "mission_award"    // completed mission payout
	KindManualAdjustment EntryKind = "manual_adjustment"
	KindDailyAllowance   EntryKind = "daily_allowance"
	KindWelcomeBonus     EntryKind = "welcome_bonus"
)

// EntryKinds lists every valid kind, for validation and exhaustiveness checks.
func EntryKinds() []EntryKind {
	return []EntryKind{
		KindSubmissionDebit, KindPurchaseDebit, KindRefundCig, KindRewardDebit,
		KindRefundReward, KindExcessPenalty, KindMissionAward,
		KindManualAdjustment, KindDailyAllowance, KindWelcomeBonus,
	}
}

// RequestDebitKinds are the kinds a refund-on-reject looks for when searching
// for a prior debit tied to a consumption request.
func RequestDebitKinds() []EntryKind {
	return []EntryKind{KindSubmissionDebit, KindPurchaseDebit}
}

// LedgerEntry is a single signed XP transaction. Immutable once created.
type LedgerEntry struct {
	ID          int64     `json:"id"`
	UserID      string    `json:"user_id"`
	Delta       int64     `json:"delta"`
	Kind        EntryKind `json:"kind"`
	ReferenceID string    `json:"reference_id,omitempty"`
	Note        string    `json:"note,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

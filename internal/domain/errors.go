package domain

import (
	"errors"
	"fmt"
)

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors are pure — no infrastructure dependency. All validation runs
// before any mutation, so none of these ever leaves partial state behind.

var (
	// ErrUnauthorized: no session, or the caller's role does not allow the
	// operation (member touching another member's entity, non-admin on an
	// admin endpoint).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound: entity id or coupon code resolved to nothing.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyProcessed: transition attempted on a non-PENDING entity.
	// Not transient — the caller should not retry.
	ErrAlreadyProcessed = errors.New("already processed")

	// ErrInvalidInput: malformed amount, day string, or id. Rejected before
	// any mutation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUserNotFound: ledger append against a nonexistent user. An
	// integrity error — should not occur in normal flow.
	ErrUserNotFound = errors.New("user not found")

	// ErrUserBlocked: a blocked user attempted to submit.
	ErrUserBlocked = errors.New("user is blocked")

	// ErrRewardInactive: redemption attempted against an inactive reward.
	ErrRewardInactive = errors.New("reward is not active")

	// ErrRewardDailyLimit: the reward's per-day redemption cap was reached.
	ErrRewardDailyLimit = errors.New("reward daily limit reached")
)

// InsufficientXpError reports a balance below the required cost at submission
// time, with the shortfall so callers can show it to the user.
type InsufficientXpError struct {
	Required  int64
	Balance   int64
	Shortfall int64
}

func (e *InsufficientXpError) Error() string {
	return fmt.Sprintf("insufficient xp: need %d, have %d (short %d)", e.Required, e.Balance, e.Shortfall)
}

// NewInsufficientXp builds the error from the required cost and the balance.
func NewInsufficientXp(required, balance int64) *InsufficientXpError {
	return &InsufficientXpError{Required: required, Balance: balance, Shortfall: required - balance}
}

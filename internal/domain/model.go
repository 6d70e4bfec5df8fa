// Package domain contains pure business types with ZERO infrastructure imports.
// This is the innermost ring of clean architecture — it depends on nothing.
package domain

import "time"

// ─── Users ──────────────────────────────────────────────────────────────────

// Role controls access to admin operations.
type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleMember Role = "MEMBER"
)

// User is an account in the tracker. Users are provisioned once and never
// deleted in normal operation; everything else hangs off a user id.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Role         Role      `json:"role"`
	PasswordHash string    `json:"-"`
	Blocked      bool      `json:"blocked"`
	CreatedAt    time.Time `json:"created_at"`
}

// IsAdmin reports whether the user may perform admin operations.
func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// ─── Consumption Requests ───────────────────────────────────────────────────

// RequestStatus is the lifecycle state of a consumption request.
// PENDING is the only non-terminal state.
type RequestStatus string

const (
	RequestPending  RequestStatus = "PENDING"
	RequestApproved RequestStatus = "APPROVED"
	RequestRejected RequestStatus = "REJECTED"
)

// ConsumptionRequest is one ask to consume a quantity of the tracked habit.
// Amount and Day are immutable after creation; only Status (and ApprovedAt)
// ever changes, and only PENDING → APPROVED|REJECTED.
type ConsumptionRequest struct {
	ID              string        `json:"id"`
	UserID          string        `json:"user_id"`
	Amount          float64       `json:"amount"` // 0.5-unit granularity
	ReasonPrimary   string        `json:"reason_primary"`
	ReasonSecondary string        `json:"reason_secondary,omitempty"`
	Status          RequestStatus `json:"status"`
	Day             string        `json:"day"` // YYYY-MM-DD, civil timezone
	CouponCode      string        `json:"coupon_code"`
	CreatedAt       time.Time     `json:"created_at"`
	ApprovedAt      *time.Time    `json:"approved_at,omitempty"`
}

// ValidAmount reports whether q is a positive multiple of half a unit.
// Half units are exact in binary floating point, so the comparison is safe.
func ValidAmount(q float64) bool {
	if q <= 0 {
		return false
	}
	doubled := q * 2
	return doubled == float64(int64(doubled))
}

// ─── Reward Redemptions ─────────────────────────────────────────────────────

// RedemptionStatus mirrors RequestStatus for the reward flow.
type RedemptionStatus string

const (
	RedemptionPending   RedemptionStatus = "PENDING"
	RedemptionValidated RedemptionStatus = "VALIDATED"
	RedemptionRejected  RedemptionStatus = "REJECTED"
)

// Reward is a catalog entry purchasable with XP.
type Reward struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	CostXp     int64  `json:"cost_xp"`
	DailyLimit int    `json:"daily_limit"` // max redemptions per user per day, 0 = unlimited
	Active     bool   `json:"active"`
}

// RewardRedemption is one claim of a catalog reward. The XP debit happens
// unconditionally at creation; rejection refunds it in full.
type RewardRedemption struct {
	ID          string           `json:"id"`
	UserID      string           `json:"user_id"`
	RewardID    string           `json:"reward_id"`
	Status      RedemptionStatus `json:"status"`
	Day         string           `json:"day"`
	CouponCode  string           `json:"coupon_code"`
	CreatedAt   time.Time        `json:"created_at"`
	ValidatedAt *time.Time       `json:"validated_at,omitempty"`
}

// ─── Daily Limits & Economy Config ──────────────────────────────────────────

// DayLimitOverride pins the habit budget for a single day. Absence of a row
// means "use EconomyConfig.DefaultDailyLimit".
type DayLimitOverride struct {
	Day           string  `json:"day"`
	LimitQuantity float64 `json:"limit_quantity"`
}

// EconomyConfig holds the tunable economy parameters. Exactly one active row
// exists in the store; when none does, DefaultEconomyConfig is synthesized.
type EconomyConfig struct {
	DefaultDailyLimit     float64 `json:"default_daily_limit"`
	ExtraCostHalfUnit     int64   `json:"extra_cost_half_unit"`
	ExtraCostFullUnit     int64   `json:"extra_cost_full_unit"`
	WeeklyReductionPct    float64 `json:"weekly_reduction_pct"`
	DailyAllowanceEnabled bool    `json:"daily_allowance_enabled"`
	XpPerUnit             int64   `json:"xp_per_unit"`
	LinearPricingEnabled  bool    `json:"linear_pricing_enabled"`
	RatePerUnit           int64   `json:"rate_per_unit"`
	ExtraRatePerUnit      int64   `json:"extra_rate_per_unit"`
	ExcessThreshold       float64 `json:"excess_threshold"`
	ExcessPenaltyXp       int64   `json:"excess_penalty_xp"`
}

// DefaultEconomyConfig returns the hard-coded fallback used when no config
// row has been written yet.
func DefaultEconomyConfig() EconomyConfig {
	return EconomyConfig{
		DefaultDailyLimit:     3.5,
		ExtraCostHalfUnit:     12,
		ExtraCostFullUnit:     20,
		WeeklyReductionPct:    5,
		DailyAllowanceEnabled: false,
		XpPerUnit:             4,
		LinearPricingEnabled:  false,
		RatePerUnit:           0,
		ExtraRatePerUnit:      10,
		ExcessThreshold:       3.5,
		ExcessPenaltyXp:       20,
	}
}

// ─── Missions ───────────────────────────────────────────────────────────────

// MissionKind is the recurrence of a mission.
type MissionKind string

const (
	MissionDaily  MissionKind = "DAILY"
	MissionWeekly MissionKind = "WEEKLY"
)

// ConditionType selects how mission progress is computed.
type ConditionType string

const (
	// ConditionWithinLimit: binary, the day's approved total stayed within
	// the resolved limit.
	ConditionWithinLimit ConditionType = "within_limit"
	// ConditionBelowThreshold: binary, the day's approved total stayed
	// below the mission's TargetValue.
	ConditionBelowThreshold ConditionType = "below_threshold"
	// ConditionNoExtraDebit: binary, no extra debit and no excess penalty
	// hit the ledger that day.
	ConditionNoExtraDebit ConditionType = "no_extra_debit"
	// ConditionDaysWithinLimit: weekly count of days whose approved total
	// stayed within the limit. Days after today are excluded, not failed.
	ConditionDaysWithinLimit ConditionType = "days_within_limit"
)

// Mission is a static catalog rule. Instances are minted per user per period.
type Mission struct {
	ID            string        `json:"id"`
	Title         string        `json:"title"`
	Kind          MissionKind   `json:"kind"`
	XpReward      int64         `json:"xp_reward"`
	ConditionType ConditionType `json:"condition_type"`
	TargetValue   float64       `json:"target_value,omitempty"`
	Active        bool          `json:"active"`
}

// MissionStatus is the lifecycle state of a mission instance.
type MissionStatus string

const (
	MissionInProgress MissionStatus = "IN_PROGRESS"
	MissionCompleted  MissionStatus = "COMPLETED"
	MissionFailed     MissionStatus = "FAILED"
)

// UserMissionInstance tracks one user's run at a mission for one period.
// At most one exists per (user, mission, periodStart). XpAwarded is a
// permanent guard: once true it never resets, even for FAILED outcomes.
type UserMissionInstance struct {
	ID          string        `json:"id"`
	UserID      string        `json:"user_id"`
	MissionID   string        `json:"mission_id"`
	PeriodStart string        `json:"period_start"` // day string
	PeriodEnd   string        `json:"period_end"`   // day string, inclusive
	Status      MissionStatus `json:"status"`
	XpAwarded   bool          `json:"xp_awarded"`
	CompletedAt *time.Time    `json:"completed_at,omitempty"`
}

// MissionProgress pairs live progress with the mission target.
type MissionProgress struct {
	Progress float64 `json:"progress"`
	Target   float64 `json:"target"`
}

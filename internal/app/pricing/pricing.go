// Package pricing implements the daily limit resolver and the XP pricing
// engine. Pricing splits a requested quantity into within-budget and extra
// portions against the day's shared consumption total and prices the extra
// portion.
package pricing

import (
	"math"

	"github.com/pufflog/pufflog/internal/domain"
)

// Quote is the result of pricing one requested amount against a day.
type Quote struct {
	IsExtra      bool    `json:"is_extra"`
	ExtraAmount  float64 `json:"extra_amount"`
	WithinBudget float64 `json:"within_budget"`
	XpCost       int64   `json:"xp_cost"`
}

// Engine prices requests. It reads consumption totals and limit overrides
// from the store; the economy config is passed explicitly per call rather
// than read as ambient state.
type Engine struct {
	requests domain.RequestStore
	limits   domain.LimitStore
}

// NewEngine creates a pricing engine over the given stores.
func NewEngine(requests domain.RequestStore, limits domain.LimitStore) *Engine {
	return &Engine{requests: requests, limits: limits}
}

// LimitFor resolves the habit budget for a day: the explicit per-day
// override when present, else the config default.
func (e *Engine) LimitFor(day string, cfg domain.EconomyConfig) (float64, error) {
	override, err := e.limits.GetDayLimit(day)
	if err != nil {
		return 0, err
	}
	if override != nil {
		return override.LimitQuantity, nil
	}
	return cfg.DefaultDailyLimit, nil
}

// Price computes the quote for a requested amount on a day. Only APPROVED
// requests count toward consumption; PENDING ones reserve balance via their
// submission-time debit instead.
func (e *Engine) Price(requested float64, day string, cfg domain.EconomyConfig) (Quote, error) {
	consumed, err := e.requests.ApprovedTotalForDay(day)
	if err != nil {
		return Quote{}, err
	}
	limit, err := e.LimitFor(day, cfg)
	if err != nil {
		return Quote{}, err
	}
	return Compute(requested, consumed, limit, cfg), nil
}

// Compute is the pure pricing rule.
//
// The flat-tier mode charges a single surcharge chosen by the magnitude of
// the extra portion: a full-unit rate at >= 1 unit extra, a half-unit rate
// below that. The tier does NOT scale with how many units are extra —
// requesting 3 units when 1 is extra costs the same surcharge as requesting
// 1 unit when 1 is extra. That is the observed flat-surcharge behavior and
// is kept as-is; see DESIGN.md.
//
// The linear mode (feature toggle) prices each portion per unit, rounding
// each sub-amount to the nearest integer before summing. Rounding per
// portion gives different totals than rounding once and existing balances
// depend on it.
func Compute(requested, consumedSoFar, limit float64, cfg domain.EconomyConfig) Quote {
	projected := consumedSoFar + requested
	if projected <= limit {
		if cfg.LinearPricingEnabled {
			return Quote{
				WithinBudget: requested,
				XpCost:       roundXp(requested * float64(cfg.RatePerUnit)),
			}
		}
		return Quote{WithinBudget: requested}
	}

	extra := math.Min(requested, projected-limit)
	within := requested - extra

	q := Quote{
		IsExtra:      true,
		ExtraAmount:  extra,
		WithinBudget: within,
	}

	if cfg.LinearPricingEnabled {
		q.XpCost = roundXp(within*float64(cfg.RatePerUnit)) + roundXp(extra*float64(cfg.ExtraRatePerUnit))
		return q
	}

	switch {
	case extra >= 1.0:
		q.XpCost = cfg.ExtraCostFullUnit
	case extra >= 0.5:
		q.XpCost = cfg.ExtraCostHalfUnit
	}
	return q
}

func roundXp(v float64) int64 {
	return int64(math.Round(v))
}

package sqlite

import (
	"database/sql"
	"time"

	"github.com/pufflog/pufflog/internal/domain"
)

var (
	_ domain.LimitStore  = (*DB)(nil)
	_ domain.ConfigStore = (*DB)(nil)
)

// ─── Day Limit Operations ───────────────────────────────────────────────────

// GetDayLimit returns the override for a day, or (nil, nil) when absent.
func (db *DB) GetDayLimit(day string) (*domain.DayLimitOverride, error) {
	var o domain.DayLimitOverride
	err := db.db.QueryRow(`
		SELECT day, limit_quantity FROM day_limits WHERE day = ?
	`, day).Scan(&o.Day, &o.LimitQuantity)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// SetDayLimit upserts the override for a day.
func (db *DB) SetDayLimit(o domain.DayLimitOverride) error {
	_, err := db.db.Exec(`
		INSERT INTO day_limits (day, limit_quantity) VALUES (?, ?)
		ON CONFLICT(day) DO UPDATE SET limit_quantity = excluded.limit_quantity
	`, o.Day, o.LimitQuantity)
	return err
}

// ─── Economy Config Operations ──────────────────────────────────────────────
// A single row with id = 1 holds the active configuration.

// GetConfig returns the active config, or (nil, nil) when none was saved yet.
func (db *DB) GetConfig() (*domain.EconomyConfig, error) {
	var c domain.EconomyConfig
	var allowance, linear int
	err := db.db.QueryRow(`
		SELECT default_daily_limit, extra_cost_half_unit, extra_cost_full_unit,
		       weekly_reduction_pct, daily_allowance_enabled, xp_per_unit,
		       linear_pricing_enabled, rate_per_unit, extra_rate_per_unit,
		       excess_threshold, excess_penalty_xp
		FROM economy_config WHERE id = 1
	`).Scan(&c.DefaultDailyLimit, &c.ExtraCostHalfUnit, &c.ExtraCostFullUnit,
		&c.WeeklyReductionPct, &allowance, &c.XpPerUnit,
		&linear, &c.RatePerUnit, &c.ExtraRatePerUnit,
		&c.ExcessThreshold, &c.ExcessPenaltyXp)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	c.DailyAllowanceEnabled = allowance == 1
	c.LinearPricingEnabled = linear == 1
	return &c, nil
}

// SaveConfig upserts the singleton config row.
func (db *DB) SaveConfig(c domain.EconomyConfig) error {
	_, err := db.db.Exec(`
		INSERT INTO economy_config (
			id, default_daily_limit, extra_cost_half_unit, extra_cost_full_unit,
			weekly_reduction_pct, daily_allowance_enabled, xp_per_unit,
			linear_pricing_enabled, rate_per_unit, extra_rate_per_unit,
			excess_threshold, excess_penalty_xp, updated_at
		) VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			default_daily_limit     = excluded.default_daily_limit,
			extra_cost_half_unit    = excluded.extra_cost_half_unit,
			extra_cost_full_unit    = excluded.extra_cost_full_unit,
			weekly_reduction_pct    = excluded.weekly_reduction_pct,
			daily_allowance_enabled = excluded.daily_allowance_enabled,
			xp_per_unit             = excluded.xp_per_unit,
			linear_pricing_enabled  = excluded.linear_pricing_enabled,
			rate_per_unit           = excluded.rate_per_unit,
			extra_rate_per_unit     = excluded.extra_rate_per_unit,
			excess_threshold        = excluded.excess_threshold,
			excess_penalty_xp       = excluded.excess_penalty_xp,
			updated_at              = excluded.updated_at
	`, c.DefaultDailyLimit, c.ExtraCostHalfUnit, c.ExtraCostFullUnit,
		c.WeeklyReductionPct, boolToInt(c.DailyAllowanceEnabled), c.XpPerUnit,
		boolToInt(c.LinearPricingEnabled), c.RatePerUnit, c.ExtraRatePerUnit,
		c.ExcessThreshold, c.ExcessPenaltyXp, time.Now().Format(timeFormat))
	return err
}

package pricing

import (
	"testing"

	"github.com/pufflog/pufflog/internal/domain"
)

func testConfig() domain.EconomyConfig {
	cfg := domain.DefaultEconomyConfig()
	cfg.DefaultDailyLimit = 3.5
	cfg.ExtraCostHalfUnit = 12
	cfg.ExtraCostFullUnit = 20
	return cfg
}

// ─── Flat Tier Tests ────────────────────────────────────────────────────────

func TestCompute_FlatTier(t *testing.T) {
	cfg := testConfig()

	tests := []struct {
		name      string
		requested float64
		consumed  float64
		limit     float64
		wantExtra bool
		wantAmt   float64
		wantCost  int64
	}{
		{"within budget from zero", 0.5, 0, 3.5, false, 0, 0},
		{"exactly at limit", 0.5, 3.0, 3.5, false, 0, 0},
		{"half unit over", 1.0, 3.0, 3.5, true, 0.5, 12},
		{"full unit over", 1.0, 3.5, 3.5, true, 1.0, 20},
		{"partially extra", 2.0, 3.0, 3.5, true, 1.5, 20},
		{"flat surcharge regardless of excess size", 3.0, 3.5, 3.5, true, 3.0, 20},
		{"budget already blown, half request", 0.5, 5.0, 3.5, true, 0.5, 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := Compute(tt.requested, tt.consumed, tt.limit, cfg)
			if q.IsExtra != tt.wantExtra {
				t.Errorf("IsExtra = %v, want %v", q.IsExtra, tt.wantExtra)
			}
			if q.ExtraAmount != tt.wantAmt {
				t.Errorf("ExtraAmount = %v, want %v", q.ExtraAmount, tt.wantAmt)
			}
			if q.XpCost != tt.wantCost {
				t.Errorf("XpCost = %d, want %d", q.XpCost, tt.wantCost)
			}
			if q.WithinBudget != tt.requested-tt.wantAmt {
				t.Errorf("WithinBudget = %v, want %v", q.WithinBudget, tt.requested-tt.wantAmt)
			}
		})
	}
}

func TestCompute_SpecScenario(t *testing.T) {
	// Day total 3.0, limit 3.5, request 1.0: projected 4.0 > 3.5,
	// extra = min(1.0, 0.5) = 0.5, half-unit tier, cost 12.
	q := Compute(1.0, 3.0, 3.5, testConfig())
	if !q.IsExtra || q.ExtraAmount != 0.5 || q.XpCost != 12 {
		t.Errorf("got %+v, want extra 0.5 at cost 12", q)
	}
}

func TestCompute_MonotonicInAmount(t *testing.T) {
	cfg := testConfig()
	var prev int64 = -1
	for amt := 0.5; amt <= 6.0; amt += 0.5 {
		q := Compute(amt, 2.0, 3.5, cfg)
		if q.XpCost < prev {
			t.Errorf("XpCost not monotone: amount %v cost %d < previous %d", amt, q.XpCost, prev)
		}
		prev = q.XpCost
	}
}

// ─── Linear Mode Tests ──────────────────────────────────────────────────────

func TestCompute_LinearMode(t *testing.T) {
	cfg := testConfig()
	cfg.LinearPricingEnabled = true
	cfg.RatePerUnit = 3
	cfg.ExtraRatePerUnit = 10

	// 1.5 within (4.5 XP → rounds to 5... round(1.5*3)=round(4.5)=5 with
	// math.Round half-away-from-zero) + 0.5 extra (round(5)=5) = 10.
	q := Compute(2.0, 2.0, 3.5, cfg)
	if q.XpCost != 10 {
		t.Errorf("XpCost = %d, want 10", q.XpCost)
	}
	if q.ExtraAmount != 0.5 || q.WithinBudget != 1.5 {
		t.Errorf("split = %v/%v, want 1.5/0.5", q.WithinBudget, q.ExtraAmount)
	}
}

func TestCompute_LinearRoundsPerPortionNotTotal(t *testing.T) {
	cfg := testConfig()
	cfg.LinearPricingEnabled = true
	cfg.RatePerUnit = 1
	cfg.ExtraRatePerUnit = 1

	// 0.5 within + 0.5 extra at rate 1: per-portion rounding gives
	// round(0.5)+round(0.5) = 1+1 = 2, while rounding the total once would
	// give round(1.0) = 1. The per-portion result is the compatible one.
	q := Compute(1.0, 3.0, 3.5, cfg)
	if q.XpCost != 2 {
		t.Errorf("XpCost = %d, want 2 (per-portion rounding)", q.XpCost)
	}
}

func TestCompute_LinearWithinBudgetCharges(t *testing.T) {
	cfg := testConfig()
	cfg.LinearPricingEnabled = true
	cfg.RatePerUnit = 4

	q := Compute(1.0, 0, 3.5, cfg)
	if q.IsExtra {
		t.Error("within-budget request should not be extra")
	}
	if q.XpCost != 4 {
		t.Errorf("XpCost = %d, want 4", q.XpCost)
	}
}

// ─── Limit Resolver Tests ───────────────────────────────────────────────────

type fakeLimitStore struct {
	overrides map[string]float64
}

func (f *fakeLimitStore) GetDayLimit(day string) (*domain.DayLimitOverride, error) {
	if v, ok := f.overrides[day]; ok {
		return &domain.DayLimitOverride{Day: day, LimitQuantity: v}, nil
	}
	return nil, nil
}

func (f *fakeLimitStore) SetDayLimit(o domain.DayLimitOverride) error {
	f.overrides[o.Day] = o.LimitQuantity
	return nil
}

type fakeRequestTotals struct {
	domain.RequestStore
	totals map[string]float64
}

func (f *fakeRequestTotals) ApprovedTotalForDay(day string) (float64, error) {
	return f.totals[day], nil
}

func TestLimitFor(t *testing.T) {
	limits := &fakeLimitStore{overrides: map[string]float64{"2026-03-11": 2.0}}
	e := NewEngine(nil, limits)
	cfg := testConfig()

	got, err := e.LimitFor("2026-03-11", cfg)
	if err != nil {
		t.Fatal(err)
	}
	if got != 2.0 {
		t.Errorf("override day limit = %v, want 2.0", got)
	}

	got, err = e.LimitFor("2026-03-12", cfg)
	if err != nil {
		t.Fatal(err)
	}
	if got != 3.5 {
		t.Errorf("default day limit = %v, want 3.5", got)
	}
}

func TestPrice_UsesApprovedTotalAndOverride(t *testing.T) {
	limits := &fakeLimitStore{overrides: map[string]float64{}}
	requests := &fakeRequestTotals{totals: map[string]float64{"2026-03-11": 3.0}}
	e := NewEngine(requests, limits)

	q, err := e.Price(1.0, "2026-03-11", testConfig())
	if err != nil {
		t.Fatal(err)
	}
	if !q.IsExtra || q.XpCost != 12 {
		t.Errorf("got %+v, want extra at cost 12", q)
	}
}

package domain

import (
	"errors"
	"strings"
	"testing"
)

// ─── Amount Validation Tests ────────────────────────────────────────────────

func TestValidAmount(t *testing.T) {
	tests := []struct {
		name string
		q    float64
		want bool
	}{
		{"half unit", 0.5, true},
		{"full unit", 1.0, true},
		{"one and a half", 1.5, true},
		{"zero", 0, false},
		{"negative", -0.5, false},
		{"quarter unit", 0.25, false},
		{"odd decimal", 0.7, false},
		{"large valid", 10.5, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidAmount(tt.q); got != tt.want {
				t.Errorf("ValidAmount(%v) = %v, want %v", tt.q, got, tt.want)
			}
		})
	}
}

// ─── Entry Kind Tests ───────────────────────────────────────────────────────

func TestEntryKindsUnique(t *testing.T) {
	seen := make(map[EntryKind]bool)
	for _, k := range EntryKinds() {
		if seen[k] {
			t.Errorf("duplicate EntryKind: %s", k)
		}
		seen[k] = true
	}
	if len(seen) != 10 {
		t.Errorf("expected 10 unique EntryKinds, got %d", len(seen))
	}
}

func TestRequestDebitKinds(t *testing.T) {
	kinds := RequestDebitKinds()
	if len(kinds) != 2 {
		t.Fatalf("expected 2 refundable debit kinds, got %d", len(kinds))
	}
	if kinds[0] != KindSubmissionDebit || kinds[1] != KindPurchaseDebit {
		t.Errorf("unexpected debit kinds: %v", kinds)
	}
}

// ─── Config Tests ───────────────────────────────────────────────────────────

func TestDefaultEconomyConfig(t *testing.T) {
	cfg := DefaultEconomyConfig()

	if cfg.DefaultDailyLimit != 3.5 {
		t.Errorf("DefaultDailyLimit = %v, want 3.5", cfg.DefaultDailyLimit)
	}
	if cfg.ExtraCostHalfUnit != 12 {
		t.Errorf("ExtraCostHalfUnit = %d, want 12", cfg.ExtraCostHalfUnit)
	}
	if cfg.ExtraCostFullUnit != 20 {
		t.Errorf("ExtraCostFullUnit = %d, want 20", cfg.ExtraCostFullUnit)
	}
	if cfg.ExcessPenaltyXp != 20 {
		t.Errorf("ExcessPenaltyXp = %d, want 20", cfg.ExcessPenaltyXp)
	}
	if cfg.LinearPricingEnabled {
		t.Error("LinearPricingEnabled should default to false")
	}
}

// ─── Error Tests ────────────────────────────────────────────────────────────

func TestInsufficientXpError(t *testing.T) {
	err := NewInsufficientXp(12, 10)
	if err.Shortfall != 2 {
		t.Errorf("Shortfall = %d, want 2", err.Shortfall)
	}

	var target *InsufficientXpError
	if !errors.As(error(err), &target) {
		t.Error("errors.As should match *InsufficientXpError")
	}
	if !strings.Contains(err.Error(), "short 2") {
		t.Errorf("Error() = %q, want shortfall in message", err.Error())
	}
}

func TestSentinelErrors(t *testing.T) {
	sentinels := []struct {
		name string
		err  error
	}{
		{"ErrUnauthorized", ErrUnauthorized},
		{"ErrNotFound", ErrNotFound},
		{"ErrAlreadyProcessed", ErrAlreadyProcessed},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrUserNotFound", ErrUserNotFound},
		{"ErrUserBlocked", ErrUserBlocked},
	}

	for _, tt := range sentinels {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err == nil {
				t.Errorf("%s is nil", tt.name)
			}
			if tt.err.Error() == "" {
				t.Errorf("%s.Error() is empty", tt.name)
			}
		})
	}
}

// ─── Coupon Code Tests ──────────────────────────────────────────────────────

func TestNewCouponCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code := NewCouponCode()
		if len(code) != CouponLength {
			t.Fatalf("code %q has length %d, want %d", code, len(code), CouponLength)
		}
		for _, c := range code {
			if !strings.ContainsRune(couponAlphabet, c) {
				t.Fatalf("code %q contains %q outside the alphabet", code, c)
			}
		}
		seen[code] = true
	}
	// 100 draws from a 31^6 space should not collide
	if len(seen) < 99 {
		t.Errorf("too many collisions: %d unique of 100", len(seen))
	}
}

func TestCouponAlphabetUnambiguous(t *testing.T) {
	for _, banned := range "01OIL" {
		if strings.ContainsRune(couponAlphabet, banned) {
			t.Errorf("alphabet contains confusable character %q", banned)
		}
	}
}

func TestFormatCouponCode(t *testing.T) {
	if got := FormatCouponCode("ABC234"); got != "ABC-234" {
		t.Errorf("FormatCouponCode = %q, want ABC-234", got)
	}
	// Unexpected lengths pass through untouched
	if got := FormatCouponCode("AB"); got != "AB" {
		t.Errorf("FormatCouponCode(short) = %q, want AB", got)
	}
}

func TestNormalizeCouponCode(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"abc-234", "ABC234"},
		{" ABC 234 ", "ABC234"},
		{"ABC234", "ABC234"},
	}
	for _, tt := range tests {
		if got := NormalizeCouponCode(tt.input); got != tt.want {
			t.Errorf("NormalizeCouponCode(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

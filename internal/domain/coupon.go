package domain

import (
	"crypto/rand"
	"strings"
)

// ─── Coupon Codes ───────────────────────────────────────────────────────────
// Every request and redemption carries a short code for the in-person
// approval flow: the member shows the code, the admin scans or types it.
// A code must resolve to exactly one entity across both kinds.

// couponAlphabet excludes visually confusable characters (0/O, 1/I/L, etc.)
const couponAlphabet = "23456789ABCDEFGHJKMNPQRSTUVWXYZ"

// CouponLength is the number of alphabet characters in a code.
const CouponLength = 6

// NewCouponCode generates a random 6-character coupon code.
func NewCouponCode() string {
	buf := make([]byte, CouponLength)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms
		panic(err)
	}
	out := make([]byte, CouponLength)
	for i, b := range buf {
		out[i] = couponAlphabet[int(b)%len(couponAlphabet)]
	}
	return string(out)
}

// FormatCouponCode renders a code for display, grouped 3+3 ("ABC-DEF").
func FormatCouponCode(code string) string {
	if len(code) != CouponLength {
		return code
	}
	return code[:3] + "-" + code[3:]
}

// NormalizeCouponCode strips grouping and whitespace and uppercases, so
// scanned or typed input matches stored codes.
func NormalizeCouponCode(input string) string {
	s := strings.ToUpper(strings.TrimSpace(input))
	s = strings.ReplaceAll(s, "-", "")
	s = strings.ReplaceAll(s, " ", "")
	return s
}

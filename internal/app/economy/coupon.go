package economy

import (
	"errors"

	"github.com/pufflog/pufflog/internal/domain"
)

// ─── Coupon Resolution ──────────────────────────────────────────────────────
// A coupon code addresses exactly one pending item across both entity
// kinds. The in-person flow: the member shows the grouped code, the admin
// types or scans it and lands on the approval screen.

// CouponResult is the entity a code resolved to. Exactly one field is set.
type CouponResult struct {
	Request    *domain.ConsumptionRequest `json:"request,omitempty"`
	Redemption *domain.RewardRedemption   `json:"redemption,omitempty"`
}

// ResolveCoupon normalizes the code and looks it up across requests and
// redemptions. The caller must own the resolved entity or be an admin.
func (s *Service) ResolveCoupon(actor *domain.User, code string) (*CouponResult, error) {
	if actor == nil {
		return nil, domain.ErrUnauthorized
	}
	normalized := domain.NormalizeCouponCode(code)
	if len(normalized) != domain.CouponLength {
		return nil, domain.ErrInvalidInput
	}

	req, err := s.requests.GetRequestByCoupon(normalized)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if req != nil {
		if !actor.IsAdmin() && actor.ID != req.UserID {
			return nil, domain.ErrUnauthorized
		}
		return &CouponResult{Request: req}, nil
	}

	red, err := s.redemptions.GetRedemptionByCoupon(normalized)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if red != nil {
		if !actor.IsAdmin() && actor.ID != red.UserID {
			return nil, domain.ErrUnauthorized
		}
		return &CouponResult{Redemption: red}, nil
	}

	return nil, domain.ErrNotFound
}

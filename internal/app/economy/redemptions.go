package economy

import (
	"github.com/google/uuid"

	"github.com/pufflog/pufflog/internal/domain"
	"github.com/pufflog/pufflog/internal/infra/observability"
)

// ─── Reward Redemption Lifecycle ────────────────────────────────────────────
// Same two-state machine as consumption requests, with two differences:
// the debit is unconditional at creation (the cost is the catalog price,
// not priced against a budget), and rejection always refunds in full.
// Validation never re-checks balance.

// Redeem claims a reward for the user. Checks catalog state, the per-reward
// daily cap, and the balance, then persists the PENDING redemption and
// debits the full cost.
func (s *Service) Redeem(user *domain.User, rewardID string) (*domain.RewardRedemption, error) {
	if user == nil {
		return nil, domain.ErrUnauthorized
	}
	if user.Blocked {
		return nil, domain.ErrUserBlocked
	}

	reward, err := s.redemptions.GetReward(rewardID)
	if err != nil {
		return nil, err
	}
	if !reward.Active {
		return nil, domain.ErrRewardInactive
	}

	day := s.clock.Today()
	if reward.DailyLimit > 0 {
		n, err := s.redemptions.CountRedemptionsForDay(user.ID, reward.ID, day)
		if err != nil {
			return nil, err
		}
		if n >= reward.DailyLimit {
			return nil, domain.ErrRewardDailyLimit
		}
	}

	balance, err := s.ledger.Balance(user.ID)
	if err != nil {
		return nil, err
	}
	if balance < reward.CostXp {
		return nil, domain.NewInsufficientXp(reward.CostXp, balance)
	}

	red := domain.RewardRedemption{
		ID:         uuid.NewString(),
		UserID:     user.ID,
		RewardID:   reward.ID,
		Status:     domain.RedemptionPending,
		Day:        day,
		CouponCode: domain.NewCouponCode(),
		CreatedAt:  s.now(),
	}
	if err := s.redemptions.CreateRedemption(red); err != nil {
		return nil, err
	}

	_, err = s.ledger.AppendEntry(domain.LedgerEntry{
		UserID:      user.ID,
		Delta:       -reward.CostXp,
		Kind:        domain.KindRewardDebit,
		ReferenceID: red.ID,
		Note:        dayNote(day),
		CreatedAt:   s.now(),
	})
	if err != nil {
		return nil, err
	}
	observability.RecordLedgerDelta(string(domain.KindRewardDebit), -reward.CostXp)
	return &red, nil
}

// ValidateRedemption finalizes a pending redemption. No balance re-check.
func (s *Service) ValidateRedemption(actor *domain.User, id string) (*domain.RewardRedemption, error) {
	if actor == nil || !actor.IsAdmin() {
		return nil, domain.ErrUnauthorized
	}
	if _, err := s.redemptions.GetRedemption(id); err != nil {
		return nil, err
	}

	ok, err := s.redemptions.TransitionRedemption(id, domain.RedemptionValidated)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrAlreadyProcessed
	}
	observability.RedemptionsDecided.WithLabelValues("validated").Inc()
	return s.redemptions.GetRedemption(id)
}

// RejectRedemption reverses a pending redemption and refunds the full cost.
// As with requests, the compare-and-swap runs before the refund so a
// duplicate rejection cannot refund twice.
func (s *Service) RejectRedemption(actor *domain.User, id string) (*domain.RewardRedemption, error) {
	if actor == nil || !actor.IsAdmin() {
		return nil, domain.ErrUnauthorized
	}
	red, err := s.redemptions.GetRedemption(id)
	if err != nil {
		return nil, err
	}

	ok, err := s.redemptions.TransitionRedemption(id, domain.RedemptionRejected)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrAlreadyProcessed
	}
	observability.RedemptionsDecided.WithLabelValues("rejected").Inc()

	debit, err := s.ledger.FindEntry(red.ID, []domain.EntryKind{domain.KindRewardDebit})
	if err != nil {
		return nil, err
	}
	if debit != nil {
		_, err := s.ledger.AppendEntry(domain.LedgerEntry{
			UserID:      red.UserID,
			Delta:       -debit.Delta,
			Kind:        domain.KindRefundReward,
			ReferenceID: red.ID,
			Note:        debit.Note,
			CreatedAt:   s.now(),
		})
		if err != nil {
			return nil, err
		}
		observability.RecordLedgerDelta(string(domain.KindRefundReward), -debit.Delta)
	}
	return s.redemptions.GetRedemption(id)
}

// ─── Reward Catalog ─────────────────────────────────────────────────────────

// ListRewards returns catalog rewards, optionally only active ones.
func (s *Service) ListRewards(activeOnly bool) ([]domain.Reward, error) {
	return s.redemptions.ListRewards(activeOnly)
}

// ListRedemptions returns redemptions in a status, paginated.
func (s *Service) ListRedemptions(status domain.RedemptionStatus, limit, offset int) ([]domain.RewardRedemption, error) {
	return s.redemptions.ListRedemptions(status, limit, offset)
}

// CreateReward adds a catalog entry. Admin only.
func (s *Service) CreateReward(actor *domain.User, title string, costXp int64, dailyLimit int) (*domain.Reward, error) {
	if actor == nil || !actor.IsAdmin() {
		return nil, domain.ErrUnauthorized
	}
	if title == "" || costXp <= 0 || dailyLimit < 0 {
		return nil, domain.ErrInvalidInput
	}
	r := domain.Reward{
		ID:         uuid.NewString(),
		Title:      title,
		CostXp:     costXp,
		DailyLimit: dailyLimit,
		Active:     true,
	}
	if err := s.redemptions.CreateReward(r); err != nil {
		return nil, err
	}
	return &r, nil
}

// SetRewardActive toggles a catalog entry. Admin only.
func (s *Service) SetRewardActive(actor *domain.User, id string, active bool) error {
	if actor == nil || !actor.IsAdmin() {
		return domain.ErrUnauthorized
	}
	return s.redemptions.SetRewardActive(id, active)
}

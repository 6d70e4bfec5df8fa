package economy

import (
	"github.com/google/uuid"

	"github.com/pufflog/pufflog/internal/app/pricing"
	"github.com/pufflog/pufflog/internal/domain"
	"github.com/pufflog/pufflog/internal/infra/observability"
)

// ─── Consumption Request Lifecycle ──────────────────────────────────────────
// PENDING → {APPROVED, REJECTED}, terminal. The XP debit for an extra
// request happens eagerly at submission, NOT at approval: later submissions
// the same day must already see this one's balance reservation. Approval
// never re-checks or re-debits; rejection refunds whatever was debited.

// SubmitResult is what a successful submission returns to the caller.
type SubmitResult struct {
	Request domain.ConsumptionRequest `json:"request"`
	Quote   pricing.Quote             `json:"quote"`
}

// SubmitRequest prices the amount against today, verifies balance when the
// request is extra, persists it PENDING, and debits the ledger. All
// validation runs before the first write, so failures leave no state.
func (s *Service) SubmitRequest(user *domain.User, amount float64, reasonPrimary, reasonSecondary string) (*SubmitResult, error) {
	if user == nil {
		return nil, domain.ErrUnauthorized
	}
	if user.Blocked {
		observability.SubmissionsRejected.WithLabelValues("blocked").Inc()
		return nil, domain.ErrUserBlocked
	}
	if !domain.ValidAmount(amount) {
		observability.SubmissionsRejected.WithLabelValues("invalid_input").Inc()
		return nil, domain.ErrInvalidInput
	}

	cfg, err := s.LoadConfig()
	if err != nil {
		return nil, err
	}
	day := s.clock.Today()

	quote, err := s.pricer.Price(amount, day, cfg)
	if err != nil {
		return nil, err
	}

	if quote.XpCost > 0 {
		balance, err := s.ledger.Balance(user.ID)
		if err != nil {
			return nil, err
		}
		if balance < quote.XpCost {
			observability.SubmissionsRejected.WithLabelValues("insufficient_xp").Inc()
			return nil, domain.NewInsufficientXp(quote.XpCost, balance)
		}
	}

	req := domain.ConsumptionRequest{
		ID:              uuid.NewString(),
		UserID:          user.ID,
		Amount:          amount,
		ReasonPrimary:   reasonPrimary,
		ReasonSecondary: reasonSecondary,
		Status:          domain.RequestPending,
		Day:             day,
		CouponCode:      domain.NewCouponCode(),
		CreatedAt:       s.now(),
	}
	if err := s.requests.CreateRequest(req); err != nil {
		return nil, err
	}

	// Eager debit: reserves balance the moment the request exists.
	if quote.XpCost > 0 {
		_, err := s.ledger.AppendEntry(domain.LedgerEntry{
			UserID:      user.ID,
			Delta:       -quote.XpCost,
			Kind:        domain.KindSubmissionDebit,
			ReferenceID: req.ID,
			Note:        dayNote(day),
			CreatedAt:   s.now(),
		})
		if err != nil {
			return nil, err
		}
		observability.RecordLedgerDelta(string(domain.KindSubmissionDebit), -quote.XpCost)
	}

	observability.RequestsSubmitted.WithLabelValues(boolLabel(quote.IsExtra)).Inc()
	return &SubmitResult{Request: req, Quote: quote}, nil
}

// ApproveRequest finalizes a pending request, then runs the excess penalty
// check for that day. The status change is a store-level compare-and-swap:
// a second approval, or an approval racing a rejection, gets
// ErrAlreadyProcessed and mutates nothing.
func (s *Service) ApproveRequest(actor *domain.User, id string) (*domain.ConsumptionRequest, error) {
	if actor == nil || !actor.IsAdmin() {
		return nil, domain.ErrUnauthorized
	}
	req, err := s.requests.GetRequest(id)
	if err != nil {
		return nil, err
	}

	ok, err := s.requests.TransitionRequest(id, domain.RequestApproved)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrAlreadyProcessed
	}
	observability.RequestsDecided.WithLabelValues("approved").Inc()

	if err := s.applyExcessPenalty(req.UserID, req.Day); err != nil {
		return nil, err
	}
	return s.requests.GetRequest(id)
}

// RejectRequest reverses a pending request. The compare-and-swap runs
// first, so a duplicate rejection can never produce a second refund; the
// refund then mirrors whatever debit the submission created, matched by
// reference id over the refundable debit kinds.
func (s *Service) RejectRequest(actor *domain.User, id string) (*domain.ConsumptionRequest, error) {
	if actor == nil || !actor.IsAdmin() {
		return nil, domain.ErrUnauthorized
	}
	req, err := s.requests.GetRequest(id)
	if err != nil {
		return nil, err
	}

	ok, err := s.requests.TransitionRequest(id, domain.RequestRejected)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrAlreadyProcessed
	}
	observability.RequestsDecided.WithLabelValues("rejected").Inc()

	debit, err := s.ledger.FindEntry(req.ID, domain.RequestDebitKinds())
	if err != nil {
		return nil, err
	}
	if debit != nil {
		_, err := s.ledger.AppendEntry(domain.LedgerEntry{
			UserID:      req.UserID,
			Delta:       -debit.Delta,
			Kind:        domain.KindRefundCig,
			ReferenceID: req.ID,
			Note:        debit.Note,
			CreatedAt:   s.now(),
		})
		if err != nil {
			return nil, err
		}
		observability.RecordLedgerDelta(string(domain.KindRefundCig), -debit.Delta)
	}
	return s.requests.GetRequest(id)
}

// applyExcessPenalty debits the fixed penalty when the day's APPROVED total
// has crossed the excess threshold, at most once per user per day. The
// uniqueness key turns the historical check-then-insert into insert-ignore,
// which stays exactly-once under concurrent approvals.
func (s *Service) applyExcessPenalty(userID, day string) error {
	cfg, err := s.LoadConfig()
	if err != nil {
		return err
	}
	if cfg.ExcessPenaltyXp <= 0 {
		return nil
	}
	total, err := s.requests.ApprovedTotalForDay(day)
	if err != nil {
		return err
	}
	if total <= cfg.ExcessThreshold {
		return nil
	}
	_, inserted, err := s.ledger.AppendEntryUnique(domain.LedgerEntry{
		UserID:    userID,
		Delta:     -cfg.ExcessPenaltyXp,
		Kind:      domain.KindExcessPenalty,
		Note:      dayNote(day),
		CreatedAt: s.now(),
	}, penaltyKey(userID, day))
	if err != nil {
		return err
	}
	if inserted {
		observability.ExcessPenalties.Inc()
		observability.RecordLedgerDelta(string(domain.KindExcessPenalty), -cfg.ExcessPenaltyXp)
	}
	return nil
}

// ─── Listings ───────────────────────────────────────────────────────────────

// ListRequests returns requests in a status, paginated, newest first.
func (s *Service) ListRequests(status domain.RequestStatus, limit, offset int) ([]domain.ConsumptionRequest, error) {
	return s.requests.ListRequests(status, limit, offset)
}

// ListRequestsForUser returns a member's own requests, paginated.
func (s *Service) ListRequestsForUser(userID string, limit, offset int) ([]domain.ConsumptionRequest, error) {
	return s.requests.ListRequestsForUser(userID, limit, offset)
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

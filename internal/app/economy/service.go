// Package economy implements the XP ledger service and the request
// lifecycle state machine: submission pricing and eager debit, the
// approve/reject/refund protocol, the once-per-day excess penalty, reward
// redemptions, and the admin operations that tune the economy.
package economy

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pufflog/pufflog/internal/app/pricing"
	"github.com/pufflog/pufflog/internal/domain"
	"github.com/pufflog/pufflog/internal/infra/observability"
)

// Service wires the economy rules to the stores. All operations are
// short-lived units of work; the only atomic step is the store-level
// PENDING → terminal compare-and-swap.
type Service struct {
	clock       domain.Clock
	users       domain.UserStore
	ledger      domain.LedgerStore
	requests    domain.RequestStore
	redemptions domain.RedemptionStore
	limits      domain.LimitStore
	config      domain.ConfigStore
	pricer      *pricing.Engine

	now func() time.Time // test hook
}

// New creates the economy service.
func New(clock domain.Clock, users domain.UserStore, ledger domain.LedgerStore,
	requests domain.RequestStore, redemptions domain.RedemptionStore,
	limits domain.LimitStore, config domain.ConfigStore) *Service {
	return &Service{
		clock:       clock,
		users:       users,
		ledger:      ledger,
		requests:    requests,
		redemptions: redemptions,
		limits:      limits,
		config:      config,
		pricer:      pricing.NewEngine(requests, limits),
		now:         time.Now,
	}
}

// Pricer exposes the pricing engine for read-only callers (dashboard,
// mission evaluator).
func (s *Service) Pricer() *pricing.Engine { return s.pricer }

// LoadConfig returns the active economy config, synthesizing the hard-coded
// default when no row has been written yet. The config is loaded once per
// operation and threaded through, never read as ambient global state.
func (s *Service) LoadConfig() (domain.EconomyConfig, error) {
	cfg, err := s.config.GetConfig()
	if err != nil {
		return domain.EconomyConfig{}, err
	}
	if cfg == nil {
		return domain.DefaultEconomyConfig(), nil
	}
	return *cfg, nil
}

// UpdateConfig replaces the economy configuration. Admin only.
func (s *Service) UpdateConfig(actor *domain.User, cfg domain.EconomyConfig) error {
	if actor == nil || !actor.IsAdmin() {
		return domain.ErrUnauthorized
	}
	return s.config.SaveConfig(cfg)
}

// SetDayLimit pins the budget for one day. Admin only.
func (s *Service) SetDayLimit(actor *domain.User, day string, limit float64) error {
	if actor == nil || !actor.IsAdmin() {
		return domain.ErrUnauthorized
	}
	if limit < 0 || !validDay(day) {
		return domain.ErrInvalidInput
	}
	return s.limits.SetDayLimit(domain.DayLimitOverride{Day: day, LimitQuantity: limit})
}

// Balance returns the user's XP balance: the sum of all ledger deltas.
func (s *Service) Balance(userID string) (int64, error) {
	return s.ledger.Balance(userID)
}

// History returns the user's most recent ledger entries.
func (s *Service) History(userID string, limit int) ([]domain.LedgerEntry, error) {
	return s.ledger.EntriesFor(userID, limit)
}

// ─── Provisioning & Allowances ──────────────────────────────────────────────

// welcomeBonusXp is paid once when an account is provisioned.
const welcomeBonusXp = 50

// ProvisionUser creates an account and pays the one-time welcome bonus.
// The bonus append is guarded by a uniqueness key so re-provisioning a name
// that raced cannot pay twice.
func (s *Service) ProvisionUser(name, passwordHash string, role domain.Role) (*domain.User, error) {
	if name == "" {
		return nil, domain.ErrInvalidInput
	}
	u := domain.User{
		ID:           uuid.NewString(),
		Name:         name,
		Role:         role,
		PasswordHash: passwordHash,
		CreatedAt:    s.now(),
	}
	if err := s.users.CreateUser(u); err != nil {
		return nil, err
	}
	_, inserted, err := s.ledger.AppendEntryUnique(domain.LedgerEntry{
		UserID:    u.ID,
		Delta:     welcomeBonusXp,
		Kind:      domain.KindWelcomeBonus,
		Note:      "welcome aboard",
		CreatedAt: s.now(),
	}, "welcome:"+u.ID)
	if err != nil {
		return nil, err
	}
	if inserted {
		observability.RecordLedgerDelta(string(domain.KindWelcomeBonus), welcomeBonusXp)
	}
	return &u, nil
}

// GrantDailyAllowance credits the daily allowance once per user per day,
// when enabled. Safe to call on every dashboard read: the uniqueness key
// makes duplicates no-ops.
func (s *Service) GrantDailyAllowance(user *domain.User) error {
	cfg, err := s.LoadConfig()
	if err != nil {
		return err
	}
	if !cfg.DailyAllowanceEnabled || cfg.XpPerUnit <= 0 {
		return nil
	}
	day := s.clock.Today()
	_, inserted, err := s.ledger.AppendEntryUnique(domain.LedgerEntry{
		UserID:    user.ID,
		Delta:     cfg.XpPerUnit,
		Kind:      domain.KindDailyAllowance,
		Note:      dayNote(day),
		CreatedAt: s.now(),
	}, "allowance:"+user.ID+":"+day)
	if err != nil {
		return err
	}
	if inserted {
		observability.RecordLedgerDelta(string(domain.KindDailyAllowance), cfg.XpPerUnit)
	}
	return nil
}

// ManualAdjustment appends a free-form signed adjustment and returns the
// resulting balance. Admin only.
func (s *Service) ManualAdjustment(actor *domain.User, userID string, delta int64, note string) (int64, error) {
	if actor == nil || !actor.IsAdmin() {
		return 0, domain.ErrUnauthorized
	}
	if delta == 0 {
		return 0, domain.ErrInvalidInput
	}
	_, err := s.ledger.AppendEntry(domain.LedgerEntry{
		UserID:    userID,
		Delta:     delta,
		Kind:      domain.KindManualAdjustment,
		Note:      note,
		CreatedAt: s.now(),
	})
	if err != nil {
		return 0, err
	}
	observability.RecordLedgerDelta(string(domain.KindManualAdjustment), delta)
	return s.ledger.Balance(userID)
}

// BackdatedConsumption records a consumption the member forgot to submit:
// an already-APPROVED request for a past day plus an explicit XP debit.
// Admin only.
func (s *Service) BackdatedConsumption(actor *domain.User, userID, day string, amount float64, xpDebit int64) (*domain.ConsumptionRequest, error) {
	if actor == nil || !actor.IsAdmin() {
		return nil, domain.ErrUnauthorized
	}
	if !domain.ValidAmount(amount) || !validDay(day) || xpDebit < 0 {
		return nil, domain.ErrInvalidInput
	}
	if _, err := s.users.GetUser(userID); err != nil {
		return nil, err
	}

	nowTs := s.now()
	req := domain.ConsumptionRequest{
		ID:            uuid.NewString(),
		UserID:        userID,
		Amount:        amount,
		ReasonPrimary: "backdated",
		Status:        domain.RequestApproved,
		Day:           day,
		CouponCode:    domain.NewCouponCode(),
		CreatedAt:     nowTs,
		ApprovedAt:    &nowTs,
	}
	if err := s.requests.CreateRequest(req); err != nil {
		return nil, err
	}
	if xpDebit > 0 {
		_, err := s.ledger.AppendEntry(domain.LedgerEntry{
			UserID:      userID,
			Delta:       -xpDebit,
			Kind:        domain.KindManualAdjustment,
			ReferenceID: req.ID,
			Note:        dayNote(day),
			CreatedAt:   nowTs,
		})
		if err != nil {
			return nil, err
		}
		observability.RecordLedgerDelta(string(domain.KindManualAdjustment), -xpDebit)
	}
	return &req, nil
}

// ─── Helpers ────────────────────────────────────────────────────────────────

// dayNote is the exact-day marker carried in ledger entry notes. Day-scoped
// lookups match on the full note, so the marker must be the whole string.
func dayNote(day string) string { return "day:" + day }

func validDay(day string) bool {
	_, err := time.Parse("2006-01-02", day)
	return err == nil
}

// penaltyKey is the uniqueness key making the excess penalty once per
// user per day.
func penaltyKey(userID, day string) string {
	return fmt.Sprintf("penalty:%s:%s", userID, day)
}

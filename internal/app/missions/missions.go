// Package missions tracks recurring daily and weekly objectives, computes
// live progress from consumption data, and pays each completed period's XP
// exactly once. There is no background scheduler: finalization is lazy,
// triggered by the next read that touches a user's missions.
package missions

import (
	"time"

	"github.com/google/uuid"

	"github.com/pufflog/pufflog/internal/app/calendar"
	"github.com/pufflog/pufflog/internal/app/pricing"
	"github.com/pufflog/pufflog/internal/domain"
	"github.com/pufflog/pufflog/internal/infra/observability"
)

// Evaluator computes mission progress and finalizes elapsed periods.
type Evaluator struct {
	clock    domain.Clock
	missions domain.MissionStore
	requests domain.RequestStore
	ledger   domain.LedgerStore
	config   domain.ConfigStore
	pricer   *pricing.Engine

	now func() time.Time // test hook
}

// New creates a mission evaluator.
func New(clock domain.Clock, missions domain.MissionStore, requests domain.RequestStore,
	ledger domain.LedgerStore, limits domain.LimitStore, config domain.ConfigStore) *Evaluator {
	return &Evaluator{
		clock:    clock,
		missions: missions,
		requests: requests,
		ledger:   ledger,
		config:   config,
		pricer:   pricing.NewEngine(requests, limits),
		now:      time.Now,
	}
}

// extraDebitKinds are the ledger kinds whose presence on a day fails the
// "no extra debit" condition.
var extraDebitKinds = []domain.EntryKind{
	domain.KindSubmissionDebit,
	domain.KindPurchaseDebit,
	domain.KindExcessPenalty,
}

// ─── Catalog ────────────────────────────────────────────────────────────────

// CreateMission adds an active mission to the catalog. Admin only.
func (e *Evaluator) CreateMission(actor *domain.User, title string, kind domain.MissionKind,
	cond domain.ConditionType, target float64, xpReward int64) (*domain.Mission, error) {
	if actor == nil || !actor.IsAdmin() {
		return nil, domain.ErrUnauthorized
	}
	if title == "" || xpReward < 0 {
		return nil, domain.ErrInvalidInput
	}
	switch kind {
	case domain.MissionDaily, domain.MissionWeekly:
	default:
		return nil, domain.ErrInvalidInput
	}
	switch cond {
	case domain.ConditionWithinLimit, domain.ConditionBelowThreshold,
		domain.ConditionNoExtraDebit, domain.ConditionDaysWithinLimit:
	default:
		return nil, domain.ErrInvalidInput
	}

	m := domain.Mission{
		ID:            uuid.NewString(),
		Title:         title,
		Kind:          kind,
		XpReward:      xpReward,
		ConditionType: cond,
		TargetValue:   target,
		Active:        true,
	}
	if err := e.missions.CreateMission(m); err != nil {
		return nil, err
	}
	return &m, nil
}

// ─── Instances ──────────────────────────────────────────────────────────────

// currentPeriod returns the period bounds for a mission as of today.
func (e *Evaluator) currentPeriod(m domain.Mission) (start, end string) {
	switch m.Kind {
	case domain.MissionWeekly:
		week := e.clock.DaysInCurrentWeek()
		return week[0], week[6]
	default:
		today := e.clock.Today()
		return today, today
	}
}

// EnsureCurrentInstances creates this period's instance for every active
// mission the user does not have one for yet. Idempotent: the store's
// (user, mission, periodStart) uniqueness returns the existing row on
// duplicate inserts.
func (e *Evaluator) EnsureCurrentInstances(user *domain.User) error {
	if user == nil {
		return domain.ErrUnauthorized
	}
	active, err := e.missions.ListMissions(true)
	if err != nil {
		return err
	}
	for _, m := range active {
		start, end := e.currentPeriod(m)
		_, err := e.missions.EnsureInstance(domain.UserMissionInstance{
			ID:          uuid.NewString(),
			UserID:      user.ID,
			MissionID:   m.ID,
			PeriodStart: start,
			PeriodEnd:   end,
			Status:      domain.MissionInProgress,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// ─── Progress ───────────────────────────────────────────────────────────────

// EvaluateProgress computes live progress for an instance against its
// mission's condition. Binary daily conditions report 0 or 1 against a
// target of 1; the weekly counter reports elapsed qualifying days.
func (e *Evaluator) EvaluateProgress(inst domain.UserMissionInstance, m domain.Mission) (domain.MissionProgress, error) {
	cfg, err := e.loadConfig()
	if err != nil {
		return domain.MissionProgress{}, err
	}

	switch m.ConditionType {
	case domain.ConditionWithinLimit:
		within, err := e.dayWithinLimit(inst.PeriodStart, cfg)
		if err != nil {
			return domain.MissionProgress{}, err
		}
		return binary(within), nil

	case domain.ConditionBelowThreshold:
		total, err := e.requests.ApprovedTotalForDay(inst.PeriodStart)
		if err != nil {
			return domain.MissionProgress{}, err
		}
		return binary(total < m.TargetValue), nil

	case domain.ConditionNoExtraDebit:
		hit, err := e.ledger.HasEntryOnDay(inst.UserID, inst.PeriodStart, extraDebitKinds)
		if err != nil {
			return domain.MissionProgress{}, err
		}
		return binary(!hit), nil

	case domain.ConditionDaysWithinLimit:
		target := m.TargetValue
		if target <= 0 {
			target = 7
		}
		today := e.clock.Today()
		count := 0.0
		for _, day := range daysBetween(inst.PeriodStart, inst.PeriodEnd) {
			if day > today {
				continue // future days are excluded, not failed
			}
			within, err := e.dayWithinLimit(day, cfg)
			if err != nil {
				return domain.MissionProgress{}, err
			}
			if within {
				count++
			}
		}
		return domain.MissionProgress{Progress: count, Target: target}, nil

	default:
		return domain.MissionProgress{}, domain.ErrInvalidInput
	}
}

func (e *Evaluator) dayWithinLimit(day string, cfg domain.EconomyConfig) (bool, error) {
	total, err := e.requests.ApprovedTotalForDay(day)
	if err != nil {
		return false, err
	}
	limit, err := e.pricer.LimitFor(day, cfg)
	if err != nil {
		return false, err
	}
	return total <= limit, nil
}

// ─── Finalization ───────────────────────────────────────────────────────────

// FinalizeDueForUser finalizes every IN_PROGRESS instance whose period has
// fully elapsed. The store transition flips status and xp_awarded in one
// atomic step, and the award append carries a per-instance uniqueness key,
// so concurrent calls pay at most once. xp_awarded becomes true for FAILED
// outcomes too — the guard is permanent either way.
func (e *Evaluator) FinalizeDueForUser(user *domain.User) error {
	if user == nil {
		return domain.ErrUnauthorized
	}
	today := e.clock.Today()
	instances, err := e.missions.ListInstancesForUser(user.ID)
	if err != nil {
		return err
	}
	for _, inst := range instances {
		if inst.Status != domain.MissionInProgress || inst.XpAwarded {
			continue
		}
		if inst.PeriodEnd >= today {
			continue // period not fully elapsed yet
		}
		m, err := e.missions.GetMission(inst.MissionID)
		if err != nil {
			return err
		}
		progress, err := e.EvaluateProgress(inst, *m)
		if err != nil {
			return err
		}

		outcome := domain.MissionFailed
		if progress.Progress >= progress.Target {
			outcome = domain.MissionCompleted
		}
		ok, err := e.missions.FinalizeInstance(inst.ID, outcome)
		if err != nil {
			return err
		}
		if !ok {
			continue // lost the race to another finalizer
		}
		observability.MissionsFinalized.WithLabelValues(string(outcome)).Inc()

		if outcome == domain.MissionCompleted && m.XpReward > 0 {
			_, inserted, err := e.ledger.AppendEntryUnique(domain.LedgerEntry{
				UserID:      user.ID,
				Delta:       m.XpReward,
				Kind:        domain.KindMissionAward,
				ReferenceID: inst.ID,
				Note:        "mission: " + m.Title,
				CreatedAt:   e.now(),
			}, "mission:"+inst.ID)
			if err != nil {
				return err
			}
			if inserted {
				observability.RecordLedgerDelta(string(domain.KindMissionAward), m.XpReward)
			}
		}
	}
	return nil
}

// ─── Listings ───────────────────────────────────────────────────────────────

// BoardEntry is one mission with its current instance and live progress.
type BoardEntry struct {
	Mission  domain.Mission            `json:"mission"`
	Instance domain.UserMissionInstance `json:"instance"`
	Progress domain.MissionProgress    `json:"progress"`
}

// Board finalizes elapsed periods, ensures this period's instances, and
// returns the user's current missions with live progress.
func (e *Evaluator) Board(user *domain.User) ([]BoardEntry, error) {
	if err := e.FinalizeDueForUser(user); err != nil {
		return nil, err
	}
	if err := e.EnsureCurrentInstances(user); err != nil {
		return nil, err
	}

	active, err := e.missions.ListMissions(true)
	if err != nil {
		return nil, err
	}
	instances, err := e.missions.ListInstancesForUser(user.ID)
	if err != nil {
		return nil, err
	}
	byKey := make(map[string]domain.UserMissionInstance, len(instances))
	for _, inst := range instances {
		byKey[inst.MissionID+"|"+inst.PeriodStart] = inst
	}

	var board []BoardEntry
	for _, m := range active {
		start, _ := e.currentPeriod(m)
		inst, ok := byKey[m.ID+"|"+start]
		if !ok {
			continue
		}
		progress, err := e.EvaluateProgress(inst, m)
		if err != nil {
			return nil, err
		}
		board = append(board, BoardEntry{Mission: m, Instance: inst, Progress: progress})
	}
	return board, nil
}

// ─── Helpers ────────────────────────────────────────────────────────────────

func (e *Evaluator) loadConfig() (domain.EconomyConfig, error) {
	cfg, err := e.config.GetConfig()
	if err != nil {
		return domain.EconomyConfig{}, err
	}
	if cfg == nil {
		return domain.DefaultEconomyConfig(), nil
	}
	return *cfg, nil
}

func binary(ok bool) domain.MissionProgress {
	p := domain.MissionProgress{Target: 1}
	if ok {
		p.Progress = 1
	}
	return p
}

// daysBetween enumerates days from start to end inclusive. Malformed
// bounds yield an empty slice.
func daysBetween(start, end string) []string {
	s, err1 := time.Parse(calendar.DayFormat, start)
	t, err2 := time.Parse(calendar.DayFormat, end)
	if err1 != nil || err2 != nil || t.Before(s) {
		return nil
	}
	var days []string
	for d := s; !d.After(t); d = d.AddDate(0, 0, 1) {
		days = append(days, d.Format(calendar.DayFormat))
	}
	return days
}

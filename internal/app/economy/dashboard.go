package economy

import (
	"github.com/pufflog/pufflog/internal/domain"
)

// ─── Dashboard Aggregates ───────────────────────────────────────────────────

// Dashboard is the snapshot the presentation layer renders on the home
// screen. Totals are the shared (all-user) consumption; balance and pending
// counts are per caller.
type Dashboard struct {
	Day          string  `json:"day"`
	TodayTotal   float64 `json:"today_total"`
	Limit        float64 `json:"limit"`
	Remaining    float64 `json:"remaining"`
	WeekTotal    float64 `json:"week_total"`
	WeekAverage  float64 `json:"week_average"`
	Balance      int64   `json:"balance"`
	PendingCount int     `json:"pending_count"`

	// PrevWeekTotal is the previous week's consumption, for the
	// week-over-week trend line.
	PrevWeekTotal float64 `json:"prev_week_total"`

	// StreakDays counts consecutive within-limit days ending yesterday.
	StreakDays int `json:"streak_days"`

	// NextReward is the cheapest active reward the balance covers, nil
	// when none is affordable yet.
	NextReward *domain.Reward `json:"next_reward,omitempty"`
}

// BuildDashboard assembles the caller's dashboard. Reading the dashboard is
// also the lazy trigger for the daily allowance, when enabled.
func (s *Service) BuildDashboard(user *domain.User) (*Dashboard, error) {
	if user == nil {
		return nil, domain.ErrUnauthorized
	}
	if err := s.GrantDailyAllowance(user); err != nil {
		return nil, err
	}

	cfg, err := s.LoadConfig()
	if err != nil {
		return nil, err
	}
	day := s.clock.Today()

	todayTotal, err := s.requests.ApprovedTotalForDay(day)
	if err != nil {
		return nil, err
	}
	limit, err := s.pricer.LimitFor(day, cfg)
	if err != nil {
		return nil, err
	}
	remaining := limit - todayTotal
	if remaining < 0 {
		remaining = 0
	}

	week := s.clock.DaysInCurrentWeek()
	totals, err := s.requests.ApprovedTotalForDays(week)
	if err != nil {
		return nil, err
	}
	var weekTotal float64
	elapsed := 0
	for _, d := range week {
		if d > day {
			continue // future days count for neither total nor average
		}
		weekTotal += totals[d]
		elapsed++
	}
	var weekAvg float64
	if elapsed > 0 {
		weekAvg = weekTotal / float64(elapsed)
	}

	prevWeek := s.clock.DaysInPreviousWeek()
	prevTotals, err := s.requests.ApprovedTotalForDays(prevWeek)
	if err != nil {
		return nil, err
	}
	var prevWeekTotal float64
	for _, d := range prevWeek {
		prevWeekTotal += prevTotals[d]
	}

	streak, err := s.streakDays(cfg)
	if err != nil {
		return nil, err
	}

	balance, err := s.ledger.Balance(user.ID)
	if err != nil {
		return nil, err
	}
	pending, err := s.requests.CountRequestsForUser(user.ID, domain.RequestPending)
	if err != nil {
		return nil, err
	}

	d := &Dashboard{
		Day:          day,
		TodayTotal:   todayTotal,
		Limit:        limit,
		Remaining:    remaining,
		WeekTotal:    weekTotal,
		WeekAverage:  weekAvg,
		Balance:      balance,
		PendingCount: pending,

		PrevWeekTotal: prevWeekTotal,
		StreakDays:    streak,
	}

	rewards, err := s.redemptions.ListRewards(true)
	if err != nil {
		return nil, err
	}
	for i := range rewards {
		r := rewards[i]
		if r.CostXp > balance {
			continue
		}
		if d.NextReward == nil || r.CostXp < d.NextReward.CostXp {
			d.NextReward = &rewards[i]
		}
	}

	return d, nil
}

// streakLookback caps how far back the streak is counted.
const streakLookback = 30

// streakDays counts the run of within-limit days ending yesterday. A day with
// no approved consumption counts as within the limit.
func (s *Service) streakDays(cfg domain.EconomyConfig) (int, error) {
	recent := s.clock.LastNDaysExcludingToday(streakLookback)
	totals, err := s.requests.ApprovedTotalForDays(recent)
	if err != nil {
		return 0, err
	}
	streak := 0
	for i := len(recent) - 1; i >= 0; i-- {
		day := recent[i]
		limit, err := s.pricer.LimitFor(day, cfg)
		if err != nil {
			return 0, err
		}
		if totals[day] > limit {
			break
		}
		streak++
	}
	return streak, nil
}

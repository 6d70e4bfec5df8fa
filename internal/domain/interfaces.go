package domain

// ─── Service Interfaces ─────────────────────────────────────────────────────
// These interfaces define boundaries between layers.
// Infrastructure implements them; application layer depends on them.

// Clock resolves calendar days in the single civil timezone all economy
// logic is anchored to. Pure functions of wall-clock time.
type Clock interface {
	// Today returns the current day as YYYY-MM-DD.
	Today() string
	// DaysInCurrentWeek returns the 7 days of the current week in order,
	// starting Monday.
	DaysInCurrentWeek() []string
	// DaysInPreviousWeek returns the 7 days of the week before the
	// current one, in order.
	DaysInPreviousWeek() []string
	// LastNDaysExcludingToday returns the n days before today, oldest first.
	LastNDaysExcludingToday(n int) []string
}

// UserStore provides account lookups.
type UserStore interface {
	GetUser(id string) (*User, error)
	GetUserByName(name string) (*User, error)
	ListUsers() ([]User, error)
	CreateUser(u User) error
}

// LedgerStore persists append-only XP entries.
type LedgerStore interface {
	// AppendEntry inserts a new entry. Fails with ErrUserNotFound when the
	// user does not exist. Never rejects on the balance going negative.
	AppendEntry(e LedgerEntry) (int64, error)
	// AppendEntryUnique inserts an entry guarded by a uniqueness key.
	// Returns (0, false, nil) when an entry with the same key already
	// exists — the insert-ignore pattern backing penalty and allowance
	// idempotence under concurrency.
	AppendEntryUnique(e LedgerEntry, uniqueKey string) (int64, bool, error)
	// Balance sums delta over all entries for the user.
	Balance(userID string) (int64, error)
	// EntriesFor returns all entries for a user, newest first.
	EntriesFor(userID string, limit int) ([]LedgerEntry, error)
	// FindEntry returns the first entry matching reference id and one of
	// the given kinds, or nil when none exists.
	FindEntry(referenceID string, kinds []EntryKind) (*LedgerEntry, error)
	// HasEntryOnDay reports whether the user has an entry of one of the
	// given kinds whose day marker matches the given day.
	HasEntryOnDay(userID, day string, kinds []EntryKind) (bool, error)
}

// RequestStore persists consumption requests.
type RequestStore interface {
	CreateRequest(r ConsumptionRequest) error
	GetRequest(id string) (*ConsumptionRequest, error)
	GetRequestByCoupon(code string) (*ConsumptionRequest, error)
	// TransitionRequest atomically moves a PENDING request to the given
	// terminal status. Returns false when the request was not PENDING —
	// the single compare-and-swap in the system.
	TransitionRequest(id string, to RequestStatus) (bool, error)
	ListRequests(status RequestStatus, limit, offset int) ([]ConsumptionRequest, error)
	ListRequestsForUser(userID string, limit, offset int) ([]ConsumptionRequest, error)
	// ApprovedTotalForDay sums APPROVED request amounts for a day across
	// all users. The daily budget is shared, not per user.
	ApprovedTotalForDay(day string) (float64, error)
	ApprovedTotalForDays(days []string) (map[string]float64, error)
	// CountRequestsForUser counts one user's requests in a status. Unlike
	// the consumption totals, pending counts are per user.
	CountRequestsForUser(userID string, status RequestStatus) (int, error)
}

// RedemptionStore persists reward redemptions and the reward catalog.
type RedemptionStore interface {
	CreateRedemption(r RewardRedemption) error
	GetRedemption(id string) (*RewardRedemption, error)
	GetRedemptionByCoupon(code string) (*RewardRedemption, error)
	TransitionRedemption(id string, to RedemptionStatus) (bool, error)
	ListRedemptions(status RedemptionStatus, limit, offset int) ([]RewardRedemption, error)
	CountRedemptionsForDay(userID, rewardID, day string) (int, error)

	GetReward(id string) (*Reward, error)
	ListRewards(activeOnly bool) ([]Reward, error)
	CreateReward(r Reward) error
	SetRewardActive(id string, active bool) error
}

// LimitStore persists per-day budget overrides.
type LimitStore interface {
	GetDayLimit(day string) (*DayLimitOverride, error)
	SetDayLimit(o DayLimitOverride) error
}

// ConfigStore persists the singleton economy configuration.
type ConfigStore interface {
	// GetConfig returns the active config, or (nil, nil) when none exists.
	GetConfig() (*EconomyConfig, error)
	SaveConfig(c EconomyConfig) error
}

// MissionStore persists the mission catalog and per-user instances.
type MissionStore interface {
	ListMissions(activeOnly bool) ([]Mission, error)
	GetMission(id string) (*Mission, error)
	CreateMission(m Mission) error
	// EnsureInstance inserts the instance unless one already exists for
	// (user, mission, periodStart); either way it returns the stored row.
	EnsureInstance(inst UserMissionInstance) (*UserMissionInstance, error)
	ListInstancesForUser(userID string) ([]UserMissionInstance, error)
	// FinalizeInstance atomically moves an IN_PROGRESS instance to the
	// given terminal status and sets xp_awarded. Returns false when the
	// instance was already finalized.
	FinalizeInstance(id string, to MissionStatus) (bool, error)
}

// SessionProvider resolves the calling user from a request credential.
// Auth mechanics live outside the economy core.
type SessionProvider interface {
	CurrentUser(token string) (*User, error)
}

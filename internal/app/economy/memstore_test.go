package economy

// In-memory store fakes for exercising the economy rules without SQLite.
// They mirror the store contracts exactly, including the compare-and-swap
// transition semantics and the insert-ignore uniqueness guard.

import (
	"sort"
	"sync"

	"github.com/pufflog/pufflog/internal/domain"
)

type memStore struct {
	mu sync.Mutex

	users       map[string]domain.User
	entries     []domain.LedgerEntry
	uniqueKeys  map[string]bool
	requests    map[string]domain.ConsumptionRequest
	redemptions map[string]domain.RewardRedemption
	rewards     map[string]domain.Reward
	overrides   map[string]float64
	cfg         *domain.EconomyConfig
	nextEntryID int64
}

func newMemStore() *memStore {
	return &memStore{
		users:       make(map[string]domain.User),
		uniqueKeys:  make(map[string]bool),
		requests:    make(map[string]domain.ConsumptionRequest),
		redemptions: make(map[string]domain.RewardRedemption),
		rewards:     make(map[string]domain.Reward),
		overrides:   make(map[string]float64),
	}
}

// ─── UserStore ──────────────────────────────────────────────────────────────

func (m *memStore) GetUser(id string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}

func (m *memStore) GetUserByName(name string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Name == name {
			u := u
			return &u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memStore) ListUsers() ([]domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memStore) CreateUser(u domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = u
	return nil
}

// ─── LedgerStore ────────────────────────────────────────────────────────────

func (m *memStore) AppendEntry(e domain.LedgerEntry) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[e.UserID]; !ok {
		return 0, domain.ErrUserNotFound
	}
	m.nextEntryID++
	e.ID = m.nextEntryID
	m.entries = append(m.entries, e)
	return e.ID, nil
}

func (m *memStore) AppendEntryUnique(e domain.LedgerEntry, uniqueKey string) (int64, bool, error) {
	m.mu.Lock()
	if m.uniqueKeys[uniqueKey] {
		m.mu.Unlock()
		return 0, false, nil
	}
	m.uniqueKeys[uniqueKey] = true
	m.mu.Unlock()
	id, err := m.AppendEntry(e)
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

func (m *memStore) Balance(userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var sum int64
	for _, e := range m.entries {
		if e.UserID == userID {
			sum += e.Delta
		}
	}
	return sum, nil
}

func (m *memStore) EntriesFor(userID string, limit int) ([]domain.LedgerEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.LedgerEntry
	for i := len(m.entries) - 1; i >= 0; i-- {
		if m.entries[i].UserID == userID {
			out = append(out, m.entries[i])
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

func (m *memStore) FindEntry(referenceID string, kinds []domain.EntryKind) (*domain.LedgerEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.entries {
		if e.ReferenceID != referenceID {
			continue
		}
		for _, k := range kinds {
			if e.Kind == k {
				e := e
				return &e, nil
			}
		}
	}
	return nil, nil
}

func (m *memStore) HasEntryOnDay(userID, day string, kinds []domain.EntryKind) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	note := "day:" + day
	for _, e := range m.entries {
		if e.UserID != userID || e.Note != note {
			continue
		}
		for _, k := range kinds {
			if e.Kind == k {
				return true, nil
			}
		}
	}
	return false, nil
}

// ─── RequestStore ───────────────────────────────────────────────────────────

func (m *memStore) CreateRequest(r domain.ConsumptionRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests[r.ID] = r
	return nil
}

func (m *memStore) GetRequest(id string) (*domain.ConsumptionRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.requests[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &r, nil
}

func (m *memStore) GetRequestByCoupon(code string) (*domain.ConsumptionRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.requests {
		if r.CouponCode == code {
			r := r
			return &r, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memStore) TransitionRequest(id string, to domain.RequestStatus) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.requests[id]
	if !ok {
		return false, domain.ErrNotFound
	}
	if r.Status != domain.RequestPending {
		return false, nil
	}
	r.Status = to
	m.requests[id] = r
	return true, nil
}

func (m *memStore) ListRequests(status domain.RequestStatus, limit, offset int) ([]domain.ConsumptionRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.ConsumptionRequest
	for _, r := range m.requests {
		if r.Status == status {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return paginate(out, limit, offset), nil
}

func (m *memStore) ListRequestsForUser(userID string, limit, offset int) ([]domain.ConsumptionRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.ConsumptionRequest
	for _, r := range m.requests {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return paginate(out, limit, offset), nil
}

func (m *memStore) ApprovedTotalForDay(day string) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var total float64
	for _, r := range m.requests {
		if r.Day == day && r.Status == domain.RequestApproved {
			total += r.Amount
		}
	}
	return total, nil
}

func (m *memStore) ApprovedTotalForDays(days []string) (map[string]float64, error) {
	out := make(map[string]float64, len(days))
	for _, d := range days {
		t, _ := m.ApprovedTotalForDay(d)
		out[d] = t
	}
	return out, nil
}

func (m *memStore) CountRequestsForUser(userID string, status domain.RequestStatus) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, r := range m.requests {
		if r.UserID == userID && r.Status == status {
			n++
		}
	}
	return n, nil
}

// ─── RedemptionStore ────────────────────────────────────────────────────────

func (m *memStore) CreateRedemption(r domain.RewardRedemption) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.redemptions[r.ID] = r
	return nil
}

func (m *memStore) GetRedemption(id string) (*domain.RewardRedemption, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.redemptions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &r, nil
}

func (m *memStore) GetRedemptionByCoupon(code string) (*domain.RewardRedemption, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.redemptions {
		if r.CouponCode == code {
			r := r
			return &r, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memStore) TransitionRedemption(id string, to domain.RedemptionStatus) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.redemptions[id]
	if !ok {
		return false, domain.ErrNotFound
	}
	if r.Status != domain.RedemptionPending {
		return false, nil
	}
	r.Status = to
	m.redemptions[id] = r
	return true, nil
}

func (m *memStore) ListRedemptions(status domain.RedemptionStatus, limit, offset int) ([]domain.RewardRedemption, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.RewardRedemption
	for _, r := range m.redemptions {
		if r.Status == status {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return paginate(out, limit, offset), nil
}

func (m *memStore) CountRedemptionsForDay(userID, rewardID, day string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, r := range m.redemptions {
		if r.UserID == userID && r.RewardID == rewardID && r.Day == day && r.Status != domain.RedemptionRejected {
			n++
		}
	}
	return n, nil
}

func (m *memStore) GetReward(id string) (*domain.Reward, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rewards[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &r, nil
}

func (m *memStore) ListRewards(activeOnly bool) ([]domain.Reward, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Reward
	for _, r := range m.rewards {
		if activeOnly && !r.Active {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CostXp < out[j].CostXp })
	return out, nil
}

func (m *memStore) CreateReward(r domain.Reward) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rewards[r.ID] = r
	return nil
}

func (m *memStore) SetRewardActive(id string, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rewards[id]
	if !ok {
		return domain.ErrNotFound
	}
	r.Active = active
	m.rewards[id] = r
	return nil
}

// ─── LimitStore & ConfigStore ───────────────────────────────────────────────

func (m *memStore) GetDayLimit(day string) (*domain.DayLimitOverride, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.overrides[day]; ok {
		return &domain.DayLimitOverride{Day: day, LimitQuantity: v}, nil
	}
	return nil, nil
}

func (m *memStore) SetDayLimit(o domain.DayLimitOverride) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.overrides[o.Day] = o.LimitQuantity
	return nil
}

func (m *memStore) GetConfig() (*domain.EconomyConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cfg, nil
}

func (m *memStore) SaveConfig(c domain.EconomyConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cfg = &c
	return nil
}

func paginate[T any](in []T, limit, offset int) []T {
	if offset >= len(in) {
		return nil
	}
	in = in[offset:]
	if limit > 0 && limit < len(in) {
		in = in[:limit]
	}
	return in
}

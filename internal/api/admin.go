package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/pufflog/pufflog/internal/domain"
)

// ─── Admin Handlers ─────────────────────────────────────────────────────────

// handleAdminListRequests lists requests by status (default PENDING).
func (s *Server) handleAdminListRequests(w http.ResponseWriter, r *http.Request) {
	status := domain.RequestStatus(r.URL.Query().Get("status"))
	if status == "" {
		status = domain.RequestPending
	}
	limit, offset := pagination(r)
	reqs, err := s.economy.ListRequests(status, limit, offset)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"requests": reqs})
}

func (s *Server) handleApproveRequest(w http.ResponseWriter, r *http.Request) {
	req, err := s.economy.ApproveRequest(currentUser(r), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"request": req})
}

func (s *Server) handleRejectRequest(w http.ResponseWriter, r *http.Request) {
	req, err := s.economy.RejectRequest(currentUser(r), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"request": req})
}

// handleAdminListRedemptions lists redemptions by status (default PENDING).
func (s *Server) handleAdminListRedemptions(w http.ResponseWriter, r *http.Request) {
	status := domain.RedemptionStatus(r.URL.Query().Get("status"))
	if status == "" {
		status = domain.RedemptionPending
	}
	limit, offset := pagination(r)
	reds, err := s.economy.ListRedemptions(status, limit, offset)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"redemptions": reds})
}

func (s *Server) handleValidateRedemption(w http.ResponseWriter, r *http.Request) {
	red, err := s.economy.ValidateRedemption(currentUser(r), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"redemption": red})
}

func (s *Server) handleRejectRedemption(w http.ResponseWriter, r *http.Request) {
	red, err := s.economy.RejectRedemption(currentUser(r), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"redemption": red})
}

// ─── Config & Limits ────────────────────────────────────────────────────────

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.economy.LoadConfig()
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (s *Server) handleUpdateConfig(w http.ResponseWriter, r *http.Request) {
	var cfg domain.EconomyConfig
	if err := decodeBody(r, &cfg); err != nil {
		writeError(w, http.StatusBadRequest, "malformed body")
		return
	}
	if err := s.economy.UpdateConfig(currentUser(r), cfg); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

// handleSetDayLimit pins the shared budget for one day.
func (s *Server) handleSetDayLimit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Limit float64 `json:"limit"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed body")
		return
	}
	day := chi.URLParam(r, "day")
	if err := s.economy.SetDayLimit(currentUser(r), day, req.Limit); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"day": day, "limit": req.Limit})
}

// ─── Catalog Administration ─────────────────────────────────────────────────

func (s *Server) handleCreateReward(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title      string `json:"title"`
		CostXp     int64  `json:"cost_xp"`
		DailyLimit int    `json:"daily_limit"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed body")
		return
	}
	reward, err := s.economy.CreateReward(currentUser(r), req.Title, req.CostXp, req.DailyLimit)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, reward)
}

func (s *Server) handleSetRewardActive(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Active bool `json:"active"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed body")
		return
	}
	if err := s.economy.SetRewardActive(currentUser(r), chi.URLParam(r, "id"), req.Active); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleCreateMission adds a catalog mission. Members pick it up next time
// their instances are ensured.
func (s *Server) handleCreateMission(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title         string  `json:"title"`
		Kind          string  `json:"kind"`
		ConditionType string  `json:"condition_type"`
		TargetValue   float64 `json:"target_value"`
		XpReward      int64   `json:"xp_reward"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed body")
		return
	}
	m, err := s.missions.CreateMission(currentUser(r), req.Title,
		domain.MissionKind(req.Kind), domain.ConditionType(req.ConditionType),
		req.TargetValue, req.XpReward)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

// ─── User Administration ────────────────────────────────────────────────────

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.users.ListUsers()
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"users": users})
}

// handleCreateUser provisions an account. The welcome bonus is granted
// exactly once per account.
func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if err := decodeBody(r, &req); err != nil || req.Name == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "name and password required")
		return
	}
	role := domain.RoleMember
	if req.Role == string(domain.RoleAdmin) {
		role = domain.RoleAdmin
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	user, err := s.economy.ProvisionUser(req.Name, string(hash), role)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// handleManualAdjustment credits or debits a user's ledger directly.
func (s *Server) handleManualAdjustment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Delta int64  `json:"delta"`
		Note  string `json:"note"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed body")
		return
	}
	userID := chi.URLParam(r, "id")
	balance, err := s.economy.ManualAdjustment(currentUser(r), userID, req.Delta, req.Note)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"user_id": userID, "balance": balance})
}

// handleBackdatedConsumption records an approved consumption for a past day,
// for entries that never went through the request flow.
func (s *Server) handleBackdatedConsumption(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Day     string  `json:"day"`
		Amount  float64 `json:"amount"`
		XpDebit int64   `json:"xp_debit"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed body")
		return
	}
	created, err := s.economy.BackdatedConsumption(currentUser(r), chi.URLParam(r, "id"), req.Day, req.Amount, req.XpDebit)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"request": created})
}

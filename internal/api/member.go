package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pufflog/pufflog/internal/domain"
)

// ─── Member Handlers ────────────────────────────────────────────────────────

// handleSubmitRequest creates a consumption request for the caller. The XP
// cost, if any, is debited immediately.
func (s *Server) handleSubmitRequest(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount          float64 `json:"amount"`
		ReasonPrimary   string  `json:"reason_primary"`
		ReasonSecondary string  `json:"reason_secondary"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed body")
		return
	}

	res, err := s.economy.SubmitRequest(currentUser(r), req.Amount, req.ReasonPrimary, req.ReasonSecondary)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"request":        res.Request,
		"quote":          res.Quote,
		"coupon_display": domain.FormatCouponCode(res.Request.CouponCode),
	})
}

// handleMyRequests lists the caller's own requests, newest first.
func (s *Server) handleMyRequests(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	reqs, err := s.economy.ListRequestsForUser(currentUser(r).ID, limit, offset)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"requests": reqs})
}

// handleDashboard returns today's consumption summary for the caller.
// Building it also grants the daily allowance when that is enabled.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := s.economy.BuildDashboard(currentUser(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// handleMissions returns the caller's mission board. Reading it finalizes
// any elapsed periods first, paying pending awards.
func (s *Server) handleMissions(w http.ResponseWriter, r *http.Request) {
	board, err := s.missions.Board(currentUser(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"missions": board})
}

// handleLedger returns the caller's XP history, newest first.
func (s *Server) handleLedger(w http.ResponseWriter, r *http.Request) {
	limit, _ := pagination(r)
	user := currentUser(r)
	entries, err := s.economy.History(user.ID, limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	balance, err := s.economy.Balance(user.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"balance": balance,
		"entries": entries,
	})
}

// handleListRewards lists the active reward catalog.
func (s *Server) handleListRewards(w http.ResponseWriter, r *http.Request) {
	rewards, err := s.economy.ListRewards(true)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"rewards": rewards})
}

// handleRedeem claims a reward for the caller.
func (s *Server) handleRedeem(w http.ResponseWriter, r *http.Request) {
	red, err := s.economy.Redeem(currentUser(r), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"redemption":     red,
		"coupon_display": domain.FormatCouponCode(red.CouponCode),
	})
}

// handleResolveCoupon looks a coupon code up. Members only see their own;
// admins see everything.
func (s *Server) handleResolveCoupon(w http.ResponseWriter, r *http.Request) {
	res, err := s.economy.ResolveCoupon(currentUser(r), chi.URLParam(r, "code"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

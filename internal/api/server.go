// Package api provides the HTTP server for Pufflog.
// All state-changing routes sit behind bearer-token sessions; admin routes
// additionally require the ADMIN role.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pufflog/pufflog/internal/app/economy"
	"github.com/pufflog/pufflog/internal/app/missions"
	"github.com/pufflog/pufflog/internal/domain"
)

// SessionStore is the session lifecycle the API needs on top of token
// resolution.
type SessionStore interface {
	domain.SessionProvider
	CreateSession(token, userID string, ttl time.Duration) error
	DeleteSession(token string) error
}

// Server is the Pufflog HTTP API server.
type Server struct {
	economy  *economy.Service
	missions *missions.Evaluator
	users    domain.UserStore
	sessions SessionStore

	sessionTTL     time.Duration
	metricsEnabled bool
}

// NewServer creates a new API server.
func NewServer(svc *economy.Service, ev *missions.Evaluator, users domain.UserStore, sessions SessionStore) *Server {
	return &Server{
		economy:    svc,
		missions:   ev,
		users:      users,
		sessions:   sessions,
		sessionTTL: 30 * 24 * time.Hour,
	}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(corsMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "ok",
		})
	})

	r.Post("/api/login", s.handleLogin)

	r.Route("/api", func(r chi.Router) {
		r.Use(s.authMiddleware)

		r.Post("/logout", s.handleLogout)
		r.Get("/me", s.handleMe)
		r.Get("/dashboard", s.handleDashboard)
		r.Get("/missions", s.handleMissions)
		r.Get("/ledger", s.handleLedger)

		r.Post("/requests", s.handleSubmitRequest)
		r.Get("/requests", s.handleMyRequests)

		r.Get("/rewards", s.handleListRewards)
		r.Post("/rewards/{id}/redeem", s.handleRedeem)

		r.Get("/coupons/{code}", s.handleResolveCoupon)

		r.Route("/admin", func(r chi.Router) {
			r.Use(s.requireAdmin)

			r.Get("/requests", s.handleAdminListRequests)
			r.Post("/requests/{id}/approve", s.handleApproveRequest)
			r.Post("/requests/{id}/reject", s.handleRejectRequest)

			r.Get("/redemptions", s.handleAdminListRedemptions)
			r.Post("/redemptions/{id}/validate", s.handleValidateRedemption)
			r.Post("/redemptions/{id}/reject", s.handleRejectRedemption)

			r.Get("/config", s.handleGetConfig)
			r.Put("/config", s.handleUpdateConfig)
			r.Put("/limits/{day}", s.handleSetDayLimit)

			r.Post("/rewards", s.handleCreateReward)
			r.Put("/rewards/{id}/active", s.handleSetRewardActive)

			r.Post("/missions", s.handleCreateMission)

			r.Get("/users", s.handleListUsers)
			r.Post("/users", s.handleCreateUser)
			r.Post("/users/{id}/adjust", s.handleManualAdjustment)
			r.Post("/users/{id}/backfill", s.handleBackdatedConsumption)
		})
	})

	// Prometheus metrics endpoint
	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

// ─── Response Helpers ───────────────────────────────────────────────────────

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"message": msg,
			"type":    "error",
		},
	})
}

// writeDomainError maps domain errors to HTTP statuses. The insufficient-XP
// case carries its numbers so clients can render the shortfall.
func writeDomainError(w http.ResponseWriter, err error) {
	var insufficient *domain.InsufficientXpError
	if errors.As(err, &insufficient) {
		writeJSON(w, http.StatusConflict, map[string]interface{}{
			"error": map[string]interface{}{
				"message":   insufficient.Error(),
				"type":      "insufficient_xp",
				"required":  insufficient.Required,
				"balance":   insufficient.Balance,
				"shortfall": insufficient.Shortfall,
			},
		})
		return
	}

	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusForbidden, "not allowed")
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrAlreadyProcessed):
		writeError(w, http.StatusConflict, "already processed")
	case errors.Is(err, domain.ErrUserBlocked):
		writeError(w, http.StatusForbidden, "account is blocked")
	case errors.Is(err, domain.ErrRewardInactive):
		writeError(w, http.StatusConflict, "reward is not active")
	case errors.Is(err, domain.ErrRewardDailyLimit):
		writeError(w, http.StatusConflict, "daily redemption limit reached")
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "invalid input")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// decodeBody decodes a JSON request body into v.
func decodeBody(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

// pagination reads limit/offset query params with sane bounds.
func pagination(r *http.Request) (limit, offset int) {
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ = strconv.Atoi(r.URL.Query().Get("offset"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// corsMiddleware adds CORS headers for local development.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/trafficpulse/ads-tracker/internal/auth"
	"github.com/trafficpulse/ads-tracker/internal/config"
	"github.com/trafficpulse/ads-tracker/internal/database"
	"github.com/trafficpulse/ads-tracker/internal/metrics"
	"github.com/trafficpulse/ads-tracker/internal/middleware"
	"github.com/trafficpulse/ads-tracker/internal/models"
	"github.com/trafficpulse/ads-tracker/internal/tracker"
)

// Dependencies holds all external dependencies for the server.
type Dependencies struct {
	Config    *config.Config
	Logger    *zap.Logger
	Metrics   *metrics.Metrics
	DB        *database.PostgresDB
	Sessions  auth.SessionStore
	Dashboard *tracker.Dashboard
	Mutator   *tracker.Mutator
}

// Server wraps the tracker's HTTP handlers.
type Server struct {
	dashboard *tracker.Dashboard
	mutator   *tracker.Mutator
	sessions  auth.SessionStore
	db        *database.PostgresDB
	logger    *zap.Logger
	config    *config.Config
	metrics   *metrics.Metrics
}

// NewServer constructs a new http.Handler with all routes registered and the
// middleware chain applied.
func NewServer(deps *Dependencies) http.Handler {
	s := &Server{
		dashboard: deps.Dashboard,
		mutator:   deps.Mutator,
		sessions:  deps.Sessions,
		db:        deps.DB,
		logger:    deps.Logger,
		config:    deps.Config,
		metrics:   deps.Metrics,
	}

	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("/health", s.handleHealth)

	// Prometheus metrics
	if deps.Config.Metrics.Enabled {
		mux.Handle(deps.Config.Metrics.Path, metrics.Handler())
	}

	// Auth
	mux.HandleFunc("/api/login", s.handleLogin)
	mux.HandleFunc("/api/logout", s.handleLogout)

	// Dashboard
	mux.HandleFunc("/api/dashboard", s.handleDashboard)
	mux.HandleFunc("/api/refresh", s.handleRefresh)

	// Campaigns
	mux.HandleFunc("/api/campaigns", s.handleCampaigns)
	mux.HandleFunc("/api/campaigns/", s.handleCampaignAction)

	rateLimiter := middleware.NewRateLimitMiddleware(deps.Config.RateLimit, deps.Logger)
	rateLimiter.SetMetrics(deps.Metrics)

	var handler http.Handler = mux
	handler = middleware.NewSessionMiddleware(deps.Config.Auth, deps.Sessions, deps.Logger).Handler(handler)
	handler = rateLimiter.Handler(handler)
	handler = middleware.NewLoggingMiddleware(deps.Logger).Handler(handler)
	handler = middleware.NewRecoveryMiddleware(deps.Logger).Handler(handler)

	return handler
}

// ---- Health Check ----

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{"status": "ok"}
	if s.db != nil {
		if err := s.db.Health(r.Context()); err != nil {
			status["database"] = "unavailable"
		} else {
			status["database"] = "ok"
		}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(status)
}

// ---- Auth ----

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.errorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, "invalid json", http.StatusBadRequest)
		return
	}

	token, err := s.sessions.Login(r.Context(), req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidPassword) {
			s.logger.Warn("login rejected", zap.String("remote_addr", r.RemoteAddr))
			s.errorResponse(w, "invalid password", http.StatusUnauthorized)
			return
		}
		s.logger.Error("login failed", zap.Error(err))
		s.errorResponse(w, "internal error", http.StatusInternalServerError)
		return
	}

	s.jsonResponse(w, map[string]string{"token": token})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.errorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	token := middleware.SessionToken(r.Context())
	if token == "" {
		s.errorResponse(w, "no session", http.StatusUnauthorized)
		return
	}

	if err := s.sessions.Logout(r.Context(), token); err != nil {
		s.logger.Error("logout failed", zap.Error(err))
		s.errorResponse(w, "internal error", http.StatusInternalServerError)
		return
	}

	s.jsonResponse(w, map[string]string{"status": "ok"})
}

// ---- Dashboard ----

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.errorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	scope, preset, ok := s.scopeAndPeriod(w, r)
	if !ok {
		return
	}

	data, err := s.dashboard.Load(r.Context(), scope, preset)
	if err != nil {
		s.logger.Error("dashboard load failed", zap.Error(err))
		s.errorResponse(w, "internal error", http.StatusInternalServerError)
		return
	}

	s.jsonResponse(w, data)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.errorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	scope, preset, ok := s.scopeAndPeriod(w, r)
	if !ok {
		return
	}

	data, err := s.dashboard.Refresh(r.Context(), scope, preset)
	if err != nil {
		s.logger.Error("dashboard refresh failed", zap.Error(err))
		s.errorResponse(w, "internal error", http.StatusInternalServerError)
		return
	}

	s.jsonResponse(w, data)
}

// ---- Campaigns ----

func (s *Server) handleCampaigns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.errorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	scope, preset, ok := s.scopeAndPeriod(w, r)
	if !ok {
		return
	}

	campaigns, err := s.dashboard.Campaigns(r.Context(), scope, preset)
	if err != nil {
		s.logger.Error("failed to list campaigns", zap.Error(err))
		s.errorResponse(w, "failed to list campaigns", http.StatusBadGateway)
		return
	}

	if campaigns == nil {
		campaigns = []*models.Campaign{}
	}
	s.jsonResponse(w, campaigns)
}

// handleCampaignAction routes /api/campaigns/{id}/budget and
// /api/campaigns/{id}/status.
func (s *Server) handleCampaignAction(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/campaigns/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[0] == "" {
		http.NotFound(w, r)
		return
	}
	campaignID, action := parts[0], parts[1]

	if r.Method != http.MethodPost {
		s.errorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	switch action {
	case "budget":
		s.handleBudgetUpdate(w, r, campaignID)
	case "status":
		s.handleStatusUpdate(w, r, campaignID)
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) handleBudgetUpdate(w http.ResponseWriter, r *http.Request, campaignID string) {
	var req struct {
		DailyBudget int64  `json:"daily_budget"`
		Mode        string `json:"mode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, "invalid json", http.StatusBadRequest)
		return
	}

	mode, err := tracker.ParseBudgetMode(req.Mode)
	if err != nil {
		s.errorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.DailyBudget <= 0 {
		s.errorResponse(w, "daily_budget must be positive", http.StatusBadRequest)
		return
	}

	if err := s.mutator.UpdateBudget(r.Context(), campaignID, req.DailyBudget, mode); err != nil {
		s.errorResponse(w, err.Error(), http.StatusBadGateway)
		return
	}

	s.jsonResponse(w, map[string]interface{}{
		"campaign_id":  campaignID,
		"daily_budget": req.DailyBudget,
		"mode":         mode,
	})
}

func (s *Server) handleStatusUpdate(w http.ResponseWriter, r *http.Request, campaignID string) {
	var req struct {
		Active *bool `json:"active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, "invalid json", http.StatusBadRequest)
		return
	}
	if req.Active == nil {
		s.errorResponse(w, "active is required", http.StatusBadRequest)
		return
	}

	if err := s.mutator.SetActive(r.Context(), campaignID, *req.Active); err != nil {
		s.errorResponse(w, err.Error(), http.StatusBadGateway)
		return
	}

	s.jsonResponse(w, map[string]interface{}{
		"campaign_id": campaignID,
		"active":      *req.Active,
	})
}

// ---- Helpers ----

func (s *Server) scopeAndPeriod(w http.ResponseWriter, r *http.Request) (tracker.Scope, models.DatePreset, bool) {
	q := r.URL.Query()

	scope, err := tracker.ParseScope(q.Get("scope"))
	if err != nil {
		s.errorResponse(w, err.Error(), http.StatusBadRequest)
		return "", "", false
	}

	preset, err := models.ParseDatePreset(q.Get("period"))
	if err != nil {
		s.errorResponse(w, err.Error(), http.StatusBadRequest)
		return "", "", false
	}

	return scope, preset, true
}

func (s *Server) jsonResponse(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) errorResponse(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

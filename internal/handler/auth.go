package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/perkdeck/perkdeck/internal/domain"
	"github.com/perkdeck/perkdeck/internal/metrics"
	"github.com/perkdeck/perkdeck/internal/service"
)

// AuthHandler handles authentication-related HTTP requests.
type AuthHandler struct {
	auth    *service.AuthService
	logins  *service.LoginLimiter
	metrics *metrics.Metrics
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(auth *service.AuthService, logins *service.LoginLimiter, m *metrics.Metrics) *AuthHandler {
	return &AuthHandler{auth: auth, logins: logins, metrics: m}
}

// HandleRegister processes a JSON registration request.
// POST /auth/register
// Request:  {"name":"...","email":"...","password":"..."}
// Response: 201 {"token":"...","user":{...}}
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	user, token, err := h.auth.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			writeError(w, http.StatusConflict, "An account with that email already exists.")
			return
		}
		if errors.Is(err, domain.ErrInvalidInput) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		slog.Error("register user", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred. Please try again.")
		return
	}

	h.metrics.Registrations.Inc()
	writeJSON(w, http.StatusCreated, map[string]any{
		"token": token,
		"user":  toUserDTO(user),
	})
}

// HandleLogin processes a JSON login request. Each issued token is
// independent; logging in again does not invalidate earlier tokens.
// POST /auth/login
// Request:  {"email":"...","password":"..."}
// Response: 200 {"token":"...","user":{...}}
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	// Throttle per account so one address cannot be brute-forced.
	if !h.logins.Allow(service.NormalizeEmail(req.Email)) {
		h.metrics.Logins.WithLabelValues("rate_limited").Inc()
		writeError(w, http.StatusTooManyRequests, "Too many login attempts. Please try again later.")
		return
	}

	user, token, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			h.metrics.Logins.WithLabelValues("failure").Inc()
			writeError(w, http.StatusUnauthorized, "Invalid email or password.")
			return
		}
		slog.Error("login user", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred. Please try again.")
		return
	}

	h.metrics.Logins.WithLabelValues("success").Inc()
	writeJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"user":  toUserDTO(user),
	})
}

// HandleMe returns the currently authenticated user.
// GET /auth/me
// Response: 200 {"user":{...}} or 401
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"user": toUserDTO(user),
	})
}

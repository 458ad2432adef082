package handler

import (
	"net/http"

	"github.com/perkdeck/perkdeck/internal/metrics"
	"github.com/perkdeck/perkdeck/internal/service"
)

// RegisterRoutes sets up all HTTP routes on the given mux.
func RegisterRoutes(mux *http.ServeMux, auth *service.AuthService, perks *service.PerkService, logins *service.LoginLimiter, m *metrics.Metrics) {
	authHandler := NewAuthHandler(auth, logins, m)
	perkHandler := NewPerkHandler(perks)

	mux.HandleFunc("GET /healthz", HandleHealthz)
	mux.Handle("GET /metrics", m.Handler())

	mux.HandleFunc("POST /auth/register", authHandler.HandleRegister)
	mux.HandleFunc("POST /auth/login", authHandler.HandleLogin)
	mux.Handle("GET /auth/me", RequireAuth(auth, http.HandlerFunc(authHandler.HandleMe)))

	// The perk catalog is only available to signed-in users.
	mux.Handle("GET /perks", RequireAuth(auth, http.HandlerFunc(perkHandler.HandleList)))
	mux.Handle("GET /perks/merchants", RequireAuth(auth, http.HandlerFunc(perkHandler.HandleMerchants)))
	mux.Handle("GET /perks/{id}", RequireAuth(auth, http.HandlerFunc(perkHandler.HandleGet)))
}

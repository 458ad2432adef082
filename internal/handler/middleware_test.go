package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/perkdeck/perkdeck/internal/handler"
	"github.com/perkdeck/perkdeck/internal/metrics"
	"github.com/perkdeck/perkdeck/internal/repository/sqlite"
	"github.com/perkdeck/perkdeck/internal/service"
)

const testJWTSecret = "test-secret-for-handler-tests-32b"

func newTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := sqlite.New(dbPath)
	if err != nil {
		t.Fatalf("New DB: %v", err)
	}
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestServices(t *testing.T) (*service.AuthService, *service.PerkService, *service.LoginLimiter, *metrics.Metrics) {
	t.Helper()
	db := newTestDB(t)

	auth := service.NewAuthService(db.Users(), testJWTSecret, 4, time.Hour, 8)
	perks := service.NewPerkService(db.Perks())
	logins := service.NewLoginLimiter(5, 5)
	return auth, perks, logins, metrics.New()
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	auth, perks, logins, m := newTestServices(t)

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, auth, perks, logins, m)
	return httptest.NewServer(mux)
}

func TestRequireAuth_ValidBearerToken(t *testing.T) {
	auth, _, _, _ := newTestServices(t)
	ctx := context.Background()

	_, token, err := auth.Register(ctx, "Valid User", "valid@example.com", "password123")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	var gotUser string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := handler.UserFromContext(r.Context())
		if user != nil {
			gotUser = user.Name
		}
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	handler.RequireAuth(auth, inner).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if gotUser != "Valid User" {
		t.Fatalf("expected user 'Valid User', got %q", gotUser)
	}
}

func TestRequireAuth_LowercaseScheme(t *testing.T) {
	auth, _, _, _ := newTestServices(t)

	_, token, err := auth.Register(context.Background(), "Lower", "lower@example.com", "password123")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "bearer "+token)
	w := httptest.NewRecorder()

	handler.RequireAuth(auth, inner).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("scheme should be case-insensitive, got %d", w.Code)
	}
}

func TestRequireAuth_MissingHeader(t *testing.T) {
	auth, _, _, _ := newTestServices(t)

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("inner handler should not be called")
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	w := httptest.NewRecorder()

	handler.RequireAuth(auth, inner).ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestRequireAuth_MalformedHeader(t *testing.T) {
	auth, _, _, _ := newTestServices(t)

	tests := []struct {
		name   string
		header string
	}{
		{"no scheme", "sometoken"},
		{"wrong scheme", "Basic dXNlcjpwYXNz"},
		{"empty token", "Bearer "},
		{"garbage token", "Bearer not.a.jwt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Fatal("inner handler should not be called")
			})

			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			req.Header.Set("Authorization", tt.header)
			w := httptest.NewRecorder()

			handler.RequireAuth(auth, inner).ServeHTTP(w, req)

			if w.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", w.Code)
			}
		})
	}
}

func TestRequireAuth_TamperedToken(t *testing.T) {
	auth, _, _, _ := newTestServices(t)

	_, token, err := auth.Register(context.Background(), "Tamper", "tamper@example.com", "password123")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	tampered := token[:len(token)-1] + "X"

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("inner handler should not be called")
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+tampered)
	w := httptest.NewRecorder()

	handler.RequireAuth(auth, inner).ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestRequireAuth_DeletedUser(t *testing.T) {
	db := newTestDB(t)
	auth := service.NewAuthService(db.Users(), testJWTSecret, 4, time.Hour, 8)

	user, token, err := auth.Register(context.Background(), "Ghost", "ghost@example.com", "password123")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	// A token can outlive its account. Once the row is gone the token
	// must stop working.
	if _, err := db.SqlDB.Exec("DELETE FROM users WHERE id = ?", user.ID); err != nil {
		t.Fatalf("delete user: %v", err)
	}

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("inner handler should not be called")
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	handler.RequireAuth(auth, inner).ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestSecurityHeaders(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()

	handler.SecurityHeaders(inner).ServeHTTP(w, req)

	headers := map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
		"Referrer-Policy":        "no-referrer",
	}
	for name, want := range headers {
		if got := w.Header().Get(name); got != want {
			t.Errorf("%s = %q, want %q", name, got, want)
		}
	}
}

func TestRequestLogging_SetsRequestID(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()

	handler.RequestLogging(inner).ServeHTTP(w, req)

	requestID := w.Header().Get("X-Request-ID")
	if requestID == "" {
		t.Fatal("expected X-Request-ID header to be set")
	}
	if len(requestID) != 36 {
		t.Fatalf("expected a UUID, got %q", requestID)
	}
}

func TestRequestMetrics_RecordsRoutePattern(t *testing.T) {
	m := metrics.New()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /ping/{name}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	wrapped := handler.RequestMetrics(m, mux)

	wrapped.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ping/alpha", nil))
	wrapped.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope", nil))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()

	// The path label is the registered route pattern, not the raw URL.
	if !strings.Contains(body, `http_requests_total{method="GET",path="/ping/{name}",status="204"} 1`) {
		t.Errorf("metrics output missing route counter, got:\n%s", body)
	}
	if !strings.Contains(body, `path="unmatched"`) {
		t.Errorf("metrics output missing unmatched label, got:\n%s", body)
	}
	if strings.Contains(body, `path="/ping/alpha"`) {
		t.Error("raw URL must not be used as the path label")
	}
}

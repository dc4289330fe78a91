package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hitoshi/pomoman/internal/middleware"
	"github.com/hitoshi/pomoman/internal/model"
)

// mockSessionFinder はテスト用のSessionFinder実装。
type mockSessionFinder struct {
	sessions map[string]*model.Session
}

func (m *mockSessionFinder) FindByID(ctx context.Context, id string) (*model.Session, error) {
	if s, ok := m.sessions[id]; ok {
		return s, nil
	}
	return nil, nil
}

func newTestRouter() http.Handler {
	finder := &mockSessionFinder{
		sessions: map[string]*model.Session{
			"valid-session": {
				ID:        "valid-session",
				UserID:    "user-123",
				ExpiresAt: time.Now().Add(time.Hour),
			},
		},
	}

	return NewRouter(&RouterDeps{
		SessionFinder:     finder,
		CORSAllowedOrigin: "http://localhost:3000",
		RateLimiter:       middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig()),

		AuthService: &mockAuthService{},
		AuthConfig:  testAuthConfig(),

		TaskService:     &mockTaskService{},
		PomodoroService: &mockPomodoroService{},
	})
}

func TestRouter_Index_IsPublic(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("GET / status = %d, want %d", w.Code, http.StatusOK)
	}
	body := decodeBody(t, w)
	if _, ok := body["endpoints"]; !ok {
		t.Error("index should list available endpoints")
	}
}

func TestRouter_Health_IsPublic(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("GET /health status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestRouter_AuthRoutes_ArePublic(t *testing.T) {
	router := newTestRouter()

	tests := []struct {
		method string
		path   string
		body   string
		want   int
	}{
		{http.MethodPost, "/register", `{"email":"new@example.com","password":"secret123"}`, http.StatusCreated},
		{http.MethodPost, "/login", `{"email":"test@example.com","password":"secret123"}`, http.StatusOK},
		{http.MethodGet, "/logout", "", http.StatusOK},
		{http.MethodPost, "/logout", "", http.StatusOK},
		{http.MethodGet, "/auth/google", "", http.StatusTemporaryRedirect},
	}
	for _, tt := range tests {
		var req *http.Request
		if tt.body != "" {
			req = httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
		} else {
			req = httptest.NewRequest(tt.method, tt.path, nil)
		}
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != tt.want {
			t.Errorf("%s %s status = %d, want %d", tt.method, tt.path, w.Code, tt.want)
		}
	}
}

func TestRouter_ProtectedRoutes_RequireSession(t *testing.T) {
	router := newTestRouter()

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/user"},
		{http.MethodGet, "/api/tasks"},
		{http.MethodPost, "/api/tasks"},
		{http.MethodPut, "/api/tasks/task-1"},
		{http.MethodDelete, "/api/tasks/task-1"},
		{http.MethodPost, "/api/pomodoro/start"},
		{http.MethodPost, "/api/pomodoro/end"},
		{http.MethodGet, "/api/pomodoro/statistics"},
	}
	for _, tt := range paths {
		req := httptest.NewRequest(tt.method, tt.path, nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s %s without session status = %d, want %d", tt.method, tt.path, w.Code, http.StatusUnauthorized)
		}
	}
}

func TestRouter_ProtectedRoute_WithValidSession_Succeeds(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "valid-session"})
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("GET /api/tasks with session status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestRouter_ProtectedRoute_WithExpiredSession_ReturnsUnauthorized(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "unknown-session"})
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestRouter_SecurityHeaders_Applied(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q, want nosniff", got)
	}
}

func TestRouter_CORSPreflight(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodOptions, "/api/tasks", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Access-Control-Allow-Origin = %q, want allowed origin", got)
	}
}

package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hitoshi/pomoman/internal/model"
)

// --- モック定義 ---

type mockAuthService struct {
	registerFn             func(ctx context.Context, email, password string) (*model.User, *model.Session, error)
	loginFn                func(ctx context.Context, email, password string) (*model.User, *model.Session, error)
	getGoogleLoginURLFn    func(state string) string
	handleGoogleCallbackFn func(ctx context.Context, code string) (*model.User, *model.Session, error)
	logoutFn               func(ctx context.Context, sessionID string) error
	getCurrentUserFn       func(ctx context.Context, sessionID string) (*model.User, error)
}

func (m *mockAuthService) Register(ctx context.Context, email, password string) (*model.User, *model.Session, error) {
	if m.registerFn != nil {
		return m.registerFn(ctx, email, password)
	}
	return testUserAndSession()
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (*model.User, *model.Session, error) {
	if m.loginFn != nil {
		return m.loginFn(ctx, email, password)
	}
	return testUserAndSession()
}

func (m *mockAuthService) GetGoogleLoginURL(state string) string {
	if m.getGoogleLoginURLFn != nil {
		return m.getGoogleLoginURLFn(state)
	}
	return "https://accounts.google.com/o/oauth2/v2/auth?state=" + state
}

func (m *mockAuthService) HandleGoogleCallback(ctx context.Context, code string) (*model.User, *model.Session, error) {
	if m.handleGoogleCallbackFn != nil {
		return m.handleGoogleCallbackFn(ctx, code)
	}
	return testUserAndSession()
}

func (m *mockAuthService) Logout(ctx context.Context, sessionID string) error {
	if m.logoutFn != nil {
		return m.logoutFn(ctx, sessionID)
	}
	return nil
}

func (m *mockAuthService) GetCurrentUser(ctx context.Context, sessionID string) (*model.User, error) {
	if m.getCurrentUserFn != nil {
		return m.getCurrentUserFn(ctx, sessionID)
	}
	return nil, nil
}

var _ AuthServiceInterface = (*mockAuthService)(nil)

func testUserAndSession() (*model.User, *model.Session, error) {
	return &model.User{
			ID:        "user-123",
			Email:     "test@example.com",
			CreatedAt: time.Now().UTC(),
		}, &model.Session{
			ID:        "session-123",
			UserID:    "user-123",
			ExpiresAt: time.Now().Add(24 * time.Hour),
		}, nil
}

func testAuthConfig() AuthHandlerConfig {
	return AuthHandlerConfig{
		BaseURL:       "http://localhost:3000",
		SessionMaxAge: 86400,
	}
}

// findCookie はレスポンスから名前指定でCookieを取り出すヘルパー。
func findCookie(t *testing.T, w *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// --- POST /register ---

func TestAuthHandler_Register_Success_SetsSessionCookie(t *testing.T) {
	svc := &mockAuthService{
		registerFn: func(ctx context.Context, email, password string) (*model.User, *model.Session, error) {
			if email != "new@example.com" {
				t.Errorf("email = %q, want %q", email, "new@example.com")
			}
			return testUserAndSession()
		},
	}
	h := NewAuthHandler(svc, testAuthConfig())

	req := httptest.NewRequest(http.MethodPost, "/register",
		strings.NewReader(`{"email":"new@example.com","password":"secret123"}`))
	w := httptest.NewRecorder()

	h.Register(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("status = %d, want %d", w.Code, http.StatusCreated)
	}

	cookie := findCookie(t, w, "session_id")
	if cookie == nil {
		t.Fatal("expected session_id cookie to be set")
	}
	if cookie.Value != "session-123" {
		t.Errorf("cookie value = %q, want %q", cookie.Value, "session-123")
	}
	if !cookie.HttpOnly {
		t.Error("session cookie should be HttpOnly")
	}

	body := decodeBody(t, w)
	if body["success"] != true {
		t.Error("expected success=true")
	}
	user, ok := body["user"].(map[string]interface{})
	if !ok {
		t.Fatal("expected user object in response")
	}
	if user["email"] != "test@example.com" {
		t.Errorf("user email = %v, want test@example.com", user["email"])
	}
	if _, exists := user["password_hash"]; exists {
		t.Error("response should never contain password_hash")
	}
}

func TestAuthHandler_Register_EmailTaken_ReturnsConflict(t *testing.T) {
	svc := &mockAuthService{
		registerFn: func(ctx context.Context, email, password string) (*model.User, *model.Session, error) {
			return nil, nil, model.NewEmailTakenError()
		},
	}
	h := NewAuthHandler(svc, testAuthConfig())

	req := httptest.NewRequest(http.MethodPost, "/register",
		strings.NewReader(`{"email":"taken@example.com","password":"secret123"}`))
	w := httptest.NewRecorder()

	h.Register(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want %d", w.Code, http.StatusConflict)
	}
	body := decodeBody(t, w)
	if body["code"] != model.ErrCodeEmailTaken {
		t.Errorf("code = %v, want %s", body["code"], model.ErrCodeEmailTaken)
	}
}

func TestAuthHandler_Register_InvalidJSON_ReturnsBadRequest(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, testAuthConfig())

	req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(`not-json`))
	w := httptest.NewRecorder()

	h.Register(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

// --- POST /login ---

func TestAuthHandler_Login_WithRemember_SetsPersistentCookie(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, testAuthConfig())

	req := httptest.NewRequest(http.MethodPost, "/login",
		strings.NewReader(`{"email":"test@example.com","password":"secret123","remember":true}`))
	w := httptest.NewRecorder()

	h.Login(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	cookie := findCookie(t, w, "session_id")
	if cookie == nil {
		t.Fatal("expected session_id cookie")
	}
	if cookie.MaxAge != 86400 {
		t.Errorf("cookie MaxAge = %d, want 86400 for remembered login", cookie.MaxAge)
	}
}

func TestAuthHandler_Login_WithoutRemember_SetsSessionScopedCookie(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, testAuthConfig())

	req := httptest.NewRequest(http.MethodPost, "/login",
		strings.NewReader(`{"email":"test@example.com","password":"secret123"}`))
	w := httptest.NewRecorder()

	h.Login(w, req)

	cookie := findCookie(t, w, "session_id")
	if cookie == nil {
		t.Fatal("expected session_id cookie")
	}
	// rememberなしはブラウザセッション限り（Max-Age未設定）
	if cookie.MaxAge != 0 {
		t.Errorf("cookie MaxAge = %d, want 0 for non-remembered login", cookie.MaxAge)
	}
}

func TestAuthHandler_Login_InvalidCredentials_ReturnsUnauthorized(t *testing.T) {
	svc := &mockAuthService{
		loginFn: func(ctx context.Context, email, password string) (*model.User, *model.Session, error) {
			return nil, nil, model.NewInvalidCredentialsError()
		},
	}
	h := NewAuthHandler(svc, testAuthConfig())

	req := httptest.NewRequest(http.MethodPost, "/login",
		strings.NewReader(`{"email":"test@example.com","password":"wrong"}`))
	w := httptest.NewRecorder()

	h.Login(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
	if findCookie(t, w, "session_id") != nil {
		t.Error("failed login should not set a session cookie")
	}
}

// --- GET /auth/google ---

func TestAuthHandler_GoogleLogin_RedirectsWithStateCookie(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, testAuthConfig())

	req := httptest.NewRequest(http.MethodGet, "/auth/google", nil)
	w := httptest.NewRecorder()

	h.GoogleLogin(w, req)

	if w.Code != http.StatusTemporaryRedirect {
		t.Errorf("status = %d, want %d", w.Code, http.StatusTemporaryRedirect)
	}

	stateCookie := findCookie(t, w, "oauth_state")
	if stateCookie == nil || stateCookie.Value == "" {
		t.Fatal("expected oauth_state cookie to be set")
	}

	location := w.Header().Get("Location")
	if !strings.Contains(location, "state="+stateCookie.Value) {
		t.Errorf("redirect URL should carry the state cookie value, got %q", location)
	}
}

// --- GET /auth/google/callback ---

func TestAuthHandler_GoogleCallback_Success_RedirectsToBaseURL(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, testAuthConfig())

	req := httptest.NewRequest(http.MethodGet, "/auth/google/callback?code=auth-code&state=valid-state", nil)
	req.AddCookie(&http.Cookie{Name: "oauth_state", Value: "valid-state"})
	w := httptest.NewRecorder()

	h.GoogleCallback(w, req)

	if w.Code != http.StatusTemporaryRedirect {
		t.Errorf("status = %d, want %d", w.Code, http.StatusTemporaryRedirect)
	}
	if location := w.Header().Get("Location"); location != "http://localhost:3000" {
		t.Errorf("redirect = %q, want base URL", location)
	}
	if cookie := findCookie(t, w, "session_id"); cookie == nil || cookie.Value != "session-123" {
		t.Error("expected session cookie after successful callback")
	}
}

func TestAuthHandler_GoogleCallback_StateMismatch_ReturnsBadRequest(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, testAuthConfig())

	req := httptest.NewRequest(http.MethodGet, "/auth/google/callback?code=auth-code&state=attacker-state", nil)
	req.AddCookie(&http.Cookie{Name: "oauth_state", Value: "valid-state"})
	w := httptest.NewRecorder()

	h.GoogleCallback(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestAuthHandler_GoogleCallback_MissingCode_ReturnsBadRequest(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, testAuthConfig())

	req := httptest.NewRequest(http.MethodGet, "/auth/google/callback?state=valid-state", nil)
	req.AddCookie(&http.Cookie{Name: "oauth_state", Value: "valid-state"})
	w := httptest.NewRecorder()

	h.GoogleCallback(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

// --- /logout ---

func TestAuthHandler_Logout_DeletesSessionAndClearsCookie(t *testing.T) {
	var deletedSessionID string
	svc := &mockAuthService{
		logoutFn: func(ctx context.Context, sessionID string) error {
			deletedSessionID = sessionID
			return nil
		},
	}
	h := NewAuthHandler(svc, testAuthConfig())

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "session-123"})
	w := httptest.NewRecorder()

	h.Logout(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if deletedSessionID != "session-123" {
		t.Errorf("deleted session = %q, want %q", deletedSessionID, "session-123")
	}

	cookie := findCookie(t, w, "session_id")
	if cookie == nil || cookie.MaxAge != -1 {
		t.Error("expected session cookie to be cleared (MaxAge=-1)")
	}

	body := decodeBody(t, w)
	if body["success"] != true {
		t.Error("expected success=true")
	}
}

func TestAuthHandler_Logout_WithoutCookie_StillSucceeds(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, testAuthConfig())

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	w := httptest.NewRecorder()

	h.Logout(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
}

// --- GET /api/user ---

func TestAuthHandler_Me_ReturnsCurrentUser(t *testing.T) {
	googleID := "google-123"
	svc := &mockAuthService{
		getCurrentUserFn: func(ctx context.Context, sessionID string) (*model.User, error) {
			if sessionID != "session-123" {
				t.Errorf("sessionID = %q, want %q", sessionID, "session-123")
			}
			return &model.User{
				ID:       "user-123",
				Email:    "test@example.com",
				GoogleID: &googleID,
			}, nil
		},
	}
	h := NewAuthHandler(svc, testAuthConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/user", nil)
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "session-123"})
	w := httptest.NewRecorder()

	h.Me(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	body := decodeBody(t, w)
	user, ok := body["user"].(map[string]interface{})
	if !ok {
		t.Fatal("expected user object in response")
	}
	if user["has_google_auth"] != true {
		t.Error("expected has_google_auth=true")
	}
}

func TestAuthHandler_Me_WithoutCookie_ReturnsUnauthorized(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, testAuthConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/user", nil)
	w := httptest.NewRecorder()

	h.Me(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

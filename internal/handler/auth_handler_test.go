package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hitoshi/cardfolio/internal/model"
)

// --- モック定義 ---

type mockAuthService struct {
	getLoginURLFn    func(state string) string
	handleCallbackFn func(ctx context.Context, code string) (*model.Session, error)
	logoutFn         func(ctx context.Context, sessionID string) error
	getCurrentUserFn func(ctx context.Context, sessionID string) (*model.User, error)
}

func (m *mockAuthService) GetLoginURL(state string) string {
	if m.getLoginURLFn != nil {
		return m.getLoginURLFn(state)
	}
	return "https://accounts.google.com/o/oauth2/auth?state=" + state
}

func (m *mockAuthService) HandleCallback(ctx context.Context, code string) (*model.Session, error) {
	return m.handleCallbackFn(ctx, code)
}

func (m *mockAuthService) Logout(ctx context.Context, sessionID string) error {
	if m.logoutFn != nil {
		return m.logoutFn(ctx, sessionID)
	}
	return nil
}

func (m *mockAuthService) GetCurrentUser(ctx context.Context, sessionID string) (*model.User, error) {
	return m.getCurrentUserFn(ctx, sessionID)
}

func testAuthConfig() AuthHandlerConfig {
	return AuthHandlerConfig{
		BaseURL:       "http://localhost:3000",
		CookieSecure:  false,
		SessionMaxAge: 86400,
	}
}

func findCookie(resp *http.Response, name string) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// --- Login ---

func TestLogin_SetsStateCookieAndRedirects(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, testAuthConfig())

	req := httptest.NewRequest(http.MethodGet, "/auth/google/login", nil)
	w := httptest.NewRecorder()
	h.Login(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusTemporaryRedirect {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusTemporaryRedirect)
	}

	stateCookie := findCookie(resp, "oauth_state")
	if stateCookie == nil || stateCookie.Value == "" {
		t.Fatal("expected oauth_state cookie")
	}
	if !stateCookie.HttpOnly {
		t.Error("oauth_state cookie should be HttpOnly")
	}

	// リダイレクト先にstateが含まれること
	location := resp.Header.Get("Location")
	if location == "" {
		t.Fatal("expected Location header")
	}
}

// --- Callback ---

func TestCallback_ValidCodeAndState_SetsSessionCookie(t *testing.T) {
	service := &mockAuthService{
		handleCallbackFn: func(ctx context.Context, code string) (*model.Session, error) {
			if code != "auth-code" {
				t.Errorf("code = %q, want %q", code, "auth-code")
			}
			return &model.Session{
				ID:        "new-session-id",
				UserID:    1,
				ExpiresAt: time.Now().Add(24 * time.Hour),
			}, nil
		},
	}
	h := NewAuthHandler(service, testAuthConfig())

	req := httptest.NewRequest(http.MethodGet, "/auth/google/callback?code=auth-code&state=state-123", nil)
	req.AddCookie(&http.Cookie{Name: "oauth_state", Value: "state-123"})
	w := httptest.NewRecorder()
	h.Callback(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusTemporaryRedirect {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusTemporaryRedirect)
	}

	sessionCookie := findCookie(resp, "session_id")
	if sessionCookie == nil || sessionCookie.Value != "new-session-id" {
		t.Fatal("expected session_id cookie with session ID")
	}
	if !sessionCookie.HttpOnly {
		t.Error("session_id cookie should be HttpOnly")
	}

	if location := resp.Header.Get("Location"); location != "http://localhost:3000" {
		t.Errorf("Location = %q, want %q", location, "http://localhost:3000")
	}
}

func TestCallback_StateMismatch_Returns400(t *testing.T) {
	service := &mockAuthService{
		handleCallbackFn: func(ctx context.Context, code string) (*model.Session, error) {
			t.Fatal("service should not be called")
			return nil, nil
		},
	}
	h := NewAuthHandler(service, testAuthConfig())

	req := httptest.NewRequest(http.MethodGet, "/auth/google/callback?code=auth-code&state=tampered", nil)
	req.AddCookie(&http.Cookie{Name: "oauth_state", Value: "state-123"})
	w := httptest.NewRecorder()
	h.Callback(w, req)

	if w.Result().StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusBadRequest)
	}
}

func TestCallback_MissingStateCookie_Returns400(t *testing.T) {
	service := &mockAuthService{
		handleCallbackFn: func(ctx context.Context, code string) (*model.Session, error) {
			t.Fatal("service should not be called")
			return nil, nil
		},
	}
	h := NewAuthHandler(service, testAuthConfig())

	req := httptest.NewRequest(http.MethodGet, "/auth/google/callback?code=auth-code&state=state-123", nil)
	w := httptest.NewRecorder()
	h.Callback(w, req)

	if w.Result().StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusBadRequest)
	}
}

func TestCallback_MissingCode_Returns400(t *testing.T) {
	service := &mockAuthService{
		handleCallbackFn: func(ctx context.Context, code string) (*model.Session, error) {
			t.Fatal("service should not be called")
			return nil, nil
		},
	}
	h := NewAuthHandler(service, testAuthConfig())

	req := httptest.NewRequest(http.MethodGet, "/auth/google/callback?state=state-123", nil)
	req.AddCookie(&http.Cookie{Name: "oauth_state", Value: "state-123"})
	w := httptest.NewRecorder()
	h.Callback(w, req)

	if w.Result().StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusBadRequest)
	}
}

func TestCallback_ServiceError_Returns500(t *testing.T) {
	service := &mockAuthService{
		handleCallbackFn: func(ctx context.Context, code string) (*model.Session, error) {
			return nil, errors.New("token exchange failed")
		},
	}
	h := NewAuthHandler(service, testAuthConfig())

	req := httptest.NewRequest(http.MethodGet, "/auth/google/callback?code=auth-code&state=state-123", nil)
	req.AddCookie(&http.Cookie{Name: "oauth_state", Value: "state-123"})
	w := httptest.NewRecorder()
	h.Callback(w, req)

	if w.Result().StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusInternalServerError)
	}
}

// --- Logout ---

func TestLogout_ClearsSessionCookie(t *testing.T) {
	var deletedSessionID string
	service := &mockAuthService{
		logoutFn: func(ctx context.Context, sessionID string) error {
			deletedSessionID = sessionID
			return nil
		},
	}
	h := NewAuthHandler(service, testAuthConfig())

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "active-session"})
	w := httptest.NewRecorder()
	h.Logout(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusTemporaryRedirect {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusTemporaryRedirect)
	}

	if deletedSessionID != "active-session" {
		t.Errorf("deleted session = %q, want %q", deletedSessionID, "active-session")
	}

	cleared := findCookie(resp, "session_id")
	if cleared == nil || cleared.MaxAge != -1 {
		t.Error("expected session_id cookie to be cleared")
	}
}

func TestLogout_NoCookie_StillRedirects(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, testAuthConfig())

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	w := httptest.NewRecorder()
	h.Logout(w, req)

	if w.Result().StatusCode != http.StatusTemporaryRedirect {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusTemporaryRedirect)
	}
}

// --- Me ---

func TestMe_ValidSession_ReturnsUser(t *testing.T) {
	service := &mockAuthService{
		getCurrentUserFn: func(ctx context.Context, sessionID string) (*model.User, error) {
			return &model.User{ID: 5, Email: "hanako@example.com"}, nil
		},
	}
	h := NewAuthHandler(service, testAuthConfig())

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "valid-session"})
	w := httptest.NewRecorder()
	h.Me(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var body map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body["id"] != float64(5) {
		t.Errorf("id = %v, want 5", body["id"])
	}
	if body["email"] != "hanako@example.com" {
		t.Errorf("email = %v, want hanako@example.com", body["email"])
	}
}

func TestMe_NoSessionCookie_Returns401(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, testAuthConfig())

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	w := httptest.NewRecorder()
	h.Me(w, req)

	if w.Result().StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusUnauthorized)
	}
}

func TestMe_InvalidSession_Returns401(t *testing.T) {
	service := &mockAuthService{
		getCurrentUserFn: func(ctx context.Context, sessionID string) (*model.User, error) {
			return nil, model.NewUnauthorizedError("セッションが無効です")
		},
	}
	h := NewAuthHandler(service, testAuthConfig())

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "invalid"})
	w := httptest.NewRecorder()
	h.Me(w, req)

	if w.Result().StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusUnauthorized)
	}
}

package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newCSRFTestHandler() http.Handler {
	mw := NewCSRFMiddleware(CSRFConfig{})
	return mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func TestCSRFMiddleware_SafeMethod_SkipsValidation(t *testing.T) {
	handler := newCSRFTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/users/1", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusOK)
	}
}

func TestCSRFMiddleware_SafeMethod_SetsCookieWhenMissing(t *testing.T) {
	handler := newCSRFTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/users/1", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	var found bool
	for _, c := range w.Result().Cookies() {
		if c.Name == "csrf_token" && c.Value != "" {
			found = true
			if c.HttpOnly {
				t.Error("csrf_token cookie should not be HttpOnly")
			}
		}
	}
	if !found {
		t.Error("expected csrf_token cookie to be set")
	}
}

func TestCSRFMiddleware_UnsafeMethod_MissingCookie_Returns403(t *testing.T) {
	handler := newCSRFTestHandler()

	req := httptest.NewRequest(http.MethodPut, "/users/profile", nil)
	req.Header.Set("X-CSRF-Token", "some-token")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusForbidden {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusForbidden)
	}
}

func TestCSRFMiddleware_UnsafeMethod_MissingHeader_Returns403(t *testing.T) {
	handler := newCSRFTestHandler()

	req := httptest.NewRequest(http.MethodPut, "/users/profile", nil)
	req.AddCookie(&http.Cookie{Name: "csrf_token", Value: "some-token"})
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusForbidden {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusForbidden)
	}
}

func TestCSRFMiddleware_UnsafeMethod_TokenMismatch_Returns403(t *testing.T) {
	handler := newCSRFTestHandler()

	req := httptest.NewRequest(http.MethodPut, "/users/profile", nil)
	req.AddCookie(&http.Cookie{Name: "csrf_token", Value: "token-a"})
	req.Header.Set("X-CSRF-Token", "token-b")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusForbidden {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusForbidden)
	}
}

func TestCSRFMiddleware_UnsafeMethod_TokenMatch_Allows(t *testing.T) {
	handler := newCSRFTestHandler()

	req := httptest.NewRequest(http.MethodPut, "/users/profile", nil)
	req.AddCookie(&http.Cookie{Name: "csrf_token", Value: "matching-token"})
	req.Header.Set("X-CSRF-Token", "matching-token")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusOK)
	}
}

func TestCSRFTokenHandler_GeneratesToken(t *testing.T) {
	handler := NewCSRFTokenHandler(CSRFConfig{})

	req := httptest.NewRequest(http.MethodGet, "/csrf-token", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
	if body["token"] == "" {
		t.Error("expected non-empty token")
	}

	// Cookieにも同じトークンが設定されること
	var cookieToken string
	for _, c := range resp.Cookies() {
		if c.Name == "csrf_token" {
			cookieToken = c.Value
		}
	}
	if cookieToken != body["token"] {
		t.Errorf("cookie token = %q, want %q", cookieToken, body["token"])
	}
}

func TestCSRFTokenHandler_ReusesExistingToken(t *testing.T) {
	handler := NewCSRFTokenHandler(CSRFConfig{})

	req := httptest.NewRequest(http.MethodGet, "/csrf-token", nil)
	req.AddCookie(&http.Cookie{Name: "csrf_token", Value: "existing-token"})
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	var body map[string]string
	if err := json.NewDecoder(w.Result().Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
	if body["token"] != "existing-token" {
		t.Errorf("token = %q, want %q", body["token"], "existing-token")
	}
}

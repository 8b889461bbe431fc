package middleware

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/hitoshi/cardfolio/internal/model"
)

const (
	// csrfCookieName のCookieはフロントエンドがJavaScriptで読み取り、
	// リクエストヘッダーへ写すためHttpOnlyにしない（double submit方式）。
	csrfCookieName = "csrf_token"

	csrfHeaderName = "X-CSRF-Token"

	// csrfCookieMaxAge はCSRFトークンCookieの有効期間（24時間）。
	csrfCookieMaxAge = 86400
)

// CSRFConfig はCSRFミドルウェアのCookie属性設定。
type CSRFConfig struct {
	CookieSecure bool
	CookieDomain string
}

// NewCSRFMiddleware はdouble submit cookie方式のCSRF防御ミドルウェアを返す。
// 読み取り系メソッド（GET, HEAD, OPTIONS）は検証せず、未配布なら
// トークンCookieを配布する。状態変更メソッドはCookieとヘッダーの
// トークン一致を必須とし、不一致は403で打ち切る。
func NewCSRFMiddleware(config CSRFConfig) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isSafeMethod(r.Method) {
				ensureCSRFCookie(w, r, config)
				next.ServeHTTP(w, r)
				return
			}

			if reason := validateCSRF(r); reason != "" {
				slog.Warn("CSRF validation failed",
					slog.String("reason", reason),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
				)
				WriteAPIError(w, model.NewForbiddenError("CSRFトークンの検証に失敗しました"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// validateCSRF はCookieとヘッダーのトークンを照合する。
// 正当なリクエストには空文字列、失敗時には失敗理由を返す。
func validateCSRF(r *http.Request) string {
	cookie, err := r.Cookie(csrfCookieName)
	if err != nil || cookie.Value == "" {
		return "missing cookie token"
	}

	headerToken := r.Header.Get(csrfHeaderName)
	if headerToken == "" {
		return "missing header token"
	}

	if subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(headerToken)) != 1 {
		return "token mismatch"
	}
	return ""
}

// NewCSRFTokenHandler はフロントエンド初期化用のトークン取得エンドポイントを返す。
// 配布済みのトークンがあればそれを、なければ新規生成したトークンを返す。
func NewCSRFTokenHandler(config CSRFConfig) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := ""
		if cookie, err := r.Cookie(csrfCookieName); err == nil {
			token = cookie.Value
		}

		if token == "" {
			generated, err := generateCSRFToken()
			if err != nil {
				slog.Error("failed to generate CSRF token", slog.String("error", err.Error()))
				WriteAPIError(w, model.NewUnexpectedError(err))
				return
			}
			token = generated
			setCSRFCookie(w, token, config)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"token": token})
	})
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	default:
		return false
	}
}

// ensureCSRFCookie はトークンCookie未配布のリクエストに新規トークンを配布する。
func ensureCSRFCookie(w http.ResponseWriter, r *http.Request, config CSRFConfig) {
	if _, err := r.Cookie(csrfCookieName); err == nil {
		return
	}

	token, err := generateCSRFToken()
	if err != nil {
		slog.Error("failed to generate CSRF token", slog.String("error", err.Error()))
		return
	}
	setCSRFCookie(w, token, config)
}

func setCSRFCookie(w http.ResponseWriter, token string, config CSRFConfig) {
	http.SetCookie(w, &http.Cookie{
		Name:     csrfCookieName,
		Value:    token,
		Path:     "/",
		Domain:   config.CookieDomain,
		MaxAge:   csrfCookieMaxAge,
		HttpOnly: false,
		Secure:   config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// generateCSRFToken は256ビットの乱数から16進トークンを生成する。
func generateCSRFToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

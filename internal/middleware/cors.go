package middleware

import "net/http"

// NewCORSMiddleware は単一オリジン向けのCORSミドルウェアを返す。
// Cookieベースの認証を使うためcredentials送信を許可し、
// ワイルドカード(*)オリジンは使わない。許可メソッドは実際に
// 公開しているGET/PUTに限定し、レート制限のRetry-Afterを
// フロントエンドから参照できるようexposeする。
func NewCORSMiddleware(allowedOrigin string) func(next http.Handler) http.Handler {
	corsHeaders := map[string]string{
		"Access-Control-Allow-Origin":      allowedOrigin,
		"Access-Control-Allow-Methods":     "GET, PUT, OPTIONS",
		"Access-Control-Allow-Headers":     "Content-Type, X-CSRF-Token",
		"Access-Control-Allow-Credentials": "true",
		"Access-Control-Expose-Headers":    "Retry-After",
		"Access-Control-Max-Age":           "86400",
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for name, value := range corsHeaders {
				w.Header().Set(name, value)
			}
			// キャッシュがオリジンごとにレスポンスを区別できるようにする
			w.Header().Add("Vary", "Origin")

			// プリフライトはここで完結する
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

package middleware

import "net/http"

// securityHeaders は全レスポンスに付与する固定ヘッダー。
// JSON APIと画像プロキシのみを提供するため、CSPはドキュメントの
// リソース読み込みを全面的に禁止する。
var securityHeaders = map[string]string{
	"X-Content-Type-Options":  "nosniff",
	"X-Frame-Options":         "DENY",
	"Content-Security-Policy": "default-src 'none'",
	"Referrer-Policy":         "strict-origin-when-cross-origin",
	"Permissions-Policy":      "camera=(), microphone=(), geolocation=()",
}

// NewSecurityHeadersMiddleware はセキュリティ関連ヘッダーを付与するミドルウェアを返す。
func NewSecurityHeadersMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for name, value := range securityHeaders {
				w.Header().Set(name, value)
			}
			next.ServeHTTP(w, r)
		})
	}
}

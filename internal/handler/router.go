package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/cardfolio/internal/metrics"
	"github.com/hitoshi/cardfolio/internal/middleware"
)

// DBPinger はヘルスチェックに必要なデータベース疎通確認のインターフェース。
// *sql.DBが満たす。
type DBPinger interface {
	PingContext(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	SessionFinder     middleware.SessionFinder
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	CSRFConfig        middleware.CSRFConfig

	// メトリクス
	Collector metrics.MetricsCollector
	Gatherer  prometheus.Gatherer

	// ヘルスチェック
	DB DBPinger

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// ユーザー
	UserService UserServiceInterface

	// ロガー
	Logger *slog.Logger
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → CORS → Logging → Metrics →（保護ルートのみ）Session → CSRF → RateLimit
//
// プロフィール閲覧系はカード共有のため認証なしで公開する。
// 更新系はセッション認証に加えて更新専用レート制限をかける。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	if deps.Logger != nil {
		r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	}
	if deps.Collector != nil {
		r.Use(metrics.NewHTTPMiddleware(deps.Collector))
	}

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig)
	userHandler := NewUserHandler(deps.UserService, deps.Collector)

	// --- 認証不要のルート ---

	// 認証ルート（OAuthフロー）
	r.Route("/auth", func(r chi.Router) {
		r.Get("/google/login", authHandler.Login)
		r.Get("/google/callback", authHandler.Callback)
		r.Post("/logout", authHandler.Logout)
		r.Get("/me", authHandler.Me)
	})

	// ヘルスチェック
	r.Get("/health", newHealthHandler(deps.DB))

	// Prometheusスクレイプ
	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Gatherer))
	}

	// CSRFトークン取得
	r.Method(http.MethodGet, "/csrf-token", middleware.NewCSRFTokenHandler(deps.CSRFConfig))

	// 公開カード閲覧（共有リンクから認証なしでアクセスされる）
	r.Get("/users/profile/{id}", userHandler.GetProfile)
	r.Get("/users/profile/{id}/avatar", userHandler.GetAvatar)
	r.Get("/users/settings/{id}", userHandler.GetSettings)

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Session → CSRF → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewSessionMiddleware(deps.SessionFinder))
		r.Use(middleware.NewCSRFMiddleware(deps.CSRFConfig))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		r.Get("/users/{id}", userHandler.GetUser)

		// 更新系は更新専用レート制限を追加
		r.With(deps.RateLimiter.UpdateMiddleware()).Put("/users/profile", userHandler.UpdateProfile)
		r.With(deps.RateLimiter.UpdateMiddleware()).Put("/users/settings", userHandler.UpdateSettings)
	})

	return r
}

// newHealthHandler はデータベース疎通を確認するヘルスチェックハンドラーを返す。
func newHealthHandler(db DBPinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			if err := db.PingContext(r.Context()); err != nil {
				slog.Error("health check failed", slog.String("error", err.Error()))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusServiceUnavailable)
				w.Write([]byte(`{"status":"unavailable"}`))
				return
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}
}

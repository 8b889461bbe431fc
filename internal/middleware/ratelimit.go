package middleware

import (
	"encoding/json"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/hitoshi/cardfolio/internal/model"
)

// RateLimiterConfig はレート制限の設定を保持する。
type RateLimiterConfig struct {
	GeneralRate     rate.Limit    // API全般のレート (req/sec)
	GeneralBurst    int           // API全般のバーストサイズ
	UpdateRate      rate.Limit    // プロフィール・設定更新のレート (req/sec)
	UpdateBurst     int           // 更新系のバーストサイズ
	CleanupInterval time.Duration // 滞留エントリのクリーンアップ間隔
}

// DefaultRateLimiterConfig はデフォルトの設定を返す。
// API全般 120 req/min/user、更新系 30 req/min/user。
func DefaultRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		GeneralRate:     rate.Limit(120.0 / 60.0),
		GeneralBurst:    120,
		UpdateRate:      rate.Limit(30.0 / 60.0),
		UpdateBurst:     30,
		CleanupInterval: 5 * time.Minute,
	}
}

// userLimiter はユーザー1人分のリミッターと最終アクセス時刻。
type userLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// limiterPool はユーザーIDごとのトークンバケットの集合。
// 同じレート設定を共有する1系統のレート制限を表す。
type limiterPool struct {
	limit rate.Limit
	burst int

	mu      sync.Mutex
	entries map[int]*userLimiter
}

func newLimiterPool(limit rate.Limit, burst int) *limiterPool {
	return &limiterPool{
		limit:   limit,
		burst:   burst,
		entries: make(map[int]*userLimiter),
	}
}

// get はユーザーのリミッターを取得する。未登録なら作成する。
func (p *limiterPool) get(userID int) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()

	ul, ok := p.entries[userID]
	if !ok {
		ul = &userLimiter{limiter: rate.NewLimiter(p.limit, p.burst)}
		p.entries[userID] = ul
	}
	ul.lastAccess = time.Now()
	return ul.limiter
}

func (p *limiterPool) size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.entries)
}

// evict は最終アクセスがttlより古いエントリを削除する。
func (p *limiterPool) evict(ttl time.Duration) {
	now := time.Now()
	p.mu.Lock()
	defer p.mu.Unlock()
	for userID, ul := range p.entries {
		if now.Sub(ul.lastAccess) > ttl {
			delete(p.entries, userID)
		}
	}
}

// RateLimiter は認証済みユーザー単位のレート制限を提供する。
// API全般と更新系の2系統を独立に管理する。
type RateLimiter struct {
	config  RateLimiterConfig
	general *limiterPool
	update  *limiterPool
	stopCh  chan struct{}
}

// NewRateLimiter はRateLimiterを生成し、滞留エントリの
// クリーンアップゴルーチンを開始する。
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	rl := &RateLimiter{
		config:  config,
		general: newLimiterPool(config.GeneralRate, config.GeneralBurst),
		update:  newLimiterPool(config.UpdateRate, config.UpdateBurst),
		stopCh:  make(chan struct{}),
	}
	go rl.cleanupLoop()
	return rl
}

// Stop はクリーンアップゴルーチンを停止する。
func (rl *RateLimiter) Stop() {
	close(rl.stopCh)
}

// GeneralMiddleware はAPI全般のレート制限ミドルウェアを返す。
// コンテキストにユーザーIDが必要なため、SessionMiddlewareの後段に置く。
func (rl *RateLimiter) GeneralMiddleware() func(next http.Handler) http.Handler {
	return rl.middleware(rl.general, "general")
}

// UpdateMiddleware はプロフィール・設定更新専用のレート制限ミドルウェアを返す。
// API全般の制限とは独立にカウントする。
func (rl *RateLimiter) UpdateMiddleware() func(next http.Handler) http.Handler {
	return rl.middleware(rl.update, "update")
}

func (rl *RateLimiter) middleware(pool *limiterPool, limitType string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := UserIDFromContext(r.Context())
			if err != nil {
				WriteAPIError(w, model.NewUnauthorizedError("認証が必要です"))
				return
			}

			if !pool.get(userID).Allow() {
				slog.Warn("rate limit exceeded",
					slog.Int("user_id", userID),
					slog.String("limit_type", limitType),
				)
				writeRateLimitResponse(w, pool.limit)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// GeneralLimiterCount はAPI全般系統の管理エントリ数を返す。テストとメトリクス用。
func (rl *RateLimiter) GeneralLimiterCount() int {
	return rl.general.size()
}

// UpdateLimiterCount は更新系統の管理エントリ数を返す。テストとメトリクス用。
func (rl *RateLimiter) UpdateLimiterCount() int {
	return rl.update.size()
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ttl := rl.config.CleanupInterval * 2
			rl.general.evict(ttl)
			rl.update.evict(ttl)
		case <-rl.stopCh:
			return
		}
	}
}

// writeRateLimitResponse は429レスポンスを書き込む。
// Retry-Afterには1トークンが補充されるまでの推定秒数を設定する。
func writeRateLimitResponse(w http.ResponseWriter, limit rate.Limit) {
	retryAfterSec := int(math.Ceil(1.0 / float64(limit)))
	if retryAfterSec < 1 {
		retryAfterSec = 1
	}

	w.Header().Set("Retry-After", strconv.Itoa(retryAfterSec))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)

	json.NewEncoder(w).Encode(map[string]string{
		"kind":    "rate_limit_exceeded",
		"message": "リクエストが多すぎます。しばらく待ってから再度お試しください。",
	})
}

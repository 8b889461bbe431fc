// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// ハンドラーやワーカーから利用する。
type MetricsCollector interface {
	RecordHTTPRequest(method, path string, statusCode int, duration time.Duration)
	RecordProfileUpdate()
	RecordSettingsUpdate()
	RecordAvatarFetchSuccess()
	RecordAvatarFetchFailure(reason string)
	RecordSessionsCleaned(count int64)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	httpRequests    *prometheus.CounterVec
	httpDuration    prometheus.Histogram
	profileUpdates  prometheus.Counter
	settingsUpdates prometheus.Counter
	avatarSuccess   prometheus.Counter
	avatarFail      *prometheus.CounterVec
	sessionsCleaned prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cardfolio_http_requests_total",
			Help: "HTTPリクエストの合計数（メソッド・パス・ステータス別）",
		}, []string{"method", "path", "status_code"}),
		httpDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "cardfolio_http_request_duration_seconds",
			Help:    "HTTPリクエスト処理のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		profileUpdates: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cardfolio_profile_updates_total",
			Help: "プロフィール更新の合計数",
		}),
		settingsUpdates: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cardfolio_settings_updates_total",
			Help: "設定更新の合計数",
		}),
		avatarSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cardfolio_avatar_fetch_success_total",
			Help: "プロフィール画像取得成功の合計数",
		}),
		avatarFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cardfolio_avatar_fetch_fail_total",
			Help: "プロフィール画像取得失敗の合計数（理由別）",
		}, []string{"reason"}),
		sessionsCleaned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cardfolio_sessions_cleaned_total",
			Help: "削除された期限切れセッションの合計数",
		}),
	}

	reg.MustRegister(
		c.httpRequests,
		c.httpDuration,
		c.profileUpdates,
		c.settingsUpdates,
		c.avatarSuccess,
		c.avatarFail,
		c.sessionsCleaned,
	)

	return c
}

// RecordHTTPRequest はHTTPリクエストの完了を記録する。
// pathにはカーディナリティ爆発を避けるためルートパターンを渡すこと。
func (c *Collector) RecordHTTPRequest(method, path string, statusCode int, duration time.Duration) {
	c.httpRequests.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	c.httpDuration.Observe(duration.Seconds())
}

// RecordProfileUpdate はプロフィール更新を記録する。
func (c *Collector) RecordProfileUpdate() {
	c.profileUpdates.Inc()
}

// RecordSettingsUpdate は設定更新を記録する。
func (c *Collector) RecordSettingsUpdate() {
	c.settingsUpdates.Inc()
}

// RecordAvatarFetchSuccess はプロフィール画像取得成功を記録する。
func (c *Collector) RecordAvatarFetchSuccess() {
	c.avatarSuccess.Inc()
}

// RecordAvatarFetchFailure はプロフィール画像取得失敗を記録する。
func (c *Collector) RecordAvatarFetchFailure(reason string) {
	c.avatarFail.WithLabelValues(reason).Inc()
}

// RecordSessionsCleaned は削除された期限切れセッション数を記録する。
func (c *Collector) RecordSessionsCleaned(count int64) {
	c.sessionsCleaned.Add(float64(count))
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute は/metricsエンドポイントを提供するHTTPハンドラーを返す。
// Prometheusスクレイプに対応する。
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}

// Package cleanup は期限切れセッションの自動削除ジョブを提供する。
// expires_atを超過したセッション行を日次バッチで削除する。
package cleanup

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/cardfolio/internal/metrics"
)

// SessionCleaner は期限切れセッションの削除に必要なインターフェース。
// repository.SessionRepositoryの部分集合として定義する。
type SessionCleaner interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

// CleanupJob は期限切れセッションの自動削除ジョブ。
// 日次実行のバッチジョブとして設計されており、冪等な削除処理を保証する。
type CleanupJob struct {
	sessions  SessionCleaner
	logger    *slog.Logger
	collector metrics.MetricsCollector
}

// NewCleanupJob は新しいCleanupJobを生成する。
// collectorはnil可（メトリクス記録をスキップする）。
func NewCleanupJob(sessions SessionCleaner, logger *slog.Logger, collector metrics.MetricsCollector) *CleanupJob {
	return &CleanupJob{
		sessions:  sessions,
		logger:    logger,
		collector: collector,
	}
}

// Run は期限切れセッションを削除する。
// 冪等: 削除対象がない場合でもエラーにならない。
func (j *CleanupJob) Run(ctx context.Context) error {
	start := time.Now()

	deletedCount, err := j.sessions.DeleteExpired(ctx)
	if err != nil {
		j.logger.Error("セッションクリーンアップジョブの実行に失敗しました",
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("セッションクリーンアップの実行に失敗: %w", err)
	}

	if j.collector != nil {
		j.collector.RecordSessionsCleaned(deletedCount)
	}

	duration := time.Since(start)
	j.logger.Info("セッションクリーンアップジョブが完了しました",
		slog.Int64("deleted_count", deletedCount),
		slog.Float64("duration_ms", float64(duration.Milliseconds())),
	)

	return nil
}

// RunLoop は指定間隔でRunを繰り返し実行する。
// コンテキストのキャンセルで停止する。起動直後に1回実行する。
func (j *CleanupJob) RunLoop(ctx context.Context, interval time.Duration) {
	if err := j.Run(ctx); err != nil {
		j.logger.Error("初回クリーンアップの実行に失敗しました", slog.String("error", err.Error()))
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := j.Run(ctx); err != nil {
				j.logger.Error("クリーンアップの実行に失敗しました", slog.String("error", err.Error()))
			}
		case <-ctx.Done():
			return
		}
	}
}

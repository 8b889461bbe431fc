package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hitoshi/cardfolio/internal/model"
)

// PostgresSessionRepo はPostgreSQLを使用したセッションリポジトリ。
// ストレージ失敗はmodel.KindDatabaseErrorへ分類して返す。
type PostgresSessionRepo struct {
	db *sql.DB
}

// NewPostgresSessionRepo はPostgresSessionRepoを生成する。
func NewPostgresSessionRepo(db *sql.DB) *PostgresSessionRepo {
	return &PostgresSessionRepo{db: db}
}

// Create はセッションを作成する。
func (r *PostgresSessionRepo) Create(ctx context.Context, session *model.Session) error {
	const q = `INSERT INTO sessions (id, user_id, expires_at, created_at)
	           VALUES ($1, $2, $3, $4)`
	_, err := r.db.ExecContext(ctx, q, session.ID, session.UserID, session.ExpiresAt, session.CreatedAt)
	if err != nil {
		return model.NewDatabaseError(fmt.Errorf("failed to create session: %w", err))
	}
	return nil
}

// FindByID は指定IDの有効なセッションを取得する。
// 期限切れの判定はDB側のnow()で行い、存在しない場合と同様にnilを返す。
func (r *PostgresSessionRepo) FindByID(ctx context.Context, id string) (*model.Session, error) {
	const q = `SELECT id, user_id, expires_at, created_at
	           FROM sessions
	           WHERE id = $1 AND expires_at > now()`

	session := &model.Session{}
	err := r.db.QueryRowContext(ctx, q, id).
		Scan(&session.ID, &session.UserID, &session.ExpiresAt, &session.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, model.NewDatabaseError(fmt.Errorf("failed to find session: %w", err))
	}

	return session, nil
}

// DeleteByID は指定IDのセッションを削除する。対象がなくてもエラーにならない。
func (r *PostgresSessionRepo) DeleteByID(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	if err != nil {
		return model.NewDatabaseError(fmt.Errorf("failed to delete session: %w", err))
	}
	return nil
}

// DeleteByUserID は指定ユーザーの全セッションを削除する。
func (r *PostgresSessionRepo) DeleteByUserID(ctx context.Context, userID int) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE user_id = $1`, userID)
	if err != nil {
		return model.NewDatabaseError(fmt.Errorf("failed to delete user sessions: %w", err))
	}
	return nil
}

// DeleteExpired は期限切れセッションを削除し、削除件数を返す。
// クリーンアップワーカーから定期的に呼ばれる。冪等。
func (r *PostgresSessionRepo) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= now()`)
	if err != nil {
		return 0, model.NewDatabaseError(fmt.Errorf("failed to delete expired sessions: %w", err))
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, model.NewDatabaseError(fmt.Errorf("failed to get rows affected: %w", err))
	}
	return deleted, nil
}

var _ SessionRepository = (*PostgresSessionRepo)(nil)

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/hitoshi/cardfolio/internal/model"
)

// uniqueViolationCode はPostgreSQLの一意性制約違反を示すSQLSTATE。
const uniqueViolationCode = pq.ErrorCode("23505")

// PostgresRepo はPostgreSQLを使用したRepositoryポートの実装。
// 各操作は単一のパラメータ化ステートメントで実行し、
// 失敗は検出時点でドメインのエラーKindへ分類する。
// 接続プール（*sql.DB）は共有リソースとして構築時に受け取る。
type PostgresRepo struct {
	db *sql.DB
}

// NewPostgresRepo はPostgresRepoを生成する。
func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

// userColumns はusersテーブルのスキャン対象カラム。
const userColumns = `id, google_id, email, created_at, updated_at`

// scanUser は1行スキャン結果をUserに読み込む。
func scanUser(row *sql.Row) (*model.User, error) {
	user := &model.User{}
	err := row.Scan(&user.ID, &user.GoogleID, &user.Email, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// isUniqueViolation はエラーが一意性制約違反かどうかを判定する。
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolationCode
}

// FindByGoogleID は指定Google IDのユーザーを取得する。
func (r *PostgresRepo) FindByGoogleID(ctx context.Context, googleID string) (*model.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE google_id = $1`,
		googleID,
	))
	if err == sql.ErrNoRows {
		return nil, model.NewNotFoundError(fmt.Sprintf("Google ID %s のユーザーが見つかりません", googleID))
	}
	if err != nil {
		return nil, model.NewDatabaseError(err)
	}
	return user, nil
}

// FindByID は指定IDのユーザーを取得する。
func (r *PostgresRepo) FindByID(ctx context.Context, id int) (*model.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`,
		id,
	))
	if err == sql.ErrNoRows {
		return nil, model.NewNotFoundError(fmt.Sprintf("ID %d のユーザーが見つかりません", id))
	}
	if err != nil {
		return nil, model.NewDatabaseError(err)
	}
	return user, nil
}

// Create はユーザーを作成し、採番済みレコードを返す。
func (r *PostgresRepo) Create(ctx context.Context, user *model.User) (*model.User, error) {
	created, err := scanUser(r.db.QueryRowContext(ctx,
		`INSERT INTO users (google_id, email) VALUES ($1, $2) RETURNING `+userColumns,
		user.GoogleID, user.Email,
	))
	if isUniqueViolation(err) {
		return nil, model.NewConflictError("このGoogle IDのユーザーは既に存在します")
	}
	if err != nil {
		return nil, model.NewDatabaseError(err)
	}
	return created, nil
}

// Update はユーザーのemailのみをIDをキーに更新する。
func (r *PostgresRepo) Update(ctx context.Context, user *model.User) (*model.User, error) {
	updated, err := scanUser(r.db.QueryRowContext(ctx,
		`UPDATE users SET email = $1, updated_at = now() WHERE id = $2 RETURNING `+userColumns,
		user.Email, user.ID,
	))
	if err == sql.ErrNoRows {
		return nil, model.NewNotFoundError(fmt.Sprintf("ID %d のユーザーが見つかりません", user.ID))
	}
	if err != nil {
		return nil, model.NewDatabaseError(err)
	}
	return updated, nil
}

// CreateWithDefaults はユーザーとデフォルトのプロフィール・設定を
// 同一トランザクションで作成する。いずれかのINSERTが失敗した場合は
// 全てロールバックし、失敗したステートメントの分類済みエラーを返す。
func (r *PostgresRepo) CreateWithDefaults(ctx context.Context, user *model.User) (*model.User, *model.UserProfile, *model.UserSetting, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, nil, model.NewDatabaseError(fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer tx.Rollback()

	// ユーザーを作成
	created := &model.User{}
	err = tx.QueryRowContext(ctx,
		`INSERT INTO users (google_id, email) VALUES ($1, $2) RETURNING `+userColumns,
		user.GoogleID, user.Email,
	).Scan(&created.ID, &created.GoogleID, &created.Email, &created.CreatedAt, &created.UpdatedAt)
	if isUniqueViolation(err) {
		return nil, nil, nil, model.NewConflictError("このGoogle IDのユーザーは既に存在します")
	}
	if err != nil {
		return nil, nil, nil, model.NewDatabaseError(fmt.Errorf("failed to insert user: %w", err))
	}

	// デフォルトのプロフィールを作成
	profile := model.NewUserProfile(created.ID)
	_, err = tx.ExecContext(ctx,
		`INSERT INTO user_profiles (id, user_id, template) VALUES ($1, $2, $3)`,
		profile.ID, profile.UserID, profile.Template,
	)
	if err != nil {
		return nil, nil, nil, model.NewDatabaseError(fmt.Errorf("failed to insert profile: %w", err))
	}

	// デフォルトの設定を作成
	setting := model.NewUserSetting(created.ID)
	err = tx.QueryRowContext(ctx,
		`INSERT INTO user_settings (user_id, exchange_contacts, save_contact, call_me, email_me, social_media, template)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		setting.UserID, setting.ExchangeContacts, setting.SaveContact,
		setting.CallMe, setting.EmailMe, setting.SocialMedia, setting.Template,
	).Scan(&setting.ID)
	if err != nil {
		return nil, nil, nil, model.NewDatabaseError(fmt.Errorf("failed to insert settings: %w", err))
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, nil, model.NewDatabaseError(fmt.Errorf("failed to commit transaction: %w", err))
	}

	return created, profile, setting, nil
}

// compile-time interface check
var _ Repository = (*PostgresRepo)(nil)

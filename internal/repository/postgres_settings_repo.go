package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/cardfolio/internal/model"
)

// settingColumns はuser_settingsテーブルのスキャン対象カラム。
const settingColumns = `id, user_id, exchange_contacts, save_contact, call_me,
	email_me, social_media, template, created_at, updated_at`

// scanSetting は1行スキャン結果をUserSettingに読み込む。
func scanSetting(row *sql.Row) (*model.UserSetting, error) {
	s := &model.UserSetting{}
	err := row.Scan(
		&s.ID, &s.UserID, &s.ExchangeContacts, &s.SaveContact, &s.CallMe,
		&s.EmailMe, &s.SocialMedia, &s.Template, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// CreateSettings は設定を作成し、採番済みレコードを返す。
// 同一ユーザーの2行目はuser_idの一意性制約によりConflictになる。
func (r *PostgresRepo) CreateSettings(ctx context.Context, setting *model.UserSetting) (*model.UserSetting, error) {
	created, err := scanSetting(r.db.QueryRowContext(ctx,
		`INSERT INTO user_settings (user_id, exchange_contacts, save_contact, call_me, email_me, social_media, template)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+settingColumns,
		setting.UserID, setting.ExchangeContacts, setting.SaveContact,
		setting.CallMe, setting.EmailMe, setting.SocialMedia, setting.Template,
	))
	if isUniqueViolation(err) {
		return nil, model.NewConflictError("このユーザーの設定は既に存在します")
	}
	if err != nil {
		return nil, model.NewDatabaseError(err)
	}
	return created, nil
}

// UpdateSettings は設定をuser_idをキーに全フィールド置換で更新する。
func (r *PostgresRepo) UpdateSettings(ctx context.Context, setting *model.UserSetting) (*model.UserSetting, error) {
	updated, err := scanSetting(r.db.QueryRowContext(ctx,
		`UPDATE user_settings SET
		   exchange_contacts = $1, save_contact = $2, call_me = $3,
		   email_me = $4, social_media = $5, template = $6, updated_at = now()
		 WHERE user_id = $7
		 RETURNING `+settingColumns,
		setting.ExchangeContacts, setting.SaveContact, setting.CallMe,
		setting.EmailMe, setting.SocialMedia, setting.Template, setting.UserID,
	))
	if err == sql.ErrNoRows {
		return nil, model.NewNotFoundError(fmt.Sprintf("ユーザーID %d の設定が見つかりません", setting.UserID))
	}
	if err != nil {
		return nil, model.NewDatabaseError(err)
	}
	return updated, nil
}

// FindSettingsByUserID は指定ユーザーの設定を取得する。
func (r *PostgresRepo) FindSettingsByUserID(ctx context.Context, userID int) (*model.UserSetting, error) {
	setting, err := scanSetting(r.db.QueryRowContext(ctx,
		`SELECT `+settingColumns+` FROM user_settings WHERE user_id = $1`,
		userID,
	))
	if err == sql.ErrNoRows {
		return nil, model.NewNotFoundError(fmt.Sprintf("ユーザーID %d の設定が見つかりません", userID))
	}
	if err != nil {
		return nil, model.NewDatabaseError(err)
	}
	return setting, nil
}

// FindSettingsByProfileID はプロフィールの公開ハンドルIDから、
// そのプロフィールを所有するユーザーの設定を取得する。
func (r *PostgresRepo) FindSettingsByProfileID(ctx context.Context, profileID string) (*model.UserSetting, error) {
	setting, err := scanSetting(r.db.QueryRowContext(ctx,
		`SELECT us.id, us.user_id, us.exchange_contacts, us.save_contact, us.call_me,
		        us.email_me, us.social_media, us.template, us.created_at, us.updated_at
		 FROM user_settings us
		 INNER JOIN user_profiles up ON us.user_id = up.user_id
		 WHERE up.id = $1`,
		profileID,
	))
	if err == sql.ErrNoRows {
		return nil, model.NewNotFoundError(fmt.Sprintf("プロフィールID %s の設定が見つかりません", profileID))
	}
	if err != nil {
		return nil, model.NewDatabaseError(err)
	}
	return setting, nil
}

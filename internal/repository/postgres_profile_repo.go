package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/cardfolio/internal/model"
)

// profileColumns はuser_profilesテーブルのスキャン対象カラム。
const profileColumns = `id, user_id, email, name, bio, phone_number, location,
	profile_picture_url, theme, template, custom_url, job_title,
	facebook_url, twitter_url, instagram_url, linkedin_url, updated_at`

// scanProfile は1行スキャン結果をUserProfileに読み込む。
// NULLの表示項目はnilとして読み込まれる。
func scanProfile(row *sql.Row) (*model.UserProfile, error) {
	p := &model.UserProfile{}
	err := row.Scan(
		&p.ID, &p.UserID, &p.Email, &p.Name, &p.Bio, &p.PhoneNumber, &p.Location,
		&p.ProfilePictureURL, &p.Theme, &p.Template, &p.CustomURL, &p.JobTitle,
		&p.FacebookURL, &p.TwitterURL, &p.InstagramURL, &p.LinkedinURL, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// CreateProfile はプロフィールを作成し、保存済みレコードを返す。
// custom_urlの重複はConflictになる。
func (r *PostgresRepo) CreateProfile(ctx context.Context, profile *model.UserProfile) (*model.UserProfile, error) {
	created, err := scanProfile(r.db.QueryRowContext(ctx,
		`INSERT INTO user_profiles (id, user_id, email, name, bio, phone_number, location,
		   profile_picture_url, theme, template, custom_url, job_title,
		   facebook_url, twitter_url, instagram_url, linkedin_url)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		 RETURNING `+profileColumns,
		profile.ID, profile.UserID, profile.Email, profile.Name, profile.Bio,
		profile.PhoneNumber, profile.Location, profile.ProfilePictureURL,
		profile.Theme, profile.Template, profile.CustomURL, profile.JobTitle,
		profile.FacebookURL, profile.TwitterURL, profile.InstagramURL, profile.LinkedinURL,
	))
	if isUniqueViolation(err) {
		return nil, model.NewConflictError("このカスタムURLのプロフィールは既に存在します")
	}
	if err != nil {
		return nil, model.NewDatabaseError(err)
	}
	return created, nil
}

// UpdateProfile はプロフィールをuser_idをキーに全フィールド置換で更新する。
// 部分更新のマージはサービス層で済んでおり、ここでは常に完全なレコードを書き込む。
func (r *PostgresRepo) UpdateProfile(ctx context.Context, profile *model.UserProfile) (*model.UserProfile, error) {
	updated, err := scanProfile(r.db.QueryRowContext(ctx,
		`UPDATE user_profiles SET
		   email = $1, name = $2, bio = $3, phone_number = $4, location = $5,
		   profile_picture_url = $6, theme = $7, template = $8, custom_url = $9,
		   job_title = $10, facebook_url = $11, twitter_url = $12,
		   instagram_url = $13, linkedin_url = $14, updated_at = now()
		 WHERE user_id = $15
		 RETURNING `+profileColumns,
		profile.Email, profile.Name, profile.Bio, profile.PhoneNumber,
		profile.Location, profile.ProfilePictureURL, profile.Theme,
		profile.Template, profile.CustomURL, profile.JobTitle,
		profile.FacebookURL, profile.TwitterURL, profile.InstagramURL,
		profile.LinkedinURL, profile.UserID,
	))
	if err == sql.ErrNoRows {
		return nil, model.NewNotFoundError(fmt.Sprintf("ユーザーID %d のプロフィールが見つかりません", profile.UserID))
	}
	if isUniqueViolation(err) {
		return nil, model.NewConflictError("このカスタムURLのプロフィールは既に存在します")
	}
	if err != nil {
		return nil, model.NewDatabaseError(err)
	}
	return updated, nil
}

// FindProfileByUserID は指定ユーザーのプロフィールを取得する。
func (r *PostgresRepo) FindProfileByUserID(ctx context.Context, userID int) (*model.UserProfile, error) {
	profile, err := scanProfile(r.db.QueryRowContext(ctx,
		`SELECT `+profileColumns+` FROM user_profiles WHERE user_id = $1`,
		userID,
	))
	if err == sql.ErrNoRows {
		return nil, model.NewNotFoundError(fmt.Sprintf("ユーザーID %d のプロフィールが見つかりません", userID))
	}
	if err != nil {
		return nil, model.NewDatabaseError(err)
	}
	return profile, nil
}

// FindProfileByID は公開ハンドルIDでプロフィールを取得する。
func (r *PostgresRepo) FindProfileByID(ctx context.Context, id string) (*model.UserProfile, error) {
	profile, err := scanProfile(r.db.QueryRowContext(ctx,
		`SELECT `+profileColumns+` FROM user_profiles WHERE id = $1`,
		id,
	))
	if err == sql.ErrNoRows {
		return nil, model.NewNotFoundError(fmt.Sprintf("ID %s のプロフィールが見つかりません", id))
	}
	if err != nil {
		return nil, model.NewDatabaseError(err)
	}
	return profile, nil
}

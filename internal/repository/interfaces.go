// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/cardfolio/internal/model"
)

// Repository はユーザー・プロフィール・設定の永続化ポート。
// 具体的なストレージ技術から独立しており、ドメインサービスはこの
// インターフェースのみに依存する。
//
// エラー契約: 対象行が存在しない読み取り・更新は model.KindNotFound、
// 書き込み時の一意性制約違反は model.KindConflict、それ以外の
// ストレージ失敗は原因を包んだ model.KindDatabaseError を返す。
type Repository interface {
	// FindByGoogleID は指定Google IDのユーザーを取得する。
	FindByGoogleID(ctx context.Context, googleID string) (*model.User, error)

	// FindByID は指定IDのユーザーを取得する。
	FindByID(ctx context.Context, id int) (*model.User, error)

	// Create はユーザーを作成し、採番済みレコードを返す。
	// google_idの重複はConflictになる。emailには一意性制約がない。
	Create(ctx context.Context, user *model.User) (*model.User, error)

	// Update はユーザーのemailのみをIDをキーに更新する。
	// google_idは作成後不変のため更新対象に含めない。
	Update(ctx context.Context, user *model.User) (*model.User, error)

	// CreateWithDefaults はユーザーとデフォルトのプロフィール・設定を
	// 同一トランザクションで作成する。部分的な失敗は全てロールバックされる。
	CreateWithDefaults(ctx context.Context, user *model.User) (*model.User, *model.UserProfile, *model.UserSetting, error)

	// CreateProfile はプロフィールを作成し、保存済みレコードを返す。
	CreateProfile(ctx context.Context, profile *model.UserProfile) (*model.UserProfile, error)

	// UpdateProfile はプロフィールをuser_idをキーに全フィールド置換で更新する。
	UpdateProfile(ctx context.Context, profile *model.UserProfile) (*model.UserProfile, error)

	// FindProfileByUserID は指定ユーザーのプロフィールを取得する。
	FindProfileByUserID(ctx context.Context, userID int) (*model.UserProfile, error)

	// FindProfileByID は公開ハンドルIDでプロフィールを取得する。
	FindProfileByID(ctx context.Context, id string) (*model.UserProfile, error)

	// FindSettingsByUserID は指定ユーザーの設定を取得する。
	FindSettingsByUserID(ctx context.Context, userID int) (*model.UserSetting, error)

	// FindSettingsByProfileID はプロフィールの公開ハンドルIDから、
	// そのプロフィールを所有するユーザーの設定を取得する。
	// user_profilesとuser_settingsをuser_idで結合する。
	FindSettingsByProfileID(ctx context.Context, profileID string) (*model.UserSetting, error)

	// CreateSettings は設定を作成し、採番済みレコードを返す。
	// 同一ユーザーの2行目はConflictになる。
	CreateSettings(ctx context.Context, setting *model.UserSetting) (*model.UserSetting, error)

	// UpdateSettings は設定をuser_idをキーに全フィールド置換で更新する。
	UpdateSettings(ctx context.Context, setting *model.UserSetting) (*model.UserSetting, error)
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error
	// FindByID は指定IDの有効なセッションを取得する。
	// 存在しないか期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// DeleteByID は指定IDのセッションを削除する。
	DeleteByID(ctx context.Context, id string) error
	// DeleteByUserID は指定ユーザーの全セッションを削除する。
	DeleteByUserID(ctx context.Context, userID int) error
	// DeleteExpired は期限切れセッションを削除し、削除件数を返す。
	DeleteExpired(ctx context.Context) (int64, error)
}

package model

import "time"

// UserSetting はカードの利用可否を制御するプライバシー・連絡先設定を表す。
// ユーザーごとに最大1行で、user_idで一意になる。
type UserSetting struct {
	ID               int
	UserID           int
	ExchangeContacts bool
	SaveContact      bool
	CallMe           bool
	EmailMe          bool
	SocialMedia      bool
	Template         string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NewUserSetting は指定ユーザーの未保存設定レコードをデフォルト値で生成する。
// 連絡系フラグはtrue、SNS公開はfalseで初期化する。
func NewUserSetting(userID int) *UserSetting {
	now := time.Now()
	return &UserSetting{
		ID:               0,
		UserID:           userID,
		ExchangeContacts: true,
		SaveContact:      true,
		CallMe:           true,
		EmailMe:          true,
		SocialMedia:      false,
		Template:         DefaultTemplate,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

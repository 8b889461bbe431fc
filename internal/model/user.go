// Package model はドメインモデルを定義する。
package model

import "time"

// User はGoogleアカウントで認証されたサービス利用ユーザーを表す。
// IDはデータベースが採番する。GoogleIDは作成時に1回だけ設定され、
// 以降更新されることはない。
type User struct {
	ID        int
	GoogleID  string
	Email     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewUser は未保存のユーザーレコードを生成する。
// IDは未採番を示す0で初期化され、保存時にデータベースが採番する。
func NewUser(googleID, email string) *User {
	now := time.Now()
	return &User{
		ID:        0,
		GoogleID:  googleID,
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

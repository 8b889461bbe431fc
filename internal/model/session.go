package model

import "time"

// Session はユーザーのログインセッションを表す。
// IDは暗号的に安全な乱数から生成され、HTTP Only Cookieで配布される。
type Session struct {
	ID        string
	UserID    int
	ExpiresAt time.Time
	CreatedAt time.Time
}

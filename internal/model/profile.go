package model

import (
	"time"

	"github.com/google/uuid"
)

// DefaultTemplate はプロフィールと設定のデフォルトテンプレート名。
const DefaultTemplate = "default"

// UserProfile はユーザーの公開プロフィール（カード）を表す。
// IDは公開用ハンドルとして使うランダムなUUID文字列で、user_idから導出されない。
// 表示項目はすべて省略可能であり、nilは「未設定」を意味する。
// 空文字列とは区別される。
type UserProfile struct {
	ID                string
	UserID            int
	Email             *string
	Name              *string
	Bio               *string
	PhoneNumber       *string
	Location          *string
	ProfilePictureURL *string
	Theme             *string
	Template          string
	CustomURL         *string
	JobTitle          *string
	FacebookURL       *string
	TwitterURL        *string
	InstagramURL      *string
	LinkedinURL       *string
	UpdatedAt         time.Time
}

// NewUserProfile は指定ユーザーの未保存プロフィールを生成する。
// 公開ハンドルとなるIDをランダム生成し、全ての表示項目を未設定で初期化する。
func NewUserProfile(userID int) *UserProfile {
	return &UserProfile{
		ID:        uuid.New().String(),
		UserID:    userID,
		Template:  DefaultTemplate,
		UpdatedAt: time.Now(),
	}
}

// Package auth はOAuth認証フローとセッション管理を提供する。
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/cardfolio/internal/model"
	"github.com/hitoshi/cardfolio/internal/repository"
)

// GoogleUserInfo はGoogleから取得したユーザー情報を表す。
// NameとPictureは初回ログイン時のプロフィール初期値として使用する。
type GoogleUserInfo struct {
	GoogleID string
	Email    string
	Name     string
	Picture  string
}

// OAuthProvider はOAuth認証プロバイダーのインターフェース。
type OAuthProvider interface {
	// GetLoginURL はOAuth認証URLを生成する。
	GetLoginURL(state string) string
	// ExchangeCode は認可コードをトークンに交換し、ユーザー情報を取得する。
	ExchangeCode(ctx context.Context, code string) (*GoogleUserInfo, error)
}

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	SessionMaxAge int // セッション有効期間（秒）
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	oauth       OAuthProvider
	repo        repository.Repository
	sessionRepo repository.SessionRepository
	config      ServiceConfig
}

// NewService はServiceを生成する。
func NewService(
	oauth OAuthProvider,
	repo repository.Repository,
	sessionRepo repository.SessionRepository,
	config ServiceConfig,
) *Service {
	return &Service{
		oauth:       oauth,
		repo:        repo,
		sessionRepo: sessionRepo,
		config:      config,
	}
}

// GetLoginURL はOAuth認証URLを生成する。
func (s *Service) GetLoginURL(state string) string {
	return s.oauth.GetLoginURL(state)
}

// HandleCallback はOAuthコールバックを処理し、セッションを発行する。
// 未登録ユーザーの場合はユーザー・プロフィール・設定を同一トランザクションで
// 自動作成する。登録済みユーザーの場合はgoogle_idで既存ユーザーを特定し
// ログインする。
func (s *Service) HandleCallback(ctx context.Context, code string) (*model.Session, error) {
	// 1. 認可コードをトークンに交換し、ユーザー情報を取得
	userInfo, err := s.oauth.ExchangeCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange oauth code: %w", err)
	}

	// 2. google_idで既存ユーザーを検索
	user, err := s.repo.FindByGoogleID(ctx, userInfo.GoogleID)
	if err != nil && !model.IsKind(err, model.KindNotFound) {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if user == nil {
		// 3. 新規ユーザー: ユーザー・プロフィール・設定を一括作成
		created, profile, _, err := s.repo.CreateWithDefaults(ctx, model.NewUser(userInfo.GoogleID, userInfo.Email))
		if err != nil {
			return nil, fmt.Errorf("failed to provision user: %w", err)
		}
		user = created

		// Googleの表示名とアイコンをプロフィール初期値として反映する。
		// 反映に失敗してもログインは継続する。
		s.seedProfile(ctx, profile, userInfo)

		slog.Info("new user created",
			slog.Int("user_id", user.ID),
			slog.String("email", user.Email),
			slog.String("profile_id", profile.ID),
		)
	} else {
		slog.Info("existing user logged in",
			slog.Int("user_id", user.ID),
		)
	}

	// 4. セッションを発行
	session, err := s.createSession(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return session, nil
}

// seedProfile はGoogleのユーザー情報をプロフィール初期値として保存する。
func (s *Service) seedProfile(ctx context.Context, profile *model.UserProfile, userInfo *GoogleUserInfo) {
	if userInfo.Name == "" && userInfo.Picture == "" {
		return
	}

	if userInfo.Name != "" {
		profile.Name = &userInfo.Name
	}
	if userInfo.Picture != "" {
		profile.ProfilePictureURL = &userInfo.Picture
	}

	if _, err := s.repo.UpdateProfile(ctx, profile); err != nil {
		slog.Warn("failed to seed profile from google user info",
			slog.Int("user_id", profile.UserID),
			slog.String("error", err.Error()),
		)
	}
}

// Logout はセッションを破棄する。
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("session ID is required")
	}

	if err := s.sessionRepo.DeleteByID(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	slog.Info("user logged out", slog.String("session_id", sessionID))
	return nil
}

// GetCurrentUser はセッションから現在のユーザーを取得する。
func (s *Service) GetCurrentUser(ctx context.Context, sessionID string) (*model.User, error) {
	if sessionID == "" {
		return nil, model.NewUnauthorizedError("認証が必要です")
	}

	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	if session == nil {
		return nil, model.NewUnauthorizedError("セッションが無効か期限切れです")
	}

	return s.repo.FindByID(ctx, session.UserID)
}

// createSession はセッションを作成し永続化する。
func (s *Service) createSession(ctx context.Context, userID int) (*model.Session, error) {
	sessionID, err := generateSessionID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session ID: %w", err)
	}

	session := &model.Session{
		ID:        sessionID,
		UserID:    userID,
		ExpiresAt: time.Now().Add(time.Duration(s.config.SessionMaxAge) * time.Second),
		CreatedAt: time.Now(),
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	return session, nil
}

// generateSessionID は暗号的に安全なセッションIDを生成する。
func generateSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

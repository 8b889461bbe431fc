// Package card はユーザー・プロフィール・設定のドメインロジックを提供する。
package card

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hitoshi/cardfolio/internal/model"
	"github.com/hitoshi/cardfolio/internal/repository"
	"github.com/hitoshi/cardfolio/internal/security"
)

// Service はユーザー・プロフィール・設定のサービス層。
// 永続化ポートへの唯一の参照を保持し、起動時に注入される。
// 自身は状態を持たないため、並行リクエスト間で安全に共有できる。
type Service struct {
	repo      repository.Repository
	sanitizer security.TextSanitizerService
	urlGuard  security.URLGuardService
	avatars   AvatarFetcherService
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	repo repository.Repository,
	sanitizer security.TextSanitizerService,
	urlGuard security.URLGuardService,
	avatars AvatarFetcherService,
) *Service {
	return &Service{
		repo:      repo,
		sanitizer: sanitizer,
		urlGuard:  urlGuard,
		avatars:   avatars,
	}
}

// FindByGoogleID は指定Google IDのユーザーを取得する。
func (s *Service) FindByGoogleID(ctx context.Context, googleID string) (*model.User, error) {
	return s.repo.FindByGoogleID(ctx, googleID)
}

// FindByID は指定IDのユーザーを取得する。
func (s *Service) FindByID(ctx context.Context, id int) (*model.User, error) {
	return s.repo.FindByID(ctx, id)
}

// Create はユーザーを作成する。
func (s *Service) Create(ctx context.Context, user *model.User) (*model.User, error) {
	return s.repo.Create(ctx, user)
}

// Update はユーザーのemailを更新する。
func (s *Service) Update(ctx context.Context, user *model.User) (*model.User, error) {
	return s.repo.Update(ctx, user)
}

// CreateProfile はプロフィールを作成する。
func (s *Service) CreateProfile(ctx context.Context, profile *model.UserProfile) (*model.UserProfile, error) {
	return s.repo.CreateProfile(ctx, profile)
}

// UpdateProfile はプロフィールを全フィールド置換で更新する。
func (s *Service) UpdateProfile(ctx context.Context, profile *model.UserProfile) (*model.UserProfile, error) {
	return s.repo.UpdateProfile(ctx, profile)
}

// FindProfileByUserID は指定ユーザーのプロフィールを取得する。
func (s *Service) FindProfileByUserID(ctx context.Context, userID int) (*model.UserProfile, error) {
	return s.repo.FindProfileByUserID(ctx, userID)
}

// FindProfileByID は公開ハンドルIDでプロフィールを取得する。
func (s *Service) FindProfileByID(ctx context.Context, id string) (*model.UserProfile, error) {
	return s.repo.FindProfileByID(ctx, id)
}

// FindSettingsByUserID は指定ユーザーの設定を取得する。
func (s *Service) FindSettingsByUserID(ctx context.Context, userID int) (*model.UserSetting, error) {
	return s.repo.FindSettingsByUserID(ctx, userID)
}

// FindSettingsByProfileID はプロフィールの公開ハンドルIDから所有ユーザーの設定を取得する。
func (s *Service) FindSettingsByProfileID(ctx context.Context, profileID string) (*model.UserSetting, error) {
	return s.repo.FindSettingsByProfileID(ctx, profileID)
}

// CreateSettings は設定を作成する。
func (s *Service) CreateSettings(ctx context.Context, setting *model.UserSetting) (*model.UserSetting, error) {
	return s.repo.CreateSettings(ctx, setting)
}

// UpdateSettings は設定を全フィールド置換で更新する。
func (s *Service) UpdateSettings(ctx context.Context, setting *model.UserSetting) (*model.UserSetting, error) {
	return s.repo.UpdateSettings(ctx, setting)
}

// UpdateProfileByUserID は指定ユーザーのプロフィールへ部分更新を適用する。
// 現在の永続化済みレコードを取得し、パッチで指定されたフィールドのみ
// 上書きした完全なレコードを全置換で書き込む。
// 同一プロフィールへの並行部分更新はバージョン検査を行わないため、
// フィールド単位で後勝ちになる。
func (s *Service) UpdateProfileByUserID(ctx context.Context, userID int, patch *model.ProfilePatch) (*model.UserProfile, error) {
	if err := s.normalizeProfilePatch(patch); err != nil {
		return nil, err
	}

	profile, err := s.repo.FindProfileByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	// 全フィールド未指定のパッチは書き込まずに現在のレコードを返す
	if patch.IsEmpty() {
		return profile, nil
	}

	merged := patch.Apply(profile)
	updated, err := s.repo.UpdateProfile(ctx, merged)
	if err != nil {
		return nil, err
	}

	slog.Info("profile updated",
		slog.Int("user_id", userID),
		slog.String("profile_id", updated.ID),
	)
	return updated, nil
}

// UpdateSettingsByUserID は指定ユーザーの設定へ部分更新を適用する。
// マージの規則はUpdateProfileByUserIDと同一。
func (s *Service) UpdateSettingsByUserID(ctx context.Context, userID int, patch *model.SettingsPatch) (*model.UserSetting, error) {
	setting, err := s.repo.FindSettingsByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	// 全フィールド未指定のパッチは書き込まずに現在のレコードを返す
	if patch.IsEmpty() {
		return setting, nil
	}

	merged := patch.Apply(setting)
	updated, err := s.repo.UpdateSettings(ctx, merged)
	if err != nil {
		return nil, err
	}

	slog.Info("settings updated", slog.Int("user_id", userID))
	return updated, nil
}

// profilePatchURLFields はパッチのURL項目の検証対象。
// custom_urlは公開ハンドルのスラグでありURLではないため対象外。
func profilePatchURLFields(patch *model.ProfilePatch) map[string]*string {
	return map[string]*string{
		"profile_picture_url": patch.ProfilePictureURL,
		"facebook_url":        patch.FacebookURL,
		"twitter_url":         patch.TwitterURL,
		"instagram_url":       patch.InstagramURL,
		"linkedin_url":        patch.LinkedinURL,
	}
}

// normalizeProfilePatch はパッチの自由入力テキストをサニタイズし、
// URL項目を検証する。不正なURLはBadRequestとして拒否する。
// 空文字列の指定は「項目を空にする」の意味で許可する。
func (s *Service) normalizeProfilePatch(patch *model.ProfilePatch) error {
	if s.sanitizer != nil {
		for _, field := range []*string{patch.Name, patch.Bio, patch.Location, patch.JobTitle} {
			if field != nil {
				*field = s.sanitizer.SanitizeText(*field)
			}
		}
	}

	if s.urlGuard != nil {
		for name, value := range profilePatchURLFields(patch) {
			if value == nil || *value == "" {
				continue
			}
			if err := s.urlGuard.ValidateURL(*value); err != nil {
				return model.NewBadRequestError(fmt.Sprintf("%s が不正なURLです: %v", name, err))
			}
		}
	}

	return nil
}

// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/cardfolio/internal/metrics"
	"github.com/hitoshi/cardfolio/internal/middleware"
	"github.com/hitoshi/cardfolio/internal/model"
)

// UserServiceInterface はユーザーハンドラーが必要とするサービスインターフェース。
type UserServiceInterface interface {
	// FindByID は指定IDのユーザーを取得する。
	FindByID(ctx context.Context, id int) (*model.User, error)
	// FindProfileByID は公開ハンドルIDでプロフィールを取得する。
	FindProfileByID(ctx context.Context, id string) (*model.UserProfile, error)
	// FindSettingsByProfileID はプロフィールIDに紐づく設定を取得する。
	FindSettingsByProfileID(ctx context.Context, profileID string) (*model.UserSetting, error)
	// UpdateProfileByUserID は現プロフィールにパッチをマージして置換更新する。
	UpdateProfileByUserID(ctx context.Context, userID int, patch *model.ProfilePatch) (*model.UserProfile, error)
	// UpdateSettingsByUserID は現設定にパッチをマージして置換更新する。
	UpdateSettingsByUserID(ctx context.Context, userID int, patch *model.SettingsPatch) (*model.UserSetting, error)
	// FetchAvatar はプロフィール画像を取得し、バイト列とMIMEタイプを返す。
	FetchAvatar(ctx context.Context, profileID string) ([]byte, string, error)
}

// UserHandler はユーザー・プロフィール・設定のHTTPハンドラー。
type UserHandler struct {
	service   UserServiceInterface
	collector metrics.MetricsCollector
}

// NewUserHandler はUserHandlerを生成する。
func NewUserHandler(service UserServiceInterface, collector metrics.MetricsCollector) *UserHandler {
	return &UserHandler{
		service:   service,
		collector: collector,
	}
}

// updateProfileRequest はプロフィール部分更新リクエストのボディ。
// 省略されたフィールドは変更されない。
type updateProfileRequest struct {
	Email             *string `json:"email"`
	Name              *string `json:"name"`
	Bio               *string `json:"bio"`
	PhoneNumber       *string `json:"phone_number"`
	Location          *string `json:"location"`
	ProfilePictureURL *string `json:"profile_picture_url"`
	Theme             *string `json:"theme"`
	Template          *string `json:"template"`
	CustomURL         *string `json:"custom_url"`
	JobTitle          *string `json:"job_title"`
	FacebookURL       *string `json:"facebook_url"`
	TwitterURL        *string `json:"twitter_url"`
	InstagramURL      *string `json:"instagram_url"`
	LinkedinURL       *string `json:"linkedin_url"`
}

// updateSettingsRequest は設定部分更新リクエストのボディ。
type updateSettingsRequest struct {
	ExchangeContacts *bool   `json:"exchange_contacts"`
	SaveContact      *bool   `json:"save_contact"`
	CallMe           *bool   `json:"call_me"`
	EmailMe          *bool   `json:"email_me"`
	SocialMedia      *bool   `json:"social_media"`
	Template         *string `json:"template"`
}

// userResponse はユーザー情報のAPIレスポンス。
type userResponse struct {
	ID        int       `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// profileResponse はプロフィール情報のAPIレスポンス。
type profileResponse struct {
	ID                string    `json:"id"`
	UserID            int       `json:"user_id"`
	Email             *string   `json:"email"`
	Name              *string   `json:"name"`
	Bio               *string   `json:"bio"`
	PhoneNumber       *string   `json:"phone_number"`
	Location          *string   `json:"location"`
	ProfilePictureURL *string   `json:"profile_picture_url"`
	Theme             *string   `json:"theme"`
	Template          string    `json:"template"`
	CustomURL         *string   `json:"custom_url"`
	JobTitle          *string   `json:"job_title"`
	FacebookURL       *string   `json:"facebook_url"`
	TwitterURL        *string   `json:"twitter_url"`
	InstagramURL      *string   `json:"instagram_url"`
	LinkedinURL       *string   `json:"linkedin_url"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// settingResponse は設定情報のAPIレスポンス。
type settingResponse struct {
	ID               int       `json:"id"`
	UserID           int       `json:"user_id"`
	ExchangeContacts bool      `json:"exchange_contacts"`
	SaveContact      bool      `json:"save_contact"`
	CallMe           bool      `json:"call_me"`
	EmailMe          bool      `json:"email_me"`
	SocialMedia      bool      `json:"social_media"`
	Template         string    `json:"template"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// GetUser はユーザー情報を取得する。
// GET /users/{id}
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		middleware.WriteAPIError(w, model.NewBadRequestError("ユーザーIDは整数で指定してください"))
		return
	}

	user, err := h.service.FindByID(r.Context(), id)
	if err != nil {
		middleware.WriteAPIError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(user))
}

// GetProfile は公開ハンドルIDでプロフィールを取得する。
// GET /users/profile/{id}
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	profileID := chi.URLParam(r, "id")

	profile, err := h.service.FindProfileByID(r.Context(), profileID)
	if err != nil {
		middleware.WriteAPIError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toProfileResponse(profile))
}

// GetAvatar はプロフィール画像を取得して返すプロキシエンドポイント。
// GET /users/profile/{id}/avatar
func (h *UserHandler) GetAvatar(w http.ResponseWriter, r *http.Request) {
	profileID := chi.URLParam(r, "id")

	data, mimeType, err := h.service.FetchAvatar(r.Context(), profileID)
	if err != nil {
		if h.collector != nil {
			h.collector.RecordAvatarFetchFailure(avatarFailureReason(err))
		}
		middleware.WriteAPIError(w, err)
		return
	}

	if h.collector != nil {
		h.collector.RecordAvatarFetchSuccess()
	}

	w.Header().Set("Content-Type", mimeType)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// GetSettings はプロフィールIDに紐づく設定を取得する。
// GET /users/settings/{id}
func (h *UserHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	profileID := chi.URLParam(r, "id")

	setting, err := h.service.FindSettingsByProfileID(r.Context(), profileID)
	if err != nil {
		middleware.WriteAPIError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toSettingResponse(setting))
}

// UpdateProfile はログインユーザーのプロフィールを部分更新する。
// PUT /users/profile
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		middleware.WriteAPIError(w, model.NewUnauthorizedError("認証が必要です"))
		return
	}

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteAPIError(w, model.NewBadRequestError("リクエストボディの解析に失敗しました"))
		return
	}

	patch := &model.ProfilePatch{
		Email:             req.Email,
		Name:              req.Name,
		Bio:               req.Bio,
		PhoneNumber:       req.PhoneNumber,
		Location:          req.Location,
		ProfilePictureURL: req.ProfilePictureURL,
		Theme:             req.Theme,
		Template:          req.Template,
		CustomURL:         req.CustomURL,
		JobTitle:          req.JobTitle,
		FacebookURL:       req.FacebookURL,
		TwitterURL:        req.TwitterURL,
		InstagramURL:      req.InstagramURL,
		LinkedinURL:       req.LinkedinURL,
	}

	profile, err := h.service.UpdateProfileByUserID(r.Context(), userID, patch)
	if err != nil {
		middleware.WriteAPIError(w, err)
		return
	}

	if h.collector != nil {
		h.collector.RecordProfileUpdate()
	}

	writeJSON(w, http.StatusOK, toProfileResponse(profile))
}

// UpdateSettings はログインユーザーの設定を部分更新する。
// PUT /users/settings
func (h *UserHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		middleware.WriteAPIError(w, model.NewUnauthorizedError("認証が必要です"))
		return
	}

	var req updateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteAPIError(w, model.NewBadRequestError("リクエストボディの解析に失敗しました"))
		return
	}

	patch := &model.SettingsPatch{
		ExchangeContacts: req.ExchangeContacts,
		SaveContact:      req.SaveContact,
		CallMe:           req.CallMe,
		EmailMe:          req.EmailMe,
		SocialMedia:      req.SocialMedia,
		Template:         req.Template,
	}

	setting, err := h.service.UpdateSettingsByUserID(r.Context(), userID, patch)
	if err != nil {
		middleware.WriteAPIError(w, err)
		return
	}

	if h.collector != nil {
		h.collector.RecordSettingsUpdate()
	}

	writeJSON(w, http.StatusOK, toSettingResponse(setting))
}

// --- 変換ヘルパー ---

func toUserResponse(user *model.User) userResponse {
	return userResponse{
		ID:        user.ID,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

func toProfileResponse(profile *model.UserProfile) profileResponse {
	return profileResponse{
		ID:                profile.ID,
		UserID:            profile.UserID,
		Email:             profile.Email,
		Name:              profile.Name,
		Bio:               profile.Bio,
		PhoneNumber:       profile.PhoneNumber,
		Location:          profile.Location,
		ProfilePictureURL: profile.ProfilePictureURL,
		Theme:             profile.Theme,
		Template:          profile.Template,
		CustomURL:         profile.CustomURL,
		JobTitle:          profile.JobTitle,
		FacebookURL:       profile.FacebookURL,
		TwitterURL:        profile.TwitterURL,
		InstagramURL:      profile.InstagramURL,
		LinkedinURL:       profile.LinkedinURL,
		UpdatedAt:         profile.UpdatedAt,
	}
}

func toSettingResponse(setting *model.UserSetting) settingResponse {
	return settingResponse{
		ID:               setting.ID,
		UserID:           setting.UserID,
		ExchangeContacts: setting.ExchangeContacts,
		SaveContact:      setting.SaveContact,
		CallMe:           setting.CallMe,
		EmailMe:          setting.EmailMe,
		SocialMedia:      setting.SocialMedia,
		Template:         setting.Template,
		UpdatedAt:        setting.UpdatedAt,
	}
}

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

// avatarFailureReason はメトリクスのラベル用に失敗理由を分類する。
func avatarFailureReason(err error) string {
	switch {
	case model.IsKind(err, model.KindNotFound):
		return "not_found"
	case model.IsKind(err, model.KindForbidden):
		return "blocked_url"
	case model.IsKind(err, model.KindServiceUnavailable):
		return "fetch_failed"
	default:
		return "other"
	}
}

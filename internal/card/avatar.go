package card

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/hitoshi/cardfolio/internal/model"
	"github.com/hitoshi/cardfolio/internal/security"
)

// defaultMaxAvatarSize はプロフィール画像の最大サイズ（2MB）。
// AVATAR_MAX_SIZE未設定時に使われる。
const defaultMaxAvatarSize = 2 * 1024 * 1024

// defaultAvatarTimeout はプロフィール画像取得のタイムアウト。
// AVATAR_TIMEOUT未設定時に使われる。
const defaultAvatarTimeout = 5 * time.Second

// AvatarFetcherService はプロフィール画像取得のインターフェース。
// カードを閲覧するクライアントへ画像を中継するプロキシとして、
// 外部URLの画像をサーバー側で取得する。
type AvatarFetcherService interface {
	// Fetch は指定URLからプロフィール画像を取得する。
	// 画像データとMIMEタイプを返す。取得失敗時はエラーを返す。
	Fetch(ctx context.Context, pictureURL string) (data []byte, mimeType string, err error)
}

// AvatarFetcher はプロフィール画像取得機能の実装。
// SSRF防止機能付きのHTTPクライアントを使用する。
type AvatarFetcher struct {
	urlGuard security.URLGuardService
	timeout  time.Duration
	maxSize  int64
}

// NewAvatarFetcher はAvatarFetcherの新しいインスタンスを生成する。
// timeoutとmaxSizeはAVATAR_TIMEOUT / AVATAR_MAX_SIZEに対応し、
// ゼロ値の場合はデフォルト値（5秒・2MB）にフォールバックする。
func NewAvatarFetcher(urlGuard security.URLGuardService, timeout time.Duration, maxSize int64) *AvatarFetcher {
	if timeout <= 0 {
		timeout = defaultAvatarTimeout
	}
	if maxSize <= 0 {
		maxSize = defaultMaxAvatarSize
	}
	return &AvatarFetcher{
		urlGuard: urlGuard,
		timeout:  timeout,
		maxSize:  maxSize,
	}
}

// Fetch は指定URLからプロフィール画像を取得する。
// URLの事前検証、サイズ上限、Content-Typeの確認を行う。
func (f *AvatarFetcher) Fetch(ctx context.Context, pictureURL string) ([]byte, string, error) {
	if pictureURL == "" {
		return nil, "", fmt.Errorf("empty picture URL")
	}

	// SSRF検証
	if f.urlGuard != nil {
		if err := f.urlGuard.ValidateURL(pictureURL); err != nil {
			return nil, "", fmt.Errorf("blocked picture URL: %w", err)
		}
	}

	client := f.getHTTPClient()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pictureURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", "Cardfolio/1.0")

	resp, err := client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to fetch picture: %w", err)
	}
	defer resp.Body.Close()

	// 2xx以外は取得失敗として扱う
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", fmt.Errorf("unexpected status %d fetching picture", resp.StatusCode)
	}

	// レスポンスボディを設定された上限まで読み込む
	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxSize+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read picture body: %w", err)
	}

	if int64(len(body)) > f.maxSize {
		return nil, "", fmt.Errorf("picture exceeds size limit (%d bytes)", f.maxSize)
	}

	mimeType := extractMimeType(resp.Header.Get("Content-Type"))
	if !isImageMime(mimeType) {
		return nil, "", fmt.Errorf("non-image content type: %s", mimeType)
	}

	return body, mimeType, nil
}

// getHTTPClient は設定されたタイムアウトのHTTPクライアントを取得する。
func (f *AvatarFetcher) getHTTPClient() *http.Client {
	if f.urlGuard != nil {
		return f.urlGuard.NewSafeClient(f.timeout)
	}
	return &http.Client{Timeout: f.timeout}
}

// extractMimeType はContent-Typeヘッダーからパラメータを除いたMIMEタイプを抽出する。
func extractMimeType(contentType string) string {
	if idx := strings.Index(contentType, ";"); idx >= 0 {
		contentType = contentType[:idx]
	}
	return strings.ToLower(strings.TrimSpace(contentType))
}

// isImageMime はMIMEタイプが画像かどうかを判定する。
func isImageMime(mimeType string) bool {
	return strings.HasPrefix(mimeType, "image/")
}

// FetchAvatar は公開ハンドルIDのプロフィール画像を取得して返す。
// 画像が未設定の場合はNotFound、外部からの取得に失敗した場合は
// ServiceUnavailableを返す。取得失敗の詳細はログにのみ記録する。
func (s *Service) FetchAvatar(ctx context.Context, profileID string) ([]byte, string, error) {
	profile, err := s.repo.FindProfileByID(ctx, profileID)
	if err != nil {
		return nil, "", err
	}

	if profile.ProfilePictureURL == nil || *profile.ProfilePictureURL == "" {
		return nil, "", model.NewNotFoundError(fmt.Sprintf("プロフィールID %s の画像が設定されていません", profileID))
	}

	data, mimeType, err := s.avatars.Fetch(ctx, *profile.ProfilePictureURL)
	if err != nil {
		slog.Warn("avatar fetch failed",
			slog.String("profile_id", profileID),
			slog.String("error", err.Error()),
		)
		return nil, "", model.NewServiceUnavailableError("プロフィール画像の取得に失敗しました")
	}

	return data, mimeType, nil
}

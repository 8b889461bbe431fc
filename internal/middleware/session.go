// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/hitoshi/cardfolio/internal/model"
)

const sessionCookieName = "session_id"

// contextKey はコンテキスト値のキー型。他パッケージのキーと衝突しない。
type contextKey string

var userIDContextKey = contextKey("user_id")

// SessionFinder はセッション検証に必要な最小のインターフェース。
// repository.SessionRepositoryがこれを満たす。
type SessionFinder interface {
	FindByID(ctx context.Context, id string) (*model.Session, error)
}

// NewSessionMiddleware は保護対象ルートの認証ミドルウェアを返す。
// session_id CookieをDBと照合し、所有ユーザーのIDをコンテキストへ
// 注入してから後続ハンドラを呼ぶ。Cookieが無い、セッションが
// 見つからない、または期限切れの場合は401で打ち切る。
func NewSessionMiddleware(sessionFinder SessionFinder) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, apiErr := resolveSession(r, sessionFinder)
			if apiErr != nil {
				WriteAPIError(w, apiErr)
				return
			}

			ctx := ContextWithUserID(r.Context(), session.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// resolveSession はリクエストのCookieから有効なセッションを引き当てる。
// 検証に失敗した理由はすべて401のAPIErrorとして返す。
func resolveSession(r *http.Request, finder SessionFinder) (*model.Session, *model.APIError) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil || cookie.Value == "" {
		return nil, model.NewUnauthorizedError("認証が必要です")
	}

	session, err := finder.FindByID(r.Context(), cookie.Value)
	if err != nil {
		slog.Error("session lookup failed", slog.String("error", err.Error()))
		return nil, model.NewUnauthorizedError("認証が必要です")
	}
	// リポジトリは期限切れセッションをnilとして返す
	if session == nil {
		return nil, model.NewUnauthorizedError("セッションが無効です。再度ログインしてください")
	}

	return session, nil
}

// UserIDFromContext は認証済みリクエストのコンテキストからユーザーIDを取り出す。
// セッションミドルウェアを通過していないコンテキストではエラーを返す。
func UserIDFromContext(ctx context.Context) (int, error) {
	userID, ok := ctx.Value(userIDContextKey).(int)
	if !ok || userID == 0 {
		return 0, fmt.Errorf("user ID not found in context")
	}
	return userID, nil
}

// ContextWithUserID はユーザーIDを注入したコンテキストを返す。
func ContextWithUserID(ctx context.Context, userID int) context.Context {
	return context.WithValue(ctx, userIDContextKey, userID)
}

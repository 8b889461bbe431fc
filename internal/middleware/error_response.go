package middleware

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/cardfolio/internal/model"
)

// ErrorResponseBody はAPIエラーレスポンスの統一フォーマット。
type ErrorResponseBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// kindStatusMap はエラーKindとHTTPステータスコードの対応表。
var kindStatusMap = map[model.ErrorKind]int{
	model.KindNotFound:           http.StatusNotFound,
	model.KindConflict:           http.StatusConflict,
	model.KindBadRequest:         http.StatusBadRequest,
	model.KindForbidden:          http.StatusForbidden,
	model.KindUnauthorized:       http.StatusUnauthorized,
	model.KindServiceUnavailable: http.StatusServiceUnavailable,
	model.KindDatabaseError:      http.StatusInternalServerError,
	model.KindUnexpectedError:    http.StatusInternalServerError,
}

// StatusForKind はエラーKindに対応するHTTPステータスコードを返す。
// 未知のKindは500として扱う。
func StatusForKind(kind model.ErrorKind) int {
	if status, ok := kindStatusMap[kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// WriteAPIError は統一エラーフォーマットでHTTPエラーレスポンスを書き込む。
// APIErrorでないエラーはUnexpectedErrorとして500を返す。
// 500系の原因詳細はログのみに記録し、ユーザーには一般的なメッセージを返す。
func WriteAPIError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		apiErr = model.NewUnexpectedError(err)
	}

	status := StatusForKind(apiErr.Kind)
	if status >= http.StatusInternalServerError && apiErr.Err != nil {
		slog.Error("internal error",
			slog.String("kind", string(apiErr.Kind)),
			slog.String("error", apiErr.Err.Error()),
		)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponseBody{
		Kind:    string(apiErr.Kind),
		Message: apiErr.ExternalMessage(),
	})
}

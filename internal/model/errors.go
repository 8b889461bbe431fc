// Package model はドメインモデルを定義する。
package model

import (
	"errors"
	"fmt"
)

// ErrorKind はAPIエラーの分類を表す。
// 閉じた集合であり、各Kindは外部から観測可能なHTTPステータスに1対1で対応する。
type ErrorKind string

// 定義済みエラーKind
const (
	KindNotFound           ErrorKind = "not_found"
	KindConflict           ErrorKind = "conflict"
	KindBadRequest         ErrorKind = "bad_request"
	KindForbidden          ErrorKind = "forbidden"
	KindUnauthorized       ErrorKind = "unauthorized"
	KindServiceUnavailable ErrorKind = "service_unavailable"
	KindDatabaseError      ErrorKind = "database_error"
	KindUnexpectedError    ErrorKind = "unexpected_error"
)

// APIError は全レイヤーで共有する統一エラーフォーマットを表す。
// ストレージ層で検出された失敗は検出時点で分類され、
// サービス層は分類を変更せずそのまま呼び出し元へ伝播する。
type APIError struct {
	Kind    ErrorKind // エラー分類
	Message string    // 利用者向けメッセージ
	Err     error     // 原因エラー（DatabaseError / UnexpectedErrorのみ）
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Unwrap は原因エラーを返す。errors.Is / errors.As での検査に使用する。
func (e *APIError) Unwrap() error {
	return e.Err
}

// ExternalMessage は外部レスポンスに載せるメッセージを返す。
// DatabaseError / UnexpectedError はストレージ内部の詳細を漏らさないよう
// 一般的なメッセージに差し替える。原因はサーバー側ログにのみ記録する。
func (e *APIError) ExternalMessage() string {
	switch e.Kind {
	case KindDatabaseError, KindUnexpectedError:
		return "内部エラーが発生しました。しばらく待ってから再度お試しください。"
	default:
		return e.Message
	}
}

// IsKind はエラーが指定KindのAPIErrorかどうかを判定する。
func IsKind(err error, kind ErrorKind) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Kind == kind
}

// NewNotFoundError は対象レコード未検出エラーを生成する。
// messageには検索キーとその値を含めること。
func NewNotFoundError(message string) *APIError {
	return &APIError{Kind: KindNotFound, Message: message}
}

// NewConflictError は一意性制約違反エラーを生成する。
// messageには衝突したエンティティを含めること。
func NewConflictError(message string) *APIError {
	return &APIError{Kind: KindConflict, Message: message}
}

// NewBadRequestError は不正なリクエストエラーを生成する。
func NewBadRequestError(message string) *APIError {
	return &APIError{Kind: KindBadRequest, Message: message}
}

// NewForbiddenError は権限不足エラーを生成する。
func NewForbiddenError(message string) *APIError {
	return &APIError{Kind: KindForbidden, Message: message}
}

// NewUnauthorizedError は未認証エラーを生成する。
func NewUnauthorizedError(message string) *APIError {
	return &APIError{Kind: KindUnauthorized, Message: message}
}

// NewServiceUnavailableError は外部依存の一時的な利用不可エラーを生成する。
func NewServiceUnavailableError(message string) *APIError {
	return &APIError{Kind: KindServiceUnavailable, Message: message}
}

// NewDatabaseError はストレージ層の予期しない失敗を包むエラーを生成する。
// 原因はログ用に保持し、外部メッセージには含めない。
func NewDatabaseError(err error) *APIError {
	return &APIError{
		Kind:    KindDatabaseError,
		Message: "データベースエラーが発生しました",
		Err:     err,
	}
}

// NewUnexpectedError はパース・エンコード等の予期しない失敗を包むエラーを生成する。
// 原因はログ用に保持し、外部メッセージには含めない。
func NewUnexpectedError(err error) *APIError {
	return &APIError{
		Kind:    KindUnexpectedError,
		Message: "予期しないエラーが発生しました",
		Err:     err,
	}
}

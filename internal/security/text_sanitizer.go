// Package security はアプリケーションのセキュリティ機能を提供する。
//
// TextSanitizerService はプロフィールの自由入力項目（名前、自己紹介、
// 所在地、肩書き等）からマークアップを除去し、公開カードを閲覧する
// ユーザーをXSS攻撃などのセキュリティリスクから保護する。
// bluemondayライブラリのStrictPolicyにより、全てのHTMLタグと属性を除去する。
package security

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// TextSanitizerService はテキストサニタイズ機能のインターフェースを定義する。
// プロフィールの部分更新でテキスト項目を保存する前に使用される。
type TextSanitizerService interface {
	// SanitizeText は入力文字列からHTMLタグ・属性を全て除去して返す。
	// プロフィールの表示項目は平文のみを想定しているため、許可タグはない。
	// 前後の空白は除去する。
	// 空文字列の入力には空文字列を返す。
	// 同一入力に対して常に同一出力を返す（冪等）。
	SanitizeText(raw string) string
}

// textSanitizer はTextSanitizerServiceの実装。
// bluemondayのポリシーを保持し、スレッドセーフにサニタイズ処理を行う。
type textSanitizer struct {
	policy *bluemonday.Policy
}

// NewTextSanitizer はTextSanitizerServiceの新しいインスタンスを生成する。
// StrictPolicyは許可タグを一切持たないため、script等の危険なタグだけでなく
// 全てのマークアップが除去される。
func NewTextSanitizer() *textSanitizer {
	return &textSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// SanitizeText は入力文字列からHTMLタグ・属性を全て除去して返す。
func (s *textSanitizer) SanitizeText(raw string) string {
	if raw == "" {
		return ""
	}
	return strings.TrimSpace(s.policy.Sanitize(raw))
}

// compile-time interface check
var _ TextSanitizerService = (*textSanitizer)(nil)

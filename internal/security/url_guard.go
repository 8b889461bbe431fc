// Package security はアプリケーションのセキュリティ機能を提供する。
package security

import (
	"fmt"
	"net/http"
	"net/netip"
	"net/url"
	"strings"
	"time"

	"github.com/doyensec/safeurl"
)

// URLGuardService はユーザー入力URLの検証とSSRF防止機能のインターフェースを定義する。
// プロフィール更新時の事前検証と、アバタープロキシの取得時の両方で使用される。
type URLGuardService interface {
	// NewSafeClient はSSRF防止機能付きのHTTPクライアントを生成する。
	// safeurlがnet.DialerのControlフックでDNS解決後のIPアドレスを
	// 検証するため、DNS再バインディング攻撃にも対応する。
	// レスポンスサイズの上限は呼び出し側が読み取り時に制御する。
	NewSafeClient(timeout time.Duration) *http.Client

	// ValidateURL はURLの安全性をDNS解決なしで事前検証する。
	ValidateURL(rawURL string) error
}

// allowedSchemes はユーザー入力URLで許可されるスキーム。
var allowedSchemes = []string{"http", "https"}

// blockedPrefixes は検証でブロックするアドレス範囲。
// プロフィールのURL項目に内部ネットワークを指すアドレスを
// 保存させないための静的チェックに使う。
var blockedPrefixes = []netip.Prefix{
	// プライベートアドレス (RFC 1918)
	netip.MustParsePrefix("10.0.0.0/8"),
	netip.MustParsePrefix("172.16.0.0/12"),
	netip.MustParsePrefix("192.168.0.0/16"),
	// ループバック
	netip.MustParsePrefix("127.0.0.0/8"),
	// リンクローカル。クラウドメタデータIP (169.254.169.254) を含む
	netip.MustParsePrefix("169.254.0.0/16"),
	// カレントネットワーク
	netip.MustParsePrefix("0.0.0.0/8"),
	// IPv6ループバック・リンクローカル・ユニークローカル
	netip.MustParsePrefix("::1/128"),
	netip.MustParsePrefix("fe80::/10"),
	netip.MustParsePrefix("fc00::/7"),
}

// blockedHostnames はIPアドレス形式でない危険なホスト名。
var blockedHostnames = map[string]bool{
	"localhost":                true,
	"metadata.google.internal": true,
}

// urlGuard はURLGuardServiceの実装。
type urlGuard struct{}

// NewURLGuard はURLGuardServiceの新しいインスタンスを生成する。
func NewURLGuard() *urlGuard {
	return &urlGuard{}
}

// NewSafeClient はSSRF防止機能付きのHTTPクライアントを生成する。
// アバタープロキシがprofile_picture_urlを取得する際に使用する。
func (g *urlGuard) NewSafeClient(timeout time.Duration) *http.Client {
	config := safeurl.GetConfigBuilder().
		SetTimeout(timeout).
		SetAllowedSchemes(allowedSchemes...).
		SetAllowedPorts(80, 443).
		Build()

	return safeurl.Client(config).Client
}

// ValidateURL はスキーム・ホスト・アドレス範囲の静的検証を行う。
// プロフィールのURL項目（画像URL、SNS URL等）を保存する前の
// 事前チェックとして使用する。ここはDNS解決を伴わないため、
// DNS再バインディングはNewSafeClient側のDialer検証で防止される。
func (g *urlGuard) ValidateURL(rawURL string) error {
	if rawURL == "" {
		return fmt.Errorf("empty URL")
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	if !isAllowedScheme(parsed.Scheme) {
		return fmt.Errorf("disallowed scheme %q (allowed: %v)", parsed.Scheme, allowedSchemes)
	}

	host := parsed.Hostname()
	if host == "" {
		return fmt.Errorf("empty host in URL: %s", rawURL)
	}

	// IPアドレス形式ならブロック範囲と照合、ホスト名ならブロックリストと照合
	if addr, err := netip.ParseAddr(host); err == nil {
		if isBlockedAddr(addr) {
			return fmt.Errorf("blocked IP address: %s", addr)
		}
		return nil
	}
	if blockedHostnames[strings.ToLower(host)] {
		return fmt.Errorf("blocked host: %s", host)
	}

	return nil
}

func isAllowedScheme(scheme string) bool {
	for _, allowed := range allowedSchemes {
		if strings.EqualFold(scheme, allowed) {
			return true
		}
	}
	return false
}

// isBlockedAddr はアドレスがブロック範囲に含まれるかを判定する。
// IPv4射影アドレスはIPv4として照合する。
func isBlockedAddr(addr netip.Addr) bool {
	addr = addr.Unmap()
	for _, prefix := range blockedPrefixes {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

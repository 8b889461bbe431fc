package security

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// URLGuardがインターフェースを満たすことを検証
func TestURLGuard_ImplementsInterface(t *testing.T) {
	var _ URLGuardService = NewURLGuard()
}

// SafeClientの生成とタイムアウト設定を検証
func TestNewSafeClient_Configuration(t *testing.T) {
	guard := NewURLGuard()
	timeout := 5 * time.Second

	client := guard.NewSafeClient(timeout)
	if client == nil {
		t.Fatal("NewSafeClient() returned nil")
	}
	if client.Timeout != timeout {
		t.Errorf("timeout = %v, want %v", client.Timeout, timeout)
	}
	// safeurlはDialerレベルでIP検証するカスタムTransportを差し込む
	if client.Transport == nil || client.Transport == http.DefaultTransport {
		t.Error("expected safeurl custom Transport")
	}
}

// SafeClientがループバックへの実リクエストをブロックすることを検証。
// httptestサーバーは127.0.0.1で待ち受けるため、safeurlが接続を拒否する。
func TestNewSafeClient_BlocksLoopbackRequest(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	client := NewURLGuard().NewSafeClient(5 * time.Second)

	if _, err := client.Get(ts.URL); err == nil {
		t.Fatal("expected error for loopback address request, got nil")
	}
}

// ValidateURLの判定を入力カテゴリごとに検証
func TestValidateURL(t *testing.T) {
	guard := NewURLGuard()

	tests := []struct {
		name    string
		rawURL  string
		wantErr bool
	}{
		// 公開URL: プロフィールに保存できる
		{name: "公開ドメイン", rawURL: "https://example.com", wantErr: false},
		{name: "Googleの画像URL", rawURL: "https://lh3.googleusercontent.com/a/photo.jpg", wantErr: false},
		{name: "SNSプロフィールURL", rawURL: "https://twitter.com/taro", wantErr: false},
		{name: "httpの公開URL", rawURL: "http://blog.example.org/avatar.png", wantErr: false},

		// プライベートアドレス (RFC 1918)
		{name: "10.x", rawURL: "http://10.0.0.1/avatar.png", wantErr: true},
		{name: "10.xの末尾", rawURL: "http://10.255.255.255/avatar.png", wantErr: true},
		{name: "172.16.x", rawURL: "http://172.16.0.1/avatar.png", wantErr: true},
		{name: "172.31.x", rawURL: "http://172.31.255.255/avatar.png", wantErr: true},
		{name: "192.168.x", rawURL: "http://192.168.1.100/avatar.png", wantErr: true},

		// ループバック
		{name: "127.0.0.1", rawURL: "http://127.0.0.1/avatar.png", wantErr: true},
		{name: "127.0.0.2", rawURL: "http://127.0.0.2/avatar.png", wantErr: true},
		{name: "localhost", rawURL: "http://localhost/avatar.png", wantErr: true},
		{name: "IPv6ループバック", rawURL: "http://[::1]/avatar.png", wantErr: true},

		// リンクローカルとクラウドメタデータ
		{name: "AWSメタデータ", rawURL: "http://169.254.169.254/latest/meta-data/", wantErr: true},
		{name: "Azureメタデータ", rawURL: "http://169.254.169.254/metadata/instance?api-version=2021-02-01", wantErr: true},
		{name: "GCPメタデータIP", rawURL: "http://169.254.169.254/computeMetadata/v1/", wantErr: true},
		{name: "GCPメタデータホスト名", rawURL: "http://metadata.google.internal/computeMetadata/v1/", wantErr: true},
		{name: "リンクローカル", rawURL: "http://169.254.0.1/avatar.png", wantErr: true},

		// ゼロアドレス
		{name: "0.0.0.0", rawURL: "http://0.0.0.0/avatar.png", wantErr: true},

		// 形式とスキーム
		{name: "空文字列", rawURL: "", wantErr: true},
		{name: "URLでない文字列", rawURL: "not-a-url", wantErr: true},
		{name: "ftpスキーム", rawURL: "ftp://example.com/avatar.png", wantErr: true},
		{name: "fileスキーム", rawURL: "file:///etc/passwd", wantErr: true},
		{name: "gopherスキーム", rawURL: "gopher://example.com", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := guard.ValidateURL(tt.rawURL)
			if tt.wantErr && err == nil {
				t.Errorf("ValidateURL(%q) = nil, want error", tt.rawURL)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("ValidateURL(%q) = %v, want nil", tt.rawURL, err)
			}
		})
	}
}

// IPv4射影アドレスがIPv4として照合されることを検証
func TestValidateURL_MappedIPv4(t *testing.T) {
	guard := NewURLGuard()

	if err := guard.ValidateURL("http://[::ffff:192.168.0.1]/avatar.png"); err == nil {
		t.Error("expected mapped private IPv4 to be blocked")
	}
}

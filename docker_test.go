package main_test

import (
	"os"
	"strings"
	"testing"
)

func readBuildFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("%s should exist: %v", path, err)
	}
	return string(data)
}

// Dockerfileがマルチステージ構成で、最終ステージが軽量イメージであることを検証
func TestDockerfile_MultiStageBuild(t *testing.T) {
	content := readBuildFile(t, "Dockerfile")

	if !strings.Contains(content, "FROM golang:") {
		t.Error("Dockerfile should contain a Go builder stage (FROM golang:)")
	}

	var finalStage string
	for _, line := range strings.Split(content, "\n") {
		if trimmed := strings.TrimSpace(line); strings.HasPrefix(trimmed, "FROM ") {
			finalStage = trimmed
		}
	}
	minimal := strings.Contains(finalStage, "gcr.io/distroless") ||
		strings.Contains(finalStage, "alpine") ||
		strings.Contains(finalStage, "scratch")
	if !minimal {
		t.Errorf("final stage should use a minimal base image, got: %s", finalStage)
	}
}

// Dockerfileの必須要素を検証
func TestDockerfile_RequiredDirectives(t *testing.T) {
	content := readBuildFile(t, "Dockerfile")

	tests := []struct {
		name string
		want string
	}{
		{name: "cardfolioバイナリをビルドする", want: "cardfolio"},
		{name: "エントリポイントを定義する", want: "ENTRYPOINT"},
		{name: "ヘルスチェックを定義する", want: "HEALTHCHECK"},
		{name: "CGOを無効化して静的ビルドする", want: "CGO_ENABLED=0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !strings.Contains(content, tt.want) {
				t.Errorf("Dockerfile should contain %q", tt.want)
			}
		})
	}
}

// docker-composeが3コンテナ構成(api/worker/db)であることを検証
func TestDockerCompose_Services(t *testing.T) {
	content := readBuildFile(t, "docker-compose.yml")

	for _, svc := range []string{"api:", "worker:", "db:"} {
		if !strings.Contains(content, svc) {
			t.Errorf("docker-compose.yml should contain service %q", svc)
		}
	}
	if !strings.Contains(content, "postgres:") {
		t.Error("docker-compose.yml db service should use the PostgreSQL image")
	}
	// workerサービスはセッションクリーンアップのworkerサブコマンドで起動する
	if !strings.Contains(content, "worker") {
		t.Error("docker-compose.yml worker service should use the worker subcommand")
	}
}

// egress制御のネットワーク構成を検証。
// DBとworkerは内部ネットワークに閉じ、APIのみOAuthと
// プロフィール画像プロキシのため外部ネットワークへ出られる。
func TestDockerCompose_NetworkIsolation(t *testing.T) {
	content := readBuildFile(t, "docker-compose.yml")

	if !strings.Contains(content, "networks:") {
		t.Fatal("docker-compose.yml should define networks for egress control")
	}
	if !strings.Contains(content, "internal: true") {
		t.Error("docker-compose.yml should define an internal-only network (internal: true)")
	}
	if !strings.Contains(content, "external") {
		t.Error("docker-compose.yml should attach the api service to an external network")
	}
}

package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
)

// parseLogLine は1行のJSONログをデコードする。
func parseLogLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected valid JSON log output, got error: %v\nraw output: %s", err, buf.String())
	}
	return entry
}

// 出力がJSON形式でメッセージと属性を含むことを検証
func TestSetup_ReturnsJSONLogger(t *testing.T) {
	var buf bytes.Buffer
	l := Setup(&buf)
	if l == nil {
		t.Fatal("expected non-nil logger")
	}

	l.Info("profile updated",
		slog.Int("user_id", 123),
		slog.String("profile_id", "p-456"),
	)

	entry := parseLogLine(t, &buf)
	if entry["msg"] != "profile updated" {
		t.Errorf("msg = %q, want %q", entry["msg"], "profile updated")
	}
	if entry["user_id"] != float64(123) {
		t.Errorf("user_id = %v, want 123", entry["user_id"])
	}
	if entry["profile_id"] != "p-456" {
		t.Errorf("profile_id = %q, want %q", entry["profile_id"], "p-456")
	}
}

// 標準フィールド(time/level)が含まれることを検証
func TestSetup_IncludesStandardFields(t *testing.T) {
	var buf bytes.Buffer
	Setup(&buf).Warn("session cleanup delayed")

	entry := parseLogLine(t, &buf)
	if _, ok := entry["time"]; !ok {
		t.Error("expected 'time' field in JSON log output")
	}
	if entry["level"] != "WARN" {
		t.Errorf("level = %q, want %q", entry["level"], "WARN")
	}
}

// デフォルトレベル(Info)ではDebugが抑制されることを検証
func TestSetup_DefaultLevelSuppressesDebug(t *testing.T) {
	var buf bytes.Buffer
	Setup(&buf).Debug("verbose detail")

	if buf.Len() != 0 {
		t.Errorf("expected debug log to be suppressed, got %q", buf.String())
	}
}

// LOG_LEVEL=debugでDebugが出力されることを検証
func TestSetup_DebugLevelFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")

	var buf bytes.Buffer
	Setup(&buf).Debug("verbose detail")

	entry := parseLogLine(t, &buf)
	if entry["level"] != "DEBUG" {
		t.Errorf("level = %q, want %q", entry["level"], "DEBUG")
	}
}

// LOG_LEVEL=errorでWarnが抑制されることを検証
func TestSetup_ErrorLevelSuppressesWarn(t *testing.T) {
	t.Setenv("LOG_LEVEL", "error")

	var buf bytes.Buffer
	Setup(&buf).Warn("should be suppressed")

	if buf.Len() != 0 {
		t.Errorf("expected warn log to be suppressed at error level, got %q", buf.String())
	}
}

// 不明なLOG_LEVELはInfoにフォールバックすることを検証
func TestLevelFromEnv_UnknownValueDefaultsToInfo(t *testing.T) {
	t.Setenv("LOG_LEVEL", "chatty")

	if got := levelFromEnv(); got != slog.LevelInfo {
		t.Errorf("levelFromEnv() = %v, want %v", got, slog.LevelInfo)
	}
}

// SetupDefaultがグローバルロガーを差し替えることを検証
func TestSetupDefault_SetsGlobalLogger(t *testing.T) {
	var buf bytes.Buffer
	SetupDefault(&buf)

	slog.Default().Info("global test", slog.String("test_key", "test_val"))

	entry := parseLogLine(t, &buf)
	if entry["msg"] != "global test" {
		t.Errorf("msg = %q, want %q", entry["msg"], "global test")
	}
	if entry["test_key"] != "test_val" {
		t.Errorf("test_key = %q, want %q", entry["test_key"], "test_val")
	}
}

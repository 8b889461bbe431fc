package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// TestNewCollector_ReturnsNonNil はCollectorが正常に生成されることを検証する。
func TestNewCollector_ReturnsNonNil(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	if c == nil {
		t.Fatal("expected non-nil Collector")
	}
}

// TestRecordHTTPRequest_IncrementsCounter はHTTPリクエストカウンタが増加することを検証する。
func TestRecordHTTPRequest_IncrementsCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordHTTPRequest(http.MethodGet, "/users/{id}", http.StatusOK, 50*time.Millisecond)
	c.RecordHTTPRequest(http.MethodGet, "/users/{id}", http.StatusOK, 30*time.Millisecond)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	var found bool
	for _, mf := range families {
		if mf.GetName() == "cardfolio_http_requests_total" {
			found = true
			if got := mf.GetMetric()[0].GetCounter().GetValue(); got != 2 {
				t.Errorf("counter = %v, want 2", got)
			}
		}
	}
	if !found {
		t.Error("cardfolio_http_requests_total not found")
	}
}

// TestRecordSessionsCleaned_AddsCount はセッション削除数が加算されることを検証する。
func TestRecordSessionsCleaned_AddsCount(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordSessionsCleaned(3)
	c.RecordSessionsCleaned(2)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	for _, mf := range families {
		if mf.GetName() == "cardfolio_sessions_cleaned_total" {
			if got := mf.GetMetric()[0].GetCounter().GetValue(); got != 5 {
				t.Errorf("counter = %v, want 5", got)
			}
			return
		}
	}
	t.Error("cardfolio_sessions_cleaned_total not found")
}

// TestRecordAvatarFetchFailure_LabelsByReason は理由別のラベルが付くことを検証する。
func TestRecordAvatarFetchFailure_LabelsByReason(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordAvatarFetchFailure("timeout")
	c.RecordAvatarFetchFailure("timeout")
	c.RecordAvatarFetchFailure("blocked_url")

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	for _, mf := range families {
		if mf.GetName() == "cardfolio_avatar_fetch_fail_total" {
			if len(mf.GetMetric()) != 2 {
				t.Errorf("label combinations = %d, want 2", len(mf.GetMetric()))
			}
			return
		}
	}
	t.Error("cardfolio_avatar_fetch_fail_total not found")
}

// TestSetupMetricsRoute_ServesMetrics は/metricsパスでメトリクスが返ることを検証する。
func TestSetupMetricsRoute_ServesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordProfileUpdate()

	handler := SetupMetricsRoute(reg)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "cardfolio_profile_updates_total") {
		t.Error("response should contain cardfolio_profile_updates_total metric")
	}
}

// TestHTTPMiddleware_RecordsRequest はミドルウェア経由でリクエストが記録されることを検証する。
func TestHTTPMiddleware_RecordsRequest(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	mw := NewHTTPMiddleware(c)
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	req := httptest.NewRequest(http.MethodGet, "/users/999", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	for _, mf := range families {
		if mf.GetName() == "cardfolio_http_requests_total" {
			m := mf.GetMetric()[0]
			var status string
			for _, label := range m.GetLabel() {
				if label.GetName() == "status_code" {
					status = label.GetValue()
				}
			}
			if status != "404" {
				t.Errorf("status_code label = %q, want %q", status, "404")
			}
			return
		}
	}
	t.Error("cardfolio_http_requests_total not found")
}

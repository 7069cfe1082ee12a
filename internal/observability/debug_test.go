package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// TestDebugHandlerServesMetrics verifies /metrics exposes arena series
func TestDebugHandlerServesMetrics(t *testing.T) {
	RecordSyncSent("state")
	RecordInbound("applied")

	rec := httptest.NewRecorder()
	DebugHandler(DebugConfig{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, name := range []string{"arena_sync_messages_sent_total", "arena_sync_inbound_total"} {
		if !strings.Contains(body, name) {
			t.Errorf("Expected %s in metrics output", name)
		}
	}
}

// TestDebugHandlerBasicAuth verifies optional credentials are enforced
func TestDebugHandlerBasicAuth(t *testing.T) {
	h := DebugHandler(DebugConfig{BasicAuthUser: "ops", BasicAuthPass: "secret"})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without credentials, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.SetBasicAuth("ops", "secret")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200 with credentials, got %d", rec.Code)
	}
}

package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestRequestLogger_AddsRequestFields(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)

	r := httptest.NewRequest(http.MethodPost, "http://example/", nil)
	r.Header.Set("X-Forwarded-For", "1.1.1.1")
	r.Header.Set("X-Request-Id", "req-id")

	l := NewRequestLogger(zap.New(core), "register-commands", r)
	l.Event("request_received", zap.Int("status", 200))

	entries := logs.FilterMessage("request_received").All()
	if len(entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["route"] != "register-commands" || fields["requestId"] != "req-id" || fields["ip"] != "1.1.1.1" || fields["event"] != "request_received" {
		t.Fatalf("unexpected fields: %v", fields)
	}
	if _, ok := fields["durationMs"]; !ok {
		t.Fatalf("expected durationMs field")
	}
}

func TestNewLogger_RejectsUnknownLevel(t *testing.T) {
	if _, err := NewLogger("loud", false); err == nil {
		t.Fatalf("expected error for unknown level")
	}
	if _, err := NewLogger("debug", true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

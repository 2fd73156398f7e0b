package httpx

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestClientIP_UsesFirstForwardedEntry(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "http://example/", nil)
	r.Header.Set(HeaderForwardedFor, " 1.2.3.4 , 5.6.7.8")
	r.Header.Set(HeaderRealIP, "9.9.9.9")

	if got := ClientIP(r); got != "1.2.3.4" {
		t.Fatalf("expected first XFF ip, got %q", got)
	}
}

func TestClientIP_FallsBackToRealIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "http://example/", nil)
	r.Header.Set(HeaderForwardedFor, " ,5.6.7.8")
	r.Header.Set(HeaderRealIP, "9.9.9.9")

	if got := ClientIP(r); got != "9.9.9.9" {
		t.Fatalf("expected X-Real-IP, got %q", got)
	}
}

func TestClientIP_UnknownWithoutProxyHeaders(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "http://example/", nil)
	r.RemoteAddr = "10.0.0.9:5555"

	if got := ClientIP(r); got != UnknownClient {
		t.Fatalf("expected %q, got %q", UnknownClient, got)
	}
}

func TestRequestID(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "http://example/", nil)
	r.Header.Set(HeaderRequestID, "req-1")
	if got := RequestID(r); got != "req-1" {
		t.Fatalf("expected caller request id, got %q", got)
	}

	r.Header.Del(HeaderRequestID)
	if got := RequestID(r); len(got) != 36 {
		t.Fatalf("expected generated uuid, got %q", got)
	}
}

func TestWriteJSON(t *testing.T) {
	w := httptest.NewRecorder()
	WriteJSON(w, http.StatusTooManyRequests, map[string]string{"error": "Too many requests"})

	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("unexpected content type %q", ct)
	}
	if got := strings.TrimSpace(w.Body.String()); got != `{"error":"Too many requests"}` {
		t.Fatalf("unexpected body %q", got)
	}
}

package ratelimit

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"interactions-gateway/middleware/ratelimit/application"
	"interactions-gateway/middleware/ratelimit/domain"
	"interactions-gateway/middleware/ratelimit/infra"
)

type brokenCounter struct{}

func (brokenCounter) Increment(context.Context, domain.Key, time.Duration) (int64, error) {
	return 0, errors.New("redis unavailable")
}

func post(h http.Handler, ip string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodPost, "http://example/api/discord-bot/register-commands", nil)
	r.Header.Set("X-Forwarded-For", ip)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func TestMiddleware_AllowsFiveThenRejectsSameKey(t *testing.T) {
	calls := 0
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	})

	stats := infra.NewMemoryStatsStore()
	h := Middleware(Options{
		Service: application.Service{Local: infra.NewWindowStore()},
		Stats:   stats,
		Route:   "register-commands",
	})(next)

	for i := 1; i <= 5; i++ {
		if w := post(h, "2.2.2.2"); w.Code != http.StatusOK {
			t.Fatalf("expected 200 on call %d, got %d", i, w.Code)
		}
	}

	w := post(h, "2.2.2.2")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", w.Code)
	}
	if got := w.Header().Get("Retry-After"); got != "60" {
		t.Fatalf("expected Retry-After=60, got %q", got)
	}
	if got := strings.TrimSpace(w.Body.String()); got != `{"error":"Too many requests"}` {
		t.Fatalf("unexpected body %q", got)
	}
	if calls != 5 {
		t.Fatalf("expected next handler to be called 5 times, got %d", calls)
	}

	snap := stats.Snapshot()
	if snap.Total.Allowed != 5 || snap.Total.Denied != 1 {
		t.Fatalf("unexpected stats: %+v", snap.Total)
	}

	// outro IP tem a própria cota
	if w := post(h, "3.3.3.3"); w.Code != http.StatusOK {
		t.Fatalf("expected other ip to pass, got %d", w.Code)
	}
}

func TestMiddleware_FallsBackToMemoryWhenRemoteFails(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	var tiers []domain.Tier
	h := Middleware(Options{
		Service: application.Service{Remote: brokenCounter{}, Local: infra.NewWindowStore()},
		OnDecision: func(_ *http.Request, key string, dec domain.Decision) {
			if key != "5.5.5.5" {
				t.Errorf("unexpected key %q", key)
			}
			tiers = append(tiers, dec.Tier)
		},
		AddRateLimitHeaders: true,
	})(next)

	for i := 1; i <= 5; i++ {
		w := post(h, "5.5.5.5")
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200 on call %d, got %d", i, w.Code)
		}
		if got := w.Header().Get("X-RateLimit-Tier"); got != "local" {
			t.Fatalf("expected local tier header, got %q", got)
		}
	}

	w := post(h, "5.5.5.5")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", w.Code)
	}
	if got := w.Header().Get("Retry-After"); got != "60" {
		t.Fatalf("expected Retry-After=60, got %q", got)
	}
	if got := w.Header().Get("X-RateLimit-Limit"); got != "5" {
		t.Fatalf("expected X-RateLimit-Limit=5, got %q", got)
	}
	if len(tiers) != 6 {
		t.Fatalf("expected 6 decisions, got %d", len(tiers))
	}
}

func TestRetryAfterSeconds(t *testing.T) {
	cases := map[time.Duration]string{
		0:                       "1",
		2500 * time.Millisecond: "3",
		60 * time.Second:        "60",
	}
	for in, want := range cases {
		if got := retryAfterSeconds(in); got != want {
			t.Fatalf("retryAfterSeconds(%s) = %q, want %q", in, got, want)
		}
	}
}

package main

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"interactions-gateway/commands"
	"interactions-gateway/config"
	"interactions-gateway/discordapi"
	"interactions-gateway/interactions"
	"interactions-gateway/middleware/ratelimit/infra"
	"interactions-gateway/observability"
)

func newTestApp(t *testing.T, cfg config.Config) (*app, ed25519.PrivateKey) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	cfg.PublicKey = hex.EncodeToString(pub)
	v, err := interactions.NewVerifier(cfg.PublicKey)
	if err != nil {
		t.Fatalf("new verifier: %v", err)
	}
	reg := prometheus.NewRegistry()
	mem := infra.NewMemoryStatsStore()
	return &app{
		cfg:      cfg,
		logger:   zap.NewNop(),
		metrics:  observability.NewMetrics(reg, "test"),
		promReg:  reg,
		verifier: v,
		registry: commands.Default(nil),
		api:      discordapi.New("token", discordapi.WithBaseURL("http://127.0.0.1:1")),
		window:   infra.NewWindowStore(),
		stats:    mem,
		memStats: mem,
	}, priv
}

func TestRoutes_WebhookPing(t *testing.T) {
	a, priv := newTestApp(t, config.Config{ConcurrencyMax: 10})
	h := a.routes()

	body := []byte(`{"id":"1","type":1}`)
	r := httptest.NewRequest(http.MethodPost, "/api/discord-bot/interactions", bytes.NewReader(body))
	r.Header.Set(interactions.HeaderTimestamp, "1700000000")
	r.Header.Set(interactions.HeaderSignature, hex.EncodeToString(ed25519.Sign(priv, append([]byte("1700000000"), body...))))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	if w.Code != http.StatusOK || strings.TrimSpace(w.Body.String()) != `{"type":1}` {
		t.Fatalf("expected 200 {\"type\":1}, got %d %s", w.Code, w.Body.String())
	}
}

func TestRoutes_WebhookInvalidSignature(t *testing.T) {
	a, _ := newTestApp(t, config.Config{})
	r := httptest.NewRequest(http.MethodPost, "/api/discord-bot/interactions", strings.NewReader(`{"type":1}`))
	r.Header.Set(interactions.HeaderTimestamp, "1700000000")
	r.Header.Set(interactions.HeaderSignature, strings.Repeat("00", ed25519.SignatureSize))
	w := httptest.NewRecorder()
	a.routes().ServeHTTP(w, r)

	if w.Code != http.StatusUnauthorized || w.Body.String() != "Invalid request" {
		t.Fatalf("expected 401 Invalid request, got %d %q", w.Code, w.Body.String())
	}
}

func TestRoutes_RegisterIsRateLimited(t *testing.T) {
	a, _ := newTestApp(t, config.Config{
		RegisterCommandsKey: "k",
		RateLimit:           config.RateLimitConfig{Max: 5},
	})
	h := a.routes()

	var last *httptest.ResponseRecorder
	for i := 0; i < 6; i++ {
		r := httptest.NewRequest(http.MethodPost, "/api/discord-bot/register-commands", nil)
		r.Header.Set("X-Forwarded-For", "2.2.2.2")
		last = httptest.NewRecorder()
		h.ServeHTTP(last, r)
		if i < 5 && last.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401 on call %d, got %d", i+1, last.Code)
		}
	}
	if last.Code != http.StatusTooManyRequests || last.Header().Get("Retry-After") != "60" {
		t.Fatalf("expected 429 with Retry-After 60, got %d %q", last.Code, last.Header().Get("Retry-After"))
	}
	if got := a.memStats.Snapshot().Total.Denied; got != 1 {
		t.Fatalf("expected 1 denied in stats, got %d", got)
	}
}

func TestRoutes_DebugHiddenInProduction(t *testing.T) {
	a, _ := newTestApp(t, config.Config{AppEnv: "production", RegisterCommandsKey: "k"})
	r := httptest.NewRequest(http.MethodGet, "/api/discord-bot/debug", nil)
	r.Header.Set("Authorization", "Bearer k")
	w := httptest.NewRecorder()
	a.routes().ServeHTTP(w, r)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestRoutes_HealthAndMetrics(t *testing.T) {
	a, _ := newTestApp(t, config.Config{})
	h := a.routes()

	for _, path := range []string{"/healthz", "/metrics"} {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, w.Code)
		}
	}
}

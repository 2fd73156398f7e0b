package main

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"interactions-gateway/admin"
	"interactions-gateway/commands"
	"interactions-gateway/config"
	"interactions-gateway/discordapi"
	"interactions-gateway/httpx"
	"interactions-gateway/interactions"
	"interactions-gateway/middleware/ratelimit"
	"interactions-gateway/middleware/ratelimit/application"
	"interactions-gateway/middleware/ratelimit/domain"
	"interactions-gateway/middleware/ratelimit/infra"
	"interactions-gateway/observability"
)

type app struct {
	cfg      config.Config
	logger   *zap.Logger
	metrics  *observability.Metrics
	promReg  *prometheus.Registry
	verifier *interactions.Verifier
	registry *commands.Registry
	api      *discordapi.Client
	counter  domain.Counter
	window   domain.WindowStore
	stats    domain.StatsStore
	memStats *infra.MemoryStatsStore
}

func (a *app) routes() http.Handler {
	r := mux.NewRouter()

	webhook := http.Handler(&interactions.Handler{
		Verifier:   a.verifier,
		Dispatcher: interactions.Dispatcher{Registry: a.registry},
		Logger:     a.logger,
		Metrics:    a.metrics,
	})
	webhook = ratelimit.ConcurrencyMiddleware(ratelimit.ConcurrencyOptions{
		Max:            a.cfg.ConcurrencyMax,
		RejectStatus:   http.StatusServiceUnavailable,
		AcquireTimeout: a.cfg.ConcurrencyTimeout,
		OnReject:       func(*http.Request) { a.metrics.ObserveConcurrencyReject() },
	})(webhook)
	r.Handle("/api/discord-bot/interactions", webhook).Methods(http.MethodPost)

	register := http.Handler(&admin.RegisterHandler{
		Registry:      a.registry,
		API:           a.api,
		ApplicationID: a.cfg.ApplicationID,
		Key:           a.cfg.RegisterCommandsKey,
		Logger:        a.logger,
	})
	register = ratelimit.Middleware(a.rateLimitOptions("register-commands"))(register)
	r.Handle("/api/discord-bot/register-commands", register).Methods(http.MethodPost)

	r.Handle("/api/discord-bot/debug", &admin.DebugHandler{
		Production: a.cfg.Production(),
		Key:        a.cfg.RegisterCommandsKey,
		Settings: []admin.Setting{
			{Name: "APPLICATION_ID", Value: a.cfg.ApplicationID},
			{Name: "PUBLIC_KEY", Value: a.cfg.PublicKey},
			{Name: "BOT_TOKEN", Value: a.cfg.BotToken},
			{Name: "REGISTER_COMMANDS_KEY", Value: a.cfg.RegisterCommandsKey},
		},
		ApplicationID: a.cfg.ApplicationID,
		PublicKey:     a.cfg.PublicKey,
		Registry:      a.registry,
		API:           a.api,
		Stats:         a.memStats,
		Logger:        a.logger,
	}).Methods(http.MethodGet)

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteText(w, http.StatusOK, "ok\n")
	}).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.HandlerFor(a.promReg, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	return r
}

func (a *app) rateLimitOptions(route string) ratelimit.Options {
	rl := a.cfg.RateLimit
	return ratelimit.Options{
		Service: application.Service{
			Remote:        a.counter,
			Local:         a.window,
			Limit:         rl.Max,
			Window:        rl.Window,
			RemoteTimeout: rl.RemoteTimeout,
			OnRemoteError: func(key domain.Key, err error) {
				a.metrics.ObserveRemoteFallback()
				a.logger.Warn("rate_limit_remote_failed", zap.String("key", string(key)), zap.Error(err))
			},
		},
		Stats:     a.stats,
		KeyHeader: rl.KeyHeader,
		Route:     route,
		OnDecision: func(r *http.Request, key string, dec domain.Decision) {
			a.metrics.ObserveAdmission(string(dec.Tier), dec.Allowed)
			if !dec.Allowed {
				a.logger.Info("rate_limited",
					zap.String("route", route),
					zap.String("ip", key),
					zap.String("tier", string(dec.Tier)),
					zap.Int("status", http.StatusTooManyRequests),
				)
			}
		},
	}
}

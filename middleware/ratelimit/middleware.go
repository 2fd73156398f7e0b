package ratelimit

import (
	"net/http"
	"strings"
	"time"

	"interactions-gateway/httpx"
	"interactions-gateway/middleware/ratelimit/application"
	"interactions-gateway/middleware/ratelimit/domain"
)

type KeyFunc func(r *http.Request) string

type Options struct {
	Service      application.Service
	Stats        domain.StatsStore
	KeyFn        KeyFunc
	KeyHeader    string
	Route        string
	RejectStatus int
	// AddRateLimitHeaders expõe X-RateLimit-Limit e X-RateLimit-Tier.
	AddRateLimitHeaders bool

	// OnDecision recebe toda decisão (log/métricas). Opcional.
	OnDecision func(r *http.Request, key string, dec domain.Decision)
}

// ClientKeyFunc usa o header configurado (ex: X-Api-Key) quando presente e,
// sem ele, o IP do cliente via headers de proxy (ver httpx.ClientIP).
func ClientKeyFunc(keyHeader string) KeyFunc {
	return func(r *http.Request) string {
		if keyHeader != "" {
			if v := strings.TrimSpace(r.Header.Get(keyHeader)); v != "" {
				return v
			}
		}
		return httpx.ClientIP(r)
	}
}

func Middleware(opts Options) func(next http.Handler) http.Handler {
	if opts.RejectStatus == 0 {
		opts.RejectStatus = http.StatusTooManyRequests
	}
	if opts.KeyFn == nil {
		opts.KeyFn = ClientKeyFunc(opts.KeyHeader)
	}
	limit := opts.Service.Limit
	if limit <= 0 {
		limit = application.DefaultLimit
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := opts.KeyFn(r)

			dec := opts.Service.Decide(r.Context(), domain.Key(key))
			if opts.OnDecision != nil {
				opts.OnDecision(r, key, dec)
			}
			if opts.Stats != nil {
				_ = opts.Stats.Record(r.Context(), domain.StatsEvent{
					Key:     domain.Key(key),
					Allowed: dec.Allowed,
					Tier:    dec.Tier,
					Route:   opts.Route,
					At:      time.Now(),
				})
			}

			if opts.AddRateLimitHeaders {
				w.Header().Set("X-RateLimit-Limit", formatInt(limit))
				w.Header().Set("X-RateLimit-Tier", string(dec.Tier))
			}

			if !dec.Allowed {
				w.Header().Set("Retry-After", retryAfterSeconds(dec.RetryAfter))
				httpx.WriteJSON(w, opts.RejectStatus, map[string]string{"error": "Too many requests"})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

package ratelimit

import (
	"net/http"
	"time"

	"interactions-gateway/httpx"
	"interactions-gateway/middleware/ratelimit/application"
	"interactions-gateway/middleware/ratelimit/infra"
)

type ConcurrencyOptions struct {
	Max            int
	RejectStatus   int
	AcquireTimeout time.Duration

	// OnReject é chamado quando nenhuma vaga foi obtida. Opcional.
	OnReject func(r *http.Request)
}

// ConcurrencyMiddleware limita quantas requests ficam em voo ao mesmo tempo.
// Com Max <= 0 o limite fica desligado.
func ConcurrencyMiddleware(opts ConcurrencyOptions) func(next http.Handler) http.Handler {
	if opts.Max <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	if opts.RejectStatus == 0 {
		opts.RejectStatus = http.StatusServiceUnavailable
	}

	svc := application.ConcurrencyService{
		Pool:           infra.NewSlotPool(opts.Max),
		AcquireTimeout: opts.AcquireTimeout,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			release, ok := svc.Acquire(r.Context())
			if !ok {
				if opts.OnReject != nil {
					opts.OnReject(r)
				}
				httpx.WriteText(w, opts.RejectStatus, http.StatusText(opts.RejectStatus))
				return
			}
			defer release()

			next.ServeHTTP(w, r)
		})
	}
}

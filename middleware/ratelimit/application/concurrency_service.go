package application

import (
	"context"
	"time"

	"interactions-gateway/middleware/ratelimit/domain"
)

// ConcurrencyService limita quantas interações são processadas ao mesmo tempo,
// sem saber nada sobre HTTP.
type ConcurrencyService struct {
	Pool           domain.SlotPool
	AcquireTimeout time.Duration
}

// Acquire tenta adquirir uma vaga.
//   - Sem Pool, libera sempre (limite desligado).
//   - Se `AcquireTimeout <= 0`, espera até ctx cancelar.
//   - Se `AcquireTimeout > 0`, espera no máximo esse tempo.
//
// Retorna (release, ok). Se ok=false, nenhuma vaga foi adquirida.
func (s ConcurrencyService) Acquire(ctx context.Context) (func(), bool) {
	if s.Pool == nil {
		return func() {}, true
	}
	if s.AcquireTimeout <= 0 {
		return s.Pool.Acquire(ctx)
	}

	acqCtx, cancel := context.WithTimeout(ctx, s.AcquireTimeout)
	defer cancel()
	return s.Pool.Acquire(acqCtx)
}

// InUse reporta as vagas ocupadas (0 sem Pool).
func (s ConcurrencyService) InUse() int {
	if s.Pool == nil {
		return 0
	}
	return s.Pool.InUse()
}

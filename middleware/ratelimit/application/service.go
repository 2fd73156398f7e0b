package application

import (
	"context"
	"math"
	"time"

	"interactions-gateway/middleware/ratelimit/domain"
)

const (
	DefaultLimit         = 5
	DefaultWindow        = 60 * time.Second
	DefaultRemoteTimeout = 500 * time.Millisecond
)

// Service concentra a regra de admissão em janela fixa com dois níveis:
//
//  1. Remote (contador atômico compartilhado): consistente entre instâncias.
//  2. Local (janela em memória): usado quando Remote é nil, falha ou estoura
//     RemoteTimeout.
//
// Trade-off: com o remoto degradado cada instância aplica a própria cota, então
// um cliente consegue N*Limit requisições numa janela com N instâncias.
// Aceitável para um endpoint administrativo de baixo valor; não reutilize este
// Service como barreira de segurança.
//
// Ele não sabe nada sobre HTTP (headers/status), apenas retorna uma decisão.
type Service struct {
	Remote        domain.Counter
	Local         domain.WindowStore
	Limit         int
	Window        time.Duration
	RemoteTimeout time.Duration
	Now           func() time.Time

	// OnRemoteError é chamado quando o tier remoto falha e o local assume.
	OnRemoteError func(key domain.Key, err error)
}

func (s Service) Decide(ctx context.Context, key domain.Key) domain.Decision {
	s = s.withDefaults()

	if s.Remote != nil {
		rctx, cancel := context.WithTimeout(ctx, s.RemoteTimeout)
		count, err := s.Remote.Increment(rctx, key, s.Window)
		cancel()
		if err == nil {
			dec := domain.Decision{Allowed: count <= int64(s.Limit), Tier: domain.TierRemote, Count: count}
			if !dec.Allowed {
				// TTL exato exigiria outra chamada ao remoto; devolve a janela cheia.
				dec.RetryAfter = s.Window
			}
			return dec
		}
		if s.OnRemoteError != nil {
			s.OnRemoteError(key, err)
		}
	}

	if s.Local == nil {
		return domain.Decision{Allowed: true, Tier: domain.TierLocal}
	}

	now := s.Now()
	rec, ok := s.Local.Hit(key, s.Limit, s.Window, now)
	dec := domain.Decision{Allowed: ok, Tier: domain.TierLocal, Count: int64(rec.Count)}
	if !ok {
		dec.RetryAfter = ceilSeconds(rec.ResetAt.Sub(now))
	}
	return dec
}

// Admit é o atalho booleano de Decide.
func (s Service) Admit(ctx context.Context, key domain.Key) bool {
	return s.Decide(ctx, key).Allowed
}

func (s Service) withDefaults() Service {
	if s.Limit <= 0 {
		s.Limit = DefaultLimit
	}
	if s.Window <= 0 {
		s.Window = DefaultWindow
	}
	if s.RemoteTimeout <= 0 {
		s.RemoteTimeout = DefaultRemoteTimeout
	}
	if s.Now == nil {
		s.Now = time.Now
	}
	return s
}

func ceilSeconds(d time.Duration) time.Duration {
	if d <= 0 {
		return time.Second
	}
	return time.Duration(math.Ceil(d.Seconds())) * time.Second
}

package domain

// Camada de domínio do rate limit.
//
// Regras e contratos (interfaces/tipos) sem dependência de net/http.

import (
	"context"
	"time"
)

type Key string

// Tier identifica qual backend tomou a decisão.
type Tier string

const (
	TierRemote Tier = "remote"
	TierLocal  Tier = "local"
)

// Record é o estado de uma chave numa janela fixa.
//
// Criado no primeiro hit, incrementado a cada admissão dentro da janela e
// reiniciado para {1, now+janela} quando now >= ResetAt.
type Record struct {
	Count   int
	ResetAt time.Time
}

// Counter é o contador atômico remoto (ex: INCR + EXPIRE no redis).
//
// Increment retorna o valor já incrementado. A implementação deve aplicar a
// expiração `window` quando o valor retornado for 1 (janela nova).
type Counter interface {
	Increment(ctx context.Context, key Key, window time.Duration) (int64, error)
}

// WindowStore é o contador local em memória usado como fallback.
//
// Hit registra uma tentativa e retorna o estado resultante e se foi admitida.
type WindowStore interface {
	Hit(key Key, limit int, window time.Duration, now time.Time) (Record, bool)
}

type Decision struct {
	Allowed bool
	Tier    Tier
	// Count é o valor do contador após a tentativa (0 se desconhecido).
	Count int64
	// RetryAfter é o valor a ser retornado em Retry-After quando bloquear.
	// Se 0, não há recomendação.
	RetryAfter time.Duration
}

package domain

import (
	"context"
	"time"
)

// StatsEvent representa um evento de decisão de admissão.
//
// Observação: cuidado com cardinalidade (ex.: salvar Key sem controle pode
// explodir o número de chaves no redis).
type StatsEvent struct {
	Key     Key
	Allowed bool
	Tier    Tier

	Route string

	At time.Time
}

// StatsStore persiste estatísticas de admissão.
// O middleware trata erro como best-effort (não derruba a request).
type StatsStore interface {
	Record(ctx context.Context, ev StatsEvent) error
}

// Counters agrega decisões.
type Counters struct {
	Allowed int64 `json:"allowed"`
	Denied  int64 `json:"denied"`
}

// StatsSnapshot é o que o endpoint de debug expõe.
type StatsSnapshot struct {
	Total  Counters            `json:"total"`
	ByTier map[string]Counters `json:"byTier"`
}

package infra

import (
	"context"
	"sync"

	"interactions-gateway/middleware/ratelimit/domain"
)

// MemoryStatsStore guarda contadores de admissão em memória.
// É o padrão do gateway e alimenta o endpoint de debug.
//
// Não faz expiração.
type MemoryStatsStore struct {
	mu     sync.Mutex
	total  domain.Counters
	byTier map[string]domain.Counters
	byKey  map[string]domain.Counters

	trackKeys bool
}

type MemoryStatsOption func(*MemoryStatsStore)

func WithTrackKeys(track bool) MemoryStatsOption {
	return func(s *MemoryStatsStore) { s.trackKeys = track }
}

func NewMemoryStatsStore(opts ...MemoryStatsOption) *MemoryStatsStore {
	s := &MemoryStatsStore{
		byTier: make(map[string]domain.Counters),
		byKey:  make(map[string]domain.Counters),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStatsStore) Record(_ context.Context, ev domain.StatsEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	bump(&s.total, ev.Allowed)

	tier := s.byTier[string(ev.Tier)]
	bump(&tier, ev.Allowed)
	s.byTier[string(ev.Tier)] = tier

	if s.trackKeys {
		k := s.byKey[string(ev.Key)]
		bump(&k, ev.Allowed)
		s.byKey[string(ev.Key)] = k
	}
	return nil
}

func bump(c *domain.Counters, allowed bool) {
	if allowed {
		c.Allowed++
		return
	}
	c.Denied++
}

func (s *MemoryStatsStore) Snapshot() domain.StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := domain.StatsSnapshot{Total: s.total, ByTier: make(map[string]domain.Counters, len(s.byTier))}
	for k, v := range s.byTier {
		out.ByTier[k] = v
	}
	return out
}

func (s *MemoryStatsStore) ByKey() map[string]domain.Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]domain.Counters, len(s.byKey))
	for k, v := range s.byKey {
		out[k] = v
	}
	return out
}

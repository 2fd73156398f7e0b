package infra

import (
	"sync"
	"time"

	"interactions-gateway/middleware/ratelimit/domain"
)

// WindowStore é o contador de janela fixa em memória, usado quando o contador
// remoto não está configurado ou falhou.
//
// Não faz expiração: entradas antigas ficam no mapa enquanto o processo viver
// (limitado pela cardinalidade de chaves distintas).
type WindowStore struct {
	mu      sync.Mutex
	records map[domain.Key]*domain.Record
}

func NewWindowStore() *WindowStore {
	return &WindowStore{records: make(map[domain.Key]*domain.Record)}
}

// Hit implementa domain.WindowStore.
func (s *WindowStore) Hit(key domain.Key, limit int, window time.Duration, now time.Time) (domain.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[key]
	if !ok || !now.Before(rec.ResetAt) {
		rec = &domain.Record{Count: 1, ResetAt: now.Add(window)}
		s.records[key] = rec
		return *rec, true
	}

	if rec.Count >= limit {
		return *rec, false
	}

	rec.Count++
	return *rec, true
}

// Len devolve quantas chaves estão rastreadas.
func (s *WindowStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

package infra

import (
	"context"
	"errors"

	"interactions-gateway/middleware/ratelimit/domain"
)

// MultiStatsStore repassa cada evento para todos os stores (ex: memória para o
// diagnóstico e redis para agregação entre instâncias).
type MultiStatsStore []domain.StatsStore

func (m MultiStatsStore) Record(ctx context.Context, ev domain.StatsEvent) error {
	var errs []error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.Record(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

package infra

import (
	"context"
	"errors"
	"testing"

	"interactions-gateway/middleware/ratelimit/domain"
)

type failingStats struct{}

func (failingStats) Record(context.Context, domain.StatsEvent) error {
	return errors.New("redis down")
}

func TestMultiStatsStore_FansOutAndJoinsErrors(t *testing.T) {
	mem := NewMemoryStatsStore()
	multi := MultiStatsStore{mem, nil, failingStats{}}

	err := multi.Record(context.Background(), domain.StatsEvent{Key: "k", Tier: domain.TierRemote, Allowed: false})
	if err == nil {
		t.Fatalf("expected error from failing store")
	}
	if got := mem.Snapshot().Total.Denied; got != 1 {
		t.Fatalf("expected memory store to still record, got %d", got)
	}
}

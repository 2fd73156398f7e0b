package infra

import (
	"context"
	"fmt"
	"strings"
	"time"

	"interactions-gateway/middleware/ratelimit/domain"

	"github.com/redis/go-redis/v9"
)

// redisCounterClient é o subconjunto de redis.Cmdable usado pelo contador.
type redisCounterClient interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	TTL(ctx context.Context, key string) *redis.DurationCmd
}

// go-redis devolve os códigos -1/-2 do TTL sem conversão de unidade.
const noExpiry = time.Duration(-1)

// RedisCounter implementa domain.Counter com INCR + EXPIRE.
//
// A chave é `<prefix>:<clientKey>`. O EXPIRE é enviado quando o INCR devolve 1,
// ou seja, no primeiro hit de uma janela nova. Nos hits seguintes a chave sem
// TTL (EXPIRE anterior falhou) recebe a expiração de novo.
type RedisCounter struct {
	rdb    redisCounterClient
	prefix string
}

type RedisCounterOption func(*RedisCounter)

func WithCounterPrefix(prefix string) RedisCounterOption {
	return func(c *RedisCounter) {
		if p := strings.Trim(prefix, ":"); p != "" {
			c.prefix = p
		}
	}
}

func NewRedisCounter(rdb redisCounterClient, opts ...RedisCounterOption) *RedisCounter {
	c := &RedisCounter{rdb: rdb, prefix: "rate_limit"}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *RedisCounter) Key(key domain.Key) string {
	return c.prefix + ":" + string(key)
}

func (c *RedisCounter) Increment(ctx context.Context, key domain.Key, window time.Duration) (int64, error) {
	full := c.Key(key)

	n, err := c.rdb.Incr(ctx, full).Result()
	if err != nil {
		return 0, fmt.Errorf("incr %s: %w", full, err)
	}
	if n == 1 {
		if err := c.rdb.Expire(ctx, full, window).Err(); err != nil {
			return 0, fmt.Errorf("expire %s: %w", full, err)
		}
		return n, nil
	}

	// TTL -1: chave existe sem expiração e nunca reiniciaria.
	ttl, err := c.rdb.TTL(ctx, full).Result()
	if err == nil && ttl == noExpiry {
		if err := c.rdb.Expire(ctx, full, window).Err(); err != nil {
			return 0, fmt.Errorf("expire %s: %w", full, err)
		}
	}
	return n, nil
}

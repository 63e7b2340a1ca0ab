package cache

import (
	"context"
	"errors"
	"time"

	"github.com/wb-go/wbf/redis"
	"github.com/wb-go/wbf/retry"
)

// GetDestination возвращает оригинальный URL из кэша по короткому коду
// (или "", nil, если ключа в кэше нет)
func (c *Cache) GetDestination(ctx context.Context, shortCode string) (string, error) {

	data, err := c.redis.Get(ctx, shortCode)
	if err != nil {
		if errors.Is(err, redis.NoMatches) {
			return "", nil
		}
		return "", err
	}

	return data, nil
}

// SetDestination сохраняет пару короткий код — оригинальный URL с внутренним TTL
func (c *Cache) SetDestination(ctx context.Context, shortCode, originalURL string) error {

	strategy := retry.Strategy{Attempts: 3, Delay: 100 * time.Millisecond, Backoff: 2}

	return c.redis.SetWithExpirationAndRetry(ctx, strategy, shortCode, []byte(originalURL), c.ttl)
}

// DeleteDestination удаляет короткий код из кэша
func (c *Cache) DeleteDestination(ctx context.Context, shortCode string) error {

	return c.redis.Del(ctx, shortCode)
}

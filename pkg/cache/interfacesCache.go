package cache

import (
	"context"
)

type CacheMethods interface {
	// GetDestination возвращает оригинальный URL по короткому коду ("" — промах)
	GetDestination(ctx context.Context, shortCode string) (string, error)

	// SetDestination сохраняет пару короткий код — оригинальный URL с предустановленным TTL
	SetDestination(ctx context.Context, shortCode, originalURL string) error

	// DeleteDestination удаляет короткий код из кэша
	DeleteDestination(ctx context.Context, shortCode string) error
}

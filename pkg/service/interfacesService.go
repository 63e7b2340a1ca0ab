package service

import (
	"context"
	"time"

	"github.com/wb-go/wbf/logger"
)

type ServiceMethods interface {
	// CreateShortLink создаёт новую короткую ссылку; owner == nil означает анонимную ссылку
	CreateShortLink(ctx context.Context, log logger.Logger, originalURL, customAlias string, expiresAt *time.Time, owner *string) (*ResponseLink, error)

	// Resolve возвращает оригинальный URL по короткому коду (для редиректа)
	Resolve(ctx context.Context, log logger.Logger, shortCode string) (string, error)

	// LinkStats возвращает статистику переходов по короткому коду
	LinkStats(ctx context.Context, log logger.Logger, shortCode string) (*ResponseStats, error)

	// UpdateShortLink меняет оригинальный URL ссылки с проверкой владельца
	UpdateShortLink(ctx context.Context, log logger.Logger, shortCode, originalURL string, owner *string) error

	// UpdateExpiration меняет срок действия ссылки с проверкой владельца
	UpdateExpiration(ctx context.Context, log logger.Logger, shortCode string, expiresAt *time.Time, owner *string) error

	// DeleteShortLink удаляет ссылку с проверкой владельца
	DeleteShortLink(ctx context.Context, log logger.Logger, shortCode string, owner *string) error

	// FindByOriginalURL ищет ссылку по точному совпадению оригинального URL
	FindByOriginalURL(ctx context.Context, log logger.Logger, originalURL string) (*ResponseLink, error)
}

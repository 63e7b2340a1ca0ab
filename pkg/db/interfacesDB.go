package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// методы по таблице links
type LinkMethods interface {
	// CreateLink создаёт новую запись в таблице links,
	// при конфликте уникальности short_code возвращает ErrShortCodeTaken
	CreateLink(ctx context.Context, link *Link) error

	// GetLinkByShortCode возвращает ссылку по её короткому коду (или nil, nil)
	GetLinkByShortCode(ctx context.Context, shortCode string) (*Link, error)

	// GetLinkByOriginalURL возвращает крайнюю ссылку с точным совпадением оригинального URL
	GetLinkByOriginalURL(ctx context.Context, originalURL string) (*Link, error)

	// UpdateOriginalURL меняет оригинальный URL ссылки
	UpdateOriginalURL(ctx context.Context, linkID uuid.UUID, originalURL string) error

	// UpdateExpiration меняет срок действия ссылки
	UpdateExpiration(ctx context.Context, linkID uuid.UUID, expiresAt sql.NullTime) error

	// DeleteLink удаляет ссылку вместе со статистикой
	DeleteLink(ctx context.Context, linkID uuid.UUID) error

	// DeleteUnusedLinks удаляет заброшенные ссылки и возвращает число удалённых
	DeleteUnusedLinks(ctx context.Context, cutoff, now time.Time) (int64, error)
}

// методы по таблице stats
type StatsMethods interface {
	// RegisterVisit создаёт или инкрементирует статистику, возвращает итоговый счётчик
	RegisterVisit(ctx context.Context, linkID uuid.UUID, visitedAt time.Time) (int, error)

	// GetStatsByLinkID возвращает статистику по ссылке (или nil, nil)
	GetStatsByLinkID(ctx context.Context, linkID uuid.UUID) (*VisitStats, error)
}

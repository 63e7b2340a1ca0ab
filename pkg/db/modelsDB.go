package db

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Link представляет запись в таблице links
type Link struct {
	ID          uuid.UUID      // идентификатор ссылки, назначается при создании
	ShortCode   string         // короткий код (например, "a1B2c3D4e5"), уникален в пределах таблицы
	OriginalURL string         // исходный длинный URL
	Owner       sql.NullString // владелец ссылки, NULL — анонимная ссылка
	IsCustom    bool           // флаг, указывающий, что short_code задан пользователем
	CreatedAt   time.Time      // дата и время создания записи
	ExpiresAt   sql.NullTime   // срок действия, NULL — бессрочная ссылка
}

// VisitStats представляет запись в таблице stats (один-к-одному с links,
// создаётся лениво при первом переходе по ссылке)
type VisitStats struct {
	ID            int64        // уникальный идентификатор записи (автоинкремент)
	LinkID        uuid.UUID    // идентификатор ссылки
	VisitCount    int          // количество переходов по ссылке
	LastVisitedAt sql.NullTime // момент последнего перехода
}

package service

import (
	"time"

	"github.com/google/uuid"
)

// ResponseLink - ответ на успешное создание ссылки (POST /api/links/shorten выход)
// или поиск по оригинальному URL
type ResponseLink struct {
	ID          uuid.UUID  `json:"-"`
	ShortCode   string     `json:"short_code"`
	OriginalURL string     `json:"original_url"`
	CreatedAt   time.Time  `json:"created_at"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

// ResponseStats - ответ на запрос статистики (GET /api/links/:short_code/stats выход).
// При отсутствии переходов VisitCount равен нулю, LastVisitedAt отсутствует
type ResponseStats struct {
	OriginalURL   string     `json:"original_url"`
	CreatedAt     time.Time  `json:"created_at"`
	VisitCount    int        `json:"visit_count"`
	LastVisitedAt *time.Time `json:"last_visited_at,omitempty"`
}

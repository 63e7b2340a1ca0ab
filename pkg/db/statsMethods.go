package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// RegisterVisit фиксирует переход по ссылке: создаёт запись статистики при первом визите
// или увеличивает счётчик. Возвращает итоговое значение счётчика
func (d *DataBase) RegisterVisit(ctx context.Context, linkID uuid.UUID, visitedAt time.Time) (int, error) {

	query := `   INSERT INTO stats (link_id, visit_count, last_visited_at)
	             VALUES ($1, 1, $2)
			 ON CONFLICT (link_id) DO UPDATE
			        SET visit_count = stats.visit_count + 1,
					    last_visited_at = EXCLUDED.last_visited_at
			  RETURNING visit_count`

	var visitCount int
	err := d.Pool.QueryRow(ctx, query, linkID, visitedAt).Scan(&visitCount)
	if err != nil {
		return 0, fmt.Errorf("ошибка фиксации перехода в RegisterVisit: %w", err)
	}

	return visitCount, nil
}

// GetStatsByLinkID возвращает статистику по ссылке (или nil, nil, если переходов ещё не было).
// Чтение не создаёт запись статистики
func (d *DataBase) GetStatsByLinkID(ctx context.Context, linkID uuid.UUID) (*VisitStats, error) {

	query := `SELECT id, link_id, visit_count, last_visited_at
	            FROM stats
			   WHERE link_id = $1`

	stats := &VisitStats{}

	err := d.Pool.QueryRow(ctx, query, linkID).
		Scan(&stats.ID,
			&stats.LinkID,
			&stats.VisitCount,
			&stats.LastVisitedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("ошибка получения статистики в GetStatsByLinkID: %w", err)
	}

	return stats, nil
}

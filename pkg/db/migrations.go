package db

import (
	"context"
	"fmt"
)

const (
	linksSchema = `CREATE TABLE IF NOT EXISTS links (
			           id UUID PRIMARY KEY,
		       short_code VARCHAR(50) UNIQUE NOT NULL,
		     original_url TEXT NOT NULL,
		            owner TEXT,
		        is_custom BOOLEAN NOT NULL DEFAULT FALSE,
		       created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		       expires_at TIMESTAMPTZ);

			 CREATE INDEX IF NOT EXISTS idx_links_short_code ON links(short_code);
		     CREATE INDEX IF NOT EXISTS idx_links_created_at ON links(created_at);`

	statsSchema = `CREATE TABLE IF NOT EXISTS stats (
			           id BIGSERIAL PRIMARY KEY,
			      link_id UUID UNIQUE NOT NULL REFERENCES links(id) ON DELETE CASCADE,
			  visit_count INT NOT NULL DEFAULT 0,
		  last_visited_at TIMESTAMPTZ);

				 CREATE INDEX IF NOT EXISTS idx_stats_last_visited_at ON stats(last_visited_at);`
)

// Migration создаёт таблицы links и stats, если они ещё не существуют, добавляет индексы
func (d *DataBase) Migration(ctx context.Context) error {

	// создаём таблицу links с индексами
	query := linksSchema
	_, err := d.Pool.Exec(ctx, query)
	if err != nil {
		return fmt.Errorf("ошибка создания таблицы links: %w", err)
	}

	// создаём таблицу stats с индексами
	query = statsSchema
	_, err = d.Pool.Exec(ctx, query)
	if err != nil {
		return fmt.Errorf("ошибка создания таблицы stats: %w", err)
	}

	return nil
}

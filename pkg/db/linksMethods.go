package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrShortCodeTaken сигнализирует о нарушении уникальности short_code при вставке.
// Именно вставка является окончательной проверкой уникальности кода,
// предварительный SELECT — лишь оптимизация.
var ErrShortCodeTaken = errors.New("короткий код уже занят")

const uniqueViolationCode = "23505" // код ошибки PostgreSQL unique_violation

// CreateLink добавляет новую запись в таблицу links БД.
// При конфликте уникальности short_code возвращает ErrShortCodeTaken
func (d *DataBase) CreateLink(ctx context.Context, link *Link) error {

	query := `   INSERT INTO links (id, short_code, original_url, owner, is_custom, created_at, expires_at)
                 VALUES ($1, $2, $3, $4, $5, NOW(), $6)
			  RETURNING created_at`

	err := d.Pool.QueryRow(ctx, query,
		link.ID, link.ShortCode, link.OriginalURL, link.Owner, link.IsCustom, link.ExpiresAt).
		Scan(&link.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return ErrShortCodeTaken
		}
		return fmt.Errorf("ошибка добавления записи о ссылке в CreateLink: %w", err)
	}

	return nil
}

// GetLinkByShortCode получает из таблицы links БД запись по короткому коду (или nil, nil)
func (d *DataBase) GetLinkByShortCode(ctx context.Context, shortCode string) (*Link, error) {

	query := `SELECT id, short_code, original_url, owner, is_custom, created_at, expires_at
	            FROM links
			   WHERE short_code = $1`

	link := &Link{}

	err := d.Pool.QueryRow(ctx, query, shortCode).
		Scan(&link.ID,
			&link.ShortCode,
			&link.OriginalURL,
			&link.Owner,
			&link.IsCustom,
			&link.CreatedAt,
			&link.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("ошибка получения записи о ссылке в GetLinkByShortCode: %w", err)
	}

	return link, nil
}

// GetLinkByOriginalURL получает из таблицы links БД крайнюю по времени запись
// с точным совпадением оригинального URL (или nil, nil)
func (d *DataBase) GetLinkByOriginalURL(ctx context.Context, originalURL string) (*Link, error) {

	query := `SELECT id, short_code, original_url, owner, is_custom, created_at, expires_at
	            FROM links
			   WHERE original_url = $1
			   ORDER BY created_at DESC
			   LIMIT 1`

	link := &Link{}

	err := d.Pool.QueryRow(ctx, query, originalURL).
		Scan(&link.ID,
			&link.ShortCode,
			&link.OriginalURL,
			&link.Owner,
			&link.IsCustom,
			&link.CreatedAt,
			&link.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("ошибка получения записи о ссылке в GetLinkByOriginalURL: %w", err)
	}

	return link, nil
}

// UpdateOriginalURL меняет оригинальный URL ссылки (короткий код неизменен)
func (d *DataBase) UpdateOriginalURL(ctx context.Context, linkID uuid.UUID, originalURL string) error {

	query := `UPDATE links
	             SET original_url = $2
			   WHERE id = $1`

	_, err := d.Pool.Exec(ctx, query, linkID, originalURL)
	if err != nil {
		return fmt.Errorf("ошибка обновления URL в UpdateOriginalURL: %w", err)
	}

	return nil
}

// UpdateExpiration меняет срок действия ссылки (NULL — бессрочно)
func (d *DataBase) UpdateExpiration(ctx context.Context, linkID uuid.UUID, expiresAt sql.NullTime) error {

	query := `UPDATE links
	             SET expires_at = $2
			   WHERE id = $1`

	_, err := d.Pool.Exec(ctx, query, linkID, expiresAt)
	if err != nil {
		return fmt.Errorf("ошибка обновления срока действия в UpdateExpiration: %w", err)
	}

	return nil
}

// DeleteLink удаляет ссылку, запись статистики уходит каскадом
func (d *DataBase) DeleteLink(ctx context.Context, linkID uuid.UUID) error {

	query := `DELETE FROM links
	           WHERE id = $1`

	_, err := d.Pool.Exec(ctx, query, linkID)
	if err != nil {
		return fmt.Errorf("ошибка удаления ссылки в DeleteLink: %w", err)
	}

	return nil
}

// DeleteUnusedLinks удаляет заброшенные ссылки одним запросом и возвращает число удалённых.
// Ссылка подлежит удалению, когда выполняются оба условия:
// 1) по ней никогда не переходили и она создана раньше cutoff,
//    либо крайний переход был раньше cutoff;
// 2) у неё нет срока действия, либо срок уже истёк.
// Повторный запуск безопасен: удаление уже удалённых строк — no-op
func (d *DataBase) DeleteUnusedLinks(ctx context.Context, cutoff, now time.Time) (int64, error) {

	query := `DELETE FROM links
	           WHERE ((id NOT IN (SELECT link_id FROM stats) AND created_at < $1)
			          OR id IN (SELECT link_id FROM stats WHERE last_visited_at < $1))
			     AND (expires_at IS NULL OR expires_at < $2)`

	tag, err := d.Pool.Exec(ctx, query, cutoff, now)
	if err != nil {
		return 0, fmt.Errorf("ошибка удаления заброшенных ссылок в DeleteUnusedLinks: %w", err)
	}

	return tag.RowsAffected(), nil
}

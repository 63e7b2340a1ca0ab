package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/IPampurin/LinkKeeper/pkg/db"
	"github.com/IPampurin/LinkKeeper/pkg/metrics"
	"github.com/google/uuid"
	"github.com/wb-go/wbf/logger"
)

// CreateShortLink создаёт новую короткую ссылку
// (если customAlias не пуст, он становится коротким кодом после проверки уникальности,
// иначе код генерируется; для анонимных ссылок применяется политика срока действия).
// Кэш при создании не трогаем — запись туда попадёт только набрав переходы
func (s *Service) CreateShortLink(ctx context.Context, log logger.Logger, originalURL, customAlias string, expiresAt *time.Time, owner *string) (*ResponseLink, error) {

	now := time.Now()

	// 1. Политика срока действия для анонимных ссылок:
	// заданный срок не дальше AnonMaxLifetime, по умолчанию AnonDefaultLifetime.
	// Для владельческих ссылок срок берётся как есть, включая его отсутствие
	expiration := sql.NullTime{}
	if expiresAt != nil {
		expiration = sql.NullTime{Time: *expiresAt, Valid: true}
	}
	if owner == nil {
		if expiresAt != nil {
			if expiresAt.After(now.Add(s.cfg.AnonMaxLifetime)) {
				return nil, ErrExpirationTooFar
			}
		} else {
			expiration = sql.NullTime{Time: now.Add(s.cfg.AnonDefaultLifetime), Valid: true}
		}
	}

	linkOwner := sql.NullString{}
	if owner != nil {
		linkOwner = sql.NullString{String: *owner, Valid: true}
	}

	// 2. Кастомный код: предварительная проверка занятости и одна попытка вставки.
	// Конфликт уникальности на вставке означает, что код заняли параллельно
	if customAlias != "" {
		existing, err := s.link.GetLinkByShortCode(ctx, customAlias)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, ErrAliasTaken
		}

		link := &db.Link{
			ID:          uuid.New(),
			ShortCode:   customAlias,
			OriginalURL: originalURL,
			Owner:       linkOwner,
			IsCustom:    true,
			ExpiresAt:   expiration,
		}

		err = s.link.CreateLink(ctx, link)
		if errors.Is(err, db.ErrShortCodeTaken) {
			return nil, ErrAliasTaken
		}
		if err != nil {
			return nil, err
		}

		log.Ctx(ctx).Info("новая короткая ссылка создана",
			"short_code", link.ShortCode,
			"is_custom", true,
			"anonymous", owner == nil)

		return toResponseLink(link), nil
	}

	// 3. Генерация кода: предварительный SELECT — только оптимизация,
	// окончательную уникальность гарантирует вставка. Проигрыш гонки — повторная попытка
	for attempt := 0; attempt < s.cfg.GenerateAttempts; attempt++ {

		shortCode := NewRandomCode(s.cfg.CodeLength)

		existing, err := s.link.GetLinkByShortCode(ctx, shortCode)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			continue
		}

		link := &db.Link{
			ID:          uuid.New(),
			ShortCode:   shortCode,
			OriginalURL: originalURL,
			Owner:       linkOwner,
			IsCustom:    false,
			ExpiresAt:   expiration,
		}

		err = s.link.CreateLink(ctx, link)
		if errors.Is(err, db.ErrShortCodeTaken) {
			continue
		}
		if err != nil {
			return nil, err
		}

		log.Ctx(ctx).Info("новая короткая ссылка создана",
			"short_code", shortCode,
			"is_custom", false,
			"anonymous", owner == nil)

		return toResponseLink(link), nil
	}

	return nil, ErrGenerationExhausted
}

// Resolve возвращает оригинальный URL по короткому коду.
// Сначала кэш: попадание обслуживается без похода в БД и без обновления статистики.
// На промахе идём в БД, фиксируем переход и, если ссылка набрала больше
// PopularThreshold визитов, кладём её в кэш с TTL.
// Истечение срока здесь не проверяется — им занимается только фоновая очистка
func (s *Service) Resolve(ctx context.Context, log logger.Logger, shortCode string) (string, error) {

	if s.cache != nil {
		destination, err := s.cache.GetDestination(ctx, shortCode)
		if err != nil {
			// сбой кэша считаем промахом
			log.Ctx(ctx).Error("ошибка получения из кэша", "error", err)
		}
		if destination != "" {
			metrics.CacheHits.Inc()
			log.Ctx(ctx).Debug("ссылка получена из кэша", "short_code", shortCode)
			return destination, nil
		}
	}

	metrics.CacheMisses.Inc()

	link, err := s.link.GetLinkByShortCode(ctx, shortCode)
	if err != nil {
		return "", err
	}
	if link == nil {
		log.Ctx(ctx).Info("ссылка не найдена в БД", "short_code", shortCode)
		return "", ErrNotFound
	}

	visitCount, err := s.stats.RegisterVisit(ctx, link.ID, time.Now())
	if err != nil {
		return "", err
	}

	if visitCount > s.cfg.PopularThreshold && s.cache != nil {
		if err := s.cache.SetDestination(ctx, shortCode, link.OriginalURL); err != nil {
			log.Ctx(ctx).Error("ошибка сохранения в кэш", "error", err, "short_code", shortCode)
		} else {
			log.Ctx(ctx).Debug("популярная ссылка закэширована", "short_code", shortCode, "visit_count", visitCount)
		}
	}

	return link.OriginalURL, nil
}

// LinkStats возвращает статистику переходов по ссылке.
// Если переходов не было, счётчик равен нулю — запись статистики при этом не создаётся
func (s *Service) LinkStats(ctx context.Context, log logger.Logger, shortCode string) (*ResponseStats, error) {

	link, err := s.link.GetLinkByShortCode(ctx, shortCode)
	if err != nil {
		return nil, err
	}
	if link == nil {
		log.Ctx(ctx).Info("ссылка не найдена при запросе статистики", "short_code", shortCode)
		return nil, ErrNotFound
	}

	response := &ResponseStats{
		OriginalURL: link.OriginalURL,
		CreatedAt:   link.CreatedAt,
	}

	stats, err := s.stats.GetStatsByLinkID(ctx, link.ID)
	if err != nil {
		return nil, err
	}
	if stats != nil {
		response.VisitCount = stats.VisitCount
		if stats.LastVisitedAt.Valid {
			t := stats.LastVisitedAt.Time
			response.LastVisitedAt = &t
		}
	}

	log.Ctx(ctx).Debug("статистика по ссылке получена", "short_code", shortCode, "visit_count", response.VisitCount)

	return response, nil
}

// UpdateShortLink меняет оригинальный URL ссылки. Порядок строгий:
// сначала запись в БД, затем инвалидация кэша. Сбой инвалидации не отменяет
// успех операции — устаревшая запись кэша живёт не дольше TTL
func (s *Service) UpdateShortLink(ctx context.Context, log logger.Logger, shortCode, originalURL string, owner *string) error {

	link, err := s.link.GetLinkByShortCode(ctx, shortCode)
	if err != nil {
		return err
	}
	if link == nil {
		return ErrNotFound
	}
	if !sameOwner(owner, link.Owner) {
		log.Ctx(ctx).Info("попытка изменить чужую ссылку", "short_code", shortCode)
		return ErrForbidden
	}

	if err := s.link.UpdateOriginalURL(ctx, link.ID, originalURL); err != nil {
		return err
	}

	s.invalidate(ctx, log, shortCode)

	log.Ctx(ctx).Info("оригинальный URL ссылки обновлён", "short_code", shortCode)

	return nil
}

// UpdateExpiration меняет срок действия ссылки (nil — бессрочно).
// Кэш не трогаем: там хранится только URL назначения, а новый срок
// подействует при следующем проходе фоновой очистки
func (s *Service) UpdateExpiration(ctx context.Context, log logger.Logger, shortCode string, expiresAt *time.Time, owner *string) error {

	link, err := s.link.GetLinkByShortCode(ctx, shortCode)
	if err != nil {
		return err
	}
	if link == nil {
		return ErrNotFound
	}
	if !sameOwner(owner, link.Owner) {
		log.Ctx(ctx).Info("попытка изменить срок чужой ссылки", "short_code", shortCode)
		return ErrForbidden
	}

	expiration := sql.NullTime{}
	if expiresAt != nil {
		expiration = sql.NullTime{Time: *expiresAt, Valid: true}
	}

	if err := s.link.UpdateExpiration(ctx, link.ID, expiration); err != nil {
		return err
	}

	log.Ctx(ctx).Info("срок действия ссылки обновлён", "short_code", shortCode)

	return nil
}

// DeleteShortLink удаляет ссылку (статистика уходит каскадом), затем инвалидирует кэш
func (s *Service) DeleteShortLink(ctx context.Context, log logger.Logger, shortCode string, owner *string) error {

	link, err := s.link.GetLinkByShortCode(ctx, shortCode)
	if err != nil {
		return err
	}
	if link == nil {
		return ErrNotFound
	}
	if !sameOwner(owner, link.Owner) {
		log.Ctx(ctx).Info("попытка удалить чужую ссылку", "short_code", shortCode)
		return ErrForbidden
	}

	if err := s.link.DeleteLink(ctx, link.ID); err != nil {
		return err
	}

	s.invalidate(ctx, log, shortCode)

	log.Ctx(ctx).Info("ссылка удалена", "short_code", shortCode)

	return nil
}

// FindByOriginalURL ищет ссылку по точному совпадению оригинального URL
func (s *Service) FindByOriginalURL(ctx context.Context, log logger.Logger, originalURL string) (*ResponseLink, error) {

	link, err := s.link.GetLinkByOriginalURL(ctx, originalURL)
	if err != nil {
		return nil, err
	}
	if link == nil {
		return nil, ErrNotFound
	}

	return toResponseLink(link), nil
}

// invalidate удаляет запись из кэша после успешной мутации в БД.
// Ошибка только логируется и считается в метриках
func (s *Service) invalidate(ctx context.Context, log logger.Logger, shortCode string) {

	if s.cache == nil {
		return
	}

	if err := s.cache.DeleteDestination(ctx, shortCode); err != nil {
		metrics.InvalidationFailures.Inc()
		log.Ctx(ctx).Error("ошибка инвалидации кэша", "error", err, "short_code", shortCode)
	}
}

// sameOwner сравнивает владельца из запроса с владельцем ссылки
// (обе стороны могут отсутствовать — анонимная ссылка и анонимный вызов совпадают)
func sameOwner(caller *string, owner sql.NullString) bool {

	if caller == nil {
		return !owner.Valid
	}

	return owner.Valid && owner.String == *caller
}

// toResponseLink преобразует db.Link в service.ResponseLink
func toResponseLink(l *db.Link) *ResponseLink {

	response := &ResponseLink{
		ID:          l.ID,
		ShortCode:   l.ShortCode,
		OriginalURL: l.OriginalURL,
		CreatedAt:   l.CreatedAt,
	}
	if l.ExpiresAt.Valid {
		t := l.ExpiresAt.Time
		response.ExpiresAt = &t
	}

	return response
}

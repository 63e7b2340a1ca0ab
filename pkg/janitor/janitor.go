package janitor

import (
	"context"
	"time"

	"github.com/IPampurin/LinkKeeper/pkg/configuration"
	"github.com/IPampurin/LinkKeeper/pkg/metrics"
	"github.com/wb-go/wbf/logger"
)

// Sweeper — часть хранилища, нужная очистке (реализуется *db.DataBase)
type Sweeper interface {
	DeleteUnusedLinks(ctx context.Context, cutoff, now time.Time) (int64, error)
}

// Run запускает фоновую очистку с заданным интервалом ConfJanitor.Interval.
// Очистка живёт отдельно от обслуживания запросов: долгий проход не блокирует резолвы.
// Завершается по отмене контекста
func Run(ctx context.Context, cfg *configuration.ConfJanitor, storage Sweeper, log logger.Logger) {

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	log.Info("очистка запущена", "интервал", cfg.Interval, "retention_days", cfg.RetentionDays)

	for {
		select {
		case <-ctx.Done():
			log.Info("очистка завершает работу")
			return
		case <-ticker.C:
			if _, err := Sweep(ctx, cfg, storage, log); err != nil {
				log.Error("ошибка прохода очистки", "error", err)
			}
		}
	}
}

// Sweep выполняет один проход очистки и возвращает число удалённых ссылок.
// Повторный запуск безопасен: предикат вычисляется только по БД,
// удаление уже удалённых строк — no-op
func Sweep(ctx context.Context, cfg *configuration.ConfJanitor, storage Sweeper, log logger.Logger) (int64, error) {

	now := time.Now()
	cutoff := now.AddDate(0, 0, -cfg.RetentionDays)

	deleted, err := storage.DeleteUnusedLinks(ctx, cutoff, now)
	if err != nil {
		return 0, err
	}

	metrics.JanitorDeleted.Add(float64(deleted))
	log.Info("проход очистки выполнен", "deleted", deleted)

	return deleted, nil
}

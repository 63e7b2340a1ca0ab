package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/IPampurin/LinkKeeper/pkg/configuration"
	"github.com/wb-go/wbf/logger"
	"github.com/wb-go/wbf/redis"
)

/*
в кэше хранятся пары ShortCode - OriginalURL для популярных ссылок.
кэш — производная проекция, никогда не источник истины:
отсутствие ключа не значит, что ссылки нет, а устаревание ограничено TTL
*/

// Cache хранит подключение к БД Redis
type Cache struct {
	redis *redis.Client
	ttl   time.Duration
}

// InitCache запускает работу с Redis
func InitCache(ctx context.Context, cfgCache *configuration.ConfCache, log logger.Logger) (*Cache, error) {

	// определяем конфигурацию подключения к Redis
	options := redis.Options{
		Address:   fmt.Sprintf("%s:%d", cfgCache.HostName, cfgCache.Port),
		Password:  cfgCache.Password,
		MaxMemory: "100mb",
		Policy:    "allkeys-lru",
	}

	// пробуем подключиться
	clientRedis, err := redis.Connect(options)
	if err != nil {
		return nil, fmt.Errorf("ошибка установки соединения с Redis: %v\n", err)
	}

	// проверяем подключение
	err = clientRedis.Ping(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к Redis: %v\n", err)
	}

	// получаем экземпляр
	cache := &Cache{
		redis: clientRedis,
		ttl:   cfgCache.TTL,
	}

	log.Info("Кэш работает.")

	return cache, nil
}

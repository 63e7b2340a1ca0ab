package configuration

import (
	"time"

	cleanenvport "github.com/wb-go/wbf/config/cleanenv-port"
)

// ConfServer — параметры HTTP-сервера
type ConfServer struct {
	HostName string `env:"SERVICE_HOST_NAME" env-default:"localhost"`
	Port     int    `env:"SERVICE_PORT"       env-default:"8081"`
	GinMode  string `env:"GIN_MODE"           env-default:"debug"`
}

// ConfDB — параметры подключения к PostgreSQL
type ConfDB struct {
	HostName string `env:"DB_HOST_NAME" env-default:"dbPostgres"`
	Port     int    `env:"DB_PORT"      env-default:"5432"`
	Name     string `env:"DB_NAME"      env-default:"db-postgres"`
	User     string `env:"DB_USER"      env-default:"postgres"`
	Password string `env:"DB_PASSWORD"  env-default:"postgres"`
}

// ConfCache — параметры Redis
type ConfCache struct {
	HostName string        `env:"REDIS_HOST_NAME" env-default:"dbRedis"`
	Port     int           `env:"REDIS_PORT"      env-default:"6379"`
	Password string        `env:"REDIS_PASSWORD"  env-default:""`
	DB       int           `env:"REDIS_DB"        env-default:"0"`
	TTL      time.Duration `env:"CACHE_TTL"       env-default:"3600s"`
}

// ConfLifecycle — политика жизненного цикла ссылок
type ConfLifecycle struct {
	PopularThreshold    int           `env:"POPULAR_THRESHOLD"     env-default:"10"`   // число визитов, после которого ссылка попадает в кэш
	AnonDefaultLifetime time.Duration `env:"ANON_DEFAULT_LIFETIME" env-default:"168h"` // срок жизни анонимной ссылки по умолчанию (7 дней)
	AnonMaxLifetime     time.Duration `env:"ANON_MAX_LIFETIME"     env-default:"720h"` // максимальный срок жизни анонимной ссылки (30 дней)
	CodeLength          int           `env:"CODE_LENGTH"           env-default:"10"`   // длина генерируемого короткого кода
	GenerateAttempts    int           `env:"GENERATE_ATTEMPTS"     env-default:"20"`   // предел попыток генерации свободного кода
}

// ConfJanitor — параметры фоновой очистки
type ConfJanitor struct {
	Interval      time.Duration `env:"JANITOR_INTERVAL"        env-default:"24h"` // период запуска очистки
	RetentionDays int           `env:"UNUSED_LINK_EXPIRE_DAYS" env-default:"160"` // сколько дней ссылка может оставаться без визитов
}

// ConfAuth — параметры разбора токена владельца
type ConfAuth struct {
	JWTSecret string `env:"JWT_SECRET" env-default:""`
}

// Config — корневая структура конфигурации
type Config struct {
	Server    ConfServer
	DB        ConfDB
	Redis     ConfCache
	Lifecycle ConfLifecycle
	Janitor   ConfJanitor
	Auth      ConfAuth
}

// ReadConfig загружает .env файл из корня проекта и возвращает заполненную структуру Config
func ReadConfig() (*Config, error) {

	var config Config

	// загружаем конфигурацию из файла .env напрямую в структуру
	if err := cleanenvport.LoadPath("./.env", &config); err != nil {
		return nil, err
	}

	// единицы измерения time.Duration указаны прямо в тегах env-default (например, "3600s", "24h")

	return &config, nil
}

package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// попадания в кэш при резолве (такие переходы не попадают в статистику)
	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "linkkeeper_cache_hits_total",
		Help: "Количество резолвов, обслуженных из кэша",
	})

	// промахи кэша (резолв через БД)
	CacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "linkkeeper_cache_misses_total",
		Help: "Количество резолвов, потребовавших обращения к БД",
	})

	// сбои инвалидации кэша после успешной записи в БД
	InvalidationFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "linkkeeper_cache_invalidation_failures_total",
		Help: "Количество сбоев инвалидации кэша после мутации",
	})

	// ссылки, удалённые фоновой очисткой
	JanitorDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "linkkeeper_janitor_deleted_links_total",
		Help: "Количество ссылок, удалённых фоновой очисткой",
	})
)

// Handler возвращает обработчик /metrics для Prometheus
func Handler() http.Handler {

	return promhttp.Handler()
}

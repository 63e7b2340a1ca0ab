package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/IPampurin/LinkKeeper/pkg/api"
	"github.com/IPampurin/LinkKeeper/pkg/configuration"
	"github.com/IPampurin/LinkKeeper/pkg/metrics"
	"github.com/IPampurin/LinkKeeper/pkg/service"
	"github.com/gin-gonic/gin"
	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/logger"
)

func Run(ctx context.Context, cfgServer *configuration.ConfServer, cfgAuth *configuration.ConfAuth, service *service.Service, log logger.Logger) error {

	// создаём движок Gin через обёртку ginext
	engine := ginext.New(cfgServer.GinMode)

	// добавляем middleware (логгер и восстановление)
	engine.Use(ginext.Logger(), ginext.Recovery())

	// добавляем свой middleware для структурного логирования запросов
	engine.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start)
		// используем переданный логгер для записи информации о запросе
		log.LogRequest(c.Request.Context(), c.Request.Method, c.Request.URL.Path, c.Writer.Status(), duration)
	})

	// владельца (если токен передан) извлекаем на всех маршрутах
	engine.Use(api.OwnerFromToken(cfgAuth.JWTSecret, log))

	// регистрируем эндпоинты
	engine.POST("/api/links/shorten", api.CreateShortLink(service, log))                  // создание новой сокращённой ссылки
	engine.GET("/s/:short_code", api.Redirect(service, log))                              // переход по короткой ссылке
	engine.GET("/api/links/search", api.SearchByOriginal(service, log))                   // поиск по точному OriginalURL
	engine.GET("/api/links/:short_code/stats", api.GetStats(service, log))                // статистика переходов
	engine.PUT("/api/links/:short_code", api.UpdateLink(service, log))                    // смена оригинального URL
	engine.PUT("/api/links/:short_code/expiration", api.UpdateExpiration(service, log))   // смена срока действия
	engine.DELETE("/api/links/:short_code", api.DeleteLink(service, log))                 // удаление ссылки

	// метрики Prometheus
	engine.GET("/metrics", gin.WrapH(metrics.Handler()))

	// формируем адрес запуска
	addr := fmt.Sprintf("%s:%d", cfgServer.HostName, cfgServer.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: engine, // engine реализует http.Handler
	}

	// канал для ошибок от сервера
	errCh := make(chan error, 1)

	// запускаем сервер в горутине
	go func() {
		log.Info("запуск HTTP-сервера", "address", addr)
		err := srv.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// ожидаем либо сигнала от контекста, либо ошибки запуска
	select {
	case <-ctx.Done():
		log.Info("получен сигнал завершения, останавливаем сервер...")
		// даём время на завершение текущих запросов (например, 5 секунд)
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("ошибка при graceful shutdown", "error", err)
			return err
		}
		log.Info("сервер корректно остановлен")
		return nil

	case err := <-errCh:
		log.Error("сервер завершился с ошибкой", "error", err)
		return err
	}
}

package api

import (
	"errors"
	"net/http"

	"github.com/IPampurin/LinkKeeper/pkg/service"
	"github.com/gin-gonic/gin"
	"github.com/wb-go/wbf/logger"
)

// CreateShortLink обрабатывает POST /api/links/shorten
// (владелец берётся из токена; без токена ссылка создаётся анонимной
// и получает срок действия по политике)
func CreateShortLink(svc service.ServiceMethods, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {

		var req CreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			log.Ctx(c.Request.Context()).Error("неверный формат запроса", "error", err)
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "неверный формат запроса"})
			return
		}

		link, err := svc.CreateShortLink(c.Request.Context(), log, req.OriginalURL, req.CustomAlias, req.ExpiresAt, ownerFromContext(c))
		if err != nil {
			respondError(c, log, err, "ошибка создания ссылки")
			return
		}

		c.JSON(http.StatusCreated, link)
	}
}

// Redirect обрабатывает GET /s/:short_code
func Redirect(svc service.ServiceMethods, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {

		shortCode := c.Param("short_code")

		destination, err := svc.Resolve(c.Request.Context(), log, shortCode)
		if err != nil {
			respondError(c, log, err, "ошибка получения ссылки")
			return
		}

		c.Redirect(http.StatusTemporaryRedirect, destination)
	}
}

// GetStats обрабатывает GET /api/links/:short_code/stats
func GetStats(svc service.ServiceMethods, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {

		shortCode := c.Param("short_code")

		stats, err := svc.LinkStats(c.Request.Context(), log, shortCode)
		if err != nil {
			respondError(c, log, err, "ошибка получения статистики")
			return
		}

		c.JSON(http.StatusOK, stats)
	}
}

// UpdateLink обрабатывает PUT /api/links/:short_code
func UpdateLink(svc service.ServiceMethods, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {

		shortCode := c.Param("short_code")

		var req UpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			log.Ctx(c.Request.Context()).Error("неверный формат запроса", "error", err)
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "неверный формат запроса"})
			return
		}

		err := svc.UpdateShortLink(c.Request.Context(), log, shortCode, req.OriginalURL, ownerFromContext(c))
		if err != nil {
			respondError(c, log, err, "ошибка обновления ссылки")
			return
		}

		c.JSON(http.StatusOK, MessageResponse{Message: "ссылка обновлена"})
	}
}

// UpdateExpiration обрабатывает PUT /api/links/:short_code/expiration
func UpdateExpiration(svc service.ServiceMethods, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {

		shortCode := c.Param("short_code")

		var req UpdateExpirationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			log.Ctx(c.Request.Context()).Error("неверный формат запроса", "error", err)
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "неверный формат запроса"})
			return
		}

		err := svc.UpdateExpiration(c.Request.Context(), log, shortCode, req.ExpiresAt, ownerFromContext(c))
		if err != nil {
			respondError(c, log, err, "ошибка обновления срока действия")
			return
		}

		c.JSON(http.StatusOK, MessageResponse{Message: "срок действия обновлён"})
	}
}

// DeleteLink обрабатывает DELETE /api/links/:short_code
func DeleteLink(svc service.ServiceMethods, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {

		shortCode := c.Param("short_code")

		err := svc.DeleteShortLink(c.Request.Context(), log, shortCode, ownerFromContext(c))
		if err != nil {
			respondError(c, log, err, "ошибка удаления ссылки")
			return
		}

		c.JSON(http.StatusOK, MessageResponse{Message: "ссылка удалена"})
	}
}

// SearchByOriginal обрабатывает GET /api/links/search?original_url=...
func SearchByOriginal(svc service.ServiceMethods, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {

		originalURL := c.Query("original_url")
		if originalURL == "" {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "параметр original_url обязателен"})
			return
		}

		link, err := svc.FindByOriginalURL(c.Request.Context(), log, originalURL)
		if err != nil {
			respondError(c, log, err, "ошибка поиска ссылки")
			return
		}

		c.JSON(http.StatusOK, link)
	}
}

// respondError переводит бизнес-ошибки сервиса в HTTP-статусы;
// всё прочее — сбой хранилища, отдаём 500 (клиент может повторить запрос)
func respondError(c *gin.Context, log logger.Logger, err error, msg string) {

	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "ссылка не найдена"})
	case errors.Is(err, service.ErrAliasTaken):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "короткий код уже занят"})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "нет прав на операцию с этой ссылкой"})
	case errors.Is(err, service.ErrExpirationTooFar):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "срок действия анонимной ссылки превышает допустимый"})
	default:
		log.Ctx(c.Request.Context()).Error(msg, "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "внутренняя ошибка сервера"})
	}
}

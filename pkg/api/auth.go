package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/wb-go/wbf/logger"
)

const ownerKey = "owner" // ключ владельца в контексте gin

// OwnerFromToken извлекает владельца из Bearer-токена, если тот передан.
// Запрос без заголовка Authorization проходит дальше как анонимный;
// некорректный токен отклоняется. Выпуск и проверка самих учёток — забота внешнего сервиса,
// здесь используется только subject токена
func OwnerFromToken(secret string, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {

		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "требуется Bearer-токен"})
			return
		}

		claims := &jwt.RegisteredClaims{}
		token, err := jwt.ParseWithClaims(parts[1], claims, func(t *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			log.Ctx(c.Request.Context()).Info("отклонён некорректный токен", "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "некорректный токен"})
			return
		}

		if claims.Subject != "" {
			c.Set(ownerKey, claims.Subject)
		}

		c.Next()
	}
}

// ownerFromContext возвращает владельца из контекста запроса (nil — анонимный вызов)
func ownerFromContext(c *gin.Context) *string {

	value, ok := c.Get(ownerKey)
	if !ok {
		return nil
	}

	owner, ok := value.(string)
	if !ok || owner == "" {
		return nil
	}

	return &owner
}

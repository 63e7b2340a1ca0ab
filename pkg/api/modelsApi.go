package api

import "time"

// CreateRequest - запрос на создание короткой ссылки (POST /api/links/shorten вход)
type CreateRequest struct {
	OriginalURL string     `json:"original_url" binding:"required,url"`
	CustomAlias string     `json:"custom_alias" binding:"omitempty,alphanum,max=50"`
	ExpiresAt   *time.Time `json:"expires_at"   binding:"omitempty"`
}

// UpdateRequest - запрос на смену оригинального URL (PUT /api/links/:short_code вход)
type UpdateRequest struct {
	OriginalURL string `json:"original_url" binding:"required,url"`
}

// UpdateExpirationRequest - запрос на смену срока действия
// (PUT /api/links/:short_code/expiration вход); null означает бессрочную ссылку
type UpdateExpirationRequest struct {
	ExpiresAt *time.Time `json:"expires_at"`
}

// MessageResponse - стандартный ответ об успехе мутации
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse - стандартный ответ с ошибкой
type ErrorResponse struct {
	Error string `json:"error"`
}

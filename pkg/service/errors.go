package service

import "errors"

// ожидаемые бизнес-исходы: возвращаются вызывающей стороне как есть,
// внутренних ретраев для них нет
var (
	ErrNotFound            = errors.New("ссылка не найдена")
	ErrAliasTaken          = errors.New("короткий код уже занят")
	ErrForbidden           = errors.New("нет прав на операцию с этой ссылкой")
	ErrExpirationTooFar    = errors.New("срок действия анонимной ссылки превышает допустимый")
	ErrGenerationExhausted = errors.New("не удалось подобрать свободный короткий код за отведённое число попыток")
)

package service

import (
	"math/rand/v2"
)

const sizeShortCode = 10 // длина сгенерированного короткого кода ShortCode по умолчанию

// алфавит коротких кодов: латинские буквы и цифры (~62^10 вариантов при длине 10)
var codeChars = []rune("ABCDEFGHIJKLMNOPQRSTUVWXYZ" +
	"abcdefghijklmnopqrstuvwxyz" +
	"0123456789")

// NewRandomCode возвращает случайный короткий код указанной длины
func NewRandomCode(size int) string {

	if size == 0 {
		size = sizeShortCode
	}

	b := make([]rune, size)
	for i := range b {
		b[i] = codeChars[rand.N(len(codeChars))]
	}

	return string(b)
}

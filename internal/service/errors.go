// errors.go — ошибки бизнес-логики сервисного слоя.
// Единственная таксономия, видимая вызывающим: никакие ошибки
// pgx, minio или AI-клиента не пересекают границу сервисов.
package service

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation — ошибка валидации входных данных.
	ErrValidation = errors.New("ошибка валидации")
	// ErrNotFound — файл не найден.
	ErrNotFound = errors.New("файл не найден")
	// ErrUpstream — внешний сервис (blob-хранилище или AI) недоступен.
	ErrUpstream = errors.New("внешний сервис недоступен")
	// ErrInternal — внутренняя ошибка сервиса (пустой ответ AI,
	// повреждённый дескриптор, неожиданный сбой).
	ErrInternal = errors.New("внутренняя ошибка сервиса")
)

// Специализации ErrValidation. errors.Is(err, ErrValidation) — true для всех.
var (
	// ErrEmptyName — имя файла пустое после trim.
	ErrEmptyName = fmt.Errorf("%w: имя файла не задано", ErrValidation)
	// ErrFileTooLarge — размер файла превышает допустимый максимум.
	ErrFileTooLarge = fmt.Errorf("%w: размер файла превышает максимум", ErrValidation)
	// ErrUnsupportedType — тип файла не входит в список поддерживаемых.
	ErrUnsupportedType = fmt.Errorf("%w: тип файла не поддерживается", ErrValidation)
)

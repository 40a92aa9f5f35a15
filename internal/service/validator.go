// validator.go — валидация загружаемых файлов.
// Проверки: имя, размер, тип. Без побочных эффектов и внешних вызовов.
package service

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// allowedTypes — фиксированный список поддерживаемых канонических расширений.
var allowedTypes = map[string]bool{
	"pdf":  true,
	"docx": true,
	"txt":  true,
	"md":   true,
	"csv":  true,
	"xlsx": true,
}

// mimeOverrides — явная таблица content-type → каноническое расширение.
// Общая MIME-эвристика не используется: она неустойчива как минимум
// для пары csv/xlsx, а явная таблица детерминирована и тестируема.
var mimeOverrides = map[string]string{
	"application/pdf": "pdf",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": "docx",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":       "xlsx",
	"text/plain":    "txt",
	"text/markdown": "md",
	"text/csv":      "csv",
}

// Upload — входные данные загрузки файла.
type Upload struct {
	// Name — оригинальное имя файла
	Name string
	// ContentType — заявленный MIME-тип (из multipart-заголовка)
	ContentType string
	// Data — содержимое файла; Seeker нужен для измерения размера
	// без потери позиции чтения
	Data io.ReadSeeker
}

// Validator — проверка входящих файлов и источник канонических
// UTC-временных меток.
type Validator struct {
	// MaxFileSize — максимальный допустимый размер файла в байтах
	MaxFileSize int64
	// Now — генератор временных меток; все created_at/updated_at
	// процесса берутся отсюда и потому сравнимы между собой
	Now func() time.Time
}

// NewValidator создаёт валидатор с UTC-часами.
func NewValidator(maxFileSize int64) *Validator {
	return &Validator{
		MaxFileSize: maxFileSize,
		Now:         func() time.Time { return time.Now().UTC() },
	}
}

// Validate проверяет имя, размер и тип файла.
// Возвращает канонический тип и размер в байтах.
// Размер измеряется через Seek; позиция чтения восстанавливается,
// чтобы вызывающий мог прочитать содержимое целиком.
func (v *Validator) Validate(u Upload) (fileType string, size int64, err error) {
	if strings.TrimSpace(u.Name) == "" {
		return "", 0, ErrEmptyName
	}

	size, err = measureSize(u.Data)
	if err != nil {
		return "", 0, fmt.Errorf("%w: не удалось измерить размер файла", ErrValidation)
	}
	if size > v.MaxFileSize {
		return "", 0, fmt.Errorf("%w: %d байт при максимуме %d", ErrFileTooLarge, size, v.MaxFileSize)
	}

	fileType, err = resolveType(u.Name, u.ContentType)
	if err != nil {
		return "", 0, err
	}

	return fileType, size, nil
}

// measureSize определяет размер данных через Seek и возвращает
// позицию чтения на исходное смещение.
func measureSize(data io.ReadSeeker) (int64, error) {
	current, err := data.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, err
	}

	end, err := data.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, err
	}

	if _, err := data.Seek(current, io.SeekStart); err != nil {
		return 0, err
	}

	return end - current, nil
}

// resolveType определяет канонический тип файла.
// Сначала расширение имени (если оно уже в списке поддерживаемых),
// затем таблица mimeOverrides по заявленному content-type.
func resolveType(name, contentType string) (string, error) {
	ext := ""
	if idx := strings.LastIndex(name, "."); idx >= 0 && idx < len(name)-1 {
		ext = strings.ToLower(name[idx+1:])
	}

	if allowedTypes[ext] {
		return ext, nil
	}

	// content-type в multipart может содержать параметры: "text/csv; charset=utf-8"
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if idx := strings.Index(ct, ";"); idx >= 0 {
		ct = strings.TrimSpace(ct[:idx])
	}
	if mapped, ok := mimeOverrides[ct]; ok {
		return mapped, nil
	}

	if ext == "" {
		ext = ct
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedType, ext)
}

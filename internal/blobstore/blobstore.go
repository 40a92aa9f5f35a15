// Пакет blobstore — хранение бинарного содержимого файлов
// во внешнем S3-совместимом объектном хранилище (MinIO).
package blobstore

import (
	"context"
	"io"
)

// Store — интерфейс blob-хранилища.
// Сервисный слой работает только через этот интерфейс,
// что позволяет подменять хранилище в тестах.
type Store interface {
	// Put записывает объект по ключу path.
	Put(ctx context.Context, path string, data io.Reader, size int64, contentType string) error
	// Delete удаляет объект по ключу path.
	// Отсутствие объекта не считается ошибкой.
	Delete(ctx context.Context, path string) error
}

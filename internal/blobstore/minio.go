package blobstore

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/bigkaa/docuchat/internal/config"
)

// MinioStore — реализация Store поверх MinIO / S3-совместимого хранилища.
type MinioStore struct {
	client *minio.Client
	bucket string
	logger *slog.Logger
}

// NewMinioStore создаёт клиент MinIO и проверяет существование bucket.
// Если bucket отсутствует — создаёт его (идемпотентно).
func NewMinioStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*MinioStore, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка создания клиента MinIO: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		return nil, fmt.Errorf("ошибка проверки bucket %q: %w", cfg.MinioBucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinioBucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("ошибка создания bucket %q: %w", cfg.MinioBucket, err)
		}
		logger.Info("Bucket создан", slog.String("bucket", cfg.MinioBucket))
	}

	return &MinioStore{
		client: client,
		bucket: cfg.MinioBucket,
		logger: logger.With(slog.String("component", "blobstore")),
	}, nil
}

// Put записывает объект в bucket по ключу path.
func (s *MinioStore) Put(ctx context.Context, path string, data io.Reader, size int64, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucket, path, data, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("ошибка записи объекта %s: %w", path, err)
	}
	return nil
}

// Delete удаляет объект из bucket.
// MinIO возвращает успех и для несуществующего объекта,
// поэтому повторное удаление безопасно.
func (s *MinioStore) Delete(ctx context.Context, path string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, path, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("ошибка удаления объекта %s: %w", path, err)
	}
	return nil
}

// CheckReady проверяет доступность blob-хранилища для health endpoint.
// Реализует интерфейс handlers.ReadinessChecker.
func (s *MinioStore) CheckReady() (status string, message string) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if _, err := s.client.BucketExists(ctx, s.bucket); err != nil {
		return "fail", fmt.Sprintf("blob-хранилище недоступно: %v", err)
	}
	return "ok", "подключение активно"
}

// files.go — сервис файлов: загрузка, список, получение, удаление.
// Координирует blob-хранилище и metadata-хранилище.
//
// Консистентность двух хранилищ:
//   - запись метаданных создаётся в статусе pending ДО записи blob
//   - после успешной записи blob запись переводится в available
//   - наружу видны только available-записи
//   - осиротевшие pending-записи и их blob убирает фоновый SweepService
//
// Откаты best-effort: их сбой логируется и не меняет итоговую ошибку операции.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/docuchat/internal/aiclient"
	"github.com/bigkaa/docuchat/internal/blobstore"
	"github.com/bigkaa/docuchat/internal/domain/model"
	"github.com/bigkaa/docuchat/internal/repository"
)

// summaryExcerptLimit — сколько байт содержимого передаётся модели
// для генерации summary.
const summaryExcerptLimit = 5000

// Prometheus-метрики файлового сервиса.
var (
	filesUploadedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dc_files_uploaded_total",
		Help: "Общее количество успешно загруженных файлов.",
	})
	filesDeletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dc_files_deleted_total",
		Help: "Общее количество удалённых файлов.",
	})
	uploadFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dc_upload_failures_total",
		Help: "Общее количество неудачных загрузок по стадиям.",
	}, []string{"stage"})
)

// FileService — сервис файловых операций.
type FileService struct {
	repo      repository.FileRepository
	blobs     blobstore.Store
	ai        aiclient.Client
	validator *Validator
	cache     *CacheService
	logger    *slog.Logger
}

// NewFileService создаёт файловый сервис.
// cache может быть nil — тогда инвалидация при удалении пропускается.
func NewFileService(
	repo repository.FileRepository,
	blobs blobstore.Store,
	ai aiclient.Client,
	validator *Validator,
	cache *CacheService,
	logger *slog.Logger,
) *FileService {
	return &FileService{
		repo:      repo,
		blobs:     blobs,
		ai:        ai,
		validator: validator,
		cache:     cache,
		logger:    logger.With(slog.String("component", "file_service")),
	}
}

// Upload загружает файл: валидация → pending-запись → blob → available.
// До успешной валидации внешние вызовы не выполняются.
func (s *FileService) Upload(ctx context.Context, u Upload) (*model.FileDescriptor, error) {
	fileType, size, err := s.validator.Validate(u)
	if err != nil {
		return nil, err
	}

	now := s.validator.Now()
	fileID := uuid.NewString()
	storagePath := generateStoragePath(fileID, u.Name)

	f := &model.FileDescriptor{
		ID:          fileID,
		Name:        u.Name,
		Type:        fileType,
		SizeBytes:   size,
		StoragePath: storagePath,
		Keywords:    []string{},
		Status:      model.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	// 1. Pending-запись: до подтверждения blob файл наружу не виден
	if err := s.repo.Create(ctx, f); err != nil {
		uploadFailuresTotal.WithLabelValues("metadata_create").Inc()
		return nil, fmt.Errorf("%w: создание записи метаданных: %v", ErrInternal, err)
	}

	// 2. Запись blob
	if err := s.blobs.Put(ctx, storagePath, u.Data, size, u.ContentType); err != nil {
		uploadFailuresTotal.WithLabelValues("blob_put").Inc()
		// Компенсация: убираем pending-запись; при сбое её подберёт sweep
		if delErr := s.repo.Delete(ctx, fileID); delErr != nil {
			s.logger.Warn("Откат pending-записи не удался, запись останется до sweep",
				slog.String("file_id", fileID),
				slog.String("error", delErr.Error()),
			)
		}
		return nil, fmt.Errorf("%w: запись в blob-хранилище: %v", ErrUpstream, err)
	}

	// 3. pending → available
	f, err = s.repo.MarkAvailable(ctx, fileID)
	if err != nil {
		uploadFailuresTotal.WithLabelValues("metadata_commit").Inc()
		if delErr := s.blobs.Delete(ctx, storagePath); delErr != nil {
			s.logger.Warn("Компенсирующее удаление blob не удалось",
				slog.String("storage_path", storagePath),
				slog.String("error", delErr.Error()),
			)
		}
		if delErr := s.repo.Delete(ctx, fileID); delErr != nil && !errors.Is(delErr, repository.ErrNotFound) {
			s.logger.Warn("Откат pending-записи не удался",
				slog.String("file_id", fileID),
				slog.String("error", delErr.Error()),
			)
		}
		return nil, fmt.Errorf("%w: подтверждение записи метаданных: %v", ErrInternal, err)
	}

	filesUploadedTotal.Inc()
	s.logger.Info("Файл загружен",
		slog.String("file_id", f.ID),
		slog.String("name", f.Name),
		slog.String("type", f.Type),
		slog.Int64("size_bytes", f.SizeBytes),
	)

	// 4. Summary и keywords — best-effort, сбой не влияет на результат
	s.generateSummary(ctx, f, u.Data)

	return f, nil
}

// List возвращает страницу available-файлов (created_at DESC) и пагинацию.
func (s *FileService) List(ctx context.Context, page, pageSize int) ([]*model.FileDescriptor, model.Pagination, error) {
	if page < 1 {
		return nil, model.Pagination{}, fmt.Errorf("%w: page должен быть не меньше 1", ErrValidation)
	}
	if pageSize < 1 {
		return nil, model.Pagination{}, fmt.Errorf("%w: page_size должен быть положительным", ErrValidation)
	}

	offset := (page - 1) * pageSize

	files, err := s.repo.List(ctx, pageSize, offset)
	if err != nil {
		return nil, model.Pagination{}, fmt.Errorf("%w: получение списка файлов: %v", ErrInternal, err)
	}

	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, model.Pagination{}, fmt.Errorf("%w: подсчёт файлов: %v", ErrInternal, err)
	}

	totalPages := (total + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}

	return files, model.Pagination{
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
		TotalFiles: total,
	}, nil
}

// Get возвращает available-дескриптор по ID.
func (s *FileService) Get(ctx context.Context, fileID string) (*model.FileDescriptor, error) {
	f, err := s.repo.GetByID(ctx, fileID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: получение файла: %v", ErrInternal, err)
	}
	// Незавершённая загрузка наружу не видна
	if f.Status != model.StatusAvailable {
		return nil, ErrNotFound
	}
	return f, nil
}

// Delete удаляет файл. Удаление blob — best-effort: его сбой
// логируется и не блокирует удаление метаданных, которое и является
// критерием успеха операции.
func (s *FileService) Delete(ctx context.Context, fileID string) error {
	f, err := s.repo.GetByID(ctx, fileID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("%w: получение файла для удаления: %v", ErrInternal, err)
	}

	if err := s.blobs.Delete(ctx, f.StoragePath); err != nil {
		s.logger.Warn("Удаление blob не удалось, метаданные будут удалены",
			slog.String("file_id", fileID),
			slog.String("storage_path", f.StoragePath),
			slog.String("error", err.Error()),
		)
	}

	if err := s.repo.Delete(ctx, fileID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("%w: удаление записи файла: %v", ErrInternal, err)
	}

	if s.cache != nil {
		s.cache.Delete(fileID)
	}

	filesDeletedTotal.Inc()
	s.logger.Info("Файл удалён", slog.String("file_id", fileID))
	return nil
}

// generateSummary генерирует summary и keywords через AI-клиент
// и записывает их в метаданные. Любой сбой логируется и проглатывается.
func (s *FileService) generateSummary(ctx context.Context, f *model.FileDescriptor, data io.ReadSeeker) {
	excerpt, err := readExcerpt(data, summaryExcerptLimit)
	if err != nil || excerpt == "" {
		return
	}

	summary, keywords, err := s.ai.Summarize(ctx, f.Name, excerpt)
	if err != nil {
		s.logger.Warn("Генерация summary не удалась",
			slog.String("file_id", f.ID),
			slog.String("error", err.Error()),
		)
		return
	}

	if err := s.repo.UpdateSummary(ctx, f.ID, &summary, keywords); err != nil {
		s.logger.Warn("Запись summary не удалась",
			slog.String("file_id", f.ID),
			slog.String("error", err.Error()),
		)
		return
	}

	f.Summary = &summary
	f.Keywords = keywords
}

// readExcerpt перечитывает начало содержимого (до limit байт)
// и приводит его к корректному UTF-8.
func readExcerpt(data io.ReadSeeker, limit int64) (string, error) {
	if _, err := data.Seek(0, io.SeekStart); err != nil {
		return "", err
	}

	buf, err := io.ReadAll(io.LimitReader(data, limit))
	if err != nil {
		return "", err
	}

	return strings.ToValidUTF8(string(buf), ""), nil
}

// generateStoragePath строит ключ объекта в blob-хранилище.
// Уникальность обеспечивает UUID файла, санитизированное имя
// сохраняет узнаваемость при просмотре bucket.
func generateStoragePath(fileID, name string) string {
	return fmt.Sprintf("files/%s_%s", fileID, sanitizeFilename(name))
}

// sanitizeFilename убирает из имени разделители путей и небезопасные
// символы, оставляя буквы, цифры, точку, дефис и подчёркивание.
func sanitizeFilename(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}

package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/bigkaa/docuchat/internal/domain/model"
)

// FileRepository — интерфейс хранилища метаданных файлов (таблица files).
type FileRepository interface {
	// Create создаёт новую запись дескриптора (в статусе pending).
	Create(ctx context.Context, f *model.FileDescriptor) error
	// MarkAvailable переводит запись pending → available после подтверждения blob.
	MarkAvailable(ctx context.Context, fileID string) (*model.FileDescriptor, error)
	// GetByID возвращает дескриптор по UUID независимо от статуса.
	GetByID(ctx context.Context, fileID string) (*model.FileDescriptor, error)
	// List возвращает available-дескрипторы в порядке created_at DESC.
	List(ctx context.Context, limit, offset int) ([]*model.FileDescriptor, error)
	// Count возвращает количество available-дескрипторов.
	Count(ctx context.Context) (int, error)
	// UpdateSummary записывает summary и keywords дескриптора.
	UpdateSummary(ctx context.Context, fileID string, summary *string, keywords []string) error
	// Delete удаляет запись дескриптора.
	Delete(ctx context.Context, fileID string) error
	// ListStalePending возвращает pending-записи старше olderThan.
	ListStalePending(ctx context.Context, olderThan time.Time) ([]*model.FileDescriptor, error)
}

// fileRepo — реализация FileRepository.
type fileRepo struct {
	db DBTX
}

// NewFileRepository создаёт репозиторий метаданных файлов.
func NewFileRepository(db DBTX) FileRepository {
	return &fileRepo{db: db}
}

// fileColumns — общий список столбцов для SELECT-запросов.
const fileColumns = `id, name, type, size_bytes, storage_path, summary, keywords,
		status, created_at, updated_at`

func (r *fileRepo) Create(ctx context.Context, f *model.FileDescriptor) error {
	query := `
		INSERT INTO files (id, name, type, size_bytes, storage_path, summary,
			keywords, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.Exec(ctx, query,
		f.ID, f.Name, f.Type, f.SizeBytes, f.StoragePath, f.Summary,
		f.Keywords, f.Status, f.CreatedAt, f.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: файл с таким ID или storage_path уже зарегистрирован", ErrConflict)
		}
		return fmt.Errorf("ошибка создания записи файла: %w", err)
	}
	return nil
}

func (r *fileRepo) MarkAvailable(ctx context.Context, fileID string) (*model.FileDescriptor, error) {
	query := fmt.Sprintf(`
		UPDATE files
		SET status = 'available', updated_at = now()
		WHERE id = $1 AND status = 'pending'
		RETURNING %s`, fileColumns)

	f := &model.FileDescriptor{}
	err := r.db.QueryRow(ctx, query, fileID).Scan(
		&f.ID, &f.Name, &f.Type, &f.SizeBytes, &f.StoragePath, &f.Summary,
		&f.Keywords, &f.Status, &f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка подтверждения файла: %w", err)
	}
	return f, nil
}

func (r *fileRepo) GetByID(ctx context.Context, fileID string) (*model.FileDescriptor, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM files
		WHERE id = $1`, fileColumns)

	f := &model.FileDescriptor{}
	err := r.db.QueryRow(ctx, query, fileID).Scan(
		&f.ID, &f.Name, &f.Type, &f.SizeBytes, &f.StoragePath, &f.Summary,
		&f.Keywords, &f.Status, &f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения файла: %w", err)
	}
	return f, nil
}

func (r *fileRepo) List(ctx context.Context, limit, offset int) ([]*model.FileDescriptor, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM files
		WHERE status = 'available'
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`, fileColumns)

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка файлов: %w", err)
	}
	defer rows.Close()

	var result []*model.FileDescriptor
	for rows.Next() {
		f := &model.FileDescriptor{}
		if err := rows.Scan(
			&f.ID, &f.Name, &f.Type, &f.SizeBytes, &f.StoragePath, &f.Summary,
			&f.Keywords, &f.Status, &f.CreatedAt, &f.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования файла: %w", err)
		}
		result = append(result, f)
	}
	return result, rows.Err()
}

func (r *fileRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM files WHERE status = 'available'`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("ошибка подсчёта файлов: %w", err)
	}
	return count, nil
}

func (r *fileRepo) UpdateSummary(ctx context.Context, fileID string, summary *string, keywords []string) error {
	query := `
		UPDATE files
		SET summary = $2, keywords = $3, updated_at = now()
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, fileID, summary, keywords)
	if err != nil {
		return fmt.Errorf("ошибка обновления summary файла: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *fileRepo) Delete(ctx context.Context, fileID string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM files WHERE id = $1`, fileID)
	if err != nil {
		return fmt.Errorf("ошибка удаления записи файла: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *fileRepo) ListStalePending(ctx context.Context, olderThan time.Time) ([]*model.FileDescriptor, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM files
		WHERE status = 'pending' AND created_at < $1
		ORDER BY created_at`, fileColumns)

	rows, err := r.db.Query(ctx, query, olderThan)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения осиротевших pending-записей: %w", err)
	}
	defer rows.Close()

	var result []*model.FileDescriptor
	for rows.Next() {
		f := &model.FileDescriptor{}
		if err := rows.Scan(
			&f.ID, &f.Name, &f.Type, &f.SizeBytes, &f.StoragePath, &f.Summary,
			&f.Keywords, &f.Status, &f.CreatedAt, &f.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования pending-записи: %w", err)
		}
		result = append(result, f)
	}
	return result, rows.Err()
}

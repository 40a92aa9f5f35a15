package database

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/bigkaa/docuchat/internal/config"
)

// setupTestDB запускает PostgreSQL в Docker-контейнере через testcontainers.
// Возвращает конфиг; очистка через t.Cleanup.
func setupTestDB(t *testing.T) *config.Config {
	t.Helper()

	if os.Getenv("TEST_INTEGRATION") == "" {
		t.Skip("Пропуск интеграционного теста: TEST_INTEGRATION не установлена")
	}

	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"docker.io/postgres:17-alpine",
		postgres.WithDatabase("docuchat_test"),
		postgres.WithUsername("docuchat"),
		postgres.WithPassword("test-password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("Не удалось запустить PostgreSQL контейнер: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Ошибка остановки контейнера: %v", err)
		}
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Не удалось получить host контейнера: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Не удалось получить port контейнера: %v", err)
	}

	// Создаём конфиг с минимальными значениями
	os.Setenv("DC_DB_HOST", host)
	os.Setenv("DC_DB_PORT", port.Port())
	os.Setenv("DC_DB_NAME", "docuchat_test")
	os.Setenv("DC_DB_USER", "docuchat")
	os.Setenv("DC_DB_PASSWORD", "test-password")
	os.Setenv("DC_DB_SSL_MODE", "disable")
	os.Setenv("DC_MINIO_ENDPOINT", "localhost:9000")
	os.Setenv("DC_MINIO_ACCESS_KEY", "test")
	os.Setenv("DC_MINIO_SECRET_KEY", "test")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	return cfg
}

// TestConnect проверяет подключение к PostgreSQL через pgxpool.
func TestConnect(t *testing.T) {
	cfg := setupTestDB(t)
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	pool, err := Connect(ctx, cfg, logger)
	if err != nil {
		t.Fatalf("Connect() вернул ошибку: %v", err)
	}
	defer pool.Close()

	// Проверяем ping
	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("pool.Ping() вернул ошибку: %v", err)
	}
}

// TestMigrate проверяет применение миграций.
func TestMigrate(t *testing.T) {
	cfg := setupTestDB(t)
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	// Применяем миграции
	if err := Migrate(cfg, logger); err != nil {
		t.Fatalf("Migrate() вернул ошибку: %v", err)
	}

	// Повторное применение — должно быть без ошибки (ErrNoChange)
	if err := Migrate(cfg, logger); err != nil {
		t.Fatalf("Повторный Migrate() вернул ошибку: %v", err)
	}

	// Проверяем, что таблица создана
	ctx := context.Background()
	pool, err := Connect(ctx, cfg, logger)
	if err != nil {
		t.Fatalf("Connect() вернул ошибку: %v", err)
	}
	defer pool.Close()

	var exists bool
	err = pool.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT FROM information_schema.tables
			WHERE table_schema = 'public' AND table_name = 'files'
		)`).Scan(&exists)
	if err != nil {
		t.Fatalf("Ошибка проверки таблицы files: %v", err)
	}
	if !exists {
		t.Error("Таблица files не создана")
	}

	// Проверяем CHECK-ограничение на статус
	_, err = pool.Exec(ctx,
		`INSERT INTO files (id, name, type, size_bytes, storage_path, status, created_at, updated_at)
		 VALUES (gen_random_uuid(), 'x.pdf', 'pdf', 1, 'files/x', 'bogus', now(), now())`)
	if err == nil {
		t.Error("Вставка записи с недопустимым статусом прошла без ошибки")
	}
}

// TestReadinessChecker проверяет ReadinessChecker.
func TestReadinessChecker(t *testing.T) {
	cfg := setupTestDB(t)
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	pool, err := Connect(ctx, cfg, logger)
	if err != nil {
		t.Fatalf("Connect() вернул ошибку: %v", err)
	}
	defer pool.Close()

	checker := NewReadinessChecker(pool)

	// Проверяем готовность — должен вернуть "ok"
	status, msg := checker.CheckReady()
	if status != "ok" {
		t.Errorf("CheckReady() status = %q, message = %q; ожидали status = %q",
			status, msg, "ok")
	}
}

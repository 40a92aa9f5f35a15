// Точка входа Docuchat — backend загрузки документов и чата по ним.
// Загружает конфигурацию, подключается к PostgreSQL, применяет миграции,
// инициализирует blob-хранилище и AI-клиент, создаёт сервисный слой
// и API handlers, запускает фоновый sweep и HTTP-сервер
// с graceful shutdown.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/bigkaa/docuchat/internal/aiclient"
	"github.com/bigkaa/docuchat/internal/api/handlers"
	"github.com/bigkaa/docuchat/internal/blobstore"
	"github.com/bigkaa/docuchat/internal/config"
	"github.com/bigkaa/docuchat/internal/database"
	"github.com/bigkaa/docuchat/internal/repository"
	"github.com/bigkaa/docuchat/internal/server"
	"github.com/bigkaa/docuchat/internal/service"
)

func main() {
	// 1. Загрузка конфигурации из переменных окружения
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Ошибка загрузки конфигурации", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 2. Настройка логирования
	logger := config.SetupLogger(cfg)
	logger.Info("Docuchat запускается",
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
	)

	// 3. Применение миграций БД
	logger.Info("Применение миграций БД...")
	if err := database.Migrate(cfg, logger); err != nil {
		logger.Error("Ошибка миграций БД", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 4. Подключение к PostgreSQL (pgxpool)
	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg, logger)
	if err != nil {
		logger.Error("Ошибка подключения к PostgreSQL", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	// 5. Blob-хранилище (MinIO)
	blobs, err := blobstore.NewMinioStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("Ошибка подключения к blob-хранилищу", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("Blob-хранилище подключено",
		slog.String("endpoint", cfg.MinioEndpoint),
		slog.String("bucket", cfg.MinioBucket),
	)

	// 6. AI-клиент
	ai, err := aiclient.New(cfg, logger)
	if err != nil {
		logger.Error("Ошибка создания AI-клиента", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("AI-клиент создан",
		slog.String("provider", cfg.AIProvider),
		slog.String("model", cfg.AIModel),
	)

	// 7. Repositories
	fileRepo := repository.NewFileRepository(pool)

	// 8. Services
	validator := service.NewValidator(cfg.MaxFileSize)
	cache := service.NewCacheService(cfg.CacheSize, cfg.CacheTTL)
	fileSvc := service.NewFileService(fileRepo, blobs, ai, validator, cache, logger)
	chatSvc := service.NewChatService(fileSvc, ai, cache, logger)

	// 9. Фоновая сверка pending-записей
	sweep := service.NewSweepService(fileRepo, blobs, cfg.SweepInterval, cfg.PendingTTL, logger)
	sweep.Start(ctx)
	defer sweep.Stop()

	// 10. API handlers
	health := handlers.NewHealthHandler(database.NewReadinessChecker(pool), blobs)
	apiHandler := handlers.NewAPIHandler(health, fileSvc, chatSvc, cfg.DefaultPageSize, cfg.MaxPageSize, logger)

	// 11. HTTP-сервер
	srv := server.New(cfg, logger, apiHandler)
	if err := srv.Run(); err != nil {
		logger.Error("Ошибка HTTP-сервера", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

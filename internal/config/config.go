// Пакет config — загрузка и валидация конфигурации Docuchat
// из переменных окружения.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Версия приложения, задаётся при сборке через -ldflags.
var Version = "dev"

// Config содержит все параметры конфигурации Docuchat.
type Config struct {
	// --- Сервер ---

	// Порт HTTP-сервера
	Port int
	// Уровень логирования (debug, info, warn, error)
	LogLevel slog.Level
	// Формат логов (json, text)
	LogFormat string

	// --- PostgreSQL ---

	// Хост PostgreSQL
	DBHost string
	// Порт PostgreSQL
	DBPort int
	// Имя базы данных
	DBName string
	// Имя пользователя PostgreSQL
	DBUser string
	// Пароль пользователя PostgreSQL
	DBPassword string
	// Режим SSL: disable, require, verify-ca, verify-full
	DBSSLMode string

	// --- Blob-хранилище (MinIO / S3-совместимое) ---

	// Endpoint MinIO (host:port)
	MinioEndpoint string
	// Access key MinIO
	MinioAccessKey string
	// Secret key MinIO
	MinioSecretKey string
	// Имя bucket для файлов
	MinioBucket string
	// Использовать TLS при подключении к MinIO
	MinioUseSSL bool

	// --- AI ---

	// Провайдер AI completion: ollama или openai
	AIProvider string
	// Имя модели
	AIModel string
	// Base URL провайдера (для ollama; пусто — значение по умолчанию клиента)
	AIBaseURL string
	// API key провайдера (для openai)
	AIAPIKey string

	// --- Лимиты и пагинация ---

	// Максимальный размер загружаемого файла в байтах
	MaxFileSize int64
	// Размер страницы списка файлов по умолчанию
	DefaultPageSize int
	// Максимально допустимый размер страницы
	MaxPageSize int

	// --- Кэш дескрипторов ---

	// Максимальное количество записей в LRU-кэше
	CacheSize int
	// TTL записи кэша
	CacheTTL time.Duration

	// --- Reconciliation sweep ---

	// Интервал фоновой сверки pending-записей
	SweepInterval time.Duration
	// Возраст pending-записи, после которого она считается осиротевшей
	PendingTTL time.Duration

	// --- Graceful shutdown ---

	// Таймаут graceful shutdown HTTP-сервера
	ShutdownTimeout time.Duration
}

// Load загружает конфигурацию из переменных окружения, валидирует
// обязательные поля и возвращает Config или ошибку.
func Load() (*Config, error) {
	cfg := &Config{}
	var err error

	// --- Сервер ---

	// DC_PORT — порт HTTP-сервера (по умолчанию 8080)
	cfg.Port, err = getEnvInt("DC_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("DC_PORT: %w", err)
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("DC_PORT: значение %d вне допустимого диапазона 1-65535", cfg.Port)
	}

	// DC_LOG_LEVEL — уровень логирования (по умолчанию info)
	cfg.LogLevel, err = parseLogLevel(getEnvDefault("DC_LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("DC_LOG_LEVEL: %w", err)
	}

	// DC_LOG_FORMAT — формат логов (по умолчанию json)
	cfg.LogFormat = getEnvDefault("DC_LOG_FORMAT", "json")
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("DC_LOG_FORMAT: недопустимое значение %q, допустимые: json, text", cfg.LogFormat)
	}

	// --- PostgreSQL ---

	// DC_DB_HOST — обязательный
	cfg.DBHost, err = getEnvRequired("DC_DB_HOST")
	if err != nil {
		return nil, err
	}

	// DC_DB_PORT — порт PostgreSQL (по умолчанию 5432)
	cfg.DBPort, err = getEnvInt("DC_DB_PORT", 5432)
	if err != nil {
		return nil, fmt.Errorf("DC_DB_PORT: %w", err)
	}

	// DC_DB_NAME — обязательный
	cfg.DBName, err = getEnvRequired("DC_DB_NAME")
	if err != nil {
		return nil, err
	}

	// DC_DB_USER — обязательный
	cfg.DBUser, err = getEnvRequired("DC_DB_USER")
	if err != nil {
		return nil, err
	}

	// DC_DB_PASSWORD — обязательный
	cfg.DBPassword, err = getEnvRequired("DC_DB_PASSWORD")
	if err != nil {
		return nil, err
	}

	// DC_DB_SSL_MODE — режим SSL (по умолчанию disable)
	cfg.DBSSLMode = getEnvDefault("DC_DB_SSL_MODE", "disable")
	validSSLModes := map[string]bool{
		"disable": true, "require": true, "verify-ca": true, "verify-full": true,
	}
	if !validSSLModes[cfg.DBSSLMode] {
		return nil, fmt.Errorf("DC_DB_SSL_MODE: недопустимое значение %q, допустимые: disable, require, verify-ca, verify-full", cfg.DBSSLMode)
	}

	// --- MinIO ---

	// DC_MINIO_ENDPOINT — обязательный (host:port)
	cfg.MinioEndpoint, err = getEnvRequired("DC_MINIO_ENDPOINT")
	if err != nil {
		return nil, err
	}
	cfg.MinioEndpoint = strings.TrimRight(cfg.MinioEndpoint, "/")

	// DC_MINIO_ACCESS_KEY — обязательный
	cfg.MinioAccessKey, err = getEnvRequired("DC_MINIO_ACCESS_KEY")
	if err != nil {
		return nil, err
	}

	// DC_MINIO_SECRET_KEY — обязательный
	cfg.MinioSecretKey, err = getEnvRequired("DC_MINIO_SECRET_KEY")
	if err != nil {
		return nil, err
	}

	// DC_MINIO_BUCKET — имя bucket (по умолчанию docuchat)
	cfg.MinioBucket = getEnvDefault("DC_MINIO_BUCKET", "docuchat")

	// DC_MINIO_USE_SSL — TLS при подключении (по умолчанию false)
	cfg.MinioUseSSL, err = getEnvBool("DC_MINIO_USE_SSL", false)
	if err != nil {
		return nil, fmt.Errorf("DC_MINIO_USE_SSL: %w", err)
	}

	// --- AI ---

	// DC_AI_PROVIDER — провайдер completion (по умолчанию ollama)
	cfg.AIProvider = getEnvDefault("DC_AI_PROVIDER", "ollama")
	if cfg.AIProvider != "ollama" && cfg.AIProvider != "openai" {
		return nil, fmt.Errorf("DC_AI_PROVIDER: недопустимое значение %q, допустимые: ollama, openai", cfg.AIProvider)
	}

	// DC_AI_MODEL — имя модели (по умолчанию llama3)
	cfg.AIModel = getEnvDefault("DC_AI_MODEL", "llama3")

	// DC_AI_BASE_URL — base URL провайдера (опционально)
	cfg.AIBaseURL = strings.TrimRight(getEnvDefault("DC_AI_BASE_URL", ""), "/")

	// DC_AI_API_KEY — обязательный для openai
	cfg.AIAPIKey = getEnvDefault("DC_AI_API_KEY", "")
	if cfg.AIProvider == "openai" && cfg.AIAPIKey == "" {
		return nil, fmt.Errorf("DC_AI_API_KEY: обязателен при DC_AI_PROVIDER=openai")
	}

	// --- Лимиты и пагинация ---

	// DC_MAX_FILE_SIZE — максимальный размер файла (по умолчанию 100 MiB)
	cfg.MaxFileSize, err = getEnvInt64("DC_MAX_FILE_SIZE", 100*1024*1024)
	if err != nil {
		return nil, fmt.Errorf("DC_MAX_FILE_SIZE: %w", err)
	}
	if cfg.MaxFileSize < 1 {
		return nil, fmt.Errorf("DC_MAX_FILE_SIZE: значение должно быть положительным")
	}

	// DC_DEFAULT_PAGE_SIZE — размер страницы по умолчанию (по умолчанию 12)
	cfg.DefaultPageSize, err = getEnvInt("DC_DEFAULT_PAGE_SIZE", 12)
	if err != nil {
		return nil, fmt.Errorf("DC_DEFAULT_PAGE_SIZE: %w", err)
	}

	// DC_MAX_PAGE_SIZE — максимальный размер страницы (по умолчанию 100)
	cfg.MaxPageSize, err = getEnvInt("DC_MAX_PAGE_SIZE", 100)
	if err != nil {
		return nil, fmt.Errorf("DC_MAX_PAGE_SIZE: %w", err)
	}
	if cfg.DefaultPageSize < 1 || cfg.DefaultPageSize > cfg.MaxPageSize {
		return nil, fmt.Errorf("DC_DEFAULT_PAGE_SIZE: значение %d вне допустимого диапазона 1-%d", cfg.DefaultPageSize, cfg.MaxPageSize)
	}

	// --- Кэш ---

	// DC_CACHE_SIZE — размер LRU-кэша дескрипторов (по умолчанию 1000)
	cfg.CacheSize, err = getEnvInt("DC_CACHE_SIZE", 1000)
	if err != nil {
		return nil, fmt.Errorf("DC_CACHE_SIZE: %w", err)
	}

	// DC_CACHE_TTL — TTL записи кэша (по умолчанию 5m)
	cfg.CacheTTL, err = getEnvDuration("DC_CACHE_TTL", 5*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("DC_CACHE_TTL: %w", err)
	}

	// --- Reconciliation sweep ---

	// DC_SWEEP_INTERVAL — интервал сверки (по умолчанию 10m)
	cfg.SweepInterval, err = getEnvDuration("DC_SWEEP_INTERVAL", 10*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("DC_SWEEP_INTERVAL: %w", err)
	}

	// DC_PENDING_TTL — возраст осиротевшей pending-записи (по умолчанию 1h)
	cfg.PendingTTL, err = getEnvDuration("DC_PENDING_TTL", time.Hour)
	if err != nil {
		return nil, fmt.Errorf("DC_PENDING_TTL: %w", err)
	}

	// --- Graceful shutdown ---

	// DC_SHUTDOWN_TIMEOUT — таймаут graceful shutdown (по умолчанию 5s)
	cfg.ShutdownTimeout, err = getEnvDuration("DC_SHUTDOWN_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("DC_SHUTDOWN_TIMEOUT: %w", err)
	}

	return cfg, nil
}

// DatabaseDSN возвращает строку подключения к PostgreSQL.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBName, c.DBUser, c.DBPassword, c.DBSSLMode,
	)
}

// SetupLogger настраивает глобальный slog-логгер на основе конфигурации.
func SetupLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// --- Вспомогательные функции ---

// getEnvRequired возвращает значение переменной окружения или ошибку, если она не задана.
func getEnvRequired(key string) (string, error) {
	val := os.Getenv(key)
	if val == "" {
		return "", fmt.Errorf("%s: обязательная переменная окружения не задана", key)
	}
	return val, nil
}

// getEnvDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// getEnvInt возвращает целочисленное значение переменной окружения или значение по умолчанию.
func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

// getEnvInt64 возвращает int64-значение переменной окружения или значение по умолчанию.
func getEnvInt64(key string, defaultVal int64) (int64, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

// getEnvBool возвращает булево значение переменной окружения или значение по умолчанию.
func getEnvBool(key string, defaultVal bool) (bool, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("некорректное булево значение: %q", val)
	}
	return b, nil
}

// getEnvDuration возвращает time.Duration из переменной окружения или значение по умолчанию.
func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("некорректная длительность: %q", val)
	}
	return d, nil
}

// parseLogLevel преобразует строку в slog.Level.
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("недопустимый уровень логирования %q, допустимые: debug, info, warn, error", level)
	}
}

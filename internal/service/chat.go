// chat.go — сервис чата по документу.
// Поток: поиск дескриптора → сборка конфигурации контекста →
// вызов AI-клиента → нормализация ошибок в таксономию сервисного слоя.
// Сервис stateless: историю диалога держит вызывающий.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/docuchat/internal/aiclient"
	"github.com/bigkaa/docuchat/internal/domain/model"
)

// Prometheus-метрики чата.
var (
	chatRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dc_chat_requests_total",
		Help: "Общее количество чат-запросов по результату.",
	}, []string{"outcome"})
)

// FileGetter — поиск дескрипторов, который нужен чату.
// Реализуется FileService: чат зависит только от lookup,
// не от механики хранения.
type FileGetter interface {
	Get(ctx context.Context, fileID string) (*model.FileDescriptor, error)
}

// ChatService — сервис диалога с AI по выбранному документу.
type ChatService struct {
	files  FileGetter
	ai     aiclient.Client
	cache  *CacheService
	logger *slog.Logger
}

// NewChatService создаёт сервис чата.
// cache может быть nil — тогда каждый запрос идёт в metadata-хранилище.
func NewChatService(files FileGetter, ai aiclient.Client, cache *CacheService, logger *slog.Logger) *ChatService {
	return &ChatService{
		files:  files,
		ai:     ai,
		cache:  cache,
		logger: logger.With(slog.String("component", "chat_service")),
	}
}

// Chat возвращает ответ модели на message в контексте файла fileID.
// Для неизвестного файла AI-клиент не вызывается.
func (s *ChatService) Chat(ctx context.Context, fileID, message string, history []model.ChatExchange) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", fmt.Errorf("%w: сообщение не задано", ErrValidation)
	}

	f, err := s.lookup(ctx, fileID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			chatRequestsTotal.WithLabelValues("not_found").Inc()
			return "", err
		}
		chatRequestsTotal.WithLabelValues("error").Inc()
		return "", err
	}

	cfg, err := buildRetrievalConfig(f)
	if err != nil {
		chatRequestsTotal.WithLabelValues("error").Inc()
		return "", err
	}

	answer, err := s.ai.Complete(ctx, message, history, cfg)
	if err != nil {
		chatRequestsTotal.WithLabelValues("upstream_error").Inc()
		s.logger.Error("AI-клиент вернул ошибку",
			slog.String("file_id", fileID),
			slog.String("error", err.Error()),
		)
		return "", fmt.Errorf("%w: AI-клиент: %v", ErrUpstream, err)
	}

	// Пустой ответ — сбой сервиса, а не валидный результат
	if strings.TrimSpace(answer) == "" {
		chatRequestsTotal.WithLabelValues("empty_answer").Inc()
		return "", fmt.Errorf("%w: модель вернула пустой ответ", ErrInternal)
	}

	chatRequestsTotal.WithLabelValues("ok").Inc()
	return answer, nil
}

// lookup возвращает дескриптор из кэша или через FileGetter.
func (s *ChatService) lookup(ctx context.Context, fileID string) (*model.FileDescriptor, error) {
	if s.cache != nil {
		if f, ok := s.cache.Get(fileID); ok {
			return f, nil
		}
	}

	f, err := s.files.Get(ctx, fileID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Set(fileID, f)
	}
	return f, nil
}

// buildRetrievalConfig собирает конфигурацию контекста из дескриптора.
// Повреждённый дескриптор (пустые обязательные поля) — внутренняя
// ошибка сервиса, а не ошибка хранилища.
func buildRetrievalConfig(f *model.FileDescriptor) (aiclient.RetrievalConfig, error) {
	if f.StoragePath == "" || f.Name == "" || f.Type == "" {
		return aiclient.RetrievalConfig{}, fmt.Errorf("%w: повреждённый дескриптор файла %s", ErrInternal, f.ID)
	}

	return aiclient.RetrievalConfig{
		FileID:      f.ID,
		Filename:    f.Name,
		FileType:    f.Type,
		StoragePath: f.StoragePath,
		Summary:     f.Summary,
		Keywords:    f.Keywords,
	}, nil
}

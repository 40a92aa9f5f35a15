// handler.go — основной обработчик HTTP API.
// Объединяет доменные обработчики и делегирует запросы в сервисный слой.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	apierrors "github.com/bigkaa/docuchat/internal/api/errors"
	"github.com/bigkaa/docuchat/internal/service"
)

// APIHandler — основной обработчик API.
type APIHandler struct {
	health *HealthHandler
	files  *service.FileService
	chat   *service.ChatService
	logger *slog.Logger

	defaultPageSize int
	maxPageSize     int
}

// NewAPIHandler создаёт основной обработчик API.
func NewAPIHandler(
	health *HealthHandler,
	files *service.FileService,
	chat *service.ChatService,
	defaultPageSize, maxPageSize int,
	logger *slog.Logger,
) *APIHandler {
	return &APIHandler{
		health:          health,
		files:           files,
		chat:            chat,
		defaultPageSize: defaultPageSize,
		maxPageSize:     maxPageSize,
		logger:          logger.With(slog.String("component", "api_handler")),
	}
}

// HealthLive — liveness probe (делегируется в HealthHandler).
func (h *APIHandler) HealthLive(w http.ResponseWriter, r *http.Request) {
	h.health.HealthLive(w, r)
}

// HealthReady — readiness probe (делегируется в HealthHandler).
func (h *APIHandler) HealthReady(w http.ResponseWriter, r *http.Request) {
	h.health.HealthReady(w, r)
}

// GetMetrics — Prometheus метрики (делегируется в HealthHandler).
func (h *APIHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	h.health.GetMetrics(w, r)
}

// --- Вспомогательные функции ---

// writeJSON записывает JSON-ответ с указанным статусом.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeServiceError транслирует ошибку сервисного слоя в HTTP-ответ.
// Внутренние ошибки логируются; клиенту уходит только код и сообщение
// таксономии.
func (h *APIHandler) writeServiceError(w http.ResponseWriter, err error, logMsg string) {
	switch {
	case errors.Is(err, service.ErrValidation):
		apierrors.ValidationError(w, err.Error())
	case errors.Is(err, service.ErrNotFound):
		apierrors.NotFound(w, err.Error())
	case errors.Is(err, service.ErrUpstream):
		h.logger.Error(logMsg, slog.String("error", err.Error()))
		apierrors.UpstreamError(w, "Внешний сервис недоступен")
	default:
		h.logger.Error(logMsg, slog.String("error", err.Error()))
		apierrors.InternalError(w, "Внутренняя ошибка сервиса")
	}
}

// parsePagination извлекает и нормализует параметры пагинации запроса.
func (h *APIHandler) parsePagination(r *http.Request) (page, pageSize int) {
	page = 1
	pageSize = h.defaultPageSize

	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 {
			page = n
		}
	}
	if v := r.URL.Query().Get("page_size"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 {
			pageSize = n
		}
	}
	if pageSize > h.maxPageSize {
		pageSize = h.maxPageSize
	}

	return page, pageSize
}

package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/health/live", "/health/live"},
		{"/health/ready", "/health/ready"},
		{"/metrics", "/metrics"},
		{"/api/v1/files", "/api/v1/files"},
		{"/api/v1/files/6f1e9f3a-8f0f-4a1c-9c3e-2b7d1a4e5c6d", "/api/v1/files/{id}"},
		{"/api/v1/files/6f1e9f3a-8f0f-4a1c-9c3e-2b7d1a4e5c6d/chat", "/api/v1/files/{id}/chat"},
		// Неизвестные пути не нормализуются
		{"/favicon.ico", "/favicon.ico"},
	}

	for _, tt := range tests {
		if got := normalizePath(tt.path); got != tt.want {
			t.Errorf("normalizePath(%q) = %q, хотели %q", tt.path, got, tt.want)
		}
	}
}

func TestStatusLevel(t *testing.T) {
	tests := []struct {
		code int
		want slog.Level
	}{
		{200, slog.LevelInfo},
		{204, slog.LevelInfo},
		{301, slog.LevelInfo},
		{400, slog.LevelWarn},
		{404, slog.LevelWarn},
		{500, slog.LevelError},
		{502, slog.LevelError},
	}

	for _, tt := range tests {
		if got := statusLevel(tt.code); got != tt.want {
			t.Errorf("statusLevel(%d) = %v, хотели %v", tt.code, got, tt.want)
		}
	}
}

func TestMetricsMiddleware_PassesThrough(t *testing.T) {
	handler := MetricsMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte("created"))
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/files", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Errorf("статус = %d, хотели 201", rec.Code)
	}
	if rec.Body.String() != "created" {
		t.Errorf("тело = %q", rec.Body.String())
	}
}

func TestRequestLogger_CapturesStatus(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	handler := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/files/missing", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("статус = %d, хотели 404", rec.Code)
	}
}

func TestRequestLogger_DefaultStatus(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	// Обработчик без явного WriteHeader: статус по умолчанию 200
	handler := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("статус = %d, хотели 200", rec.Code)
	}
}

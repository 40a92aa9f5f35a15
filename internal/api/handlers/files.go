// files.go — обработчики /api/v1/files endpoints.
// Загрузка, список с пагинацией, получение, удаление.
package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/bigkaa/docuchat/internal/api/errors"
	"github.com/bigkaa/docuchat/internal/domain/model"
	"github.com/bigkaa/docuchat/internal/service"
)

// multipartMemoryLimit — порог, после которого multipart-содержимое
// уходит во временный файл на диске.
const multipartMemoryLimit = 32 << 20

// fileResponse — представление дескриптора в API.
// storage_path наружу не отдаётся.
type fileResponse struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Type      string   `json:"type"`
	SizeBytes int64    `json:"size_bytes"`
	Summary   *string  `json:"summary"`
	Keywords  []string `json:"keywords"`
	CreatedAt string   `json:"created_at"`
	UpdatedAt string   `json:"updated_at"`
}

// paginationResponse — состояние пагинации в API.
type paginationResponse struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalPages int `json:"total_pages"`
	TotalFiles int `json:"total_files"`
}

// fileListResponse — ответ GET /api/v1/files.
type fileListResponse struct {
	Files      []fileResponse     `json:"files"`
	Pagination paginationResponse `json:"pagination"`
}

// mapFileDescriptor преобразует доменный дескриптор в API-представление.
func mapFileDescriptor(f *model.FileDescriptor) fileResponse {
	keywords := f.Keywords
	if keywords == nil {
		keywords = []string{}
	}
	return fileResponse{
		ID:        f.ID,
		Name:      f.Name,
		Type:      f.Type,
		SizeBytes: f.SizeBytes,
		Summary:   f.Summary,
		Keywords:  keywords,
		CreatedAt: f.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: f.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// UploadFile — POST /api/v1/files.
// Принимает multipart/form-data с полем file.
func (h *APIHandler) UploadFile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
		apierrors.ValidationError(w, "Некорректный multipart-запрос: "+err.Error())
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		apierrors.ValidationError(w, "Поле file обязательно")
		return
	}
	defer file.Close()

	f, err := h.files.Upload(r.Context(), service.Upload{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        file,
	})
	if err != nil {
		h.writeServiceError(w, err, "Ошибка загрузки файла")
		return
	}

	writeJSON(w, http.StatusCreated, mapFileDescriptor(f))
}

// ListFiles — GET /api/v1/files.
// Возвращает страницу файлов (created_at DESC) и состояние пагинации.
func (h *APIHandler) ListFiles(w http.ResponseWriter, r *http.Request) {
	page, pageSize := h.parsePagination(r)

	files, pagination, err := h.files.List(r.Context(), page, pageSize)
	if err != nil {
		h.writeServiceError(w, err, "Ошибка получения списка файлов")
		return
	}

	resp := fileListResponse{
		Files: make([]fileResponse, 0, len(files)),
		Pagination: paginationResponse{
			Page:       pagination.Page,
			PageSize:   pagination.PageSize,
			TotalPages: pagination.TotalPages,
			TotalFiles: pagination.TotalFiles,
		},
	}
	for _, f := range files {
		resp.Files = append(resp.Files, mapFileDescriptor(f))
	}

	writeJSON(w, http.StatusOK, resp)
}

// GetFile — GET /api/v1/files/{id}.
func (h *APIHandler) GetFile(w http.ResponseWriter, r *http.Request) {
	fileID := chi.URLParam(r, "id")

	f, err := h.files.Get(r.Context(), fileID)
	if err != nil {
		h.writeServiceError(w, err, "Ошибка получения файла")
		return
	}

	writeJSON(w, http.StatusOK, mapFileDescriptor(f))
}

// DeleteFile — DELETE /api/v1/files/{id}.
// 204 при успехе; успех определяется удалением метаданных.
func (h *APIHandler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	fileID := chi.URLParam(r, "id")

	if err := h.files.Delete(r.Context(), fileID); err != nil {
		h.writeServiceError(w, err, "Ошибка удаления файла")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

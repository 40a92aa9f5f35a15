// chat.go — обработчик POST /api/v1/files/{id}/chat.
package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/bigkaa/docuchat/internal/api/errors"
	"github.com/bigkaa/docuchat/internal/domain/model"
)

// chatRequest — тело запроса чата.
// История диалога хранится на стороне клиента и передаётся целиком.
type chatRequest struct {
	Message string               `json:"message"`
	History []model.ChatExchange `json:"history,omitempty"`
}

// chatResponse — ответ чата.
type chatResponse struct {
	Response string `json:"response"`
}

// ChatWithFile — POST /api/v1/files/{id}/chat.
// Возвращает ответ AI на вопрос по содержимому файла.
func (h *APIHandler) ChatWithFile(w http.ResponseWriter, r *http.Request) {
	fileID := chi.URLParam(r, "id")

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.ValidationError(w, "Некорректный JSON: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		apierrors.ValidationError(w, "Поле message обязательно")
		return
	}
	for _, ex := range req.History {
		if ex.Role != model.RoleUser && ex.Role != model.RoleAssistant {
			apierrors.ValidationError(w, "Роль в history должна быть user или assistant")
			return
		}
	}

	answer, err := h.chat.Chat(r.Context(), fileID, req.Message, req.History)
	if err != nil {
		h.writeServiceError(w, err, "Ошибка чата")
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{Response: answer})
}

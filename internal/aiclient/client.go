// Пакет aiclient — клиент внешнего AI completion-сервиса.
// Реализация поверх langchaingo; провайдер (ollama, openai)
// выбирается конфигурацией.
package aiclient

import (
	"context"

	"github.com/bigkaa/docuchat/internal/domain/model"
)

// RetrievalConfig — конфигурация контекста поиска для AI-клиента.
// Описывает документ, в рамках которого клиент должен отвечать.
// Собирается сервисным слоем из дескриптора и передаётся как есть:
// способ использования определяет сам клиент.
type RetrievalConfig struct {
	// FileID — UUID документа
	FileID string
	// Filename — оригинальное имя документа
	Filename string
	// FileType — каноническое расширение документа
	FileType string
	// StoragePath — ключ документа в blob-хранилище
	StoragePath string
	// Summary — краткое описание содержимого (если сгенерировано)
	Summary *string
	// Keywords — ключевые слова документа
	Keywords []string
}

// Client — интерфейс AI completion-сервиса.
type Client interface {
	// Complete возвращает ответ модели на message в контексте документа,
	// заданного cfg. history — предшествующие реплики диалога
	// (хранятся на стороне вызывающего).
	Complete(ctx context.Context, message string, history []model.ChatExchange, cfg RetrievalConfig) (string, error)
	// Summarize генерирует краткое описание и ключевые слова
	// по фрагменту содержимого документа.
	Summarize(ctx context.Context, filename, excerpt string) (string, []string, error)
}

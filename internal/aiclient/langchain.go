package aiclient

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/bigkaa/docuchat/internal/config"
	"github.com/bigkaa/docuchat/internal/domain/model"
)

// LangchainClient — реализация Client поверх langchaingo.
type LangchainClient struct {
	llm    llms.Model
	logger *slog.Logger
}

// New создаёт AI-клиент для провайдера из конфигурации.
func New(cfg *config.Config, logger *slog.Logger) (*LangchainClient, error) {
	var llm llms.Model
	var err error

	switch cfg.AIProvider {
	case "ollama":
		opts := []ollama.Option{ollama.WithModel(cfg.AIModel)}
		if cfg.AIBaseURL != "" {
			opts = append(opts, ollama.WithServerURL(cfg.AIBaseURL))
		}
		llm, err = ollama.New(opts...)
	case "openai":
		opts := []openai.Option{
			openai.WithModel(cfg.AIModel),
			openai.WithToken(cfg.AIAPIKey),
		}
		if cfg.AIBaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.AIBaseURL))
		}
		llm, err = openai.New(opts...)
	default:
		return nil, fmt.Errorf("неизвестный AI-провайдер: %q", cfg.AIProvider)
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка создания AI-клиента (%s): %w", cfg.AIProvider, err)
	}

	return &LangchainClient{
		llm:    llm,
		logger: logger.With(slog.String("component", "ai_client")),
	}, nil
}

// Complete отправляет message модели вместе с историей диалога
// и контекстом документа из cfg.
// Ответ без choices возвращается как пустая строка без ошибки:
// это вырожденный ответ модели, а не сбой соединения, и его
// интерпретация остаётся за вызывающим.
func (c *LangchainClient) Complete(ctx context.Context, message string, history []model.ChatExchange, cfg RetrievalConfig) (string, error) {
	content := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, buildSystemPrompt(cfg)),
	}

	for _, ex := range history {
		role := llms.ChatMessageTypeHuman
		if ex.Role == model.RoleAssistant {
			role = llms.ChatMessageTypeAI
		}
		content = append(content, llms.TextParts(role, ex.Content))
	}

	content = append(content, llms.TextParts(llms.ChatMessageTypeHuman, message))

	response, err := c.llm.GenerateContent(ctx, content)
	if err != nil {
		return "", fmt.Errorf("запрос completion: %w", err)
	}

	choices := response.Choices
	if len(choices) < 1 {
		return "", nil
	}

	return choices[0].Content, nil
}

// Summarize генерирует краткое описание и ключевые слова документа.
// Формат ответа модели: строки "SUMMARY: ..." и "KEYWORDS: a, b, c".
func (c *LangchainClient) Summarize(ctx context.Context, filename, excerpt string) (string, []string, error) {
	prompt := fmt.Sprintf(
		"Проанализируй документ и дай:\n"+
			"1. Краткое описание (не более 300 символов)\n"+
			"2. От 2 до 6 ключевых слов\n\n"+
			"Имя документа: %s\n\nСодержимое:\n%s\n\n"+
			"Формат ответа:\nSUMMARY: [описание]\nKEYWORDS: [слово1, слово2, ...]",
		filename, excerpt,
	)

	content := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeHuman, prompt),
	}

	response, err := c.llm.GenerateContent(ctx, content)
	if err != nil {
		return "", nil, fmt.Errorf("запрос summary: %w", err)
	}
	if len(response.Choices) < 1 {
		return "", nil, errors.New("модель вернула пустой ответ")
	}

	summary, keywords := parseSummaryResponse(response.Choices[0].Content)
	return summary, keywords, nil
}

// buildSystemPrompt строит системный промпт, ограничивающий ответы
// рамками одного документа.
func buildSystemPrompt(cfg RetrievalConfig) string {
	var b strings.Builder
	b.WriteString("Ты — ассистент, отвечающий на вопросы строго по содержимому документа.\n")
	fmt.Fprintf(&b, "Документ: %s (тип %s, id %s).\n", cfg.Filename, cfg.FileType, cfg.FileID)
	if cfg.Summary != nil && *cfg.Summary != "" {
		fmt.Fprintf(&b, "Краткое содержание: %s\n", *cfg.Summary)
	}
	if len(cfg.Keywords) > 0 {
		fmt.Fprintf(&b, "Ключевые слова: %s\n", strings.Join(cfg.Keywords, ", "))
	}
	b.WriteString("Если ответа нет в документе — скажи об этом явно.")
	return b.String()
}

// parseSummaryResponse разбирает ответ модели на summary и keywords.
// При сбое разбора возвращает усечённый текст ответа без ключевых слов.
func parseSummaryResponse(text string) (string, []string) {
	var summary string
	var keywords []string

	for _, line := range strings.Split(text, "\n") {
		switch {
		case strings.HasPrefix(line, "SUMMARY:"):
			summary = strings.TrimSpace(strings.TrimPrefix(line, "SUMMARY:"))
		case strings.HasPrefix(line, "KEYWORDS:"):
			kwText := strings.Trim(strings.TrimSpace(strings.TrimPrefix(line, "KEYWORDS:")), "[]")
			for _, kw := range strings.Split(kwText, ",") {
				if kw = strings.TrimSpace(kw); kw != "" {
					keywords = append(keywords, kw)
				}
			}
		}
	}

	if summary == "" && text != "" {
		summary = text
	}
	if r := []rune(summary); len(r) > 300 {
		summary = string(r[:300])
	}
	if len(keywords) > 6 {
		keywords = keywords[:6]
	}
	return summary, keywords
}

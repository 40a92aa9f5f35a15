package aiclient

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/tmc/langchaingo/llms"
)

// stubModel — llms.Model с фиксированным ответом.
type stubModel struct {
	resp *llms.ContentResponse
	err  error
}

func (m *stubModel) GenerateContent(_ context.Context, _ []llms.MessageContent, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	return m.resp, m.err
}

func (m *stubModel) Call(_ context.Context, _ string, _ ...llms.CallOption) (string, error) {
	return "", nil
}

func newTestClient(m llms.Model) *LangchainClient {
	return &LangchainClient{
		llm:    m,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestComplete_ReturnsChoiceContent(t *testing.T) {
	client := newTestClient(&stubModel{
		resp: &llms.ContentResponse{
			Choices: []*llms.ContentChoice{{Content: "ответ по документу"}},
		},
	})

	answer, err := client.Complete(context.Background(), "вопрос", nil, RetrievalConfig{
		FileID: "f-1", Filename: "doc.pdf", FileType: "pdf", StoragePath: "files/f-1_doc.pdf",
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if answer != "ответ по документу" {
		t.Errorf("ответ = %q", answer)
	}
}

func TestComplete_NoChoicesIsEmptyAnswer(t *testing.T) {
	// Ответ без choices — вырожденный ответ модели, а не сбой соединения:
	// Complete возвращает пустую строку без ошибки
	client := newTestClient(&stubModel{
		resp: &llms.ContentResponse{Choices: []*llms.ContentChoice{}},
	})

	answer, err := client.Complete(context.Background(), "вопрос", nil, RetrievalConfig{
		FileID: "f-1", Filename: "doc.pdf", FileType: "pdf", StoragePath: "files/f-1_doc.pdf",
	})
	if err != nil {
		t.Fatalf("Complete при пустых choices: err = %v, ожидается nil", err)
	}
	if answer != "" {
		t.Errorf("ответ = %q, ожидается пустая строка", answer)
	}
}

func TestComplete_TransportError(t *testing.T) {
	client := newTestClient(&stubModel{err: errors.New("модель недоступна")})

	_, err := client.Complete(context.Background(), "вопрос", nil, RetrievalConfig{
		FileID: "f-1", Filename: "doc.pdf", FileType: "pdf", StoragePath: "files/f-1_doc.pdf",
	})
	if err == nil {
		t.Fatal("Complete при сбое модели: ожидается ошибка")
	}
}

func TestParseSummaryResponse(t *testing.T) {
	text := "SUMMARY: Квартальный отчёт о продажах.\nKEYWORDS: продажи, отчёт, финансы"

	summary, keywords := parseSummaryResponse(text)
	if summary != "Квартальный отчёт о продажах." {
		t.Errorf("summary = %q", summary)
	}
	if len(keywords) != 3 {
		t.Fatalf("keywords = %v, хотели 3 элемента", keywords)
	}
	if keywords[0] != "продажи" || keywords[2] != "финансы" {
		t.Errorf("keywords = %v", keywords)
	}
}

func TestParseSummaryResponse_BracketedKeywords(t *testing.T) {
	// Модели часто буквально повторяют скобки из шаблона
	_, keywords := parseSummaryResponse("SUMMARY: x\nKEYWORDS: [a, b]")
	if len(keywords) != 2 || keywords[0] != "a" || keywords[1] != "b" {
		t.Errorf("keywords = %v, хотели [a b]", keywords)
	}
}

func TestParseSummaryResponse_Unstructured(t *testing.T) {
	// Ответ без обязательного формата: используем текст целиком
	summary, keywords := parseSummaryResponse("Просто текст ответа без формата.")
	if summary != "Просто текст ответа без формата." {
		t.Errorf("summary = %q", summary)
	}
	if len(keywords) != 0 {
		t.Errorf("keywords = %v, хотели пусто", keywords)
	}
}

func TestParseSummaryResponse_TruncatesLongSummary(t *testing.T) {
	// Усечение по рунам: кириллица не должна резаться посреди символа
	long := strings.Repeat("ё", 400)
	summary, _ := parseSummaryResponse("SUMMARY: " + long)

	if got := len([]rune(summary)); got != 300 {
		t.Errorf("длина summary = %d рун, хотели 300", got)
	}
	if !utf8.ValidString(summary) {
		t.Error("усечённый summary содержит некорректный UTF-8")
	}
}

func TestParseSummaryResponse_LimitsKeywords(t *testing.T) {
	_, keywords := parseSummaryResponse("KEYWORDS: a, b, c, d, e, f, g, h")
	if len(keywords) != 6 {
		t.Errorf("keywords: %d элементов, хотели не более 6", len(keywords))
	}
}

func TestParseSummaryResponse_Empty(t *testing.T) {
	summary, keywords := parseSummaryResponse("")
	if summary != "" {
		t.Errorf("summary = %q, хотели пусто", summary)
	}
	if len(keywords) != 0 {
		t.Errorf("keywords = %v, хотели пусто", keywords)
	}
}

func TestBuildSystemPrompt(t *testing.T) {
	summary := "квартальный отчёт"
	cfg := RetrievalConfig{
		FileID:      "f-1",
		Filename:    "report.pdf",
		FileType:    "pdf",
		StoragePath: "files/f-1_report.pdf",
		Summary:     &summary,
		Keywords:    []string{"финансы", "продажи"},
	}

	prompt := buildSystemPrompt(cfg)
	for _, part := range []string{"report.pdf", "pdf", "f-1", "квартальный отчёт", "финансы, продажи"} {
		if !strings.Contains(prompt, part) {
			t.Errorf("промпт не содержит %q:\n%s", part, prompt)
		}
	}
}

func TestBuildSystemPrompt_NoOptionalFields(t *testing.T) {
	prompt := buildSystemPrompt(RetrievalConfig{
		FileID:      "f-2",
		Filename:    "plain.txt",
		FileType:    "txt",
		StoragePath: "files/f-2_plain.txt",
	})

	if strings.Contains(prompt, "Краткое содержание") {
		t.Error("промпт содержит блок summary при отсутствии summary")
	}
	if strings.Contains(prompt, "Ключевые слова") {
		t.Error("промпт содержит блок keywords при отсутствии keywords")
	}
}

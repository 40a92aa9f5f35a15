package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/bigkaa/docuchat/internal/domain/model"
)

// fakeGetter — реализация FileGetter с фиксированным результатом.
type fakeGetter struct {
	file *model.FileDescriptor
	err  error

	calls int
}

func (g *fakeGetter) Get(_ context.Context, _ string) (*model.FileDescriptor, error) {
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	cp := *g.file
	return &cp, nil
}

func availableDescriptor() *model.FileDescriptor {
	summary := "квартальный отчёт"
	return &model.FileDescriptor{
		ID:          "f-1",
		Name:        "report.pdf",
		Type:        "pdf",
		SizeBytes:   42,
		StoragePath: "files/f-1_report.pdf",
		Summary:     &summary,
		Keywords:    []string{"финансы"},
		Status:      model.StatusAvailable,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}
}

func TestChat_Success(t *testing.T) {
	ai := &fakeAI{answer: "Ответ по документу."}
	svc := NewChatService(&fakeGetter{file: availableDescriptor()}, ai, nil, discardLogger())

	history := []model.ChatExchange{
		{Role: model.RoleUser, Content: "Что это за документ?"},
		{Role: model.RoleAssistant, Content: "Это квартальный отчёт."},
	}

	answer, err := svc.Chat(context.Background(), "f-1", "Какая выручка?", history)
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if answer != "Ответ по документу." {
		t.Errorf("ответ = %q", answer)
	}

	// Контекст документа и история дошли до AI-клиента
	if ai.lastCfg.FileID != "f-1" || ai.lastCfg.Filename != "report.pdf" {
		t.Errorf("конфигурация контекста = %+v", ai.lastCfg)
	}
	if ai.lastMessage != "Какая выручка?" {
		t.Errorf("сообщение = %q", ai.lastMessage)
	}
	if len(ai.lastHistory) != 2 {
		t.Errorf("история: %d записей, ожидается 2", len(ai.lastHistory))
	}
}

func TestChat_EmptyMessage(t *testing.T) {
	ai := &fakeAI{answer: "не должен быть вызван"}
	svc := NewChatService(&fakeGetter{file: availableDescriptor()}, ai, nil, discardLogger())

	for _, msg := range []string{"", "   ", "\n"} {
		_, err := svc.Chat(context.Background(), "f-1", msg, nil)
		if !errors.Is(err, ErrValidation) {
			t.Errorf("Chat(message=%q): err = %v, ожидается ErrValidation", msg, err)
		}
	}
	if ai.completeCalls != 0 {
		t.Errorf("AI-клиент вызван %d раз при пустом сообщении", ai.completeCalls)
	}
}

func TestChat_FileNotFound_AINotCalled(t *testing.T) {
	ai := &fakeAI{answer: "не должен быть вызван"}
	svc := NewChatService(&fakeGetter{err: ErrNotFound}, ai, nil, discardLogger())

	_, err := svc.Chat(context.Background(), "нет-такого", "Вопрос?", nil)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Chat: err = %v, ожидается ErrNotFound", err)
	}
	if ai.completeCalls != 0 {
		t.Errorf("AI-клиент вызван %d раз для неизвестного файла, ожидается 0", ai.completeCalls)
	}
}

func TestChat_UpstreamError(t *testing.T) {
	ai := &fakeAI{completeErr: errors.New("модель недоступна")}
	svc := NewChatService(&fakeGetter{file: availableDescriptor()}, ai, nil, discardLogger())

	_, err := svc.Chat(context.Background(), "f-1", "Вопрос?", nil)
	if !errors.Is(err, ErrUpstream) {
		t.Fatalf("Chat: err = %v, ожидается ErrUpstream", err)
	}
}

func TestChat_EmptyAnswer(t *testing.T) {
	// Пустой и пробельный ответ модели — внутренняя ошибка, не результат
	for _, answer := range []string{"", "   \n"} {
		ai := &fakeAI{answer: answer}
		svc := NewChatService(&fakeGetter{file: availableDescriptor()}, ai, nil, discardLogger())

		_, err := svc.Chat(context.Background(), "f-1", "Вопрос?", nil)
		if !errors.Is(err, ErrInternal) {
			t.Errorf("Chat(answer=%q): err = %v, ожидается ErrInternal", answer, err)
		}
	}
}

func TestChat_CorruptDescriptor(t *testing.T) {
	f := availableDescriptor()
	f.StoragePath = ""
	ai := &fakeAI{answer: "не должен быть вызван"}
	svc := NewChatService(&fakeGetter{file: f}, ai, nil, discardLogger())

	_, err := svc.Chat(context.Background(), "f-1", "Вопрос?", nil)
	if !errors.Is(err, ErrInternal) {
		t.Fatalf("Chat: err = %v, ожидается ErrInternal", err)
	}
	if ai.completeCalls != 0 {
		t.Error("AI-клиент вызван для повреждённого дескриптора")
	}
}

func TestChat_CacheShortCircuitsLookup(t *testing.T) {
	getter := &fakeGetter{file: availableDescriptor()}
	cache := NewCacheService(10, time.Minute)
	svc := NewChatService(getter, &fakeAI{answer: "ок"}, cache, discardLogger())

	// Первый запрос: промах кэша, поход в хранилище
	if _, err := svc.Chat(context.Background(), "f-1", "Вопрос?", nil); err != nil {
		t.Fatalf("Chat #1: %v", err)
	}
	if getter.calls != 1 {
		t.Fatalf("lookup вызван %d раз, ожидается 1", getter.calls)
	}

	// Второй запрос: дескриптор берётся из кэша
	if _, err := svc.Chat(context.Background(), "f-1", "Ещё вопрос?", nil); err != nil {
		t.Fatalf("Chat #2: %v", err)
	}
	if getter.calls != 1 {
		t.Errorf("lookup вызван %d раз, ожидается по-прежнему 1", getter.calls)
	}
}

func TestChat_HistoryNotMutated(t *testing.T) {
	svc := NewChatService(&fakeGetter{file: availableDescriptor()}, &fakeAI{answer: "ок"}, nil, discardLogger())

	history := []model.ChatExchange{
		{Role: model.RoleUser, Content: "первый вопрос"},
	}
	original := history[0]

	if _, err := svc.Chat(context.Background(), "f-1", "второй вопрос", history); err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if history[0] != original {
		t.Error("история диалога изменена сервисом")
	}
	if strings.TrimSpace(history[0].Content) != "первый вопрос" {
		t.Error("содержимое истории повреждено")
	}
}

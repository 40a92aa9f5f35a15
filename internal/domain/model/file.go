package model

import "time"

// Статусы дескриптора файла.
// pending — запись создана, но загрузка ещё не завершена (blob не подтверждён).
// available — загрузка завершена, файл виден в списках и доступен для чата.
const (
	StatusPending   = "pending"
	StatusAvailable = "available"
)

// FileDescriptor — запись метаданных загруженного файла.
// Хранится в таблице files.
type FileDescriptor struct {
	// ID — UUID файла (генерируется при загрузке)
	ID string
	// Name — оригинальное имя файла
	Name string
	// Type — каноническое расширение (pdf, docx, txt, md, csv, xlsx)
	Type string
	// SizeBytes — размер файла в байтах
	SizeBytes int64
	// StoragePath — уникальный ключ объекта в blob-хранилище
	StoragePath string
	// Summary — краткое AI-описание содержимого (опционально)
	Summary *string
	// Keywords — ключевые слова, извлечённые из содержимого
	Keywords []string
	// Status — статус записи (pending, available)
	Status string
	// CreatedAt — время создания записи (UTC)
	CreatedAt time.Time
	// UpdatedAt — время последнего обновления (UTC)
	UpdatedAt time.Time
}

// Pagination — состояние пагинации списка файлов.
// Вычисляется при запросе, не персистится.
type Pagination struct {
	// Page — номер страницы (от 1)
	Page int
	// PageSize — количество записей на странице
	PageSize int
	// TotalPages — общее количество страниц (минимум 1)
	TotalPages int
	// TotalFiles — общее количество файлов
	TotalFiles int
}

// Роли участников диалога.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatExchange — одна реплика диалога {роль, текст}.
// История диалога хранится на стороне вызывающего и передаётся
// с каждым запросом; сервис её не персистит.
type ChatExchange struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

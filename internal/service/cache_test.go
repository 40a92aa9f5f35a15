package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/bigkaa/docuchat/internal/domain/model"
)

func TestCache_SetGetDelete(t *testing.T) {
	c := NewCacheService(10, time.Minute)

	if _, ok := c.Get("f-1"); ok {
		t.Error("пустой кэш вернул запись")
	}

	f := &model.FileDescriptor{ID: "f-1", Name: "doc.pdf"}
	c.Set("f-1", f)

	got, ok := c.Get("f-1")
	if !ok {
		t.Fatal("запись не найдена после Set")
	}
	if got.Name != "doc.pdf" {
		t.Errorf("имя = %q, ожидается doc.pdf", got.Name)
	}

	c.Delete("f-1")
	if _, ok := c.Get("f-1"); ok {
		t.Error("запись осталась после Delete")
	}
}

func TestCache_TTLExpiry(t *testing.T) {
	c := NewCacheService(10, 50*time.Millisecond)

	c.Set("f-1", &model.FileDescriptor{ID: "f-1"})
	if _, ok := c.Get("f-1"); !ok {
		t.Fatal("запись не найдена сразу после Set")
	}

	time.Sleep(120 * time.Millisecond)

	if _, ok := c.Get("f-1"); ok {
		t.Error("запись не истекла по TTL")
	}
}

func TestCache_EvictsOldest(t *testing.T) {
	c := NewCacheService(3, time.Minute)

	for i := 0; i < 5; i++ {
		id := fmt.Sprintf("f-%d", i)
		c.Set(id, &model.FileDescriptor{ID: id})
	}

	// Размер ограничен: самые старые записи вытеснены
	if _, ok := c.Get("f-0"); ok {
		t.Error("старейшая запись не вытеснена при переполнении")
	}
	if _, ok := c.Get("f-4"); !ok {
		t.Error("свежая запись вытеснена")
	}
}

// cache.go — LRU-кэш дескрипторов файлов с TTL.
// Обёртка над hashicorp/golang-lru/v2/expirable.
// Снимает нагрузку с metadata-хранилища на горячем пути чата.
package service

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/docuchat/internal/domain/model"
)

// Prometheus-метрики кэша.
var (
	cacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dc_cache_hits_total",
		Help: "Общее количество попаданий в LRU-кэш дескрипторов.",
	})
	cacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dc_cache_misses_total",
		Help: "Общее количество промахов LRU-кэша дескрипторов.",
	})
)

// CacheService — LRU-кэш дескрипторов с автоматическим TTL.
// Кэш per-instance: каждый экземпляр приложения держит собственный.
type CacheService struct {
	cache *expirable.LRU[string, *model.FileDescriptor]
}

// NewCacheService создаёт LRU-кэш с указанным максимальным размером и TTL.
func NewCacheService(maxSize int, ttl time.Duration) *CacheService {
	cache := expirable.NewLRU[string, *model.FileDescriptor](maxSize, nil, ttl)
	return &CacheService{cache: cache}
}

// Get возвращает дескриптор из кэша по fileID.
// Возвращает (запись, true) при hit или (nil, false) при miss.
func (c *CacheService) Get(fileID string) (*model.FileDescriptor, bool) {
	val, ok := c.cache.Get(fileID)
	if ok {
		cacheHitsTotal.Inc()
		return val, true
	}
	cacheMissesTotal.Inc()
	return nil, false
}

// Set добавляет или обновляет запись в кэше.
func (c *CacheService) Set(fileID string, f *model.FileDescriptor) {
	c.cache.Add(fileID, f)
}

// Delete удаляет запись из кэша (инвалидация при удалении файла).
func (c *CacheService) Delete(fileID string) {
	c.cache.Remove(fileID)
}

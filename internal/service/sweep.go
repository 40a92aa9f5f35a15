// sweep.go — фоновая сверка хранилищ.
//
// Загрузка не транзакционна между blob- и metadata-хранилищем:
// между записью blob и подтверждением метаданных возможно окно,
// в котором остаются осиротевшие pending-записи и их blob.
// Sweep периодически удаляет pending-записи старше DC_PENDING_TTL
// вместе с их объектами в blob-хранилище.
//
// Запускается как горутина с периодическим тикером (DC_SWEEP_INTERVAL).
package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/docuchat/internal/blobstore"
	"github.com/bigkaa/docuchat/internal/repository"
)

// Prometheus-метрики sweep.
var (
	sweepRunsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dc_sweep_runs_total",
		Help: "Общее количество запусков sweep.",
	})
	sweepReclaimedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dc_sweep_reclaimed_total",
		Help: "Общее количество убранных осиротевших pending-записей.",
	})
	sweepDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "dc_sweep_duration_seconds",
		Help:    "Длительность выполнения sweep в секундах.",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
	})
)

// SweepResult — результат одного запуска sweep.
type SweepResult struct {
	// ReclaimedCount — количество убранных pending-записей
	ReclaimedCount int
	// Errors — количество ошибок при обработке записей
	Errors int
	// Duration — длительность выполнения
	Duration time.Duration
}

// SweepService — фоновая сверка pending-записей и осиротевших blob.
type SweepService struct {
	repo       repository.FileRepository
	blobs      blobstore.Store
	interval   time.Duration
	pendingTTL time.Duration
	logger     *slog.Logger

	mu     sync.Mutex // защита от параллельного запуска RunOnce
	cancel context.CancelFunc
}

// NewSweepService создаёт сервис sweep.
func NewSweepService(
	repo repository.FileRepository,
	blobs blobstore.Store,
	interval, pendingTTL time.Duration,
	logger *slog.Logger,
) *SweepService {
	return &SweepService{
		repo:       repo,
		blobs:      blobs,
		interval:   interval,
		pendingTTL: pendingTTL,
		logger:     logger.With(slog.String("component", "sweep")),
	}
}

// Start запускает фоновую горутину sweep с периодическим тикером.
// Вызывается один раз при старте приложения.
func (s *SweepService) Start(ctx context.Context) {
	sweepCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	go s.run(sweepCtx)

	s.logger.Info("Sweep запущен",
		slog.String("interval", s.interval.String()),
		slog.String("pending_ttl", s.pendingTTL.String()),
	)
}

// Stop останавливает фоновый процесс sweep.
func (s *SweepService) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
}

func (s *SweepService) run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Sweep остановлен")
			return
		case <-ticker.C:
			result := s.RunOnce(ctx)
			if result.ReclaimedCount > 0 || result.Errors > 0 {
				s.logger.Info("Sweep завершён",
					slog.Int("reclaimed", result.ReclaimedCount),
					slog.Int("errors", result.Errors),
					slog.String("duration", result.Duration.String()),
				)
			}
		}
	}
}

// RunOnce выполняет один проход sweep: удаляет pending-записи
// старше pendingTTL вместе с их blob. Если blob удалить не удалось,
// запись остаётся до следующего прохода.
func (s *SweepService) RunOnce(ctx context.Context) SweepResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	sweepRunsTotal.Inc()

	result := SweepResult{}
	cutoff := time.Now().UTC().Add(-s.pendingTTL)

	stale, err := s.repo.ListStalePending(ctx, cutoff)
	if err != nil {
		s.logger.Error("Sweep: получение pending-записей не удалось",
			slog.String("error", err.Error()),
		)
		result.Errors++
		result.Duration = time.Since(start)
		sweepDurationSeconds.Observe(result.Duration.Seconds())
		return result
	}

	for _, f := range stale {
		if err := s.blobs.Delete(ctx, f.StoragePath); err != nil {
			s.logger.Warn("Sweep: удаление blob не удалось, запись останется до следующего прохода",
				slog.String("file_id", f.ID),
				slog.String("storage_path", f.StoragePath),
				slog.String("error", err.Error()),
			)
			result.Errors++
			continue
		}

		if err := s.repo.Delete(ctx, f.ID); err != nil && !errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn("Sweep: удаление pending-записи не удалось",
				slog.String("file_id", f.ID),
				slog.String("error", err.Error()),
			)
			result.Errors++
			continue
		}

		result.ReclaimedCount++
		sweepReclaimedTotal.Inc()
	}

	result.Duration = time.Since(start)
	sweepDurationSeconds.Observe(result.Duration.Seconds())
	return result
}

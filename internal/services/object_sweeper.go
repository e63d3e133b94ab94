package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/fastygo/daybook/domain"
	"github.com/fastygo/daybook/internal/infrastructure/buffer"
	"github.com/fastygo/daybook/repository"
)

// StorageHealth abstracts the connection monitor for the object store.
type StorageHealth interface {
	StorageOnline() bool
}

// SweeperConfig controls how often queued deletions are retried and for how long they are kept.
type SweeperConfig struct {
	Interval   time.Duration
	BatchSize  int
	MaxRetries int
	Retention  time.Duration
}

// ObjectSweeper retries object deletions that failed inline.
type ObjectSweeper struct {
	store   *buffer.Store
	objects repository.ObjectStorage
	monitor StorageHealth
	logger  *zap.Logger
	cron    *cron.Cron
	cfg     SweeperConfig
	now     func() time.Time
}

func NewObjectSweeper(
	store *buffer.Store,
	objects repository.ObjectStorage,
	monitor StorageHealth,
	logger *zap.Logger,
	cfg SweeperConfig,
) *ObjectSweeper {
	if cfg.Interval < time.Second {
		cfg.Interval = 30 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 5
	}
	if cfg.Retention <= 0 {
		cfg.Retention = 72 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &ObjectSweeper{
		store:   store,
		objects: objects,
		monitor: monitor,
		logger:  logger,
		cfg:     cfg,
		cron:    cron.New(cron.WithSeconds()),
		now:     time.Now,
	}

	schedule := fmt.Sprintf("@every %ds", int(cfg.Interval.Seconds()))
	_, _ = s.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Interval)
		defer cancel()
		if err := s.Drain(ctx); err != nil {
			s.logger.Error("object sweep failed", zap.Error(err))
		}
	})
	_, _ = s.cron.AddFunc("@every 1h", func() {
		if err := s.Cleanup(); err != nil {
			s.logger.Error("queue cleanup failed", zap.Error(err))
		}
	})

	return s
}

// Start launches the cron scheduler.
func (s *ObjectSweeper) Start() {
	if s == nil || s.cron == nil {
		return
	}
	s.cron.Start()
	s.logger.Info("object sweeper started", zap.Duration("interval", s.cfg.Interval))
}

// Stop waits for a running sweep to finish or for ctx to expire.
func (s *ObjectSweeper) Stop(ctx context.Context) error {
	if s == nil || s.cron == nil {
		return nil
	}
	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
		return ctx.Err()
	}
	s.logger.Info("object sweeper stopped")
	return nil
}

// Drain retries one batch of queued deletions synchronously.
func (s *ObjectSweeper) Drain(ctx context.Context) error {
	if s == nil || s.store == nil {
		return nil
	}
	if s.monitor != nil && !s.monitor.StorageOnline() {
		s.logger.Debug("skipping object sweep (storage offline)")
		return nil
	}

	items, err := s.store.GetBatch(s.cfg.BatchSize)
	if err != nil {
		return err
	}

	for _, item := range items {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := s.process(ctx, item); err != nil {
			item.Retries++
			item.LastError = err.Error()
			if item.Retries >= s.cfg.MaxRetries {
				s.logger.Warn("dropping queued deletion (max retries reached)",
					zap.String("key", item.Key),
					zap.String("user_id", item.UserID),
					zap.Int("retries", item.Retries),
					zap.Error(err))
				_ = s.store.Remove(item)
				continue
			}
			s.logger.Info("queued deletion failed again",
				zap.String("key", item.Key), zap.Int("retries", item.Retries), zap.Error(err))
			if err := s.store.Requeue(item); err != nil {
				s.logger.Error("failed to requeue deletion", zap.Error(err))
			}
			continue
		}

		if err := s.store.Remove(item); err != nil {
			s.logger.Warn("failed to purge processed deletion", zap.Error(err))
		}
	}
	return nil
}

// Cleanup drops queued deletions older than the retention window.
func (s *ObjectSweeper) Cleanup() error {
	if s == nil || s.store == nil {
		return nil
	}
	return s.store.Cleanup(s.now().Add(-s.cfg.Retention))
}

// Size returns the number of queued deletions.
func (s *ObjectSweeper) Size() int {
	if s == nil || s.store == nil {
		return 0
	}
	size, err := s.store.Size()
	if err != nil {
		return 0
	}
	return size
}

func (s *ObjectSweeper) process(ctx context.Context, item buffer.Item) error {
	if item.Entity != buffer.EntityObject || item.Operation != buffer.OperationDelete {
		return fmt.Errorf("unsupported queued operation %s/%s", item.Entity, item.Operation)
	}
	err := s.objects.Delete(ctx, item.Key)
	if err != nil && domain.IsDomainError(err, domain.ErrCodeNotFound) {
		return nil
	}
	return err
}

package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	redislib "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/fastygo/daybook/internal/infrastructure/blobstore"
	"github.com/fastygo/daybook/internal/infrastructure/buffer"
)

// Probes are the checks a Monitor runs. Nil probes report unhealthy.
type Probes struct {
	Postgres       func(ctx context.Context) error
	Redis          func(ctx context.Context) error
	PendingDeletes func() (int, error)
	StoredObjects  func() (int, error)
}

type Monitor struct {
	probes Probes

	status   Status
	mu       sync.RWMutex
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
	logger   *zap.Logger
}

// New watches Postgres, Redis, the deletion buffer and the blob store.
func New(pg *pgxpool.Pool, redis *redislib.Client, buf *buffer.Store, blobs *blobstore.Store, interval time.Duration, logger *zap.Logger) *Monitor {
	probes := Probes{}
	if pg != nil {
		probes.Postgres = pg.Ping
	}
	if redis != nil {
		probes.Redis = func(ctx context.Context) error { return redis.Ping(ctx).Err() }
	}
	if buf != nil {
		probes.PendingDeletes = buf.Size
	}
	if blobs != nil {
		probes.StoredObjects = blobs.Count
	}
	return NewWithProbes(probes, interval, logger)
}

func NewWithProbes(probes Probes, interval time.Duration, logger *zap.Logger) *Monitor {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		probes:   probes,
		interval: interval,
		stopCh:   make(chan struct{}),
		logger:   logger,
	}
}

func (m *Monitor) Start() {
	go m.loop()
}

func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
}

func (m *Monitor) IsOnline() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status.PostgreSQL && m.status.Redis
}

// StorageOnline reports whether the object store answered the last probe.
func (m *Monitor) StorageOnline() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status.Storage
}

func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

func (m *Monitor) loop() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.refresh()
	for {
		select {
		case <-ticker.C:
			m.refresh()
		case <-m.stopCh:
			return
		}
	}
}

func (m *Monitor) refresh() {
	bufferOK, pending := m.gauge("buffer", m.probes.PendingDeletes)
	storageOK, stored := m.gauge("storage", m.probes.StoredObjects)
	status := Status{
		PostgreSQL:     m.ping("postgres", m.probes.Postgres, 3*time.Second),
		Redis:          m.ping("redis", m.probes.Redis, 2*time.Second),
		Buffer:         bufferOK,
		PendingDeletes: pending,
		Storage:        storageOK,
		StoredObjects:  stored,
		LastCheck:      time.Now(),
	}

	m.mu.Lock()
	m.status = status
	m.mu.Unlock()
}

func (m *Monitor) ping(name string, probe func(context.Context) error, timeout time.Duration) bool {
	if probe == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := probe(ctx); err != nil {
		m.logger.Warn("dependency ping failed", zap.String("dependency", name), zap.Error(err))
		return false
	}
	return true
}

func (m *Monitor) gauge(name string, probe func() (int, error)) (bool, int) {
	if probe == nil {
		return false, 0
	}
	n, err := probe()
	if err != nil {
		m.logger.Warn("size check failed", zap.String("store", name), zap.Error(err))
		return false, n
	}
	return true, n
}

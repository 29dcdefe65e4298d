package session

import (
	"context"
	"strconv"
	"time"

	"github.com/UnknownOlympus/nomina/internal/metrics"
	goCache "github.com/patrickmn/go-cache"
)

// MemoryStore keeps snapshots in process memory with an idle expiration.
type MemoryStore struct {
	cache   *goCache.Cache
	ttl     time.Duration
	metrics *metrics.Metrics
}

// NewMemoryStore creates a store whose entries expire ttl after their last save.
func NewMemoryStore(ttl time.Duration, appMetrics *metrics.Metrics) *MemoryStore {
	return &MemoryStore{
		cache:   goCache.New(ttl, 2*ttl),
		ttl:     ttl,
		metrics: appMetrics,
	}
}

func (s *MemoryStore) Load(_ context.Context, userID int64) (Snapshot, error) {
	value, ok := s.cache.Get(key(userID))
	if !ok {
		s.metrics.SessionOps.WithLabelValues("load", "miss").Inc()
		return Snapshot{}, ErrNotFound
	}

	s.metrics.SessionOps.WithLabelValues("load", "hit").Inc()
	snap, _ := value.(Snapshot)
	return snap, nil
}

func (s *MemoryStore) Save(_ context.Context, userID int64, snap Snapshot) error {
	s.cache.Set(key(userID), snap, s.ttl)
	s.metrics.SessionOps.WithLabelValues("save", "success").Inc()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, userID int64) error {
	s.cache.Delete(key(userID))
	return nil
}

// Ping always succeeds.
func (s *MemoryStore) Ping(context.Context) error {
	return nil
}

// Close drops every snapshot.
func (s *MemoryStore) Close() error {
	s.cache.Flush()
	return nil
}

func key(userID int64) string {
	return "nomina:session:" + strconv.FormatInt(userID, 10)
}

package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/UnknownOlympus/nomina/internal/metrics"
	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
)

// RedisStore keeps JSON encoded snapshots in Redis.
type RedisStore struct {
	client  *redis.Client
	ttl     time.Duration
	metrics *metrics.Metrics
}

// NewRedisClient connects to addr and verifies the connection.
func NewRedisClient(ctx context.Context, addr string, timeout time.Duration) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  timeout,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", addr, err)
	}

	return client, nil
}

// NewRedisStore creates a store whose entries expire ttl after their last save.
func NewRedisStore(client *redis.Client, ttl time.Duration, appMetrics *metrics.Metrics) *RedisStore {
	return &RedisStore{client: client, ttl: ttl, metrics: appMetrics}
}

func (s *RedisStore) Load(ctx context.Context, userID int64) (Snapshot, error) {
	data, err := s.client.Get(ctx, key(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			s.metrics.SessionOps.WithLabelValues("load", "miss").Inc()
			return Snapshot{}, ErrNotFound
		}
		s.metrics.SessionOps.WithLabelValues("load", "error").Inc()
		return Snapshot{}, fmt.Errorf("failed to load session %d: %w", userID, err)
	}

	var snap Snapshot
	if err = jsoniter.Unmarshal(data, &snap); err != nil {
		s.metrics.SessionOps.WithLabelValues("load", "error").Inc()
		return Snapshot{}, fmt.Errorf("failed to decode session %d: %w", userID, err)
	}

	s.metrics.SessionOps.WithLabelValues("load", "hit").Inc()
	return snap, nil
}

func (s *RedisStore) Save(ctx context.Context, userID int64, snap Snapshot) error {
	data, err := jsoniter.Marshal(snap)
	if err != nil {
		s.metrics.SessionOps.WithLabelValues("save", "error").Inc()
		return fmt.Errorf("failed to encode session %d: %w", userID, err)
	}

	if err = s.client.Set(ctx, key(userID), data, s.ttl).Err(); err != nil {
		s.metrics.SessionOps.WithLabelValues("save", "error").Inc()
		return fmt.Errorf("failed to save session %d: %w", userID, err)
	}

	s.metrics.SessionOps.WithLabelValues("save", "success").Inc()
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, userID int64) error {
	if err := s.client.Del(ctx, key(userID)).Err(); err != nil {
		return fmt.Errorf("failed to delete session %d: %w", userID, err)
	}
	return nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the underlying client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

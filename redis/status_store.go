// Package redis publishes live crawl status to Redis so other processes
// can follow a long crawl.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/fwojciec/sitepdf"
	"github.com/redis/go-redis/v9"
)

// Defaults for NewStatusStore.
const (
	DefaultPrefix = "sitepdf:status:"
	DefaultTTL    = 24 * time.Hour
)

var _ sitepdf.StatusStore = (*StatusStore)(nil)

type kvClient interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Close() error
}

// StatusStore stores crawl status in Redis.
type StatusStore struct {
	client kvClient
	prefix string
	ttl    time.Duration
}

// NewStatusStore initializes a Redis-backed StatusStore.
func NewStatusStore(addr, prefix string, ttl time.Duration) *StatusStore {
	return NewStatusStoreWithClient(redis.NewClient(&redis.Options{Addr: addr}), prefix, ttl)
}

// NewStatusStoreWithClient builds a store around an existing client (tests).
func NewStatusStoreWithClient(client kvClient, prefix string, ttl time.Duration) *StatusStore {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &StatusStore{client: client, prefix: prefix, ttl: ttl}
}

// Close closes the Redis client.
func (s *StatusStore) Close() error {
	return s.client.Close()
}

// SetStatus writes the status record to Redis.
func (s *StatusStore) SetStatus(ctx context.Context, status sitepdf.Status) error {
	if status.RunID == "" {
		return sitepdf.Errorf(sitepdf.EINVALID, "status run ID required")
	}
	payload, err := json.Marshal(status)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.prefix+status.RunID, payload, s.ttl).Err()
}

// GetStatus reads the status record from Redis.
// The bool result is false if no status exists for runID.
func (s *StatusStore) GetStatus(ctx context.Context, runID string) (sitepdf.Status, bool, error) {
	val, err := s.client.Get(ctx, s.prefix+runID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return sitepdf.Status{}, false, nil
		}
		return sitepdf.Status{}, false, err
	}

	var status sitepdf.Status
	if err := json.Unmarshal([]byte(val), &status); err != nil {
		return sitepdf.Status{}, false, err
	}
	return status, true, nil
}

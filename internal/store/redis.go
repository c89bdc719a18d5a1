// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/umrunclub/clubsite/internal/log"
)

// RedisStore keeps one serialized JSON document per collection under a fixed
// key in a Redis-compatible service (managed KV, Upstash, plain Redis).
type RedisStore struct {
	client *redis.Client
	logger zerolog.Logger
}

// NewRedisStore connects to the Redis service at url (redis:// or rediss://)
// and verifies connectivity before returning.
func NewRedisStore(url string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis: parse url: %w", err)
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: connection failed: %w", err)
	}

	logger := log.WithComponent("store.redis")
	logger.Info().Str("addr", opts.Addr).Int("db", opts.DB).Msg("connected to redis store")

	return &RedisStore{client: client, logger: logger}, nil
}

// Load fetches the collection document. A missing key yields an empty
// payload; a payload that is not valid JSON is treated as "no data" since
// some providers store documents natively rather than as serialized text.
func (s *RedisStore) Load(ctx context.Context, collection string) ([]byte, error) {
	data, err := s.client.Get(ctx, collection).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis: get %s: %w", collection, err)
	}
	if !json.Valid(data) {
		s.logger.Warn().Str("collection", collection).Msg("stored value is not valid JSON, starting empty")
		return nil, nil
	}
	return data, nil
}

// Save stores the collection document under its key, without expiry.
func (s *RedisStore) Save(ctx context.Context, collection string, data []byte) error {
	if err := s.client.Set(ctx, collection, data, 0).Err(); err != nil {
		return fmt.Errorf("redis: set %s: %w", collection, err)
	}
	return nil
}

// Close closes the underlying client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// HealthCheck reports whether the Redis service is reachable.
func (s *RedisStore) HealthCheck(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

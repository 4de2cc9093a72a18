package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements Store on Redis strings, for instances running in
// separate processes
type RedisStore struct {
	rdb     *redis.Client
	prefix  string
	timeout time.Duration
}

// NewRedisStore creates a store on rdb. Every key is stored as prefix+key.
func NewRedisStore(rdb *redis.Client, prefix string) *RedisStore {
	return &RedisStore{
		rdb:     rdb,
		prefix:  prefix,
		timeout: 5 * time.Second,
	}
}

func (s *RedisStore) context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.timeout)
}

// Get returns the stored value or ErrNotFound
func (s *RedisStore) Get(key string) ([]byte, error) {
	ctx, cancel := s.context()
	defer cancel()

	data, err := s.rdb.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return data, nil
}

// Put replaces the value under key
func (s *RedisStore) Put(key string, value []byte) error {
	ctx, cancel := s.context()
	defer cancel()

	if err := s.rdb.Set(ctx, s.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("failed to put %s: %w", key, err)
	}
	return nil
}

// Delete removes key
func (s *RedisStore) Delete(key string) error {
	ctx, cancel := s.context()
	defer cancel()

	if err := s.rdb.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// Close closes the underlying client
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}

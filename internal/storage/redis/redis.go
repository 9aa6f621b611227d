// redis — хранилище поверх Redis: значение ключа лежит строкой под prefix+key.
package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/pribylovaa/game-catalog/internal/storage"
)

// DefaultPrefix — префикс ключей по умолчанию.
const DefaultPrefix = "catalog:"

// Store реализует storage.Store поверх *redis.Client.
type Store struct {
	rdb    *redis.Client
	prefix string
}

// New оборачивает готовый клиент. Если prefix пустой — используется DefaultPrefix.
func New(rdb *redis.Client, prefix string) *Store {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Store{rdb: rdb, prefix: prefix}
}

// Connect создаёт клиент из URL (например, redis://:pass@host:6379/0) и проверяет связь.
func Connect(ctx context.Context, redisURL, prefix string) (*Store, error) {
	const op = "storage.redis.Connect"

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("%s: parse url: %w", op, err)
	}

	rdb := redis.NewClient(opt)

	// Fail-fast на старте.
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("%s: ping: %w", op, err)
	}

	return New(rdb, prefix), nil
}

func (s *Store) key(k string) string { return s.prefix + k }

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	const op = "storage.redis.Get"

	v, err := s.rdb.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return v, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	const op = "storage.redis.Set"

	if err := s.rdb.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	const op = "storage.redis.Delete"

	if err := s.rdb.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *Store) Close() error { return s.rdb.Close() }

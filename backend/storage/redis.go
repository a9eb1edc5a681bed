package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

type RedisStorage struct {
	rdb    *goredis.Client
	prefix string
}

func NewRedisStorage(addr, prefix string) (*RedisStorage, error) {
	if addr == "" {
		return nil, fmt.Errorf("redis storage: missing address: %w", ErrUnavailable)
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", errors.Join(ErrUnavailable, err))
	}

	return &RedisStorage{rdb: rdb, prefix: prefix}, nil
}

func (r *RedisStorage) Get(ctx context.Context, key string) (string, error) {
	v, err := r.rdb.Get(ctx, r.prefix+key).Result()
	if errors.Is(err, goredis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis get %q: %w", key, errors.Join(ErrUnavailable, err))
	}
	return v, nil
}

func (r *RedisStorage) Set(ctx context.Context, key, value string) error {
	if err := r.rdb.Set(ctx, r.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %q: %w", key, errors.Join(ErrUnavailable, err))
	}
	return nil
}

func (r *RedisStorage) Delete(ctx context.Context, key string) error {
	if err := r.rdb.Del(ctx, r.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis del %q: %w", key, errors.Join(ErrUnavailable, err))
	}
	return nil
}

func (r *RedisStorage) Close() error {
	return r.rdb.Close()
}

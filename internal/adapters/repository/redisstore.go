package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/okian/books/internal/domain/model"
)

// RedisAPI is the subset of the redis client used by RedisStore.
type RedisAPI interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// RedisStore keeps the collection as one JSON string value under a key.
type RedisStore struct {
	client RedisAPI
	key    string
}

// NewRedisClient parses a redis:// or rediss:// URL and checks connectivity.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	opt.DialTimeout = 2 * time.Second
	opt.ReadTimeout = time.Second
	opt.WriteTimeout = time.Second

	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

// NewRedisStore creates a store for the given key.
func NewRedisStore(client RedisAPI, key string) *RedisStore {
	return &RedisStore{client: client, key: key}
}

// Backend implements Store.
func (s *RedisStore) Backend() string { return "redis" }

// Load implements Store.
func (s *RedisStore) Load(ctx context.Context) (model.Collection, error) {
	const op = "repository.redis.load"
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, notFoundError(op, "redis key "+s.key)
		}
		return nil, accessError(op, err)
	}
	books, err := Decode(data)
	if err != nil {
		return nil, malformedError(op, err)
	}
	return books, nil
}

// Save implements Store.
func (s *RedisStore) Save(ctx context.Context, books model.Collection) error {
	const op = "repository.redis.save"
	data, err := Encode(books)
	if err != nil {
		return accessError(op, err)
	}
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return accessError(op, err)
	}
	return nil
}

// Init implements Initializer.
func (s *RedisStore) Init(ctx context.Context) (bool, error) {
	return initIfMissing(ctx, s)
}

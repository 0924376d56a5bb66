package cache

import (
	"context"
	"maps"
	"slices"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultKeyPrefix prefixes the hash key of each language.
const DefaultKeyPrefix = "miztl:cache:"

// RedisStore keeps each language's cache as a Redis hash of source text to
// translation, so several machines can share one cache.
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
}

// RedisConfig holds configuration for the Redis store.
type RedisConfig struct {
	URL       string // Redis connection URL (e.g., "redis://localhost:6379")
	KeyPrefix string // Prefix for hash keys (default: "miztl:cache:")
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	return NewRedisStoreFromClient(client, cfg.KeyPrefix), nil
}

// NewRedisStoreFromClient creates a RedisStore from an existing client.
func NewRedisStoreFromClient(client *redis.Client, keyPrefix string) *RedisStore {
	if keyPrefix == "" {
		keyPrefix = DefaultKeyPrefix
	}
	return &RedisStore{client: client, keyPrefix: keyPrefix}
}

func (s *RedisStore) key(lang string) string {
	return s.keyPrefix + lang
}

// Location implements Store.
func (s *RedisStore) Location(lang string) string {
	return "redis://" + s.client.Options().Addr + "/" + s.key(lang)
}

// Load implements Store.
func (s *RedisStore) Load(ctx context.Context, lang string) (map[string]string, error) {
	entries, err := s.client.HGetAll(ctx, s.key(lang)).Result()
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = map[string]string{}
	}
	return entries, nil
}

// Save implements Store. The hash is replaced in a single transaction.
func (s *RedisStore) Save(ctx context.Context, lang string, entries map[string]string) error {
	key := s.key(lang)

	fields := slices.Sorted(maps.Keys(entries))
	values := make([]any, 0, 2*len(fields))
	for _, f := range fields {
		values = append(values, f, entries[f])
	}

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		if len(values) > 0 {
			pipe.HSet(ctx, key, values...)
		}
		return nil
	})
	return err
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Ping tests the Redis connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Verify RedisStore implements Store
var _ Store = (*RedisStore)(nil)

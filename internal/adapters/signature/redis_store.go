package signature

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisStore keeps signatures in a single Redis hash
type RedisStore struct {
	client *redis.Client
	key    string
	logger *zap.Logger
}

// NewRedisStore connects to the Redis server named by url
func NewRedisStore(ctx context.Context, url, key string, logger *zap.Logger) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return NewRedisStoreWithClient(client, key, logger), nil
}

// NewRedisStoreWithClient wraps an existing client
func NewRedisStoreWithClient(client *redis.Client, key string, logger *zap.Logger) *RedisStore {
	return &RedisStore{
		client: client,
		key:    key,
		logger: logger,
	}
}

// Load returns every field of the hash
func (s *RedisStore) Load(ctx context.Context) (map[string]string, error) {
	signatures, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read signatures from redis: %w", err)
	}
	if signatures == nil {
		signatures = map[string]string{}
	}
	return signatures, nil
}

// Save replaces the hash in a MULTI/EXEC block
func (s *RedisStore) Save(ctx context.Context, signatures map[string]string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.key)
		if len(signatures) == 0 {
			return nil
		}
		values := make([]interface{}, 0, len(signatures)*2)
		for name, body := range signatures {
			values = append(values, name, body)
		}
		pipe.HSet(ctx, s.key, values...)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to write signatures to redis: %w", err)
	}

	s.logger.Debug("Signatures written",
		zap.String("driver", "redis"),
		zap.String("key", s.key),
		zap.Int("count", len(signatures)))
	return nil
}

// Close closes the Redis client
func (s *RedisStore) Close() error {
	return s.client.Close()
}

package store

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/redis/go-redis/v9"

	easelerrors "github.com/matzehuels/easel/pkg/errors"
)

// DefaultRedisPrefix namespaces every key the store writes.
const DefaultRedisPrefix = "easel:"

// RedisConfig configures a RedisStore.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
	// TTL expires saved state; zero keeps it forever.
	TTL time.Duration
}

// RedisStore keeps payloads in Redis strings.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore connects to Redis and verifies the connection with PING.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	if cfg.Addr == "" {
		cfg.Addr = "localhost:6379"
	}
	if cfg.Prefix == "" {
		cfg.Prefix = DefaultRedisPrefix
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, easelerrors.Wrap(easelerrors.ErrCodeStorage, err, "connect to redis at %s", cfg.Addr)
	}
	return &RedisStore{client: client, prefix: cfg.Prefix, ttl: cfg.TTL}, nil
}

// Load reads key.
func (s *RedisStore) Load(ctx context.Context, key string) ([]byte, bool, error) {
	var data []byte
	err := RetryWithBackoff(ctx, func() error {
		v, err := s.client.Get(ctx, s.prefix+key).Bytes()
		if err != nil {
			return classify(err)
		}
		data = v
		return nil
	})
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, easelerrors.Wrap(easelerrors.ErrCodeStorage, err, "redis get %s", key)
	}
	return data, true, nil
}

// Save writes key, applying the configured TTL.
func (s *RedisStore) Save(ctx context.Context, key string, data []byte) error {
	err := RetryWithBackoff(ctx, func() error {
		return classify(s.client.Set(ctx, s.prefix+key, data, s.ttl).Err())
	})
	if err != nil {
		return easelerrors.Wrap(easelerrors.ErrCodeStorage, err, "redis set %s", key)
	}
	return nil
}

// Delete removes key.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return easelerrors.Wrap(easelerrors.ErrCodeStorage, err, "redis del %s", key)
	}
	return nil
}

// Close closes the client.
func (s *RedisStore) Close() error { return s.client.Close() }

// classify marks network failures as retryable.
func classify(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return Retryable(err)
	}
	return err
}

var _ Store = (*RedisStore)(nil)

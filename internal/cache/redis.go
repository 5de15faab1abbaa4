package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ErrMiss is returned by Get when the key is absent or caching is disabled.
var ErrMiss = redis.Nil

// Cache is a JSON value cache on Redis. A zero-configured Cache is disabled:
// writes are dropped and every read misses.
type Cache struct {
	client *redis.Client
}

// New connects to redisURL. An empty URL, a bad URL or a failed ping all
// yield a disabled cache; the server runs without caching in that case.
func New(redisURL string, logger *zap.Logger) *Cache {
	if redisURL == "" {
		logger.Info("Redis URL not provided, caching disabled")
		return &Cache{}
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		logger.Warn("Failed to parse Redis URL, caching disabled", zap.Error(err))
		return &Cache{}
	}

	client := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("Failed to connect to Redis, caching disabled", zap.Error(err))
		client.Close()
		return &Cache{}
	}

	logger.Info("Redis cache initialized", zap.String("addr", opt.Addr))
	return &Cache{client: client}
}

// NewWithClient wraps an existing client.
func NewWithClient(client *redis.Client) *Cache {
	return &Cache{client: client}
}

func (c *Cache) Enabled() bool {
	return c != nil && c.client != nil
}

func (c *Cache) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Close()
}

// Set stores a value in cache with expiration
func (c *Cache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if !c.Enabled() {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, key, data, expiration).Err()
}

// Get retrieves a value from cache
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) error {
	if !c.Enabled() {
		return ErrMiss
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return err
	}

	return json.Unmarshal(data, dest)
}

// Delete removes a key from cache
func (c *Cache) Delete(ctx context.Context, key string) error {
	if !c.Enabled() {
		return nil
	}

	return c.client.Del(ctx, key).Err()
}

func IsMiss(err error) bool {
	return errors.Is(err, ErrMiss)
}

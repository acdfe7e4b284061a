// Package cache stores rendered search responses keyed by query and result limit.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss indicates a cache miss.
var ErrCacheMiss = errors.New("cache miss")

// Client defines the cache interface.
type Client interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Close() error
}

// RedisClient implements Client using Redis.
type RedisClient struct {
	client *redis.Client
	prefix string
}

// RedisConfig holds Redis connection configuration.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// NewRedisClient creates a new Redis cache client and pings the server.
func NewRedisClient(cfg RedisConfig) (*RedisClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrapf(err, "redis ping %s failed", cfg.Addr)
	}

	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "propsearch:"
	}
	return &RedisClient{client: client, prefix: prefix}, nil
}

// Get retrieves a value from cache.
func (c *RedisClient) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, errors.Wrap(err, "redis get")
	}
	return val, nil
}

// Set stores a value in cache with TTL.
func (c *RedisClient) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.prefix+key, value, ttl).Err(); err != nil {
		return errors.Wrap(err, "redis set")
	}
	return nil
}

// Close closes the Redis connection.
func (c *RedisClient) Close() error {
	return c.client.Close()
}

// MemoryClient is an in-process Client, used when no Redis is configured
// for the CLI and in tests. Expired entries are dropped on read.
type MemoryClient struct {
	mu   sync.Mutex
	data map[string]memoryEntry
	now  func() time.Time
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// NewMemoryClient creates an empty in-memory cache.
func NewMemoryClient() *MemoryClient {
	return &MemoryClient{data: map[string]memoryEntry{}, now: time.Now}
}

// Get retrieves a value from cache.
func (c *MemoryClient) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.data[key]
	if !ok {
		return nil, ErrCacheMiss
	}
	if !e.expiresAt.IsZero() && c.now().After(e.expiresAt) {
		delete(c.data, key)
		return nil, ErrCacheMiss
	}
	return e.value, nil
}

// Set stores a value; a non-positive ttl never expires.
func (c *MemoryClient) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := memoryEntry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expiresAt = c.now().Add(ttl)
	}
	c.data[key] = e
	return nil
}

// Close is a no-op for memory cache.
func (c *MemoryClient) Close() error {
	return nil
}

// SearchKey builds the cache key of a search. The query is hashed verbatim:
// extraction is sensitive to case and spacing, so only identical queries
// may share a response.
func SearchKey(query string, topK int) string {
	sum := sha256.Sum256([]byte(query))
	return "search:" + strconv.Itoa(topK) + ":" + hex.EncodeToString(sum[:16])
}

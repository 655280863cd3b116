package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// TTL constants
const (
	TTLUnread  = 1 * time.Minute // unread badge, near real-time
	TTLDefault = 5 * time.Minute
)

// PrefixUnread cache key prefix of unread counts
const PrefixUnread = "notify:unread:"

// ErrUnavailable returned by reads when no Redis client is configured
var ErrUnavailable = errors.New("redis not available")

// Service Redis cache used by the notification read side
type Service interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)

	GetUnreadCount(ctx context.Context, userID uint64) (int64, error)
	SetUnreadCount(ctx context.Context, userID uint64, count int64) error
	InvalidateUnreadCount(ctx context.Context, userID uint64) error

	IsAvailable() bool
	Ping(ctx context.Context) error
}

type redisCache struct {
	client *redis.Client
}

// NewService creates a cache service; a nil client yields a no-op cache
func NewService(client *redis.Client) Service {
	return &redisCache{client: client}
}

func (c *redisCache) IsAvailable() bool {
	return c.client != nil
}

func (c *redisCache) Ping(ctx context.Context) error {
	if c.client == nil {
		return ErrUnavailable
	}
	return c.client.Ping(ctx).Err()
}

func (c *redisCache) Get(ctx context.Context, key string, dest interface{}) error {
	if c.client == nil {
		return ErrUnavailable
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return err
	}

	return json.Unmarshal(data, dest)
}

func (c *redisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if c.client == nil {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, key, data, ttl).Err()
}

func (c *redisCache) Delete(ctx context.Context, keys ...string) error {
	if c.client == nil || len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

func (c *redisCache) Exists(ctx context.Context, key string) (bool, error) {
	if c.client == nil {
		return false, nil
	}
	n, err := c.client.Exists(ctx, key).Result()
	return n > 0, err
}

// UnreadKey cache key of a user's unread notification count
func UnreadKey(userID uint64) string {
	return PrefixUnread + strconv.FormatUint(userID, 10)
}

func (c *redisCache) GetUnreadCount(ctx context.Context, userID uint64) (int64, error) {
	if c.client == nil {
		return 0, ErrUnavailable
	}
	n, err := c.client.Get(ctx, UnreadKey(userID)).Int64()
	if err != nil {
		return 0, fmt.Errorf("unread count cache miss: %w", err)
	}
	return n, nil
}

func (c *redisCache) SetUnreadCount(ctx context.Context, userID uint64, count int64) error {
	if c.client == nil {
		return nil
	}
	return c.client.Set(ctx, UnreadKey(userID), count, TTLUnread).Err()
}

func (c *redisCache) InvalidateUnreadCount(ctx context.Context, userID uint64) error {
	return c.Delete(ctx, UnreadKey(userID))
}

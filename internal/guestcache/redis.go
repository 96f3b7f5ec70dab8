package guestcache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "guest_session:"

// RedisCache remembers guest session expiry so hot paths skip the database.
// Entries live until the session expires.
type RedisCache struct {
	client *redis.Client
}

func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

func New(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func key(guestID string) string { return keyPrefix + guestID }

// Get returns the cached expiry; ok is false on a cache miss.
func (c *RedisCache) Get(ctx context.Context, guestID string) (time.Time, bool, error) {
	v, err := c.client.Get(ctx, key(guestID)).Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	unix, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("corrupt guest cache entry %q: %w", v, err)
	}
	return time.Unix(unix, 0).UTC(), true, nil
}

func (c *RedisCache) Set(ctx context.Context, guestID string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return c.Delete(ctx, guestID)
	}
	return c.client.Set(ctx, key(guestID), strconv.FormatInt(expiresAt.Unix(), 10), ttl).Err()
}

func (c *RedisCache) Delete(ctx context.Context, guestID string) error {
	return c.client.Del(ctx, key(guestID)).Err()
}

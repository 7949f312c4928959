package revocation

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultPrefix = "lifestyle:revoked:"

// redisClient is the part of *redis.Client the denylist needs.
type redisClient interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Exists(ctx context.Context, keys ...string) *redis.IntCmd
	Close() error
}

// RedisDenylist stores revoked ids as keys that expire together with the
// token, so it needs no purging.
type RedisDenylist struct {
	rdb    redisClient
	prefix string
	now    func() time.Time
}

var newRedisClient = func(opt *redis.Options) *redis.Client { return redis.NewClient(opt) }

var pingRedis = func(ctx context.Context, c *redis.Client) error { return c.Ping(ctx).Err() }

// NewRedisDenylist connects to redisURL (redis://:pass@host:6379/0) and
// fails fast when the server does not answer.
func NewRedisDenylist(ctx context.Context, redisURL string) (*RedisDenylist, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	rdb := newRedisClient(opt)
	if err := pingRedis(ctx, rdb); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RedisDenylist{rdb: rdb, prefix: defaultPrefix, now: time.Now}, nil
}

func (d *RedisDenylist) key(tokenID string) string { return d.prefix + tokenID }

func (d *RedisDenylist) Revoke(ctx context.Context, tokenID string, userID int64, expiresAt time.Time) error {
	ttl := expiresAt.Sub(d.now())
	if ttl <= 0 {
		return nil
	}
	if err := d.rdb.Set(ctx, d.key(tokenID), strconv.FormatInt(userID, 10), ttl).Err(); err != nil {
		return fmt.Errorf("error revoking token: %w", err)
	}
	return nil
}

func (d *RedisDenylist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := d.rdb.Exists(ctx, d.key(tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("error checking revoked token: %w", err)
	}
	return n > 0, nil
}

func (d *RedisDenylist) Close() error { return d.rdb.Close() }

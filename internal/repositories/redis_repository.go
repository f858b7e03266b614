package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRepository keeps revoked token ids and cached MLS responses.
type RedisRepository struct {
	rdb *redis.Client
}

func NewRedisRepository(rdb *redis.Client) *RedisRepository {
	return &RedisRepository{rdb: rdb}
}

func (r *RedisRepository) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	exists, err := r.rdb.Exists(ctx, "blacklist:"+jti).Result()
	return exists == 1, err
}

// Blacklist revokes jti until the token would have expired anyway.
func (r *RedisRepository) Blacklist(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return r.rdb.Set(ctx, "blacklist:"+jti, "true", ttl).Err()
}

// Revoke blacklists jti with SET NX. It reports false when jti was already
// revoked, so only one caller can redeem a token.
func (r *RedisRepository) Revoke(ctx context.Context, jti string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		return false, nil
	}
	return r.rdb.SetNX(ctx, "blacklist:"+jti, "true", ttl).Result()
}

// CacheGet returns the cached payload and whether it was present.
func (r *RedisRepository) CacheGet(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := r.rdb.Get(ctx, "cache:"+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (r *RedisRepository) CacheSet(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.rdb.Set(ctx, "cache:"+key, value, ttl).Err()
}

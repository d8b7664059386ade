package redis

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	TrendingKey        = "trending"
	TrendingTmpPrefix  = "trending:tmp:"
	DefaultTrendingTTL = time.Hour
)

type TrendingRepository struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewTrendingRepository(client *redis.Client, ttl time.Duration) *TrendingRepository {
	if ttl <= 0 {
		ttl = DefaultTrendingTTL
	}
	return &TrendingRepository{Client: client, TTL: ttl}
}

// Get 未命中返回 ok=false
func (r *TrendingRepository) Get(ctx context.Context) ([]byte, bool, error) {
	val, err := r.Client.Get(ctx, TrendingKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

// Set 定时任务用，直接覆盖
func (r *TrendingRepository) Set(ctx context.Context, val []byte) error {
	return r.Client.SetEx(ctx, TrendingKey, val, r.TTL).Err()
}

// SetIfAbsent 读侧回填用：先写临时 key 再 RENAMENX，
// 已经有值(比如定时任务刚写完)就丢弃自己算的结果
func (r *TrendingRepository) SetIfAbsent(ctx context.Context, val []byte) (bool, error) {
	tmp := TrendingTmpPrefix + uuid.NewString()
	if err := r.Client.SetEx(ctx, tmp, val, r.TTL).Err(); err != nil {
		return false, err
	}
	ok, err := r.Client.RenameNX(ctx, tmp, TrendingKey).Result()
	if err != nil || !ok {
		_ = r.Client.Del(ctx, tmp).Err()
		return false, err
	}
	// RENAME 会带上临时 key 的 TTL，这里再确认一次
	if err := r.Client.Expire(ctx, TrendingKey, r.TTL).Err(); err != nil {
		return true, err
	}
	return true, nil
}

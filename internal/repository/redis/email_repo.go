package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	DefaultEmailCodeTTL = 4 * time.Hour
	EmailCodePrefix     = "email:code"
)

// EmailRepository 按邮箱地址存 "<count>:<code>"，count 是窗口内已发次数
type EmailRepository struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewEmailRepository(client *redis.Client, ttl time.Duration) *EmailRepository {
	if ttl <= 0 {
		ttl = DefaultEmailCodeTTL
	}
	return &EmailRepository{Client: client, TTL: ttl}
}

func (e *EmailRepository) key(address string) string {
	return fmt.Sprintf("%s:%s", EmailCodePrefix, strings.ToLower(address))
}

// Get 不存在时返回 0；值格式不对按 0 处理，下一次写入会覆盖
func (e *EmailRepository) Get(ctx context.Context, address string) (int, string, error) {
	val, err := e.Client.Get(ctx, e.key(address)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, "", nil
	}
	if err != nil {
		return 0, "", err
	}
	count, code := ParseCodeEntry(val)
	return count, code, nil
}

// Set SETEX 覆盖旧值并刷新窗口
func (e *EmailRepository) Set(ctx context.Context, address string, count int, code string) error {
	return e.Client.SetEx(ctx, e.key(address), FormatCodeEntry(count, code), e.TTL).Err()
}

func FormatCodeEntry(count int, code string) string {
	return fmt.Sprintf("%d:%s", count, code)
}

func ParseCodeEntry(val string) (int, string) {
	countStr, code, ok := strings.Cut(val, ":")
	if !ok {
		return 0, ""
	}
	count, err := strconv.Atoi(countStr)
	if err != nil || count < 0 {
		return 0, ""
	}
	return count, code
}

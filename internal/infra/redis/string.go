package redis

import (
	"context"
	"errors"
	"time"

	re "github.com/redis/go-redis/v9"
)

// ErrNil 键不存在
var ErrNil = re.Nil

// Set 设置键值
func (r *Client) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

// Get 获取键值，键不存在返回 ErrNil
func (r *Client) Get(ctx context.Context, key string) (string, error) {
	return r.client.Get(ctx, key).Result()
}

// Delete 删除键
func (r *Client) Delete(ctx context.Context, keys ...string) error {
	return r.client.Del(ctx, keys...).Err()
}

// Exists 检查键是否存在
func (r *Client) Exists(ctx context.Context, key string) (bool, error) {
	res, err := r.client.Exists(ctx, key).Result()
	if err != nil && !errors.Is(err, re.Nil) {
		return false, err
	}
	return res > 0, nil
}

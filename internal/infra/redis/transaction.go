package redis

import (
	"context"
	"time"

	re "github.com/redis/go-redis/v9"
)

// Tx 批量执行操作
func (r *Client) Tx(ctx context.Context, fn func(pipe re.Pipeliner) error) error {
	_, err := r.client.TxPipelined(ctx, fn)
	return err
}

// Incr 固定窗口计数：首次写入时设置过期，返回窗口内的计数
func (r *Client) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	var incr *re.IntCmd
	err := r.Tx(ctx, func(pipe re.Pipeliner) error {
		// SET NX EX 只在窗口开始时生效，INCR 保留 TTL
		pipe.SetNX(ctx, key, 0, window)
		incr = pipe.Incr(ctx, key)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

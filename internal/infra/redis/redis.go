package redis

import (
	"context"
	"fmt"

	"github.com/alicebob/miniredis/v2"
	re "github.com/redis/go-redis/v9"
)

type Config struct {
	Addr     string
	Password string
	DB       int
}

type Client struct {
	client *re.Client
	closer func()
}

// NewClient 初始化客户端
func NewClient(cfg Config) *Client {
	rdb := re.NewClient(&re.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &Client{client: rdb, closer: func() {}}
}

// NewEmbedded 进程内 redis（未配置 redis.addr 时的开发模式）
func NewEmbedded() (*Client, error) {
	srv, err := miniredis.Run()
	if err != nil {
		return nil, fmt.Errorf("redis: embedded: %w", err)
	}
	c := NewClient(Config{Addr: srv.Addr()})
	c.closer = srv.Close
	return c, nil
}

// Ping 测试连接
func (r *Client) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *Client) Close() error {
	err := r.client.Close()
	r.closer()
	return err
}

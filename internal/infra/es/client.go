package es

import (
	"context"
	"fmt"
	"io"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

type Client struct {
	ES *elasticsearch.Client
}

type Config struct {
	Addresses []string
	Username  string
	Password  string
}

func New(cfg Config) (*Client, error) {
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: cfg.Addresses,
		Username:  cfg.Username,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("es: %w", err)
	}

	return &Client{ES: es}, nil
}

// Ping 集群可达
func (c *Client) Ping(ctx context.Context) error {
	res, err := c.ES.Ping(c.ES.Ping.WithContext(ctx))
	return check("ping", res, err)
}

// check 关闭响应体，4xx/5xx 视为错误
func check(op string, res *esapi.Response, err error) error {
	if err != nil {
		return fmt.Errorf("es: %s: %w", op, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("es: %s: %s", op, res.String())
	}
	_, _ = io.Copy(io.Discard, res.Body)
	return nil
}

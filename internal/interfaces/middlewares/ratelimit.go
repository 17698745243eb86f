package middlewares

import (
	"context"
	"ddi/internal/config"
	"ddi/internal/infra/container"
	"ddi/internal/infra/routing"
	"ddi/internal/pkg/response"
	"math"
	"strconv"
	"time"
)

// Counter 固定窗口计数
type Counter interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

var CounterAlias = container.NewAlias[Counter]("ratelimit.Counter")

// RateLimit 按路由 + 客户端地址限流
type RateLimit struct {
	counter Counter
	limit   int64
	window  time.Duration
}

func NewRateLimit(counter Counter, limit int, window time.Duration) *RateLimit {
	return &RateLimit{counter: counter, limit: int64(limit), window: window}
}

func (m *RateLimit) OnRequest(next routing.HandlerFunc, r *routing.Request) (*routing.Response, error) {
	key := "ratelimit:" + r.Route + ":" + r.Info.RemoteAddr
	n, err := m.counter.Incr(r.Context(), key, m.window)
	if err != nil {
		return nil, err
	}
	if n > m.limit {
		res := response.Error(response.TooManyRequests("too many requests"))
		res.SetHeader("Retry-After", retryAfter(m.window))
		return res, nil
	}
	return next(r)
}

// retryAfter 向上取整到秒，不足一秒按 1 秒
func retryAfter(window time.Duration) string {
	return strconv.Itoa(max(1, int(math.Ceil(window.Seconds()))))
}

var RateLimitType = container.Define("RateLimit", func(c *container.Container) (*RateLimit, error) {
	counter, err := container.Resolve[Counter](c, CounterAlias)
	if err != nil {
		return nil, err
	}
	cfg, err := container.Resolve[*config.AppConfig](c, config.AppConfigAlias)
	if err != nil {
		return nil, err
	}
	return NewRateLimit(counter, cfg.RateLimit.Limit, cfg.RateLimit.Window), nil
}, routing.AsMiddleware(routing.MiddlewareOptions{Priority: 100}))

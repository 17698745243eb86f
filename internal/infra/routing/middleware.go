package routing

import (
	"cmp"
	"ddi/internal/infra/container"
	"ddi/internal/infra/metadata"
	"fmt"
	"slices"
)

// Middleware 不调用 next 直接返回即短路后续链路
type Middleware interface {
	OnRequest(next HandlerFunc, r *Request) (*Response, error)
}

type MiddlewareFunc func(next HandlerFunc, r *Request) (*Response, error)

func (f MiddlewareFunc) OnRequest(next HandlerFunc, r *Request) (*Response, error) {
	return f(next, r)
}

// MiddlewareOptions Priority 越大越靠外层；Global 作用于所有路由
type MiddlewareOptions struct {
	Priority int
	Global   bool
}

var (
	MiddlewareKey = metadata.NewKey[MiddlewareOptions]("routing.middleware")
	UsesKey       = metadata.NewListKey[*container.Type]("routing.uses")
)

func AsMiddleware(opts MiddlewareOptions) container.Option {
	return container.WithMetadata(MiddlewareKey, opts)
}

// Uses 挂到控制器（所有路由）或单个路由上
func Uses(mw ...*container.Type) container.Option {
	return container.WithMetadata(UsesKey, mw)
}

type boundMiddleware struct {
	name     string
	priority int
	mw       Middleware
}

// middlewareChain 候选 = 全局 ∪ 控制器 ∪ 路由，去重保留首次位置；
// 按优先级降序稳定排序，同优先级保持发现顺序
func middlewareChain(c *container.Container, sets ...[]*container.Type) ([]boundMiddleware, error) {
	var candidates []*container.Type
	for _, set := range sets {
		for _, t := range set {
			if !slices.Contains(candidates, t) {
				candidates = append(candidates, t)
			}
		}
	}

	chain := make([]boundMiddleware, 0, len(candidates))
	for _, t := range candidates {
		opts, ok := metadata.Get(t.Metadata(), MiddlewareKey)
		if !ok {
			return nil, fmt.Errorf("%w: %s is not marked as middleware", ErrNotMiddleware, t.Name())
		}
		v, err := c.Resolve(t)
		if err != nil {
			return nil, err
		}
		mw, ok := v.(Middleware)
		if !ok {
			return nil, fmt.Errorf("%w: %s built %T", ErrNotMiddleware, t.Name(), v)
		}
		chain = append(chain, boundMiddleware{name: t.Name(), priority: opts.Priority, mw: mw})
	}

	slices.SortStableFunc(chain, func(a, b boundMiddleware) int {
		return cmp.Compare(b.priority, a.priority)
	})
	return chain, nil
}

// compose 右折叠：chain[0] 在最外层
func compose(chain []boundMiddleware, h HandlerFunc) HandlerFunc {
	next := h
	for i := len(chain) - 1; i >= 0; i-- {
		mw, inner := chain[i].mw, next
		next = func(r *Request) (*Response, error) {
			return mw.OnRequest(inner, r)
		}
	}
	return next
}

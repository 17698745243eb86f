package routing

import (
	"ddi/internal/infra/container"
	"net/http"
	"slices"
)

// Dispatcher 按顺序匹配，先命中先处理（不做最佳匹配）
type Dispatcher struct {
	routes   []*CompiledRoute
	fallback HandlerFunc
}

// NewDispatcher fallback 为 nil 时使用 NotFound；fallback 不经过中间件
func NewDispatcher(routes []*CompiledRoute, fallback HandlerFunc) *Dispatcher {
	if fallback == nil {
		fallback = NotFound
	}
	return &Dispatcher{routes: slices.Clone(routes), fallback: fallback}
}

func (d *Dispatcher) ServeRequest(req *http.Request, info ServeInfo) (*Response, error) {
	for _, route := range d.routes {
		params, ok := route.Match(req.Method, req.URL.Path)
		if !ok {
			continue
		}
		return route.serve(&Request{Request: req, Params: params, Info: info, Route: route.Pattern})
	}
	return d.fallback(&Request{Request: req, Params: Params{}, Info: info})
}

func (d *Dispatcher) Routes() []*CompiledRoute {
	return slices.Clone(d.routes)
}

// Serve 每次调用都按当前注册重新编译
func Serve(c *container.Container, fallback HandlerFunc) (ServeHandler, error) {
	routes, err := Compile(c)
	if err != nil {
		return nil, err
	}
	return NewDispatcher(routes, fallback).ServeRequest, nil
}

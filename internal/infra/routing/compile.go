package routing

import (
	"ddi/internal/infra/container"
	"ddi/internal/infra/metadata"
	"fmt"
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CompiledRoute 已绑定控制器实例并折叠好中间件链的路由
type CompiledRoute struct {
	Pattern    string
	Methods    []string
	Controller string
	Handler    string
	Middleware []string

	serve HandlerFunc
	mux   *chi.Mux
}

func (r *CompiledRoute) Match(method, path string) (Params, bool) {
	rctx := chi.NewRouteContext()
	if !r.mux.Match(rctx, method, path) {
		return nil, false
	}
	params := make(Params, len(rctx.URLParams.Keys))
	for i, k := range rctx.URLParams.Keys {
		params[k] = rctx.URLParams.Values[i]
	}
	return params, true
}

// Compile 扫描所有控制器，按注册顺序、再按路由声明顺序生成路由。
// 任一解析失败即整体失败。
func Compile(c *container.Container) ([]*CompiledRoute, error) {
	types := c.Types()

	var globals []*container.Type
	for _, t := range types {
		if opts, ok := metadata.Get(t.Metadata(), MiddlewareKey); ok && opts.Global {
			globals = append(globals, t)
		}
	}

	var routes []*CompiledRoute
	for _, t := range types {
		if ok, _ := metadata.Get(t.Metadata(), ControllerKey); !ok {
			continue
		}
		instance, err := c.Resolve(t)
		if err != nil {
			return nil, err
		}
		declared, _ := metadata.Get(t.Metadata(), RoutesKey)
		scoped, _ := metadata.Get(t.Metadata(), UsesKey)

		for _, rt := range declared {
			handler, ok := rt.bind(instance)
			if !ok {
				return nil, fmt.Errorf("%w: %s built %T which has no method %s", ErrNotController, t.Name(), instance, rt.Handler)
			}
			chain, err := middlewareChain(c, globals, scoped, rt.Uses)
			if err != nil {
				return nil, err
			}
			compiled, err := newCompiledRoute(t.Name(), rt, compose(chain, handler))
			if err != nil {
				return nil, err
			}
			for _, mw := range chain {
				compiled.Middleware = append(compiled.Middleware, mw.name)
			}
			c.Logger().Debug("discovered route",
				zap.Strings("methods", compiled.Methods),
				zap.String("pattern", compiled.Pattern),
				zap.String("controller", compiled.Controller),
				zap.String("handler", compiled.Handler),
				zap.Strings("middleware", compiled.Middleware),
			)
			routes = append(routes, compiled)
		}
	}
	return routes, nil
}

func newCompiledRoute(controller string, rt Route, h HandlerFunc) (route *CompiledRoute, err error) {
	// chi 对非法方法和模式直接 panic
	defer func() {
		if p := recover(); p != nil {
			route, err = nil, fmt.Errorf("%w: %s %v: %v", ErrInvalidRoute, controller, rt.Pattern, p)
		}
	}()

	mux := chi.NewMux()
	for _, m := range rt.Methods {
		mux.MethodFunc(m, rt.Pattern, noop)
	}
	return &CompiledRoute{
		Pattern:    rt.Pattern,
		Methods:    slices.Clone(rt.Methods),
		Controller: controller,
		Handler:    rt.Handler,
		serve:      h,
		mux:        mux,
	}, nil
}

func noop(http.ResponseWriter, *http.Request) {}

package routing

import (
	"ddi/internal/infra/container"
	"ddi/internal/infra/metadata"
	"net/http"
	"reflect"
	"runtime"
	"strings"
)

var (
	ControllerKey = metadata.NewKey[bool]("routing.controller")
	RoutesKey     = metadata.NewListKey[Route]("routing.routes")
)

// Route 控制器方法的路由声明，未指定方法时默认 GET
type Route struct {
	Pattern string
	Methods []string
	Uses    []*container.Type
	// 绑定方法名，仅用于日志与路由列表
	Handler string

	bind func(controller any) (HandlerFunc, bool)
}

// Controller 标记为控制器并声明路由，可多次传入，按声明顺序追加
func Controller(routes ...Route) container.Option {
	return func(t *container.Type) {
		metadata.Set(t.Metadata(), ControllerKey, true)
		metadata.Set(t.Metadata(), RoutesKey, routes)
	}
}

// Match 绑定控制器 C 的方法，一般传方法表达式，如 (*UserController).Get
func Match[C any](methods []string, pattern string, h func(C, *Request) (*Response, error), uses ...*container.Type) Route {
	normalized := make([]string, 0, len(methods))
	for _, m := range methods {
		normalized = append(normalized, strings.ToUpper(m))
	}
	if len(normalized) == 0 {
		normalized = append(normalized, http.MethodGet)
	}
	return Route{
		Pattern: pattern,
		Methods: normalized,
		Uses:    uses,
		Handler: funcName(h),
		bind: func(controller any) (HandlerFunc, bool) {
			ctrl, ok := controller.(C)
			if !ok {
				return nil, false
			}
			return func(r *Request) (*Response, error) {
				return h(ctrl, r)
			}, true
		},
	}
}

func Get[C any](pattern string, h func(C, *Request) (*Response, error), uses ...*container.Type) Route {
	return Match([]string{http.MethodGet}, pattern, h, uses...)
}

func Post[C any](pattern string, h func(C, *Request) (*Response, error), uses ...*container.Type) Route {
	return Match([]string{http.MethodPost}, pattern, h, uses...)
}

func Put[C any](pattern string, h func(C, *Request) (*Response, error), uses ...*container.Type) Route {
	return Match([]string{http.MethodPut}, pattern, h, uses...)
}

func Patch[C any](pattern string, h func(C, *Request) (*Response, error), uses ...*container.Type) Route {
	return Match([]string{http.MethodPatch}, pattern, h, uses...)
}

func Delete[C any](pattern string, h func(C, *Request) (*Response, error), uses ...*container.Type) Route {
	return Match([]string{http.MethodDelete}, pattern, h, uses...)
}

func funcName(fn any) string {
	f := runtime.FuncForPC(reflect.ValueOf(fn).Pointer())
	if f == nil {
		return "anonymous"
	}
	name := f.Name()
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	return strings.TrimSuffix(name, "-fm")
}

func Head[C any](pattern string, h func(C, *Request) (*Response, error), uses ...*container.Type) Route {
	return Match([]string{http.MethodHead}, pattern, h, uses...)
}

func Options[C any](pattern string, h func(C, *Request) (*Response, error), uses ...*container.Type) Route {
	return Match([]string{http.MethodOptions}, pattern, h, uses...)
}

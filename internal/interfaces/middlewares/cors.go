package middlewares

import (
	"ddi/internal/infra/container"
	"ddi/internal/infra/routing"
	"ddi/internal/pkg/response"
	"net/http"
)

// CORS 允许任意 Origin（回写请求的 Origin，不能用 *）
type CORS struct{}

func (CORS) OnRequest(next routing.HandlerFunc, r *routing.Request) (*routing.Response, error) {
	res, err := next(r)
	if res != nil {
		corsHeaders(res, r.Header.Get("Origin"))
	}
	return res, err
}

func corsHeaders(res *routing.Response, origin string) {
	if origin != "" {
		res.SetHeader("Access-Control-Allow-Origin", origin)
	}
	res.SetHeader("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, PATCH, OPTIONS")
	res.SetHeader("Access-Control-Allow-Headers", "Origin, Authorization, Content-Type, Accept, X-Requested-With, X-Request-ID")
	res.SetHeader("Access-Control-Expose-Headers", "Authorization, X-Request-ID")
	res.SetHeader("Access-Control-Allow-Credentials", "true")
	res.SetHeader("Access-Control-Max-Age", "86400")
}

// Preflight 作为 fallback：OPTIONS 返回 204，其它请求返回 404 响应体
func Preflight(r *routing.Request) (*routing.Response, error) {
	if r.Method == http.MethodOptions {
		res := routing.NoContent()
		corsHeaders(res, r.Header.Get("Origin"))
		return res, nil
	}
	return response.Error(response.NotFound("Not Found")), nil
}

var CORSType = container.Define("CORS", func(*container.Container) (CORS, error) {
	return CORS{}, nil
}, routing.AsMiddleware(routing.MiddlewareOptions{Priority: 800, Global: true}))

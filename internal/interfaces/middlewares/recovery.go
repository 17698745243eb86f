package middlewares

import (
	"ddi/internal/infra/container"
	"ddi/internal/infra/logger"
	"ddi/internal/infra/routing"
	"ddi/internal/pkg/response"
	"fmt"
	"net/http"
	"runtime/debug"
)

// Recovery 最外层：panic 与错误统一转成响应体
type Recovery struct {
	log *logger.Logger
}

func (m *Recovery) OnRequest(next routing.HandlerFunc, r *routing.Request) (res *routing.Response, err error) {
	defer func() {
		if p := recover(); p != nil {
			m.log.Error("panic recovered", r.Method, r.URL.Path, fmt.Sprint(p), string(debug.Stack()))
			res, err = response.Error(fmt.Errorf("panic: %v", p)), nil
		}
	}()

	res, err = next(r)
	if err == nil {
		return res, nil
	}
	appErr := response.AsAppError(err)
	if appErr.Code >= http.StatusInternalServerError {
		m.log.Error(r.Method, r.URL.Path, err)
	}
	return response.Error(appErr), nil
}

var RecoveryType = container.Define("Recovery", func(c *container.Container) (*Recovery, error) {
	log, err := logger.Resolve(c, "Recovery")
	if err != nil {
		return nil, err
	}
	return &Recovery{log: log}, nil
}, routing.AsMiddleware(routing.MiddlewareOptions{Priority: 3000, Global: true}))

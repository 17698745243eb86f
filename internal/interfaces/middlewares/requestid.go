package middlewares

import (
	"ddi/internal/infra/container"
	"ddi/internal/infra/routing"

	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-ID"

// RequestID 沿用客户端传入的 X-Request-ID，没有则生成
type RequestID struct{}

func (RequestID) OnRequest(next routing.HandlerFunc, r *routing.Request) (*routing.Response, error) {
	id := r.Header.Get(RequestIDHeader)
	if id == "" {
		id = uuid.NewString()
		r.Header.Set(RequestIDHeader, id)
	}
	res, err := next(r)
	if res != nil {
		res.SetHeader(RequestIDHeader, id)
	}
	return res, err
}

var RequestIDType = container.Define("RequestID", func(*container.Container) (RequestID, error) {
	return RequestID{}, nil
}, routing.AsMiddleware(routing.MiddlewareOptions{Priority: 2000, Global: true}))

package middlewares

import (
	"context"
	"ddi/internal/domain/user"
	"ddi/internal/infra/container"
	"ddi/internal/infra/routing"
	"ddi/internal/pkg/response"
	"strings"
)

// TokenParser 校验访问令牌
type TokenParser interface {
	ParseAccessToken(token string) (*user.Claims, error)
}

type claimsKey struct{}

// ClaimsFrom 取出 Auth 写入的令牌声明
func ClaimsFrom(ctx context.Context) (*user.Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(*user.Claims)
	return claims, ok
}

// WithClaims 测试与内部调用使用
func WithClaims(ctx context.Context, claims *user.Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

type Auth struct {
	tokens TokenParser
}

func NewAuth(tokens TokenParser) *Auth {
	return &Auth{tokens: tokens}
}

func (m *Auth) OnRequest(next routing.HandlerFunc, r *routing.Request) (*routing.Response, error) {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return response.Error(response.Unauthorized("Token must be not empty")), nil
	}
	claims, err := m.tokens.ParseAccessToken(token)
	if err != nil {
		return response.Error(err), nil
	}
	r.Request = r.WithContext(WithClaims(r.Context(), claims))
	return next(r)
}

var AuthType = container.Define("Auth", func(c *container.Container) (*Auth, error) {
	svc, err := container.Resolve[*user.Service](c, user.ServiceType)
	if err != nil {
		return nil, err
	}
	return NewAuth(svc), nil
}, routing.AsMiddleware(routing.MiddlewareOptions{Priority: 0}))

package handlers

import (
	"bytes"
	"context"
	"ddi/internal/config"
	"ddi/internal/domain/user"
	"ddi/internal/infra/container"
	"ddi/internal/infra/logger"
	"ddi/internal/infra/pgsql"
	"ddi/internal/infra/redis"
	"ddi/internal/infra/routing"
	"ddi/internal/interfaces/interceptors"
	"ddi/internal/interfaces/middlewares"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryUsers struct {
	mu    sync.Mutex
	users []*User
}

type User = user.User

func (m *memoryUsers) Create(_ context.Context, u *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *u
	m.users = append(m.users, &copied)
	return nil
}

func (m *memoryUsers) find(match func(*User) bool) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if match(u) {
			copied := *u
			return &copied, nil
		}
	}
	return nil, user.ErrNotFound
}

func (m *memoryUsers) FindByID(_ context.Context, id string) (*User, error) {
	return m.find(func(u *User) bool { return u.ID == id })
}

func (m *memoryUsers) FindByUserName(_ context.Context, name string) (*User, error) {
	return m.find(func(u *User) bool { return u.UserName == name })
}

func (m *memoryUsers) UpdateAvatar(_ context.Context, id, avatar string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ID == id {
			u.Avatar = avatar
			return nil
		}
	}
	return user.ErrNotFound
}

func (m *memoryUsers) List(_ context.Context, page, size int, _ string) (*pgsql.PageResult[User], error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := &pgsql.PageResult[User]{Page: page, PageSize: size, Total: int64(len(m.users)), PageCount: 1}
	for _, u := range m.users {
		out.List = append(out.List, *u)
	}
	return out, nil
}

type nopEvents struct{}

func (nopEvents) Publish(context.Context, string, string, any) error { return nil }

type memoryAvatars struct {
	objects map[string][]byte
}

func (m *memoryAvatars) Upload(_ context.Context, name string, r io.Reader, _ int64, _ string) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.objects[name] = b
	return nil
}

func (m *memoryAvatars) PresignedURL(_ context.Context, name string, _ time.Duration) (string, error) {
	return "https://avatars.local/" + name, nil
}

type app struct {
	serve   routing.ServeHandler
	avatars *memoryAvatars
}

func newApp(t *testing.T, checkErr error) *app {
	t.Helper()
	s := config.NewService(map[string]string{
		"auth.secret":     "test-secret",
		"app.env":         "prod",
		"ratelimit.limit": "3",
	})
	cfg, err := config.Load(s)
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	kv := redis.NewClient(redis.Config{Addr: mr.Addr()})
	t.Cleanup(func() { _ = kv.Close() })

	c := container.New()
	require.NoError(t, c.Use(logger.Module(logger.MockSinkType), config.Module(s, cfg)))
	require.NoError(t, c.Instance(middlewares.RegistryAlias, prometheus.NewRegistry()))
	require.NoError(t, c.Instance(middlewares.CounterAlias, kv))
	for _, ty := range []*container.Type{
		middlewares.RecoveryType,
		middlewares.RequestIDType,
		interceptors.LoggingInterceptorType,
		middlewares.MetricsType,
		middlewares.CORSType,
		middlewares.RateLimitType,
		middlewares.AuthType,
		UserControllerType,
		HealthControllerType,
	} {
		require.NoError(t, c.Register(ty))
	}

	svc := user.NewService(&memoryUsers{}, nopEvents{}, kv, user.Options{
		Secret:     []byte(cfg.Auth.Secret),
		AccessTTL:  cfg.Auth.AccessTTL,
		RefreshTTL: cfg.Auth.RefreshTTL,
	}, logger.New(logger.VoidSink{}))
	require.NoError(t, c.Instance(user.ServiceType, svc))

	avatars := &memoryAvatars{objects: map[string][]byte{}}
	require.NoError(t, c.Instance(AvatarStoreAlias, avatars))
	require.NoError(t, c.Register(container.Define("FakeHealthCheck", func(*container.Container) (Checker, error) {
		return NewCheck("fake", func(context.Context) error { return checkErr }), nil
	})))

	serve, err := routing.Serve(c, middlewares.Preflight)
	require.NoError(t, err)
	return &app{serve: serve, avatars: avatars}
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (a *app) do(t *testing.T, method, target, body string, headers ...string) (*routing.Response, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	res, err := a.serve(req, routing.ServeInfo{RemoteAddr: "10.0.0.1"})
	require.NoError(t, err)
	require.NotNil(t, res)

	var env envelope
	if strings.HasPrefix(res.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(res.Body, &env))
	}
	return res, env
}

func bearer(token string) []string { return []string{"Authorization", "Bearer " + token} }

func (a *app) registerAndLogin(t *testing.T, name string) (string, user.Tokens) {
	t.Helper()
	res, env := a.do(t, http.MethodPost, "/auth/register", `{"user_name":"`+name+`","password":"password123"}`)
	require.Equal(t, http.StatusCreated, res.Status, string(res.Body))
	var u User
	require.NoError(t, json.Unmarshal(env.Data, &u))

	res, env = a.do(t, http.MethodPost, "/auth/login", `{"user_name":"`+name+`","password":"password123"}`)
	require.Equal(t, http.StatusOK, res.Status, string(res.Body))
	var login struct {
		Tokens user.Tokens `json:"tokens"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &login))
	return u.ID, login.Tokens
}

func TestRegisterAndLogin(t *testing.T) {
	a := newApp(t, nil)

	res, env := a.do(t, http.MethodPost, "/auth/register", `{"user_name":"neo","password":"password123","email":"neo@example.com"}`)
	require.Equal(t, http.StatusCreated, res.Status)
	assert.Equal(t, "created", env.Message)
	assert.Contains(t, string(env.Data), `"user_name":"neo"`)
	assert.NotContains(t, string(env.Data), "password")
	assert.NotEmpty(t, res.Header.Get(middlewares.RequestIDHeader))

	res, env = a.do(t, http.MethodPost, "/auth/register", `{"user_name":"neo","password":"password123"}`)
	assert.Equal(t, http.StatusConflict, res.Status)
	assert.Equal(t, http.StatusConflict, env.Code)

	res, env = a.do(t, http.MethodPost, "/auth/register", `{"user_name":"ab","password":"password123"}`)
	assert.Equal(t, http.StatusBadRequest, res.Status)
	assert.Equal(t, "UserName failed on 'min' validation (param=3)", env.Message)

	res, _ = a.do(t, http.MethodPost, "/auth/login", `{"user_name":"neo","password":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, res.Status)
}

func TestUsersRequireToken(t *testing.T) {
	a := newApp(t, nil)
	id, tokens := a.registerAndLogin(t, "neo")

	res, env := a.do(t, http.MethodGet, "/users/"+id, "")
	assert.Equal(t, http.StatusUnauthorized, res.Status)
	assert.Equal(t, "Token must be not empty", env.Message)

	res, _ = a.do(t, http.MethodGet, "/users/"+id, "", bearer(tokens.RefreshToken)...)
	assert.Equal(t, http.StatusUnauthorized, res.Status)

	res, env = a.do(t, http.MethodGet, "/users/"+id, "", bearer(tokens.AccessToken)...)
	require.Equal(t, http.StatusOK, res.Status)
	assert.Contains(t, string(env.Data), `"id":"`+id+`"`)

	res, _ = a.do(t, http.MethodGet, "/users/missing", "", bearer(tokens.AccessToken)...)
	assert.Equal(t, http.StatusNotFound, res.Status)

	res, env = a.do(t, http.MethodGet, "/users?page=1&size=10", "", bearer(tokens.AccessToken)...)
	require.Equal(t, http.StatusOK, res.Status)
	assert.Contains(t, string(env.Data), `"total":1`)
}

func TestAvatar(t *testing.T) {
	a := newApp(t, nil)
	id, tokens := a.registerAndLogin(t, "neo")
	otherID, _ := a.registerAndLogin(t, "trinity")

	res, _ := a.do(t, http.MethodGet, "/users/"+id+"/avatar", "")
	assert.Equal(t, http.StatusNotFound, res.Status)

	res, _ = a.do(t, http.MethodPut, "/users/"+otherID+"/avatar", "png", bearer(tokens.AccessToken)...)
	assert.Equal(t, http.StatusForbidden, res.Status)

	res, _ = a.do(t, http.MethodPut, "/users/"+id+"/avatar", "", bearer(tokens.AccessToken)...)
	assert.Equal(t, http.StatusBadRequest, res.Status)

	res, _ = a.do(t, http.MethodPut, "/users/"+id+"/avatar", "png-bytes",
		append(bearer(tokens.AccessToken), "Content-Type", "image/png")...)
	require.Equal(t, http.StatusOK, res.Status, string(res.Body))
	assert.Equal(t, []byte("png-bytes"), a.avatars.objects["avatars/"+id])

	_, env := a.do(t, http.MethodGet, "/users/"+id, "", bearer(tokens.AccessToken)...)
	assert.Contains(t, string(env.Data), `"avatar_url":"https://avatars.local/avatars/`+id+`"`)

	res, _ = a.do(t, http.MethodGet, "/users/"+id+"/avatar", "")
	assert.Equal(t, http.StatusFound, res.Status)
	assert.Equal(t, "https://avatars.local/avatars/"+id, res.Header.Get("Location"))

	big := bytes.Repeat([]byte("x"), MaxAvatarSize+1)
	res, _ = a.do(t, http.MethodPut, "/users/"+id+"/avatar", string(big), bearer(tokens.AccessToken)...)
	assert.Equal(t, http.StatusRequestEntityTooLarge, res.Status)
}

func TestRefreshAndLogout(t *testing.T) {
	a := newApp(t, nil)
	_, tokens := a.registerAndLogin(t, "neo")

	res, env := a.do(t, http.MethodPost, "/auth/refresh", `{"refresh_token":"`+tokens.RefreshToken+`"}`)
	require.Equal(t, http.StatusOK, res.Status)
	var next user.Tokens
	require.NoError(t, json.Unmarshal(env.Data, &next))
	assert.NotEmpty(t, next.AccessToken)

	res, _ = a.do(t, http.MethodPost, "/auth/refresh", `{"refresh_token":"`+tokens.RefreshToken+`"}`)
	assert.Equal(t, http.StatusUnauthorized, res.Status)

	res, _ = a.do(t, http.MethodPost, "/auth/logout", `{"refresh_token":"`+next.RefreshToken+`"}`)
	assert.Equal(t, http.StatusOK, res.Status)
	res, _ = a.do(t, http.MethodPost, "/auth/refresh", `{"refresh_token":"`+next.RefreshToken+`"}`)
	assert.Equal(t, http.StatusUnauthorized, res.Status)

	res, env = a.do(t, http.MethodPost, "/auth/refresh", `{}`)
	assert.Equal(t, http.StatusBadRequest, res.Status)
	assert.Equal(t, "RefreshToken failed on 'required' validation", env.Message)
}

func TestLoginIsRateLimited(t *testing.T) {
	a := newApp(t, nil)
	for i := 0; i < 3; i++ {
		res, _ := a.do(t, http.MethodPost, "/auth/login", `{"user_name":"ghost","password":"x"}`)
		assert.Equal(t, http.StatusUnauthorized, res.Status)
	}
	res, env := a.do(t, http.MethodPost, "/auth/login", `{"user_name":"ghost","password":"x"}`)
	assert.Equal(t, http.StatusTooManyRequests, res.Status)
	assert.Equal(t, "too many requests", env.Message)

	// 注册不限流
	for i := 0; i < 4; i++ {
		res, _ = a.do(t, http.MethodPost, "/auth/register", `{}`)
		assert.Equal(t, http.StatusBadRequest, res.Status)
	}
}

func TestFallback(t *testing.T) {
	a := newApp(t, nil)

	res, env := a.do(t, http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, res.Status)
	assert.Equal(t, "Not Found", env.Message)
	// fallback 不经过中间件
	assert.Empty(t, res.Header.Get(middlewares.RequestIDHeader))

	res, _ = a.do(t, http.MethodOptions, "/users/1", "", "Origin", "https://example.com")
	assert.Equal(t, http.StatusNoContent, res.Status)
	assert.Equal(t, "https://example.com", res.Header.Get("Access-Control-Allow-Origin"))
}

func TestHealth(t *testing.T) {
	a := newApp(t, nil)
	res, env := a.do(t, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, res.Status)
	assert.Contains(t, string(env.Data), `"checks":{"fake":"ok"}`)

	res, _ = a.do(t, http.MethodHead, "/health", "")
	assert.Equal(t, http.StatusOK, res.Status)
	assert.Empty(t, res.Body)

	degraded := newApp(t, errors.New("connection refused"))
	res, env = degraded.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, res.Status)
	assert.Equal(t, "degraded", env.Message)
	assert.Contains(t, string(env.Data), `"fake":"connection refused"`)
}

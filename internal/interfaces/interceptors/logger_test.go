package interceptors

import (
	"bytes"
	"ddi/internal/infra/routing"
	"ddi/internal/pkg/response"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newRequest(method, target, body string) *routing.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	return &routing.Request{
		Request: req,
		Info:    routing.ServeInfo{RemoteAddr: "10.0.0.1"},
		Route:   target,
	}
}

func TestLoggingInterceptorKeepsBody(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	var console bytes.Buffer
	l := NewLoggingInterceptor(zap.New(core), &console)

	var handlerSaw string
	res, err := l.OnRequest(func(r *routing.Request) (*routing.Response, error) {
		b, _ := io.ReadAll(r.Body)
		handlerSaw = string(b)
		return routing.JSON(http.StatusCreated, map[string]string{"id": "1"})
	}, newRequest(http.MethodPost, "/users", `{"user_name":"neo"}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, res.Status)
	assert.Equal(t, `{"user_name":"neo"}`, handlerSaw)

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	fields := entries[0].ContextMap()
	assert.Equal(t, int64(201), fields["code"])
	assert.Equal(t, `{"user_name":"neo"}`, fields["requestData"])
	assert.Equal(t, `{"id":"1"}`, fields["responseData"])
	assert.Equal(t, "10.0.0.1", fields["ip"])

	assert.Contains(t, console.String(), `"url": "/users"`)
	assert.Contains(t, console.String(), `"code": 201`)
}

func TestLoggingInterceptorHidesCredentials(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	var console bytes.Buffer
	l := NewLoggingInterceptor(zap.New(core), &console)

	login := newRequest(http.MethodPost, "/auth/login", `{"user_name":"neo","password":"hunter2"}`)
	login.Header.Set("Authorization", "Bearer secret-access-token")
	login.Header.Set("Cookie", "sid=secret-cookie")
	_, err := l.OnRequest(func(*routing.Request) (*routing.Response, error) {
		return routing.JSON(http.StatusOK, map[string]string{"access_token": "eyJ.issued.token"})
	}, login)
	require.NoError(t, err)

	// 非 /auth 路由按字段打码
	_, err = l.OnRequest(func(*routing.Request) (*routing.Response, error) {
		return routing.JSON(http.StatusOK, map[string]any{"data": map[string]string{"refresh_token": "eyJ.refresh"}})
	}, newRequest(http.MethodPost, "/users", `{"password":"hunter2","name":"neo"}`))
	require.NoError(t, err)

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "[redacted]", entries[0].ContextMap()["requestData"])
	assert.Equal(t, "[redacted]", entries[0].ContextMap()["responseData"])
	assert.Equal(t, `{"name":"neo","password":"***"}`, entries[1].ContextMap()["requestData"])
	assert.Equal(t, `{"data":{"refresh_token":"***"}}`, entries[1].ContextMap()["responseData"])

	for _, e := range entries {
		dump := fmt.Sprint(e.ContextMap())
		for _, secret := range []string{"hunter2", "eyJ.issued.token", "eyJ.refresh", "secret-access-token", "secret-cookie"} {
			assert.NotContains(t, dump, secret)
		}
	}
	assert.NotContains(t, console.String(), "hunter2")
	assert.NotContains(t, console.String(), "secret-access-token")
}

func TestLoggingInterceptorSkipsNonJSONAndLargeBodies(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewLoggingInterceptor(zap.New(core), nil)

	big := strings.Repeat("x", MaxLoggedBody*3)
	var handlerSaw int
	upload := newRequest(http.MethodPut, "/users/1/avatar", big)
	upload.Header.Set("Content-Type", "image/png")
	_, err := l.OnRequest(func(r *routing.Request) (*routing.Response, error) {
		b, _ := io.ReadAll(r.Body)
		handlerSaw = len(b)
		return routing.NoContent(), nil
	}, upload)
	require.NoError(t, err)
	assert.Equal(t, len(big), handlerSaw)

	_, err = l.OnRequest(func(r *routing.Request) (*routing.Response, error) {
		return routing.NoContent(), nil
	}, newRequest(http.MethodPost, "/users", `{"name":"`+big+`"}`))
	require.NoError(t, err)

	small := newRequest(http.MethodPost, "/users", "plain")
	small.Header.Set("Content-Type", "text/plain")
	_, err = l.OnRequest(func(r *routing.Request) (*routing.Response, error) {
		return routing.Text(http.StatusOK, "ok"), nil
	}, small)
	require.NoError(t, err)

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, "[5 bytes omitted]", entries[2].ContextMap()["requestData"])
	assert.Equal(t, "[2 bytes omitted]", entries[2].ContextMap()["responseData"])
	assert.Equal(t, fmt.Sprintf("[more than %d bytes omitted]", MaxLoggedBody), entries[0].ContextMap()["requestData"])
	assert.Equal(t, fmt.Sprintf("[more than %d bytes omitted]", MaxLoggedBody), entries[1].ContextMap()["requestData"])
}

type brokenBody struct{}

func (brokenBody) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestLoggingInterceptorReadError(t *testing.T) {
	core, _ := observer.New(zapcore.DebugLevel)
	l := NewLoggingInterceptor(zap.New(core), nil)

	r := newRequest(http.MethodPost, "/users", "")
	r.Body = io.NopCloser(brokenBody{})
	called := false
	_, err := l.OnRequest(func(*routing.Request) (*routing.Response, error) {
		called = true
		return routing.NoContent(), nil
	}, r)
	require.Error(t, err)
	assert.False(t, called)
	assert.Equal(t, http.StatusBadRequest, response.AsAppError(err).Code)
}

func TestLoggingInterceptorLevels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewLoggingInterceptor(zap.New(core), nil)

	_, _ = l.OnRequest(func(*routing.Request) (*routing.Response, error) {
		return routing.Text(http.StatusNotFound, "Not Found"), nil
	}, newRequest(http.MethodGet, "/nope", ""))
	_, err := l.OnRequest(func(*routing.Request) (*routing.Response, error) {
		return nil, response.Unauthorized("token verification failed")
	}, newRequest(http.MethodGet, "/users", ""))
	require.Error(t, err)

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, int64(401), entries[1].ContextMap()["code"])
}

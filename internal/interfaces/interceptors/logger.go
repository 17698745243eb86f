package interceptors

import (
	"bytes"
	"ddi/internal/config"
	"ddi/internal/infra/container"
	"ddi/internal/infra/routing"
	"ddi/internal/pkg/response"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"go.uber.org/zap"
)

// MaxLoggedBody 请求体只缓存这么多用于日志，其余部分直接交给下游
const MaxLoggedBody = 4 << 10

// RedactedRoutes 这些路径前缀的请求体与响应体不落日志
var RedactedRoutes = []string{"/auth/"}

var (
	hiddenHeaders = []string{"Authorization", "Cookie", "Set-Cookie"}
	hiddenFields  = map[string]bool{
		"password":      true,
		"access_token":  true,
		"refresh_token": true,
		"token":         true,
		"secret":        true,
	}
)

// LoggingInterceptor 记录每个请求的请求体、响应体与耗时
type LoggingInterceptor struct {
	log *zap.Logger
	// 非 prod 环境额外打印到控制台
	console io.Writer
	redact  []string
}

func NewLoggingInterceptor(log *zap.Logger, console io.Writer) *LoggingInterceptor {
	return &LoggingInterceptor{log: log, console: console, redact: RedactedRoutes}
}

type readCloser struct {
	io.Reader
	io.Closer
}

func (l *LoggingInterceptor) OnRequest(next routing.HandlerFunc, r *routing.Request) (*routing.Response, error) {
	start := time.Now()

	// 1. 只捕获请求体前缀，拼回原 Body，下游仍能读到完整内容
	var reqBody []byte
	truncated := false
	if r.Body != nil {
		var err error
		reqBody, err = io.ReadAll(io.LimitReader(r.Body, MaxLoggedBody+1))
		if err != nil {
			return nil, response.Wrap(http.StatusBadRequest, "read request body failed", err)
		}
		truncated = len(reqBody) > MaxLoggedBody
		r.Body = readCloser{io.MultiReader(bytes.NewReader(reqBody), r.Body), r.Body}
	}

	// 2. 执行后续链路
	res, err := next(r)
	duration := time.Since(start)

	// 3. 错误未被转换时按错误码记录
	status := 0
	var respBody string
	var respHeaders http.Header
	switch {
	case res != nil:
		status = res.Status
		respBody = l.body(r, res.Header.Get("Content-Type"), res.Body, false)
		respHeaders = scrubHeaders(res.Header)
	case err != nil:
		status = response.AsAppError(err).Code
	}
	reqHeaders := scrubHeaders(r.Header)
	reqData := l.body(r, r.Header.Get("Content-Type"), reqBody, truncated)

	if l.console != nil {
		l.print(r, status, duration, reqHeaders, reqData, respBody)
	}

	fields := []zap.Field{
		zap.String("url", r.URL.String()),
		zap.String("route", r.Route),
		zap.String("method", r.Method),
		zap.Int("code", status),
		zap.String("ip", r.Info.RemoteAddr),
		zap.String("duration", duration.String()),
		zap.Any("req_headers", reqHeaders),
		zap.String("requestData", reqData),
		zap.Any("resp_headers", respHeaders),
		zap.String("responseData", respBody),
	}
	switch {
	case err != nil:
		l.log.Error("HTTP Request Error", append(fields, zap.Error(err))...)
	case status >= 500:
		l.log.Error("HTTP Request", fields...)
	case status >= 400:
		l.log.Warn("HTTP Request", fields...)
	default:
		l.log.Info("HTTP Request OK", fields...)
	}
	return res, err
}

// body 只记录 JSON，且敏感字段打码
func (l *LoggingInterceptor) body(r *routing.Request, contentType string, b []byte, truncated bool) string {
	switch {
	case len(b) == 0:
		return ""
	case l.redacted(r.URL.Path):
		return "[redacted]"
	case truncated:
		return fmt.Sprintf("[more than %d bytes omitted]", MaxLoggedBody)
	case !strings.Contains(contentType, "json"):
		return fmt.Sprintf("[%d bytes omitted]", len(b))
	}

	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return "[invalid json]"
	}
	out, err := json.Marshal(mask(v))
	if err != nil {
		return "[invalid json]"
	}
	return string(out)
}

func (l *LoggingInterceptor) redacted(path string) bool {
	for _, prefix := range l.redact {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func mask(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, val := range t {
			if hiddenFields[strings.ToLower(k)] {
				t[k] = "***"
				continue
			}
			t[k] = mask(val)
		}
	case []any:
		for i, val := range t {
			t[i] = mask(val)
		}
	}
	return v
}

func scrubHeaders(h http.Header) http.Header {
	if h == nil {
		return nil
	}
	out := h.Clone()
	for _, k := range hiddenHeaders {
		out.Del(k)
	}
	return out
}

func (l *LoggingInterceptor) print(r *routing.Request, status int, duration time.Duration, reqHeaders http.Header, reqBody, respBody string) {
	green := color.New(color.FgGreen)
	reqH, _ := json.Marshal(reqHeaders)

	green.Fprintf(l.console, "\n============ %s ============\n", time.Now().Format(time.DateTime))
	fmt.Fprintf(l.console, "\"url\": \"%s\"\n", r.URL.String())
	fmt.Fprintf(l.console, "\"method\": \"%s\"\n", r.Method)
	fmt.Fprintf(l.console, "\"code\": %d\n", status)
	fmt.Fprintf(l.console, "\"duration\": \"%s\"\n", duration.String())
	fmt.Fprintf(l.console, "\"ip\": \"%s\"\n", r.Info.RemoteAddr)
	fmt.Fprintf(l.console, "\"req_headers\": %s\n", reqH)
	fmt.Fprintf(l.console, "\"requestData\": %s\n", reqBody)
	fmt.Fprintf(l.console, "\"responseData\": %s\n", respBody)
	green.Fprintln(l.console, "===========================================")
}

var LoggingInterceptorType = container.Define("LoggingInterceptor", func(c *container.Container) (*LoggingInterceptor, error) {
	cfg, err := container.Resolve[*config.AppConfig](c, config.AppConfigAlias)
	if err != nil {
		return nil, err
	}
	var console io.Writer
	if cfg.App.Env != "prod" {
		console = os.Stdout
	}
	return NewLoggingInterceptor(c.Logger().Named("http"), console), nil
}, routing.AsMiddleware(routing.MiddlewareOptions{Priority: 1000, Global: true}))

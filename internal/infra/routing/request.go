package routing

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// ServeInfo 宿主提供的连接信息
type ServeInfo struct {
	RemoteAddr string
}

// Params 路由模式捕获的路径参数
type Params map[string]string

func (p Params) Get(name string) string { return p[name] }

type Request struct {
	*http.Request
	Params Params
	Info   ServeInfo

	// 命中的路由模式，fallback 时为空
	Route string
}

type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

type HandlerFunc func(r *Request) (*Response, error)

// ServeHandler Serve 返回的分发函数
type ServeHandler func(req *http.Request, info ServeInfo) (*Response, error)

func NewResponse(status int, contentType string, body []byte) *Response {
	h := make(http.Header)
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	return &Response{Status: status, Header: h, Body: body}
}

func Text(status int, body string) *Response {
	return NewResponse(status, "text/plain; charset=utf-8", []byte(body))
}

func JSON(status int, v any) (*Response, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("routing: encode response: %w", err)
	}
	return NewResponse(status, "application/json; charset=utf-8", b), nil
}

func NoContent() *Response {
	return NewResponse(http.StatusNoContent, "", nil)
}

// NotFound 默认 fallback
func NotFound(*Request) (*Response, error) {
	return Text(http.StatusNotFound, "Not Found"), nil
}

func (r *Response) Text() string { return string(r.Body) }

// SetHeader Header 为空时先初始化
func (r *Response) SetHeader(key, value string) {
	if r.Header == nil {
		r.Header = make(http.Header)
	}
	r.Header.Set(key, value)
}

func (r *Response) Write(w http.ResponseWriter) error {
	for k, vs := range r.Header {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	status := r.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	if len(r.Body) == 0 {
		return nil
	}
	_, err := w.Write(r.Body)
	return err
}

package response

import (
	"ddi/internal/infra/routing"
	"net/http"
)

// Body 统一响应体
type Body struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

func JSON(status int, message string, data any) (*routing.Response, error) {
	return routing.JSON(status, Body{Code: status, Message: message, Data: data})
}

func OK(data any) (*routing.Response, error) {
	return JSON(http.StatusOK, "success", data)
}

func Created(data any) (*routing.Response, error) {
	return JSON(http.StatusCreated, "created", data)
}

// Error 错误转响应，永不失败
func Error(err error) *routing.Response {
	ae := AsAppError(err)
	resp, encodeErr := JSON(ae.Code, ae.Message, nil)
	if encodeErr != nil {
		return routing.Text(ae.Code, ae.Message)
	}
	return resp
}

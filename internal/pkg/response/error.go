package response

import (
	"errors"
	"net/http"
)

// AppError 业务错误，Code 即 HTTP 状态码
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

func NewError(code int, msg string) *AppError {
	return &AppError{Code: code, Message: msg}
}

func BadRequest(msg string) error {
	return NewError(http.StatusBadRequest, msg)
}

func Unauthorized(msg string) error {
	return NewError(http.StatusUnauthorized, msg)
}

func NotFound(msg string) error {
	return NewError(http.StatusNotFound, msg)
}

func Conflict(msg string) error {
	return NewError(http.StatusConflict, msg)
}

func TooManyRequests(msg string) error {
	return NewError(http.StatusTooManyRequests, msg)
}

// Wrap 保留原始错误，对外只暴露 msg
func Wrap(code int, msg string, err error) error {
	return &AppError{Code: code, Message: msg, Err: err}
}

// AsAppError 非业务错误统一视为 500
func AsAppError(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return &AppError{Code: http.StatusInternalServerError, Message: "internal server error", Err: err}
}

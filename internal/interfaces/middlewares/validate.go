package middlewares

import (
	"ddi/internal/infra/routing"
	"ddi/internal/pkg/response"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validateParamsError 通用友好提示
func validateParamsError(err error) error {
	var validateErrors validator.ValidationErrors
	if !errors.As(err, &validateErrors) {
		return response.Wrap(http.StatusBadRequest, "invalid request body", err)
	}

	// 使用 Field + Tag + Param 自动生成提示
	var errMsgs []string
	for _, e := range validateErrors {
		msg := fmt.Sprintf("%s failed on '%s' validation", e.Field(), e.Tag())
		if e.Param() != "" {
			msg += fmt.Sprintf(" (param=%s)", e.Param())
		}
		errMsgs = append(errMsgs, msg)
	}
	return response.BadRequest(strings.Join(errMsgs, "; "))
}

// Bind 解码 JSON 请求体并按 validate 标签校验，失败返回 400
func Bind[T any](r *routing.Request, v *validator.Validate) (*T, error) {
	dto := new(T)
	if r.Body != nil {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, response.Wrap(http.StatusBadRequest, "read request body failed", err)
		}
		if len(body) > 0 {
			if err := json.Unmarshal(body, dto); err != nil {
				return nil, validateParamsError(err)
			}
		}
	}
	if err := v.Struct(dto); err != nil {
		return nil, validateParamsError(err)
	}
	return dto, nil
}

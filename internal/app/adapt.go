package app

import (
	"ddi/internal/infra/routing"
	"ddi/internal/pkg/response"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Adapt 把分发函数挂到 gin 上，未被中间件转换的错误在这里兜底
func Adapt(serve routing.ServeHandler, log *zap.Logger) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		res, err := serve(ctx.Request, routing.ServeInfo{RemoteAddr: ctx.ClientIP()})
		if err != nil {
			log.Error("dispatch failed",
				zap.String("method", ctx.Request.Method),
				zap.String("path", ctx.Request.URL.Path),
				zap.Error(err),
			)
			res = response.Error(err)
		}
		if res == nil {
			res = routing.NoContent()
		}
		if err := res.Write(ctx.Writer); err != nil {
			log.Warn("write response failed", zap.Error(err))
		}
		ctx.Abort()
	}
}

// Recovery 分发函数之外的 panic
func Recovery(log *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.Error("panic recovered", zap.Any("panic", recovered), zap.String("path", c.Request.URL.Path))
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Body{
			Code:    http.StatusInternalServerError,
			Message: "internal server error",
		})
	})
}

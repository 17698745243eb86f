package router

import (
	"ddi/internal/config"
	"ddi/internal/domain/user"
	"ddi/internal/infra/container"
	"ddi/internal/interfaces/handlers"
	"ddi/internal/interfaces/interceptors"
	"ddi/internal/interfaces/middlewares"
	"errors"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Platform 全局中间件、限流与健康检查
func Platform(reg *prometheus.Registry) container.Module {
	return func(c *container.Container) error {
		if err := c.Instance(middlewares.RegistryAlias, reg); err != nil {
			return err
		}
		return register(c,
			middlewares.RecoveryType,
			middlewares.RequestIDType,
			interceptors.LoggingInterceptorType,
			middlewares.MetricsType,
			middlewares.CORSType,
			middlewares.RateLimitType,
			handlers.HealthControllerType,
		)
	}
}

// Users 用户模块依赖数据库，未配置 pgsql.dsn 时跳过
func Users(cfg *config.AppConfig) container.Module {
	return func(c *container.Container) error {
		if cfg.PgSQL.DSN == "" {
			c.Logger().Warn("pgsql.dsn is empty, user module disabled")
			return nil
		}
		return register(c,
			user.RepositoryType,
			user.ServiceType,
			middlewares.AuthType,
			handlers.UserControllerType,
		)
	}
}

// Modules 除日志与配置外的全部模块
func Modules(cfg *config.AppConfig, reg *prometheus.Registry) []container.Module {
	return []container.Module{Platform(reg), Infra(cfg), Users(cfg)}
}

func register(c *container.Container, types ...*container.Type) error {
	for _, t := range types {
		if err := c.Register(t); err != nil {
			return err
		}
	}
	return nil
}

// Close 关闭已构造的 io.Closer，按注册逆序
func Close(c *container.Container) error {
	types := c.Types()
	var errs []error
	for i := len(types) - 1; i >= 0; i-- {
		t := types[i]
		if !c.Resolved(t) {
			continue
		}
		v, err := c.Resolve(t)
		if err != nil {
			continue
		}
		if closer, ok := v.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				errs = append(errs, err)
			}
			c.Logger().Debug("closed", zap.String("type", t.Name()))
		}
	}
	return errors.Join(errs...)
}

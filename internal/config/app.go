package config

import (
	"ddi/internal/infra/container"
	"time"
)

type AppConfig struct {
	App struct {
		Name string
		Env  string `validate:"oneof=dev test prod"`
		Port int    `validate:"min=1,max=65535"`
	}

	Log struct {
		Dir string
	}

	// 鉴权
	Auth struct {
		Secret     string        `validate:"required"`
		AccessTTL  time.Duration `mapstructure:"access_ttl" validate:"gt=0"`
		RefreshTTL time.Duration `mapstructure:"refresh_ttl" validate:"gt=0"`
	}

	RateLimit struct {
		Limit  int           `validate:"min=1"`
		Window time.Duration `validate:"gt=0"`
	} `mapstructure:"ratelimit"`

	// 数据库，DSN 为空则不启用用户模块
	PgSQL struct {
		DSN      string
		MaxIdle  int    `mapstructure:"max_idle"`
		MaxOpen  int    `mapstructure:"max_open"`
		LogLevel string `mapstructure:"log_level"`
	}

	Redis struct {
		Addr     string
		Password string
		DB       int
	}

	// MinIO
	Minio struct {
		Endpoint        string
		AccessKeyID     string `mapstructure:"access_key"`
		SecretAccessKey string `mapstructure:"secret_key"`
		UseSSL          bool   `mapstructure:"use_ssl"`
		Bucket          string
	}

	Kafka struct {
		Brokers []string
		Topic   string
	}

	// 用户搜索，未配置 addresses 时按数据库模糊查询
	ES struct {
		Addresses []string
		Username  string
		Password  string
		Index     string
	} `mapstructure:"es"`
}

// AppConfigAlias 已校验的应用配置
var AppConfigAlias = container.NewAlias[*AppConfig]("AppConfig")

// Defaults 默认值，可被环境覆盖
var Defaults = map[string]any{
	"app.name":         "ddi",
	"app.env":          "dev",
	"app.port":         8089,
	"log.dir":          "logs",
	"auth.access_ttl":  "15m",
	"auth.refresh_ttl": "168h",
	"ratelimit.limit":  10,
	"ratelimit.window": "1m",
	"pgsql.max_idle":   10,
	"pgsql.max_open":   100,
	"pgsql.log_level":  "warn",
	"minio.bucket":     "avatars",
	"kafka.topic":      "user-events",
	"es.index":         "users",
}

// Load 套用默认值后解码 AppConfig
func Load(s *Service) (*AppConfig, error) {
	for k, v := range Defaults {
		s.SetDefault(k, v)
	}
	return Get[AppConfig](s)
}

// Module 注册配置服务与 AppConfig
func Module(s *Service, cfg *AppConfig) container.Module {
	return func(c *container.Container) error {
		if err := c.Instance(ServiceAlias, s); err != nil {
			return err
		}
		return c.Instance(AppConfigAlias, cfg)
	}
}

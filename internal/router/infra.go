package router

import (
	"context"
	"ddi/internal/config"
	"ddi/internal/domain/user"
	"ddi/internal/infra/container"
	"ddi/internal/infra/es"
	"ddi/internal/infra/kafka"
	"ddi/internal/infra/minio"
	"ddi/internal/infra/pgsql"
	"ddi/internal/infra/redis"
	"ddi/internal/interfaces/handlers"
	"ddi/internal/interfaces/middlewares"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

func appConfig(c *container.Container) (*config.AppConfig, error) {
	return container.Resolve[*config.AppConfig](c, config.AppConfigAlias)
}

// PgSQLType 需要 pgsql.dsn
var PgSQLType = container.Define("PgSQL", func(c *container.Container) (*pgsql.PGSQL, error) {
	cfg, err := appConfig(c)
	if err != nil {
		return nil, err
	}
	return pgsql.NewPGSQL(pgsql.Config{
		DSN:      cfg.PgSQL.DSN,
		MaxIdle:  cfg.PgSQL.MaxIdle,
		MaxOpen:  cfg.PgSQL.MaxOpen,
		LogLevel: cfg.PgSQL.LogLevel,
	})
})

var GormType = container.Define("GormDB", func(c *container.Container) (*gorm.DB, error) {
	pg, err := container.Resolve[*pgsql.PGSQL](c, container.Key("PgSQL"))
	if err != nil {
		return nil, err
	}
	return pg.DB, nil
}, container.Provides(pgsql.DBAlias))

var PgSQLHealthCheckType = container.Define("PgSQLHealthCheck", func(c *container.Container) (handlers.Checker, error) {
	db, err := container.Resolve[*gorm.DB](c, pgsql.DBAlias)
	if err != nil {
		return nil, err
	}
	return handlers.NewCheck("pgsql", func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}), nil
})

// RedisType redis.addr 为空时使用进程内 redis
var RedisType = container.Define("Redis", func(c *container.Container) (*redis.Client, error) {
	cfg, err := appConfig(c)
	if err != nil {
		return nil, err
	}
	if cfg.Redis.Addr == "" {
		c.Logger().Warn("redis.addr is empty, using embedded redis")
		return redis.NewEmbedded()
	}
	client := redis.NewClient(redis.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}, container.Provides(user.KVAlias), container.Provides(middlewares.CounterAlias))

var RedisHealthCheckType = container.Define("RedisHealthCheck", func(c *container.Container) (handlers.Checker, error) {
	client, err := container.Resolve[*redis.Client](c, container.Key("Redis"))
	if err != nil {
		return nil, err
	}
	return handlers.NewCheck("redis", client.Ping), nil
})

var MinioType = container.Define("Minio", func(c *container.Container) (*minio.Client, error) {
	cfg, err := appConfig(c)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return minio.NewClient(ctx, minio.Config{
		Endpoint:        cfg.Minio.Endpoint,
		AccessKeyID:     cfg.Minio.AccessKeyID,
		SecretAccessKey: cfg.Minio.SecretAccessKey,
		UseSSL:          cfg.Minio.UseSSL,
		Bucket:          cfg.Minio.Bucket,
	})
}, container.Provides(handlers.AvatarStoreAlias))

var KafkaType = container.Define("KafkaEvents", func(c *container.Container) (*kafka.Producer, error) {
	cfg, err := appConfig(c)
	if err != nil {
		return nil, err
	}
	return kafka.NewProducer(cfg.Kafka.Brokers)
}, container.Provides(user.EventsAlias))

var ESType = container.Define("Elasticsearch", func(c *container.Container) (*es.Client, error) {
	cfg, err := appConfig(c)
	if err != nil {
		return nil, err
	}
	return es.New(es.Config{Addresses: cfg.ES.Addresses, Username: cfg.ES.Username, Password: cfg.ES.Password})
})

var ESHealthCheckType = container.Define("ESHealthCheck", func(c *container.Container) (handlers.Checker, error) {
	client, err := container.Resolve[*es.Client](c, container.Key("Elasticsearch"))
	if err != nil {
		return nil, err
	}
	return handlers.NewCheck("elasticsearch", client.Ping), nil
})

// Infra 按配置注册基础设施：
// redis 总是注册；其余只在配置了地址时注册，kafka 缺省时事件写日志。
func Infra(cfg *config.AppConfig) container.Module {
	return func(c *container.Container) error {
		types := []*container.Type{RedisType, RedisHealthCheckType}
		if cfg.PgSQL.DSN != "" {
			types = append(types, PgSQLType, GormType, PgSQLHealthCheckType)
		}
		if cfg.Minio.Endpoint != "" {
			types = append(types, MinioType)
		}
		if len(cfg.ES.Addresses) > 0 {
			types = append(types, ESType, user.ESIndexType, ESHealthCheckType)
		}
		if len(cfg.Kafka.Brokers) > 0 {
			types = append(types, KafkaType)
		} else {
			types = append(types, user.LogEventsType)
		}
		for _, t := range types {
			if err := c.Register(t); err != nil {
				return err
			}
		}
		c.Logger().Info("infra registered",
			zap.Bool("pgsql", cfg.PgSQL.DSN != ""),
			zap.Bool("minio", cfg.Minio.Endpoint != ""),
			zap.Strings("kafka", cfg.Kafka.Brokers),
			zap.Strings("es", cfg.ES.Addresses),
		)
		return nil
	}
}

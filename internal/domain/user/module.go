package user

import (
	"context"
	"ddi/internal/config"
	"ddi/internal/infra/container"
	"ddi/internal/infra/es"
	"ddi/internal/infra/logger"
	"ddi/internal/infra/pgsql"
	"time"

	"gorm.io/gorm"
)

var (
	RepositoryAlias = container.NewAlias[Repository]("user.Repository")
	EventsAlias     = container.NewAlias[Events]("user.Events")
	KVAlias         = container.NewAlias[KV]("user.KV")
	IndexAlias      = container.NewAlias[Index]("user.Index")
)

var RepositoryType = container.Define("UserRepository", func(c *container.Container) (Repository, error) {
	db, err := container.Resolve[*gorm.DB](c, pgsql.DBAlias)
	if err != nil {
		return nil, err
	}
	repo := NewGormRepository(db)
	if err := repo.Migrate(); err != nil {
		return nil, err
	}
	return repo, nil
}, container.Provides(RepositoryAlias))

var ServiceType = container.Define("UserService", func(c *container.Container) (*Service, error) {
	repo, err := container.Resolve[Repository](c, RepositoryAlias)
	if err != nil {
		return nil, err
	}
	events, err := container.Resolve[Events](c, EventsAlias)
	if err != nil {
		return nil, err
	}
	kv, err := container.Resolve[KV](c, KVAlias)
	if err != nil {
		return nil, err
	}
	cfg, err := container.Resolve[*config.AppConfig](c, config.AppConfigAlias)
	if err != nil {
		return nil, err
	}
	log, err := logger.Resolve(c, "UserService")
	if err != nil {
		return nil, err
	}
	svc := NewService(repo, events, kv, Options{
		Secret:     []byte(cfg.Auth.Secret),
		AccessTTL:  cfg.Auth.AccessTTL,
		RefreshTTL: cfg.Auth.RefreshTTL,
		Topic:      cfg.Kafka.Topic,
	}, log)
	if c.Has(IndexAlias) {
		index, err := container.Resolve[Index](c, IndexAlias)
		if err != nil {
			return nil, err
		}
		svc.UseIndex(index)
	}
	return svc, nil
})

var ESIndexType = container.Define("UserSearchIndex", func(c *container.Container) (Index, error) {
	client, err := container.Resolve[*es.Client](c, container.Key("Elasticsearch"))
	if err != nil {
		return nil, err
	}
	cfg, err := container.Resolve[*config.AppConfig](c, config.AppConfigAlias)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return NewESIndex(ctx, client, cfg.ES.Index)
}, container.Provides(IndexAlias))

// LogEvents 未配置 kafka 时，事件只写日志
type LogEvents struct {
	log *logger.Logger
}

func (e *LogEvents) Publish(_ context.Context, topic, key string, payload any) error {
	e.log.Info("event", topic, key, payload)
	return nil
}

var LogEventsType = container.Define("LogEvents", func(c *container.Container) (*LogEvents, error) {
	log, err := logger.Resolve(c, "Events")
	if err != nil {
		return nil, err
	}
	return &LogEvents{log: log}, nil
}, container.Provides(EventsAlias))

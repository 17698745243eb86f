package pgsql

import (
	"ddi/internal/infra/container"
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Config struct {
	DSN      string
	MaxIdle  int
	MaxOpen  int
	LogLevel string
}

type PGSQL struct {
	DB *gorm.DB
}

// DBAlias 容器中的 *gorm.DB
var DBAlias = container.NewAlias[*gorm.DB]("gorm.DB")

func NewPGSQL(cfg Config) (*PGSQL, error) {
	return Open(postgres.Open(cfg.DSN), cfg)
}

// Open 使用任意 Dialector，测试时可传入 sqlmock 连接
func Open(dialector gorm.Dialector, cfg Config) (*PGSQL, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(ParseLogLevel(cfg.LogLevel)),
	})
	if err != nil {
		return nil, fmt.Errorf("pgsql: open: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.MaxIdle > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdle)
	}
	if cfg.MaxOpen > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpen)
	}
	sqlDB.SetConnMaxLifetime(time.Hour)

	return &PGSQL{DB: db}, nil
}

// ParseLogLevel silent / error / warn / info，其余按 warn
func ParseLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	}
	return logger.Warn
}

func (p *PGSQL) Close() error {
	sqlDB, err := p.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

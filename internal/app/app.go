package app

import (
	"context"
	"ddi/internal/config"
	"ddi/internal/infra/container"
	"ddi/internal/infra/logger"
	"ddi/internal/infra/routing"
	"ddi/internal/interfaces/middlewares"
	"ddi/internal/router"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type App struct {
	Config    *config.AppConfig
	Container *container.Container
	Engine    *gin.Engine
	Log       *zap.Logger
	Routes    []*routing.CompiledRoute
}

// Setup 读取 .env 文件与进程环境后装配
func Setup(files ...string) (*App, error) {
	s, err := config.FromEnviron(files...)
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(s)
	if err != nil {
		return nil, err
	}
	return New(s, cfg)
}

func New(s *config.Service, cfg *config.AppConfig) (*App, error) {
	log, err := logger.NewZap(cfg.Log.Dir, cfg.App.Env)
	if err != nil {
		return nil, err
	}

	// 1. 指标注册表，/metrics 由 gin 直接暴露
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// 2. 容器：日志、配置、其余模块
	c := container.New(container.WithLogger(log))
	modules := append([]container.Module{
		logger.Module(logger.SinkType("ZapSink", logger.NewZapSink(log))),
		config.Module(s, cfg),
	}, router.Modules(cfg, reg)...)
	if err := c.Use(modules...); err != nil {
		return nil, err
	}

	// 3. 编译路由
	routes, err := routing.Compile(c)
	if err != nil {
		_ = router.Close(c)
		return nil, err
	}
	serve := routing.NewDispatcher(routes, middlewares.Preflight).ServeRequest

	return &App{
		Config:    cfg,
		Container: c,
		Engine:    NewEngine(cfg.App.Env, serve, reg, log),
		Log:       log,
		Routes:    routes,
	}, nil
}

func NewEngine(env string, serve routing.ServeHandler, metrics prometheus.Gatherer, log *zap.Logger) *gin.Engine {
	if env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(Recovery(log))
	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics, promhttp.HandlerOpts{})))
	engine.NoRoute(Adapt(serve, log))
	return engine
}

// Run 阻塞到 ctx 结束后优雅关闭
func (a *App) Run(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: a.Engine, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	a.Log.Info("server started", zap.String("addr", addr), zap.Int("routes", len(a.Routes)))

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return errors.Join(err, a.Close())
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	a.Log.Info("shutdown finished")
	return errors.Join(err, a.Close())
}

func (a *App) Close() error {
	err := router.Close(a.Container)
	_ = a.Log.Sync()
	return err
}

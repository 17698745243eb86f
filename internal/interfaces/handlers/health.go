package handlers

import (
	"context"
	"ddi/internal/infra/container"
	"ddi/internal/infra/routing"
	"ddi/internal/pkg/response"
	"net/http"
	"time"
)

// Checker 名称包含 "HealthCheck" 的类型会被 HealthController 收集
type Checker interface {
	Name() string
	Check(ctx context.Context) error
}

type checkFunc struct {
	name string
	fn   func(ctx context.Context) error
}

func (c checkFunc) Name() string                    { return c.name }
func (c checkFunc) Check(ctx context.Context) error { return c.fn(ctx) }

func NewCheck(name string, fn func(ctx context.Context) error) Checker {
	return checkFunc{name: name, fn: fn}
}

type HealthController struct {
	checks  []Checker
	started time.Time
	timeout time.Duration
}

func NewHealthController(checks ...Checker) *HealthController {
	return &HealthController{checks: checks, started: time.Now(), timeout: 2 * time.Second}
}

type healthReport struct {
	Status string            `json:"status"`
	Uptime string            `json:"uptime"`
	Checks map[string]string `json:"checks,omitempty"`
}

func (h *HealthController) Health(r *routing.Request) (*routing.Response, error) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	report := healthReport{Status: "ok", Uptime: time.Since(h.started).Truncate(time.Second).String()}
	for _, c := range h.checks {
		if report.Checks == nil {
			report.Checks = make(map[string]string, len(h.checks))
		}
		if err := c.Check(ctx); err != nil {
			report.Status = "degraded"
			report.Checks[c.Name()] = err.Error()
			continue
		}
		report.Checks[c.Name()] = "ok"
	}

	status := http.StatusOK
	if report.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	return response.JSON(status, report.Status, report)
}

// Head 只返回状态码
func (h *HealthController) Head(r *routing.Request) (*routing.Response, error) {
	res, err := h.Health(r)
	if err != nil {
		return nil, err
	}
	return routing.NewResponse(res.Status, "", nil), nil
}

var HealthControllerType = container.Define("HealthController", func(c *container.Container) (*HealthController, error) {
	checks, err := container.ResolveAll[Checker](c, "HealthCheck")
	if err != nil {
		return nil, err
	}
	return NewHealthController(checks...), nil
}, routing.Controller(
	routing.Get("/health", (*HealthController).Health),
	routing.Head("/health", (*HealthController).Head),
))

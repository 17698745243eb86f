package middlewares

import (
	"ddi/internal/infra/container"
	"ddi/internal/infra/routing"
	"ddi/internal/pkg/response"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// RegistryAlias 指标注册表，由宿主通过 /metrics 暴露
var RegistryAlias = container.NewAlias[*prometheus.Registry]("prometheus.Registry")

type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Number of dispatched requests.",
		}, []string{"route", "method", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Time spent in the middleware chain and handler.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}
	for _, c := range []prometheus.Collector{m.requests, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) OnRequest(next routing.HandlerFunc, r *routing.Request) (*routing.Response, error) {
	start := time.Now()
	res, err := next(r)

	status := 0
	switch {
	case err != nil:
		status = response.AsAppError(err).Code
	case res != nil:
		status = res.Status
	}
	m.requests.WithLabelValues(r.Route, r.Method, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(r.Route, r.Method).Observe(time.Since(start).Seconds())
	return res, err
}

var MetricsType = container.Define("Metrics", func(c *container.Container) (*Metrics, error) {
	reg, err := container.Resolve[*prometheus.Registry](c, RegistryAlias)
	if err != nil {
		return nil, err
	}
	return NewMetrics(reg)
}, routing.AsMiddleware(routing.MiddlewareOptions{Priority: 900, Global: true}))

package logger

import "ddi/internal/infra/container"

var LoggerType = container.Define("Logger", func(c *container.Container) (*Logger, error) {
	sink, err := container.Resolve[Sink](c, SinkAlias)
	if err != nil {
		return nil, err
	}
	return New(sink), nil
})

var (
	MockSinkType = container.Define("MockSink", func(*container.Container) (*MockSink, error) {
		return &MockSink{}, nil
	}, container.Provides(SinkAlias))

	VoidSinkType = container.Define("VoidSink", func(*container.Container) (VoidSink, error) {
		return VoidSink{}, nil
	}, container.Provides(SinkAlias))
)

// SinkType 把已构造好的 Sink 声明为容器类型
func SinkType(name string, sink Sink) *container.Type {
	return container.Define(name, func(*container.Container) (Sink, error) {
		return sink, nil
	}, container.Provides(SinkAlias))
}

// Module 注册 Sink 与 Logger
func Module(sink *container.Type) container.Module {
	return func(c *container.Container) error {
		if err := c.Register(sink); err != nil {
			return err
		}
		return c.Register(LoggerType)
	}
}

// Resolve 取出 Logger 并以 name 命名
func Resolve(c *container.Container, name string) (*Logger, error) {
	l, err := container.Resolve[*Logger](c, LoggerType)
	if err != nil {
		return nil, err
	}
	return l.Named(name), nil
}

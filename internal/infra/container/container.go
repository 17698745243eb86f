// Package container 懒加载的单例容器。
//
// 类型以自身名称和所提供的别名注册；首次解析时构造，实例按解析到的 *Type 缓存，
// 因此按名称或任一别名解析得到的是同一个实例。
//
// Factory 收到的是带构造链的 *Container，依赖必须通过它解析（循环检测依赖这条链）。
// 在 Factory 内通过根容器解析会等待构造锁，超过 WithBuildTimeout 后返回 ErrResolutionInProgress。
package container

import (
	"ddi/internal/infra/metadata"
	"fmt"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Module 批量注册
type Module func(c *Container) error

// DefaultBuildTimeout 等待构造锁的默认上限
const DefaultBuildTimeout = 30 * time.Second

type state struct {
	mu sync.RWMutex
	// 容量为 1 的信号量，等待可超时
	build        chan struct{}
	building     atomic.Pointer[Type]
	buildTimeout time.Duration
	names        map[string]*Type
	types        []*Type
	instances    map[*Type]any
	log          *zap.Logger
}

type scope struct {
	chain []*Type
	done  atomic.Bool
}

type Container struct {
	state *state
	scope *scope
}

type ContainerOption func(s *state)

func WithLogger(log *zap.Logger) ContainerOption {
	return func(s *state) {
		if log != nil {
			s.log = log
		}
	}
}

// WithBuildTimeout 根容器等待其他构造完成的上限
func WithBuildTimeout(d time.Duration) ContainerOption {
	return func(s *state) {
		if d > 0 {
			s.buildTimeout = d
		}
	}
}

func New(opts ...ContainerOption) *Container {
	s := &state{
		build:        make(chan struct{}, 1),
		buildTimeout: DefaultBuildTimeout,
		names:        make(map[string]*Type),
		instances:    make(map[*Type]any),
		log:          zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return &Container{state: s}
}

func (c *Container) Logger() *zap.Logger { return c.state.log }

// Register 以自身名称及别名注册。
// 名称逐个提交：后面的别名冲突时，前面已提交的名称保留。
func (c *Container) Register(t *Type) error {
	return c.register(t, nil, false)
}

// register 带 value 时与名称在同一临界区写入缓存，并发 Resolve 不会看到没有实例的名称
func (c *Container) register(t *Type, value any, cache bool) error {
	if t == nil {
		return fmt.Errorf("%w: nil type", ErrUnregisteredType)
	}
	t.meta.Seal()
	names := append([]string{t.name}, t.Provides()...)

	c.state.mu.Lock()
	defer c.state.mu.Unlock()
	if cache {
		if _, taken := c.state.names[t.name]; !taken {
			c.state.instances[t] = value
		}
	}
	for i, name := range names {
		if prev, ok := c.state.names[name]; ok {
			return fmt.Errorf("%w: %q is already taken by %s", ErrDuplicateRegistration, name, prev.name)
		}
		c.state.names[name] = t
		if i == 0 {
			c.state.types = append(c.state.types, t)
		}
	}
	c.state.log.Debug("registered type", zap.String("type", t.name), zap.Strings("provides", names[1:]))
	return nil
}

// Instance 注册已构造好的值
func (c *Container) Instance(sym Symbol, value any) error {
	t, ok := sym.(*Type)
	if !ok {
		t = &Type{
			name:    sym.Name(),
			factory: func(*Container) (any, error) { return value, nil },
		}
		t.meta = metadata.NewStore(t.name)
	}
	return c.register(t, value, true)
}

func (c *Container) Use(modules ...Module) error {
	for _, m := range modules {
		if err := m(c); err != nil {
			return err
		}
	}
	return nil
}

// Resolve 首次解析时构造；Factory 的错误原样返回
func (c *Container) Resolve(sym Symbol) (any, error) {
	if sym == nil {
		return nil, fmt.Errorf("%w: nil symbol", ErrUnregisteredType)
	}
	if t, ok := sym.(*Type); ok {
		if v, ok := c.cached(t); ok {
			return v, nil
		}
	}
	t, ok := c.lookup(sym.Name())
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnregisteredType, sym.Name())
	}
	if v, ok := c.cached(t); ok {
		return v, nil
	}

	chain := c.inFlight()
	if i := slices.Index(chain, t); i >= 0 {
		path := make([]string, 0, len(chain)-i+1)
		for _, p := range chain[i:] {
			path = append(path, p.name)
		}
		path = append(path, t.name)
		return nil, fmt.Errorf("%w: %s", ErrCycleDetected, strings.Join(path, " -> "))
	}

	if len(chain) == 0 {
		if err := c.acquire(t); err != nil {
			return nil, err
		}
		defer c.release()
		if v, ok := c.cached(t); ok {
			return v, nil
		}
	}
	return c.construct(t, chain)
}

func (c *Container) acquire(t *Type) error {
	select {
	case c.state.build <- struct{}{}:
		c.state.building.Store(t)
		return nil
	default:
	}

	timer := time.NewTimer(c.state.buildTimeout)
	defer timer.Stop()
	select {
	case c.state.build <- struct{}{}:
		c.state.building.Store(t)
		return nil
	case <-timer.C:
		holder := "unknown"
		if b := c.state.building.Load(); b != nil {
			holder = b.name
		}
		return fmt.Errorf("%w: %s waited %s while %s is being built; resolve dependencies through the factory argument",
			ErrResolutionInProgress, t.name, c.state.buildTimeout, holder)
	}
}

func (c *Container) release() {
	c.state.building.Store(nil)
	<-c.state.build
}

func (c *Container) construct(t *Type, chain []*Type) (any, error) {
	sc := &scope{chain: append(slices.Clone(chain), t)}
	defer sc.done.Store(true)

	v, err := t.factory(&Container{state: c.state, scope: sc})
	if err != nil {
		return nil, err
	}

	c.state.mu.Lock()
	if existing, ok := c.state.instances[t]; ok {
		v = existing
	} else {
		c.state.instances[t] = v
	}
	c.state.mu.Unlock()

	c.state.log.Debug("constructed instance", zap.String("type", t.name), zap.Int("depth", len(chain)))
	return v, nil
}

// ResolveAll 名称包含 text（忽略大小写）的类型，按注册顺序；别名不参与匹配
func (c *Container) ResolveAll(text string) ([]any, error) {
	needle := strings.ToLower(text)
	var out []any
	for _, t := range c.Types() {
		if !strings.Contains(strings.ToLower(t.name), needle) {
			continue
		}
		v, err := c.Resolve(t)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (c *Container) Types() []*Type {
	c.state.mu.RLock()
	defer c.state.mu.RUnlock()
	return slices.Clone(c.state.types)
}

func (c *Container) Has(sym Symbol) bool {
	_, ok := c.lookup(sym.Name())
	return ok
}

// Resolved 是否已构造
func (c *Container) Resolved(sym Symbol) bool {
	t, ok := c.lookup(sym.Name())
	if !ok {
		return false
	}
	_, ok = c.cached(t)
	return ok
}

func (c *Container) lookup(name string) (*Type, bool) {
	c.state.mu.RLock()
	defer c.state.mu.RUnlock()
	t, ok := c.state.names[name]
	return t, ok
}

func (c *Container) cached(t *Type) (any, bool) {
	c.state.mu.RLock()
	defer c.state.mu.RUnlock()
	v, ok := c.state.instances[t]
	return v, ok
}

// inFlight 当前构造链；Factory 返回后该作用域等同根容器
func (c *Container) inFlight() []*Type {
	if c.scope == nil || c.scope.done.Load() {
		return nil
	}
	return c.scope.chain
}

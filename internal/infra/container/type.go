package container

import (
	"ddi/internal/infra/metadata"
	"reflect"
)

// Symbol 可用于解析的标识：*Type、Alias 或 Key
type Symbol interface {
	Name() string
}

// Factory 构造实例。依赖必须通过传入的 c 解析
type Factory func(c *Container) (any, error)

type Constructor[T any] func(c *Container) (T, error)

type Option func(t *Type)

// ProvidesKey 类型额外提供的能力别名
var ProvidesKey = metadata.NewListKey[string]("container.provides")

// Type 可被容器构造的类型描述，通常声明为包级变量
type Type struct {
	name    string
	factory Factory
	meta    *metadata.Store
}

// Define 声明类型；name 为空时取 T 的 Go 类型名
func Define[T any](name string, ctor Constructor[T], opts ...Option) *Type {
	if name == "" {
		name = NameOf[T]()
	}
	t := &Type{
		name: name,
		meta: metadata.NewStore(name),
		factory: func(c *Container) (any, error) {
			return ctor(c)
		},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Type) Name() string              { return t.name }
func (t *Type) String() string            { return t.name }
func (t *Type) Metadata() *metadata.Store { return t.meta }

func (t *Type) Provides() []string {
	names, _ := metadata.Get(t.meta, ProvidesKey)
	return names
}

func WithMetadata[T any](k *metadata.Key[T], v T) Option {
	return func(t *Type) {
		metadata.Set(t.meta, k, v)
	}
}

// Provides 同时以别名注册。不做结构检查，类型不符在 Resolve 时报错
func Provides[T any](a Alias[T]) Option {
	return WithMetadata(ProvidesKey, []string{a.Name()})
}

// Alias 具名能力，解析时返回提供该能力的已注册类型
type Alias[T any] struct {
	name string
}

func NewAlias[T any](name string) Alias[T] {
	return Alias[T]{name: name}
}

func (a Alias[T]) Name() string   { return a.name }
func (a Alias[T]) String() string { return a.name }

// Key 按注册名解析
type Key string

func (k Key) Name() string { return string(k) }

// NameOf 去掉指针后的类型名
func NameOf[T any]() string {
	rt := reflect.TypeOf((*T)(nil)).Elem()
	for rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	if rt.Name() == "" {
		return rt.String()
	}
	return rt.Name()
}

// Package metadata 为可注册类型挂载按 Key 存取的元数据。
//
// 每个 Key 自带合并策略：
//
//	Overwrite  标量，后写覆盖
//	Append     列表，按写入顺序追加
//	Upsert     映射，同名条目后写覆盖
//
// 一个 Store 只属于一个类型，不继承也不共享。
package metadata

import (
	"fmt"
	"maps"
	"slices"
	"sync"
)

// Strategy 决定新值如何与已有值合并
type Strategy int

const (
	Overwrite Strategy = iota
	Append
	Upsert
)

func (s Strategy) String() string {
	switch s {
	case Overwrite:
		return "overwrite"
	case Append:
		return "append"
	case Upsert:
		return "upsert"
	}
	return fmt.Sprintf("strategy(%d)", int(s))
}

// Key 按指针比较：同名的两个 Key 依然是不同的 Key
type Key[T any] struct {
	name     string
	strategy Strategy
	merge    func(old T, value T) T
	clone    func(v T) T
}

// NewKey 标量 Key，后写覆盖
func NewKey[T any](name string) *Key[T] {
	return &Key[T]{
		name:     name,
		strategy: Overwrite,
		merge:    func(_ T, v T) T { return v },
		clone:    func(v T) T { return v },
	}
}

// NewListKey 列表 Key，按写入顺序追加
func NewListKey[E any](name string) *Key[[]E] {
	return &Key[[]E]{
		name:     name,
		strategy: Append,
		merge: func(old, v []E) []E {
			out := make([]E, 0, len(old)+len(v))
			out = append(out, old...)
			return append(out, v...)
		},
		clone: slices.Clone[[]E],
	}
}

// NewMapKey 映射 Key，逐条 upsert
func NewMapKey[K comparable, V any](name string) *Key[map[K]V] {
	return &Key[map[K]V]{
		name:     name,
		strategy: Upsert,
		merge: func(old, v map[K]V) map[K]V {
			out := make(map[K]V, len(old)+len(v))
			maps.Copy(out, old)
			maps.Copy(out, v)
			return out
		},
		clone: maps.Clone[map[K]V],
	}
}

func (k *Key[T]) Name() string       { return k.name }
func (k *Key[T]) Strategy() Strategy { return k.strategy }
func (k *Key[T]) String() string     { return k.name + " (" + k.strategy.String() + ")" }

// Store 单个类型的元数据
type Store struct {
	mu     sync.RWMutex
	owner  string
	values map[any]any
	keys   []string
	sealed bool
}

func NewStore(owner string) *Store {
	return &Store{owner: owner, values: make(map[any]any)}
}

func (s *Store) Owner() string { return s.owner }

// Seal 之后 Store 只读，再写会 panic
func (s *Store) Seal() {
	s.mu.Lock()
	s.sealed = true
	s.mu.Unlock()
}

func (s *Store) Sealed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sealed
}

// Keys 已写入的 Key 名称（首次写入顺序）
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.keys)
}

// Set 按 Key 的策略合并写入
func Set[T any](s *Store, k *Key[T], value T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sealed {
		panic(fmt.Sprintf("metadata: store of %q is sealed, cannot set %s", s.owner, k.name))
	}
	old, ok := s.values[k]
	if !ok {
		s.keys = append(s.keys, k.name)
		var zero T
		s.values[k] = k.merge(zero, value)
		return
	}
	s.values[k] = k.merge(old.(T), value)
}

// Get 返回副本；未写入过返回 false，不算错误
func Get[T any](s *Store, k *Key[T]) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[k]
	if !ok {
		var zero T
		return zero, false
	}
	return k.clone(v.(T)), true
}

func Has[T any](s *Store, k *Key[T]) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.values[k]
	return ok
}

package container

import (
	"fmt"
	"reflect"
)

func Resolve[T any](c *Container, sym Symbol) (T, error) {
	var zero T
	v, err := c.Resolve(sym)
	if err != nil {
		return zero, err
	}
	out, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %s is %T, not %s", ErrTypeMismatch, sym.Name(), v, reflect.TypeOf((*T)(nil)).Elem())
	}
	return out, nil
}

// MustResolve 仅用于装配代码，失败即 panic
func MustResolve[T any](c *Container, sym Symbol) T {
	v, err := Resolve[T](c, sym)
	if err != nil {
		panic(err)
	}
	return v
}

func ResolveAll[T any](c *Container, text string) ([]T, error) {
	values, err := c.ResolveAll(text)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(values))
	for _, v := range values {
		t, ok := v.(T)
		if !ok {
			return nil, fmt.Errorf("%w: %T matched %q but is not %s", ErrTypeMismatch, v, text, reflect.TypeOf((*T)(nil)).Elem())
		}
		out = append(out, t)
	}
	return out, nil
}

package classloader

import "fmt"

// Resolve resolves name and asserts the instance to T.
//
//	service, err := classloader.Resolve[*UserService](resolver, "app.UserService")
func Resolve[T any](h Handle, name string) (T, error) {
	var zero T

	instance, err := h.Get(name)
	if err != nil {
		return zero, err
	}

	typed, ok := instance.(T)
	if !ok {
		return zero, fmt.Errorf("resolve %s: instance of type %T is not %T", name, instance, zero)
	}

	return typed, nil
}

// MustResolve is like Resolve but panics on error.
func MustResolve[T any](h Handle, name string) T {
	typed, err := Resolve[T](h, name)
	if err != nil {
		panic(err)
	}
	return typed
}

// ResolveType resolves the type registered under the name derived from T.
//
//	service, err := classloader.ResolveType[*UserService](resolver)
func ResolveType[T any](h Handle) (T, error) {
	return Resolve[T](h, NameOf[T]())
}

// Override registers a typed override for the type name derived from T.
//
//	classloader.Override(resolver, func(h classloader.Handle) (*Database, error) {
//	    return &Database{DSN: "sqlite::memory:"}, nil
//	})
func Override[T any](r *Resolver, factory func(h Handle) (T, error)) {
	r.RegisterOverride(NameOf[T](), func(_ string, h Handle) (any, error) {
		return factory(h)
	})
}

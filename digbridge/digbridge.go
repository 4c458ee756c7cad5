// Package digbridge exposes catalog types to a go.uber.org/dig container.
//
// Each exported type is provided to dig through a constructor that resolves
// it from the Resolver, so dig consumers and Resolver users share the same
// singleton instances and overrides.
//
//	c := dig.New()
//	if err := digbridge.ProvideAll(c, resolver); err != nil {
//	    return err
//	}
//
//	err := c.Invoke(func(svc *UserService) {
//	    // svc is the instance resolver.Get would return
//	})
package digbridge

import (
	"errors"
	"fmt"
	"reflect"

	"go.uber.org/dig"

	"github.com/junioryono/classloader"
)

var errType = reflect.TypeOf((*error)(nil)).Elem()

// Provide registers the catalog type name with c. Additional dig options,
// such as dig.Name, are passed through.
func Provide(c *dig.Container, r *classloader.Resolver, name string, opts ...dig.ProvideOption) error {
	def, ok := r.Catalog().Definition(name)
	if !ok {
		return classloader.TypeNotFoundError{Name: name, Available: r.Catalog().Names()}
	}

	if err := c.Provide(constructorFor(r, name, def.Type), opts...); err != nil {
		return fmt.Errorf("provide %s to dig: %w", name, err)
	}

	return nil
}

// ProvideAll registers every catalog type with c. Types dig rejects, for
// example a second name producing an already provided type, are reported
// together; the remaining types are still provided.
func ProvideAll(c *dig.Container, r *classloader.Resolver) error {
	var errs []error
	for _, name := range r.Catalog().Names() {
		if err := Provide(c, r, name); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// constructorFor builds a func() (T, error) resolving name through r.
func constructorFor(r *classloader.Resolver, name string, t reflect.Type) any {
	fnType := reflect.FuncOf(nil, []reflect.Type{t, errType}, false)

	fn := reflect.MakeFunc(fnType, func([]reflect.Value) []reflect.Value {
		instance, err := r.Get(name)
		if err == nil && instance != nil && !reflect.TypeOf(instance).AssignableTo(t) {
			err = fmt.Errorf("resolve %s: instance of type %T is not %v", name, instance, t)
		}

		if err != nil {
			return []reflect.Value{reflect.Zero(t), reflect.ValueOf(&err).Elem()}
		}

		value := reflect.New(t).Elem()
		if instance != nil {
			value.Set(reflect.ValueOf(instance))
		}
		return []reflect.Value{value, reflect.Zero(errType)}
	})

	return fn.Interface()
}

package classloader

import (
	"context"
	"errors"
	"reflect"
	"slices"

	"go.uber.org/zap"

	"github.com/junioryono/classloader/internal/reflection"
	"github.com/junioryono/classloader/internal/registry"
)

// resolve produces the instance of name. chain holds the types being
// constructed by the current Get call, outermost first; chain[0] is the root.
// Nothing is cached for a type unless its construction succeeds.
func (r *Resolver) resolve(name string, chain []string) (any, error) {
	if len(chain) > 0 && r.references(name, chain) {
		return nil, CircularDependencyError{Name: name, Chain: slices.Clone(chain)}
	}

	if r.maxDepth > 0 && len(chain) >= r.maxDepth {
		return nil, MaxDepthError{Name: name, Depth: len(chain), MaxDepth: r.maxDepth}
	}

	// Overrides are consulted before the cache on every request.
	if r.registry.HasOverride(name) {
		return r.invokeOverride(name, chain)
	}

	if instance, ok := r.registry.GetCached(name); ok {
		return instance, nil
	}

	def, ok := r.catalog.Definition(name)
	if !ok {
		return nil, TypeNotFoundError{Name: name}
	}

	var args []reflect.Value
	if def.HasConstructor() {
		// Full clip so sibling parameters never share a backing array.
		next := append(chain[:len(chain):len(chain)], name)

		var err error
		if args, err = r.arguments(def, next); err != nil {
			return nil, err
		}
	}

	instance, err := reflection.Invoke(def.Constructor, def.info, args)
	if err != nil {
		var panicErr *reflection.PanicError
		if errors.As(err, &panicErr) {
			return nil, ConstructorPanicError{Name: name, Panic: panicErr.Panic, Stack: panicErr.Stack}
		}
		return nil, ConstructorError{Name: name, Cause: err}
	}

	return r.store(name, instance, len(chain))
}

// store caches a freshly constructed instance. An instance that loses a race
// with a concurrent construction, or that is built after the resolver was
// closed, is never handed out and is torn down right away.
func (r *Resolver) store(name string, instance any, depth int) (any, error) {
	stored, fresh, err := r.registry.PutCached(name, instance)
	if err != nil {
		r.discard(name, instance, "resolver closed during construction")
		return nil, ErrResolverClosed
	}

	if !fresh {
		r.discard(name, instance, "instance constructed concurrently")
		return stored, nil
	}

	r.logger.Debug("type constructed",
		zap.String("type", name),
		zap.Int("depth", depth),
	)
	return stored, nil
}

// discard tears down an instance that will not be cached.
func (r *Resolver) discard(name string, instance any, reason string) {
	r.logger.Debug("discarding instance",
		zap.String("type", name),
		zap.String("reason", reason),
	)

	if err := teardown(context.Background(), registry.Entry{Name: name, Instance: instance}); err != nil {
		r.logger.Error("teardown hook failed",
			zap.String("type", name),
			zap.Error(err),
		)
	}
}

// references reports whether name closes a cycle in chain.
func (r *Resolver) references(name string, chain []string) bool {
	if r.cycleDetection == FullChain {
		return slices.Contains(chain, name)
	}
	return chain[0] == name
}

// invokeOverride hands construction of name to its registered factory. The
// factory's handle continues the current chain, so types it requests are
// subject to the same cycle and depth checks.
func (r *Resolver) invokeOverride(name string, chain []string) (any, error) {
	factory := r.registry.GetOverride(name)

	r.logger.Debug("invoking override", zap.String("type", name))

	h := requestHandle{resolver: r, chain: append(chain[:len(chain):len(chain)], name)}
	instance, err := factory(name, h)
	if err != nil {
		return nil, FactoryError{Name: name, Cause: err}
	}

	return instance, nil
}

// arguments resolves the constructor arguments of def in declaration order.
func (r *Resolver) arguments(def *Definition, chain []string) ([]reflect.Value, error) {
	params := r.catalog.Parameters(def)
	args := make([]reflect.Value, len(params))

	for i, param := range params {
		switch {
		case param.IsDependency():
			instance, err := r.resolve(param.Dependency, chain)
			if err != nil {
				return nil, ResolutionError{Name: def.Name, Parameter: param.Name, Cause: err}
			}

			if args[i], err = reflection.InstanceValue(instance, param.Type); err != nil {
				return nil, ArgumentError{Name: def.Name, Parameter: param.Name, Cause: err}
			}

		case param.HasDefault:
			var err error
			if args[i], err = reflection.ArgumentValue(param.Default, param.Type); err != nil {
				return nil, ArgumentError{Name: def.Name, Parameter: param.Name, Cause: err}
			}

		default:
			return nil, UnresolvedParameterError{
				Name:          def.Name,
				Parameter:     param.Name,
				Index:         param.Index,
				ParameterType: param.Type,
			}
		}
	}

	return args, nil
}

// requestHandle is the Handle given to override factories. Get continues the
// chain of the request that invoked the factory.
type requestHandle struct {
	resolver *Resolver
	chain    []string
}

var _ Handle = requestHandle{}

func (h requestHandle) Get(name string) (any, error) {
	if err := h.resolver.check(name); err != nil {
		return nil, err
	}
	return h.resolver.resolve(name, h.chain)
}

func (h requestHandle) Cached(name string) (any, bool) {
	return h.resolver.Cached(name)
}

func (h requestHandle) Cache(name string, instance any) any {
	return h.resolver.Cache(name, instance)
}

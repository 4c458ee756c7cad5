package classloader

import (
	"io"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/junioryono/classloader/internal/graph"
	"github.com/junioryono/classloader/internal/registry"
)

// Factory is an override callback. It fully replaces the default
// construction of the type name it is registered for, and is invoked on every
// request for that type. Any caching is up to the factory, which can use
// Handle.Cached and Handle.Cache.
type Factory func(name string, h Handle) (any, error)

// Handle is the view of the Resolver given to override factories.
type Handle interface {
	// Get resolves a type. From a Resolver this starts a new request; from
	// the handle passed to a factory it continues the request that invoked
	// the factory, so a factory requesting a type that is still being
	// constructed fails with ErrCircularDependency or ErrMaxDepth.
	Get(name string) (any, error)

	// Cached returns the instance cached for name.
	Cached(name string) (any, bool)

	// Cache stores instance as the singleton for name and returns the
	// instance that is cached afterwards. An existing entry is kept.
	Cache(name string, instance any) any
}

var _ Handle = (*Resolver)(nil)

// Resolver constructs types from a Catalog, recursively resolving
// constructor dependencies. Every type built without an override is
// constructed at most once and shared for the lifetime of the Resolver.
//
// A Resolver is safe for concurrent use. Concurrent first requests for the
// same type may both run its constructor; only one instance is kept and
// returned to every caller.
type Resolver struct {
	id       string
	catalog  *Catalog
	registry *registry.Registry[Factory]
	logger   *zap.Logger

	maxDepth       int
	cycleDetection CycleDetection

	closed atomic.Bool
}

// New creates a Resolver over catalog.
//
//	resolver, err := classloader.New(catalog, classloader.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	defer resolver.Close()
//
//	service, err := classloader.Resolve[*UserService](resolver, "app.UserService")
func New(catalog *Catalog, opts ...Option) (*Resolver, error) {
	if catalog == nil {
		return nil, ErrCatalogNil
	}

	options := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt.apply(options)
		}
	}

	id := uuid.NewString()

	return &Resolver{
		id:             id,
		catalog:        catalog,
		registry:       registry.New[Factory](),
		logger:         options.logger.With(zap.String("resolver_id", id)),
		maxDepth:       options.maxDepth,
		cycleDetection: options.cycleDetection,
	}, nil
}

// ID returns the unique identifier of the resolver.
func (r *Resolver) ID() string {
	return r.id
}

// Catalog returns the catalog the resolver builds from.
func (r *Resolver) Catalog() *Catalog {
	return r.catalog
}

// Get returns the instance of the named type, constructing it and its
// dependencies on first use. It fails with ErrTypeNotFound, before doing any
// work, when the catalog does not define name.
func (r *Resolver) Get(name string) (any, error) {
	if err := r.check(name); err != nil {
		return nil, err
	}

	return r.resolve(name, nil)
}

// check rejects requests on a closed resolver and for unknown type names.
func (r *Resolver) check(name string) error {
	if r.closed.Load() {
		return ErrResolverClosed
	}

	if !r.catalog.Has(name) {
		return TypeNotFoundError{Name: name, Available: r.catalog.Names()}
	}

	return nil
}

// RegisterOverride registers factory as the constructor of name. The last
// registration for a name wins. Overrides take precedence over cached
// instances, so registering one after name was first resolved changes what
// subsequent Get calls return.
func (r *Resolver) RegisterOverride(name string, factory Factory) {
	if factory == nil {
		panic(ErrFactoryNil)
	}

	r.registry.RegisterOverride(name, factory)
	r.logger.Debug("override registered", zap.String("type", name))
}

// HasOverride reports whether an override is registered for name.
func (r *Resolver) HasOverride(name string) bool {
	return r.registry.HasOverride(name)
}

// Cached returns the instance cached for name.
func (r *Resolver) Cached(name string) (any, bool) {
	return r.registry.GetCached(name)
}

// Cache stores instance as the cached singleton for name. An entry that
// already exists is kept and returned instead. A closed resolver caches
// nothing and returns instance unchanged.
func (r *Resolver) Cache(name string, instance any) any {
	stored, _, err := r.registry.PutCached(name, instance)
	if err != nil {
		return instance
	}
	return stored
}

// Resolved reports whether an instance of name is cached.
func (r *Resolver) Resolved(name string) bool {
	_, ok := r.registry.GetCached(name)
	return ok
}

// WriteDOT writes the catalog's dependency graph in Graphviz DOT format.
// Types with a cached instance are drawn filled.
func (r *Resolver) WriteDOT(w io.Writer) error {
	return graph.NewVisualizer(r.catalog.graph()).WriteDOT(w, r.Resolved)
}

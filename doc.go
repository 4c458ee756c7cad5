// Package classloader provides a minimal dependency-resolving instance
// container for Go applications.
//
// # Overview
//
// A Resolver builds instances of types by name. Types are defined in a
// Catalog, either with a constructor function or as a bare type that is built
// by zero allocation. Constructor parameters whose type is itself defined in
// the catalog are resolved recursively; other parameters take their declared
// default value. The library provides:
//   - Lazy construction on first request
//   - One shared instance per type for the lifetime of the Resolver
//   - Per-type override factories that replace default construction
//   - Detection of types that require themselves
//   - Best-effort teardown of cached instances
//   - Thread-safe operations
//
// # Basic Usage
//
// Define types, create a resolver and resolve by name:
//
//	catalog := classloader.NewCatalog()
//	catalog.MustAdd(&Database{})
//	catalog.MustAdd(NewUserService,
//	    classloader.Params("db", "greeting"),
//	    classloader.Default("greeting", "hello"),
//	)
//
//	resolver, err := classloader.New(catalog)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer resolver.Close()
//
//	userService, err := classloader.ResolveType[*UserService](resolver)
//
// # Type Names
//
// A type is registered under the package-qualified name of the type its
// constructor returns, with one level of pointer removed, for example
// "github.com/acme/app.UserService". Use Name to pick another name and NameOf
// to compute the default one.
//
// # Resolution Order
//
// Every request for a type name is answered in this order:
//
//  1. A registered override factory, invoked on every request
//  2. The cached instance
//  3. Construction through the catalog, after which the instance is cached
//
// Overrides are never cached by the resolver. A factory that wants a single
// instance uses Handle.Cached and Handle.Cache. Types a factory requests
// through its Handle count as part of the request that invoked it.
//
//	resolver.RegisterOverride("app.Clock", func(name string, h classloader.Handle) (any, error) {
//	    return fakeClock, nil
//	})
//
// # Circular Dependencies
//
// By default a requested type is compared against the root of the current
// Get call, so a type that requires itself directly or through other types is
// reported with ErrCircularDependency. Cycles that do not pass through the
// root are stopped by the depth bound (see WithMaxDepth). WithStrictCycleDetection
// compares against the whole construction chain instead, and Catalog.Validate
// checks the whole catalog ahead of time.
//
// # Teardown
//
// Close calls Close on every cached instance implementing Disposable or
// DisposableWithContext, newest first. A failing hook is logged and never
// stops the remaining hooks.
//
// # Configuration
//
// Resolver options can be loaded from the environment, .env files or YAML with
// LoadConfig and LoadConfigFile. Logging uses go.uber.org/zap; see WithLogger.
//
// # Error Handling
//
// Errors are typed and match sentinel values through errors.Is:
//
//	_, err := resolver.Get("app.Missing")
//	if classloader.IsTypeNotFound(err) {
//	    // handle missing type
//	}
//
// # Integration
//
// The digbridge subpackage provides catalog types to a go.uber.org/dig
// container, sharing the resolver's instances.
package classloader

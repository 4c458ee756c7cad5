package classloader

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/junioryono/classloader/internal/graph"
	"github.com/junioryono/classloader/internal/reflection"
)

// Catalog is the set of constructible types a Resolver can build, keyed by
// type name. It answers whether a type exists and how to construct it.
//
// Types are added either with a constructor function, whose parameters become
// the type's dependencies, or with a value or reflect.Type, in which case the
// type has no constructor and is built by zero allocation.
//
// Example:
//
//	catalog := classloader.NewCatalog()
//	catalog.MustAdd(&Database{})
//	catalog.MustAdd(NewUserService,
//	    classloader.Params("db", "greeting"),
//	    classloader.Default("greeting", "hello"),
//	)
//
//	resolver, err := classloader.New(catalog)
type Catalog struct {
	mu           sync.RWMutex
	introspector *reflection.Introspector

	// type name -> definition
	definitions map[string]*Definition

	// produced type -> type name, used to recognise dependency parameters
	byType map[reflect.Type]string
}

// Definition describes how one type is constructed.
type Definition struct {
	// Name is the type name the definition is registered under.
	Name string

	// Type is the type of the constructed instance.
	Type reflect.Type

	// Constructor is the constructor function; invalid for types built
	// without a constructor.
	Constructor reflect.Value

	// ParamNames names constructor parameters by position.
	ParamNames []string

	// Defaults holds declared default values by parameter name.
	Defaults map[string]any

	info *reflection.ConstructorInfo
}

// HasConstructor reports whether the type is built by calling a constructor.
func (d *Definition) HasConstructor() bool {
	return d.info.IsFunc
}

// DefinitionOption configures a type added to a Catalog.
type DefinitionOption interface {
	apply(*definitionOptions)
}

// definitionOptions holds definition configuration.
type definitionOptions struct {
	name     string
	params   []string
	defaults map[string]any
}

// definitionOptionFunc adapts a function to DefinitionOption.
type definitionOptionFunc func(*definitionOptions)

func (f definitionOptionFunc) apply(opts *definitionOptions) {
	f(opts)
}

// Name registers the type under an explicit type name instead of the one
// derived from the constructed type.
func Name(name string) DefinitionOption {
	return definitionOptionFunc(func(opts *definitionOptions) {
		opts.name = name
	})
}

// Params names the constructor parameters in declaration order. Unnamed
// parameters are called arg0, arg1, ...
func Params(names ...string) DefinitionOption {
	return definitionOptionFunc(func(opts *definitionOptions) {
		opts.params = names
	})
}

// Default declares the default value of a constructor parameter. The value is
// used when the parameter's type is not constructible.
func Default(param string, value any) DefinitionOption {
	return definitionOptionFunc(func(opts *definitionOptions) {
		if opts.defaults == nil {
			opts.defaults = make(map[string]any)
		}
		opts.defaults[param] = value
	})
}

// NewCatalog creates an empty Catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		introspector: reflection.New(),
		definitions:  make(map[string]*Definition),
		byType:       make(map[reflect.Type]string),
	}
}

// Add defines a constructible type. constructor is a function returning T or
// (T, error), a reflect.Type, or a value whose type is built without a
// constructor. Adding a name twice replaces the earlier definition.
func (c *Catalog) Add(constructor any, opts ...DefinitionOption) error {
	options := &definitionOptions{}
	for _, opt := range opts {
		if opt != nil {
			opt.apply(options)
		}
	}

	info, err := c.introspector.Analyze(constructor)
	if err != nil {
		return DefinitionError{Name: options.name, Cause: err}
	}

	name := options.name
	if name == "" {
		name = TypeNameOf(info.Produces)
	}
	if name == "" {
		return DefinitionError{Cause: ErrTypeNameEmpty}
	}

	def := &Definition{
		Name:       name,
		Type:       info.Produces,
		ParamNames: options.params,
		Defaults:   options.defaults,
		info:       info,
	}
	if info.IsFunc {
		def.Constructor = reflect.ValueOf(constructor)
	}

	if err := validateDefinition(def); err != nil {
		return DefinitionError{Name: name, Cause: err}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if previous, ok := c.definitions[name]; ok && c.byType[previous.Type] == name {
		delete(c.byType, previous.Type)
	}

	c.definitions[name] = def
	c.byType[def.Type] = name

	return nil
}

// MustAdd is like Add but panics on error.
func (c *Catalog) MustAdd(constructor any, opts ...DefinitionOption) {
	if err := c.Add(constructor, opts...); err != nil {
		panic(err)
	}
}

// validateDefinition checks parameter names and default values.
func validateDefinition(def *Definition) error {
	if len(def.ParamNames) > len(def.info.Parameters) {
		return fmt.Errorf("%d parameter names given for %d parameters",
			len(def.ParamNames), len(def.info.Parameters))
	}

	seen := make(map[string]bool, len(def.info.Parameters))
	types := make(map[string]reflect.Type, len(def.info.Parameters))
	for i, param := range def.info.Parameters {
		name := reflection.ParameterName(def.ParamNames, i)
		if seen[name] {
			return fmt.Errorf("%w: %s", ErrParamNameDuplicated, name)
		}
		seen[name] = true
		types[name] = param.Type
	}

	var errs []error
	for param, value := range def.Defaults {
		t, ok := types[param]
		if !ok {
			errs = append(errs, fmt.Errorf("default for unknown parameter %s", param))
			continue
		}
		if _, err := reflection.ArgumentValue(value, t); err != nil {
			errs = append(errs, fmt.Errorf("parameter %s: %w", param, err))
		}
	}

	return errors.Join(errs...)
}

// Has reports whether name is a known constructible type.
func (c *Catalog) Has(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.definitions[name]
	return ok
}

// Definition returns the definition registered under name.
func (c *Catalog) Definition(name string) (*Definition, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	def, ok := c.definitions[name]
	return def, ok
}

// Lookup returns the type name that constructs exactly t.
func (c *Catalog) Lookup(t reflect.Type) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	name, ok := c.byType[t]
	return name, ok
}

// Names returns all defined type names in lexical order.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.definitions))
	for name := range c.definitions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of defined types.
func (c *Catalog) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.definitions)
}

// Parameters returns the constructor parameter schema of def. Dependencies
// are looked up at call time, so types added later are recognised.
func (c *Catalog) Parameters(def *Definition) []reflection.Parameter {
	return c.introspector.Parameters(def.info, def.ParamNames, def.Defaults, c.Lookup)
}

// Validate checks the whole catalog for dependency cycles, including cycles
// that do not pass through the type being resolved.
func (c *Catalog) Validate() error {
	return cycleError(c.graph().DetectCycles())
}

// Order returns every type name in construction order: each type follows
// the types it depends on. Order fails with ErrCircularDependency when the
// catalog has a cycle.
func (c *Catalog) Order() ([]string, error) {
	order, err := c.graph().TopologicalSort()
	if err != nil {
		return nil, cycleError(err)
	}
	return order, nil
}

// cycleError converts a graph cycle into a CircularDependencyError.
func cycleError(err error) error {
	var cycleErr *graph.CircularDependencyError
	if errors.As(err, &cycleErr) {
		return CircularDependencyError{Name: cycleErr.Node, Chain: cycleErr.Path}
	}
	return err
}

// graph builds the dependency graph of every definition.
func (c *Catalog) graph() *graph.DependencyGraph {
	g := graph.NewDependencyGraph()

	for _, name := range c.Names() {
		def, ok := c.Definition(name)
		if !ok {
			continue
		}

		var deps []string
		for _, param := range c.Parameters(def) {
			if param.IsDependency() {
				deps = append(deps, param.Dependency)
			}
		}
		g.AddNode(name, deps)
	}

	return g
}

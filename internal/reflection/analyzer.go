package reflection

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
)

var (
	errType  = reflect.TypeOf((*error)(nil)).Elem()
	typeType = reflect.TypeOf((*reflect.Type)(nil)).Elem()
)

var (
	// ErrNilConstructor is returned when a nil constructor is analyzed.
	ErrNilConstructor = errors.New("constructor cannot be nil")

	// ErrInvalidSignature is returned for functions that cannot act as constructors.
	ErrInvalidSignature = errors.New("invalid constructor signature")
)

// Lookup maps a declared parameter type to the name of a constructible type.
type Lookup func(t reflect.Type) (string, bool)

// Introspector performs reflection-based analysis of constructors and types.
// It caches analysis results per signature.
type Introspector struct {
	mu    sync.RWMutex
	cache map[reflect.Type]*ConstructorInfo
}

// ConstructorInfo contains analyzed information about a constructor function
// or, for types without a constructor, about the type itself.
type ConstructorInfo struct {
	// Type is the function signature, or the allocated type when IsFunc is false.
	Type reflect.Type

	// Produces is the type of the constructed instance.
	Produces reflect.Type

	Parameters     []ParameterInfo
	IsFunc         bool
	HasErrorReturn bool // Returns error as last value
}

// ParameterInfo describes a raw constructor parameter.
type ParameterInfo struct {
	Type  reflect.Type
	Index int
}

// Parameter is the resolved schema of a single constructor parameter.
type Parameter struct {
	Name  string
	Index int
	Type  reflect.Type

	// Dependency is the type name to resolve, empty for non-type parameters.
	Dependency string

	HasDefault bool
	Default    any
}

// IsDependency reports whether the parameter resolves to a constructible type.
func (p Parameter) IsDependency() bool {
	return p.Dependency != ""
}

// New creates a new Introspector.
func New() *Introspector {
	return &Introspector{
		cache: make(map[reflect.Type]*ConstructorInfo),
	}
}

// Analyze extracts constructor information. constructor may be a function
// returning T or (T, error), a reflect.Type, or any other value whose type is
// then built without a constructor.
func (in *Introspector) Analyze(constructor any) (*ConstructorInfo, error) {
	if constructor == nil {
		return nil, ErrNilConstructor
	}

	typ := reflect.TypeOf(constructor)
	if typ.Implements(typeType) {
		typ = constructor.(reflect.Type)
		if typ == nil {
			return nil, ErrNilConstructor
		}
	}

	if typ.Kind() == reflect.Func {
		if reflect.ValueOf(constructor).IsNil() {
			return nil, ErrNilConstructor
		}
	}

	in.mu.RLock()
	if cached, ok := in.cache[typ]; ok {
		in.mu.RUnlock()
		return cached, nil
	}
	in.mu.RUnlock()

	info := &ConstructorInfo{Type: typ}

	if typ.Kind() != reflect.Func {
		info.Produces = typ
		return in.cacheAndReturn(info), nil
	}

	info.IsFunc = true

	if err := in.analyzeReturns(info); err != nil {
		return nil, err
	}

	if typ.IsVariadic() {
		return nil, fmt.Errorf("%w: variadic constructor %v", ErrInvalidSignature, typ)
	}

	info.Parameters = make([]ParameterInfo, typ.NumIn())
	for i := 0; i < typ.NumIn(); i++ {
		info.Parameters[i] = ParameterInfo{Type: typ.In(i), Index: i}
	}

	return in.cacheAndReturn(info), nil
}

// analyzeReturns validates the return values of a constructor function.
func (in *Introspector) analyzeReturns(info *ConstructorInfo) error {
	fnType := info.Type

	switch fnType.NumOut() {
	case 1:
	case 2:
		if !implementsError(fnType.Out(1)) {
			return fmt.Errorf("%w: second return value of %v must be error", ErrInvalidSignature, fnType)
		}
		info.HasErrorReturn = true
	default:
		return fmt.Errorf("%w: %v must return T or (T, error)", ErrInvalidSignature, fnType)
	}

	if implementsError(fnType.Out(0)) {
		return fmt.Errorf("%w: %v only returns error", ErrInvalidSignature, fnType)
	}

	info.Produces = fnType.Out(0)
	return nil
}

// Parameters builds the ordered parameter schema for info. names supplies
// parameter names by position (missing entries become argN), defaults holds
// declared default values by parameter name, and lookup decides which
// declared types are themselves constructible.
func (in *Introspector) Parameters(
	info *ConstructorInfo,
	names []string,
	defaults map[string]any,
	lookup Lookup,
) []Parameter {
	params := make([]Parameter, len(info.Parameters))

	for i, raw := range info.Parameters {
		param := Parameter{
			Name:  ParameterName(names, i),
			Index: raw.Index,
			Type:  raw.Type,
		}

		if lookup != nil {
			if name, ok := lookup(raw.Type); ok {
				param.Dependency = name
			}
		}

		if param.Dependency == "" {
			param.Dependency = annotatedDependency(info, raw)
		}

		if value, ok := defaults[param.Name]; ok {
			param.HasDefault = true
			param.Default = value
		}

		params[i] = param
	}

	return params
}

// annotatedDependency is the fallback source of type information for
// parameters whose declared type is not constructible. Go has no annotation
// syntax that carries a richer type, so this always reports none.
func annotatedDependency(_ *ConstructorInfo, _ ParameterInfo) string {
	return ""
}

// ParameterName returns the name of the parameter at index.
func ParameterName(names []string, index int) string {
	if index < len(names) && names[index] != "" {
		return names[index]
	}
	return fmt.Sprintf("arg%d", index)
}

// cacheAndReturn caches the analysis result and returns it.
func (in *Introspector) cacheAndReturn(info *ConstructorInfo) *ConstructorInfo {
	in.mu.Lock()
	defer in.mu.Unlock()

	if cached, ok := in.cache[info.Type]; ok {
		return cached
	}
	in.cache[info.Type] = info
	return info
}

// implementsError checks if a type implements the error interface.
func implementsError(t reflect.Type) bool {
	return t.Implements(errType)
}

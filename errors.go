package classloader

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/junioryono/classloader/internal/reflection"
)

// ========================================
// Core Error Values (Sentinel Errors)
// ========================================
// The typed errors below match these through errors.Is, so callers can test
// for an error kind without caring about the concrete type.

var (
	// Resolution errors.
	ErrTypeNotFound        = errors.New("type not found")
	ErrCircularDependency  = errors.New("circular dependency detected")
	ErrUnresolvedParameter = errors.New("unresolved constructor parameter")
	ErrMaxDepth            = errors.New("maximum resolution depth exceeded")

	// Lifecycle errors.
	ErrTeardownFailure = errors.New("teardown failed")
	ErrResolverClosed  = errors.New("resolver has been closed")

	// Registration errors.
	ErrCatalogNil          = errors.New("catalog cannot be nil")
	ErrConstructorNil      = reflection.ErrNilConstructor
	ErrInvalidConstructor  = reflection.ErrInvalidSignature
	ErrTypeNameEmpty       = errors.New("type name cannot be empty")
	ErrFactoryNil          = errors.New("override factory cannot be nil")
	ErrParamNameDuplicated = errors.New("parameter name declared twice")
)

var (
	_ error = TypeNotFoundError{}
	_ error = CircularDependencyError{}
	_ error = UnresolvedParameterError{}
	_ error = MaxDepthError{}
	_ error = ResolutionError{}
	_ error = ArgumentError{}
	_ error = ConstructorError{}
	_ error = ConstructorPanicError{}
	_ error = FactoryError{}
	_ error = TeardownError{}
	_ error = DefinitionError{}
)

// ========================================
// Typed Errors for Rich Context
// ========================================

// TypeNotFoundError indicates the requested type is not in the catalog.
type TypeNotFoundError struct {
	Name      string
	Available []string // Names that ARE defined (optional, for suggestions)
}

func (e TypeNotFoundError) Error() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("type not found: %s", e.Name))

	if similar := findSimilarNames(e.Name, e.Available); len(similar) > 0 {
		b.WriteString("\n\nDid you mean one of these?\n")
		for _, name := range similar {
			b.WriteString(fmt.Sprintf("  • %s\n", name))
		}
	}

	return b.String()
}

func (e TypeNotFoundError) Is(target error) bool {
	return target == ErrTypeNotFound
}

// findSimilarNames finds names that share a short name or contain each other.
func findSimilarNames(target string, available []string) []string {
	if target == "" || len(available) == 0 {
		return nil
	}

	short := shortName(target)
	lowerTarget := strings.ToLower(target)

	var similar []string
	for _, name := range available {
		if name == target {
			continue
		}

		lowerName := strings.ToLower(name)
		if shortName(name) == short ||
			strings.Contains(lowerName, strings.ToLower(short)) ||
			strings.Contains(lowerTarget, strings.ToLower(shortName(name))) {
			similar = append(similar, name)
		}

		// Limit suggestions
		if len(similar) >= 5 {
			break
		}
	}

	sort.Strings(similar)
	return similar
}

// shortName strips the package path from a type name.
func shortName(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 && i < len(name)-1 {
		return name[i+1:]
	}
	return name
}

// CircularDependencyError indicates a type's construction chain leads back to
// a type that is still being constructed.
type CircularDependencyError struct {
	Name  string
	Chain []string // Types being constructed when Name was requested again
}

func (e CircularDependencyError) Error() string {
	if len(e.Chain) == 0 {
		return fmt.Sprintf("circular dependency detected: can not load %s because it references itself", e.Name)
	}

	return fmt.Sprintf("circular dependency detected: can not load %s because it references itself (%s -> %s)",
		e.Name, strings.Join(e.Chain, " -> "), e.Name)
}

func (e CircularDependencyError) Is(target error) bool {
	return target == ErrCircularDependency
}

// UnresolvedParameterError indicates a constructor parameter has neither a
// constructible type nor a declared default value.
type UnresolvedParameterError struct {
	Name          string // Type whose constructor declares the parameter
	Parameter     string
	Index         int
	ParameterType reflect.Type
}

func (e UnresolvedParameterError) Error() string {
	return fmt.Sprintf("unable to resolve parameter %s (#%d, %v) of constructor of %s: no constructible type and no default value",
		e.Parameter, e.Index, e.ParameterType, e.Name)
}

func (e UnresolvedParameterError) Is(target error) bool {
	return target == ErrUnresolvedParameter
}

// MaxDepthError indicates the dependency chain is deeper than allowed.
type MaxDepthError struct {
	Name     string
	Depth    int
	MaxDepth int
}

func (e MaxDepthError) Error() string {
	return fmt.Sprintf("maximum resolution depth %d exceeded while resolving %s (current depth: %d)",
		e.MaxDepth, e.Name, e.Depth)
}

func (e MaxDepthError) Is(target error) bool {
	return target == ErrMaxDepth
}

// ResolutionError wraps a failure to resolve one of a type's dependencies.
type ResolutionError struct {
	Name      string // Type being constructed
	Parameter string // Parameter whose dependency failed
	Cause     error
}

func (e ResolutionError) Error() string {
	return fmt.Sprintf("failed to resolve %s (parameter %s): %v", e.Name, e.Parameter, e.Cause)
}

func (e ResolutionError) Unwrap() error {
	return e.Cause
}

// ArgumentError indicates a resolved value cannot be passed as a parameter.
type ArgumentError struct {
	Name      string
	Parameter string
	Cause     error
}

func (e ArgumentError) Error() string {
	return fmt.Sprintf("invalid argument %s for constructor of %s: %v", e.Parameter, e.Name, e.Cause)
}

func (e ArgumentError) Unwrap() error {
	return e.Cause
}

// ConstructorError wraps an error returned by a constructor.
type ConstructorError struct {
	Name  string
	Cause error
}

func (e ConstructorError) Error() string {
	return fmt.Sprintf("constructor for %s failed: %v", e.Name, e.Cause)
}

func (e ConstructorError) Unwrap() error {
	return e.Cause
}

// ConstructorPanicError indicates a constructor panicked during invocation.
// It captures the panic value and stack trace for debugging.
type ConstructorPanicError struct {
	Name  string
	Panic any
	Stack []byte
}

func (e ConstructorPanicError) Error() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("constructor for %s panicked: %v\n", e.Name, e.Panic))

	if len(e.Stack) > 0 {
		b.WriteString("\nStack trace:\n")
		b.Write(e.Stack)
	}

	return b.String()
}

// FactoryError wraps an error returned by an override factory.
type FactoryError struct {
	Name  string
	Cause error
}

func (e FactoryError) Error() string {
	return fmt.Sprintf("override for %s failed: %v", e.Name, e.Cause)
}

func (e FactoryError) Unwrap() error {
	return e.Cause
}

// TeardownError reports a failing teardown hook. Teardown errors are logged,
// never returned from Close.
type TeardownError struct {
	Name  string
	Cause error
}

func (e TeardownError) Error() string {
	return fmt.Sprintf("teardown of %s failed: %v", e.Name, e.Cause)
}

func (e TeardownError) Unwrap() error {
	return e.Cause
}

func (e TeardownError) Is(target error) bool {
	return target == ErrTeardownFailure
}

// DefinitionError wraps errors from adding a type to a Catalog.
type DefinitionError struct {
	Name  string
	Cause error
}

func (e DefinitionError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("invalid type definition: %v", e.Cause)
	}
	return fmt.Sprintf("invalid type definition %s: %v", e.Name, e.Cause)
}

func (e DefinitionError) Unwrap() error {
	return e.Cause
}

// IsTypeNotFound reports whether err is caused by an unknown type.
func IsTypeNotFound(err error) bool {
	return errors.Is(err, ErrTypeNotFound)
}

// IsCircularDependency reports whether err is caused by a circular dependency.
func IsCircularDependency(err error) bool {
	return errors.Is(err, ErrCircularDependency)
}

// IsUnresolvedParameter reports whether err is caused by a parameter without
// a type or default.
func IsUnresolvedParameter(err error) bool {
	return errors.Is(err, ErrUnresolvedParameter)
}

package classloader

import (
	"fmt"

	"go.uber.org/zap"
)

// DefaultMaxDepth is the default bound on the depth of a dependency chain.
const DefaultMaxDepth = 100

// CycleDetection selects how the resolver recognises self-referencing
// construction chains.
type CycleDetection int

const (
	// RootOnly compares a requested type only against the type that started
	// the current Get call. a -> b -> a is caught; a -> b -> c -> b is not,
	// and runs until the depth bound stops it.
	RootOnly CycleDetection = iota

	// FullChain compares a requested type against every type still being
	// constructed, catching any cycle at the point it closes.
	FullChain
)

// String returns the string representation of the CycleDetection.
func (m CycleDetection) String() string {
	switch m {
	case RootOnly:
		return "RootOnly"
	case FullChain:
		return "FullChain"
	default:
		return fmt.Sprintf("Unknown(%d)", int(m))
	}
}

// Option configures a Resolver.
type Option interface {
	apply(*options)
}

// options holds resolver configuration.
type options struct {
	logger         *zap.Logger
	maxDepth       int
	cycleDetection CycleDetection
}

// optionFunc adapts a function to Option.
type optionFunc func(*options)

func (f optionFunc) apply(opts *options) {
	f(opts)
}

func defaultOptions() *options {
	return &options{
		logger:         zap.NewNop(),
		maxDepth:       DefaultMaxDepth,
		cycleDetection: RootOnly,
	}
}

// WithLogger sets the logger receiving lifecycle and teardown events.
func WithLogger(logger *zap.Logger) Option {
	return optionFunc(func(opts *options) {
		if logger != nil {
			opts.logger = logger
		}
	})
}

// WithMaxDepth bounds the depth of a dependency chain. A value of zero or
// less removes the bound.
func WithMaxDepth(depth int) Option {
	return optionFunc(func(opts *options) {
		opts.maxDepth = depth
	})
}

// WithCycleDetection selects the cycle detection mode.
func WithCycleDetection(mode CycleDetection) Option {
	return optionFunc(func(opts *options) {
		opts.cycleDetection = mode
	})
}

// WithStrictCycleDetection is shorthand for WithCycleDetection(FullChain).
func WithStrictCycleDetection() Option {
	return WithCycleDetection(FullChain)
}

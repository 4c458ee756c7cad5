package classloader

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// ============================================================================
// Shared Test Types
// ============================================================================

// TDependency has no constructor and is built by allocation.
type TDependency struct {
	Name string
}

// TClass depends on TDependency and has a string parameter with a default.
type TClass struct {
	Dependency *TDependency
	TestString string
}

func NewTClass(dependency *TDependency, testString string) *TClass {
	return &TClass{Dependency: dependency, TestString: testString}
}

// TSelf requires itself.
type TSelf struct {
	Self *TSelf
}

func NewTSelf(self *TSelf) *TSelf {
	return &TSelf{Self: self}
}

// TCycleA and TCycleB depend on each other.
type TCycleA struct{ B *TCycleB }
type TCycleB struct{ A *TCycleA }

func NewTCycleA(b *TCycleB) *TCycleA { return &TCycleA{B: b} }
func NewTCycleB(a *TCycleA) *TCycleB { return &TCycleB{A: a} }

// TChainA -> TChainB -> TChainC -> TChainB: the cycle does not pass through
// the root.
type TChainA struct{ B *TChainB }
type TChainB struct{ C *TChainC }
type TChainC struct{ B *TChainB }

func NewTChainA(b *TChainB) *TChainA { return &TChainA{B: b} }
func NewTChainB(c *TChainC) *TChainB { return &TChainB{C: c} }
func NewTChainC(b *TChainB) *TChainC { return &TChainC{B: b} }

// TDisposable records teardown.
type TDisposable struct {
	Name     string
	closed   atomic.Bool
	closeErr error
	onClose  func(name string)
}

func (d *TDisposable) Close() error {
	d.closed.Store(true)
	if d.onClose != nil {
		d.onClose(d.Name)
	}
	return d.closeErr
}

func (d *TDisposable) IsClosed() bool {
	return d.closed.Load()
}

// TContextDisposable records the context passed to teardown.
type TContextDisposable struct {
	ctx context.Context
}

func (d *TContextDisposable) Close(ctx context.Context) error {
	d.ctx = ctx
	return nil
}

// TPanickingDisposable panics during teardown.
type TPanickingDisposable struct{}

func (d *TPanickingDisposable) Close() error {
	panic("teardown exploded")
}

var errTeardown = errors.New("teardown failed on purpose")

// ============================================================================
// Helpers
// ============================================================================

// newTestCatalog returns a catalog with the basic fixtures.
func newTestCatalog(t *testing.T) *Catalog {
	t.Helper()

	c := NewCatalog()
	require.NoError(t, c.Add(&TDependency{}))
	require.NoError(t, c.Add(NewTClass,
		Params("dependency", "testString"),
		Default("testString", "blaat"),
	))
	return c
}

// newObservedResolver creates a resolver whose log output is captured.
func newObservedResolver(t *testing.T, c *Catalog, opts ...Option) (*Resolver, *observer.ObservedLogs) {
	t.Helper()

	core, logs := observer.New(zapcore.DebugLevel)
	opts = append([]Option{WithLogger(zap.New(core))}, opts...)

	r, err := New(c, opts...)
	require.NoError(t, err)
	return r, logs
}

package classloader

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/junioryono/classloader/internal/registry"
)

func addDisposable(t *testing.T, c *Catalog, name string, closeErr error, onClose func(string)) {
	t.Helper()

	require.NoError(t, c.Add(func() *TDisposable {
		return &TDisposable{Name: name, closeErr: closeErr, onClose: onClose}
	}, Name(name)))
}

func TestClose_TeardownIsolation(t *testing.T) {
	c := NewCatalog()
	addDisposable(t, c, "X", errTeardown, nil)
	addDisposable(t, c, "Y", nil, nil)

	r, logs := newObservedResolver(t, c)

	y, err := Resolve[*TDisposable](r, "Y")
	require.NoError(t, err)
	x, err := Resolve[*TDisposable](r, "X")
	require.NoError(t, err)

	// X is torn down first and fails; Y must still be torn down
	assert.NoError(t, r.Close())
	assert.True(t, x.IsClosed())
	assert.True(t, y.IsClosed())

	failures := logs.FilterMessage("teardown hook failed")
	require.Equal(t, 1, failures.Len())

	entry := failures.All()[0]
	assert.Equal(t, zapcore.ErrorLevel, entry.Level)
	assert.Equal(t, "X", entry.ContextMap()["type"])
	assert.Contains(t, entry.ContextMap()["error"], errTeardown.Error())
}

func TestClose_ReverseConstructionOrder(t *testing.T) {
	var order []string
	record := func(name string) { order = append(order, name) }

	c := NewCatalog()
	addDisposable(t, c, "first", nil, record)
	addDisposable(t, c, "second", nil, record)
	addDisposable(t, c, "third", nil, record)

	r, _ := newObservedResolver(t, c)
	for _, name := range []string{"first", "second", "third"} {
		_, err := r.Get(name)
		require.NoError(t, err)
	}

	require.NoError(t, r.Close())
	assert.Equal(t, []string{"third", "second", "first"}, order)
}

func TestClose_ContextDisposable(t *testing.T) {
	type ctxKey struct{}

	c := NewCatalog()
	require.NoError(t, c.Add(&TContextDisposable{}))

	r, _ := newObservedResolver(t, c)
	d, err := ResolveType[*TContextDisposable](r)
	require.NoError(t, err)

	ctx := context.WithValue(context.Background(), ctxKey{}, "teardown")
	require.NoError(t, r.CloseContext(ctx))

	require.NotNil(t, d.ctx)
	assert.Equal(t, "teardown", d.ctx.Value(ctxKey{}))
}

func TestClose_PanickingHook(t *testing.T) {
	closed := false

	c := NewCatalog()
	addDisposable(t, c, "Before", nil, func(string) { closed = true })
	require.NoError(t, c.Add(&TPanickingDisposable{}))

	r, logs := newObservedResolver(t, c)

	_, err := r.Get("Before")
	require.NoError(t, err)
	_, err = r.Get(NameOf[*TPanickingDisposable]())
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		assert.NoError(t, r.Close())
	})
	assert.True(t, closed)

	failures := logs.FilterMessage("teardown hook failed")
	require.Equal(t, 1, failures.Len())
	assert.Contains(t, failures.All()[0].ContextMap()["error"], "teardown exploded")
}

func TestClose_Idempotent(t *testing.T) {
	calls := 0

	c := NewCatalog()
	addDisposable(t, c, "X", nil, func(string) { calls++ })

	r, logs := newObservedResolver(t, c)
	_, err := r.Get("X")
	require.NoError(t, err)

	require.NoError(t, r.Close())
	require.NoError(t, r.Close())

	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, logs.FilterMessage("resolver closed").Len())
	assert.False(t, r.Resolved("X"))
}

func TestClose_SkipsPlainInstances(t *testing.T) {
	r, logs := newObservedResolver(t, newTestCatalog(t))

	_, err := r.Get(className)
	require.NoError(t, err)

	require.NoError(t, r.Close())
	assert.Zero(t, logs.FilterMessage("teardown hook failed").Len())

	closed := logs.FilterMessage("resolver closed").All()
	require.Len(t, closed, 1)
	assert.EqualValues(t, 2, closed[0].ContextMap()["instances"])
	assert.EqualValues(t, 0, closed[0].ContextMap()["failed"])
}

func TestTeardown_WrapsFailures(t *testing.T) {
	err := teardownOf(&TDisposable{closeErr: errTeardown})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTeardownFailure)
	assert.ErrorIs(t, err, errTeardown)

	assert.NoError(t, teardownOf(&TDependency{}))
	assert.ErrorIs(t, teardownOf(&TPanickingDisposable{}), ErrTeardownFailure)
}

func teardownOf(instance any) error {
	return teardown(context.Background(), registry.Entry{Name: "T", Instance: instance})
}

func TestResolve_DiscardsInstanceBuiltDuringClose(t *testing.T) {
	var r *Resolver
	var built *TDisposable

	c := NewCatalog()
	require.NoError(t, c.Add(func() *TDisposable {
		built = &TDisposable{Name: "late"}
		require.NoError(t, r.Close())
		return built
	}, Name("late")))

	r, logs := newObservedResolver(t, c)

	instance, err := r.Get("late")
	assert.ErrorIs(t, err, ErrResolverClosed)
	assert.Nil(t, instance)

	require.NotNil(t, built)
	assert.True(t, built.IsClosed())
	assert.False(t, r.Resolved("late"))

	discarded := logs.FilterMessage("discarding instance").All()
	require.Len(t, discarded, 1)
	assert.Equal(t, "late", discarded[0].ContextMap()["type"])
}

func TestResolve_DiscardsDuplicateInstance(t *testing.T) {
	var r *Resolver
	seeded := &TDisposable{Name: "seeded"}
	var built *TDisposable

	c := NewCatalog()
	require.NoError(t, c.Add(func() *TDisposable {
		// Another caller caches an instance while this one is constructing
		r.Cache("shared", seeded)
		built = &TDisposable{Name: "built", closeErr: errTeardown}
		return built
	}, Name("shared")))

	r, logs := newObservedResolver(t, c)

	instance, err := r.Get("shared")
	require.NoError(t, err)
	assert.Same(t, seeded, instance)

	require.NotNil(t, built)
	assert.True(t, built.IsClosed())
	assert.False(t, seeded.IsClosed())

	failures := logs.FilterMessage("teardown hook failed").All()
	require.Len(t, failures, 1)
	assert.Equal(t, "shared", failures[0].ContextMap()["type"])

	require.NoError(t, r.Close())
	assert.True(t, seeded.IsClosed())
}

package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/junioryono/classloader"
)

// AssertResolvable checks that T resolves under its derived type name.
func AssertResolvable[T any](t *testing.T, h classloader.Handle) T {
	t.Helper()
	instance, err := classloader.ResolveType[T](h)
	require.NoError(t, err, "failed to resolve %s", classloader.NameOf[T]())
	require.NotNil(t, instance, "resolved instance is nil")
	return instance
}

// AssertTypeNotFound checks that resolving name fails as an unknown type.
func AssertTypeNotFound(t *testing.T, h classloader.Handle, name string) {
	t.Helper()
	_, err := h.Get(name)
	assert.Error(t, err)
	assert.True(t, classloader.IsTypeNotFound(err), "expected type not found error, got: %v", err)
}

// AssertCircularDependency checks if an error is a circular dependency error
func AssertCircularDependency(t *testing.T, err error) {
	t.Helper()
	assert.Error(t, err)
	assert.True(t, classloader.IsCircularDependency(err), "expected circular dependency error, got: %v", err)
}

// AssertUnresolvedParameter checks if an error is an unresolved parameter error
func AssertUnresolvedParameter(t *testing.T, err error) {
	t.Helper()
	assert.Error(t, err)
	assert.True(t, classloader.IsUnresolvedParameter(err), "expected unresolved parameter error, got: %v", err)
}

// AssertClosed checks that a closed resolver rejects requests.
func AssertClosed(t *testing.T, r *classloader.Resolver, name string) {
	t.Helper()
	_, err := r.Get(name)
	assert.ErrorIs(t, err, classloader.ErrResolverClosed)
}

// AssertErrorType checks if an error is of a specific type
func AssertErrorType[T error](t *testing.T, err error, msgAndArgs ...interface{}) T {
	t.Helper()
	var target T
	assert.ErrorAs(t, err, &target, msgAndArgs...)
	return target
}

// AssertPanicsWithError checks if a function panics with specific error
func AssertPanicsWithError(t *testing.T, expectedError error, f func(), msgAndArgs ...interface{}) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			assert.Fail(t, "function did not panic", msgAndArgs...)
			return
		}

		err, ok := r.(error)
		if !ok {
			assert.Fail(t, "panic value is not an error: %v", r)
			return
		}

		assert.ErrorIs(t, err, expectedError, msgAndArgs...)
	}()
	f()
}

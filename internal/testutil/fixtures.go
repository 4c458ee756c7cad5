package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/junioryono/classloader"
)

// DefaultDSN is the default value of the TestDatabase dsn parameter.
const DefaultDSN = "memory://test"

// NewCatalog returns a catalog defining the common test types.
func NewCatalog(t *testing.T) *classloader.Catalog {
	t.Helper()

	c := classloader.NewCatalog()
	require.NoError(t, c.Add(NewTestLogger))
	require.NoError(t, c.Add(NewTestDatabase,
		classloader.Params("logger", "dsn"),
		classloader.Default("dsn", DefaultDSN),
	))
	require.NoError(t, c.Add(&TestCache{}))
	require.NoError(t, c.Add(NewTestService,
		classloader.Params("logger", "db", "cache", "name"),
		classloader.Default("name", "service"),
	))
	return c
}

// NewResolver creates a resolver logging to t. It is closed when the test
// ends.
func NewResolver(t *testing.T, c *classloader.Catalog, opts ...classloader.Option) *classloader.Resolver {
	t.Helper()

	opts = append([]classloader.Option{classloader.WithLogger(zaptest.NewLogger(t))}, opts...)

	r, err := classloader.New(c, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

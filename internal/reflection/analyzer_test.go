package reflection_test

import (
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/junioryono/classloader/internal/reflection"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test types
type Database struct {
	ConnectionString string
}

type UserService struct {
	DB   *Database
	Name string
}

// Test constructors
func NewDatabase(connStr string) *Database {
	return &Database{ConnectionString: connStr}
}

func NewUserService(db *Database, name string) *UserService {
	return &UserService{DB: db, Name: name}
}

func NewUserServiceWithError(db *Database) (*UserService, error) {
	if db == nil {
		return nil, errors.New("database is required")
	}
	return &UserService{DB: db}, nil
}

var databaseType = reflect.TypeOf((*Database)(nil))

func lookupDatabase(t reflect.Type) (string, bool) {
	if t == databaseType {
		return "Database", true
	}
	return "", false
}

func TestIntrospector_AnalyzeFunction(t *testing.T) {
	in := reflection.New()

	info, err := in.Analyze(NewUserService)
	require.NoError(t, err)

	assert.True(t, info.IsFunc)
	assert.False(t, info.HasErrorReturn)
	assert.Equal(t, reflect.TypeOf((*UserService)(nil)), info.Produces)
	require.Len(t, info.Parameters, 2)
	assert.Equal(t, databaseType, info.Parameters[0].Type)
	assert.Equal(t, reflect.TypeOf(""), info.Parameters[1].Type)
	assert.Equal(t, 1, info.Parameters[1].Index)
}

func TestIntrospector_AnalyzeErrorReturn(t *testing.T) {
	in := reflection.New()

	info, err := in.Analyze(NewUserServiceWithError)
	require.NoError(t, err)
	assert.True(t, info.HasErrorReturn)
	assert.Equal(t, reflect.TypeOf((*UserService)(nil)), info.Produces)
}

func TestIntrospector_AnalyzeBareTypes(t *testing.T) {
	in := reflection.New()

	tests := []struct {
		name        string
		constructor any
		want        reflect.Type
	}{
		{"pointer value", &Database{}, databaseType},
		{"struct value", Database{}, reflect.TypeOf(Database{})},
		{"reflect type", databaseType, databaseType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := in.Analyze(tt.constructor)
			require.NoError(t, err)
			assert.False(t, info.IsFunc)
			assert.Equal(t, tt.want, info.Produces)
			assert.Empty(t, info.Parameters)
		})
	}
}

func TestIntrospector_AnalyzeInvalid(t *testing.T) {
	in := reflection.New()

	var nilFunc func() *Database

	tests := []struct {
		name        string
		constructor any
		wantErr     error
	}{
		{"nil", nil, reflection.ErrNilConstructor},
		{"typed nil func", nilFunc, reflection.ErrNilConstructor},
		{"no returns", func() {}, reflection.ErrInvalidSignature},
		{"only error", func() error { return nil }, reflection.ErrInvalidSignature},
		{"second not error", func() (*Database, string) { return nil, "" }, reflection.ErrInvalidSignature},
		{"too many returns", func() (*Database, *Database, error) { return nil, nil, nil }, reflection.ErrInvalidSignature},
		{"variadic", func(...string) *Database { return nil }, reflection.ErrInvalidSignature},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := in.Analyze(tt.constructor)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestIntrospector_CachesBySignature(t *testing.T) {
	in := reflection.New()

	first, err := in.Analyze(NewDatabase)
	require.NoError(t, err)

	// Different function, same signature
	second, err := in.Analyze(func(s string) *Database { return &Database{ConnectionString: s} })
	require.NoError(t, err)

	assert.Same(t, first, second)

	third, err := in.Analyze(NewUserService)
	require.NoError(t, err)
	assert.NotSame(t, first, third)
}

func TestIntrospector_Parameters(t *testing.T) {
	in := reflection.New()

	info, err := in.Analyze(NewUserService)
	require.NoError(t, err)

	t.Run("dependency and default", func(t *testing.T) {
		params := in.Parameters(info, []string{"db", "name"}, map[string]any{"name": "blaat"}, lookupDatabase)
		require.Len(t, params, 2)

		assert.Equal(t, "db", params[0].Name)
		assert.True(t, params[0].IsDependency())
		assert.Equal(t, "Database", params[0].Dependency)
		assert.False(t, params[0].HasDefault)

		assert.Equal(t, "name", params[1].Name)
		assert.False(t, params[1].IsDependency())
		assert.True(t, params[1].HasDefault)
		assert.Equal(t, "blaat", params[1].Default)
	})

	t.Run("positional names", func(t *testing.T) {
		params := in.Parameters(info, nil, map[string]any{"arg1": "x"}, nil)
		require.Len(t, params, 2)

		assert.Equal(t, "arg0", params[0].Name)
		assert.False(t, params[0].IsDependency())
		assert.Equal(t, "arg1", params[1].Name)
		assert.True(t, params[1].HasDefault)
	})

	t.Run("non-type without default", func(t *testing.T) {
		params := in.Parameters(info, []string{"db", "name"}, nil, lookupDatabase)
		assert.False(t, params[1].IsDependency())
		assert.False(t, params[1].HasDefault)
	})
}

func TestIntrospector_ConcurrentAnalyze(t *testing.T) {
	in := reflection.New()

	var wg sync.WaitGroup
	infos := make([]*reflection.ConstructorInfo, 20)
	for i := range infos {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			info, err := in.Analyze(NewUserService)
			assert.NoError(t, err)
			infos[idx] = info
		}(i)
	}
	wg.Wait()

	for _, info := range infos {
		assert.Same(t, infos[0], info)
	}
}

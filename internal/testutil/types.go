package testutil

import (
	"context"
	"sync"
	"sync/atomic"
)

// ============================================================================
// Common Test Types
// ============================================================================

// TestLogger has no constructor dependencies.
type TestLogger struct {
	Prefix string

	mu    sync.Mutex
	lines []string
}

func NewTestLogger() *TestLogger {
	return &TestLogger{Prefix: "[test]"}
}

func (l *TestLogger) Log(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, l.Prefix+" "+msg)
}

func (l *TestLogger) Lines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.lines...)
}

// TestDatabase is torn down with a context.
type TestDatabase struct {
	DSN    string
	Logger *TestLogger
	closed atomic.Bool
}

func NewTestDatabase(logger *TestLogger, dsn string) *TestDatabase {
	logger.Log("database opened")
	return &TestDatabase{DSN: dsn, Logger: logger}
}

func (d *TestDatabase) Close(ctx context.Context) error {
	d.closed.Store(true)
	return ctx.Err()
}

func (d *TestDatabase) IsClosed() bool {
	return d.closed.Load()
}

// TestCache is built by allocation.
type TestCache struct {
	Size int
}

// TestService depends on all other test types.
type TestService struct {
	Logger   *TestLogger
	Database *TestDatabase
	Cache    *TestCache
	Name     string
}

func NewTestService(logger *TestLogger, db *TestDatabase, cache *TestCache, name string) *TestService {
	return &TestService{Logger: logger, Database: db, Cache: cache, Name: name}
}

// TestLoop depends on itself.
type TestLoop struct {
	Next *TestLoop
}

func NewTestLoop(next *TestLoop) *TestLoop {
	return &TestLoop{Next: next}
}

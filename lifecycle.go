package classloader

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/junioryono/classloader/internal/registry"
)

// Close tears down the resolver. See CloseContext.
func (r *Resolver) Close() error {
	return r.CloseContext(context.Background())
}

// CloseContext calls the teardown hook of every cached instance that
// implements Disposable or DisposableWithContext, newest instance first.
// Teardown is best effort: a failing or panicking hook is logged and the
// remaining instances are still torn down. CloseContext always returns nil
// and is safe to call more than once; after it the resolver rejects Get.
func (r *Resolver) CloseContext(ctx context.Context) error {
	if !r.closed.CompareAndSwap(false, true) {
		return nil
	}

	entries := r.registry.Seal()
	failed := 0

	// Dispose in reverse order (LIFO)
	for i := len(entries) - 1; i >= 0; i-- {
		if err := teardown(ctx, entries[i]); err != nil {
			failed++
			r.logger.Error("teardown hook failed",
				zap.String("type", entries[i].Name),
				zap.Error(err),
			)
		}
	}

	r.logger.Debug("resolver closed",
		zap.Int("instances", len(entries)),
		zap.Int("failed", failed),
	)

	return nil
}

// teardown runs the teardown hook of one cached instance.
func teardown(ctx context.Context, entry registry.Entry) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = TeardownError{Name: entry.Name, Cause: fmt.Errorf("panic: %v", p)}
		}
	}()

	switch d := entry.Instance.(type) {
	case DisposableWithContext:
		err = d.Close(ctx)
	case Disposable:
		err = d.Close()
	default:
		return nil
	}

	if err != nil {
		return TeardownError{Name: entry.Name, Cause: err}
	}
	return nil
}

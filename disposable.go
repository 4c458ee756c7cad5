package classloader

import "context"

// Disposable is the teardown hook of a cached instance. When the Resolver is
// closed, Close is called on every cached instance that implements it, and on
// any constructed instance the resolver discards instead of caching.
//
//	type AuditLog struct {
//	    file *os.File
//	}
//
//	func (l *AuditLog) Close() error {
//	    if err := l.file.Sync(); err != nil {
//	        return err
//	    }
//	    return l.file.Close()
//	}
type Disposable interface {
	Close() error
}

// DisposableWithContext is the context-aware teardown hook. It takes
// precedence over Disposable. The context passed to Resolver.CloseContext is
// handed through; discarded instances get context.Background.
//
//	func (w *Worker) Close(ctx context.Context) error {
//	    w.cancel()
//	    select {
//	    case <-w.stopped:
//	        return nil
//	    case <-ctx.Done():
//	        return ctx.Err()
//	    }
//	}
type DisposableWithContext interface {
	Close(ctx context.Context) error
}

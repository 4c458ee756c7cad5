package registry

import (
	"errors"
	"sync"
)

// ErrSealed is returned by PutCached once Seal has been called.
var ErrSealed = errors.New("registry is sealed")

// Registry stores override factories and constructed instances, both keyed by
// type name. F is the factory type of the owning resolver.
type Registry[F any] struct {
	mu sync.RWMutex

	// type name -> override factory
	overrides map[string]F

	// type name -> constructed instance
	instances map[string]any

	// insertion order of instances, used for teardown
	order []string

	sealed bool
}

// Entry is a cached instance together with its type name.
type Entry struct {
	Name     string
	Instance any
}

// New creates an empty registry.
func New[F any]() *Registry[F] {
	return &Registry[F]{
		overrides: make(map[string]F),
		instances: make(map[string]any),
	}
}

// RegisterOverride stores the factory for name, replacing any earlier one.
func (r *Registry[F]) RegisterOverride(name string, factory F) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.overrides[name] = factory
}

// HasOverride reports whether an override is registered for name.
func (r *Registry[F]) HasOverride(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.overrides[name]
	return ok
}

// GetOverride returns the override for name, or the zero F if none is
// registered. Callers check HasOverride first.
func (r *Registry[F]) GetOverride(name string) F {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.overrides[name]
}

// GetCached returns the instance cached for name.
func (r *Registry[F]) GetCached(name string) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	instance, ok := r.instances[name]
	return instance, ok
}

// PutCached caches instance under name. An existing entry is never
// overwritten: the instance already stored is returned with false. After Seal
// nothing is cached and ErrSealed is returned.
func (r *Registry[F]) PutCached(name string, instance any) (any, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed {
		return nil, false, ErrSealed
	}

	if existing, ok := r.instances[name]; ok {
		return existing, false, nil
	}

	r.instances[name] = instance
	r.order = append(r.order, name)
	return instance, true, nil
}

// Seal drops every cached instance and returns them in the order they were
// stored. Later PutCached calls fail, so the returned entries are the
// complete set. Overrides are kept. Sealing twice returns nil.
func (r *Registry[F]) Seal() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed {
		return nil
	}
	r.sealed = true

	entries := make([]Entry, 0, len(r.order))
	for _, name := range r.order {
		entries = append(entries, Entry{Name: name, Instance: r.instances[name]})
	}

	r.instances = make(map[string]any)
	r.order = nil
	return entries
}

package graph

import (
	"fmt"
	"sort"
	"sync"
)

// DependencyGraph manages the dependency relationships between type names.
// It provides cycle detection and topological sorting.
type DependencyGraph struct {
	mu sync.RWMutex

	// defined is false for names only referenced as a dependency
	defined map[string]bool
	edges   map[string][]string // adjacency list representation
}

// NewDependencyGraph creates a new dependency graph
func NewDependencyGraph() *DependencyGraph {
	return &DependencyGraph{
		defined: make(map[string]bool),
		edges:   make(map[string][]string),
	}
}

// AddNode adds or replaces a node and its outgoing dependency edges.
func (g *DependencyGraph) AddNode(name string, dependencies []string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.defined[name] = true
	g.edges[name] = append([]string(nil), dependencies...)

	for _, dep := range dependencies {
		if _, ok := g.defined[dep]; !ok {
			g.defined[dep] = false
		}
	}
}

// sortedNames returns node names in lexical order so traversals are
// deterministic.
func (g *DependencyGraph) sortedNames() []string {
	names := make([]string, 0, len(g.defined))
	for name := range g.defined {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TopologicalSort returns names in construction order (dependencies first).
// Names that are ready at the same time are ordered lexically.
func (g *DependencyGraph) TopologicalSort() ([]string, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.topologicalSort()
}

func (g *DependencyGraph) topologicalSort() ([]string, error) {
	// Kahn's algorithm over the reversed edges: a node is ready once all of
	// its dependencies are placed.
	remaining := make(map[string]int, len(g.defined))
	dependents := make(map[string][]string, len(g.defined))
	for _, name := range g.sortedNames() {
		remaining[name] = len(g.edges[name])
		for _, dep := range g.edges[name] {
			dependents[dep] = append(dependents[dep], name)
		}
	}

	var queue []string
	for _, name := range g.sortedNames() {
		if remaining[name] == 0 {
			queue = append(queue, name)
		}
	}

	result := make([]string, 0, len(g.defined))
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		result = append(result, current)

		for _, dependent := range dependents[current] {
			remaining[dependent]--
			if remaining[dependent] == 0 {
				queue = append(queue, dependent)
			}
		}
	}

	if len(result) != len(g.defined) {
		return nil, fmt.Errorf("graph contains %d nodes but only %d could be sorted: %w",
			len(g.defined), len(result), g.detectCycles())
	}

	return result, nil
}

// DetectCycles returns a *CircularDependencyError for the first cycle found.
func (g *DependencyGraph) DetectCycles() error {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.detectCycles()
}

// detectCycles performs a DFS from every node; the caller holds the lock.
func (g *DependencyGraph) detectCycles() error {
	const (
		unvisited = iota
		visiting
		visited
	)

	state := make(map[string]int, len(g.defined))
	var path []string

	var visit func(name string) error
	visit = func(name string) error {
		switch state[name] {
		case visiting:
			// Cut the path at the first occurrence of name
			for i, n := range path {
				if n == name {
					cycle := append([]string(nil), path[i:]...)
					return &CircularDependencyError{Node: name, Path: cycle}
				}
			}
			return &CircularDependencyError{Node: name}
		case visited:
			return nil
		}

		state[name] = visiting
		path = append(path, name)

		for _, dep := range g.edges[name] {
			if err := visit(dep); err != nil {
				return err
			}
		}

		path = path[:len(path)-1]
		state[name] = visited
		return nil
	}

	for _, name := range g.sortedNames() {
		if state[name] == unvisited {
			if err := visit(name); err != nil {
				return err
			}
		}
	}

	return nil
}

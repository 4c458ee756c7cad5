package graph

import (
	"fmt"
	"strings"
)

// CircularDependencyError represents a cycle between catalog types.
type CircularDependencyError struct {
	Node string
	Path []string
}

func (e *CircularDependencyError) Error() string {
	var b strings.Builder
	b.WriteString("circular dependency detected:\n\n")

	path := e.Path
	if len(path) == 0 {
		path = []string{e.Node}
	}

	for i, node := range path {
		b.WriteString(fmt.Sprintf("    %s\n", node))
		if i < len(path)-1 {
			b.WriteString("      ↓\n")
		}
	}
	b.WriteString("      ↓\n")
	b.WriteString(fmt.Sprintf("    %s (cycle)\n", path[0]))

	return b.String()
}

package graph

import (
	"fmt"
	"io"
	"strings"
)

// Visualizer provides methods to visualize the dependency graph
type Visualizer struct {
	graph *DependencyGraph
}

// NewVisualizer creates a new graph visualizer
func NewVisualizer(graph *DependencyGraph) *Visualizer {
	return &Visualizer{graph: graph}
}

// WriteDOT writes the graph in Graphviz DOT format, nodes in construction
// order. Nodes that are only referenced as dependencies are drawn dashed;
// nodes in resolved are filled.
func (v *Visualizer) WriteDOT(w io.Writer, resolved func(name string) bool) error {
	v.graph.mu.RLock()
	defer v.graph.mu.RUnlock()

	var b strings.Builder
	b.WriteString("digraph dependencies {\n")
	b.WriteString("  rankdir=LR;\n")
	b.WriteString("  node [shape=box];\n")

	// Lexical order when the graph has a cycle
	names, err := v.graph.topologicalSort()
	if err != nil {
		names = v.graph.sortedNames()
	}

	for _, name := range names {
		style := "solid"
		switch {
		case !v.graph.defined[name]:
			style = "dashed"
		case resolved != nil && resolved(name):
			style = "filled"
		}

		fmt.Fprintf(&b, "  %q [style=%s];\n", name, style)
	}

	for _, from := range names {
		for _, to := range v.graph.edges[from] {
			fmt.Fprintf(&b, "  %q -> %q;\n", from, to)
		}
	}

	b.WriteString("}\n")

	_, err = io.WriteString(w, b.String())
	return err
}

package graph

import (
	"fmt"
	"io"
	"strings"
)

// DOT renders the graph in Graphviz format.
//
// Nodes appear in invocation order, labeled "[seq] tool", followed by their
// incoming edges (producer -> consumer). Output is deterministic for a given
// graph.
func (g *Graph) DOT(w io.Writer) error {
	var b strings.Builder
	b.WriteString("digraph G {\n")
	b.WriteString("\trankdir=LR;\n")
	b.WriteString("\tnode [shape=rectangle];\n")

	for _, node := range g.Nodes {
		fmt.Fprintf(&b, "\t%q [label=\"[%d] %s\"];\n", node.ID, node.Seq, node.Tool)
		for _, producerID := range node.Using {
			fmt.Fprintf(&b, "\t%q -> %q;\n", producerID, node.ID)
		}
	}

	b.WriteString("}\n")

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("write dot graph: %w", err)
	}
	return nil
}

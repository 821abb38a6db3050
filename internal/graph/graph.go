// Package graph builds the producer/consumer graph over stored invocations.
//
// Invocations are processed in seq order. Each one first links its inputs
// against artifacts already published by earlier commands, then publishes its
// own output; when several commands write the same artifact, the latest
// producer before the consumer wins. Both adjacency directions are kept per
// node, deduplicated, in first-encounter order.
package graph

import (
	"slices"
	"sort"

	"github.com/roach88/buildtap/internal/profile"
	"github.com/roach88/buildtap/internal/store"
)

// Node is one classified invocation with its resolved artifacts and
// adjacency. UsedBy and Using hold invocation IDs.
type Node struct {
	ID     string   `json:"id"`
	Seq    int64    `json:"seq"`
	Tool   string   `json:"tool"`
	Kind   string   `json:"kind"`
	Inputs []string `json:"inputs"`
	Output string   `json:"output,omitempty"`
	UsedBy []string `json:"used_by"`
	Using  []string `json:"using"`
}

// Graph holds nodes in invocation order plus an index by invocation ID.
type Graph struct {
	Nodes []*Node

	byID map[string]*Node
}

// Build constructs the graph from seq-ordered invocations.
//
// Unclassified invocations are skipped, they cannot declare inputs or an
// output. Duplicate rows of the same command (same content ID imported under
// several sessions) collapse into one node.
func Build(invs []store.Invocation, prof *profile.Profile) *Graph {
	g := &Graph{
		Nodes: []*Node{},
		byID:  map[string]*Node{},
	}

	// artifact path -> ID of the latest producer seen so far
	producers := map[string]string{}

	for _, inv := range invs {
		tool, ok := prof.Classify(inv.Path)
		if !ok {
			continue
		}
		if _, ok := g.byID[inv.ID]; ok {
			continue
		}

		inputs, output := tool.CommandIO(inv.Record())
		node := &Node{
			ID:     inv.ID,
			Seq:    inv.Seq,
			Tool:   inv.Tool,
			Kind:   inv.Kind,
			Inputs: inputs,
			Output: output,
			UsedBy: []string{},
			Using:  []string{},
		}
		g.Nodes = append(g.Nodes, node)
		g.byID[node.ID] = node

		// Link before publishing: a command can never consume an
		// artifact produced after it ran.
		for _, in := range inputs {
			producerID, ok := producers[in]
			if !ok {
				continue
			}
			producer := g.byID[producerID]
			if !slices.Contains(producer.UsedBy, node.ID) {
				producer.UsedBy = append(producer.UsedBy, node.ID)
			}
			if !slices.Contains(node.Using, producerID) {
				node.Using = append(node.Using, producerID)
			}
		}
		if output != "" {
			producers[output] = node.ID
		}
	}

	return g
}

// Node returns the node for the given invocation ID.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.byID[id]
	return n, ok
}

// UsedBy returns every node that consumes the given invocation's output,
// directly or transitively, ordered by seq. An unknown ID yields an empty
// slice.
func (g *Graph) UsedBy(id string) []*Node {
	seen := map[string]bool{}

	var walk func(string)
	walk = func(cur string) {
		node, ok := g.byID[cur]
		if !ok {
			return
		}
		for _, next := range node.UsedBy {
			if seen[next] {
				continue
			}
			seen[next] = true
			walk(next)
		}
	}
	walk(id)

	nodes := make([]*Node, 0, len(seen))
	for nid := range seen {
		nodes = append(nodes, g.byID[nid])
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].Seq < nodes[j].Seq })
	return nodes
}

package ordr

import (
	"sort"

	"github.com/ordr-dev/ordr/internal/adjacency"
)

// GraphBuilder accumulates node descriptors before validating them into an
// immutable Graph. The zero value is ready to use.
type GraphBuilder struct {
	nodes []*Node
}

// NewGraphBuilder returns an empty builder.
func NewGraphBuilder() *GraphBuilder { return &GraphBuilder{} }

// AddNode registers a node descriptor with the builder. Nodes sharing an
// id with one already added are deduplicated at Build time, not here, so
// registration order never matters.
func (b *GraphBuilder) AddNode(n *Node) *GraphBuilder {
	b.nodes = append(b.nodes, n)
	return b
}

// Build validates the accumulated node descriptors and produces an
// immutable Graph.
//
// Build enforces, in order: the node set is non-empty (NoNodesError);
// no two nodes share a display name (DuplicateNameError); every declared
// dependency id is registered (DependencyNotFoundError); the resulting
// adjacency contains no cycle (CycleError).
func (b *GraphBuilder) Build() (*Graph, error) {
	nodes := make([]*Node, len(b.nodes))
	copy(nodes, b.nodes)

	// Sort by id, then drop duplicates, so node order is deterministic and
	// registering the same output type twice is a no-op rather than an
	// error. Lookups by id go through the indexByID map built below.
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].id.id.Less(nodes[j].id.id) })
	deduped := nodes[:0]
	for i, n := range nodes {
		if i > 0 && n.id == nodes[i-1].id {
			continue
		}
		deduped = append(deduped, n)
	}
	nodes = deduped

	if len(nodes) == 0 {
		return nil, &NoNodesError{}
	}

	seenNames := make(map[string]struct{}, len(nodes))
	for _, n := range nodes {
		if _, exists := seenNames[n.name]; exists {
			return nil, &DuplicateNameError{Name: n.name}
		}
		seenNames[n.name] = struct{}{}
	}

	indexByID := make(map[NodeID]int, len(nodes))
	for i, n := range nodes {
		indexByID[n.id] = i
	}

	deps := make([][]int, len(nodes))
	for i, n := range nodes {
		depIdx := make([]int, len(n.deps))
		for j, depID := range n.deps {
			idx, ok := indexByID[depID]
			if !ok {
				return nil, &DependencyNotFoundError{NodeName: n.name, DepName: depID.String()}
			}
			depIdx[j] = idx
		}
		deps[i] = depIdx
	}

	adj := adjacency.New(deps)
	if path, found := adj.FindCycle(); found {
		names := make([]string, len(path))
		for i, idx := range path {
			names[i] = nodes[idx].name
		}
		return nil, &CycleError{Path: names}
	}

	return &Graph{nodes: nodes, indexByID: indexByID, adj: adj}, nil
}

// Graph is a validated, immutable collection of node descriptors. Graphs
// are built once, shared read-only across goroutines, and live as long as
// the host wants; Execute may be called concurrently and repeatedly on the
// same Graph.
type Graph struct {
	nodes     []*Node
	indexByID map[NodeID]int
	adj       adjacency.List
}

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// Nodes returns every node descriptor in the graph's internal order (stable
// for the lifetime of the Graph, but otherwise unspecified — not a
// topological order). It exists for diagnostics; see package mermaid.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, len(g.nodes))
	copy(out, g.nodes)
	return out
}

// GetNode retrieves a node descriptor by id. ok is false if no such node
// is registered in this graph.
func (g *Graph) GetNode(id NodeID) (*Node, bool) {
	idx, ok := g.indexByID[id]
	if !ok {
		return nil, false
	}
	return g.nodes[idx], true
}

// indexOf resolves a NodeID to its stable position in the graph's node
// slice, which is also the index space the adjacency list, the pending set
// and the executor's results table share internally.
func (g *Graph) indexOf(id NodeID) (int, bool) {
	idx, ok := g.indexByID[id]
	return idx, ok
}

// TopologicalOrder returns the nodes in an order consistent with
// every dependency edge: a node never appears before one of its
// dependencies. This is a pure topology query for diagnostics; the
// executor itself schedules by readiness, not by a precomputed order, so
// that independent ready nodes can run concurrently rather than in a
// fixed sequence.
func (g *Graph) TopologicalOrder() []*Node {
	order := g.adj.TopologicalOrder()
	out := make([]*Node, len(order))
	for i, idx := range order {
		out[i] = g.nodes[idx]
	}
	return out
}

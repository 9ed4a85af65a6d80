package graph

import (
	"errors"
	"maps"
	"slices"
)

var (
	// ErrInvalidNodeID is returned by [Graph.AddNode] and [Graph.AddEdge] when
	// a node ID is empty. All nodes must have non-empty identifiers.
	ErrInvalidNodeID = errors.New("node ID must not be empty")
)

// Edge is a directed dependency: From depends on To.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Graph is a directed dependency graph that preserves insertion order.
//
// The zero value is not usable - use New to create a valid Graph instance.
// Graph is not safe for concurrent use without external synchronization.
type Graph struct {
	nodes    []string            // every node, first-seen order
	seen     map[string]struct{} // membership of nodes
	keys     []string            // nodes with an adjacency entry
	outgoing map[string][]string // nodeID -> dependency IDs
	incoming map[string][]string // nodeID -> dependent IDs
	edges    []Edge
	depth    map[string]int
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		seen:     make(map[string]struct{}),
		outgoing: make(map[string][]string),
		incoming: make(map[string][]string),
		depth:    make(map[string]int),
	}
}

// FromMap builds a graph from a plain adjacency map. Keys are inserted in
// lexical order since Go maps carry no order; edge lists keep their order.
func FromMap(adj map[string][]string) (*Graph, error) {
	g := New()
	for _, k := range slices.Sorted(maps.Keys(adj)) {
		if err := g.AddNode(k); err != nil {
			return nil, err
		}
		for _, dep := range adj[k] {
			if err := g.AddEdge(k, dep); err != nil {
				return nil, err
			}
		}
	}
	return g, nil
}

func (g *Graph) touch(id string) {
	if _, ok := g.seen[id]; ok {
		return
	}
	g.seen[id] = struct{}{}
	g.nodes = append(g.nodes, id)
}

// AddNode gives id an adjacency entry, creating the node if needed.
// Adding an existing entry is a no-op.
func (g *Graph) AddNode(id string) error {
	if id == "" {
		return ErrInvalidNodeID
	}
	g.touch(id)
	if _, ok := g.outgoing[id]; !ok {
		g.keys = append(g.keys, id)
		g.outgoing[id] = []string{}
	}
	return nil
}

// AddEdge records from → to. The source gets an adjacency entry; the target
// is created as a node without one if it does not exist yet. Parallel edges
// are kept.
func (g *Graph) AddEdge(from, to string) error {
	if from == "" || to == "" {
		return ErrInvalidNodeID
	}
	if err := g.AddNode(from); err != nil {
		return err
	}
	g.touch(to)
	g.edges = append(g.edges, Edge{From: from, To: to})
	g.outgoing[from] = append(g.outgoing[from], to)
	g.incoming[to] = append(g.incoming[to], from)
	return nil
}

// SetDepth records the traversal depth at which id was discovered.
func (g *Graph) SetDepth(id string, depth int) {
	g.touch(id)
	g.depth[id] = depth
}

// Depth returns the traversal depth of id, if one was recorded.
func (g *Graph) Depth(id string) (int, bool) {
	d, ok := g.depth[id]
	return d, ok
}

// MaxDepth returns the deepest recorded traversal depth, or 0 if none.
func (g *Graph) MaxDepth() int {
	m := 0
	for _, d := range g.depth {
		m = max(m, d)
	}
	return m
}

// Root returns the first node added, or "" for an empty graph.
func (g *Graph) Root() string {
	if len(g.nodes) == 0 {
		return ""
	}
	return g.nodes[0]
}

// Has reports whether id is a node of the graph, with or without an entry.
func (g *Graph) Has(id string) bool {
	_, ok := g.seen[id]
	return ok
}

// HasEntry reports whether id has an adjacency entry.
func (g *Graph) HasEntry(id string) bool {
	_, ok := g.outgoing[id]
	return ok
}

// Nodes returns all node IDs in first-seen order.
func (g *Graph) Nodes() []string { return slices.Clone(g.nodes) }

// Keys returns the IDs of nodes with an adjacency entry, in insertion order.
func (g *Graph) Keys() []string { return slices.Clone(g.keys) }

// Edges returns a copy of all edges in insertion order.
func (g *Graph) Edges() []Edge { return slices.Clone(g.edges) }

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges in the graph.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Children returns the IDs of nodes that id depends on.
// Returns nil if the node has no children or doesn't exist. The returned slice
// should not be modified - use it as a read-only view.
func (g *Graph) Children(id string) []string { return g.outgoing[id] }

// Parents returns the IDs of nodes that depend on id.
// Returns nil if the node has no parents or doesn't exist. The returned slice
// should not be modified - use it as a read-only view.
func (g *Graph) Parents(id string) []string { return g.incoming[id] }

// Deps implements the same lookup contract as an index mapping, so a graph
// can itself be re-traversed with [Build].
func (g *Graph) Deps(id string) ([]string, bool) {
	d, ok := g.outgoing[id]
	return d, ok
}

// ToMap returns the adjacency entries as a plain map.
func (g *Graph) ToMap() map[string][]string {
	out := make(map[string][]string, len(g.keys))
	for _, k := range g.keys {
		out[k] = slices.Clone(g.outgoing[k])
	}
	return out
}

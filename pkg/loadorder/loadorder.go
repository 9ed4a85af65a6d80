package loadorder

import (
	errs "github.com/matzehuels/depviz/pkg/errors"
)

// Adjacency is the read-only view of a dependency graph needed for ordering.
// *graph.Graph satisfies it.
type Adjacency interface {
	Has(id string) bool
	Children(id string) []string
}

// Result is a computed load order.
type Result struct {
	// Order lists packages so that every dependency precedes its dependents.
	Order []string `json:"order"`
	// Reachable lists every node reachable from the start, in discovery order.
	Reachable []string `json:"reachable"`
	// Unresolved lists reachable nodes left out of Order because of a cycle.
	Unresolved []string `json:"unresolved,omitempty"`
	// CyclesDetected is true when Order is shorter than Reachable.
	CyclesDetected bool `json:"cycles_detected"`
}

// Complete reports whether every reachable node was ordered.
func (r *Result) Complete() bool { return !r.CyclesDetected }

// Reachable returns the nodes reachable from start by following edges of g,
// in breadth-first discovery order. start comes first.
func Reachable(g Adjacency, start string) []string {
	seen := map[string]bool{start: true}
	order := []string{start}
	for i := 0; i < len(order); i++ {
		for _, child := range g.Children(order[i]) {
			if !seen[child] {
				seen[child] = true
				order = append(order, child)
			}
		}
	}
	return order
}

// Resolve computes the load order of everything reachable from start.
//
// It returns INVALID_ARGUMENT for an empty start and NOT_FOUND when start is
// not a node of g. A detected cycle is reported through the result, not as an
// error.
func Resolve(g Adjacency, start string) (*Result, error) {
	if start == "" {
		return nil, errs.New(errs.ErrCodeInvalidArgument, "start package must not be empty")
	}
	if !g.Has(start) {
		return nil, errs.New(errs.ErrCodeNotFound, "package %q not found in graph", start)
	}

	reachable := Reachable(g, start)

	// pending counts the unemitted dependency edges of each node;
	// dependents is the reverse relation used to release nodes.
	pending := make(map[string]int, len(reachable))
	dependents := make(map[string][]string, len(reachable))
	for _, id := range reachable {
		children := g.Children(id)
		pending[id] = len(children)
		for _, c := range children {
			dependents[c] = append(dependents[c], id)
		}
	}

	queue := make([]string, 0, len(reachable))
	for _, id := range reachable {
		if pending[id] == 0 {
			queue = append(queue, id)
		}
	}

	order := make([]string, 0, len(reachable))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		order = append(order, id)
		for _, p := range dependents[id] {
			pending[p]--
			if pending[p] == 0 {
				queue = append(queue, p)
			}
		}
	}

	res := &Result{Order: order, Reachable: reachable}
	if len(order) < len(reachable) {
		res.CyclesDetected = true
		for _, id := range reachable {
			if pending[id] > 0 {
				res.Unresolved = append(res.Unresolved, id)
			}
		}
	}
	return res, nil
}

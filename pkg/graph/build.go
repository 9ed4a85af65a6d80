package graph

import (
	errs "github.com/matzehuels/depviz/pkg/errors"
)

// Lookup resolves the direct dependencies of a package.
// It is satisfied by *index.Mapping and by *Graph.
type Lookup interface {
	Deps(name string) ([]string, bool)
}

type queued struct {
	name  string
	depth int
}

// Build performs a breadth-first traversal of m from root and returns the
// graph of the edges it visited.
//
// The root sits at depth 0 and is marked visited before any dependency is
// looked at. A node dequeued at depth d >= maxDepth is not expanded. For any
// other node, every dependency produces an edge, including edges back to
// visited nodes, and each unvisited dependency is enqueued at depth d+1.
//
// Build returns an INVALID_ARGUMENT error when maxDepth < 1 or root is empty,
// and NOT_FOUND when root is not declared in m.
func Build(root string, m Lookup, maxDepth int) (*Graph, error) {
	if err := errs.ValidateDepth(maxDepth); err != nil {
		return nil, err
	}
	if root == "" {
		return nil, errs.New(errs.ErrCodeInvalidArgument, "root package must not be empty")
	}
	if _, ok := m.Deps(root); !ok {
		return nil, errs.New(errs.ErrCodeNotFound, "package %q not found in index", root)
	}

	g := New()
	g.SetDepth(root, 0)
	visited := map[string]bool{root: true}
	queue := []queued{{name: root, depth: 0}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur.depth >= maxDepth {
			continue
		}

		deps, _ := m.Deps(cur.name)
		if err := g.AddNode(cur.name); err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidArgument, err, "expand %q", cur.name)
		}
		for _, dep := range deps {
			if err := g.AddEdge(cur.name, dep); err != nil {
				return nil, errs.Wrap(errs.ErrCodeInvalidArgument, err, "edge %q -> %q", cur.name, dep)
			}
			if !visited[dep] {
				visited[dep] = true
				g.SetDepth(dep, cur.depth+1)
				queue = append(queue, queued{name: dep, depth: cur.depth + 1})
			}
		}
	}
	return g, nil
}

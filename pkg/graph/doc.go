// Package graph provides the dependency graph produced by a depth-bounded
// traversal of a package index.
//
// A [Graph] stores directed edges pkg → dep, meaning pkg depends on dep.
// Unlike a general DAG it may contain cycles: package indexes routinely
// declare mutual dependencies and the graph records what was discovered,
// leaving cycle handling to the load-order resolver.
//
// # Building
//
// [Build] walks an index breadth-first from a root package:
//
//	g, err := graph.Build("busybox", res.Mapping, 3)
//
// Every edge leaving a node reached within the depth bound is recorded, so the
// boundary edges into the first level beyond the bound stay visible without
// those nodes being expanded. Nodes and edges keep discovery order; building
// the same input twice yields identical graphs.
//
// # Entries
//
// Nodes whose dependencies were expanded have an adjacency entry (see
// [Graph.Keys]), possibly empty. Nodes that only appear as edge targets have
// none. Callers treat both the same way: no children means no dependencies.
package graph

// Package loadorder computes a dependency-first load order over a graph.
//
// [Resolve] restricts itself to the nodes reachable from a start package in
// the graph it is given, typically the depth-bounded output of graph.Build,
// and never consults the full index again.
//
// Ordering uses Kahn's in-degree elimination over the reverse-dependency
// relation. A node becomes ready once every one of its dependencies has been
// emitted, so the result lists dependencies before the packages that need
// them. Ready nodes are taken in discovery order rather than sorted by name,
// which keeps results reproducible for a given graph.
//
// Cycles are not fatal. Nodes on or behind a cycle never become ready; they
// are reported in [Result.Unresolved] with [Result.CyclesDetected] set, and the
// partial order computed so far is still returned.
package loadorder

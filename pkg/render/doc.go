// Package render groups the graph output formats.
//
// [nodelink] draws the dependency graph as a node-link diagram: it emits
// Graphviz DOT and renders it to PNG or SVG with an embedded Graphviz.
//
// [nodelink]: github.com/matzehuels/depviz/pkg/render/nodelink
package render

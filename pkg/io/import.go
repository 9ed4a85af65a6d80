package io

import (
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"os"

	errs "github.com/matzehuels/depviz/pkg/errors"
	"github.com/matzehuels/depviz/pkg/graph"
)

// ReadJSON decodes a graph written by [WriteJSON].
//
// Node order is restored for nodes that have an entry or a depth; other
// nodes are created by the edges that reference them. A root that differs
// from the first listed node, an empty node ID or an edge from a node
// without an entry is a FORMAT_ERROR.
func ReadJSON(r io.Reader) (*graph.Graph, error) {
	var doc document
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return nil, errs.Wrap(errs.ErrCodeFormat, err, "decode graph")
	}
	if len(doc.Nodes) > 0 && doc.Root != doc.Nodes[0].ID {
		return nil, errs.New(errs.ErrCodeFormat, "root %q is not the first node", doc.Root)
	}

	g := graph.New()
	entries := make(map[string]bool, len(doc.Nodes))
	for _, n := range doc.Nodes {
		if n.ID == "" {
			return nil, errs.New(errs.ErrCodeFormat, "node with empty id")
		}
		if n.Entry {
			entries[n.ID] = true
			if err := g.AddNode(n.ID); err != nil {
				return nil, errs.Wrap(errs.ErrCodeFormat, err, "node %s", n.ID)
			}
		}
		if n.Depth != nil {
			g.SetDepth(n.ID, *n.Depth)
		}
	}
	for _, e := range doc.Edges {
		if !entries[e.From] {
			return nil, errs.New(errs.ErrCodeFormat, "edge %s->%s: source has no entry", e.From, e.To)
		}
		if err := g.AddEdge(e.From, e.To); err != nil {
			return nil, errs.Wrap(errs.ErrCodeFormat, err, "edge %s->%s", e.From, e.To)
		}
	}
	return g, nil
}

// ImportJSON reads the JSON graph file at path.
func ImportJSON(path string) (*graph.Graph, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "graph file %s not found", path)
	}
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "open %s", path)
	}
	defer f.Close()
	return ReadJSON(f)
}

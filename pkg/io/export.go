package io

import (
	"encoding/json"
	"io"
	"os"

	errs "github.com/matzehuels/depviz/pkg/errors"
	"github.com/matzehuels/depviz/pkg/graph"
)

type document struct {
	Root  string `json:"root"`
	Nodes []node `json:"nodes"`
	Edges []edge `json:"edges"`
}

type node struct {
	ID    string `json:"id"`
	Depth *int   `json:"depth,omitempty"`
	Entry bool   `json:"entry,omitempty"`
}

type edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// WriteJSON encodes g as indented JSON and writes it to w.
func WriteJSON(g *graph.Graph, w io.Writer) error {
	ids := g.Nodes()
	out := document{
		Root:  g.Root(),
		Nodes: make([]node, len(ids)),
		Edges: make([]edge, 0, g.EdgeCount()),
	}

	for i, id := range ids {
		n := node{ID: id, Entry: g.HasEntry(id)}
		if d, ok := g.Depth(id); ok {
			n.Depth = &d
		}
		out.Nodes[i] = n
	}
	for _, e := range g.Edges() {
		out.Edges = append(out.Edges, edge{From: e.From, To: e.To})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return errs.Wrap(errs.ErrCodeInternal, err, "encode graph")
	}
	return nil
}

// ExportJSON writes g to a JSON file at path.
func ExportJSON(g *graph.Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errs.Wrap(errs.ErrCodeInternal, err, "create %s", path)
	}
	if err := WriteJSON(g, f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return errs.Wrap(errs.ErrCodeInternal, err, "close %s", path)
	}
	return nil
}

package nodelink

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/matzehuels/depviz/pkg/graph"
)

// Options configures DOT generation.
type Options struct {
	// Detailed adds the traversal depth to node labels.
	Detailed bool
	// Unresolved marks nodes the load-order resolver could not place.
	// They are drawn with a red outline.
	Unresolved []string
}

// ToDOT converts a graph to Graphviz DOT format.
//
// The root is filled light blue. Nodes that only appear as edge targets
// (reached on the depth bound or undeclared in the index) get dashed grey
// outlines so the cut-off is visible.
func ToDOT(g *graph.Graph, opts Options) string {
	unresolved := make(map[string]bool, len(opts.Unresolved))
	for _, id := range opts.Unresolved {
		unresolved[id] = true
	}

	var buf bytes.Buffer
	buf.WriteString("digraph dependencies {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontname=\"Helvetica\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	root := g.Root()
	for _, id := range g.Nodes() {
		attrs := fmtAttrs(g, id, fmtLabel(g, id, opts.Detailed), id == root, unresolved[id])
		fmt.Fprintf(&buf, "  %s [%s];\n", quoteID(id), strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		fmt.Fprintf(&buf, "  %s -> %s;\n", quoteID(e.From), quoteID(e.To))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(g *graph.Graph, id string, detailed bool) string {
	if !detailed {
		return id
	}
	if d, ok := g.Depth(id); ok {
		return fmt.Sprintf("%s\ndepth: %d", id, d)
	}
	return id
}

func fmtAttrs(g *graph.Graph, id, label string, root, unresolved bool) []string {
	attrs := []string{"label=" + quoteID(label)}
	switch {
	case root:
		attrs = append(attrs, "fillcolor=lightblue")
	case !g.HasEntry(id):
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey")
	}
	if unresolved {
		attrs = append(attrs, "color=red", "penwidth=2")
	}
	return attrs
}

// quoteID renders s as a DOT double-quoted string. Only the quote, the
// backslash and line breaks need escaping; everything else is verbatim.
func quoteID(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

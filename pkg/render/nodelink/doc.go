// Package nodelink exports dependency graphs as Graphviz node-link diagrams.
//
// # Overview
//
// [ToDOT] serializes a graph.Graph into DOT source with one directed edge
// statement per dependency edge, in the graph's edge order. Node names are
// quoted verbatim with embedded quotes and backslashes escaped.
//
// [Export] writes that source to <dir>/<name>.dot and then tries to render
// image formats next to it. Rendering is best-effort: when the renderer
// fails, the DOT file is still written and the failure is reported in
// [ExportResult.Skipped] instead of failing the export.
//
// # Usage
//
//	res, err := nodelink.Export(ctx, g, nodelink.ExportOptions{
//	    Dir:     "out",
//	    Name:    "busybox.png",
//	    Formats: []string{"png"},
//	})
//	for _, s := range res.Skipped {
//	    log.Warn("render skipped", "format", s.Format, "err", s.Err)
//	}
//
// # Dependencies
//
// Rendering uses [github.com/goccy/go-graphviz], which embeds Graphviz and
// needs no system installation.
package nodelink

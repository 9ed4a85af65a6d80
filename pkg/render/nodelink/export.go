package nodelink

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"

	errs "github.com/matzehuels/depviz/pkg/errors"
	"github.com/matzehuels/depviz/pkg/graph"
	graphio "github.com/matzehuels/depviz/pkg/io"
)

// knownExts are stripped from output names so that "deps", "deps.dot" and
// "deps.png" all resolve to the same base name.
var knownExts = []string{".dot", ".gv", ".png", ".svg", ".json"}

// ExportOptions configures [Export].
type ExportOptions struct {
	Dir      string   // output directory, created if absent
	Name     string   // output base name; a known extension is stripped
	Formats  []string // formats to write besides DOT ("png", "svg", "json")
	DOT      Options
	Renderer Renderer // defaults to GraphvizRenderer
}

// RenderSkip reports an image that could not be rendered.
type RenderSkip struct {
	Format string
	Err    error
}

// ExportResult lists the files written by [Export].
type ExportResult struct {
	DOT     string            // DOT source
	DOTPath string            // path of the written .dot file
	Images  map[string]string // format -> written path
	Skipped []RenderSkip
}

// Rendered reports whether every requested image format was written.
func (r *ExportResult) Rendered() bool { return len(r.Skipped) == 0 }

// Export writes the DOT description of g and renders the requested formats.
//
// Invalid options (empty name, unknown format) and failures to write the DOT
// or JSON file are errors. Rendering failures are not: they are collected in
// ExportResult.Skipped with a RENDER_ERROR code.
func Export(ctx context.Context, g *graph.Graph, opts ExportOptions) (*ExportResult, error) {
	base := BaseName(opts.Name)
	if base == "" {
		return nil, errs.New(errs.ErrCodeInvalidArgument, "output name must not be empty")
	}
	formats, err := normalizeFormats(opts.Formats)
	if err != nil {
		return nil, err
	}
	if opts.Renderer == nil {
		opts.Renderer = GraphvizRenderer{}
	}

	dir := opts.Dir
	if dir == "" {
		dir = "."
	}
	stem := filepath.Join(dir, base)
	if err := os.MkdirAll(filepath.Dir(stem), 0o755); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "create output directory %s", dir)
	}

	res := &ExportResult{
		DOT:     ToDOT(g, opts.DOT),
		DOTPath: stem + ".dot",
		Images:  make(map[string]string),
	}
	if err := os.WriteFile(res.DOTPath, []byte(res.DOT), 0o644); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "write %s", res.DOTPath)
	}

	for _, f := range formats {
		if f == FormatJSON {
			path := stem + ".json"
			if err := graphio.ExportJSON(g, path); err != nil {
				return nil, err
			}
			res.Images[f] = path
			continue
		}
		data, err := opts.Renderer.Render(ctx, res.DOT, f)
		if err != nil {
			res.Skipped = append(res.Skipped, RenderSkip{
				Format: f,
				Err:    errs.Wrap(errs.ErrCodeRender, err, "render %s", f),
			})
			continue
		}
		path := stem + "." + f
		if err := os.WriteFile(path, data, 0o644); err != nil {
			res.Skipped = append(res.Skipped, RenderSkip{
				Format: f,
				Err:    errs.Wrap(errs.ErrCodeRender, err, "write %s", path),
			})
			continue
		}
		res.Images[f] = path
	}
	return res, nil
}

// BaseName strips surrounding whitespace and a known output extension.
func BaseName(name string) string {
	name = strings.TrimSpace(name)
	ext := strings.ToLower(filepath.Ext(name))
	if slices.Contains(knownExts, ext) {
		name = name[:len(name)-len(ext)]
	}
	return name
}

// normalizeFormats lower-cases, de-duplicates and validates image formats.
// "dot" is accepted and ignored since the DOT file is always written.
func normalizeFormats(in []string) ([]string, error) {
	var out []string
	for _, f := range in {
		f = strings.ToLower(strings.TrimSpace(f))
		switch f {
		case "", FormatDOT:
			continue
		case FormatPNG, FormatSVG, FormatJSON:
			if !slices.Contains(out, f) {
				out = append(out, f)
			}
		default:
			return nil, errs.New(errs.ErrCodeInvalidFormat, "invalid output format %q (must be one of: dot, png, svg, json)", f)
		}
	}
	return out, nil
}

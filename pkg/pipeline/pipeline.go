// Package pipeline runs the complete depviz analysis.
//
// The stages are:
//
//  1. Load: acquire the index text (pkg/source) and parse it (pkg/index)
//  2. Analyze: look up the root, build the bounded graph (pkg/graph) and
//     resolve the load order (pkg/loadorder)
//  3. Export: write the DOT file and render images (pkg/render/nodelink)
//
// The CLI runs all three through [Runner.Execute]. The HTTP server memoizes
// the result of [Runner.Load] and calls [Runner.Analyze] per request.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, logger)
//	res, err := runner.Execute(ctx, pipeline.Options{
//	    Package: "busybox",
//	    Repo:    "https://dl-cdn.alpinelinux.org/alpine/v3.20/main/x86_64",
//	    Mode:    "remote",
//	    Depth:   3,
//	    Output:  "busybox.png",
//	})
//	fmt.Println(res.Order.Order)
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	errs "github.com/matzehuels/depviz/pkg/errors"
	"github.com/matzehuels/depviz/pkg/graph"
	"github.com/matzehuels/depviz/pkg/index"
	"github.com/matzehuels/depviz/pkg/loadorder"
	"github.com/matzehuels/depviz/pkg/render/nodelink"
	"github.com/matzehuels/depviz/pkg/source"
)

// DefaultFormats are rendered when Options.Formats is empty.
var DefaultFormats = []string{nodelink.FormatPNG}

// Options configures a pipeline run.
type Options struct {
	Package string `json:"package"`
	Repo    string `json:"repo"`
	Mode    string `json:"mode"`
	Depth   int    `json:"depth"`

	Output   string   `json:"output,omitempty"`  // output file name; defaults to Package
	OutDir   string   `json:"out_dir,omitempty"` // defaults to "."
	Formats  []string `json:"formats,omitempty"`
	Detailed bool     `json:"detailed,omitempty"` // depth labels in DOT
	Refresh  bool     `json:"refresh,omitempty"`

	// IndexFormat overrides the format implied by Mode ("structured" or
	// "simple", see [index.ParseFormat]).
	IndexFormat string `json:"index_format,omitempty"`

	Logger *log.Logger `json:"-"`

	validated bool
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLoad(); err != nil {
		return err
	}
	if err := o.ValidateForAnalyze(); err != nil {
		return err
	}
	if o.Output == "" {
		o.Output = o.Package
	}
	if o.OutDir == "" {
		o.OutDir = "."
	}
	if len(o.Formats) == 0 {
		o.Formats = DefaultFormats
	}
	o.validated = true
	return nil
}

// ValidateForLoad checks the fields needed to acquire and parse an index.
func (o *Options) ValidateForLoad() error {
	if err := errs.ValidateMode(o.Mode); err != nil {
		return err
	}
	if o.Repo == "" {
		return errs.New(errs.ErrCodeInvalidArgument, "repo is required")
	}
	if o.Mode == source.ModeRemote {
		if err := errs.ValidateURL(o.Repo); err != nil {
			return err
		}
	}
	if o.IndexFormat != "" {
		f, err := index.ParseFormat(o.IndexFormat)
		if err != nil {
			return err
		}
		o.IndexFormat = string(f)
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// ValidateForAnalyze checks the fields needed to build and order a graph.
func (o *Options) ValidateForAnalyze() error {
	if err := errs.ValidatePackageName(o.Package); err != nil {
		return err
	}
	if err := errs.ValidateDepth(o.Depth); err != nil {
		return err
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// Result contains the outputs of a pipeline run.
type Result struct {
	RunID   string       `json:"run_id"`
	Package string       `json:"package"`
	Format  index.Format `json:"format"`

	// DirectDeps are the root's dependencies as declared in the index.
	DirectDeps []string `json:"direct_deps"`

	// Skipped lists index lines that were ignored while parsing.
	Skipped []index.Skip `json:"-"`

	Graph  *graph.Graph           `json:"-"`
	Order  *loadorder.Result      `json:"order"`
	Export *nodelink.ExportResult `json:"-"`

	Stats Stats `json:"stats"`
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Packages     int           `json:"packages"`
	SkippedLines int           `json:"skipped_lines"`
	NodeCount    int           `json:"nodes"`
	EdgeCount    int           `json:"edges"`
	LoadTime     time.Duration `json:"load_time"`
	BuildTime    time.Duration `json:"build_time"`
	ResolveTime  time.Duration `json:"resolve_time"`
	ExportTime   time.Duration `json:"export_time"`
}

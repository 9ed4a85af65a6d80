package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/depviz/pkg/cache"
	errs "github.com/matzehuels/depviz/pkg/errors"
	"github.com/matzehuels/depviz/pkg/graph"
	"github.com/matzehuels/depviz/pkg/httputil"
	"github.com/matzehuels/depviz/pkg/index"
	"github.com/matzehuels/depviz/pkg/loadorder"
	"github.com/matzehuels/depviz/pkg/observability"
	"github.com/matzehuels/depviz/pkg/render/nodelink"
	"github.com/matzehuels/depviz/pkg/source"
)

// Runner executes pipeline stages. It holds no per-run state, so one Runner
// can serve concurrent runs with different options.
type Runner struct {
	Cache  cache.Cache
	Logger *log.Logger
	// TTL is how long fetched indexes stay cached; zero uses source.DefaultTTL.
	TTL time.Duration

	// Client configures the HTTP client of remote sources.
	Client []httputil.Option
	// Renderer overrides the image renderer used by Export.
	Renderer nodelink.Renderer
}

// NewRunner creates a runner. A nil cache disables caching; a nil logger
// uses the default logger.
func NewRunner(c cache.Cache, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Logger: logger}
}

// Execute runs load → analyze → export.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	start := time.Now()
	parsed, err := r.Load(ctx, opts)
	if err != nil {
		return nil, err
	}
	loadTime := time.Since(start)

	res, err := r.Analyze(ctx, parsed, opts)
	if err != nil {
		return nil, err
	}
	res.Stats.LoadTime = loadTime

	if err := r.Export(ctx, res, opts); err != nil {
		return nil, err
	}
	return res, nil
}

// Load acquires and parses the index described by opts.
func (r *Runner) Load(ctx context.Context, opts Options) (*index.Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLoad(); err != nil {
		return nil, err
	}
	hooks := observability.Pipeline()

	src, err := source.New(opts.Mode, opts.Repo, source.Options{
		Cache:   r.Cache,
		TTL:     r.TTL,
		Refresh: opts.Refresh,
		Client:  r.Client,
	})
	if err != nil {
		return nil, err
	}

	start := time.Now()
	text, format, err := src.Fetch(ctx)
	hooks.OnFetchComplete(ctx, opts.Mode, len(text), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	opts.Logger.Debug("fetched index", "mode", opts.Mode, "repo", opts.Repo, "bytes", len(text))
	if opts.IndexFormat != "" {
		format = index.Format(opts.IndexFormat)
	}

	start = time.Now()
	parsed, err := index.Parse(text, format)
	if err != nil {
		hooks.OnParseComplete(ctx, string(format), 0, 0, time.Since(start), err)
		return nil, err
	}
	hooks.OnParseComplete(ctx, string(format), parsed.Mapping.Len(), len(parsed.Skipped), time.Since(start), nil)

	for _, s := range parsed.Skipped {
		opts.Logger.Warn("skipped index line", "line", s.Line, "reason", s.String())
	}
	opts.Logger.Info("parsed index",
		"format", format,
		"packages", parsed.Mapping.Len(),
		"skipped", len(parsed.Skipped))
	return parsed, nil
}

// Analyze looks up the root package, builds its dependency graph and
// resolves the load order.
func (r *Runner) Analyze(ctx context.Context, parsed *index.Result, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForAnalyze(); err != nil {
		return nil, err
	}
	hooks := observability.Pipeline()

	direct, ok := parsed.Mapping.Deps(opts.Package)
	if !ok {
		return nil, errs.New(errs.ErrCodeNotFound, "package %q not found in repository", opts.Package)
	}

	res := &Result{
		RunID:      uuid.NewString(),
		Package:    opts.Package,
		Format:     parsed.Format,
		DirectDeps: direct,
		Skipped:    parsed.Skipped,
	}
	res.Stats.Packages = parsed.Mapping.Len()
	res.Stats.SkippedLines = len(parsed.Skipped)

	start := time.Now()
	g, err := graph.Build(opts.Package, parsed.Mapping, opts.Depth)
	res.Stats.BuildTime = time.Since(start)
	if err != nil {
		hooks.OnBuildComplete(ctx, opts.Package, 0, 0, res.Stats.BuildTime, err)
		return nil, err
	}
	hooks.OnBuildComplete(ctx, opts.Package, g.NodeCount(), g.EdgeCount(), res.Stats.BuildTime, nil)
	res.Graph = g
	res.Stats.NodeCount = g.NodeCount()
	res.Stats.EdgeCount = g.EdgeCount()
	opts.Logger.Info("built dependency graph",
		"root", opts.Package,
		"depth", opts.Depth,
		"nodes", g.NodeCount(),
		"edges", g.EdgeCount())

	start = time.Now()
	order, err := loadorder.Resolve(g, opts.Package)
	res.Stats.ResolveTime = time.Since(start)
	if err != nil {
		return nil, err
	}
	hooks.OnResolveComplete(ctx, opts.Package, len(order.Order), order.CyclesDetected, res.Stats.ResolveTime)
	res.Order = order
	if order.CyclesDetected {
		opts.Logger.Warn("dependency cycle detected; load order is partial",
			"ordered", len(order.Order),
			"unresolved", order.Unresolved)
	}
	return res, nil
}

// Export writes res.Graph to disk and records the outcome in res.Export.
func (r *Runner) Export(ctx context.Context, res *Result, opts Options) error {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}
	if res.Graph == nil {
		return errs.New(errs.ErrCodeInternal, "export called without a graph")
	}

	dotOpts := nodelink.Options{Detailed: opts.Detailed}
	if res.Order != nil {
		dotOpts.Unresolved = res.Order.Unresolved
	}

	start := time.Now()
	exp, err := nodelink.Export(ctx, res.Graph, nodelink.ExportOptions{
		Dir:      opts.OutDir,
		Name:     opts.Output,
		Formats:  opts.Formats,
		DOT:      dotOpts,
		Renderer: r.Renderer,
	})
	res.Stats.ExportTime = time.Since(start)
	skipped := 0
	if exp != nil {
		skipped = len(exp.Skipped)
	}
	observability.Pipeline().OnExportComplete(ctx, opts.Formats, skipped, res.Stats.ExportTime, err)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	res.Export = exp

	opts.Logger.Info("wrote graph description", "path", exp.DOTPath)
	for _, s := range exp.Skipped {
		opts.Logger.Warn("image not rendered; DOT file saved", "format", s.Format, "err", errs.UserMessage(s.Err))
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

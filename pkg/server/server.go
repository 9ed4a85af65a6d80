// Package server exposes the depviz analysis over HTTP.
//
// # Routes
//
//	GET /v1/graph?package=&repo=&mode=&depth=   dependency edges as JSON
//	GET /v1/order?package=&repo=&mode=&depth=   load order and cycle flag
//	GET /v1/dot?package=&repo=&mode=&depth=     Graphviz DOT source
//	GET /healthz                                liveness and build info
//	GET /metrics                                Prometheus metrics
//
// Parsed indexes are memoized per (mode, repo) in an expiring LRU so that
// repeated queries against the same repository only parse it once. Pass
// refresh=true to reload.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/matzehuels/depviz/pkg/cache"
	"github.com/matzehuels/depviz/pkg/index"
	"github.com/matzehuels/depviz/pkg/observability"
	"github.com/matzehuels/depviz/pkg/pipeline"
)

// Defaults for [Config].
const (
	DefaultAddr     = ":8080"
	DefaultMemoSize = 64
	DefaultMemoTTL  = 10 * time.Minute
	DefaultMaxDepth = 50
)

// Config configures a [Server].
type Config struct {
	Addr     string
	MemoSize int
	MemoTTL  time.Duration
	// MaxDepth caps the depth parameter accepted from clients.
	MaxDepth int
	// AllowLocal permits mode=test, which reads files on the server host.
	AllowLocal bool
	// Metrics, when set, is served on /metrics and records request stats.
	Metrics *observability.Metrics
}

func (c *Config) setDefaults() {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.MemoSize <= 0 {
		c.MemoSize = DefaultMemoSize
	}
	if c.MemoTTL <= 0 {
		c.MemoTTL = DefaultMemoTTL
	}
	if c.MaxDepth <= 0 {
		c.MaxDepth = DefaultMaxDepth
	}
}

// Server serves dependency analyses. It is safe for concurrent use.
type Server struct {
	cfg    Config
	runner *pipeline.Runner
	logger *log.Logger
	keyer  cache.Keyer
	memo   *expirable.LRU[string, *index.Result]
}

// New creates a server that analyzes with runner.
func New(runner *pipeline.Runner, cfg Config, logger *log.Logger) *Server {
	cfg.setDefaults()
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		cfg:    cfg,
		runner: runner,
		logger: logger,
		keyer:  cache.NewDefaultKeyer(),
		memo:   expirable.NewLRU[string, *index.Result](cfg.MemoSize, nil, cfg.MemoTTL),
	}
}

// Routes returns the HTTP handler with all routes mounted.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/graph", s.handleGraph)
		r.Get("/order", s.handleOrder)
		r.Get("/dot", s.handleDOT)
	})
	if s.cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.cfg.Metrics.Handler())
	}
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// load returns the parsed index for opts, memoized per (mode, repo).
func (s *Server) load(ctx context.Context, opts pipeline.Options) (*index.Result, error) {
	key := s.keyer.IndexKey(opts.Mode, opts.Repo)
	if !opts.Refresh {
		if parsed, ok := s.memo.Get(key); ok {
			observability.Cache().OnCacheHit(ctx, "memo")
			return parsed, nil
		}
		observability.Cache().OnCacheMiss(ctx, "memo")
	}

	parsed, err := s.runner.Load(ctx, opts)
	if err != nil {
		return nil, err
	}
	s.memo.Add(key, parsed)
	return parsed, nil
}

func (s *Server) analyze(r *http.Request) (*pipeline.Result, error) {
	opts, err := s.parseQuery(r)
	if err != nil {
		return nil, err
	}
	opts.Logger = s.logger.With("request_id", requestIDFrom(r.Context()))

	parsed, err := s.load(r.Context(), opts)
	if err != nil {
		return nil, err
	}
	return s.runner.Analyze(r.Context(), parsed, opts)
}

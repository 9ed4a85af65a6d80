package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/matzehuels/depviz/pkg/buildinfo"
	errs "github.com/matzehuels/depviz/pkg/errors"
	"github.com/matzehuels/depviz/pkg/graph"
	"github.com/matzehuels/depviz/pkg/pipeline"
	"github.com/matzehuels/depviz/pkg/render/nodelink"
	"github.com/matzehuels/depviz/pkg/source"
)

type graphResponse struct {
	RunID      string         `json:"run_id"`
	Package    string         `json:"package"`
	DirectDeps []string       `json:"direct_deps"`
	Nodes      []string       `json:"nodes"`
	Edges      []graph.Edge   `json:"edges"`
	Depths     map[string]int `json:"depths"`
	Stats      pipeline.Stats `json:"stats"`
}

type orderResponse struct {
	RunID          string   `json:"run_id"`
	Package        string   `json:"package"`
	Order          []string `json:"order"`
	CyclesDetected bool     `json:"cycles_detected"`
	Reachable      []string `json:"reachable"`
	Unresolved     []string `json:"unresolved"`
}

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"build":  buildinfo.Get(),
	})
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	res, err := s.analyze(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	nodes := res.Graph.Nodes()
	depths := make(map[string]int, len(nodes))
	for _, n := range nodes {
		if d, ok := res.Graph.Depth(n); ok {
			depths[n] = d
		}
	}
	writeJSON(w, http.StatusOK, graphResponse{
		RunID:      res.RunID,
		Package:    res.Package,
		DirectDeps: res.DirectDeps,
		Nodes:      nodes,
		Edges:      res.Graph.Edges(),
		Depths:     depths,
		Stats:      res.Stats,
	})
}

func (s *Server) handleOrder(w http.ResponseWriter, r *http.Request) {
	res, err := s.analyze(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orderResponse{
		RunID:          res.RunID,
		Package:        res.Package,
		Order:          res.Order.Order,
		CyclesDetected: res.Order.CyclesDetected,
		Reachable:      res.Order.Reachable,
		Unresolved:     res.Order.Unresolved,
	})
}

func (s *Server) handleDOT(w http.ResponseWriter, r *http.Request) {
	res, err := s.analyze(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	dot := nodelink.ToDOT(res.Graph, nodelink.Options{
		Detailed:   r.URL.Query().Get("detailed") == "true",
		Unresolved: res.Order.Unresolved,
	})
	w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
	w.Header().Set("X-Run-ID", res.RunID)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(dot))
}

// parseQuery reads pipeline options from the query string.
func (s *Server) parseQuery(r *http.Request) (pipeline.Options, error) {
	q := r.URL.Query()
	opts := pipeline.Options{
		Package: strings.TrimSpace(q.Get("package")),
		Repo:    strings.TrimSpace(q.Get("repo")),
		Mode:    q.Get("mode"),
		Refresh: q.Get("refresh") == "true",
	}
	if opts.Mode == "" {
		opts.Mode = source.ModeRemote
	}
	if opts.Mode == source.ModeTest && !s.cfg.AllowLocal {
		return opts, errs.New(errs.ErrCodeInvalidMode, "mode %q is disabled on this server", opts.Mode)
	}

	raw := q.Get("depth")
	if raw == "" {
		return opts, errs.New(errs.ErrCodeInvalidArgument, "depth is required")
	}
	depth, err := strconv.Atoi(raw)
	if err != nil {
		return opts, errs.New(errs.ErrCodeInvalidArgument, "depth must be an integer, got %q", raw)
	}
	if depth > s.cfg.MaxDepth {
		return opts, errs.New(errs.ErrCodeInvalidArgument, "depth must be <= %d, got %d", s.cfg.MaxDepth, depth)
	}
	opts.Depth = depth
	return opts, nil
}

// statusFor maps error codes to HTTP statuses.
func statusFor(err error) int {
	switch {
	case errs.IsInvalid(err):
		return http.StatusBadRequest
	case errs.IsNotFound(err):
		return http.StatusNotFound
	case errs.Is(err, errs.ErrCodeNetwork), errs.Is(err, errs.ErrCodeArchive):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	id := requestIDFrom(r.Context())
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "request_id", id, "path", r.URL.Path, "err", err)
	}
	writeJSON(w, status, errorResponse{
		Error:     errs.UserMessage(err),
		Code:      string(errs.GetCode(err)),
		RequestID: id,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

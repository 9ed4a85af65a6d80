package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"

	errs "github.com/matzehuels/depviz/pkg/errors"
	"github.com/matzehuels/depviz/pkg/observability"
	"github.com/matzehuels/depviz/pkg/pipeline"
)

func setupServer(t *testing.T, cfg Config) (*httptest.Server, string) {
	t.Helper()

	repo := filepath.Join(t.TempDir(), "repo.txt")
	if err := os.WriteFile(repo, []byte("A: B C\nB: D\nC: D\nD:\nX: Y\nY: X\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	logger := log.New(io.Discard)
	s := New(pipeline.NewRunner(nil, logger), cfg, logger)
	ts := httptest.NewServer(s.Routes())
	t.Cleanup(ts.Close)
	return ts, repo
}

func query(repo, pkg, depth string) string {
	v := url.Values{}
	v.Set("package", pkg)
	v.Set("repo", repo)
	v.Set("mode", "test")
	v.Set("depth", depth)
	return v.Encode()
}

func getJSON(t *testing.T, u string, v any) *http.Response {
	t.Helper()
	resp, err := http.Get(u)
	if err != nil {
		t.Fatalf("GET %s: %v", u, err)
	}
	defer resp.Body.Close()
	if v != nil {
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	return resp
}

func TestServer_Graph(t *testing.T) {
	ts, repo := setupServer(t, Config{AllowLocal: true})

	var got graphResponse
	resp := getJSON(t, ts.URL+"/v1/graph?"+query(repo, "A", "1"), &got)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if resp.Header.Get(RequestIDHeader) == "" {
		t.Error("response missing request ID")
	}
	if !slices.Equal(got.DirectDeps, []string{"B", "C"}) {
		t.Errorf("DirectDeps = %v, want [B C]", got.DirectDeps)
	}
	if len(got.Edges) != 2 || got.Edges[0].From != "A" || got.Edges[0].To != "B" {
		t.Errorf("Edges = %v, want A->B, A->C", got.Edges)
	}
	if got.Depths["C"] != 1 {
		t.Errorf("Depths[C] = %d, want 1", got.Depths["C"])
	}
}

func TestServer_Order(t *testing.T) {
	ts, repo := setupServer(t, Config{AllowLocal: true})

	var got orderResponse
	getJSON(t, ts.URL+"/v1/order?"+query(repo, "A", "5"), &got)
	if !slices.Equal(got.Order, []string{"D", "B", "C", "A"}) {
		t.Errorf("Order = %v, want [D B C A]", got.Order)
	}
	if got.CyclesDetected {
		t.Error("CyclesDetected = true, want false")
	}

	getJSON(t, ts.URL+"/v1/order?"+query(repo, "X", "5"), &got)
	if !got.CyclesDetected {
		t.Error("CyclesDetected = false for X <-> Y")
	}
	if len(got.Order) != 0 || !slices.Equal(got.Unresolved, []string{"X", "Y"}) {
		t.Errorf("Order = %v, Unresolved = %v", got.Order, got.Unresolved)
	}
}

func TestServer_DOT(t *testing.T) {
	ts, repo := setupServer(t, Config{AllowLocal: true})

	resp, err := http.Get(ts.URL + "/v1/dot?" + query(repo, "A", "2"))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/vnd.graphviz") {
		t.Errorf("Content-Type = %q", ct)
	}
	if !strings.Contains(string(body), `"B" -> "D";`) {
		t.Errorf("DOT missing edge:\n%s", body)
	}
}

func TestServer_Errors(t *testing.T) {
	ts, repo := setupServer(t, Config{AllowLocal: true, MaxDepth: 10})

	tests := []struct {
		name   string
		query  string
		status int
		code   string
	}{
		{"unknown package", query(repo, "nope", "2"), http.StatusNotFound, "NOT_FOUND"},
		{"missing repo file", query(repo+".gone", "A", "2"), http.StatusNotFound, "FILE_NOT_FOUND"},
		{"zero depth", query(repo, "A", "0"), http.StatusBadRequest, "INVALID_ARGUMENT"},
		{"depth not a number", query(repo, "A", "deep"), http.StatusBadRequest, "INVALID_ARGUMENT"},
		{"depth over cap", query(repo, "A", "11"), http.StatusBadRequest, "INVALID_ARGUMENT"},
		{"empty package", query(repo, "", "2"), http.StatusBadRequest, "INVALID_PACKAGE"},
		{"bad mode", "mode=ftp&repo=x&package=A&depth=1", http.StatusBadRequest, "INVALID_MODE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got errorResponse
			resp := getJSON(t, ts.URL+"/v1/order?"+tt.query, &got)
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			if got.Code != tt.code {
				t.Errorf("code = %q, want %q (%s)", got.Code, tt.code, got.Error)
			}
			if got.RequestID == "" {
				t.Error("error response missing request ID")
			}
		})
	}
}

func TestServer_RemoteIndexMissing(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(http.NotFound))
	defer upstream.Close()
	ts, _ := setupServer(t, Config{})

	v := url.Values{}
	v.Set("package", "busybox")
	v.Set("repo", upstream.URL+"/alpine/v3.20/main/x86_64")
	v.Set("mode", "remote")
	v.Set("depth", "1")

	var got errorResponse
	resp := getJSON(t, ts.URL+"/v1/order?"+v.Encode(), &got)
	if resp.StatusCode != http.StatusBadGateway || got.Code != "NETWORK_ERROR" {
		t.Errorf("status = %d code = %q, want 502 NETWORK_ERROR (%s)", resp.StatusCode, got.Code, got.Error)
	}
}

func TestServer_LocalModeDisabled(t *testing.T) {
	ts, repo := setupServer(t, Config{})

	var got errorResponse
	resp := getJSON(t, ts.URL+"/v1/graph?"+query(repo, "A", "1"), &got)
	if resp.StatusCode != http.StatusBadRequest || got.Code != "INVALID_MODE" {
		t.Errorf("status = %d code = %q, want 400 INVALID_MODE", resp.StatusCode, got.Code)
	}
}

func TestServer_MemoizesParsedIndex(t *testing.T) {
	ts, repo := setupServer(t, Config{AllowLocal: true})

	getJSON(t, ts.URL+"/v1/order?"+query(repo, "A", "5"), nil)

	// The index is served from memory even after the file changes.
	if err := os.WriteFile(repo, []byte("A:\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	var got orderResponse
	getJSON(t, ts.URL+"/v1/order?"+query(repo, "A", "5"), &got)
	if len(got.Order) != 4 {
		t.Errorf("Order = %v, want memoized 4-node order", got.Order)
	}

	getJSON(t, ts.URL+"/v1/order?"+query(repo, "A", "5")+"&refresh=true", &got)
	if !slices.Equal(got.Order, []string{"A"}) {
		t.Errorf("Order after refresh = %v, want [A]", got.Order)
	}
}

func TestServer_RequestIDPropagation(t *testing.T) {
	ts, _ := setupServer(t, Config{})

	const id = "0b6f5bc6-4f1c-4d5e-9d3c-2a1b1e0f9a77"
	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/healthz", nil)
	req.Header.Set(RequestIDHeader, id)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if got := resp.Header.Get(RequestIDHeader); got != id {
		t.Errorf("request ID = %q, want %q", got, id)
	}

	req.Header.Set(RequestIDHeader, "not-a-uuid")
	resp, _ = http.DefaultClient.Do(req)
	resp.Body.Close()
	if got := resp.Header.Get(RequestIDHeader); got == "not-a-uuid" || got == "" {
		t.Errorf("invalid client request ID should be replaced, got %q", got)
	}
}

func TestServer_Metrics(t *testing.T) {
	m := observability.NewMetrics(prometheus.NewRegistry())
	ts, repo := setupServer(t, Config{AllowLocal: true, Metrics: m})

	getJSON(t, ts.URL+"/v1/graph?"+query(repo, "A", "1"), nil)

	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), `depviz_http_requests_total{method="GET",route="/v1/graph",status="200"} 1`) {
		t.Errorf("metrics missing request counter:\n%s", body)
	}
}

func TestServer_Health(t *testing.T) {
	ts, _ := setupServer(t, Config{})

	var health map[string]any
	resp := getJSON(t, ts.URL+"/healthz", &health)
	if resp.StatusCode != http.StatusOK || health["status"] != "ok" {
		t.Errorf("healthz = %d %v", resp.StatusCode, health)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{errs.New(errs.ErrCodeInvalidArgument, "x"), http.StatusBadRequest},
		{errs.New(errs.ErrCodeInvalidFormat, "x"), http.StatusBadRequest},
		{errs.New(errs.ErrCodeNotFound, "x"), http.StatusNotFound},
		{errs.New(errs.ErrCodeFileNotFound, "x"), http.StatusNotFound},
		{errs.New(errs.ErrCodeNetwork, "x"), http.StatusBadGateway},
		{errs.New(errs.ErrCodeArchive, "x"), http.StatusBadGateway},
		{errs.New(errs.ErrCodeInternal, "x"), http.StatusInternalServerError},
		{io.ErrUnexpectedEOF, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

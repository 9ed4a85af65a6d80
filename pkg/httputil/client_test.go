package httputil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/depviz/pkg/cache"
	errs "github.com/matzehuels/depviz/pkg/errors"
)

func newTestClient(t *testing.T, c cache.Cache, opts ...Option) *Client {
	t.Helper()
	opts = append([]Option{WithRetry(3, time.Millisecond)}, opts...)
	return NewClient(c, "test", time.Hour, opts...)
}

func TestClientGet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		if got := r.Header.Get("User-Agent"); got != "depviz-test" {
			t.Errorf("User-Agent = %q, want depviz-test", got)
		}
		w.Write([]byte("A: B C\n"))
	}))
	defer server.Close()

	client := newTestClient(t, nil, WithHeaders(map[string]string{"User-Agent": "depviz-test"}))

	body, err := client.Get(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if string(body) != "A: B C\n" {
		t.Errorf("Get() body = %q", body)
	}
}

func TestClientGet_StatusMapping(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		wantCode  errs.Code
		wantCalls int32
	}{
		{"not found", http.StatusNotFound, errs.ErrCodeNotFound, 1},
		{"server error retried", http.StatusBadGateway, errs.ErrCodeNetwork, 3},
		{"client error not retried", http.StatusForbidden, errs.ErrCodeNetwork, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			_, err := newTestClient(t, nil).Get(context.Background(), server.URL)
			if !errs.Is(err, tt.wantCode) {
				t.Errorf("Get() error = %v, want code %s", err, tt.wantCode)
			}
			if IsRetryable(err) {
				t.Error("Get() should not leak RetryableError to callers")
			}
			if got := calls.Load(); got != tt.wantCalls {
				t.Errorf("calls = %d, want %d", got, tt.wantCalls)
			}
		})
	}
}

func TestClientGet_RecoversAfterTransientFailure(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	body, err := newTestClient(t, nil).Get(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if string(body) != "ok" || calls.Load() != 2 {
		t.Errorf("Get() = %q after %d calls, want ok after 2", body, calls.Load())
	}
}

func TestClientGet_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := newTestClient(t, nil).Get(context.Background(), url)
	if !errs.Is(err, errs.ErrCodeNetwork) {
		t.Errorf("Get() error = %v, want NETWORK_ERROR", err)
	}
}

func TestClientFetch_Cached(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte("index"))
	}))
	defer server.Close()

	c, _ := cache.NewFileCache(t.TempDir())
	client := newTestClient(t, c)
	ctx := context.Background()

	for range 2 {
		body, err := client.Fetch(ctx, server.URL, false)
		if err != nil {
			t.Fatalf("Fetch() error: %v", err)
		}
		if string(body) != "index" {
			t.Errorf("Fetch() body = %q", body)
		}
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("server calls = %d, want 1 (second fetch cached)", got)
	}

	if _, err := client.Fetch(ctx, server.URL, true); err != nil {
		t.Fatalf("Fetch(refresh) error: %v", err)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("server calls = %d, want 2 after refresh", got)
	}
}

func TestClientFetch_ErrorsNotCached(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}))
	defer server.Close()

	c, _ := cache.NewFileCache(t.TempDir())
	client := newTestClient(t, c)

	for range 2 {
		if _, err := client.Fetch(context.Background(), server.URL, false); !errs.IsNotFound(err) {
			t.Errorf("Fetch() error = %v, want NOT_FOUND", err)
		}
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("server calls = %d, want 2", got)
	}
}

package httputil

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/matzehuels/depviz/pkg/cache"
	errs "github.com/matzehuels/depviz/pkg/errors"
	"github.com/matzehuels/depviz/pkg/observability"
)

const httpTimeout = 30 * time.Second

// Client downloads resources over HTTP with caching and retry.
type Client struct {
	http      *http.Client
	cache     cache.Cache
	keyer     cache.Keyer
	namespace string
	ttl       time.Duration
	headers   map[string]string
	attempts  int
	delay     time.Duration
}

// Option configures a [Client].
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithRetry overrides the retry policy.
func WithRetry(attempts int, delay time.Duration) Option {
	return func(c *Client) { c.attempts, c.delay = attempts, delay }
}

// WithHeaders sets headers sent with every request.
func WithHeaders(h map[string]string) Option {
	return func(c *Client) { c.headers = h }
}

// NewClient creates a Client that caches bodies in c under namespace for ttl.
// A nil cache disables caching.
func NewClient(c cache.Cache, namespace string, ttl time.Duration, opts ...Option) *Client {
	if c == nil {
		c = cache.NewNullCache()
	}
	cl := &Client{
		http:      NewHTTPClient(),
		cache:     c,
		keyer:     cache.NewDefaultKeyer(),
		namespace: namespace,
		ttl:       ttl,
		attempts:  DefaultAttempts,
		delay:     DefaultDelay,
	}
	for _, opt := range opts {
		opt(cl)
	}
	return cl
}

// NewHTTPClient creates an HTTP client with the standard timeout.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: httpTimeout}
}

// Fetch returns the body at url, from cache unless refresh is set.
func (c *Client) Fetch(ctx context.Context, url string, refresh bool) ([]byte, error) {
	return c.Cached(ctx, c.keyer.HTTPKey(c.namespace, url), refresh, func(ctx context.Context) ([]byte, error) {
		return c.Get(ctx, url)
	})
}

// Cached retrieves a value from cache or executes fetch and caches the result.
// If refresh is true, the cache lookup is skipped. Cache errors never fail
// the call.
func (c *Client) Cached(ctx context.Context, key string, refresh bool, fetch func(context.Context) ([]byte, error)) ([]byte, error) {
	hooks := observability.Cache()
	if !refresh {
		if data, ok, err := c.cache.Get(ctx, key); err == nil && ok {
			hooks.OnCacheHit(ctx, c.namespace)
			return data, nil
		}
		hooks.OnCacheMiss(ctx, c.namespace)
	}

	data, err := fetch(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.cache.Set(ctx, key, data, c.ttl); err == nil {
		hooks.OnCacheSet(ctx, c.namespace, len(data))
	}
	return data, nil
}

// Get performs an HTTP GET with retry and returns the response body.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	var body []byte
	err := Retry(ctx, c.attempts, c.delay, func() error {
		var err error
		body, err = c.doRequest(ctx, url)
		return err
	})
	if err != nil {
		if ctx.Err() != nil && !errs.Is(err, errs.ErrCodeNetwork) {
			return nil, errs.Wrap(errs.ErrCodeNetwork, err, "fetch %s", url)
		}
		return nil, unwrapRetryable(err)
	}
	return body, nil
}

func (c *Client) doRequest(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidArgument, err, "invalid URL %q", url)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	hooks := observability.HTTP()
	host, path := req.URL.Host, req.URL.Path
	hooks.OnRequest(ctx, req.Method, host, path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		return nil, Retryable(errs.Wrap(errs.ErrCodeNetwork, err, "fetch %s", url))
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp.StatusCode, url); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, Retryable(errs.Wrap(errs.ErrCodeNetwork, err, "read %s", url))
	}
	return data, nil
}

func checkStatus(code int, url string) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return errs.New(errs.ErrCodeNotFound, "%s: status %d", url, code)
	case code >= 500:
		return Retryable(errs.New(errs.ErrCodeNetwork, "%s: status %d", url, code))
	default:
		return errs.New(errs.ErrCodeNetwork, "%s: status %d", url, code)
	}
}

func unwrapRetryable(err error) error {
	if re, ok := err.(*RetryableError); ok {
		return re.Err
	}
	return err
}

package observability

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics records pipeline, cache, HTTP client and server events as
// Prometheus metrics. It implements [PipelineHooks], [CacheHooks] and
// [HTTPHooks].
type Metrics struct {
	registry *prometheus.Registry

	StageTotal       *prometheus.CounterVec
	StageDuration    *prometheus.HistogramVec
	GraphNodes       prometheus.Histogram
	CyclesTotal      prometheus.Counter
	SkippedLines     prometheus.Counter
	RenderSkipsTotal prometheus.Counter

	CacheOpsTotal *prometheus.CounterVec
	CacheSetBytes *prometheus.HistogramVec

	FetchTotal    *prometheus.CounterVec
	FetchDuration *prometheus.HistogramVec

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// NewMetrics creates and registers all metrics with registry.
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		registry: registry,
		StageTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "depviz_stage_total",
				Help: "Pipeline stage executions by outcome",
			},
			[]string{"stage", "status"},
		),
		StageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "depviz_stage_duration_seconds",
				Help:    "Pipeline stage duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"stage"},
		),
		GraphNodes: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "depviz_graph_nodes",
				Help:    "Number of nodes in built dependency graphs",
				Buckets: prometheus.ExponentialBuckets(1, 4, 8),
			},
		),
		CyclesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "depviz_cycles_detected_total",
				Help: "Load-order resolutions that found a cycle",
			},
		),
		SkippedLines: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "depviz_index_skipped_lines_total",
				Help: "Index lines skipped as malformed",
			},
		),
		RenderSkipsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "depviz_render_skips_total",
				Help: "Image formats that could not be rendered",
			},
		),
		CacheOpsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "depviz_cache_operations_total",
				Help: "Cache lookups and writes",
			},
			[]string{"key_type", "result"},
		),
		CacheSetBytes: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "depviz_cache_set_bytes",
				Help:    "Size of values written to the cache",
				Buckets: prometheus.ExponentialBuckets(1024, 4, 8),
			},
			[]string{"key_type"},
		),
		FetchTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "depviz_fetch_total",
				Help: "Outgoing HTTP requests by host and status",
			},
			[]string{"host", "status"},
		),
		FetchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "depviz_fetch_duration_seconds",
				Help:    "Outgoing HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"host"},
		),
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "depviz_http_requests_total",
				Help: "Total number of served HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "depviz_http_request_duration_seconds",
				Help:    "Served HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}

	registry.MustRegister(
		m.StageTotal, m.StageDuration, m.GraphNodes, m.CyclesTotal,
		m.SkippedLines, m.RenderSkipsTotal,
		m.CacheOpsTotal, m.CacheSetBytes,
		m.FetchTotal, m.FetchDuration,
		m.RequestsTotal, m.RequestDuration,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func (m *Metrics) stage(stage string, duration time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.StageTotal.WithLabelValues(stage, status).Inc()
	m.StageDuration.WithLabelValues(stage).Observe(duration.Seconds())
}

func (m *Metrics) OnFetchComplete(_ context.Context, _ string, _ int, d time.Duration, err error) {
	m.stage("fetch", d, err)
}

func (m *Metrics) OnParseComplete(_ context.Context, _ string, _, skipped int, d time.Duration, err error) {
	m.stage("parse", d, err)
	m.SkippedLines.Add(float64(skipped))
}

func (m *Metrics) OnBuildComplete(_ context.Context, _ string, nodes, _ int, d time.Duration, err error) {
	m.stage("build", d, err)
	if err == nil {
		m.GraphNodes.Observe(float64(nodes))
	}
}

func (m *Metrics) OnResolveComplete(_ context.Context, _ string, _ int, cycles bool, d time.Duration) {
	m.stage("resolve", d, nil)
	if cycles {
		m.CyclesTotal.Inc()
	}
}

func (m *Metrics) OnExportComplete(_ context.Context, _ []string, skipped int, d time.Duration, err error) {
	m.stage("export", d, err)
	m.RenderSkipsTotal.Add(float64(skipped))
}

func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.CacheOpsTotal.WithLabelValues(keyType, "hit").Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.CacheOpsTotal.WithLabelValues(keyType, "miss").Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, keyType string, size int) {
	m.CacheOpsTotal.WithLabelValues(keyType, "set").Inc()
	m.CacheSetBytes.WithLabelValues(keyType).Observe(float64(size))
}

func (m *Metrics) OnRequest(context.Context, string, string, string) {}

func (m *Metrics) OnResponse(_ context.Context, _, host, _ string, status int, d time.Duration) {
	m.FetchTotal.WithLabelValues(host, strconv.Itoa(status)).Inc()
	m.FetchDuration.WithLabelValues(host).Observe(d.Seconds())
}

func (m *Metrics) OnError(_ context.Context, _, host, _ string, _ error) {
	m.FetchTotal.WithLabelValues(host, "error").Inc()
}

var (
	_ PipelineHooks = (*Metrics)(nil)
	_ CacheHooks    = (*Metrics)(nil)
	_ HTTPHooks     = (*Metrics)(nil)
)

// Package metrics implements the observability hooks on Prometheus.
//
//	reg := prometheus.NewRegistry()
//	m := metrics.New(reg)
//	m.Install()
//	http.Handle("/metrics", metrics.Handler(reg))
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/mindtree/pkg/observability"
)

const namespace = "mindtree"

// Metrics holds every collector. It implements all hook interfaces of
// [observability].
type Metrics struct {
	mutations *prometheus.CounterVec

	layouts       *prometheus.CounterVec
	layoutNodes   *prometheus.HistogramVec
	layoutSeconds *prometheus.HistogramVec

	loads         *prometheus.CounterVec
	loadSeconds   *prometheus.HistogramVec
	renders       *prometheus.CounterVec
	renderSeconds prometheus.Histogram

	cacheOps   *prometheus.CounterVec
	cacheBytes *prometheus.CounterVec

	eventsDelivered *prometheus.CounterVec
	listenerPanics  *prometheus.CounterVec

	httpRequests *prometheus.CounterVec
	httpSeconds  *prometheus.HistogramVec
}

// New creates and registers the collectors on reg. A nil reg means
// [prometheus.DefaultRegisterer].
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		mutations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tree_mutations_total",
			Help:      "Structural tree mutations by operation and result.",
		}, []string{"op", "result"}),

		layouts: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "layout_passes_total",
			Help:      "Layout passes by kind.",
		}, []string{"kind"}),
		layoutNodes: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "layout_nodes",
			Help:      "Nodes positioned per layout pass.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}, []string{"kind"}),
		layoutSeconds: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "layout_duration_seconds",
			Help:      "Layout pass duration.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"kind"}),

		loads: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_loads_total",
			Help:      "Documents decoded by format and result.",
		}, []string{"format", "result"}),
		loadSeconds: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pipeline_load_duration_seconds",
			Help:      "Document decode duration.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"format"}),
		renders: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_renders_total",
			Help:      "Artifacts rendered by format and result.",
		}, []string{"format", "result"}),
		renderSeconds: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pipeline_render_duration_seconds",
			Help:      "Render stage duration.",
			Buckets:   prometheus.DefBuckets,
		}),

		cacheOps: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_operations_total",
			Help:      "Cache lookups and writes by key type and outcome.",
		}, []string{"key_type", "op"}),
		cacheBytes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_written_bytes_total",
			Help:      "Bytes written to the cache by key type.",
		}, []string{"key_type"}),

		eventsDelivered: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_delivered_total",
			Help:      "Events delivered by type.",
		}, []string{"type"}),
		listenerPanics: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "event_listener_panics_total",
			Help:      "Event listeners that panicked, by event type.",
		}, []string{"type"}),

		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Served HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpSeconds: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// Install registers m as every global hook.
func (m *Metrics) Install() {
	observability.SetTreeHooks(m)
	observability.SetLayoutHooks(m)
	observability.SetPipelineHooks(m)
	observability.SetCacheHooks(m)
	observability.SetEventHooks(m)
	observability.SetHTTPHooks(m)
}

// Handler serves the collectors gathered by g. A nil g means
// [prometheus.DefaultGatherer].
func Handler(g prometheus.Gatherer) http.Handler {
	if g == nil {
		g = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// ===== TreeHooks =====

func (m *Metrics) OnMutation(op, _ string, err error) {
	m.mutations.WithLabelValues(op, result(err)).Inc()
}

// ===== LayoutHooks =====

func (m *Metrics) OnLayout(kind string, nodeCount int, d time.Duration) {
	m.layouts.WithLabelValues(kind).Inc()
	m.layoutNodes.WithLabelValues(kind).Observe(float64(nodeCount))
	m.layoutSeconds.WithLabelValues(kind).Observe(d.Seconds())
}

// ===== PipelineHooks =====

func (m *Metrics) OnLoadStart(context.Context, string) {}

func (m *Metrics) OnLoadComplete(_ context.Context, format string, _ int, d time.Duration, err error) {
	m.loads.WithLabelValues(format, result(err)).Inc()
	m.loadSeconds.WithLabelValues(format).Observe(d.Seconds())
}

func (m *Metrics) OnRenderStart(context.Context, []string) {}

func (m *Metrics) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	for _, f := range formats {
		m.renders.WithLabelValues(f, result(err)).Inc()
	}
	m.renderSeconds.Observe(d.Seconds())
}

// ===== CacheHooks =====

func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.cacheOps.WithLabelValues(keyType, "hit").Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.cacheOps.WithLabelValues(keyType, "miss").Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, keyType string, size int) {
	m.cacheOps.WithLabelValues(keyType, "set").Inc()
	m.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

// ===== EventHooks =====

func (m *Metrics) OnDeliver(eventType string, _ int) {
	m.eventsDelivered.WithLabelValues(eventType).Inc()
}

func (m *Metrics) OnListenerPanic(eventType string, _ any) {
	m.listenerPanics.WithLabelValues(eventType).Inc()
}

// ===== HTTPHooks =====

func (m *Metrics) OnRequest(context.Context, string, string) {}

func (m *Metrics) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpSeconds.WithLabelValues(method, route).Observe(d.Seconds())
}

var (
	_ observability.TreeHooks     = (*Metrics)(nil)
	_ observability.LayoutHooks   = (*Metrics)(nil)
	_ observability.PipelineHooks = (*Metrics)(nil)
	_ observability.CacheHooks    = (*Metrics)(nil)
	_ observability.EventHooks    = (*Metrics)(nil)
	_ observability.HTTPHooks     = (*Metrics)(nil)
)

// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers register hooks at startup to
// receive events about tree mutations, layout passes, the render pipeline,
// cache operations, event delivery, and served HTTP requests.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// The tree and layout packages are synchronous, in-memory computations, so
// their hooks take no context. The [metrics] subpackage implements every hook
// interface on top of Prometheus.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetLayoutHooks(&myLayoutHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	start := time.Now()
//	// ... compute layout ...
//	observability.Layout().OnLayout("full", nodeCount, time.Since(start))
//
// [metrics]: github.com/matzehuels/mindtree/pkg/observability/metrics
package observability

import (
	"context"
	"sync"
	"time"
)

// TreeHooks receives events from structural tree mutations.
type TreeHooks interface {
	// OnMutation records a completed mutation. op is the operation name
	// ("add", "insert_before", "move", ...) and err is nil on success.
	OnMutation(op, nodeID string, err error)
}

// LayoutHooks receives events from the layout engine.
type LayoutHooks interface {
	// OnLayout records a finished layout pass. kind is "full" or "partial".
	OnLayout(kind string, nodeCount int, duration time.Duration)
}

// PipelineHooks receives events from the load → layout → render pipeline.
type PipelineHooks interface {
	// Load events
	OnLoadStart(ctx context.Context, format string)
	OnLoadComplete(ctx context.Context, format string, nodeCount int, duration time.Duration, err error)

	// Render events
	OnRenderStart(ctx context.Context, formats []string)
	OnRenderComplete(ctx context.Context, formats []string, duration time.Duration, err error)
}

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// EventHooks receives events from the deferred notification bus.
type EventHooks interface {
	// OnDeliver records an event handed to every listener.
	OnDeliver(eventType string, listeners int)

	// OnListenerPanic records a listener that panicked during delivery.
	OnListenerPanic(eventType string, recovered any)
}

// HTTPHooks receives events from served HTTP requests.
type HTTPHooks interface {
	// OnRequest records an incoming HTTP request.
	OnRequest(ctx context.Context, method, route string)

	// OnResponse records an HTTP response.
	OnResponse(ctx context.Context, method, route string, statusCode int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopTreeHooks is a no-op implementation of TreeHooks.
type NoopTreeHooks struct{}

func (NoopTreeHooks) OnMutation(string, string, error) {}

// NoopLayoutHooks is a no-op implementation of LayoutHooks.
type NoopLayoutHooks struct{}

func (NoopLayoutHooks) OnLayout(string, int, time.Duration) {}

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnLoadStart(context.Context, string)                               {}
func (NoopPipelineHooks) OnLoadComplete(context.Context, string, int, time.Duration, error) {}
func (NoopPipelineHooks) OnRenderStart(context.Context, []string)                           {}
func (NoopPipelineHooks) OnRenderComplete(context.Context, []string, time.Duration, error)  {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopEventHooks is a no-op implementation of EventHooks.
type NoopEventHooks struct{}

func (NoopEventHooks) OnDeliver(string, int)       {}
func (NoopEventHooks) OnListenerPanic(string, any) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                     {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	treeHooks     TreeHooks     = NoopTreeHooks{}
	layoutHooks   LayoutHooks   = NoopLayoutHooks{}
	pipelineHooks PipelineHooks = NoopPipelineHooks{}
	cacheHooks    CacheHooks    = NoopCacheHooks{}
	eventHooks    EventHooks    = NoopEventHooks{}
	httpHooks     HTTPHooks     = NoopHTTPHooks{}
	hooksMu       sync.RWMutex
)

func register[T any](dst *T, h T) {
	if any(h) == nil {
		return
	}
	hooksMu.Lock()
	defer hooksMu.Unlock()
	*dst = h
}

func load[T any](src *T) T {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return *src
}

// SetTreeHooks registers tree mutation hooks. A nil h is ignored, as it is
// for every Set function.
func SetTreeHooks(h TreeHooks) { register(&treeHooks, h) }

// SetLayoutHooks registers layout pass hooks.
func SetLayoutHooks(h LayoutHooks) { register(&layoutHooks, h) }

// SetPipelineHooks registers pipeline hooks. Call it at startup, before the
// first pipeline run.
func SetPipelineHooks(h PipelineHooks) { register(&pipelineHooks, h) }

// SetCacheHooks registers cache hooks.
func SetCacheHooks(h CacheHooks) { register(&cacheHooks, h) }

// SetEventHooks registers event bus hooks.
func SetEventHooks(h EventHooks) { register(&eventHooks, h) }

// SetHTTPHooks registers HTTP hooks. Call it before serving requests.
func SetHTTPHooks(h HTTPHooks) { register(&httpHooks, h) }

// Tree returns the registered tree hooks.
func Tree() TreeHooks { return load(&treeHooks) }

// Layout returns the registered layout hooks.
func Layout() LayoutHooks { return load(&layoutHooks) }

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks { return load(&pipelineHooks) }

// Cache returns the registered cache hooks.
func Cache() CacheHooks { return load(&cacheHooks) }

// Event returns the registered event bus hooks.
func Event() EventHooks { return load(&eventHooks) }

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks { return load(&httpHooks) }

// Reset restores the no-op defaults. Tests use it to undo registrations.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	treeHooks = NoopTreeHooks{}
	layoutHooks = NoopLayoutHooks{}
	pipelineHooks = NoopPipelineHooks{}
	cacheHooks = NoopCacheHooks{}
	eventHooks = NoopEventHooks{}
	httpHooks = NoopHTTPHooks{}
}

// Package observability provides hooks for metrics, tracing, and logging.
//
// Instrumentation is optional: packages emit events through the registered
// hooks, which default to no-ops. Binaries install real implementations at
// startup, for example the structured-logging hooks in [LogHooks]:
//
//	observability.SetAll(observability.NewLogHooks(logger))
//
// or one concern at a time:
//
//	observability.SetHTTPHooks(metrics)
//
// Packages call the accessor for their concern:
//
//	observability.Pipeline().OnLoadStart(ctx, source, year)
//	observability.Source().OnRetry(ctx, source, attempt, err)
package observability

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// =============================================================================
// Hook Interfaces
// =============================================================================

// PipelineHooks receives the stage events of one pipeline run.
type PipelineHooks interface {
	// Load fetches booking records from a source.
	OnLoadStart(ctx context.Context, source string, year int)
	OnLoadComplete(ctx context.Context, source string, records int, duration time.Duration, err error)

	// Layout clips, packs and groups the bookings.
	OnLayoutStart(ctx context.Context, year int, bookings int)
	OnLayoutComplete(ctx context.Context, year int, supports int, duration time.Duration, err error)

	OnRenderStart(ctx context.Context, formats []string)
	OnRenderComplete(ctx context.Context, formats []string, duration time.Duration, err error)
}

// SourceHooks receives paging events from booking sources.
type SourceHooks interface {
	// OnPageFetched records one booking page; page counts from zero.
	OnPageFetched(ctx context.Context, source string, page int, records int)

	// OnRetry records a transient failure before attempt number attempt + 1.
	OnRetry(ctx context.Context, source string, attempt int, err error)
}

// CacheHooks receives page cache events. keyType is "page" or "supports".
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// HTTPHooks receives events from the HTTP server.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, path string)
	OnResponse(ctx context.Context, method, path string, statusCode int, duration time.Duration)

	// OnError records a request that ended in an error response.
	OnError(ctx context.Context, method, path string, err error)
}

// Hooks implements every concern.
type Hooks interface {
	PipelineHooks
	SourceHooks
	CacheHooks
	HTTPHooks
}

// =============================================================================
// No-op Implementations
// =============================================================================

type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnLoadStart(context.Context, string, int)                          {}
func (NoopPipelineHooks) OnLoadComplete(context.Context, string, int, time.Duration, error) {}
func (NoopPipelineHooks) OnLayoutStart(context.Context, int, int)                           {}
func (NoopPipelineHooks) OnLayoutComplete(context.Context, int, int, time.Duration, error)  {}
func (NoopPipelineHooks) OnRenderStart(context.Context, []string)                           {}
func (NoopPipelineHooks) OnRenderComplete(context.Context, []string, time.Duration, error)  {}

type NoopSourceHooks struct{}

func (NoopSourceHooks) OnPageFetched(context.Context, string, int, int) {}
func (NoopSourceHooks) OnRetry(context.Context, string, int, error)     {}

type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, error)                 {}

// =============================================================================
// Global Hook Registry
// =============================================================================

// hookSet is replaced as a whole on every change, so readers only load a
// pointer.
type hookSet struct {
	pipeline PipelineHooks
	source   SourceHooks
	cache    CacheHooks
	http     HTTPHooks
}

func noopSet() *hookSet {
	return &hookSet{
		pipeline: NoopPipelineHooks{},
		source:   NoopSourceHooks{},
		cache:    NoopCacheHooks{},
		http:     NoopHTTPHooks{},
	}
}

var (
	current atomic.Pointer[hookSet]
	writeMu sync.Mutex
)

func init() { current.Store(noopSet()) }

// update applies fn to a copy of the current set and publishes it.
func update(fn func(*hookSet)) {
	writeMu.Lock()
	defer writeMu.Unlock()
	next := *current.Load()
	fn(&next)
	current.Store(&next)
}

// SetPipelineHooks registers pipeline hooks. A nil h is ignored.
func SetPipelineHooks(h PipelineHooks) {
	if h != nil {
		update(func(s *hookSet) { s.pipeline = h })
	}
}

// SetSourceHooks registers source hooks. A nil h is ignored.
func SetSourceHooks(h SourceHooks) {
	if h != nil {
		update(func(s *hookSet) { s.source = h })
	}
}

// SetCacheHooks registers cache hooks. A nil h is ignored.
func SetCacheHooks(h CacheHooks) {
	if h != nil {
		update(func(s *hookSet) { s.cache = h })
	}
}

// SetHTTPHooks registers HTTP hooks. A nil h is ignored.
func SetHTTPHooks(h HTTPHooks) {
	if h != nil {
		update(func(s *hookSet) { s.http = h })
	}
}

// SetAll registers h for every concern. A nil h is ignored.
func SetAll(h Hooks) {
	if h != nil {
		update(func(s *hookSet) { *s = hookSet{pipeline: h, source: h, cache: h, http: h} })
	}
}

func Pipeline() PipelineHooks { return current.Load().pipeline }

func Source() SourceHooks { return current.Load().source }

func Cache() CacheHooks { return current.Load().cache }

func HTTP() HTTPHooks { return current.Load().http }

// Reset restores the no-op hooks.
func Reset() {
	writeMu.Lock()
	defer writeMu.Unlock()
	current.Store(noopSet())
}

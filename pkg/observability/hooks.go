// Package observability lets callers watch simcheck at work without the
// libraries depending on a metrics or tracing backend.
//
// Three hook sets exist: [PipelineHooks] for normalization, signatures and
// comparisons, [CacheHooks] for signature and composite cache traffic, and
// [HTTPHooks] for the API server. Each defaults to a no-op. Register
// replacements once, before work starts:
//
//	observability.SetCacheHooks(promCacheHooks{})
//
// Emitters fetch the current set on every event:
//
//	observability.Cache().OnCacheMiss(ctx, "signature")
package observability

import (
	"context"
	"sync"
	"time"
)

// PipelineHooks receives events from normalization and comparison.
type PipelineHooks interface {
	// Normalize events
	OnNormalizeStart(ctx context.Context, sources, width, height int)
	OnNormalizeComplete(ctx context.Context, sources int, duration time.Duration, err error)

	// Signature events
	OnSignatureStart(ctx context.Context, width, height, sampleSize int)
	OnSignatureComplete(ctx context.Context, duration time.Duration)

	// Compare events
	OnCompareStart(ctx context.Context, expectedPath string)
	OnCompareComplete(ctx context.Context, expectedPath, outcome string, distance float64, duration time.Duration, err error)
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

// HTTPHooks receives events from the HTTP API server.
type HTTPHooks interface {
	// OnRequest records an incoming request.
	OnRequest(ctx context.Context, method, path string)

	// OnResponse records the response written for a request.
	OnResponse(ctx context.Context, method, path string, statusCode int, duration time.Duration)

	// OnError records a handler error before it is mapped to a status code.
	OnError(ctx context.Context, method, path string, err error)
}

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnNormalizeStart(context.Context, int, int, int)                    {}
func (NoopPipelineHooks) OnNormalizeComplete(context.Context, int, time.Duration, error)     {}
func (NoopPipelineHooks) OnSignatureStart(context.Context, int, int, int)                    {}
func (NoopPipelineHooks) OnSignatureComplete(context.Context, time.Duration)                 {}
func (NoopPipelineHooks) OnCompareStart(context.Context, string)                             {}
func (NoopPipelineHooks) OnCompareComplete(context.Context, string, string, float64, time.Duration, error) {
}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, error)                 {}

var (
	pipelineHooks PipelineHooks = NoopPipelineHooks{}
	cacheHooks    CacheHooks    = NoopCacheHooks{}
	httpHooks     HTTPHooks     = NoopHTTPHooks{}
	hooksMu       sync.RWMutex
)

// SetPipelineHooks replaces the pipeline hooks. Nil is ignored.
func SetPipelineHooks(h PipelineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		pipelineHooks = h
	}
}

// SetCacheHooks replaces the cache hooks. Nil is ignored.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks replaces the HTTP hooks. Nil is ignored.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return pipelineHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores the no-op hooks. Tests that register hooks clean up with it.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	pipelineHooks = NoopPipelineHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}

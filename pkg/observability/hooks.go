// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers register hooks at startup to
// receive events about analysis runs, cache operations, and restore invocations.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// Hooks are registered by the CLI, never by libraries.
//
// # Usage
//
// Register hooks at application startup:
//
//	hooks := observability.NewLogHooks(logger)
//	observability.SetAnalyzerHooks(hooks)
//	observability.SetCacheHooks(hooks)
//	observability.SetRestoreHooks(hooks)
//
// Libraries call hooks to emit events:
//
//	observability.Analyzer().OnAnalyzeStart(ctx, graph.RootPath, len(graph.Projects))
//	// ... walk projects ...
//	observability.Analyzer().OnAnalyzeComplete(ctx, graph.RootPath, kept, time.Since(start), err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Analyzer Hooks
// =============================================================================

// AnalyzerHooks receives events from the distillation engine.
type AnalyzerHooks interface {
	// Run events
	OnAnalyzeStart(ctx context.Context, rootPath string, projects int)
	OnAnalyzeComplete(ctx context.Context, rootPath string, kept int, duration time.Duration, err error)

	// OnProjectSkipped records a project whose restore style is not analysed.
	OnProjectSkipped(ctx context.Context, path, style string)

	// OnCycle records an edge that would re-enter a library already being
	// expanded. chain is the visiting chain, outermost first.
	OnCycle(ctx context.Context, project, framework string, chain []string, name string)

	// OnUnresolved records a direct dependency with no resolved library.
	OnUnresolved(ctx context.Context, project, framework, name string)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// Restore Hooks
// =============================================================================

// RestoreHooks receives events from dotnet tool invocations.
type RestoreHooks interface {
	// OnRestoreStart records a dotnet invocation.
	OnRestoreStart(ctx context.Context, step, target string)

	// OnRestoreComplete records the outcome of a dotnet invocation.
	OnRestoreComplete(ctx context.Context, step, target string, exitCode int, duration time.Duration, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopAnalyzerHooks is a no-op implementation of AnalyzerHooks.
type NoopAnalyzerHooks struct{}

func (NoopAnalyzerHooks) OnAnalyzeStart(context.Context, string, int) {}
func (NoopAnalyzerHooks) OnAnalyzeComplete(context.Context, string, int, time.Duration, error) {
}
func (NoopAnalyzerHooks) OnProjectSkipped(context.Context, string, string)          {}
func (NoopAnalyzerHooks) OnCycle(context.Context, string, string, []string, string) {}
func (NoopAnalyzerHooks) OnUnresolved(context.Context, string, string, string)      {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopRestoreHooks is a no-op implementation of RestoreHooks.
type NoopRestoreHooks struct{}

func (NoopRestoreHooks) OnRestoreStart(context.Context, string, string) {}
func (NoopRestoreHooks) OnRestoreComplete(context.Context, string, string, int, time.Duration, error) {
}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	analyzerHooks AnalyzerHooks = NoopAnalyzerHooks{}
	cacheHooks    CacheHooks    = NoopCacheHooks{}
	restoreHooks  RestoreHooks  = NoopRestoreHooks{}
	hooksMu       sync.RWMutex
)

// SetAnalyzerHooks registers custom analyzer hooks.
// This should be called once at application startup before any analysis runs.
func SetAnalyzerHooks(h AnalyzerHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		analyzerHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetRestoreHooks registers custom restore hooks.
func SetRestoreHooks(h RestoreHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		restoreHooks = h
	}
}

// Analyzer returns the registered analyzer hooks.
func Analyzer() AnalyzerHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return analyzerHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Restore returns the registered restore hooks.
func Restore() RestoreHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return restoreHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	analyzerHooks = NoopAnalyzerHooks{}
	cacheHooks = NoopCacheHooks{}
	restoreHooks = NoopRestoreHooks{}
}

package observability

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks reports analyzer, cache and restore events to a charm logger.
// Data-quality events (cycles, unresolved references) are logged at warn
// level, the rest at debug.
type LogHooks struct {
	Logger *log.Logger
}

// NewLogHooks returns hooks that write to logger.
func NewLogHooks(logger *log.Logger) *LogHooks {
	return &LogHooks{Logger: logger}
}

func (h *LogHooks) OnAnalyzeStart(_ context.Context, rootPath string, projects int) {
	h.Logger.Debug("analyzing", "root", rootPath, "projects", projects)
}

func (h *LogHooks) OnAnalyzeComplete(_ context.Context, rootPath string, kept int, d time.Duration, err error) {
	if err != nil {
		h.Logger.Debug("analysis failed", "root", rootPath, "error", err, "elapsed", d)
		return
	}
	h.Logger.Debug("analysis complete", "root", rootPath, "kept", kept, "elapsed", d)
}

func (h *LogHooks) OnProjectSkipped(_ context.Context, path, style string) {
	h.Logger.Info("skipping project", "path", path, "style", style)
}

func (h *LogHooks) OnCycle(_ context.Context, project, framework string, chain []string, name string) {
	h.Logger.Warn("dependency cycle broken",
		"project", project,
		"framework", framework,
		"chain", strings.Join(chain, " -> ")+" -> "+name)
}

func (h *LogHooks) OnUnresolved(_ context.Context, project, framework, name string) {
	h.Logger.Warn("unresolved direct dependency", "project", project, "framework", framework, "dependency", name)
}

func (h *LogHooks) OnRestoreStart(_ context.Context, step, target string) {
	h.Logger.Debug("running dotnet", "step", step, "target", target)
}

func (h *LogHooks) OnRestoreComplete(_ context.Context, step, target string, exitCode int, d time.Duration, err error) {
	if err != nil {
		h.Logger.Error("dotnet failed", "step", step, "target", target, "exit", exitCode, "elapsed", d)
		return
	}
	h.Logger.Debug("dotnet done", "step", step, "target", target, "elapsed", d)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.Logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.Logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.Logger.Debug("cache write", "type", keyType, "bytes", size)
}

var (
	_ AnalyzerHooks = (*LogHooks)(nil)
	_ CacheHooks    = (*LogHooks)(nil)
	_ RestoreHooks  = (*LogHooks)(nil)
)

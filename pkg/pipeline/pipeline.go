// Package pipeline provides the restore → load → analyze → render pipeline.
//
// The CLI, the TUI and the HTTP server all run analyses through a [Runner] so
// that caching, history and output formats behave the same everywhere.
//
// # Architecture
//
// The pipeline consists of four stages:
//
//  1. Restore: run dotnet to write the restore graph (skipped with GraphPath)
//  2. Load: read the restore graph, lock files and packages folder
//  3. Analyze: distill the raw graph (cached by artifact hash and options)
//  4. Render: produce the requested output formats
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Target:  "App.sln",
//	    Search:  "json",
//	    Formats: []string{pipeline.FormatText},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.Stdout.Write(result.Artifacts[pipeline.FormatText])
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/depdistill/pkg/analyzer"
	"github.com/matzehuels/depdistill/pkg/cache"
	"github.com/matzehuels/depdistill/pkg/errors"
)

// =============================================================================
// Formats
// =============================================================================

// Format constants for output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatTOML = "toml"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
)

// DefaultFormat is the output format when none is requested.
const DefaultFormat = FormatText

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatText: true,
	FormatJSON: true,
	FormatTOML: true,
	FormatDOT:  true,
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: text, json, toml, dot, svg, png, pdf)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for a pipeline run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Restore options
	Target    string `json:"target,omitempty"`     // Solution or project to restore
	GraphPath string `json:"graph_path,omitempty"` // Existing dgspec; skips restore
	TempDir   string `json:"temp_dir,omitempty"`   // Where the dgspec is written

	// Load options
	PackagesDir string `json:"packages_dir,omitempty"`

	// Analyze options
	Search           string `json:"search,omitempty"`
	IncludeLibraries bool   `json:"libraries,omitempty"`
	Concurrency      int    `json:"concurrency,omitempty"`
	Refresh          bool   `json:"refresh,omitempty"` // Ignore cached results

	// Render options
	Formats []string `json:"formats,omitempty"`
	Color   bool     `json:"-"`
	Merge   bool     `json:"merge,omitempty"` // Merge identical packages in graph output

	// Save stores the result in the runner's history store.
	Save bool `json:"save,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	validated bool
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	path := o.GraphPath
	if path == "" {
		path = o.Target
	}
	if err := errors.ValidatePath(path); err != nil {
		return err
	}
	if err := errors.ValidateSearchTerm(o.Search); err != nil {
		return err
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{DefaultFormat}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Concurrency <= 0 {
		o.Concurrency = analyzer.DefaultConcurrency
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// AnalyzerOptions returns the engine options for this run.
func (o *Options) AnalyzerOptions() analyzer.Options {
	return analyzer.Options{
		Search:           o.Search,
		IncludeLibraries: o.IncludeLibraries,
		Concurrency:      o.Concurrency,
		Logger:           o.Logger,
	}
}

// ResultKeyOpts returns cache key options for the analysis.
func (o *Options) ResultKeyOpts() cache.ResultKeyOpts {
	return cache.ResultKeyOpts{
		Search:      o.Search,
		Libraries:   o.IncludeLibraries,
		PackagesDir: o.PackagesDir,
	}
}

// =============================================================================
// Result
// =============================================================================

// Result contains the outputs of a pipeline run.
type Result struct {
	// Analysis is the distilled result.
	Analysis *analyzer.Result

	// ID is the history id when the run was saved.
	ID string

	// GraphPath is the restore graph the run read. A graph written to a
	// temporary directory is removed before Execute returns.
	GraphPath string

	// GraphHash identifies the restore artifacts.
	GraphHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	RestoreTime time.Duration
	AnalyzeTime time.Duration // Load and analyze
	RenderTime  time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	AnalyzeHit bool
}

func (r *Result) String() string {
	if r.Analysis == nil {
		return "no result"
	}
	s := r.Analysis.Stats
	return fmt.Sprintf("%d of %d projects kept, %d skipped, %d dependencies",
		s.Kept, s.Projects, s.Skipped, r.Analysis.Libraries().Len())
}

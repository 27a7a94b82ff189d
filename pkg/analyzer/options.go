package analyzer

import (
	"io"

	"github.com/charmbracelet/log"
)

// DefaultConcurrency is the number of projects analysed in parallel.
const DefaultConcurrency = 8

// Options configures an analysis run.
type Options struct {
	Search           string      // Case-insensitive substring filter (empty: keep everything)
	IncludeLibraries bool        // Populate Project.LibraryList
	Concurrency      int         // Projects analysed in parallel (default: 8)
	Logger           *log.Logger // Debug output (default: discard)
}

// WithDefaults returns a copy of Options with zero values replaced by defaults.
func (o Options) WithDefaults() Options {
	opts := o
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	return opts
}

package pipeline

import (
	"context"
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/depdistill/pkg/analyzer"
	"github.com/matzehuels/depdistill/pkg/cache"
	"github.com/matzehuels/depdistill/pkg/errors"
	"github.com/matzehuels/depdistill/pkg/nuget"
	"github.com/matzehuels/depdistill/pkg/nuget/localrepo"
	"github.com/matzehuels/depdistill/pkg/nuget/restore"
	"github.com/matzehuels/depdistill/pkg/store"
)

// Restorer writes the restore graph of a solution or project.
type Restorer interface {
	GenerateGraph(ctx context.Context, target, tempDir string) (string, error)
}

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it to avoid duplicating caching logic.
//
// The Runner is stateless except for its collaborators. Multiple goroutines
// can safely use the same Runner with different options.
type Runner struct {
	Cache    cache.Cache
	Keyer    cache.Keyer
	Restorer Restorer
	Store    store.Store // optional; required for Options.Save
	TTL      time.Duration
	Logger   *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
// The restorer defaults to the dotnet CLI on PATH.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:    c,
		Keyer:    keyer,
		Restorer: &restore.Runner{Logger: logger},
		Logger:   logger,
	}
}

// Execute runs the complete restore → load → analyze → render pipeline.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	result := &Result{}

	// Stage 1: Restore
	restoreStart := time.Now()
	graphPath, cleanup, err := r.Restore(ctx, opts)
	if err != nil {
		return nil, err
	}
	defer cleanup()
	result.GraphPath = graphPath
	result.Stats.RestoreTime = time.Since(restoreStart)

	// Stages 2 and 3: Load and analyze
	analyzeStart := time.Now()
	res, hash, hit, err := r.DistillWithCacheInfo(ctx, graphPath, opts)
	if err != nil {
		return nil, err
	}
	result.Analysis = res
	result.GraphHash = hash
	result.CacheInfo.AnalyzeHit = hit
	result.Stats.AnalyzeTime = time.Since(analyzeStart)

	r.Logger.Info("distilled dependencies",
		"projects", res.Stats.Kept,
		"dependencies", res.Libraries().Len(),
		"cached", hit,
		"duration", result.Stats.AnalyzeTime)

	// Stage 4: Render
	renderStart := time.Now()
	artifacts, err := Render(ctx, res, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)

	if opts.Save {
		id, err := r.Save(ctx, res, opts)
		if err != nil {
			return nil, err
		}
		result.ID = id
	}
	return result, nil
}

// Restore returns the restore graph path for opts, running dotnet unless
// opts.GraphPath names an existing dgspec. Without opts.TempDir the graph is
// written to a fresh temporary directory that cleanup removes; cleanup is
// never nil.
func (r *Runner) Restore(ctx context.Context, opts Options) (path string, cleanup func(), err error) {
	cleanup = func() {}
	if opts.GraphPath != "" {
		return opts.GraphPath, cleanup, nil
	}
	if r.Restorer == nil {
		return "", cleanup, errors.New(errors.ErrCodeInvalidInput, "no restorer configured and no restore graph given")
	}

	dir := opts.TempDir
	if dir == "" {
		if dir, err = os.MkdirTemp("", "depdistill-"); err != nil {
			return "", cleanup, fmt.Errorf("create temp dir: %w", err)
		}
		tmp := dir
		cleanup = func() { os.RemoveAll(tmp) }
	}

	path, err = r.Restorer.GenerateGraph(ctx, opts.Target, dir)
	if err != nil {
		cleanup()
		return "", func() {}, errors.Wrap(errors.ErrCodeRestoreFailed, err, "restore %s", opts.Target)
	}
	return path, cleanup, nil
}

// DistillWithCacheInfo loads the restore graph at graphPath and analyzes it,
// consulting the cache unless opts.Refresh is set. It returns the result, the
// artifact hash and whether the result came from the cache.
func (r *Runner) DistillWithCacheInfo(ctx context.Context, graphPath string, opts Options) (*analyzer.Result, string, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, "", false, err
	}

	hash, err := ArtifactHash(graphPath, opts.PackagesDir)
	if err != nil {
		return nil, "", false, err
	}
	results := &cache.Results{Cache: r.Cache, Keyer: r.Keyer, TTL: r.TTL}

	if !opts.Refresh {
		res, hit, err := results.Get(ctx, hash, opts.ResultKeyOpts())
		if err != nil {
			opts.Logger.Warn("cache unavailable", "error", err)
		} else if hit {
			return res, hash, true, nil
		}
	}

	loader := nuget.NewLoader(nuget.Options{PackagesDir: opts.PackagesDir, Logger: opts.Logger})
	g, err := loader.Load(ctx, graphPath)
	if stderrors.Is(err, nuget.ErrNotRestored) {
		return nil, "", false, errors.Wrap(errors.ErrCodeRestoreFailed, err, "load %s: run dotnet restore first", graphPath)
	}
	if err != nil {
		return nil, "", false, errors.Wrap(errors.ErrCodeMalformedGraph, err, "load %s", graphPath)
	}

	res, err := analyzer.Analyze(ctx, g, opts.AnalyzerOptions())
	if err != nil {
		return nil, "", false, err
	}

	if err := results.Put(ctx, hash, opts.ResultKeyOpts(), res); err != nil {
		opts.Logger.Warn("cache write failed", "error", err)
	}
	return res, hash, false, nil
}

// Distill is a convenience wrapper that discards the hash and cache info.
func (r *Runner) Distill(ctx context.Context, graphPath string, opts Options) (*analyzer.Result, error) {
	res, _, _, err := r.DistillWithCacheInfo(ctx, graphPath, opts)
	return res, err
}

// Save stores res in the history store and returns its id.
func (r *Runner) Save(ctx context.Context, res *analyzer.Result, opts Options) (string, error) {
	if r.Store == nil {
		return "", errors.New(errors.ErrCodeInvalidInput, "no history store configured")
	}
	a := &store.Analysis{
		Search:    opts.Search,
		Libraries: opts.IncludeLibraries,
		Result:    res,
	}
	if err := r.Store.Save(ctx, a); err != nil {
		return "", fmt.Errorf("save analysis: %w", err)
	}
	return a.ID, nil
}

// ArtifactHash identifies everything a load of graphPath reads: the restore
// graph, every lock file and packages.config it references, and the package
// manifests in each packages folder. Manifests are hashed by size and
// modification time.
func ArtifactHash(graphPath, packagesDir string) (string, error) {
	loader := nuget.NewLoader(nuget.Options{PackagesDir: packagesDir})
	in, err := loader.Inputs(graphPath)
	if stderrors.Is(err, fs.ErrNotExist) {
		return "", errors.Wrap(errors.ErrCodeFileNotFound, err, "restore graph %s", graphPath)
	}
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeMalformedGraph, err, "read %s", graphPath)
	}

	files, err := cache.HashFiles(append([]string{graphPath}, in.Files...)...)
	if err != nil {
		return "", err
	}
	var manifests []string
	for _, dir := range in.PackageDirs {
		m, err := localrepo.Manifests(dir)
		if err != nil {
			return "", err
		}
		manifests = append(manifests, dir+string(filepath.Separator))
		manifests = append(manifests, m...)
	}
	stats, err := cache.HashFileStats(manifests...)
	if err != nil {
		return "", err
	}
	return cache.Hash([]byte(files + stats)), nil
}

// Close releases resources held by the runner.
func (r *Runner) Close(ctx context.Context) error {
	var err error
	if r.Cache != nil {
		err = r.Cache.Close()
	}
	if r.Store != nil {
		if serr := r.Store.Close(ctx); err == nil {
			err = serr
		}
	}
	return err
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

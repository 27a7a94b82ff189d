package nuget

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/depdistill/pkg/nuget/localrepo"
	"github.com/matzehuels/depdistill/pkg/rawgraph"
)

// ErrNotRestored is returned when a PackageReference project has no assets
// file, which means restore has not run for it.
var ErrNotRestored = errors.New("project has not been restored")

// Options configures a Loader.
type Options struct {
	RootPath    string      // Graph root path (default: first restore root)
	PackagesDir string      // packages.config folder (default: <root dir>/packages)
	Logger      *log.Logger // Progress output (default: discard)
}

// WithDefaults returns a copy of Options with zero values replaced by defaults.
func (o Options) WithDefaults() Options {
	opts := o
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	return opts
}

// Loader turns a restore graph into a raw graph.
type Loader struct {
	opts  Options
	repos map[string]rawgraph.Repository
}

// NewLoader creates a Loader.
func NewLoader(opts Options) *Loader {
	return &Loader{opts: opts.WithDefaults(), repos: make(map[string]rawgraph.Repository)}
}

// Load reads the dgspec at path and every artifact it references.
func (l *Loader) Load(ctx context.Context, path string) (*rawgraph.Graph, error) {
	rg, err := ImportRestoreGraph(path)
	if err != nil {
		return nil, err
	}

	root := l.root(rg, path)
	g := &rawgraph.Graph{RootPath: root}
	for _, rp := range rg.Projects {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p, err := l.project(root, rp)
		if err != nil {
			return nil, fmt.Errorf("project %s: %w", rp.Path, err)
		}
		g.Projects = append(g.Projects, p)
	}
	l.opts.Logger.Debug("loaded restore graph", "path", path, "projects", len(g.Projects))
	return g, nil
}

// Inputs lists what a Load of path reads besides the dgspec itself: the
// lock files and packages.config files as Files, and the packages folders
// as PackageDirs.
type Inputs struct {
	Files       []string
	PackageDirs []string
}

// Inputs resolves the artifacts referenced by the dgspec at path without
// reading them.
func (l *Loader) Inputs(path string) (*Inputs, error) {
	rg, err := ImportRestoreGraph(path)
	if err != nil {
		return nil, err
	}
	root := l.root(rg, path)

	in := &Inputs{}
	seen := make(map[string]bool)
	for _, rp := range rg.Projects {
		switch rp.Style {
		case rawgraph.StylePackageReference:
			in.Files = append(in.Files, rp.AssetsPath())
		case rawgraph.StylePackagesConfig:
			in.Files = append(in.Files, packagesConfigPath(rp))
			if dir := l.packagesDir(root, rp.Path); !seen[dir] {
				seen[dir] = true
				in.PackageDirs = append(in.PackageDirs, dir)
			}
		}
	}
	return in, nil
}

func (l *Loader) root(rg *RestoreGraph, path string) string {
	if l.opts.RootPath != "" {
		return l.opts.RootPath
	}
	if len(rg.Roots) > 0 {
		return rg.Roots[0]
	}
	return path
}

func packagesConfigPath(rp RestoreProject) string {
	if rp.PackagesConfigPath != "" {
		return rp.PackagesConfigPath
	}
	return filepath.Join(filepath.Dir(rp.Path), "packages.config")
}

func (l *Loader) project(root string, rp RestoreProject) (rawgraph.Project, error) {
	switch rp.Style {
	case rawgraph.StylePackageReference:
		lock, err := ImportAssets(rp.AssetsPath())
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s missing", ErrNotRestored, rp.AssetsPath())
		}
		if err != nil {
			return nil, err
		}
		return &rawgraph.PackageReferenceProject{
			Path:       rp.Path,
			Name:       rp.Name,
			Frameworks: rp.Frameworks,
			Lock:       lock,
		}, nil

	case rawgraph.StylePackagesConfig:
		configPath := packagesConfigPath(rp)
		fallback := ""
		if len(rp.Frameworks) > 0 {
			fallback = rp.Frameworks[0].Name
		}
		entries, err := ImportPackagesConfig(configPath, fallback)
		if err != nil {
			return nil, err
		}
		return &rawgraph.PackagesConfigProject{
			Path:       rp.Path,
			Name:       rp.Name,
			Packages:   entries,
			Repository: l.repository(root, rp.Path),
		}, nil
	}
	return &rawgraph.UnsupportedProject{Path: rp.Path, Name: rp.Name, Declared: rp.Style}, nil
}

// repository returns the packages folder index for a project, scanning each
// folder once. A missing folder yields an empty repository: every package
// then shows up without transitive dependencies.
func (l *Loader) repository(root, projectPath string) rawgraph.Repository {
	dir := l.packagesDir(root, projectPath)
	if repo, ok := l.repos[dir]; ok {
		return repo
	}

	var repo rawgraph.Repository
	local, err := localrepo.Open(dir, l.opts.Logger)
	if err != nil {
		l.opts.Logger.Warn("packages folder unavailable", "dir", dir, "error", err)
		repo = rawgraph.NewMemoryRepository()
	} else {
		repo = local
	}
	l.repos[dir] = repo
	return repo
}

func (l *Loader) packagesDir(root, projectPath string) string {
	if l.opts.PackagesDir != "" {
		return l.opts.PackagesDir
	}
	candidates := []string{
		filepath.Join(filepath.Dir(root), "packages"),
		filepath.Join(filepath.Dir(filepath.Dir(projectPath)), "packages"),
		filepath.Join(filepath.Dir(projectPath), "packages"),
	}
	for _, dir := range candidates {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir
		}
	}
	return candidates[0]
}

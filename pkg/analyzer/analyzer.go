package analyzer

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/depdistill/pkg/errors"
	"github.com/matzehuels/depdistill/pkg/observability"
	"github.com/matzehuels/depdistill/pkg/rawgraph"
)

// Analyzer distills raw graphs. The zero value is ready to use.
type Analyzer struct {
	// Hooks receives walk events. Nil means the globally registered
	// observability.Analyzer() hooks.
	Hooks observability.AnalyzerHooks
}

// Analyze distills g with the default Analyzer.
func Analyze(ctx context.Context, g *rawgraph.Graph, opts Options) (*Result, error) {
	return (&Analyzer{}).Analyze(ctx, g, opts)
}

// Analyze validates g, walks every supported project and assembles the
// result in raw graph order. It fails on a malformed graph or when a package
// repository cannot be read; everything else is absorbed into the tree.
func (a *Analyzer) Analyze(ctx context.Context, g *rawgraph.Graph, opts Options) (res *Result, err error) {
	opts = opts.WithDefaults()
	hooks := a.hooks()

	if err := g.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeMalformedGraph, err, "invalid raw graph")
	}

	start := time.Now()
	hooks.OnAnalyzeStart(ctx, g.RootPath, len(g.Projects))
	defer func() {
		kept := 0
		if res != nil {
			kept = res.Stats.Kept
		}
		hooks.OnAnalyzeComplete(ctx, g.RootPath, kept, time.Since(start), err)
	}()

	outcomes := make([]outcome, len(g.Projects))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(opts.Concurrency)
	for i, p := range g.Projects {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			out, err := a.dispatch(egCtx, p, opts, hooks)
			if err != nil {
				return err
			}
			outcomes[i] = out
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	res = &Result{RootPath: g.RootPath}
	res.Stats.Projects = len(g.Projects)
	var projects []Project
	for _, out := range outcomes {
		switch {
		case out.skipped:
			res.Stats.Skipped++
		case out.kept:
			projects = append(projects, out.project)
			res.AllDependencies.Merge(out.all)
		}
	}
	res.Projects = listOf(projects)
	res.Stats.Kept = len(projects)
	return res, nil
}

// outcome is the result of one project walk.
type outcome struct {
	project Project
	all     Set
	kept    bool
	skipped bool
}

// dispatch routes p to the walk for its restore style. Unsupported styles are
// skipped, never forced through AnalyzeProjectJSON.
func (a *Analyzer) dispatch(ctx context.Context, p rawgraph.Project, opts Options, hooks observability.AnalyzerHooks) (outcome, error) {
	w := walker{
		ctx:     ctx,
		hooks:   hooks,
		pred:    NewPredicate(opts.Search),
		project: p.ProjectName(),
	}

	var (
		frameworks []frameworkWalk
		err        error
	)
	switch p := p.(type) {
	case *rawgraph.PackageReferenceProject:
		frameworks = w.packageReference(p)
	case *rawgraph.PackagesConfigProject:
		frameworks, err = w.packagesConfig(p)
		if err != nil {
			return outcome{}, errors.Wrap(errors.ErrCodeRepository, err,
				"project %s: package repository lookup failed", p.Path)
		}
	default:
		opts.Logger.Debug("skipping project", "path", p.ProjectPath(), "style", p.Style())
		hooks.OnProjectSkipped(ctx, p.ProjectPath(), p.Style().String())
		return outcome{skipped: true}, nil
	}

	out := w.assemble(frameworks, opts.IncludeLibraries)
	opts.Logger.Debug("walked project", "project", p.ProjectName(), "kept", out.kept, "entries", out.all.Len())
	return out, nil
}

// AnalyzeProjectJSON is the strategy for legacy project.json projects. It is
// not implemented; the dispatcher skips such projects instead of calling it.
func AnalyzeProjectJSON(p *rawgraph.UnsupportedProject) (*Project, error) {
	return nil, errors.New(errors.ErrCodeNotImplemented,
		"project %s: project.json projects are not supported", p.Path)
}

func (a *Analyzer) hooks() observability.AnalyzerHooks {
	if a.Hooks != nil {
		return a.Hooks
	}
	return observability.Analyzer()
}

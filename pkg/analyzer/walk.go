package analyzer

import (
	"context"
	"slices"
	"strings"

	"github.com/matzehuels/depdistill/pkg/observability"
	"github.com/matzehuels/depdistill/pkg/rawgraph"
	"github.com/matzehuels/depdistill/pkg/semver"
)

// walker holds the read-only state of one project walk. All results flow
// through return values; nothing is shared between walks.
type walker struct {
	ctx     context.Context
	hooks   observability.AnalyzerHooks
	pred    Predicate
	project string
}

// frameworkWalk is a walked framework before the project-level decision.
type frameworkWalk struct {
	framework Framework
	libs      Set // Keys of the retained dependencies
	kept      bool
}

// chain is the list of library ids currently being expanded, outermost first.
type chain []string

func (c chain) has(name string) bool {
	return slices.Contains(c, strings.ToLower(name))
}

// push returns a new chain; the receiver is never modified.
func (c chain) push(name string) chain {
	next := make(chain, len(c), len(c)+1)
	copy(next, c)
	return append(next, strings.ToLower(name))
}

// assemble applies the project-level keep rule to the walked frameworks.
func (w *walker) assemble(walks []frameworkWalk, includeLibraries bool) outcome {
	var (
		frameworks []Framework
		libs       Set
		all        Set
	)
	for _, fw := range walks {
		if !fw.kept {
			continue
		}
		frameworks = append(frameworks, fw.framework)
		libs.Merge(fw.libs)
		all.Add(fw.framework.Name)
	}
	if !w.pred.keep(w.project, len(frameworks)) {
		return outcome{}
	}

	all.Merge(libs)
	all.Add(w.project)
	p := Project{
		Name:             w.project,
		TargetFrameworks: listOf(frameworks),
	}
	if includeLibraries {
		p.LibraryList = libs
	}
	return outcome{project: p, all: all, kept: true}
}

// finishFramework applies the framework-level keep rule.
func (w *walker) finishFramework(name string, deps []Dependency, libs Set) frameworkWalk {
	return frameworkWalk{
		framework: Framework{Name: name, Dependencies: listOf(deps)},
		libs:      libs,
		kept:      w.pred.keep(name, len(deps)),
	}
}

// =============================================================================
// PackageReference
// =============================================================================

// packageReference walks every declared framework through the lock file.
// Frameworks without a lock file target are dropped, as are direct
// dependencies the target does not resolve.
func (w *walker) packageReference(p *rawgraph.PackageReferenceProject) []frameworkWalk {
	walks := make([]frameworkWalk, 0, len(p.Frameworks))
	for _, tf := range p.Frameworks {
		target, ok := p.Lock.Target(tf.Name)
		if !ok {
			continue
		}
		var (
			deps []Dependency
			libs Set
		)
		for _, name := range tf.Dependencies {
			lib, ok := target.Library(name)
			if !ok {
				w.hooks.OnUnresolved(w.ctx, w.project, tf.Name, name)
				continue
			}
			dep, set, kept := w.expandLibrary(target, lib, nil)
			if kept {
				deps = append(deps, dep)
				libs.Merge(set)
			}
		}
		walks = append(walks, w.finishFramework(tf.Name, deps, libs))
	}
	return walks
}

// expandLibrary builds the subtree of lib. It returns the node, the keys of
// every retained node in the subtree and whether lib itself is kept.
func (w *walker) expandLibrary(target *rawgraph.Target, lib *rawgraph.Library, visiting chain) (Dependency, Set, bool) {
	visiting = visiting.push(lib.Name)

	var (
		children []Dependency
		libs     Set
	)
	for _, name := range lib.Dependencies {
		if visiting.has(name) {
			w.hooks.OnCycle(w.ctx, w.project, target.Framework, visiting, name)
			continue
		}
		child, ok := target.Library(name)
		if !ok {
			continue
		}
		dep, set, kept := w.expandLibrary(target, child, visiting)
		if kept {
			children = append(children, dep)
			libs.Merge(set)
		}
	}

	node := Dependency{Name: lib.Name, Version: lib.Version, Children: listOf(children)}
	if !w.pred.keep(node.Name, len(children)) {
		return node, Set{}, false
	}
	libs.Add(node.Key())
	return node, libs, true
}

// =============================================================================
// PackagesConfig
// =============================================================================

// packagesConfig groups the pinned packages by target framework, in order of
// first appearance, and expands each through the package repository.
func (w *walker) packagesConfig(p *rawgraph.PackagesConfigProject) ([]frameworkWalk, error) {
	var order []string
	groups := make(map[string][]rawgraph.PackageEntry)
	for _, e := range p.Packages {
		if _, ok := groups[e.TargetFramework]; !ok {
			order = append(order, e.TargetFramework)
		}
		groups[e.TargetFramework] = append(groups[e.TargetFramework], e)
	}

	walks := make([]frameworkWalk, 0, len(order))
	for _, fw := range order {
		var (
			deps []Dependency
			libs Set
		)
		for _, e := range groups[fw] {
			dep, set, kept, err := w.expandPackage(p.Repository, fw, e.ID, e.Version, nil)
			if err != nil {
				return nil, err
			}
			if kept {
				deps = append(deps, dep)
				libs.Merge(set)
			}
		}
		walks = append(walks, w.finishFramework(fw, deps, libs))
	}
	return walks, nil
}

// expandPackage builds the subtree of package id at version v. A package
// without a repository record becomes a leaf. Children are resolved at the
// minimum version of their declared range.
func (w *walker) expandPackage(repo rawgraph.Repository, framework, id string, v semver.Version, visiting chain) (Dependency, Set, bool, error) {
	rec, err := repo.Find(id, v)
	if err != nil {
		return Dependency{}, Set{}, false, err
	}
	if v.IsZero() && rec != nil {
		v = rec.Version
	}
	visiting = visiting.push(id)

	var (
		children []Dependency
		libs     Set
	)
	if rec != nil {
		if group := rec.Group(framework); group != nil {
			for _, d := range group.Dependencies {
				if visiting.has(d.ID) {
					w.hooks.OnCycle(w.ctx, w.project, framework, visiting, d.ID)
					continue
				}
				dep, set, kept, err := w.expandPackage(repo, framework, d.ID, d.Range.Min(), visiting)
				if err != nil {
					return Dependency{}, Set{}, false, err
				}
				if kept {
					children = append(children, dep)
					libs.Merge(set)
				}
			}
		}
	}

	node := Dependency{Name: id, Version: v, Children: listOf(children)}
	if !w.pred.keep(node.Name, len(children)) {
		return node, Set{}, false, nil
	}
	libs.Add(node.Key())
	return node, libs, true, nil
}

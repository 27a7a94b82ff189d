package analyzer

import (
	"context"
	"sync"
	"time"

	"github.com/matzehuels/depdistill/pkg/observability"
	"github.com/matzehuels/depdistill/pkg/rawgraph"
	"github.com/matzehuels/depdistill/pkg/semver"
)

func lib(name, version string, deps ...string) rawgraph.Library {
	return rawgraph.Library{
		Name:         name,
		Version:      semver.MustParse(version),
		Type:         "package",
		Dependencies: deps,
	}
}

func refProject(name, framework string, direct []string, libs ...rawgraph.Library) *rawgraph.PackageReferenceProject {
	return &rawgraph.PackageReferenceProject{
		Path:       "/src/" + name + "/" + name + ".csproj",
		Name:       name,
		Frameworks: []rawgraph.TargetFramework{{Name: framework, Dependencies: direct}},
		Lock: &rawgraph.LockFile{Targets: []rawgraph.Target{
			rawgraph.NewTarget(framework, libs),
		}},
	}
}

func graphOf(projects ...rawgraph.Project) *rawgraph.Graph {
	return &rawgraph.Graph{RootPath: "/src/App.sln", Projects: projects}
}

// newtonsoftGraph is one project "App" targeting net8.0 with a single direct
// dependency on Newtonsoft.Json 13.0.1.
func newtonsoftGraph() *rawgraph.Graph {
	return graphOf(refProject("App", "net8.0", []string{"Newtonsoft.Json"},
		lib("Newtonsoft.Json", "13.0.1")))
}

// chainGraph is App -> A(1.0.0) -> B(2.0.0) -> C(3.0.0).
func chainGraph() *rawgraph.Graph {
	return graphOf(refProject("App", "net8.0", []string{"A"},
		lib("A", "1.0.0", "B"),
		lib("B", "2.0.0", "C"),
		lib("C", "3.0.0")))
}

// wideGraph mixes styles and shared libraries.
func wideGraph() *rawgraph.Graph {
	web := &rawgraph.PackageReferenceProject{
		Path: "/src/Web/Web.csproj",
		Name: "Web",
		Frameworks: []rawgraph.TargetFramework{
			{Name: "net8.0", Dependencies: []string{"Serilog.AspNetCore", "Newtonsoft.Json"}},
			{Name: "net6.0", Dependencies: []string{"Newtonsoft.Json"}},
		},
		Lock: &rawgraph.LockFile{Targets: []rawgraph.Target{
			rawgraph.NewTarget("net8.0", []rawgraph.Library{
				lib("Serilog.AspNetCore", "8.0.0", "Serilog", "Serilog.Sinks.Console"),
				lib("Serilog", "3.1.1"),
				lib("Serilog.Sinks.Console", "5.0.0", "Serilog"),
				lib("Newtonsoft.Json", "13.0.3"),
			}),
			rawgraph.NewTarget("net6.0", []rawgraph.Library{
				lib("Newtonsoft.Json", "13.0.1"),
			}),
		}},
	}
	legacy := &rawgraph.PackagesConfigProject{
		Path: "/src/Legacy/Legacy.csproj",
		Name: "Legacy",
		Packages: []rawgraph.PackageEntry{
			{ID: "log4net", Version: semver.MustParse("2.0.15"), TargetFramework: "net472"},
			{ID: "EntityFramework", Version: semver.MustParse("6.4.4"), TargetFramework: "net472"},
		},
		Repository: rawgraph.NewMemoryRepository(
			&rawgraph.PackageRecord{ID: "log4net", Version: semver.MustParse("2.0.15")},
			&rawgraph.PackageRecord{
				ID:      "EntityFramework",
				Version: semver.MustParse("6.4.4"),
				Groups: []rawgraph.DependencyGroup{{
					Dependencies: []rawgraph.PackageDependency{
						{ID: "System.ComponentModel.Annotations", Range: mustRange("4.7.0")},
					},
				}},
			},
			&rawgraph.PackageRecord{ID: "System.ComponentModel.Annotations", Version: semver.MustParse("4.7.0")},
		),
	}
	tool := &rawgraph.UnsupportedProject{Path: "/src/Tool/project.json", Name: "Tool", Declared: rawgraph.StyleProjectJSON}
	return graphOf(web, legacy, tool, refProject("Tests", "net8.0", []string{"xunit"}, lib("xunit", "2.6.1")))
}

func mustRange(s string) semver.Range {
	r, err := semver.ParseRange(s)
	if err != nil {
		panic(err)
	}
	return r
}

// recordingHooks captures analyzer events.
type recordingHooks struct {
	observability.NoopAnalyzerHooks

	mu         sync.Mutex
	cycles     []string
	unresolved []string
	skipped    []string
	completed  int
}

func (h *recordingHooks) OnCycle(_ context.Context, _, _ string, chain []string, name string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cycles = append(h.cycles, chain[len(chain)-1]+"->"+name)
}

func (h *recordingHooks) OnUnresolved(_ context.Context, _, _ string, name string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.unresolved = append(h.unresolved, name)
}

func (h *recordingHooks) OnProjectSkipped(_ context.Context, path, _ string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.skipped = append(h.skipped, path)
}

func (h *recordingHooks) OnAnalyzeComplete(context.Context, string, int, time.Duration, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.completed++
}

// nodePaths lists every retained node as a slash-separated path from its
// project, e.g. "App/net8.0/A 1.0.0/B 2.0.0".
func nodePaths(res *Result) map[string]bool {
	paths := make(map[string]bool)
	var walk func(prefix string, deps []Dependency)
	walk = func(prefix string, deps []Dependency) {
		for _, d := range deps {
			p := prefix + "/" + d.Key()
			paths[p] = true
			walk(p, d.Children.Items())
		}
	}
	for _, p := range res.Projects.Items() {
		paths[p.Name] = true
		for _, fw := range p.TargetFrameworks.Items() {
			paths[p.Name+"/"+fw.Name] = true
			walk(p.Name+"/"+fw.Name, fw.Dependencies.Items())
		}
	}
	return paths
}

// treeKeys collects every name a retained node contributes to the dedup set.
func treeKeys(res *Result) Set {
	var keys Set
	var walk func(deps []Dependency)
	walk = func(deps []Dependency) {
		for _, d := range deps {
			keys.Add(d.Key())
			walk(d.Children.Items())
		}
	}
	for _, p := range res.Projects.Items() {
		keys.Add(p.Name)
		keys.Merge(p.LibraryList)
		for _, fw := range p.TargetFrameworks.Items() {
			keys.Add(fw.Name)
			walk(fw.Dependencies.Items())
		}
	}
	return keys
}

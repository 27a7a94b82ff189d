package analyzer

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/depdistill/pkg/errors"
	"github.com/matzehuels/depdistill/pkg/rawgraph"
	"github.com/matzehuels/depdistill/pkg/semver"
)

func TestAnalyzeNewtonsoftScenario(t *testing.T) {
	ctx := context.Background()

	t.Run("no predicate", func(t *testing.T) {
		res, err := Analyze(ctx, newtonsoftGraph(), Options{})
		if err != nil {
			t.Fatalf("Analyze: %v", err)
		}
		if res.Projects.Len() != 1 {
			t.Fatalf("projects = %d, want 1", res.Projects.Len())
		}
		p := res.Projects.Items()[0]
		if p.Name != "App" || p.TargetFrameworks.Len() != 1 {
			t.Fatalf("project = %+v", p)
		}
		fw := p.TargetFrameworks.Items()[0]
		if fw.Name != "net8.0" || fw.Dependencies.Len() != 1 {
			t.Fatalf("framework = %+v", fw)
		}
		dep := fw.Dependencies.Items()[0]
		if dep.Name != "Newtonsoft.Json" || dep.Version.String() != "13.0.1" {
			t.Errorf("dependency = %s", dep.Key())
		}
		if dep.Children.Present() {
			t.Errorf("leaf dependency has children list")
		}
		want := []string{"App", "Newtonsoft.Json 13.0.1", "net8.0"}
		if got := res.AllDependencies.Sorted(); !slices.Equal(got, want) {
			t.Errorf("AllDependencies = %v, want %v", got, want)
		}
	})

	t.Run("matching predicate", func(t *testing.T) {
		plain, _ := Analyze(ctx, newtonsoftGraph(), Options{})
		filtered, err := Analyze(ctx, newtonsoftGraph(), Options{Search: "json"})
		if err != nil {
			t.Fatalf("Analyze: %v", err)
		}
		if a, b := mustJSON(t, plain), mustJSON(t, filtered); a != b {
			t.Errorf("filtered result differs:\n%s\n%s", a, b)
		}
	})

	t.Run("non-matching predicate", func(t *testing.T) {
		res, err := Analyze(ctx, newtonsoftGraph(), Options{Search: "xunit"})
		if err != nil {
			t.Fatalf("Analyze: %v", err)
		}
		if res.Projects.Present() {
			t.Errorf("projects present: %+v", res.Projects.Items())
		}
		if res.AllDependencies.Len() != 0 {
			t.Errorf("AllDependencies = %v", res.AllDependencies.Sorted())
		}
		if got := mustJSON(t, res); got != `{"rootPath":"/src/App.sln"}` {
			t.Errorf("JSON = %s", got)
		}
	})
}

func TestAnalyzeKeepsAncestorsOfMatch(t *testing.T) {
	tests := []struct {
		search string
		want   []string
	}{
		{"C", []string{"App", "App/net8.0", "App/net8.0/A 1.0.0", "App/net8.0/A 1.0.0/B 2.0.0", "App/net8.0/A 1.0.0/B 2.0.0/C 3.0.0"}},
		{"b", []string{"App", "App/net8.0", "App/net8.0/A 1.0.0", "App/net8.0/A 1.0.0/B 2.0.0"}},
		{"app", []string{"App"}},
	}
	for _, tt := range tests {
		t.Run(tt.search, func(t *testing.T) {
			res, err := Analyze(context.Background(), chainGraph(), Options{Search: tt.search})
			if err != nil {
				t.Fatalf("Analyze: %v", err)
			}
			got := sortedKeys(nodePaths(res))
			if !slices.Equal(got, tt.want) {
				t.Errorf("kept = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAnalyzeBreaksCycles(t *testing.T) {
	hooks := &recordingHooks{}
	g := graphOf(refProject("App", "net8.0", []string{"A", "B"},
		lib("A", "1.0.0", "B"),
		lib("B", "1.0.0", "A")))

	res, err := (&Analyzer{Hooks: hooks}).Analyze(context.Background(), g, Options{})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	want := []string{
		"App", "App/net8.0",
		"App/net8.0/A 1.0.0", "App/net8.0/A 1.0.0/B 1.0.0",
		"App/net8.0/B 1.0.0", "App/net8.0/B 1.0.0/A 1.0.0",
	}
	if got := sortedKeys(nodePaths(res)); !slices.Equal(got, want) {
		t.Errorf("kept = %v, want %v", got, want)
	}
	if len(hooks.cycles) != 2 {
		t.Errorf("cycles reported = %v, want 2", hooks.cycles)
	}
}

func TestAnalyzeSelfReference(t *testing.T) {
	g := graphOf(refProject("App", "net8.0", []string{"A"}, lib("A", "1.0.0", "a")))
	res, err := Analyze(context.Background(), g, Options{})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	dep := res.Projects.Items()[0].TargetFrameworks.Items()[0].Dependencies.Items()[0]
	if dep.Children.Present() {
		t.Errorf("self reference produced children: %+v", dep.Children.Items())
	}
}

func TestAnalyzeAbsentDependencies(t *testing.T) {
	res, err := Analyze(context.Background(), chainGraph(), Options{Search: "net8"})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	fw := res.Projects.Items()[0].TargetFrameworks.Items()[0]
	if fw.Dependencies.Present() {
		t.Fatalf("dependencies present: %+v", fw.Dependencies.Items())
	}
	got := mustJSON(t, fw)
	if got != `{"name":"net8.0"}` {
		t.Errorf("framework JSON = %s", got)
	}
}

func TestAnalyzeUnresolvedReferences(t *testing.T) {
	hooks := &recordingHooks{}
	p := &rawgraph.PackageReferenceProject{
		Path: "/src/App/App.csproj",
		Name: "App",
		Frameworks: []rawgraph.TargetFramework{
			{Name: "net8.0", Dependencies: []string{"Missing", "A"}},
			{Name: "net48", Dependencies: []string{"A"}},
		},
		Lock: &rawgraph.LockFile{Targets: []rawgraph.Target{
			rawgraph.NewTarget("net8.0", []rawgraph.Library{lib("A", "1.0.0", "Gone")}),
		}},
	}

	res, err := (&Analyzer{Hooks: hooks}).Analyze(context.Background(), graphOf(p), Options{})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	want := []string{"App", "App/net8.0", "App/net8.0/A 1.0.0"}
	if got := sortedKeys(nodePaths(res)); !slices.Equal(got, want) {
		t.Errorf("kept = %v, want %v", got, want)
	}
	if !slices.Equal(hooks.unresolved, []string{"Missing"}) {
		t.Errorf("unresolved = %v", hooks.unresolved)
	}
}

func TestAnalyzeFilterMonotonicity(t *testing.T) {
	ctx := context.Background()
	for name, build := range map[string]func() *rawgraph.Graph{
		"chain": chainGraph,
		"wide":  wideGraph,
	} {
		base, err := Analyze(ctx, build(), Options{})
		if err != nil {
			t.Fatalf("%s: Analyze: %v", name, err)
		}
		all := nodePaths(base)
		for _, search := range []string{"serilog", "json", "net4", "annotations", "C", "zzz", "e"} {
			t.Run(name+"/"+search, func(t *testing.T) {
				res, err := Analyze(ctx, build(), Options{Search: search})
				if err != nil {
					t.Fatalf("Analyze: %v", err)
				}
				for p := range nodePaths(res) {
					if !all[p] {
						t.Errorf("%s kept under %q but not without a predicate", p, search)
					}
				}
			})
		}
	}
}

func TestAnalyzeDedupCompleteness(t *testing.T) {
	for _, opts := range []Options{
		{},
		{IncludeLibraries: true},
		{Search: "serilog"},
		{Search: "annotations", IncludeLibraries: true},
	} {
		t.Run(fmt.Sprintf("%+v", opts), func(t *testing.T) {
			res, err := Analyze(context.Background(), wideGraph(), opts)
			if err != nil {
				t.Fatalf("Analyze: %v", err)
			}
			want := treeKeys(res).Sorted()
			if got := res.AllDependencies.Sorted(); !slices.Equal(got, want) {
				t.Errorf("AllDependencies = %v\nwant %v", got, want)
			}
		})
	}
}

func TestAnalyzeIdempotent(t *testing.T) {
	for _, search := range []string{"", "serilog", "net"} {
		opts := Options{Search: search, IncludeLibraries: true, Concurrency: 3}
		first, err := Analyze(context.Background(), wideGraph(), opts)
		if err != nil {
			t.Fatalf("Analyze: %v", err)
		}
		second, _ := Analyze(context.Background(), wideGraph(), opts)
		if a, b := mustJSON(t, first), mustJSON(t, second); a != b {
			t.Errorf("search %q: runs differ\n%s\n%s", search, a, b)
		}
	}
}

func TestAnalyzeLibraryList(t *testing.T) {
	g := wideGraph()

	res, _ := Analyze(context.Background(), g, Options{})
	for _, p := range res.Projects.Items() {
		if p.LibraryList.Len() != 0 {
			t.Errorf("%s: library list without IncludeLibraries", p.Name)
		}
	}

	res, _ = Analyze(context.Background(), g, Options{IncludeLibraries: true})
	web := res.Projects.Items()[0]
	want := []string{
		"Newtonsoft.Json 13.0.1",
		"Newtonsoft.Json 13.0.3",
		"Serilog 3.1.1",
		"Serilog.AspNetCore 8.0.0",
		"Serilog.Sinks.Console 5.0.0",
	}
	if got := web.LibraryList.Sorted(); !slices.Equal(got, want) {
		t.Errorf("LibraryList = %v, want %v", got, want)
	}
}

func TestAnalyzeSkipsUnsupportedProjects(t *testing.T) {
	hooks := &recordingHooks{}
	res, err := (&Analyzer{Hooks: hooks}).Analyze(context.Background(), wideGraph(), Options{})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	var names []string
	for _, p := range res.Projects.Items() {
		names = append(names, p.Name)
	}
	if want := []string{"Web", "Legacy", "Tests"}; !slices.Equal(names, want) {
		t.Errorf("projects = %v, want %v", names, want)
	}
	if res.Stats != (Stats{Projects: 4, Kept: 3, Skipped: 1}) {
		t.Errorf("Stats = %+v", res.Stats)
	}
	if !slices.Equal(hooks.skipped, []string{"/src/Tool/project.json"}) {
		t.Errorf("skipped = %v", hooks.skipped)
	}
	if hooks.completed != 1 {
		t.Errorf("OnAnalyzeComplete called %d times", hooks.completed)
	}
}

func TestAnalyzeProjectOrderUnderParallelism(t *testing.T) {
	var projects []rawgraph.Project
	var want []string
	for i := range 40 {
		name := fmt.Sprintf("P%02d", i)
		want = append(want, name)
		projects = append(projects, refProject(name, "net8.0", []string{"A"}, lib("A", "1.0.0")))
	}

	res, err := Analyze(context.Background(), graphOf(projects...), Options{Concurrency: 4})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	var got []string
	for _, p := range res.Projects.Items() {
		got = append(got, p.Name)
	}
	if !slices.Equal(got, want) {
		t.Errorf("order = %v", got)
	}
}

func TestAnalyzePackagesConfig(t *testing.T) {
	repo := rawgraph.NewMemoryRepository(
		&rawgraph.PackageRecord{
			ID:      "A",
			Version: semver.MustParse("1.0.0"),
			Groups: []rawgraph.DependencyGroup{
				{Dependencies: []rawgraph.PackageDependency{{ID: "Generic", Range: mustRange("1.0.0")}}},
				{TargetFramework: "net472", Dependencies: []rawgraph.PackageDependency{{ID: "B", Range: mustRange("[2.0.0,3.0.0)")}}},
			},
		},
		&rawgraph.PackageRecord{
			ID:      "B",
			Version: semver.MustParse("2.0.0"),
			Groups: []rawgraph.DependencyGroup{
				{Dependencies: []rawgraph.PackageDependency{{ID: "NotInstalled", Range: mustRange("1.2.0")}}},
			},
		},
		&rawgraph.PackageRecord{ID: "Generic", Version: semver.MustParse("1.0.0")},
	)
	p := &rawgraph.PackagesConfigProject{
		Path: "/src/Old/Old.csproj",
		Name: "Old",
		Packages: []rawgraph.PackageEntry{
			{ID: "A", Version: semver.MustParse("1.0.0"), TargetFramework: "net472"},
			{ID: "A", Version: semver.MustParse("1.0.0"), TargetFramework: "net461"},
			{ID: "Unknown", Version: semver.MustParse("0.1.0"), TargetFramework: "net472"},
		},
		Repository: repo,
	}

	res, err := Analyze(context.Background(), graphOf(p), Options{})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	want := []string{
		"Old",
		"Old/net461",
		"Old/net461/A 1.0.0",
		"Old/net461/A 1.0.0/Generic 1.0.0",
		"Old/net472",
		"Old/net472/A 1.0.0",
		"Old/net472/A 1.0.0/B 2.0.0",
		"Old/net472/A 1.0.0/B 2.0.0/NotInstalled 1.2.0",
		"Old/net472/Unknown 0.1.0",
	}
	if got := sortedKeys(nodePaths(res)); !slices.Equal(got, want) {
		t.Errorf("kept = %v\nwant %v", got, want)
	}

	var frameworks []string
	for _, fw := range res.Projects.Items()[0].TargetFrameworks.Items() {
		frameworks = append(frameworks, fw.Name)
	}
	if !slices.Equal(frameworks, []string{"net472", "net461"}) {
		t.Errorf("framework order = %v", frameworks)
	}
}

func TestAnalyzePackagesConfigCycle(t *testing.T) {
	hooks := &recordingHooks{}
	repo := rawgraph.NewMemoryRepository(
		&rawgraph.PackageRecord{ID: "A", Version: semver.MustParse("1.0.0"), Groups: []rawgraph.DependencyGroup{
			{Dependencies: []rawgraph.PackageDependency{{ID: "B", Range: mustRange("1.0.0")}}},
		}},
		&rawgraph.PackageRecord{ID: "B", Version: semver.MustParse("1.0.0"), Groups: []rawgraph.DependencyGroup{
			{Dependencies: []rawgraph.PackageDependency{{ID: "A", Range: mustRange("1.0.0")}}},
		}},
	)
	p := &rawgraph.PackagesConfigProject{
		Path:       "/src/Old/Old.csproj",
		Name:       "Old",
		Packages:   []rawgraph.PackageEntry{{ID: "A", Version: semver.MustParse("1.0.0"), TargetFramework: "net472"}},
		Repository: repo,
	}
	res, err := (&Analyzer{Hooks: hooks}).Analyze(context.Background(), graphOf(p), Options{})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if n := len(nodePaths(res)); n != 4 {
		t.Errorf("kept %d nodes, want 4: %v", n, nodePaths(res))
	}
	if !slices.Equal(hooks.cycles, []string{"b->A"}) {
		t.Errorf("cycles = %v", hooks.cycles)
	}
}

var errDiskGone = stderrors.New("disk gone")

type failingRepository struct{}

func (failingRepository) Find(string, semver.Version) (*rawgraph.PackageRecord, error) {
	return nil, errDiskGone
}

func TestAnalyzeRepositoryErrorPropagates(t *testing.T) {
	p := &rawgraph.PackagesConfigProject{
		Path:       "/src/Old/Old.csproj",
		Name:       "Old",
		Packages:   []rawgraph.PackageEntry{{ID: "A", Version: semver.MustParse("1.0.0"), TargetFramework: "net472"}},
		Repository: failingRepository{},
	}
	_, err := Analyze(context.Background(), graphOf(newtonsoftGraph().Projects[0], p), Options{})
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, errors.ErrCodeRepository) {
		t.Errorf("code = %s, want %s", errors.GetCode(err), errors.ErrCodeRepository)
	}
	if !stderrors.Is(err, errDiskGone) {
		t.Errorf("cause lost: %v", err)
	}
	if !strings.Contains(err.Error(), "/src/Old/Old.csproj") {
		t.Errorf("error does not name the project: %v", err)
	}
}

func TestAnalyzeMalformedGraph(t *testing.T) {
	g := graphOf(&rawgraph.PackageReferenceProject{Path: "/src/App/App.csproj", Name: "App"})
	_, err := Analyze(context.Background(), g, Options{})
	if !errors.Is(err, errors.ErrCodeMalformedGraph) {
		t.Fatalf("err = %v, want MALFORMED_GRAPH", err)
	}
	if !stderrors.Is(err, rawgraph.ErrMalformedGraph) {
		t.Errorf("err does not wrap rawgraph.ErrMalformedGraph: %v", err)
	}
}

func TestAnalyzeCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Analyze(ctx, wideGraph(), Options{}); !stderrors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestAnalyzeProjectJSON(t *testing.T) {
	_, err := AnalyzeProjectJSON(&rawgraph.UnsupportedProject{Path: "/src/Tool/project.json", Declared: rawgraph.StyleProjectJSON})
	if !errors.Is(err, errors.ErrCodeNotImplemented) {
		t.Errorf("err = %v, want NOT_IMPLEMENTED", err)
	}
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(data)
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func TestResultLibraries(t *testing.T) {
	res, err := Analyze(context.Background(), newtonsoftGraph(), Options{})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if got := res.Libraries().Sorted(); !slices.Equal(got, []string{"Newtonsoft.Json 13.0.1"}) {
		t.Errorf("Libraries = %v", got)
	}
	if res.AllDependencies.Len() <= res.Libraries().Len() {
		t.Errorf("AllDependencies %v should also hold framework and project names", res.AllDependencies.Sorted())
	}
	if (&Result{}).Libraries().Len() != 0 {
		t.Error("empty result has libraries")
	}
}

package analyzer

import "github.com/matzehuels/depdistill/pkg/semver"

// Result is the distilled dependency tree of one analysis run.
type Result struct {
	RootPath        string        `json:"rootPath"`
	Projects        List[Project] `json:"projects,omitzero"`
	AllDependencies Set           `json:"allDependencies,omitzero"`

	// Stats describes the run. It is not part of the serialized document.
	Stats Stats `json:"-"`
}

// Stats counts what happened to the projects of a raw graph.
type Stats struct {
	Projects int // Projects in the raw graph
	Kept     int // Projects in the result
	Skipped  int // Projects with an unsupported restore style
}

// Project is a retained project.
type Project struct {
	Name             string          `json:"name"`
	TargetFrameworks List[Framework] `json:"targetFrameworks,omitzero"`
	LibraryList      Set             `json:"libraryList,omitzero"`
}

// Framework is a retained target framework of a project.
type Framework struct {
	Name         string           `json:"name"`
	Dependencies List[Dependency] `json:"dependencies,omitzero"`
}

// Dependency is a retained library. Every occurrence in the tree is its own
// copy; the same library under two parents appears twice.
type Dependency struct {
	Name     string           `json:"name"`
	Version  semver.Version   `json:"version,omitzero"`
	Children List[Dependency] `json:"children,omitzero"`
}

// Key returns the dedup key "name version", or just the name when the
// version is unknown.
func (d Dependency) Key() string {
	if d.Version.IsZero() {
		return d.Name
	}
	return d.Name + " " + d.Version.String()
}

// Libraries returns the distinct "name version" keys of every dependency in
// the tree. Unlike AllDependencies it holds no framework or project names.
func (r *Result) Libraries() Set {
	var libs Set
	for _, p := range r.Projects.Items() {
		for _, fw := range p.TargetFrameworks.Items() {
			addLibraries(&libs, fw.Dependencies)
		}
	}
	return libs
}

func addLibraries(libs *Set, deps List[Dependency]) {
	for _, d := range deps.Items() {
		libs.Add(d.Key())
		addLibraries(libs, d.Children)
	}
}

package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/depdistill/pkg/analyzer"
)

// WriteJSON encodes a result as indented JSON and writes it to w.
// The output can be re-imported with [ReadJSON].
func WriteJSON(r *analyzer.Result, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes a result to a JSON file at path.
func ExportJSON(r *analyzer.Result, path string) error {
	return exportFile(path, func(w io.Writer) error { return WriteJSON(r, w) })
}

// WriteTOML encodes a result as TOML and writes it to w.
func WriteTOML(r *analyzer.Result, w io.Writer) error {
	if err := toml.NewEncoder(w).Encode(tomlResult(r)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportTOML writes a result to a TOML file at path.
func ExportTOML(r *analyzer.Result, path string) error {
	return exportFile(path, func(w io.Writer) error { return WriteTOML(r, w) })
}

func exportFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// =============================================================================
// TOML document
// =============================================================================

type table = map[string]any

func tomlResult(r *analyzer.Result) table {
	doc := table{"rootPath": r.RootPath}
	if r.Projects.Present() {
		projects := make([]table, 0, r.Projects.Len())
		for _, p := range r.Projects.Items() {
			projects = append(projects, tomlProject(p))
		}
		doc["projects"] = projects
	}
	if r.AllDependencies.Len() > 0 {
		doc["allDependencies"] = r.AllDependencies.Sorted()
	}
	return doc
}

func tomlProject(p analyzer.Project) table {
	t := table{"name": p.Name}
	if p.TargetFrameworks.Present() {
		frameworks := make([]table, 0, p.TargetFrameworks.Len())
		for _, fw := range p.TargetFrameworks.Items() {
			frameworks = append(frameworks, tomlFramework(fw))
		}
		t["targetFrameworks"] = frameworks
	}
	if p.LibraryList.Len() > 0 {
		t["libraryList"] = p.LibraryList.Sorted()
	}
	return t
}

func tomlFramework(fw analyzer.Framework) table {
	t := table{"name": fw.Name}
	if fw.Dependencies.Present() {
		t["dependencies"] = tomlDependencies(fw.Dependencies)
	}
	return t
}

func tomlDependencies(deps analyzer.List[analyzer.Dependency]) []table {
	out := make([]table, 0, deps.Len())
	for _, d := range deps.Items() {
		t := table{"name": d.Name}
		if !d.Version.IsZero() {
			t["version"] = d.Version.String()
		}
		if d.Children.Present() {
			t["children"] = tomlDependencies(d.Children)
		}
		out = append(out, t)
	}
	return out
}

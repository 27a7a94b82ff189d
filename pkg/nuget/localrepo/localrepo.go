// Package localrepo indexes a packages.config style packages folder.
//
// The folder holds one directory per installed package version, named
// "<id>.<version>", containing the package manifest (<id>.nuspec) or the
// package archive (<id>.<version>.nupkg) or both. [Open] scans the folder
// once; lookups are served from memory.
package localrepo

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/depdistill/pkg/nuget/framework"
	"github.com/matzehuels/depdistill/pkg/rawgraph"
	"github.com/matzehuels/depdistill/pkg/semver"
)

// Repository is an in-memory index of a packages folder.
type Repository struct {
	dir     string
	records *rawgraph.MemoryRepository
}

// Open scans dir. Packages whose manifest cannot be read are skipped with a
// warning; only a missing or unreadable folder is an error.
func Open(dir string, logger *log.Logger) (*Repository, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read packages folder: %w", err)
	}

	repo := &Repository{dir: dir, records: rawgraph.NewMemoryRepository()}
	for _, e := range entries {
		path := filepath.Join(dir, e.Name())
		var (
			rec *rawgraph.PackageRecord
			err error
		)
		switch {
		case e.IsDir():
			rec, err = readPackageDir(path)
		case strings.EqualFold(filepath.Ext(e.Name()), ".nupkg"):
			rec, err = ReadNupkg(path)
		default:
			continue
		}
		if err != nil {
			logger.Warn("skipping package", "path", path, "error", err)
			continue
		}
		if rec != nil {
			repo.records.Add(rec)
		}
	}
	logger.Debug("indexed packages folder", "dir", dir, "packages", repo.records.Len())
	return repo, nil
}

// Manifests lists the files Open reads in dir: package archives at the top
// level and the .nuspec or .nupkg files inside package directories. A
// missing folder has no manifests.
func Manifests(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read packages folder: %w", err)
	}

	var paths []string
	for _, e := range entries {
		path := filepath.Join(dir, e.Name())
		if !e.IsDir() {
			if isManifest(e.Name()) {
				paths = append(paths, path)
			}
			continue
		}
		inner, err := os.ReadDir(path)
		if err != nil {
			continue
		}
		for _, f := range inner {
			if !f.IsDir() && isManifest(f.Name()) {
				paths = append(paths, filepath.Join(path, f.Name()))
			}
		}
	}
	return paths, nil
}

func isManifest(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".nuspec" || ext == ".nupkg"
}

// Dir returns the scanned folder.
func (r *Repository) Dir() string { return r.dir }

// Len returns the number of indexed package versions.
func (r *Repository) Len() int { return r.records.Len() }

// Find implements rawgraph.Repository.
func (r *Repository) Find(id string, v semver.Version) (*rawgraph.PackageRecord, error) {
	return r.records.Find(id, v)
}

var _ rawgraph.Repository = (*Repository)(nil)

// readPackageDir reads the manifest of an extracted package folder,
// preferring a loose .nuspec over the archive. Folders without either are
// not packages and yield (nil, nil).
func readPackageDir(dir string) (*rawgraph.PackageRecord, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var archive string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".nuspec":
			return ReadNuspecFile(filepath.Join(dir, e.Name()))
		case ".nupkg":
			archive = filepath.Join(dir, e.Name())
		}
	}
	if archive != "" {
		return ReadNupkg(archive)
	}
	return nil, nil
}

// ReadNupkg reads the manifest stored at the root of a .nupkg archive.
func ReadNupkg(path string) (*rawgraph.PackageRecord, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		if strings.Contains(f.Name, "/") || !strings.EqualFold(filepath.Ext(f.Name), ".nuspec") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.Name, err)
		}
		defer rc.Close()
		return ReadNuspec(rc)
	}
	return nil, fmt.Errorf("%s: no manifest in archive", path)
}

// ReadNuspecFile reads a .nuspec file at path.
func ReadNuspecFile(path string) (*rawgraph.PackageRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadNuspec(f)
}

type nuspec struct {
	Metadata struct {
		ID           string `xml:"id"`
		Version      string `xml:"version"`
		Dependencies struct {
			Groups []struct {
				TargetFramework string             `xml:"targetFramework,attr"`
				Dependencies    []nuspecDependency `xml:"dependency"`
			} `xml:"group"`
			Dependencies []nuspecDependency `xml:"dependency"`
		} `xml:"dependencies"`
	} `xml:"metadata"`
}

type nuspecDependency struct {
	ID      string `xml:"id,attr"`
	Version string `xml:"version,attr"`
}

// ReadNuspec decodes a package manifest. Ungrouped dependencies form the
// framework-agnostic group; group frameworks are normalized to short
// monikers.
func ReadNuspec(r io.Reader) (*rawgraph.PackageRecord, error) {
	var doc nuspec
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode nuspec: %w", err)
	}
	md := doc.Metadata
	if strings.TrimSpace(md.ID) == "" {
		return nil, fmt.Errorf("nuspec: missing id")
	}
	v, err := semver.Parse(md.Version)
	if err != nil {
		return nil, fmt.Errorf("nuspec %s: %w", md.ID, err)
	}

	rec := &rawgraph.PackageRecord{ID: md.ID, Version: v}
	if len(md.Dependencies.Dependencies) > 0 {
		deps, err := packageDependencies(md.Dependencies.Dependencies)
		if err != nil {
			return nil, fmt.Errorf("nuspec %s: %w", md.ID, err)
		}
		rec.Groups = append(rec.Groups, rawgraph.DependencyGroup{Dependencies: deps})
	}
	for _, g := range md.Dependencies.Groups {
		deps, err := packageDependencies(g.Dependencies)
		if err != nil {
			return nil, fmt.Errorf("nuspec %s: %w", md.ID, err)
		}
		fw := ""
		if g.TargetFramework != "" {
			fw = framework.Short(g.TargetFramework)
		}
		rec.Groups = append(rec.Groups, rawgraph.DependencyGroup{TargetFramework: fw, Dependencies: deps})
	}
	return rec, nil
}

func packageDependencies(in []nuspecDependency) ([]rawgraph.PackageDependency, error) {
	out := make([]rawgraph.PackageDependency, 0, len(in))
	for _, d := range in {
		dep := rawgraph.PackageDependency{ID: d.ID}
		if strings.TrimSpace(d.Version) != "" {
			r, err := semver.ParseRange(d.Version)
			if err != nil {
				return nil, fmt.Errorf("dependency %s: %w", d.ID, err)
			}
			dep.Range = r
		}
		out = append(out, dep)
	}
	return out, nil
}

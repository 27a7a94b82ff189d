package rawgraph

import (
	"errors"
	"fmt"
	"strings"

	"github.com/matzehuels/depdistill/pkg/semver"
)

// ErrMalformedGraph is returned by [Graph.Validate] when a project misses data
// its loader was required to supply.
var ErrMalformedGraph = errors.New("malformed raw graph")

var errNilProject = fmt.Errorf("%w: nil project", ErrMalformedGraph)

// Graph is the complete raw input of one analysis run.
type Graph struct {
	RootPath string    // Solution or project file the graph was produced for
	Projects []Project // Projects in restore graph order
}

// Validate checks the preconditions the analyzer relies on. It does not
// inspect library tables deeply; unresolvable references are not errors.
func (g *Graph) Validate() error {
	if g == nil {
		return fmt.Errorf("%w: nil graph", ErrMalformedGraph)
	}
	for i, p := range g.Projects {
		if p == nil {
			return fmt.Errorf("project %d: %w", i, errNilProject)
		}
		err := p.validate()
		if errors.Is(err, errNilProject) {
			return fmt.Errorf("project %d: %w", i, err)
		}
		if err != nil {
			return fmt.Errorf("project %s: %w", p.ProjectPath(), err)
		}
	}
	return nil
}

// Project is one of [*PackageReferenceProject], [*PackagesConfigProject] or
// [*UnsupportedProject].
type Project interface {
	// ProjectPath returns the project file path.
	ProjectPath() string
	// ProjectName returns the display name of the project.
	ProjectName() string
	// Style returns the declared restore style.
	Style() Style

	validate() error
}

// TargetFramework is a framework a project builds against, with the names of
// the packages it references directly for that framework.
type TargetFramework struct {
	Name         string   // Framework moniker, e.g. "net8.0"
	Dependencies []string // Direct dependency names in declaration order
}

// PackageReferenceProject is a project restored through a lock file.
type PackageReferenceProject struct {
	Path       string
	Name       string
	Frameworks []TargetFramework
	Lock       *LockFile
}

func (p *PackageReferenceProject) ProjectPath() string { return p.Path }
func (p *PackageReferenceProject) ProjectName() string { return p.Name }
func (p *PackageReferenceProject) Style() Style        { return StylePackageReference }

func (p *PackageReferenceProject) validate() error {
	if p == nil {
		return errNilProject
	}
	if err := validateIdentity(p.Path, p.Name); err != nil {
		return err
	}
	if p.Lock == nil {
		return fmt.Errorf("%w: missing lock file", ErrMalformedGraph)
	}
	return nil
}

// PackagesConfigProject is a project that pins packages in packages.config.
type PackagesConfigProject struct {
	Path       string
	Name       string
	Packages   []PackageEntry
	Repository Repository
}

func (p *PackagesConfigProject) ProjectPath() string { return p.Path }
func (p *PackagesConfigProject) ProjectName() string { return p.Name }
func (p *PackagesConfigProject) Style() Style        { return StylePackagesConfig }

func (p *PackagesConfigProject) validate() error {
	if p == nil {
		return errNilProject
	}
	if err := validateIdentity(p.Path, p.Name); err != nil {
		return err
	}
	if p.Repository == nil {
		return fmt.Errorf("%w: missing package repository", ErrMalformedGraph)
	}
	return nil
}

// UnsupportedProject is a project whose style cannot be analysed.
type UnsupportedProject struct {
	Path     string
	Name     string
	Declared Style
}

func (p *UnsupportedProject) ProjectPath() string { return p.Path }
func (p *UnsupportedProject) ProjectName() string { return p.Name }
func (p *UnsupportedProject) Style() Style        { return p.Declared }

func (p *UnsupportedProject) validate() error {
	if p == nil {
		return errNilProject
	}
	return nil
}

func validateIdentity(path, name string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("%w: empty project path", ErrMalformedGraph)
	}
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: empty project name", ErrMalformedGraph)
	}
	return nil
}

// PackageEntry is one line of a packages.config file.
type PackageEntry struct {
	ID              string
	Version         semver.Version
	TargetFramework string
}

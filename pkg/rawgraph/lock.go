package rawgraph

import (
	"strings"

	"github.com/matzehuels/depdistill/pkg/semver"
)

// LockFile holds the resolved libraries of a PackageReference project,
// one table per target framework.
type LockFile struct {
	Targets []Target
}

// Target returns the resolved table for the framework moniker. Monikers are
// compared for equality; a RID-specific target ("net8.0/win-x64") does not
// match its framework.
func (l *LockFile) Target(moniker string) (*Target, bool) {
	if l == nil {
		return nil, false
	}
	for i := range l.Targets {
		if l.Targets[i].Framework == moniker {
			return &l.Targets[i], true
		}
	}
	return nil, false
}

// Target is the resolved library table of one framework.
type Target struct {
	Framework string
	Libraries []Library

	index map[string]int
}

// NewTarget builds a target and indexes its libraries by name.
func NewTarget(framework string, libs []Library) Target {
	t := Target{Framework: framework, Libraries: libs}
	t.reindex()
	return t
}

// Library returns the library resolved for name. Package ids are
// case-insensitive.
func (t *Target) Library(name string) (*Library, bool) {
	if t.index == nil || len(t.index) != len(t.Libraries) {
		t.reindex()
	}
	i, ok := t.index[strings.ToLower(name)]
	if !ok {
		return nil, false
	}
	return &t.Libraries[i], true
}

func (t *Target) reindex() {
	t.index = make(map[string]int, len(t.Libraries))
	for i, lib := range t.Libraries {
		key := strings.ToLower(lib.Name)
		if _, dup := t.index[key]; !dup {
			t.index[key] = i
		}
	}
}

// Library is a resolved package or project reference in a lock file.
type Library struct {
	Name         string
	Version      semver.Version
	Type         string   // "package" or "project"
	Dependencies []string // Dependency names in lock file order
}

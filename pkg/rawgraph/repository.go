package rawgraph

import (
	"strings"

	"github.com/matzehuels/depdistill/pkg/semver"
)

// Repository finds package records in a local package store.
//
// Find returns (nil, nil) when no record exists; a non-nil error signals a
// failure of the store itself. A zero version asks for the lowest available
// version of id.
type Repository interface {
	Find(id string, v semver.Version) (*PackageRecord, error)
}

// PackageRecord is the manifest of one package version.
type PackageRecord struct {
	ID      string
	Version semver.Version
	Groups  []DependencyGroup
}

// Group returns the dependency group for framework: an exact
// (case-insensitive) match first, then the framework-agnostic group, else nil.
func (r *PackageRecord) Group(framework string) *DependencyGroup {
	var fallback *DependencyGroup
	for i := range r.Groups {
		g := &r.Groups[i]
		if g.TargetFramework == "" {
			if fallback == nil {
				fallback = g
			}
			continue
		}
		if strings.EqualFold(g.TargetFramework, framework) {
			return g
		}
	}
	return fallback
}

// DependencyGroup lists the dependencies a package declares for one framework.
type DependencyGroup struct {
	TargetFramework string // Empty for the framework-agnostic group
	Dependencies    []PackageDependency
}

// PackageDependency is a dependency declared in a package manifest.
type PackageDependency struct {
	ID    string
	Range semver.Range
}

// MemoryRepository is an in-memory Repository keyed by id and version.
type MemoryRepository struct {
	records map[string][]*PackageRecord
}

// NewMemoryRepository creates a repository holding records.
func NewMemoryRepository(records ...*PackageRecord) *MemoryRepository {
	r := &MemoryRepository{records: make(map[string][]*PackageRecord)}
	for _, rec := range records {
		r.Add(rec)
	}
	return r
}

// Add stores rec, replacing any record with the same id and version.
func (r *MemoryRepository) Add(rec *PackageRecord) {
	key := strings.ToLower(rec.ID)
	list := r.records[key]
	for i, existing := range list {
		if existing.Version.Equal(rec.Version) {
			list[i] = rec
			return
		}
	}
	r.records[key] = append(list, rec)
}

// Len returns the number of stored records.
func (r *MemoryRepository) Len() int {
	n := 0
	for _, list := range r.records {
		n += len(list)
	}
	return n
}

// Find implements Repository. An exact version match wins; a zero version
// returns the lowest stored version.
func (r *MemoryRepository) Find(id string, v semver.Version) (*PackageRecord, error) {
	list := r.records[strings.ToLower(id)]
	if v.IsZero() {
		var lowest *PackageRecord
		for _, rec := range list {
			if lowest == nil || rec.Version.Compare(lowest.Version) < 0 {
				lowest = rec
			}
		}
		return lowest, nil
	}
	for _, rec := range list {
		if rec.Version.Equal(v) {
			return rec, nil
		}
	}
	return nil, nil
}

var _ Repository = (*MemoryRepository)(nil)

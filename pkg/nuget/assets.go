package nuget

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/matzehuels/depdistill/pkg/nuget/framework"
	"github.com/matzehuels/depdistill/pkg/rawgraph"
	"github.com/matzehuels/depdistill/pkg/semver"
)

type assetsFile struct {
	Version int    `json:"version"`
	Targets object `json:"targets"`
}

type assetsLibrary struct {
	Type         string `json:"type"`
	Dependencies object `json:"dependencies"`
}

// ReadAssets decodes a project.assets.json document into a lock file. Target
// names are normalized to short framework monikers; library dependency lists
// keep their document order.
func ReadAssets(r io.Reader) (*rawgraph.LockFile, error) {
	var doc assetsFile
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode assets: %w", err)
	}

	lock := &rawgraph.LockFile{}
	for _, t := range doc.Targets {
		var entries object
		if err := json.Unmarshal(t.Value, &entries); err != nil {
			return nil, fmt.Errorf("target %s: %w", t.Key, err)
		}
		libs := make([]rawgraph.Library, 0, len(entries))
		for _, e := range entries {
			lib, err := assetsLibraryEntry(e)
			if err != nil {
				return nil, fmt.Errorf("target %s: %w", t.Key, err)
			}
			libs = append(libs, lib)
		}
		lock.Targets = append(lock.Targets, rawgraph.NewTarget(framework.Short(t.Key), libs))
	}
	return lock, nil
}

// ImportAssets reads a project.assets.json file at path.
func ImportAssets(path string) (*rawgraph.LockFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadAssets(f)
}

// assetsLibraryEntry parses a "Name/Version" target entry.
func assetsLibraryEntry(m member) (rawgraph.Library, error) {
	name, ver, ok := strings.Cut(m.Key, "/")
	if !ok || name == "" {
		return rawgraph.Library{}, fmt.Errorf("library key %q: want name/version", m.Key)
	}
	v, err := semver.Parse(ver)
	if err != nil {
		return rawgraph.Library{}, fmt.Errorf("library %s: %w", name, err)
	}
	var raw assetsLibrary
	if err := json.Unmarshal(m.Value, &raw); err != nil {
		return rawgraph.Library{}, fmt.Errorf("library %s: %w", name, err)
	}
	return rawgraph.Library{
		Name:         name,
		Version:      v,
		Type:         raw.Type,
		Dependencies: raw.Dependencies.keys(),
	}, nil
}

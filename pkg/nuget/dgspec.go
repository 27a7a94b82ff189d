package nuget

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/depdistill/pkg/nuget/framework"
	"github.com/matzehuels/depdistill/pkg/rawgraph"
)

// RestoreGraph is the part of a dgspec file the loader needs.
type RestoreGraph struct {
	// Roots are the projects restore was requested for.
	Roots []string
	// Projects in document order.
	Projects []RestoreProject
}

// RestoreProject is one project entry of a restore graph.
type RestoreProject struct {
	Path               string
	Name               string
	Style              rawgraph.Style
	OutputPath         string // obj/ folder holding project.assets.json
	PackagesPath       string // Global packages folder
	PackagesConfigPath string
	Frameworks         []rawgraph.TargetFramework
}

// AssetsPath returns the expected location of project.assets.json.
func (p RestoreProject) AssetsPath() string {
	return filepath.Join(p.OutputPath, "project.assets.json")
}

type dgspecFile struct {
	Restore  object `json:"restore"`
	Projects object `json:"projects"`
}

type dgspecProject struct {
	Restore struct {
		ProjectName        string `json:"projectName"`
		ProjectPath        string `json:"projectPath"`
		ProjectStyle       string `json:"projectStyle"`
		OutputPath         string `json:"outputPath"`
		PackagesPath       string `json:"packagesPath"`
		PackagesConfigPath string `json:"packagesConfigPath"`
	} `json:"restore"`
	Frameworks object `json:"frameworks"`
}

type dgspecFramework struct {
	Dependencies object `json:"dependencies"`
}

type dgspecDependency struct {
	Target string `json:"target"`
}

// ReadRestoreGraph decodes a dgspec document from r.
func ReadRestoreGraph(r io.Reader) (*RestoreGraph, error) {
	var doc dgspecFile
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode restore graph: %w", err)
	}

	g := &RestoreGraph{Roots: doc.Restore.keys()}
	for _, m := range doc.Projects {
		var raw dgspecProject
		if err := json.Unmarshal(m.Value, &raw); err != nil {
			return nil, fmt.Errorf("project %s: %w", m.Key, err)
		}
		p, err := restoreProject(m.Key, raw)
		if err != nil {
			return nil, fmt.Errorf("project %s: %w", m.Key, err)
		}
		g.Projects = append(g.Projects, p)
	}
	return g, nil
}

// ImportRestoreGraph reads a dgspec file at path.
func ImportRestoreGraph(path string) (*RestoreGraph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadRestoreGraph(f)
}

func restoreProject(key string, raw dgspecProject) (RestoreProject, error) {
	p := RestoreProject{
		Path:               raw.Restore.ProjectPath,
		Name:               raw.Restore.ProjectName,
		Style:              rawgraph.ParseStyle(raw.Restore.ProjectStyle),
		OutputPath:         raw.Restore.OutputPath,
		PackagesPath:       raw.Restore.PackagesPath,
		PackagesConfigPath: raw.Restore.PackagesConfigPath,
	}
	if p.Path == "" {
		p.Path = key
	}
	if p.Name == "" {
		p.Name = projectName(p.Path)
	}

	for _, m := range raw.Frameworks {
		var fw dgspecFramework
		if err := json.Unmarshal(m.Value, &fw); err != nil {
			return p, fmt.Errorf("framework %s: %w", m.Key, err)
		}
		tf := rawgraph.TargetFramework{Name: framework.Short(m.Key)}
		for _, d := range fw.Dependencies {
			var dep dgspecDependency
			if err := json.Unmarshal(d.Value, &dep); err != nil {
				return p, fmt.Errorf("framework %s, dependency %s: %w", m.Key, d.Key, err)
			}
			if dep.Target != "" && !strings.EqualFold(dep.Target, "Package") {
				continue
			}
			tf.Dependencies = append(tf.Dependencies, d.Key)
		}
		p.Frameworks = append(p.Frameworks, tf)
	}
	return p, nil
}

func projectName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

package nuget

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/matzehuels/depdistill/pkg/nuget/framework"
	"github.com/matzehuels/depdistill/pkg/rawgraph"
	"github.com/matzehuels/depdistill/pkg/semver"
)

type packagesConfig struct {
	Packages []struct {
		ID              string `xml:"id,attr"`
		Version         string `xml:"version,attr"`
		TargetFramework string `xml:"targetFramework,attr"`
	} `xml:"package"`
}

// ReadPackagesConfig decodes a packages.config document. Entries without a
// target framework are grouped under fallbackFramework.
func ReadPackagesConfig(r io.Reader, fallbackFramework string) ([]rawgraph.PackageEntry, error) {
	var doc packagesConfig
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode packages.config: %w", err)
	}

	entries := make([]rawgraph.PackageEntry, 0, len(doc.Packages))
	for _, p := range doc.Packages {
		if strings.TrimSpace(p.ID) == "" {
			return nil, fmt.Errorf("packages.config: package without id")
		}
		v, err := semver.Parse(p.Version)
		if err != nil {
			return nil, fmt.Errorf("package %s: %w", p.ID, err)
		}
		fw := p.TargetFramework
		if fw == "" {
			fw = fallbackFramework
		}
		entries = append(entries, rawgraph.PackageEntry{
			ID:              p.ID,
			Version:         v,
			TargetFramework: framework.Short(fw),
		})
	}
	return entries, nil
}

// ImportPackagesConfig reads a packages.config file at path.
func ImportPackagesConfig(path, fallbackFramework string) ([]rawgraph.PackageEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadPackagesConfig(f, fallbackFramework)
}

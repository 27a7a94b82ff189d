package rawgraph

import "strings"

// Style is the restore style a project declares.
type Style int

const (
	// StyleUnknown is any style this package does not recognise.
	StyleUnknown Style = iota
	// StylePackageReference projects restore through a lock file (project.assets.json).
	StylePackageReference
	// StylePackagesConfig projects pin packages in packages.config and restore
	// into a local packages folder.
	StylePackagesConfig
	// StyleProjectJSON is the legacy project.json format. It is recognised but
	// not analysed.
	StyleProjectJSON
)

var styleNames = map[Style]string{
	StyleUnknown:          "Unknown",
	StylePackageReference: "PackageReference",
	StylePackagesConfig:   "PackagesConfig",
	StyleProjectJSON:      "ProjectJson",
}

// String returns the style as the restore graph spells it.
func (s Style) String() string {
	if name, ok := styleNames[s]; ok {
		return name
	}
	return styleNames[StyleUnknown]
}

// ParseStyle maps a restore graph projectStyle value to a Style.
// Matching is case-insensitive; unrecognised values yield StyleUnknown.
func ParseStyle(s string) Style {
	for style, name := range styleNames {
		if strings.EqualFold(name, strings.TrimSpace(s)) {
			return style
		}
	}
	return StyleUnknown
}

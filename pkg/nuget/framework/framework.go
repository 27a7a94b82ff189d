// Package framework normalizes NuGet target framework names.
//
// Restore artifacts spell the same framework several ways: project files and
// dgspec graphs use short monikers ("net8.0", "net472"), older assets files
// and nuspec dependency groups use long names (".NETCoreApp,Version=v8.0",
// ".NETFramework4.7.2"). [Short] maps all of them to the short moniker so
// frameworks can be matched by equality.
package framework

import "strings"

// Short returns the short moniker of name. Names that are already short, or
// that it does not recognise, are returned lower-cased. A runtime identifier
// suffix ("/win-x64") is preserved.
func Short(name string) string {
	name = strings.TrimSpace(name)
	rid := ""
	if i := strings.IndexByte(name, '/'); i >= 0 {
		name, rid = name[:i], name[i:]
	}

	ident, version, ok := split(name)
	if !ok {
		return strings.ToLower(name) + rid
	}

	switch ident {
	case "netframework":
		return "net" + strings.ReplaceAll(version, ".", "") + rid
	case "netstandard":
		return "netstandard" + version + rid
	case "netcoreapp":
		if major(version) >= 5 {
			return "net" + version + rid
		}
		return "netcoreapp" + version + rid
	}
	return strings.ToLower(name) + rid
}

// split parses ".NETFramework,Version=v4.7.2" and ".NETFramework4.7.2" into
// ("netframework", "4.7.2"). Version segments are trimmed to major.minor
// for .NET Core and .NET Standard, and trailing zero segments are dropped.
func split(name string) (ident, version string, ok bool) {
	lower := strings.ToLower(name)
	if !strings.HasPrefix(lower, ".") {
		return "", "", false
	}
	lower = strings.TrimPrefix(lower, ".")

	if i := strings.Index(lower, ",profile="); i >= 0 {
		lower = lower[:i]
	}
	if i := strings.Index(lower, ",version=v"); i >= 0 {
		ident, version = lower[:i], lower[i+len(",version=v"):]
	} else {
		i := strings.IndexFunc(lower, func(r rune) bool { return r >= '0' && r <= '9' })
		if i <= 0 {
			return "", "", false
		}
		ident, version = lower[:i], lower[i:]
	}
	if version == "" {
		return "", "", false
	}

	parts := strings.Split(version, ".")
	for len(parts) > 2 && parts[len(parts)-1] == "0" {
		parts = parts[:len(parts)-1]
	}
	if ident != "netframework" {
		if len(parts) == 1 {
			parts = append(parts, "0")
		}
		parts = parts[:2]
	}
	return ident, strings.Join(parts, "."), true
}

func major(version string) int {
	n := 0
	for _, r := range version {
		if r < '0' || r > '9' {
			break
		}
		n = n*10 + int(r-'0')
	}
	return n
}

// Package semver parses NuGet package versions and version ranges.
//
// NuGet versions are semantic versions with an optional fourth numeric
// segment (1.2.3.4) and an optional prerelease label. Parsing is delegated to
// github.com/hashicorp/go-version, which accepts an arbitrary number of
// segments; [Version] keeps the original spelling for display so a rendered
// tree shows exactly what the lock file recorded.
//
// Version ranges use NuGet interval notation:
//
//	1.0          1.0 <= x
//	[1.0]        x == 1.0
//	(1.0,)       1.0 <  x
//	[1.0,2.0)    1.0 <= x < 2.0
//	(,2.0]       x <= 2.0
//
// [Range.Min] returns the lower bound, which is the version the packages.config
// walker resolves a transitive dependency to.
package semver

// Package rawgraph defines the raw dependency graph handed to the analyzer.
//
// A raw graph is the already-resolved output of a .NET restore: a list of
// projects, each declaring a restore style. The style decides what data the
// project carries, so projects are modelled as a closed set of variants:
//
//   - [PackageReferenceProject]: target frameworks with their direct
//     dependency names plus the restore lock file ([LockFile]) that maps every
//     framework to a table of resolved libraries.
//   - [PackagesConfigProject]: a flat list of pinned packages ([PackageEntry])
//     and a [Repository] that finds package records in the local packages
//     folder.
//   - [UnsupportedProject]: any other style (legacy project.json, unknown).
//
// Consumers dispatch with a type switch:
//
//	switch p := project.(type) {
//	case *rawgraph.PackageReferenceProject:
//	    ...
//	case *rawgraph.PackagesConfigProject:
//	    ...
//	case *rawgraph.UnsupportedProject:
//	    ...
//	}
//
// Nothing in this package performs I/O. Loaders in [nuget] build graphs from
// restore artifacts; tests build them by hand.
//
// [nuget]: github.com/matzehuels/depdistill/pkg/nuget
package rawgraph

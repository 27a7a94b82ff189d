// Package nuget reads .NET restore artifacts into a [rawgraph.Graph].
//
// # Inputs
//
// The loader starts from a restore graph (dgspec) written by
//
//	dotnet msbuild App.sln -t:GenerateRestoreGraphFile -p:RestoreGraphOutputPath=App.dgspec.json
//
// and follows each project's restore metadata:
//
//   - PackageReference projects: frameworks and direct dependencies come
//     from the dgspec; resolved libraries come from obj/project.assets.json
//     ([ReadAssets]).
//   - PackagesConfig projects: pinned packages come from packages.config
//     ([ReadPackagesConfig]); package manifests come from the local packages
//     folder ([localrepo]).
//   - Every other style becomes a [rawgraph.UnsupportedProject].
//
// Object member order is significant in these files (it is the declaration
// order of dependencies), so JSON objects are decoded with an order-preserving
// helper rather than into maps.
//
// [localrepo]: github.com/matzehuels/depdistill/pkg/nuget/localrepo
package nuget

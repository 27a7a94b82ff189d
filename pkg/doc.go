// Package pkg provides the core libraries for depdistill.
//
// # Overview
//
// depdistill reads the restore graph of a .NET solution and reduces it to the
// dependency tree a developer actually wants to look at: one entry per project
// and target framework, direct dependencies with their transitive children,
// optionally filtered to the paths leading to a search term. The pkg directory
// is organized into three areas:
//
//  1. Domain: [rawgraph] (input model), [semver], [analyzer] (the engine)
//  2. Collaborators: [nuget] (dgspec, assets and packages.config readers),
//     [render] and [io] (outputs)
//  3. Infrastructure: [cache], [store], [config], [errors], [observability],
//     [pipeline] (orchestration)
//
// # Architecture
//
// The typical data flow:
//
//	dotnet msbuild / dotnet restore
//	         ↓
//	    [nuget] package (restore graph → raw graph)
//	         ↓
//	    [analyzer] package (walk, filter, deduplicate)
//	         ↓
//	    [render] and [io] packages (tree, JSON, TOML, DOT, SVG)
//
// [pipeline.Runner] ties the stages together and caches analyzer results
// keyed by the hash of every restore artifact.
//
// # Quick Start
//
//	import (
//	    "context"
//	    "os"
//
//	    "github.com/matzehuels/depdistill/pkg/analyzer"
//	    "github.com/matzehuels/depdistill/pkg/nuget"
//	    "github.com/matzehuels/depdistill/pkg/render/tree"
//	)
//
//	g, err := nuget.NewLoader(nuget.Options{}).Load(ctx, "obj/App.dgspec.json")
//	res, err := analyzer.Analyze(ctx, g, analyzer.Options{Search: "Serilog"})
//	tree.Write(os.Stdout, res, tree.Options{})
//
// [rawgraph]: github.com/matzehuels/depdistill/pkg/rawgraph
// [semver]: github.com/matzehuels/depdistill/pkg/semver
// [analyzer]: github.com/matzehuels/depdistill/pkg/analyzer
// [nuget]: github.com/matzehuels/depdistill/pkg/nuget
// [render]: github.com/matzehuels/depdistill/pkg/render
// [io]: github.com/matzehuels/depdistill/pkg/io
// [cache]: github.com/matzehuels/depdistill/pkg/cache
// [store]: github.com/matzehuels/depdistill/pkg/store
// [config]: github.com/matzehuels/depdistill/pkg/config
// [errors]: github.com/matzehuels/depdistill/pkg/errors
// [observability]: github.com/matzehuels/depdistill/pkg/observability
// [pipeline]: github.com/matzehuels/depdistill/pkg/pipeline
// [pipeline.Runner]: github.com/matzehuels/depdistill/pkg/pipeline.Runner
package pkg

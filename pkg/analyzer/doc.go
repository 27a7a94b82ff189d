// Package analyzer distills a raw .NET dependency graph into a pruned,
// deduplicated dependency tree.
//
// # Overview
//
// [Analyze] takes a [rawgraph.Graph] (projects, target frameworks, resolved
// libraries) and produces a [Result]: one [Project] per analysed project with
// its frameworks and nested [Dependency] trees, plus the set of every
// retained "name version" string in [Result.AllDependencies].
//
// Projects are dispatched by restore style. PackageReference projects are
// walked through their lock file, PackagesConfig projects through their local
// package repository; every other style is skipped.
//
// # Filtering
//
// An optional search term ([Options.Search]) prunes the tree bottom-up. A node
// is kept when no term is set, when its name contains the term
// (case-insensitive), or when any of its children was kept. The decision is
// made once per node, after its children are built, so dropped subtrees never
// reach the result or the dedup set.
//
// # Absent versus empty
//
// Optional collections are [List] values with an explicit presence flag.
// Collections that end up empty after filtering are absent, and absent fields
// are omitted from every serialized form:
//
//	{"name": "net8.0"}              // no dependency survived
//	{"name": "net8.0", "dependencies": [...]}
//
// # Cycles
//
// The raw graph is expected to be acyclic but this is not trusted. Every walk
// carries the chain of libraries currently being expanded and never re-enters
// one of them; the offending edge is treated as absent and reported through
// [observability.AnalyzerHooks.OnCycle].
//
// # Concurrency
//
// Walks are pure functions returning their own dedup set, so projects are
// analysed in parallel ([Options.Concurrency]) and merged in raw graph order.
package analyzer

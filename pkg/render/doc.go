// Package render provides output renderers for distilled dependency trees.
//
// # Overview
//
// The renderers are pure functions of an [analyzer.Result]:
//
//   - Box-drawing console trees (in [tree] subpackage)
//   - Node-link diagrams through Graphviz (in [nodelink] subpackage)
//   - Generic format conversion (SVG to PDF/PNG), in this package
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg).
//
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0)  // 2x scale
//
// [analyzer.Result]: github.com/matzehuels/depdistill/pkg/analyzer.Result
// [tree]: github.com/matzehuels/depdistill/pkg/render/tree
// [nodelink]: github.com/matzehuels/depdistill/pkg/render/nodelink
package render

// Package nodelink renders distilled dependency trees as node-link diagrams.
//
// # Overview
//
// The root path, projects, frameworks and dependencies become boxes joined
// by arrows, laid out left to right by Graphviz.
//
// # Usage
//
// Convert a result to DOT, then render to SVG:
//
//	dot := nodelink.ToDOT(res, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// # Options
//
//   - Merge: draw each "name version" once per framework, turning repeated
//     subtrees into shared nodes. The default draws the tree as distilled,
//     one box per occurrence.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink

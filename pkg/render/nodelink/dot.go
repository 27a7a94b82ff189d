package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/depdistill/pkg/analyzer"
	"github.com/matzehuels/depdistill/pkg/render"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Merge draws identical dependencies within a framework as one node.
	Merge bool
}

// ToDOT converts a result to Graphviz DOT format.
// The resulting DOT string can be rendered using [RenderSVG], [RenderPDF], or [RenderPNG].
func ToDOT(r *analyzer.Result, opts Options) string {
	b := dotBuilder{merge: opts.Merge, seen: make(map[string]bool)}
	b.buf.WriteString("digraph G {\n")
	b.buf.WriteString("  rankdir=LR;\n")
	b.buf.WriteString("  bgcolor=\"transparent\";\n")
	b.buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	b.buf.WriteString("  ranksep=0.6;\n")
	b.buf.WriteString("  nodesep=0.2;\n")
	b.buf.WriteString("\n")

	root := "root"
	b.node(root, r.RootPath, "fillcolor=lightgrey")
	for _, p := range r.Projects.Items() {
		pid := "p:" + p.Name
		b.node(pid, p.Name, "penwidth=2")
		b.edge(root, pid)
		for _, fw := range p.TargetFrameworks.Items() {
			fid := pid + "/" + fw.Name
			b.node(fid, fw.Name, "shape=ellipse", "fillcolor=aliceblue")
			b.edge(pid, fid)
			b.deps(fid, fid, fw.Dependencies.Items())
		}
	}

	b.buf.WriteString("}\n")
	return b.buf.String()
}

type dotBuilder struct {
	buf   bytes.Buffer
	merge bool
	seen  map[string]bool
}

func (b *dotBuilder) deps(scope, parent string, deps []analyzer.Dependency) {
	for _, d := range deps {
		id := parent + "/" + d.Key()
		if b.merge {
			id = scope + "#" + d.Key()
		}
		b.node(id, fmtLabel(d))
		b.edge(parent, id)
		b.deps(scope, id, d.Children.Items())
	}
}

func (b *dotBuilder) node(id, label string, attrs ...string) {
	if b.seen[id] {
		return
	}
	b.seen[id] = true
	fmt.Fprintf(&b.buf, "  %q [label=%q", id, label)
	for _, a := range attrs {
		b.buf.WriteString(", " + a)
	}
	b.buf.WriteString("];\n")
}

func (b *dotBuilder) edge(from, to string) {
	key := from + "->" + to
	if b.seen[key] {
		return
	}
	b.seen[key] = true
	fmt.Fprintf(&b.buf, "  %q -> %q;\n", from, to)
}

func fmtLabel(d analyzer.Dependency) string {
	if d.Version.IsZero() {
		return d.Name
	}
	return d.Name + "\n" + d.Version.String()
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
// A scale of 2.0 produces a 2x resolution image suitable for high-DPI displays.
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(ctx, svg, scale)
}

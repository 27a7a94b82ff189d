// Package tree renders a distilled [analyzer.Result] as an indented
// box-drawing tree:
//
//	/src/App.sln
//	└─App
//	  └─net8.0
//	    └─Serilog.AspNetCore 8.0.0
//	      ├─Serilog 3.1.1
//	      └─Serilog.Sinks.Console 5.0.0
//
// Projects hang off the root path, followed by their library list (when
// present), frameworks, dependencies and nested dependencies. Branches use
// "├─" and "└─"; continuation columns use "│ " under an open branch and two
// spaces under a final one.
package tree

import (
	"bytes"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/depdistill/pkg/analyzer"
)

const (
	branch     = "├"
	lastBranch = "└"
	stem       = "─"
	pipe       = "│ "
	blank      = "  "
)

// Options configures tree rendering.
type Options struct {
	// Color styles headings, names and connectors for a terminal.
	Color bool
}

var (
	styleHeading   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("36"))
	styleProject   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("255"))
	styleFramework = lipgloss.NewStyle().Foreground(lipgloss.Color("75"))
	styleLibrary   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	styleConnector = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	styleVersion   = lipgloss.NewStyle().Foreground(lipgloss.Color("35"))
)

// Write renders the tree of r to w.
func Write(w io.Writer, r *analyzer.Result, opts Options) error {
	p := printer{w: w, color: opts.Color}
	p.line(r.RootPath)
	projects := r.Projects.Items()
	for i, proj := range projects {
		p.project(proj, i == len(projects)-1)
	}
	return p.err
}

// String renders the tree of r.
func String(r *analyzer.Result, opts Options) string {
	var buf bytes.Buffer
	_ = Write(&buf, r, opts)
	return buf.String()
}

// WriteSummary writes the sorted dedup set under an "All dependencies:"
// heading. Nothing is written when the set is empty.
func WriteSummary(w io.Writer, r *analyzer.Result, opts Options) error {
	if r.AllDependencies.Len() == 0 {
		return nil
	}
	p := printer{w: w, color: opts.Color}
	p.line(p.paint(styleHeading, "All dependencies:") + "\n")
	for _, dep := range r.AllDependencies.Sorted() {
		p.line(dep)
	}
	p.line("")
	return p.err
}

// WriteReport writes the summary followed by the tree under a "Graph:"
// heading, the layout of the console report.
func WriteReport(w io.Writer, r *analyzer.Result, opts Options) error {
	if err := WriteSummary(w, r, opts); err != nil {
		return err
	}
	p := printer{w: w, color: opts.Color}
	p.line(p.paint(styleHeading, "Graph:") + "\n")
	if p.err != nil {
		return p.err
	}
	if err := Write(w, r, opts); err != nil {
		return err
	}
	p.line("")
	return p.err
}

// printer writes lines and remembers the first error.
type printer struct {
	w     io.Writer
	color bool
	err   error
}

func (p *printer) line(s string) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintln(p.w, s)
}

func (p *printer) paint(style lipgloss.Style, s string) string {
	if !p.color {
		return s
	}
	return style.Render(s)
}

func (p *printer) connector(prefix string, last bool) string {
	c := branch
	if last {
		c = lastBranch
	}
	return p.paint(styleConnector, prefix+c+stem)
}

func (p *printer) project(proj analyzer.Project, last bool) {
	p.line(p.connector("", last) + p.paint(styleProject, proj.Name))

	indent := continuation(last)
	libs := proj.LibraryList.Sorted()
	for i, lib := range libs {
		p.line(p.connector(indent+pipe, i == len(libs)-1) + p.paint(styleLibrary, lib))
	}

	frameworks := proj.TargetFrameworks.Items()
	for i, fw := range frameworks {
		p.framework(fw, indent, i == len(frameworks)-1)
	}
}

func (p *printer) framework(fw analyzer.Framework, prefix string, last bool) {
	p.line(p.connector(prefix, last) + p.paint(styleFramework, fw.Name))

	deps := fw.Dependencies.Items()
	for i, dep := range deps {
		p.dependency(dep, prefix+continuation(last), i == len(deps)-1)
	}
}

func (p *printer) dependency(dep analyzer.Dependency, prefix string, last bool) {
	label := dep.Name
	if !dep.Version.IsZero() {
		label += " " + p.paint(styleVersion, dep.Version.String())
	}
	p.line(p.connector(prefix, last) + label)

	children := dep.Children.Items()
	for i, child := range children {
		p.dependency(child, prefix+continuation(last), i == len(children)-1)
	}
}

func continuation(last bool) string {
	if last {
		return blank
	}
	return pipe
}

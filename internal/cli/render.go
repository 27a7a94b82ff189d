package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	pkgio "github.com/matzehuels/depdistill/pkg/io"
	"github.com/matzehuels/depdistill/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output  string // output file, or base path for several formats
	formats string // comma-separated output formats
	merge   bool   // merge identical packages in graph formats
}

// renderCommand creates the render command, which re-renders a result
// document written by "analyze -f json".
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [result.json]",
		Short: "Render a saved result document",
		Example: `  depdistill analyze App.sln -f json -o result.json
  depdistill render result.json -f svg -o deps.svg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.loadConfig(cmd); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), cmd.OutOrStdout(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s): text (default), json, toml, dot, svg, png, pdf")
	cmd.Flags().BoolVar(&opts.merge, "merge", false, "merge identical packages into one node (graph formats)")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, w io.Writer, path string, opts renderOpts) error {
	res, err := pkgio.ImportJSON(path)
	if err != nil {
		return err
	}

	formats := parseFormats(opts.formats)
	if len(formats) == 0 {
		formats = parseFormats(c.cfg.Output.Format)
	}
	if len(formats) == 0 {
		formats = []string{pipeline.DefaultFormat}
	}
	if err := pipeline.ValidateFormats(formats); err != nil {
		return err
	}
	toFile := opts.output != ""
	if !toFile && (len(formats) > 1 || isBinary(formats[0])) {
		return fmt.Errorf("format %v requires --output", formats)
	}

	artifacts, err := pipeline.Render(ctx, res, pipeline.Options{
		Formats: formats,
		Color:   c.cfg.Output.Color && !toFile,
		Merge:   opts.merge,
	})
	if err != nil {
		return err
	}

	if !toFile {
		_, err := w.Write(artifacts[formats[0]])
		return err
	}
	multiple := len(formats) > 1
	for _, f := range formats {
		out := outputPath(opts.output, f, multiple)
		if err := os.WriteFile(out, artifacts[f], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", out, err)
		}
		printFile(out)
	}
	return nil
}

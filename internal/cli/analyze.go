package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/depdistill/pkg/pipeline"
)

// analyzeOpts holds the command-line flags for the analyze command. The
// restore and analysis flags bound to configuration keys are read from the
// loaded config instead.
type analyzeOpts struct {
	search      string // case-insensitive dependency filter
	output      string // output file, or base path for several formats
	formats     string // comma-separated output formats
	graph       string // existing dgspec; skips restore
	packagesDir string // packages.config folder
	noCache     bool   // bypass the result cache
	save        bool   // store the result in the history
}

// analyzeCommand creates the analyze command.
func (c *CLI) analyzeCommand() *cobra.Command {
	var opts analyzeOpts

	cmd := &cobra.Command{
		Use:   "analyze [solution|project]",
		Short: "Restore a solution or project and print its distilled dependency tree",
		Long: `Restore a solution or project and print its distilled dependency tree.

With --search only the dependency paths leading to packages whose name
contains the term are kept. With --graph an existing restore graph
(*.dgspec.json) is read and dotnet is not invoked.`,
		Example: `  depdistill analyze App.sln
  depdistill analyze App.sln -s json
  depdistill analyze --graph obj/App.dgspec.json -f json -o result.json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.loadConfig(cmd); err != nil {
				return err
			}
			target := ""
			if len(args) == 1 {
				target = args[0]
			}
			if target == "" && opts.graph == "" {
				return fmt.Errorf("a solution, project or --graph is required")
			}
			return c.runAnalyze(cmd.Context(), cmd.OutOrStdout(), target, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.search, "search", "s", "", "keep only paths to dependencies containing this term")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringP("temp", "t", "", "directory for the generated restore graph")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s): text (default), json, toml, dot, svg, png, pdf")
	cmd.Flags().StringVar(&opts.graph, "graph", "", "read an existing restore graph instead of running dotnet")
	cmd.Flags().StringVar(&opts.packagesDir, "packages", "", "packages folder for packages.config projects")
	cmd.Flags().Bool("libraries", false, "include each project's library list")
	cmd.Flags().Int("concurrency", 0, "projects analyzed in parallel")
	cmd.Flags().String("dotnet", "", "dotnet executable")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the result cache")
	cmd.Flags().BoolVar(&opts.save, "save", false, "store the result in the history")

	return cmd
}

func (c *CLI) runAnalyze(ctx context.Context, w io.Writer, target string, opts analyzeOpts) error {
	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close(context.WithoutCancel(ctx))
	if opts.save {
		if runner.Store, err = c.openHistory(ctx); err != nil {
			return err
		}
	}

	formats := parseFormats(opts.formats)
	if len(formats) == 0 {
		formats = parseFormats(c.cfg.Output.Format)
	}
	toFile := opts.output != ""
	popts := pipeline.Options{
		Target:           target,
		GraphPath:        opts.graph,
		TempDir:          c.cfg.Restore.TempDir,
		PackagesDir:      opts.packagesDir,
		Search:           opts.search,
		IncludeLibraries: c.cfg.Analysis.Libraries,
		Concurrency:      c.cfg.Analysis.Concurrency,
		Formats:          formats,
		Color:            c.cfg.Output.Color && !toFile,
		Save:             opts.save,
		Logger:           c.Logger,
	}
	if err := popts.ValidateAndSetDefaults(); err != nil {
		return err
	}
	if !toFile {
		if len(popts.Formats) > 1 {
			return fmt.Errorf("multiple formats require --output")
		}
		if f := popts.Formats[0]; isBinary(f) {
			return fmt.Errorf("format %s requires --output", f)
		}
	}

	var spinner *Spinner
	if toFile {
		spinner = newSpinnerWithContext(ctx, "Distilling dependencies...")
		spinner.Start()
	}
	res, err := runner.Execute(ctx, popts)
	if spinner != nil {
		if err != nil {
			spinner.StopWithError("Distillation failed")
		} else {
			spinner.Stop()
		}
	}
	if err != nil {
		return err
	}

	if !toFile {
		_, err := w.Write(res.Artifacts[popts.Formats[0]])
		return err
	}

	printSuccess("Distilled %s", StyleHighlight.Render(res.Analysis.RootPath))
	printStats(res.Analysis, res.CacheInfo.AnalyzeHit)
	multiple := len(popts.Formats) > 1
	for _, f := range popts.Formats {
		path := outputPath(opts.output, f, multiple)
		if err := os.WriteFile(path, res.Artifacts[f], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}
	if res.ID != "" {
		printKeyValue("Saved", res.ID)
	}
	return nil
}

// isBinary reports whether a format cannot be written to a terminal.
func isBinary(format string) bool {
	return format == pipeline.FormatPNG || format == pipeline.FormatPDF
}

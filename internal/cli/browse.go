package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/depdistill/pkg/pipeline"
)

// browseCommand creates the browse command.
func (c *CLI) browseCommand() *cobra.Command {
	var (
		search  string
		graph   string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "browse [solution|project]",
		Short: "Explore a distilled dependency tree interactively",
		Example: `  depdistill browse App.sln
  depdistill browse --graph obj/App.dgspec.json -s Serilog`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.loadConfig(cmd); err != nil {
				return err
			}
			target := ""
			if len(args) == 1 {
				target = args[0]
			}
			if target == "" && graph == "" {
				return fmt.Errorf("a solution, project or --graph is required")
			}
			return c.runBrowse(cmd.Context(), pipeline.Options{
				Target:    target,
				GraphPath: graph,
				Search:    search,
			}, noCache)
		},
	}

	cmd.Flags().StringVarP(&search, "search", "s", "", "keep only paths to dependencies containing this term")
	cmd.Flags().StringVar(&graph, "graph", "", "read an existing restore graph instead of running dotnet")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the result cache")
	cmd.Flags().String("temp", "", "directory for the generated restore graph")
	cmd.Flags().Bool("libraries", false, "include each project's library list")

	return cmd
}

func (c *CLI) runBrowse(ctx context.Context, opts pipeline.Options, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return err
	}
	defer runner.Close(context.WithoutCancel(ctx))

	opts.TempDir = c.cfg.Restore.TempDir
	opts.IncludeLibraries = c.cfg.Analysis.Libraries
	opts.Concurrency = c.cfg.Analysis.Concurrency
	opts.Logger = c.Logger

	spinner := newSpinnerWithContext(ctx, "Distilling dependencies...")
	spinner.Start()
	res, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Distillation failed")
		return err
	}
	spinner.Stop()

	model := NewTreeModel(res.Analysis.RootPath, res.Analysis)
	_, err = tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

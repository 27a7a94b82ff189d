package cli

import (
	"context"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/depdistill/pkg/render/tree"
	"github.com/matzehuels/depdistill/pkg/store"
)

// historyCommand creates the history command and its show subcommand.
func (c *CLI) historyCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List analyses saved with --save",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.loadConfig(cmd); err != nil {
				return err
			}
			return c.withHistory(cmd.Context(), func(ctx context.Context, st store.Store) error {
				list, err := st.List(ctx, limit)
				if err != nil {
					return err
				}
				if len(list) == 0 {
					printInfo("No saved analyses")
					return nil
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), historyTable(list))
				return err
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", store.DefaultListLimit, "maximum number of analyses")

	cmd.AddCommand(&cobra.Command{
		Use:   "show [id]",
		Short: "Print a saved analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.loadConfig(cmd); err != nil {
				return err
			}
			return c.withHistory(cmd.Context(), func(ctx context.Context, st store.Store) error {
				a, err := st.Get(ctx, args[0])
				if err != nil {
					return err
				}
				return tree.WriteReport(cmd.OutOrStdout(), a.Result, tree.Options{Color: c.cfg.Output.Color})
			})
		},
	})

	return cmd
}

func (c *CLI) withHistory(ctx context.Context, fn func(context.Context, store.Store) error) error {
	st, err := c.openHistory(ctx)
	if err != nil {
		return err
	}
	defer st.Close(context.WithoutCancel(ctx))
	return fn(ctx, st)
}

// historyTable renders analyses as a bordered table, newest first.
func historyTable(list []store.Analysis) string {
	rows := make([][]string, 0, len(list))
	for _, a := range list {
		search := a.Search
		if search == "" {
			search = "—"
		}
		rows = append(rows, []string{
			a.ID,
			a.CreatedAt.Local().Format("Jan 2 15:04"),
			a.Target,
			search,
			fmt.Sprintf("%d/%d", a.Stats.Kept, a.Stats.Projects),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Saved", "Target", "Search", "Projects").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return headerStyle
			case col == 0:
				return StyleHighlight
			case col == 1:
				return StyleDim
			}
			return StyleValue
		}).
		Render()
}

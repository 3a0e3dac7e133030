package cli

import (
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/simcheck/pkg/store"
)

// historyCommand creates the history command.
func (c *CLI) historyCommand() *cobra.Command {
	var (
		opts   store.ListOptions
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded comparisons, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := c.newRunner(cmd.Context(), backends{store: true})
			if err != nil {
				return err
			}
			defer runner.Close()

			recs, err := runner.Store.List(cmd.Context(), opts)
			if err != nil {
				return err
			}
			if asJSON {
				if recs == nil {
					recs = []store.Record{}
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(recs)
			}
			if len(recs) == 0 {
				printInfo("No recorded comparisons")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), historyTable(recs))
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.ExpectedPath, "expected", "", "only comparisons against this expected file")
	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", store.DefaultListLimit, "maximum number of records")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print records as JSON")

	return cmd
}

func historyTable(recs []store.Record) string {
	rows := make([][]string, 0, len(recs))
	for _, r := range recs {
		rows = append(rows, []string{
			r.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			r.Outcome,
			fmt.Sprintf("%.0f", r.Distance),
			fmt.Sprintf("%.0f", r.MaxDistance),
			r.ExpectedPath,
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Time", "Outcome", "Distance", "Max", "Expected").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col != 1 || row >= len(recs) {
				return lipgloss.NewStyle()
			}
			switch recs[row].Outcome {
			case "pass":
				return StyleSuccess
			case "exceeded":
				return lipgloss.NewStyle().Foreground(colorRed)
			}
			return StyleWarning
		}).
		Render()
}

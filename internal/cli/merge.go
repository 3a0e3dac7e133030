package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/simcheck/pkg/raster"
)

// mergeCommand creates the merge command.
func (c *CLI) mergeCommand() *cobra.Command {
	var (
		output        string
		width, height int
		noCache       bool
	)

	cmd := &cobra.Command{
		Use:   "merge <source>...",
		Short: "Normalize and overlay sources into one image",
		Long: `Merge scales every source to the target size and paints them in order,
later sources over earlier ones. The output format follows the extension of
--output (png, tiff, bmp or jpeg).`,
		Example: `  simcheck merge -o map.png tiles.png roads.svg labels.svg
  simcheck merge -o page.tiff --width 1240 --height 1754 report.pdf#0 stamp.png`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := raster.FormatFromPath(output); err != nil {
				return err
			}
			runner, err := c.newRunner(cmd.Context(), backends{cache: !noCache})
			if err != nil {
				return err
			}
			defer runner.Close()

			spin := newSpinnerWithContext(cmd.Context(), os.Stderr, fmt.Sprintf("Merging %d sources...", len(args)))
			spin.Start()
			img, cached, err := runner.Merge(cmd.Context(), args, width, height, false)
			spin.Stop()
			if err != nil {
				return err
			}

			if err := raster.EncodeFile(output, img); err != nil {
				return err
			}
			b := img.Bounds()
			printSuccess("Merged %d sources at %dx%d", len(args), b.Dx(), b.Dy())
			if cached {
				printDetail("from cache")
			}
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "merged.png", "output file")
	cmd.Flags().IntVar(&width, "width", 0, "target width (default: first raster source)")
	cmd.Flags().IntVar(&height, "height", 0, "target height")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the composite cache")

	return cmd
}

// exportPageCommand creates the export-page command.
func (c *CLI) exportPageCommand() *cobra.Command {
	var (
		output string
		page   int
	)

	cmd := &cobra.Command{
		Use:   "export-page <document>",
		Short: "Render one page of a DOT or PDF document to an image",
		Long: `Export-page renders a document page the same way compare and merge do
(opaque, white background) and writes it to --output. Pages count from zero.`,
		Example: `  simcheck export-page report.pdf --page 2 -o page2.png
  simcheck export-page graph.dot -o graph.tiff`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := c.newRunner(cmd.Context(), backends{})
			if err != nil {
				return err
			}
			defer runner.Close()

			arg := args[0]
			if cmd.Flags().Changed("page") {
				arg = fmt.Sprintf("%s#%d", arg, page)
			}
			if err := runner.ExportPage(cmd.Context(), arg, output); err != nil {
				return err
			}
			printSuccess("Exported %s", arg)
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "page.png", "output file")
	cmd.Flags().IntVar(&page, "page", 0, "zero-based page number")

	return cmd
}

package cli

import (
	"encoding/json"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/simcheck/pkg/pipeline"
)

// compareCommand creates the compare command.
func (c *CLI) compareCommand() *cobra.Command {
	var (
		opts       pipeline.CompareOptions
		sampleSize int
		noCache    bool
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:   "compare <expected> <source>...",
		Short: "Check rendered output against an expected image",
		Long: `Compare builds the actual image from one or more sources and checks its
distance to the expected file.

Sources are painted bottom first. Raster files are decoded, SVG files are
rasterized and DOT or PDF files are rendered ("report.pdf#2" selects page 2,
counted from zero). Every source is scaled to the target size, which defaults
to the size of the expected file.

When the expected file does not exist, or the distance exceeds the threshold,
the actual image is written next to it as actual<Name>.png and the command
fails. Review and promote it with "simcheck review".`,
		Example: `  simcheck compare testdata/expectedMap.tiff out/map.png
  simcheck compare -m 25 testdata/expectedOverlay.tiff out/base.png out/overlay.svg
  simcheck compare --width 800 --height 600 testdata/expectedReport.tiff out/report.pdf#1`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.ExpectedPath = args[0]
			opts.Sources = args[1:]
			if cmd.Flags().Changed("sample-size") {
				opts.SampleSize = &sampleSize
			}

			runner, err := c.newRunner(cmd.Context(), backends{cache: !noCache, store: opts.Record})
			if err != nil {
				return err
			}
			defer runner.Close()

			res, err := runner.Compare(cmd.Context(), opts)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(res); err != nil {
					return err
				}
				return res.Err()
			}

			printOutcome(res.Outcome.String(), res.ExpectedPath, res.Distance, res.MaxDistance)
			printStats(res.SampleSize, res.GridSize, res.CacheInfo.ExpectedHit)
			if res.ArtifactWritten {
				printFile(res.ActualPath)
				printNextStep("Review", "simcheck review "+filepath.Dir(res.ActualPath))
			}
			if res.Record != nil {
				printDetail("Recorded as %s", res.Record.ID)
			}
			return res.Err()
		},
	}

	f := cmd.Flags()
	f.Float64VarP(&opts.MaxDistance, "max-distance", "m", -1, "largest accepted distance (default from config)")
	f.IntVar(&opts.Width, "width", 0, "target width (default: size of the expected file)")
	f.IntVar(&opts.Height, "height", 0, "target height")
	f.IntVar(&sampleSize, "sample-size", 0, "sample half-width (default: derived from the image)")
	f.BoolVar(&opts.NoArtifact, "no-artifact", false, "do not write the actual image on failure")
	f.BoolVar(&opts.Record, "record", false, "record the outcome in the history")
	f.BoolVar(&opts.Refresh, "refresh", false, "recompute cached signatures and composites")
	f.BoolVar(&noCache, "no-cache", false, "disable the signature cache")
	f.BoolVar(&asJSON, "json", false, "print the result as JSON")

	return cmd
}

package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/simcheck/pkg/buildinfo"
)

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Simcheck compares rendered images against accepted references",
		Long: `Simcheck asserts that rendered output (rasters, SVG layers, DOT graphs and
PDF pages) is perceptually similar to an accepted reference image. Failures
leave the actual image next to the expected file for review.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.ConfigPath, "config", "", "config file (default $XDG_CONFIG_HOME/simcheck/config.toml)")

	root.AddCommand(c.compareCommand())
	root.AddCommand(c.signatureCommand())
	root.AddCommand(c.distanceCommand())
	root.AddCommand(c.mergeCommand())
	root.AddCommand(c.exportPageCommand())
	root.AddCommand(c.fixturesCommand())
	root.AddCommand(c.reviewCommand())
	root.AddCommand(c.historyCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/simcheck/pkg/signature"
)

// fixturesCommand creates the fixtures command.
func (c *CLI) fixturesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "fixtures <dir>",
		Short: "Convert PNG fixtures to uncompressed TIFF",
		Long: `Fixtures walks dir and writes an uncompressed TIFF next to every PNG it
finds, keeping the base name. Expected files stored this way decode
identically everywhere.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prog := newProgress(c.Logger)
			n, err := signature.ConvertFixtures(args[0], c.Logger)
			if err != nil {
				return err
			}
			prog.done("converted fixtures")
			if n == 0 {
				printInfo("No PNG files under %s", args[0])
				return nil
			}
			printSuccess("Converted %d fixtures", n)
			return nil
		},
	}
}

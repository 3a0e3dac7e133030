package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/simcheck/pkg/signature"
)

// signatureCommand creates the signature command.
func (c *CLI) signatureCommand() *cobra.Command {
	var (
		sampleSize int
		asJSON     bool
		preview    bool
	)

	cmd := &cobra.Command{
		Use:   "signature <image>",
		Short: "Compute the signature of an image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := c.newRunner(cmd.Context(), backends{})
			if err != nil {
				return err
			}
			defer runner.Close()

			var ss *int
			if cmd.Flags().Changed("sample-size") {
				ss = &sampleSize
			}
			eng, err := runner.Signature(cmd.Context(), args[0], ss)
			if err != nil {
				return err
			}

			if asJSON {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(eng.Signature())
			}
			b := eng.Reference().Bounds()
			printKeyValue("Image", args[0])
			printKeyValue("Size", fmt.Sprintf("%dx%d", b.Dx(), b.Dy()))
			printKeyValue("Sample", fmt.Sprintf("%d", eng.SampleSize()))
			printKeyValue("Grid", fmt.Sprintf("%dx%d", eng.GridSize(), eng.GridSize()))
			if preview {
				fmt.Fprint(cmd.OutOrStdout(), renderSignature(eng.Signature()))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&sampleSize, "sample-size", 0, "sample half-width (default: derived from the image)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the signature as JSON")
	cmd.Flags().BoolVar(&preview, "preview", false, "draw the signature grid in the terminal")

	return cmd
}

// renderSignature draws a signature with half-block characters: each text
// row shows two cell rows, the upper as foreground and the lower as
// background.
func renderSignature(sig *signature.Signature) string {
	var b strings.Builder
	for y := 0; y < sig.Size; y += 2 {
		for x := 0; x < sig.Size; x++ {
			style := lipgloss.NewStyle().Foreground(hexColor(sig.At(x, y)))
			if y+1 < sig.Size {
				style = style.Background(hexColor(sig.At(x, y+1)))
			}
			b.WriteString(style.Render("▀"))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func hexColor(c signature.RGB) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B))
}

// distanceCommand creates the distance command.
func (c *CLI) distanceCommand() *cobra.Command {
	var sampleSize int

	cmd := &cobra.Command{
		Use:   "distance <reference> <candidate>",
		Short: "Print the distance between two images",
		Long: `Distance prints the signature distance between two raster images. The
sample size is derived from the reference unless --sample-size is set.
Images of different resolutions are compared proportionally.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := c.newRunner(cmd.Context(), backends{})
			if err != nil {
				return err
			}
			defer runner.Close()

			var ss *int
			if cmd.Flags().Changed("sample-size") {
				ss = &sampleSize
			}
			d, err := runner.Distance(cmd.Context(), args[0], args[1], ss)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%v\n", d)
			return nil
		},
	}

	cmd.Flags().IntVar(&sampleSize, "sample-size", 0, "sample half-width (default: derived from the reference)")
	return cmd
}

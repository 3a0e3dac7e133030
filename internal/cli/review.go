package cli

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/simcheck/pkg/pipeline"
	"github.com/matzehuels/simcheck/pkg/raster"
	"github.com/matzehuels/simcheck/pkg/signature"
)

// pendingReview is an actual image left behind by a failed comparison.
type pendingReview struct {
	Actual   string
	Expected string
	// Missing is true when no expected file exists yet.
	Missing  bool
	Distance float64
}

// findPending lists the artifacts under root with their expected files.
//
// An artifact is matched to the image whose derived actual path it is.
// Artifacts without a match are first-run outputs; their expected file is
// assumed to be the uncompressed TIFF "expected<Name>.tiff" beside them.
func findPending(root string) ([]pendingReview, error) {
	var actuals, others []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if _, err := raster.FormatFromPath(path); err != nil {
			return nil
		}
		if isArtifact(path) {
			actuals = append(actuals, path)
		} else {
			others = append(others, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Prefer TIFF when both PNG and TIFF expected files map to one artifact.
	expectedFor := make(map[string]string, len(actuals))
	for _, path := range others {
		ap := signature.ActualPath(path)
		if prev, ok := expectedFor[ap]; ok && strings.HasSuffix(prev, ".tiff") {
			continue
		}
		expectedFor[ap] = path
	}

	items := make([]pendingReview, 0, len(actuals))
	for _, actual := range actuals {
		p := pendingReview{Actual: actual}
		if exp, ok := expectedFor[actual]; ok {
			p.Expected = exp
		} else {
			base := strings.TrimPrefix(filepath.Base(actual), "actual")
			base = strings.TrimSuffix(base, filepath.Ext(base)) + raster.FormatTIFF.Extension()
			p.Expected = filepath.Join(filepath.Dir(actual), "expected"+base)
			p.Missing = true
		}
		items = append(items, p)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Actual < items[j].Actual })
	return items, nil
}

func isArtifact(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, "actual") && strings.EqualFold(filepath.Ext(base), ".png")
}

// measure fills in the distance of every item that has an expected file.
func measure(ctx context.Context, runner *pipeline.Runner, items []pendingReview) error {
	for i := range items {
		if items[i].Missing {
			continue
		}
		d, err := runner.Distance(ctx, items[i].Actual, items[i].Expected, nil)
		if err != nil {
			return err
		}
		items[i].Distance = d
	}
	return nil
}

// promote accepts the artifact as the new expected image and removes it.
func promote(p pendingReview) error {
	img, err := raster.DecodeFile(p.Actual)
	if err != nil {
		return err
	}
	if err := raster.EncodeFile(p.Expected, img); err != nil {
		return err
	}
	return os.Remove(p.Actual)
}

// discard removes the artifact and keeps the expected image.
func discard(p pendingReview) error {
	return os.Remove(p.Actual)
}

// reviewCommand creates the review command.
func (c *CLI) reviewCommand() *cobra.Command {
	var (
		list      bool
		acceptAll bool
	)

	cmd := &cobra.Command{
		Use:   "review [dir]",
		Short: "Promote or discard images left by failed comparisons",
		Long: `Review finds actual*.png files written by failed comparisons under dir
(default: the current directory) and lets you accept them as the new
expected image or discard them.

Accepted images are stored in the expected file's format; first-run images
become uncompressed TIFF files.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) == 1 {
				root = args[0]
			}
			items, err := findPending(root)
			if err != nil {
				return err
			}
			if len(items) == 0 {
				printSuccess("Nothing to review under %s", root)
				return nil
			}

			runner, err := c.newRunner(cmd.Context(), backends{})
			if err != nil {
				return err
			}
			defer runner.Close()
			if err := measure(cmd.Context(), runner, items); err != nil {
				return err
			}

			switch {
			case acceptAll:
				for _, p := range items {
					if err := promote(p); err != nil {
						return err
					}
					printSuccess("Promoted %s", p.Expected)
				}
				return nil
			case list:
				for _, p := range items {
					printKeyValue(reviewStatus(p), p.Actual)
				}
				return nil
			}

			model := newReviewModel(items, promote, discard)
			final, err := tea.NewProgram(model, tea.WithContext(cmd.Context())).Run()
			if err != nil {
				return err
			}
			m := final.(reviewModel)
			printInfo("Promoted %d, discarded %d, %d left", m.promoted, m.discarded, len(m.items))
			return nil
		},
	}

	cmd.Flags().BoolVar(&list, "list", false, "print pending images and exit")
	cmd.Flags().BoolVar(&acceptAll, "accept-all", false, "promote every pending image without asking")

	return cmd
}

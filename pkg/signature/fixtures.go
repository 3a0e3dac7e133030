package signature

import (
	"image"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/simcheck/pkg/raster"
)

// WriteUncompressed writes img as an uncompressed TIFF next to file, replacing
// its extension with ".tiff", and returns the path written.
//
// Expected fixtures are stored uncompressed so that byte-level diffs in
// version control stay meaningful.
func WriteUncompressed(img image.Image, file string) (string, error) {
	out := strings.TrimSuffix(file, filepath.Ext(file)) + raster.FormatTIFF.Extension()
	if err := raster.EncodeFile(out, img); err != nil {
		return "", err
	}
	return out, nil
}

// ConvertFixtures rewrites every PNG under root as an uncompressed TIFF next
// to the original and returns the number of files converted. The PNG files
// are left in place.
func ConvertFixtures(root string, logger *log.Logger) (int, error) {
	if logger == nil {
		logger = log.Default()
	}
	n := 0
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".png") {
			return nil
		}
		img, err := raster.DecodeFile(path)
		if err != nil {
			return err
		}
		out, err := WriteUncompressed(img, path)
		if err != nil {
			return err
		}
		logger.Info("converted fixture", "from", path, "to", out)
		n++
		return nil
	})
	return n, err
}

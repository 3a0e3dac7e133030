package vector

import (
	"bytes"
	"context"
	"image"
	"os/exec"
	"strconv"
	"strings"

	"github.com/matzehuels/simcheck/pkg/errors"
	"github.com/matzehuels/simcheck/pkg/raster"
)

const rsvgTool = "rsvg-convert"

// RSVG rasterizes with the external rsvg-convert tool.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
type RSVG struct{}

// Rasterize implements [Rasterizer].
func (RSVG) Rasterize(ctx context.Context, markup []byte, width, height int) (image.Image, error) {
	if err := errors.ValidateDimensions(width, height); err != nil {
		return nil, err
	}
	if _, err := exec.LookPath(rsvgTool); err != nil {
		return nil, errors.New(errors.ErrCodeToolMissing,
			"svg rasterization requires librsvg. Install with:\n  macOS:  brew install librsvg\n  Linux:  apt install librsvg2-bin")
	}

	cmd := exec.CommandContext(ctx, rsvgTool,
		"-f", "png",
		"-w", strconv.Itoa(width),
		"-h", strconv.Itoa(height),
	)
	cmd.Stdin = bytes.NewReader(markup)

	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf

	if err := cmd.Run(); err != nil {
		return nil, &RasterizationError{
			Backend:    BackendRSVG,
			Diagnostic: strings.TrimSpace(errBuf.String()),
			Cause:      err,
		}
	}

	img, _, err := raster.DecodeBytes(out.Bytes())
	if err != nil {
		return nil, &RasterizationError{Backend: BackendRSVG, Diagnostic: "unreadable tool output", Cause: err}
	}
	// rsvg-convert may round one side by a pixel for some viewBoxes.
	return raster.Fit(img, width, height, nil), nil
}

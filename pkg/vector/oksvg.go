package vector

import (
	"bytes"
	"context"
	"image"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"

	"github.com/matzehuels/simcheck/pkg/errors"
)

// OKSVG rasterizes in process with oksvg. Unsupported elements (text,
// filters) are skipped rather than failing the whole drawing.
type OKSVG struct{}

// Rasterize implements [Rasterizer].
func (OKSVG) Rasterize(ctx context.Context, markup []byte, width, height int) (image.Image, error) {
	if err := errors.ValidateDimensions(width, height); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !bytes.Contains(markup, []byte("<svg")) {
		return nil, &RasterizationError{Backend: BackendOKSVG, Diagnostic: "no <svg> element"}
	}

	icon, err := oksvg.ReadIconStream(bytes.NewReader(markup), oksvg.IgnoreErrorMode)
	if err != nil {
		return nil, &RasterizationError{Backend: BackendOKSVG, Cause: err}
	}

	w, h := float64(width), float64(height)
	icon.SetTarget(0, 0, w, h)
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	scanner := rasterx.NewScannerGV(width, height, img, img.Bounds())
	icon.Draw(rasterx.NewDasher(width, height, scanner), 1)
	return img, nil
}

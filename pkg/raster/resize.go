package raster

import (
	"image"
	"image/color"
	"image/draw"
	"strings"

	xdraw "golang.org/x/image/draw"

	"github.com/matzehuels/simcheck/pkg/errors"
)

// Interpolator names accepted by [ParseInterpolator].
const (
	InterpNearest        = "nearest"
	InterpApproxBiLinear = "approx-bilinear"
	InterpBiLinear       = "bilinear"
	InterpCatmullRom     = "catmull-rom"
)

// DefaultInterpolator is bilinear: smooth enough to hide resampling steps,
// cheap enough for full-page rasters.
var DefaultInterpolator xdraw.Interpolator = xdraw.BiLinear

// ParseInterpolator maps a configuration name to an interpolator.
// The empty string selects [DefaultInterpolator].
func ParseInterpolator(name string) (xdraw.Interpolator, error) {
	switch strings.ToLower(name) {
	case "":
		return DefaultInterpolator, nil
	case InterpNearest:
		return xdraw.NearestNeighbor, nil
	case InterpApproxBiLinear:
		return xdraw.ApproxBiLinear, nil
	case InterpBiLinear:
		return xdraw.BiLinear, nil
	case InterpCatmullRom:
		return xdraw.CatmullRom, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidConfig,
		"unknown interpolator %q (must be %s, %s, %s or %s)",
		name, InterpNearest, InterpApproxBiLinear, InterpBiLinear, InterpCatmullRom)
}

// Resize scales img to exactly width×height into a new RGBA image.
// A nil interpolator selects [DefaultInterpolator].
func Resize(img image.Image, width, height int, interp xdraw.Interpolator) *image.RGBA {
	if interp == nil {
		interp = DefaultInterpolator
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	interp.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Src, nil)
	return dst
}

// ToRGBA copies img into a new RGBA image anchored at the origin.
func ToRGBA(img image.Image) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// Fit returns img unchanged when it already has the requested size and a
// resized copy otherwise.
func Fit(img image.Image, width, height int, interp xdraw.Interpolator) image.Image {
	b := img.Bounds()
	if b.Dx() == width && b.Dy() == height {
		return img
	}
	return Resize(img, width, height, interp)
}

// Flatten composites img over an opaque background and returns an opaque
// RGBA copy anchored at the origin.
func Flatten(img image.Image, bg color.Color) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Over)
	return dst
}

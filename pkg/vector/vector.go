package vector

import (
	"context"
	"fmt"
	"image"
	"strings"

	"github.com/matzehuels/simcheck/pkg/errors"
)

// Backend names accepted by [New].
const (
	BackendOKSVG = "oksvg"
	BackendRSVG  = "rsvg"
)

// Rasterizer turns SVG markup into a width×height bitmap.
type Rasterizer interface {
	Rasterize(ctx context.Context, markup []byte, width, height int) (image.Image, error)
}

// RasterizerFunc adapts a function to [Rasterizer].
type RasterizerFunc func(ctx context.Context, markup []byte, width, height int) (image.Image, error)

// Rasterize calls f.
func (f RasterizerFunc) Rasterize(ctx context.Context, markup []byte, width, height int) (image.Image, error) {
	return f(ctx, markup, width, height)
}

// New returns the backend registered under name. The empty name selects
// [BackendOKSVG].
func New(name string) (Rasterizer, error) {
	switch strings.ToLower(name) {
	case "", BackendOKSVG:
		return OKSVG{}, nil
	case BackendRSVG:
		return RSVG{}, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidConfig,
		"unknown vector backend %q (must be %s or %s)", name, BackendOKSVG, BackendRSVG)
}

// RasterizationError reports markup that a backend could not rasterize.
type RasterizationError struct {
	Source     string // source name, filled in by callers that know it
	Backend    string
	Diagnostic string
	Cause      error
}

func (e *RasterizationError) Error() string {
	src := e.Source
	if src == "" {
		src = "<markup>"
	}
	msg := fmt.Sprintf("rasterize %s with %s", src, e.Backend)
	if e.Diagnostic != "" {
		msg += ": " + e.Diagnostic
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *RasterizationError) Unwrap() error { return e.Cause }

// Code implements errors.Coder.
func (e *RasterizationError) Code() errors.Code { return errors.ErrCodeVectorRasterization }

// WithSource returns a copy of e naming the source it came from.
func (e *RasterizationError) WithSource(name string) *RasterizationError {
	c := *e
	c.Source = name
	return &c
}

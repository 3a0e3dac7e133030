package signature

import (
	"image"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/simcheck/pkg/errors"
)

// Engine compares candidate images against one reference image.
//
// The reference signature is computed once by [New] or [NewWithSampleSize].
// After construction an Engine is immutable and safe for concurrent use.
type Engine struct {
	ref        image.Image
	sig        *Signature
	sampleSize int
	grid       int
	scale      float64
	logger     *log.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithGridSize sets the number of signature cells per axis (default 50).
// Thresholds are only meaningful for the grid size they were recorded with.
func WithGridSize(n int) Option {
	return func(e *Engine) { e.grid = n }
}

// WithScale sets the distance scale factor (default 100).
func WithScale(f float64) Option {
	return func(e *Engine) { e.scale = f }
}

// WithLogger sets the logger used for distance and validation messages.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// DeriveSampleSize returns the default sample half-width for an image:
// roughly 1/200th of its smaller side with the default grid.
func DeriveSampleSize(width, height, grid int) int {
	return min(width, height) / grid / 4
}

// New builds an Engine with a sample size derived from ref's dimensions.
func New(ref image.Image, opts ...Option) (*Engine, error) {
	e := newEngine(ref, opts)
	if err := e.validateGrid(); err != nil {
		return nil, err
	}
	b := ref.Bounds()
	return e.init(DeriveSampleSize(b.Dx(), b.Dy(), e.grid))
}

// NewWithSampleSize builds an Engine with an explicit sample half-width.
// It fails with *InvalidSampleSizeError when ref is too small for it.
func NewWithSampleSize(ref image.Image, sampleSize int, opts ...Option) (*Engine, error) {
	e := newEngine(ref, opts)
	if err := e.validateGrid(); err != nil {
		return nil, err
	}
	return e.init(sampleSize)
}

func newEngine(ref image.Image, opts []Option) *Engine {
	e := &Engine{
		ref:    ref,
		grid:   DefaultGridSize,
		scale:  DefaultScale,
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) validateGrid() error {
	if e.ref == nil {
		return errors.New(errors.ErrCodeInvalidInput, "reference image is nil")
	}
	if e.grid < 1 {
		return errors.New(errors.ErrCodeInvalidInput, "grid size must be positive (got %d)", e.grid)
	}
	if e.scale <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "scale must be positive (got %v)", e.scale)
	}
	b := e.ref.Bounds()
	if b.Dx() < 1 || b.Dy() < 1 {
		return errors.New(errors.ErrCodeInvalidInput, "reference image is empty (%dx%d)", b.Dx(), b.Dy())
	}
	return nil
}

func (e *Engine) init(sampleSize int) (*Engine, error) {
	if err := CheckSampleSize(e.ref.Bounds().Dx(), e.ref.Bounds().Dy(), sampleSize, e.grid); err != nil {
		if se, ok := err.(*InvalidSampleSizeError); ok && se.Axis != "" {
			e.logger.Warn("sample size rejected", "axis", se.Axis, "max", se.Limit, "sampleSize", sampleSize)
		}
		return nil, err
	}
	e.sampleSize = sampleSize
	e.sig = Compute(e.ref, sampleSize, e.grid)
	return e, nil
}

// CheckSampleSize validates a sample half-width for a width×height image.
//
// The window around the first cell center, at proportional position
// 0.5/grid, must not reach past the image edge. The last cell sits the same
// distance from the opposite edge, so one check per axis covers both sides.
// The comparison runs in single precision to match recorded thresholds.
func CheckSampleSize(width, height, sampleSize, grid int) error {
	if sampleSize < 0 {
		return &InvalidSampleSizeError{SampleSize: sampleSize}
	}
	p := prop(0, grid)
	if limit := float32(width) * p; limit < float32(sampleSize) {
		return &InvalidSampleSizeError{Axis: "width", Extent: width, SampleSize: sampleSize, Limit: limit}
	}
	if limit := float32(height) * p; limit < float32(sampleSize) {
		return &InvalidSampleSizeError{Axis: "height", Extent: height, SampleSize: sampleSize, Limit: limit}
	}
	return nil
}

// Reference returns the reference image. Callers must not modify it.
func (e *Engine) Reference() image.Image { return e.ref }

// Signature returns the reference signature. Callers must not modify it.
func (e *Engine) Signature() *Signature { return e.sig }

// SampleSize returns the sample half-width in use.
func (e *Engine) SampleSize() int { return e.sampleSize }

// GridSize returns the number of cells per signature axis.
func (e *Engine) GridSize() int { return e.grid }

// Scale returns the distance scale factor.
func (e *Engine) Scale() float64 { return e.scale }

// ComputeSignature computes the signature of img with this engine's sample
// size and grid, so that it is comparable with [Engine.Signature].
func (e *Engine) ComputeSignature(img image.Image) *Signature {
	return Compute(img, e.sampleSize, e.grid)
}

// DistanceTo returns the distance between img and the reference.
func (e *Engine) DistanceTo(img image.Image) float64 {
	d, _ := e.DistanceToSignature(e.ComputeSignature(img))
	return d
}

// DistanceToSignature returns the distance between sig and the reference.
func (e *Engine) DistanceToSignature(sig *Signature) (float64, error) {
	d, err := Distance(e.sig, sig, e.scale)
	if err != nil {
		return 0, err
	}
	e.logger.Debug("computed distance", "distance", d)
	return d, nil
}

package normalize

import (
	"context"
	stderrors "errors"
	"fmt"
	"image"
	"image/draw"
	"os"
	"time"

	"github.com/charmbracelet/log"
	xdraw "golang.org/x/image/draw"

	"github.com/matzehuels/simcheck/pkg/document"
	"github.com/matzehuels/simcheck/pkg/errors"
	"github.com/matzehuels/simcheck/pkg/observability"
	"github.com/matzehuels/simcheck/pkg/raster"
	"github.com/matzehuels/simcheck/pkg/vector"
)

// Normalizer loads sources at a target size and merges them.
// A Normalizer is safe for concurrent use if its collaborators are.
type Normalizer struct {
	vector    vector.Rasterizer
	documents document.PageRenderer
	interp    xdraw.Interpolator
	logger    *log.Logger
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithRasterizer sets the SVG backend (default oksvg).
func WithRasterizer(r vector.Rasterizer) Option {
	return func(n *Normalizer) { n.vector = r }
}

// WithPageRenderer sets the document page renderer (default
// [document.NewDispatcher]).
func WithPageRenderer(r document.PageRenderer) Option {
	return func(n *Normalizer) { n.documents = r }
}

// WithInterpolator sets the resampling kernel for raster and document
// sources (default bilinear).
func WithInterpolator(i xdraw.Interpolator) Option {
	return func(n *Normalizer) { n.interp = i }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(n *Normalizer) {
		if l != nil {
			n.logger = l
		}
	}
}

// New returns a Normalizer with the given options applied over the defaults.
func New(opts ...Option) *Normalizer {
	n := &Normalizer{
		vector:    vector.OKSVG{},
		documents: document.NewDispatcher(),
		interp:    raster.DefaultInterpolator,
		logger:    log.Default(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Load produces src as a width×height image.
func (n *Normalizer) Load(ctx context.Context, src Source, width, height int) (image.Image, error) {
	if err := errors.ValidateDimensions(width, height); err != nil {
		return nil, err
	}

	switch s := src.(type) {
	case VectorSource:
		img, err := n.vector.Rasterize(ctx, s.Markup, width, height)
		if err != nil {
			var re *vector.RasterizationError
			if stderrors.As(err, &re) {
				return nil, re.WithSource(s.ID)
			}
			return nil, fmt.Errorf("rasterize %s: %w", s.ID, err)
		}
		return raster.Fit(img, width, height, n.interp), nil

	case RasterSource:
		img, _, err := raster.DecodeBytes(s.Data)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeDecode, err, "decode %s", s.ID)
		}
		return raster.Resize(img, width, height, n.interp), nil

	case DocumentSource:
		img, err := n.documents.RenderPage(ctx, s.Doc, s.Page)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", s.Name(), err)
		}
		return raster.Resize(img, width, height, n.interp), nil
	}

	name := "<nil>"
	if src != nil {
		name = src.Name()
	}
	return nil, &UnsupportedSourceError{Source: name, Reason: fmt.Sprintf("no loader for %T", src)}
}

// Merge loads every source at width×height and paints them in order onto
// one canvas. The result is always a new image.
func (n *Normalizer) Merge(ctx context.Context, sources []Source, width, height int) (_ *image.RGBA, err error) {
	if len(sources) == 0 {
		return nil, ErrEmptySourceList
	}
	if err := errors.ValidateDimensions(width, height); err != nil {
		return nil, err
	}

	hooks := observability.Pipeline()
	hooks.OnNormalizeStart(ctx, len(sources), width, height)
	start := time.Now()
	defer func() { hooks.OnNormalizeComplete(ctx, len(sources), time.Since(start), err) }()

	base, err := n.Load(ctx, sources[0], width, height)
	if err != nil {
		return nil, err
	}
	canvas := raster.ToRGBA(base)
	n.logger.Debug("normalized base layer", "source", sources[0].Name(), "width", width, "height", height)

	for _, src := range sources[1:] {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		layer, err := n.Load(ctx, src, width, height)
		if err != nil {
			return nil, err
		}
		lb := layer.Bounds()
		draw.Draw(canvas, canvas.Bounds(), layer, lb.Min, draw.Over)
		n.logger.Debug("overlaid layer", "source", src.Name())
	}
	return canvas, nil
}

// LoadFile reads and classifies one source argument. A "#N" suffix on a
// document path selects page N.
func LoadFile(arg string) (Source, error) {
	path, page, err := SplitPage(arg)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return LoadBytes(path, page, data)
}

// LoadBytes classifies data read from path and applies the page selector.
func LoadBytes(path string, page int, data []byte) (Source, error) {
	src, err := Classify(path, data)
	if err != nil {
		return nil, err
	}
	if ds, ok := src.(DocumentSource); ok {
		ds.Page = page
		return ds, nil
	}
	if page != 0 {
		return nil, errors.New(errors.ErrCodeInvalidPage, "%s is not a document; page selectors apply to documents only", path)
	}
	return src, nil
}

// MergeFiles loads each argument with [LoadFile] and merges the result.
func (n *Normalizer) MergeFiles(ctx context.Context, args []string, width, height int) (*image.RGBA, error) {
	if len(args) == 0 {
		return nil, ErrEmptySourceList
	}
	sources := make([]Source, 0, len(args))
	for _, arg := range args {
		src, err := LoadFile(arg)
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}
	return n.Merge(ctx, sources, width, height)
}

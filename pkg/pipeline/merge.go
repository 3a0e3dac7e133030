package pipeline

import (
	"context"
	"fmt"
	"image"
	"os"

	"github.com/matzehuels/simcheck/pkg/cache"
	"github.com/matzehuels/simcheck/pkg/document"
	"github.com/matzehuels/simcheck/pkg/normalize"
	"github.com/matzehuels/simcheck/pkg/observability"
	"github.com/matzehuels/simcheck/pkg/raster"
	"github.com/matzehuels/simcheck/pkg/signature"
)

// Merge normalizes args to width×height and overlays them in order.
// A zero size takes the native size of the first raster source.
func (r *Runner) Merge(ctx context.Context, args []string, width, height int, refresh bool) (image.Image, bool, error) {
	if len(args) == 0 {
		return nil, false, normalize.ErrEmptySourceList
	}
	if width == 0 || height == 0 {
		var err error
		if width, height, err = sourceSize(args); err != nil {
			return nil, false, err
		}
	}
	return r.build(ctx, args, width, height, refresh)
}

// build produces the actual image for a comparison. A lone raster that
// already has the target size is decoded as is; everything else goes through
// the normalizer and the composite cache.
func (r *Runner) build(ctx context.Context, args []string, width, height int, refresh bool) (image.Image, bool, error) {
	sources := make([]normalize.Source, 0, len(args))
	hashes := make([]string, 0, len(args))
	for _, arg := range args {
		path, page, err := normalize.SplitPage(arg)
		if err != nil {
			return nil, false, err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, false, err
		}
		src, err := normalize.LoadBytes(path, page, data)
		if err != nil {
			return nil, false, err
		}
		sources = append(sources, src)
		hashes = append(hashes, fmt.Sprintf("%s#%d", cache.Hash(data), page))
	}

	if rs, ok := sources[0].(normalize.RasterSource); ok && len(sources) == 1 {
		if w, h, err := raster.Dimensions(rs.Data); err == nil && w == width && h == height {
			img, _, err := raster.DecodeBytes(rs.Data)
			if err != nil {
				return nil, false, fmt.Errorf("decode %s: %w", rs.Name(), err)
			}
			return img, false, nil
		}
	}

	key := r.Keyer.CompositeKey(hashes, cache.CompositeKeyOpts{
		Width:         width,
		Height:        height,
		Interpolator:  r.Config.Normalize.Interpolator,
		VectorBackend: r.Config.Normalize.VectorBackend,
	})
	if !refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			if img, _, err := raster.DecodeBytes(data); err == nil {
				observability.Cache().OnCacheHit(ctx, "composite")
				r.Logger.Debug("composite cache hit", "sources", len(sources))
				return img, true, nil
			}
		}
	}

	observability.Cache().OnCacheMiss(ctx, "composite")

	img, err := r.Normalizer.Merge(ctx, sources, width, height)
	if err != nil {
		return nil, false, err
	}
	r.Logger.Info("merged sources", "sources", len(sources), "width", width, "height", height)

	if data, err := raster.EncodeBytes(img, raster.FormatPNG); err == nil {
		if err := r.Cache.Set(ctx, key, data, r.ttl(cache.TTLComposite)); err != nil {
			r.Logger.Warn("cache write failed", "key", key, "error", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "composite", len(data))
		}
	}
	return img, false, nil
}

// Signature computes the signature of the raster file at path.
func (r *Runner) Signature(ctx context.Context, path string, sampleSize *int) (*signature.Engine, error) {
	img, err := raster.DecodeFile(path)
	if err != nil {
		return nil, err
	}
	return r.NewEngine(ctx, img, sampleSize)
}

// Distance returns the distance between the raster files a and b. The sample
// size is derived from a unless sampleSize is set.
func (r *Runner) Distance(ctx context.Context, a, b string, sampleSize *int) (float64, error) {
	eng, err := r.Signature(ctx, a, sampleSize)
	if err != nil {
		return 0, err
	}
	other, err := raster.DecodeFile(b)
	if err != nil {
		return 0, err
	}
	return eng.DistanceToSignature(eng.ComputeSignature(other))
}

// ExportPage renders one page of the document named by arg ("file.pdf#2")
// to fileName.
func (r *Runner) ExportPage(ctx context.Context, arg, fileName string) error {
	path, page, err := normalize.SplitPage(arg)
	if err != nil {
		return err
	}
	doc, err := document.Open(path)
	if err != nil {
		return err
	}
	if err := document.ExportPage(ctx, r.Pages, doc, page, fileName); err != nil {
		return err
	}
	r.Logger.Info("exported page", "document", doc.Name, "page", page, "file", fileName)
	return nil
}

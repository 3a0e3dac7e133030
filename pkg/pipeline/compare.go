package pipeline

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"image"
	"io/fs"
	"os"
	"time"

	"github.com/matzehuels/simcheck/pkg/cache"
	"github.com/matzehuels/simcheck/pkg/errors"
	"github.com/matzehuels/simcheck/pkg/normalize"
	"github.com/matzehuels/simcheck/pkg/observability"
	"github.com/matzehuels/simcheck/pkg/raster"
	"github.com/matzehuels/simcheck/pkg/signature"
	"github.com/matzehuels/simcheck/pkg/store"
)

// Compare builds the actual image from opts.Sources and checks it against
// opts.ExpectedPath.
//
// A missing expected file or an exceeded threshold is not an error: it is
// reported through the result's Outcome, and [signature.Result.Err] turns it
// into the typed failure. The returned error covers operational failures only.
func (r *Runner) Compare(ctx context.Context, opts CompareOptions) (res *CompareResult, err error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	maxDistance := opts.MaxDistance
	if maxDistance < 0 {
		maxDistance = r.Config.Signature.MaxDistance
	}
	if err := errors.ValidateThreshold(maxDistance); err != nil {
		return nil, err
	}

	hooks := observability.Pipeline()
	hooks.OnCompareStart(ctx, opts.ExpectedPath)
	start := time.Now()
	defer func() {
		var outcome string
		var distance float64
		if res != nil {
			outcome, distance = res.Outcome.String(), res.Distance
		}
		hooks.OnCompareComplete(ctx, opts.ExpectedPath, outcome, distance, time.Since(start), err)
	}()

	expected, err := os.ReadFile(opts.ExpectedPath)
	missing := stderrors.Is(err, fs.ErrNotExist)
	if err != nil && !missing {
		return nil, err
	}

	width, height := opts.Width, opts.Height
	if width == 0 {
		if missing {
			width, height, err = sourceSize(opts.Sources)
		} else {
			width, height, err = raster.Dimensions(expected)
		}
		if err != nil {
			return nil, err
		}
	}

	buildStart := time.Now()
	actual, compositeHit, err := r.build(ctx, opts.Sources, width, height, opts.Refresh)
	if err != nil {
		return nil, err
	}
	buildTime := time.Since(buildStart)

	compareStart := time.Now()
	eng, err := r.NewEngine(ctx, actual, opts.SampleSize)
	if err != nil {
		return nil, err
	}

	res = &CompareResult{
		SampleSize: eng.SampleSize(),
		GridSize:   eng.GridSize(),
	}
	res.CacheInfo.CompositeHit = compositeHit

	if missing {
		res.Result = signature.Result{
			Outcome:      signature.OutcomeMissingReference,
			MaxDistance:  maxDistance,
			ExpectedPath: opts.ExpectedPath,
			ActualPath:   signature.ActualPath(opts.ExpectedPath),
		}
	} else {
		sig, hit, err := r.signatureOf(ctx, expected, eng, opts.Refresh)
		if err != nil {
			return nil, err
		}
		res.CacheInfo.ExpectedHit = hit
		checked, err := eng.CheckSignature(opts.ExpectedPath, sig, maxDistance)
		if err != nil {
			return nil, err
		}
		res.Result = *checked
	}
	res.Stats.BuildTime = buildTime
	res.Stats.CompareTime = time.Since(compareStart)

	r.Logger.Info("compared",
		"expected", opts.ExpectedPath,
		"outcome", res.Outcome,
		"distance", res.Distance,
		"max", maxDistance,
		"duration", res.Stats.CompareTime)

	if !res.Passed() && !opts.NoArtifact {
		if err := signature.WriteArtifact(res.ActualPath, actual); err != nil {
			return nil, errors.Wrap(errors.ErrCodeEncode, err, "write artifact %s", res.ActualPath)
		}
		res.ArtifactWritten = true
		r.Logger.Debug("wrote artifact", "path", res.ActualPath)
	}

	if opts.Record {
		name := opts.Name
		if name == "" {
			name = opts.ExpectedPath
		}
		rec := &store.Record{
			ExpectedPath: name,
			Outcome:      res.Outcome.String(),
			Distance:     res.Distance,
			MaxDistance:  maxDistance,
			SampleSize:   res.SampleSize,
			GridSize:     res.GridSize,
		}
		if res.ArtifactWritten {
			rec.ActualPath = res.ActualPath
		}
		if err := r.Store.Save(ctx, rec); err != nil {
			return nil, err
		}
		res.Record = rec
	}
	return res, nil
}

// NewEngine builds a signature engine for ref with the configured grid and
// scale. A nil sampleSize falls back to the configured override, then to the
// size derived from ref.
func (r *Runner) NewEngine(ctx context.Context, ref image.Image, sampleSize *int) (*signature.Engine, error) {
	if sampleSize == nil {
		sampleSize = r.Config.Signature.SampleSize
	}
	opts := []signature.Option{
		signature.WithGridSize(r.Config.Signature.GridSize),
		signature.WithScale(r.Config.Signature.Scale),
		signature.WithLogger(r.Logger),
	}

	hooks := observability.Pipeline()
	b := ref.Bounds()
	start := time.Now()
	var (
		eng *signature.Engine
		err error
	)
	if sampleSize != nil {
		hooks.OnSignatureStart(ctx, b.Dx(), b.Dy(), *sampleSize)
		eng, err = signature.NewWithSampleSize(ref, *sampleSize, opts...)
	} else {
		hooks.OnSignatureStart(ctx, b.Dx(), b.Dy(),
			signature.DeriveSampleSize(b.Dx(), b.Dy(), r.Config.Signature.GridSize))
		eng, err = signature.New(ref, opts...)
	}
	if err != nil {
		return nil, err
	}
	hooks.OnSignatureComplete(ctx, time.Since(start))
	return eng, nil
}

// signatureOf returns the signature of the encoded image data computed with
// eng's parameters, reading and filling the cache.
func (r *Runner) signatureOf(ctx context.Context, data []byte, eng *signature.Engine, refresh bool) (*signature.Signature, bool, error) {
	key := r.Keyer.SignatureKey(cache.Hash(data), cache.SignatureKeyOpts{
		GridSize:   eng.GridSize(),
		SampleSize: eng.SampleSize(),
	})

	if !refresh {
		if cached, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			var sig signature.Signature
			if err := json.Unmarshal(cached, &sig); err == nil && sig.Validate() == nil && sig.Size == eng.GridSize() {
				observability.Cache().OnCacheHit(ctx, "signature")
				return &sig, true, nil
			}
			r.Logger.Warn("discarding corrupt cached signature", "key", key)
		} else if err != nil {
			r.Logger.Warn("cache read failed", "key", key, "error", err)
		}
	}
	observability.Cache().OnCacheMiss(ctx, "signature")

	img, _, err := raster.DecodeBytes(data)
	if err != nil {
		return nil, false, err
	}
	sig := eng.ComputeSignature(img)

	if encoded, err := json.Marshal(sig); err == nil {
		if err := r.Cache.Set(ctx, key, encoded, r.ttl(cache.TTLSignature)); err != nil {
			r.Logger.Warn("cache write failed", "key", key, "error", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "signature", len(encoded))
		}
	}
	return sig, false, nil
}

// ttl returns the configured cache TTL, or def when none is set.
func (r *Runner) ttl(def time.Duration) time.Duration {
	if d := r.Config.Cache.TTL.Duration; d > 0 {
		return d
	}
	return def
}

// sourceSize returns the native size of the first raster source.
func sourceSize(args []string) (int, int, error) {
	for _, arg := range args {
		path, _, err := normalize.SplitPage(arg)
		if err != nil {
			return 0, 0, err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return 0, 0, err
		}
		if _, ok := raster.Sniff(data); ok {
			return raster.Dimensions(data)
		}
	}
	return 0, 0, errors.New(errors.ErrCodeInvalidInput,
		"no raster source to take the size from; set width and height explicitly")
}

// Package pipeline runs comparisons end to end for the CLI and the server.
//
// A comparison takes an expected file and one or more actual sources:
//
//  1. Build: merge the sources at the target size (or decode a lone raster)
//  2. Engine: compute the signature of the actual image
//  3. Check: compare against the expected file's signature (cached by content)
//  4. Report: write the review artifact on failure, record the outcome
//
// By centralizing this logic the CLI and the HTTP API produce identical
// results and share one cache.
//
// # Usage
//
//	runner, err := pipeline.Open(ctx, cfg, logger)
//	if err != nil {
//	    return err
//	}
//	defer runner.Close()
//
//	res, err := runner.Compare(ctx, pipeline.CompareOptions{
//	    ExpectedPath: "testdata/expectedMap.tiff",
//	    Sources:      []string{"out/base.png", "out/overlay.svg"},
//	    MaxDistance:  25,
//	})
//	if err != nil {
//	    return err // operational failure
//	}
//	return res.Err() // nil, *signature.MissingReferenceError or *signature.SimilarityExceededError
package pipeline

import (
	"time"

	"github.com/matzehuels/simcheck/pkg/errors"
	"github.com/matzehuels/simcheck/pkg/signature"
	"github.com/matzehuels/simcheck/pkg/store"
)

// CompareOptions describes one comparison.
type CompareOptions struct {
	// ExpectedPath is the accepted reference file. It may not exist yet.
	ExpectedPath string `json:"expected_path"`

	// Name identifies the comparison in the history. Empty uses ExpectedPath.
	Name string `json:"name,omitempty"`

	// Sources are the actual image's layers, bottom first. A "#N" suffix
	// selects a document page.
	Sources []string `json:"sources"`

	// Width and Height set the target size. Zero takes the size of the
	// expected file, or of the first raster source when there is none.
	Width  int `json:"width,omitempty"`
	Height int `json:"height,omitempty"`

	// MaxDistance is the threshold. Negative selects the configured default.
	MaxDistance float64 `json:"max_distance"`

	// SampleSize overrides the configured or derived sample half-width.
	SampleSize *int `json:"sample_size,omitempty"`

	// NoArtifact suppresses writing the review artifact on failure.
	NoArtifact bool `json:"no_artifact,omitempty"`

	// Record stores the outcome in the history.
	Record bool `json:"record,omitempty"`

	// Refresh ignores cached signatures.
	Refresh bool `json:"refresh,omitempty"`
}

// Validate checks required fields.
func (o *CompareOptions) Validate() error {
	if o.ExpectedPath == "" {
		return errors.New(errors.ErrCodeInvalidInput, "expected path is required")
	}
	if len(o.Sources) == 0 {
		return errors.New(errors.ErrCodeEmptySourceList, "at least one source is required")
	}
	if o.Width < 0 || o.Height < 0 || (o.Width == 0) != (o.Height == 0) {
		return errors.New(errors.ErrCodeInvalidInput, "width and height must be set together (got %dx%d)", o.Width, o.Height)
	}
	if o.SampleSize != nil && *o.SampleSize < 0 {
		return errors.New(errors.ErrCodeInvalidSampleSize, "sample size must not be negative (got %d)", *o.SampleSize)
	}
	return nil
}

// CompareResult is the outcome of [Runner.Compare].
type CompareResult struct {
	signature.Result

	// SampleSize and GridSize are the engine parameters used.
	SampleSize int `json:"sample_size"`
	GridSize   int `json:"grid_size"`

	// ArtifactWritten reports whether the review image was written.
	ArtifactWritten bool `json:"artifact_written"`

	// Record is the stored history entry when recording was requested.
	Record *store.Record `json:"record,omitempty"`

	Stats     Stats     `json:"stats"`
	CacheInfo CacheInfo `json:"cache_info"`
}

// Stats contains timing information.
type Stats struct {
	BuildTime   time.Duration `json:"build_time"`
	CompareTime time.Duration `json:"compare_time"`
}

// CacheInfo tracks which stages hit the cache.
type CacheInfo struct {
	CompositeHit bool `json:"composite_hit"`
	ExpectedHit  bool `json:"expected_hit"`
}

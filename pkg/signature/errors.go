package signature

import (
	"fmt"

	"github.com/matzehuels/simcheck/pkg/errors"
)

// InvalidSampleSizeError reports a reference image too small for the sample
// window: the window around the outermost cell would need pixels beyond the
// half-cell margin.
type InvalidSampleSizeError struct {
	Axis       string  // "width" or "height"
	Extent     int     // image size along Axis
	SampleSize int     // requested or derived half-width
	Limit      float32 // largest admissible sample size for Extent
}

func (e *InvalidSampleSizeError) Error() string {
	if e.SampleSize < 0 {
		return fmt.Sprintf("sample size must not be negative (sampleSize: %d)", e.SampleSize)
	}
	return fmt.Sprintf("sample %s is too big for the image (%s: %d, sampleSize: %d, max: %g)",
		e.Axis, e.Axis, e.Extent, e.SampleSize, e.Limit)
}

// Code implements errors.Coder.
func (e *InvalidSampleSizeError) Code() errors.Code { return errors.ErrCodeInvalidSampleSize }

// MissingReferenceError reports that the expected file does not exist yet.
// This is the first-run signal: the image under test is written to
// ActualPath so a human can review it and promote it to ExpectedPath.
type MissingReferenceError struct {
	ExpectedPath string
	ActualPath   string
}

func (e *MissingReferenceError) Error() string {
	return fmt.Sprintf("the expected file %s was missing; the actual image has been written to %s for review",
		e.ExpectedPath, e.ActualPath)
}

// Code implements errors.Coder.
func (e *MissingReferenceError) Code() errors.Code { return errors.ErrCodeMissingReference }

// SimilarityExceededError reports a distance above the caller's threshold.
type SimilarityExceededError struct {
	Distance     float64
	MaxDistance  float64
	ExpectedPath string
	ActualPath   string
}

func (e *SimilarityExceededError) Error() string {
	return fmt.Sprintf("similarity difference between images is: %v which is greater than the max distance of %v\nactual=%s\nexpected=%s",
		e.Distance, e.MaxDistance, e.ActualPath, e.ExpectedPath)
}

// Code implements errors.Coder.
func (e *SimilarityExceededError) Code() errors.Code { return errors.ErrCodeSimilarityExceeded }

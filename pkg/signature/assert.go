package signature

import (
	stderrors "errors"
	"fmt"
	"image"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/simcheck/pkg/errors"
	"github.com/matzehuels/simcheck/pkg/raster"
)

// Outcome classifies a comparison.
type Outcome int

const (
	// OutcomePass means the distance is within the threshold.
	OutcomePass Outcome = iota
	// OutcomeMissingReference means the expected file does not exist.
	OutcomeMissingReference
	// OutcomeExceeded means the distance is above the threshold.
	OutcomeExceeded
)

func (o Outcome) String() string {
	switch o {
	case OutcomePass:
		return "pass"
	case OutcomeMissingReference:
		return "missing-reference"
	case OutcomeExceeded:
		return "exceeded"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// MarshalText implements encoding.TextMarshaler.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Result is the outcome of comparing the reference against an expected file.
//
// ActualPath names the diagnostic artifact location. It is set only when the
// comparison did not pass; nothing has been written there until the caller
// (or [Engine.Assert]) calls [WriteArtifact].
type Result struct {
	Outcome      Outcome `json:"outcome"`
	Distance     float64 `json:"distance"`
	MaxDistance  float64 `json:"max_distance"`
	ExpectedPath string  `json:"expected_path"`
	ActualPath   string  `json:"actual_path,omitempty"`
}

// Passed reports whether the comparison passed.
func (r *Result) Passed() bool { return r.Outcome == OutcomePass }

// Err converts a failed Result into its typed error. It returns nil on pass.
func (r *Result) Err() error {
	switch r.Outcome {
	case OutcomeMissingReference:
		return &MissingReferenceError{ExpectedPath: r.ExpectedPath, ActualPath: r.ActualPath}
	case OutcomeExceeded:
		return &SimilarityExceededError{
			Distance:     r.Distance,
			MaxDistance:  r.MaxDistance,
			ExpectedPath: r.ExpectedPath,
			ActualPath:   r.ActualPath,
		}
	}
	return nil
}

// ActualPath derives the diagnostic artifact path for an expected file:
// "actual" is prefixed to the file name, every "expected" in it is removed
// and ".tiff" becomes ".png".
//
//	testdata/expectedSimple.tiff -> testdata/actualSimple.png
func ActualPath(expectedPath string) string {
	name := filepath.Base(expectedPath)
	name = strings.ReplaceAll(name, "expected", "")
	name = strings.ReplaceAll(name, ".tiff", ".png")
	return filepath.Join(filepath.Dir(expectedPath), "actual"+name)
}

// Check compares the reference against the image stored at expectedPath.
//
// Check has no side effects. A missing file yields a Result with
// OutcomeMissingReference and a nil error; an unreadable or undecodable file
// is an error.
func (e *Engine) Check(expectedPath string, maxDistance float64) (*Result, error) {
	if err := errors.ValidateThreshold(maxDistance); err != nil {
		return nil, err
	}
	img, err := raster.DecodeFile(expectedPath)
	if stderrors.Is(err, fs.ErrNotExist) {
		return &Result{
			Outcome:      OutcomeMissingReference,
			MaxDistance:  maxDistance,
			ExpectedPath: expectedPath,
			ActualPath:   ActualPath(expectedPath),
		}, nil
	}
	if err != nil {
		return nil, err
	}
	return e.CheckSignature(expectedPath, e.ComputeSignature(img), maxDistance)
}

// CheckImage is [Engine.Check] for an already decoded expected image.
func (e *Engine) CheckImage(expectedPath string, expected image.Image, maxDistance float64) (*Result, error) {
	if err := errors.ValidateThreshold(maxDistance); err != nil {
		return nil, err
	}
	return e.CheckSignature(expectedPath, e.ComputeSignature(expected), maxDistance)
}

// CheckSignature is [Engine.Check] for a precomputed expected signature.
func (e *Engine) CheckSignature(expectedPath string, sig *Signature, maxDistance float64) (*Result, error) {
	if err := errors.ValidateThreshold(maxDistance); err != nil {
		return nil, err
	}
	d, err := e.DistanceToSignature(sig)
	if err != nil {
		return nil, err
	}
	r := &Result{
		Outcome:      OutcomePass,
		Distance:     d,
		MaxDistance:  maxDistance,
		ExpectedPath: expectedPath,
	}
	if d > maxDistance {
		r.Outcome = OutcomeExceeded
		r.ActualPath = ActualPath(expectedPath)
	}
	return r, nil
}

// Assert checks the reference against expectedPath and, if the check fails,
// writes the reference image to the artifact path for review.
//
// It returns nil on pass, *MissingReferenceError when the expected file does
// not exist and *SimilarityExceededError when the distance is above
// maxDistance. Nothing is written on pass. Concurrent failing assertions
// against the same expected path overwrite each other's artifact.
func (e *Engine) Assert(expectedPath string, maxDistance float64) error {
	r, err := e.Check(expectedPath, maxDistance)
	if err != nil {
		return err
	}
	if r.Passed() {
		return nil
	}
	if werr := WriteArtifact(r.ActualPath, e.ref); werr != nil {
		return stderrors.Join(r.Err(), fmt.Errorf("write artifact: %w", werr))
	}
	return r.Err()
}

// WriteArtifact writes img as PNG to path, creating parent directories.
func WriteArtifact(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := raster.Encode(f, img, raster.FormatPNG); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

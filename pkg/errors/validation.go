package errors

import (
	"math"
	"strings"
	"unicode"
)

// MaxDimension bounds target widths and heights accepted from untrusted input.
// A 16384×16384 RGBA canvas is already 1 GiB.
const MaxDimension = 16384

// ValidateDimensions checks a target raster size.
// Both sides must be at least 1 and at most [MaxDimension].
func ValidateDimensions(width, height int) error {
	if width < 1 || height < 1 {
		return New(ErrCodeInvalidInput, "target size must be positive (got %dx%d)", width, height)
	}
	if width > MaxDimension || height > MaxDimension {
		return New(ErrCodeInvalidInput, "target size %dx%d exceeds %d pixels per side", width, height, MaxDimension)
	}
	return nil
}

// ValidateThreshold checks a maximum-distance threshold.
// Thresholds are compared against non-negative distances, so negative or NaN
// values can never pass and are rejected up front.
func ValidateThreshold(maxDistance float64) error {
	if math.IsNaN(maxDistance) || maxDistance < 0 {
		return New(ErrCodeInvalidInput, "max distance must be a non-negative number (got %v)", maxDistance)
	}
	return nil
}

// ValidateFilename checks a client-supplied upload name. Only plain,
// visible base names are accepted since the name is joined onto a
// server-side temporary directory.
func ValidateFilename(name string) error {
	switch {
	case name == "":
		return New(ErrCodeInvalidPath, "filename cannot be empty")
	case strings.ContainsAny(name, `/\`):
		return New(ErrCodeInvalidPath, "filename %q contains a path separator", name)
	case strings.HasPrefix(name, "."):
		return New(ErrCodeInvalidPath, "filename %q is hidden or relative", name)
	case strings.IndexFunc(name, unicode.IsControl) >= 0:
		return New(ErrCodeInvalidPath, "filename contains control characters")
	}
	return nil
}

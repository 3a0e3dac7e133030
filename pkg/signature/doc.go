// Package signature computes perceptual image signatures and compares them.
//
// # Overview
//
// A signature is a 50×50 grid of averaged colors. Each cell samples a square
// window around a proportional position in the image, so images of different
// resolutions with the same content produce close signatures. The distance
// between two signatures is the sum of per-cell Euclidean RGB distances,
// multiplied by a fixed scale of 100.
//
// Small rendering differences such as anti-aliasing, font hinting or lossy
// compression move a few cells by a few levels. Content changes move many
// cells by a lot.
//
// # Usage
//
// Build an [Engine] once per reference image and compare candidates against
// it:
//
//	eng, err := signature.New(rendered)
//	if err != nil {
//	    return err
//	}
//	err = eng.Assert("testdata/expectedMap.tiff", 25)
//
// [Engine.Assert] returns *[MissingReferenceError] the first time (no expected
// file yet) and *[SimilarityExceededError] when the distance is above the
// threshold. In both cases the rendered image is written next to the expected
// file as a PNG named by [ActualPath] so it can be reviewed and promoted.
// [Engine.Check] performs the same comparison without writing anything.
//
// # Thresholds
//
// Thresholds are tied to the grid size, the scale and the sample size. The
// defaults reproduce historical values exactly, including the single
// precision cell positions, so thresholds accepted in earlier runs stay valid.
package signature

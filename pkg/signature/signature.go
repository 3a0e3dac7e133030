package signature

import (
	"image"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/simcheck/pkg/errors"
	"github.com/matzehuels/simcheck/pkg/raster"
)

const (
	// DefaultGridSize is the number of signature cells along each axis.
	DefaultGridSize = 50

	// DefaultScale multiplies the summed cell distances. It equals
	// DefaultGridSize²/25 and is kept as a fixed factor so that accepted
	// thresholds from earlier runs keep their meaning.
	DefaultScale = DefaultGridSize * DefaultGridSize / 25.0

	// parallelMinWindow is the sample half-width from which cell rows are
	// averaged concurrently. Below it the goroutine overhead dominates.
	parallelMinWindow = 8
)

// RGB is one signature cell.
type RGB struct {
	R, G, B uint8
}

// Signature is a fixed-size grid of averaged colors.
//
// Pix holds Size*Size cells of three bytes each, row-major: cell (x, y)
// starts at (y*Size+x)*3. A Signature is never modified after it has been
// computed.
type Signature struct {
	Size int     `json:"size"`
	Pix  []uint8 `json:"pix"`
}

func newSignature(size int) *Signature {
	return &Signature{Size: size, Pix: make([]uint8, size*size*3)}
}

// At returns the color of cell (x, y).
func (s *Signature) At(x, y int) RGB {
	i := (y*s.Size + x) * 3
	return RGB{R: s.Pix[i], G: s.Pix[i+1], B: s.Pix[i+2]}
}

func (s *Signature) set(x, y int, c RGB) {
	i := (y*s.Size + x) * 3
	s.Pix[i], s.Pix[i+1], s.Pix[i+2] = c.R, c.G, c.B
}

// Validate checks that Pix matches Size. Signatures read back from a cache or
// the wire go through this before use.
func (s *Signature) Validate() error {
	if s == nil || s.Size < 1 {
		return errors.New(errors.ErrCodeInvalidSignature, "signature has no cells")
	}
	if len(s.Pix) != s.Size*s.Size*3 {
		return errors.New(errors.ErrCodeInvalidSignature,
			"signature of size %d needs %d bytes, has %d", s.Size, s.Size*s.Size*3, len(s.Pix))
	}
	return nil
}

// prop returns the proportional coordinate of the center of cell n.
// The value is rounded to single precision; thresholds recorded against the
// historical implementation depend on the exact sample positions this yields.
func prop(n, grid int) float32 {
	return float32((0.5 + float64(n)) / float64(grid))
}

// roundHalfUp rounds to the nearest integer, ties toward +Inf.
func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}

// Compute averages img into a grid×grid signature.
//
// Cell (x, y) is centered at the proportional position ((0.5+x)/grid,
// (0.5+y)/grid) and averages the square window [c-sampleSize, c+sampleSize)
// on both axes. Window pixels outside the image are skipped. A sampleSize of
// zero samples the center pixel alone.
func Compute(img image.Image, sampleSize, grid int) *Signature {
	s := raster.NewSampler(img)
	sig := newSignature(grid)

	row := func(y int) {
		cy := roundHalfUp(float64(prop(y, grid)) * float64(s.Height()))
		for x := 0; x < grid; x++ {
			cx := roundHalfUp(float64(prop(x, grid)) * float64(s.Width()))
			sig.set(x, y, averageAround(s, cx, cy, sampleSize))
		}
	}

	if sampleSize < parallelMinWindow {
		for y := 0; y < grid; y++ {
			row(y)
		}
		return sig
	}

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for y := 0; y < grid; y++ {
		g.Go(func() error {
			row(y)
			return nil
		})
	}
	_ = g.Wait()
	return sig
}

func averageAround(s raster.Sampler, cx, cy, sampleSize int) RGB {
	x0, x1 := cx-sampleSize, cx+sampleSize
	y0, y1 := cy-sampleSize, cy+sampleSize
	if sampleSize == 0 {
		x1, y1 = cx+1, cy+1
	}

	var accR, accG, accB float64
	n := 0
	for x := x0; x < x1; x++ {
		for y := y0; y < y1; y++ {
			r, g, b, ok := s.RGB(x, y)
			if !ok {
				continue
			}
			accR += float64(r)
			accG += float64(g)
			accB += float64(b)
			n++
		}
	}
	if n == 0 {
		return RGB{}
	}
	return RGB{
		R: clamp8(roundHalfUp(accR / float64(n))),
		G: clamp8(roundHalfUp(accG / float64(n))),
		B: clamp8(roundHalfUp(accB / float64(n))),
	}
}

func clamp8(v int) uint8 {
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	}
	return uint8(v)
}

// Distance sums the Euclidean RGB distance of every cell pair and multiplies
// the total by scale. Signatures of different sizes cannot be compared.
func Distance(a, b *Signature, scale float64) (float64, error) {
	if err := a.Validate(); err != nil {
		return 0, err
	}
	if err := b.Validate(); err != nil {
		return 0, err
	}
	if a.Size != b.Size {
		return 0, errors.New(errors.ErrCodeInvalidSignature,
			"cannot compare signatures of size %d and %d", a.Size, b.Size)
	}

	var dist float64
	for x := 0; x < a.Size; x++ {
		for y := 0; y < a.Size; y++ {
			c1, c2 := a.At(x, y), b.At(x, y)
			dr := float64(int(c1.R) - int(c2.R))
			dg := float64(int(c1.G) - int(c2.G))
			db := float64(int(c1.B) - int(c2.B))
			dist += math.Sqrt(dr*dr + dg*dg + db*db)
		}
	}
	return dist * scale, nil
}

package raster

import (
	"image"
	"image/color"
)

// Sampler gives random access to the first three 8-bit channels of an image.
//
// Coordinates are relative to the image's top-left corner, so (0, 0) is
// always the first pixel regardless of Bounds().Min. Reads outside the image
// return ok == false instead of panicking.
type Sampler interface {
	Width() int
	Height() int
	RGB(x, y int) (r, g, b uint8, ok bool)
}

// NewSampler returns the fastest [Sampler] for img's concrete type.
func NewSampler(img image.Image) Sampler {
	b := img.Bounds()
	base := samplerBase{min: b.Min, w: b.Dx(), h: b.Dy()}
	switch im := img.(type) {
	case *image.NRGBA:
		return &nrgbaSampler{samplerBase: base, img: im}
	case *image.RGBA:
		return &rgbaSampler{samplerBase: base, img: im}
	case *image.Gray:
		return &graySampler{samplerBase: base, img: im}
	case *image.Gray16:
		return &gray16Sampler{samplerBase: base, img: im}
	default:
		return &genericSampler{samplerBase: base, img: img}
	}
}

type samplerBase struct {
	min  image.Point
	w, h int
}

func (s samplerBase) Width() int  { return s.w }
func (s samplerBase) Height() int { return s.h }

func (s samplerBase) inside(x, y int) bool {
	return x >= 0 && y >= 0 && x < s.w && y < s.h
}

type nrgbaSampler struct {
	samplerBase
	img *image.NRGBA
}

func (s *nrgbaSampler) RGB(x, y int) (uint8, uint8, uint8, bool) {
	if !s.inside(x, y) {
		return 0, 0, 0, false
	}
	i := s.img.PixOffset(x+s.min.X, y+s.min.Y)
	p := s.img.Pix[i : i+3 : i+3]
	return p[0], p[1], p[2], true
}

type rgbaSampler struct {
	samplerBase
	img *image.RGBA
}

func (s *rgbaSampler) RGB(x, y int) (uint8, uint8, uint8, bool) {
	if !s.inside(x, y) {
		return 0, 0, 0, false
	}
	i := s.img.PixOffset(x+s.min.X, y+s.min.Y)
	p := s.img.Pix[i : i+4 : i+4]
	switch a := p[3]; a {
	case 0xff:
		return p[0], p[1], p[2], true
	case 0:
		return 0, 0, 0, true
	default:
		return unpremul(p[0], a), unpremul(p[1], a), unpremul(p[2], a), true
	}
}

func unpremul(c, a uint8) uint8 {
	return uint8((uint32(c)*0xff + uint32(a)/2) / uint32(a))
}

// graySampler reports the single gray channel as red. Green and blue do not
// exist in the source and read as zero.
type graySampler struct {
	samplerBase
	img *image.Gray
}

func (s *graySampler) RGB(x, y int) (uint8, uint8, uint8, bool) {
	if !s.inside(x, y) {
		return 0, 0, 0, false
	}
	return s.img.Pix[s.img.PixOffset(x+s.min.X, y+s.min.Y)], 0, 0, true
}

type gray16Sampler struct {
	samplerBase
	img *image.Gray16
}

func (s *gray16Sampler) RGB(x, y int) (uint8, uint8, uint8, bool) {
	if !s.inside(x, y) {
		return 0, 0, 0, false
	}
	return s.img.Pix[s.img.PixOffset(x+s.min.X, y+s.min.Y)], 0, 0, true
}

type genericSampler struct {
	samplerBase
	img image.Image
}

func (s *genericSampler) RGB(x, y int) (uint8, uint8, uint8, bool) {
	if !s.inside(x, y) {
		return 0, 0, 0, false
	}
	c := color.NRGBAModel.Convert(s.img.At(x+s.min.X, y+s.min.Y)).(color.NRGBA)
	return c.R, c.G, c.B, true
}

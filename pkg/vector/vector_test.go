package vector

import (
	"context"
	stderrors "errors"
	"image"
	"os/exec"
	"testing"

	"github.com/matzehuels/simcheck/pkg/errors"
	"github.com/matzehuels/simcheck/pkg/raster"
)

const twoHalves = `<svg xmlns="http://www.w3.org/2000/svg" width="10" height="10" viewBox="0 0 10 10">
  <rect x="0" y="0" width="5" height="10" fill="#ff0000"/>
  <rect x="5" y="0" width="5" height="10" fill="#0000ff"/>
</svg>`

func rgbAt(img image.Image, x, y int) [3]uint8 {
	r, g, b, _ := raster.NewSampler(img).RGB(x, y)
	return [3]uint8{r, g, b}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		want    Rasterizer
		wantErr bool
	}{
		{"", OKSVG{}, false},
		{"oksvg", OKSVG{}, false},
		{"RSVG", RSVG{}, false},
		{"inkscape", nil, true},
	}
	for _, tt := range tests {
		got, err := New(tt.name)
		if (err != nil) != tt.wantErr {
			t.Errorf("New(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("New(%q) = %T, want %T", tt.name, got, tt.want)
		}
	}
}

func testRasterizer(t *testing.T, r Rasterizer) {
	t.Helper()
	ctx := context.Background()

	img, err := r.Rasterize(ctx, []byte(twoHalves), 40, 20)
	if err != nil {
		t.Fatalf("Rasterize: %v", err)
	}
	if img.Bounds().Dx() != 40 || img.Bounds().Dy() != 20 {
		t.Fatalf("bounds = %v, want 40x20", img.Bounds())
	}
	if got := rgbAt(img, 5, 10); got != [3]uint8{255, 0, 0} {
		t.Errorf("left pixel = %v, want red", got)
	}
	if got := rgbAt(img, 35, 10); got != [3]uint8{0, 0, 255} {
		t.Errorf("right pixel = %v, want blue", got)
	}
}

func TestOKSVG(t *testing.T) {
	testRasterizer(t, OKSVG{})
}

func TestRSVG(t *testing.T) {
	if _, err := exec.LookPath(rsvgTool); err != nil {
		t.Skip("rsvg-convert not installed")
	}
	testRasterizer(t, RSVG{})
}

func TestOKSVGErrors(t *testing.T) {
	ctx := context.Background()

	_, err := OKSVG{}.Rasterize(ctx, []byte("plain text"), 10, 10)
	var re *RasterizationError
	if !stderrors.As(err, &re) {
		t.Fatalf("error = %v, want *RasterizationError", err)
	}
	if !errors.Is(err, errors.ErrCodeVectorRasterization) {
		t.Errorf("code = %s, want %s", errors.GetCode(err), errors.ErrCodeVectorRasterization)
	}

	if _, err := (OKSVG{}).Rasterize(ctx, []byte("<svg><rect></svg>"), 10, 10); !errors.Is(err, errors.ErrCodeVectorRasterization) {
		t.Errorf("malformed markup error = %v, want %s", err, errors.ErrCodeVectorRasterization)
	}

	if _, err := (OKSVG{}).Rasterize(ctx, []byte(twoHalves), 0, 10); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("zero width error = %v, want %s", err, errors.ErrCodeInvalidInput)
	}
}

func TestRasterizationErrorWithSource(t *testing.T) {
	e := &RasterizationError{Backend: BackendRSVG, Diagnostic: "bad path"}
	named := e.WithSource("logo.svg")
	if e.Source != "" {
		t.Error("WithSource must not modify the receiver")
	}
	if got, want := named.Error(), "rasterize logo.svg with rsvg: bad path"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

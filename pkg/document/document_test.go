package document

import (
	"context"
	"image"
	"image/color"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/matzehuels/simcheck/pkg/errors"
	"github.com/matzehuels/simcheck/pkg/raster"
)

const simpleDOT = `digraph G { bgcolor="transparent"; a -> b; }`

func TestKindFromPath(t *testing.T) {
	tests := []struct {
		path string
		want Kind
		ok   bool
	}{
		{"report.pdf", KindPDF, true},
		{"REPORT.PDF", KindPDF, true},
		{"graph.dot", KindDOT, true},
		{"graph.gv", KindDOT, true},
		{"map.png", "", false},
	}
	for _, tt := range tests {
		got, ok := KindFromPath(tt.path)
		if got != tt.want || ok != tt.ok {
			t.Errorf("KindFromPath(%q) = %q, %v, want %q, %v", tt.path, got, ok, tt.want, tt.ok)
		}
	}
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "g.dot")
	if err := os.WriteFile(path, []byte(simpleDOT), 0644); err != nil {
		t.Fatal(err)
	}
	doc, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if doc.Name != "g.dot" || doc.Kind != KindDOT || string(doc.Data) != simpleDOT {
		t.Errorf("Open = %+v", doc)
	}
	if _, err := Open(filepath.Join(dir, "x.txt")); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("Open(txt) error = %v, want %s", err, errors.ErrCodeInvalidFormat)
	}
}

func TestGraphvizRenderer(t *testing.T) {
	ctx := context.Background()
	doc := Document{Name: "g.dot", Kind: KindDOT, Data: []byte(simpleDOT)}

	img, err := GraphvizRenderer{}.RenderPage(ctx, doc, 0)
	if err != nil {
		t.Fatalf("RenderPage: %v", err)
	}
	b := img.Bounds()
	if b.Dx() < 10 || b.Dy() < 10 {
		t.Fatalf("page size = %v, want a visible graph", b)
	}
	// Transparent background is flattened onto white.
	if r, g, bl, _ := raster.NewSampler(img).RGB(0, 0); r != 255 || g != 255 || bl != 255 {
		t.Errorf("corner = %d,%d,%d, want white", r, g, bl)
	}

	for _, page := range []int{-1, 1} {
		if _, err := (GraphvizRenderer{}).RenderPage(ctx, doc, page); !errors.Is(err, errors.ErrCodeInvalidPage) {
			t.Errorf("page %d error = %v, want %s", page, err, errors.ErrCodeInvalidPage)
		}
	}
}

func TestGraphvizRendererBadInput(t *testing.T) {
	doc := Document{Name: "bad.dot", Kind: KindDOT, Data: []byte("digraph {")}
	if _, err := (GraphvizRenderer{}).RenderPage(context.Background(), doc, 0); !errors.Is(err, errors.ErrCodeDocumentRender) {
		t.Errorf("error = %v, want %s", err, errors.ErrCodeDocumentRender)
	}
}

func TestGhostscriptRendererPageRange(t *testing.T) {
	doc := Document{Name: "r.pdf", Kind: KindPDF}
	if _, err := (GhostscriptRenderer{}).RenderPage(context.Background(), doc, -1); !errors.Is(err, errors.ErrCodeInvalidPage) {
		t.Errorf("error = %v, want %s", err, errors.ErrCodeInvalidPage)
	}
}

func TestGhostscriptRenderer(t *testing.T) {
	if _, err := exec.LookPath(gsTool); err != nil {
		t.Skip("ghostscript not installed")
	}
	doc := Document{Name: "one.pdf", Kind: KindPDF, Data: []byte(onePagePDF)}
	ctx := context.Background()

	img, err := GhostscriptRenderer{}.RenderPage(ctx, doc, 0)
	if err != nil {
		t.Fatalf("RenderPage: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 100 || b.Dy() != 50 {
		t.Errorf("page size = %v, want 100x50 at 72 dpi", b)
	}
	if _, err := (GhostscriptRenderer{}).RenderPage(ctx, doc, 3); err == nil {
		t.Error("page 3 of a one-page PDF rendered without error")
	}
}

func TestDispatcher(t *testing.T) {
	ctx := context.Background()
	d := NewDispatcher()

	stub := image.NewRGBA(image.Rect(0, 0, 3, 3))
	d.Register(KindPDF, PageRendererFunc(func(context.Context, Document, int) (image.Image, error) {
		return stub, nil
	}))
	got, err := d.RenderPage(ctx, Document{Kind: KindPDF}, 0)
	if err != nil || got != image.Image(stub) {
		t.Errorf("RenderPage(pdf) = %v, %v, want stub", got, err)
	}
	if _, err := d.RenderPage(ctx, Document{Kind: "docx"}, 0); !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("unknown kind error = %v, want %s", err, errors.ErrCodeUnsupported)
	}
}

func TestExportPage(t *testing.T) {
	ctx := context.Background()
	page := image.NewRGBA(image.Rect(0, 0, 4, 2))
	page.Set(1, 1, color.RGBA{G: 255, A: 255})
	r := PageRendererFunc(func(_ context.Context, _ Document, n int) (image.Image, error) {
		if n != 2 {
			t.Errorf("page = %d, want 2", n)
		}
		return page, nil
	})

	out := filepath.Join(t.TempDir(), "page.png")
	if err := ExportPage(ctx, r, Document{Name: "r.pdf"}, 2, out); err != nil {
		t.Fatalf("ExportPage: %v", err)
	}
	img, err := raster.DecodeFile(out)
	if err != nil {
		t.Fatalf("DecodeFile: %v", err)
	}
	if _, g, _, _ := raster.NewSampler(img).RGB(1, 1); g != 255 {
		t.Errorf("exported pixel green = %d, want 255", g)
	}

	if err := ExportPage(ctx, r, Document{}, 2, "page.svg"); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("svg target error = %v, want %s", err, errors.ErrCodeInvalidFormat)
	}
}

// onePagePDF is a minimal 100x50pt PDF with a black rectangle.
const onePagePDF = `%PDF-1.4
1 0 obj << /Type /Catalog /Pages 2 0 R >> endobj
2 0 obj << /Type /Pages /Kids [3 0 R] /Count 1 >> endobj
3 0 obj << /Type /Page /Parent 2 0 R /MediaBox [0 0 100 50] /Contents 4 0 R >> endobj
4 0 obj << /Length 15 >> stream
0 0 50 25 re f
endstream endobj
trailer << /Root 1 0 R >>
%%EOF
`

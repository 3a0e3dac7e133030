package document

import (
	"context"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/simcheck/pkg/errors"
	"github.com/matzehuels/simcheck/pkg/raster"
)

// Kind identifies a document format.
type Kind string

const (
	KindDOT Kind = "dot"
	KindPDF Kind = "pdf"
)

// KindFromPath maps a file extension to a document kind.
func KindFromPath(path string) (Kind, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".dot", ".gv":
		return KindDOT, true
	case ".pdf":
		return KindPDF, true
	}
	return "", false
}

// Document is a rendered-on-demand document held in memory.
type Document struct {
	Name string
	Kind Kind
	Data []byte
}

// Open reads a document, inferring its kind from the extension.
func Open(path string) (Document, error) {
	kind, ok := KindFromPath(path)
	if !ok {
		return Document{}, errors.New(errors.ErrCodeInvalidFormat, "unknown document extension %q", filepath.Ext(path))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, err
	}
	return Document{Name: filepath.Base(path), Kind: kind, Data: data}, nil
}

// PageRenderer renders one page of a document.
type PageRenderer interface {
	RenderPage(ctx context.Context, doc Document, page int) (image.Image, error)
}

// PageRendererFunc adapts a function to [PageRenderer].
type PageRendererFunc func(ctx context.Context, doc Document, page int) (image.Image, error)

// RenderPage calls f.
func (f PageRendererFunc) RenderPage(ctx context.Context, doc Document, page int) (image.Image, error) {
	return f(ctx, doc, page)
}

// Dispatcher routes documents to a renderer by kind.
type Dispatcher struct {
	renderers map[Kind]PageRenderer
}

// NewDispatcher returns a Dispatcher with the Graphviz and Ghostscript
// renderers registered.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{renderers: map[Kind]PageRenderer{
		KindDOT: GraphvizRenderer{},
		KindPDF: GhostscriptRenderer{},
	}}
}

// Register sets the renderer for kind, replacing any previous one.
func (d *Dispatcher) Register(kind Kind, r PageRenderer) {
	if d.renderers == nil {
		d.renderers = make(map[Kind]PageRenderer)
	}
	d.renderers[kind] = r
}

// RenderPage implements [PageRenderer].
func (d *Dispatcher) RenderPage(ctx context.Context, doc Document, page int) (image.Image, error) {
	r, ok := d.renderers[doc.Kind]
	if !ok {
		return nil, errors.New(errors.ErrCodeUnsupported, "no renderer for %s documents", doc.Kind)
	}
	return r.RenderPage(ctx, doc, page)
}

// ExportPage renders page of doc with r and writes it to fileName, choosing
// the image format from the extension.
func ExportPage(ctx context.Context, r PageRenderer, doc Document, page int, fileName string) error {
	if _, err := raster.FormatFromPath(fileName); err != nil {
		return err
	}
	img, err := r.RenderPage(ctx, doc, page)
	if err != nil {
		return err
	}
	return raster.EncodeFile(fileName, img)
}

func checkPage(doc Document, page, pages int) error {
	if page < 0 || (pages > 0 && page >= pages) {
		return errors.New(errors.ErrCodeInvalidPage, "%s has no page %d", doc.Name, page)
	}
	return nil
}

func renderFailed(doc Document, err error) error {
	return errors.Wrap(errors.ErrCodeDocumentRender, err, "render %s", doc.Name)
}

func opaque(img image.Image) *image.RGBA {
	return raster.Flatten(img, color.White)
}

package document

import (
	"context"
	"fmt"
	"image"

	"github.com/goccy/go-graphviz"
)

// GraphvizRenderer renders DOT documents in process. The page size is the
// layout size Graphviz computes for the graph.
type GraphvizRenderer struct{}

// RenderPage implements [PageRenderer]. Only page 0 exists.
func (GraphvizRenderer) RenderPage(ctx context.Context, doc Document, page int) (image.Image, error) {
	if err := checkPage(doc, page, 1); err != nil {
		return nil, err
	}

	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, renderFailed(doc, err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes(doc.Data)
	if err != nil {
		return nil, renderFailed(doc, err)
	}
	if g == nil {
		return nil, renderFailed(doc, fmt.Errorf("parse DOT: no graph"))
	}
	defer g.Close()

	img, err := gv.RenderImage(ctx, g)
	if err != nil {
		return nil, renderFailed(doc, err)
	}
	return opaque(img), nil
}

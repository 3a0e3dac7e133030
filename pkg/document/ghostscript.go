package document

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/matzehuels/simcheck/pkg/errors"
	"github.com/matzehuels/simcheck/pkg/raster"
)

const (
	gsTool = "gs"

	// DefaultResolution renders one PDF point as one pixel.
	DefaultResolution = 72
)

// GhostscriptRenderer renders PDF pages with the gs command line tool.
// Requires Ghostscript: brew install ghostscript (macOS), apt install ghostscript (Linux).
type GhostscriptRenderer struct {
	// Resolution in DPI. Zero selects DefaultResolution.
	Resolution int
}

// RenderPage implements [PageRenderer].
func (r GhostscriptRenderer) RenderPage(ctx context.Context, doc Document, page int) (image.Image, error) {
	if err := checkPage(doc, page, 0); err != nil {
		return nil, err
	}
	if _, err := exec.LookPath(gsTool); err != nil {
		return nil, errors.New(errors.ErrCodeToolMissing,
			"pdf rendering requires Ghostscript. Install with:\n  macOS:  brew install ghostscript\n  Linux:  apt install ghostscript")
	}
	res := r.Resolution
	if res <= 0 {
		res = DefaultResolution
	}

	dir, err := os.MkdirTemp("", "simcheck-gs-")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	in := filepath.Join(dir, "in.pdf")
	out := filepath.Join(dir, "page.png")
	if err := os.WriteFile(in, doc.Data, 0600); err != nil {
		return nil, err
	}

	// Ghostscript numbers pages from 1.
	n := page + 1
	cmd := exec.CommandContext(ctx, gsTool, "-q",
		"-dSAFER", "-dBATCH", "-dNOPAUSE",
		"-sDEVICE=png16m",
		fmt.Sprintf("-r%d", res),
		"-dTextAlphaBits=4",
		"-dGraphicsAlphaBits=4",
		fmt.Sprintf("-dFirstPage=%d", n),
		fmt.Sprintf("-dLastPage=%d", n),
		"-o", out,
		in,
	)
	var errBuf bytes.Buffer
	cmd.Stderr = &errBuf
	if err := cmd.Run(); err != nil {
		return nil, renderFailed(doc, fmt.Errorf("gs: %v: %s", err, strings.TrimSpace(errBuf.String())))
	}

	// gs exits cleanly without output when the page is past the end.
	if _, err := os.Stat(out); os.IsNotExist(err) {
		return nil, errors.New(errors.ErrCodeInvalidPage, "%s has no page %d", doc.Name, page)
	}
	img, err := raster.DecodeFile(out)
	if err != nil {
		return nil, renderFailed(doc, err)
	}
	return opaque(img), nil
}

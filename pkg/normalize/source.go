package normalize

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/matzehuels/simcheck/pkg/document"
	"github.com/matzehuels/simcheck/pkg/errors"
	"github.com/matzehuels/simcheck/pkg/raster"
)

// Source is one layer of a composite image.
type Source interface {
	Name() string
}

// RasterSource is an encoded raster image.
type RasterSource struct {
	ID   string
	Data []byte
}

func (s RasterSource) Name() string { return s.ID }

// VectorSource is SVG markup.
type VectorSource struct {
	ID     string
	Markup []byte
}

func (s VectorSource) Name() string { return s.ID }

// DocumentSource is a single page of a document.
type DocumentSource struct {
	Doc  document.Document
	Page int
}

func (s DocumentSource) Name() string { return fmt.Sprintf("%s#%d", s.Doc.Name, s.Page) }

// ErrEmptySourceList is returned by Merge when it is given no sources.
var ErrEmptySourceList = errors.New(errors.ErrCodeEmptySourceList, "at least one source is required")

// UnsupportedSourceError reports a source that no collaborator can handle.
type UnsupportedSourceError struct {
	Source string
	Reason string
}

func (e *UnsupportedSourceError) Error() string {
	return fmt.Sprintf("unsupported source %s: %s", e.Source, e.Reason)
}

// Code implements errors.Coder.
func (e *UnsupportedSourceError) Code() errors.Code { return errors.ErrCodeUnsupportedSource }

// Classify decides how to load the file at path from its extension and,
// for rasters, its content. Documents select page 0.
func Classify(path string, data []byte) (Source, error) {
	name := filepath.Base(path)
	if strings.EqualFold(filepath.Ext(path), ".svg") {
		return VectorSource{ID: name, Markup: data}, nil
	}
	if kind, ok := document.KindFromPath(path); ok {
		return DocumentSource{Doc: document.Document{Name: name, Kind: kind, Data: data}}, nil
	}
	if _, ok := raster.Sniff(data); ok {
		return RasterSource{ID: name, Data: data}, nil
	}
	if looksLikeSVG(data) {
		return VectorSource{ID: name, Markup: data}, nil
	}
	return nil, &UnsupportedSourceError{Source: name, Reason: "not a known raster, vector or document format"}
}

func looksLikeSVG(data []byte) bool {
	head := data[:min(len(data), 512)]
	return bytes.Contains(head, []byte("<svg"))
}

// SplitPage splits a "file.pdf#3" source argument into the path and the
// zero-based page. Arguments without a numeric "#N" suffix are returned
// whole with page 0.
func SplitPage(arg string) (string, int, error) {
	i := strings.LastIndexByte(arg, '#')
	if i < 0 {
		return arg, 0, nil
	}
	page, err := strconv.Atoi(arg[i+1:])
	if err != nil {
		return arg, 0, nil
	}
	if page < 0 {
		return "", 0, errors.New(errors.ErrCodeInvalidPage, "negative page in %q", arg)
	}
	return arg[:i], page, nil
}

package raster

import (
	"bufio"
	"bytes"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/matzehuels/simcheck/pkg/errors"
)

// Format names a raster file format.
type Format string

// Supported formats. WebP is decode-only.
const (
	FormatPNG  Format = "png"
	FormatTIFF Format = "tiff"
	FormatBMP  Format = "bmp"
	FormatJPEG Format = "jpeg"
	FormatGIF  Format = "gif"
	FormatWebP Format = "webp"
)

// jpegQuality is used for JPEG output. Fixtures should not be JPEG anyway.
const jpegQuality = 95

var extToFormat = map[string]Format{
	".png":  FormatPNG,
	".tif":  FormatTIFF,
	".tiff": FormatTIFF,
	".bmp":  FormatBMP,
	".jpg":  FormatJPEG,
	".jpeg": FormatJPEG,
	".gif":  FormatGIF,
	".webp": FormatWebP,
}

// FormatFromPath maps a file extension to a [Format].
func FormatFromPath(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if f, ok := extToFormat[ext]; ok {
		return f, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unknown raster extension %q", ext)
}

// Extension returns the canonical file extension (with dot) for f.
func (f Format) Extension() string {
	if f == FormatJPEG {
		return ".jpg"
	}
	return "." + string(f)
}

// Decode reads an image in any supported format.
// The returned format is the one detected from the data, not from a name.
func Decode(r io.Reader) (image.Image, Format, error) {
	img, name, err := image.Decode(bufio.NewReader(r))
	if err != nil {
		return nil, "", errors.Wrap(errors.ErrCodeDecode, err, "decode image")
	}
	return img, Format(name), nil
}

// DecodeBytes is [Decode] over an in-memory buffer.
func DecodeBytes(data []byte) (image.Image, Format, error) {
	return Decode(bytes.NewReader(data))
}

// DecodeFile reads and decodes the image at path.
// A missing file is reported with the os error intact so callers can test
// it with os.IsNotExist / errors.Is(err, fs.ErrNotExist).
func DecodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(bufio.NewReader(f))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDecode, err, "decode %s", path)
	}
	return img, nil
}

// Sniff reports the format of data without decoding the pixels.
func Sniff(data []byte) (Format, bool) {
	_, name, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", false
	}
	return Format(name), true
}

// Dimensions reports the width and height encoded in data without decoding
// the pixels.
func Dimensions(data []byte) (width, height int, err error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, errors.Wrap(errors.ErrCodeDecode, err, "read image header")
	}
	return cfg.Width, cfg.Height, nil
}

// Encode writes img to w in format f.
// TIFF output is uncompressed.
func Encode(w io.Writer, img image.Image, f Format) error {
	var err error
	switch f {
	case FormatPNG:
		err = png.Encode(w, img)
	case FormatTIFF:
		err = tiff.Encode(w, img, &tiff.Options{Compression: tiff.Uncompressed})
	case FormatBMP:
		err = bmp.Encode(w, img)
	case FormatJPEG:
		err = jpeg.Encode(w, img, &jpeg.Options{Quality: jpegQuality})
	case FormatGIF:
		err = gif.Encode(w, img, nil)
	default:
		return errors.New(errors.ErrCodeUnsupported, "cannot encode %q", f)
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeEncode, err, "encode %s", f)
	}
	return nil
}

// EncodeBytes is [Encode] into a new buffer.
func EncodeBytes(img image.Image, f Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, img, f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodeFile writes img to path, choosing the format from the extension.
func EncodeFile(path string, img image.Image) error {
	f, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(out)
	if err := Encode(w, img, f); err != nil {
		out.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

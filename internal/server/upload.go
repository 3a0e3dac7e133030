package server

import (
	stderrors "errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/matzehuels/simcheck/pkg/errors"
)

// multipartMemory is how much of a multipart body is held in memory before
// parts spill to temporary files.
const multipartMemory = 8 << 20

// upload is a parsed multipart request whose files have been written to a
// private temporary directory. Callers must call cleanup.
type upload struct {
	form *multipart.Form
	dir  string
}

func parseUpload(r *http.Request) (*upload, error) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxBytes *http.MaxBytesError
		if stderrors.As(err, &maxBytes) {
			return nil, err
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse multipart form")
	}
	dir, err := os.MkdirTemp("", "simcheck-upload-*")
	if err != nil {
		return nil, err
	}
	return &upload{form: r.MultipartForm, dir: dir}, nil
}

func (u *upload) cleanup() {
	u.form.RemoveAll()
	os.RemoveAll(u.dir)
}

// files saves every file of field in order and returns their paths.
// Each file keeps its original base name behind an index prefix, so that
// classification by extension still works and duplicates do not collide.
func (u *upload) files(field string) ([]string, error) {
	headers := u.form.File[field]
	paths := make([]string, 0, len(headers))
	for i, fh := range headers {
		name := filepath.Base(fh.Filename)
		if err := errors.ValidateFilename(name); err != nil {
			return nil, err
		}
		path := filepath.Join(u.dir, fmt.Sprintf("%02d-%s", i, name))
		if err := saveFile(fh, path); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// file saves the single file of field. ok is false when the field is absent.
func (u *upload) file(field string) (path, name string, ok bool, err error) {
	headers := u.form.File[field]
	if len(headers) == 0 {
		return "", "", false, nil
	}
	if len(headers) > 1 {
		return "", "", false, errors.New(errors.ErrCodeInvalidInput, "field %q takes one file (got %d)", field, len(headers))
	}
	paths, err := u.files(field)
	if err != nil {
		return "", "", false, err
	}
	return paths[0], filepath.Base(headers[0].Filename), true, nil
}

func (u *upload) value(key string) string {
	if v := u.form.Value[key]; len(v) > 0 {
		return v[0]
	}
	return ""
}

func (u *upload) intValue(key string) (int, bool, error) {
	v := u.value(key)
	if v == "" {
		return 0, false, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false, errors.New(errors.ErrCodeInvalidInput, "%s must be an integer (got %q)", key, v)
	}
	return n, true, nil
}

func (u *upload) floatValue(key string) (float64, bool, error) {
	v := u.value(key)
	if v == "" {
		return 0, false, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false, errors.New(errors.ErrCodeInvalidInput, "%s must be a number (got %q)", key, v)
	}
	return f, true, nil
}

func (u *upload) boolValue(key string) (bool, error) {
	v := u.value(key)
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, errors.New(errors.ErrCodeInvalidInput, "%s must be a boolean (got %q)", key, v)
	}
	return b, nil
}

func saveFile(fh *multipart.FileHeader, path string) error {
	src, err := fh.Open()
	if err != nil {
		return err
	}
	defer src.Close()
	dst, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return err
	}
	return dst.Close()
}

package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/simcheck/pkg/config"
	"github.com/matzehuels/simcheck/pkg/errors"
	"github.com/matzehuels/simcheck/pkg/pipeline"
	"github.com/matzehuels/simcheck/pkg/raster"
	"github.com/matzehuels/simcheck/pkg/store"
)

func solidPNG(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	data, err := raster.EncodeBytes(img, raster.FormatPNG)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

type part struct {
	field, name string
	data        []byte
}

func multipartBody(t *testing.T, parts []part, values map[string]string) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, p := range parts {
		fw, err := mw.CreateFormFile(p.field, p.name)
		if err != nil {
			t.Fatal(err)
		}
		fw.Write(p.data)
	}
	for k, v := range values {
		mw.WriteField(k, v)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, mw.FormDataContentType()
}

func newTestServer(t *testing.T, st store.Store) *Server {
	t.Helper()
	runner, err := pipeline.NewRunner(nil, nil, st, config.Default(), log.New(io.Discard))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { runner.Close() })
	return New(runner, config.ServerConfig{MaxUploadMB: 4}, log.New(io.Discard))
}

func post(t *testing.T, s *Server, path string, parts []part, values map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	body, ct := multipartBody(t, parts, values)
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v (status %d)", err, rec.Code)
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp healthResponse
	decode(t, rec, &resp)
	if resp.Status != "ok" || resp.Build.Version == "" {
		t.Errorf("health = %+v", resp)
	}
}

func TestDistance(t *testing.T) {
	s := newTestServer(t, nil)
	white := solidPNG(t, 200, 200, color.White)

	rec := post(t, s, "/v1/distance", []part{
		{"reference", "a.png", white},
		{"candidate", "b.png", solidPNG(t, 100, 100, color.White)},
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	var resp distanceResponse
	decode(t, rec, &resp)
	if resp.Distance != 0 {
		t.Errorf("distance = %v, want 0", resp.Distance)
	}
}

func TestDistanceErrors(t *testing.T) {
	s := newTestServer(t, nil)
	white := solidPNG(t, 200, 200, color.White)

	tests := []struct {
		name   string
		parts  []part
		values map[string]string
		status int
		code   errors.Code
	}{
		{"missing candidate", []part{{"reference", "a.png", white}}, nil, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"bad sample size", []part{{"reference", "a.png", white}, {"candidate", "b.png", white}},
			map[string]string{"sample_size": "x"}, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"sample too large", []part{{"reference", "a.png", white}, {"candidate", "b.png", white}},
			map[string]string{"sample_size": "50"}, http.StatusBadRequest, errors.ErrCodeInvalidSampleSize},
		{"undecodable", []part{{"reference", "a.png", []byte("nope")}, {"candidate", "b.png", white}},
			nil, http.StatusUnprocessableEntity, errors.ErrCodeDecode},
		{"hidden name", []part{{"reference", ".a.png", white}, {"candidate", "b.png", white}},
			nil, http.StatusBadRequest, errors.ErrCodeInvalidPath},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(t, s, "/v1/distance", tt.parts, tt.values)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.status, rec.Body)
			}
			var resp errorResponse
			decode(t, rec, &resp)
			if resp.Code != tt.code {
				t.Errorf("code = %q, want %q", resp.Code, tt.code)
			}
		})
	}
}

type compareBody struct {
	Outcome      string  `json:"outcome"`
	Distance     float64 `json:"distance"`
	ExpectedPath string  `json:"expected_path"`
	ActualPath   string  `json:"actual_path"`
	ActualPNG    []byte  `json:"actual_png"`
	Record       *store.Record
}

func TestCompareMissingReference(t *testing.T) {
	s := newTestServer(t, nil)
	rec := post(t, s, "/v1/compare", []part{
		{"sources", "render.png", solidPNG(t, 200, 200, color.White)},
	}, map[string]string{"expected_name": "expectedRender.tiff"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	var resp compareBody
	decode(t, rec, &resp)
	if resp.Outcome != "missing-reference" {
		t.Errorf("outcome = %q, want missing-reference", resp.Outcome)
	}
	if resp.ExpectedPath != "expectedRender.tiff" || resp.ActualPath != "actualRender.png" {
		t.Errorf("paths = %q, %q", resp.ExpectedPath, resp.ActualPath)
	}
	img, _, err := raster.DecodeBytes(resp.ActualPNG)
	if err != nil {
		t.Fatalf("actual_png: %v", err)
	}
	if img.Bounds().Dx() != 200 {
		t.Errorf("actual width = %d, want 200", img.Bounds().Dx())
	}
}

func TestComparePassAndExceeded(t *testing.T) {
	s := newTestServer(t, nil)
	white := solidPNG(t, 200, 200, color.White)
	black := solidPNG(t, 200, 200, color.Black)

	tests := []struct {
		name     string
		expected []byte
		outcome  string
		artifact bool
	}{
		{"pass", white, "pass", false},
		{"exceeded", black, "exceeded", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(t, s, "/v1/compare", []part{
				{"expected", "expectedPage.png", tt.expected},
				{"sources", "page.png", white},
			}, map[string]string{"max_distance": "10"})
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
			}
			var resp compareBody
			decode(t, rec, &resp)
			if resp.Outcome != tt.outcome {
				t.Errorf("outcome = %q, want %q", resp.Outcome, tt.outcome)
			}
			if got := len(resp.ActualPNG) > 0; got != tt.artifact {
				t.Errorf("actual_png present = %v, want %v", got, tt.artifact)
			}
		})
	}
}

func TestCompareNoSources(t *testing.T) {
	s := newTestServer(t, nil)
	rec := post(t, s, "/v1/compare", nil, map[string]string{"expected_name": "expectedX.tiff"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var resp errorResponse
	decode(t, rec, &resp)
	if resp.Code != errors.ErrCodeEmptySourceList {
		t.Errorf("code = %q, want %q", resp.Code, errors.ErrCodeEmptySourceList)
	}
}

func TestMerge(t *testing.T) {
	s := newTestServer(t, nil)
	rec := post(t, s, "/v1/merge", []part{
		{"sources", "base.png", solidPNG(t, 40, 40, color.White)},
		{"sources", "top.png", solidPNG(t, 10, 10, color.Black)},
	}, map[string]string{"width": "30", "height": "20"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q", ct)
	}
	img, format, err := raster.DecodeBytes(rec.Body.Bytes())
	if err != nil || format != raster.FormatPNG {
		t.Fatalf("decode: %v (%s)", err, format)
	}
	if img.Bounds().Dx() != 30 || img.Bounds().Dy() != 20 {
		t.Errorf("bounds = %v, want 30x20", img.Bounds())
	}
	r, _, _, _ := raster.NewSampler(img).RGB(15, 10)
	if r != 0 {
		t.Errorf("top layer must cover the base, got red %d", r)
	}
}

func TestHistory(t *testing.T) {
	st, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatal(err)
	}
	s := newTestServer(t, st)

	rec := post(t, s, "/v1/compare", []part{
		{"sources", "render.png", solidPNG(t, 200, 200, color.White)},
	}, map[string]string{"expected_name": "expectedRender.tiff", "record": "true"})
	if rec.Code != http.StatusOK {
		t.Fatalf("compare status = %d, body %s", rec.Code, rec.Body)
	}
	var cmp compareBody
	decode(t, rec, &cmp)
	if cmp.Record == nil {
		t.Fatal("compare response has no record")
	}

	list := httptest.NewRecorder()
	s.Handler().ServeHTTP(list, httptest.NewRequest(http.MethodGet, "/v1/history?expected=expectedRender.tiff", nil))
	var recs []store.Record
	decode(t, list, &recs)
	if len(recs) != 1 || recs[0].ID != cmp.Record.ID {
		t.Fatalf("history = %+v, want the recorded comparison", recs)
	}

	one := httptest.NewRecorder()
	s.Handler().ServeHTTP(one, httptest.NewRequest(http.MethodGet, fmt.Sprintf("/v1/history/%s", cmp.Record.ID), nil))
	if one.Code != http.StatusOK {
		t.Errorf("get status = %d", one.Code)
	}

	missing := httptest.NewRecorder()
	s.Handler().ServeHTTP(missing, httptest.NewRequest(http.MethodGet, "/v1/history/nope", nil))
	if missing.Code != http.StatusNotFound {
		t.Errorf("missing status = %d, want 404", missing.Code)
	}

	bad := httptest.NewRecorder()
	s.Handler().ServeHTTP(bad, httptest.NewRequest(http.MethodGet, "/v1/history?limit=-2", nil))
	if bad.Code != http.StatusBadRequest {
		t.Errorf("bad limit status = %d, want 400", bad.Code)
	}
}

func TestUploadTooLarge(t *testing.T) {
	s := newTestServer(t, nil)
	s.maxUpload = 1024
	rec := post(t, s, "/v1/distance", []part{
		{"reference", "a.png", bytes.Repeat([]byte{1}, 4096)},
	}, nil)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", rec.Code)
	}
}

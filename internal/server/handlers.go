package server

import (
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/simcheck/pkg/buildinfo"
	"github.com/matzehuels/simcheck/pkg/errors"
	"github.com/matzehuels/simcheck/pkg/pipeline"
	"github.com/matzehuels/simcheck/pkg/raster"
	"github.com/matzehuels/simcheck/pkg/signature"
	"github.com/matzehuels/simcheck/pkg/store"
)

type healthResponse struct {
	Status string         `json:"status"`
	Build  buildinfo.Info `json:"build"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Build: buildinfo.Get()})
}

type distanceResponse struct {
	Distance float64 `json:"distance"`
}

// handleDistance expects "reference" and "candidate" files and an optional
// "sample_size".
func (s *Server) handleDistance(w http.ResponseWriter, r *http.Request) {
	u, err := parseUpload(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer u.cleanup()

	ref, _, ok, err := u.file("reference")
	if err == nil && !ok {
		err = errors.New(errors.ErrCodeInvalidInput, "reference file is required")
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	cand, _, ok, err := u.file("candidate")
	if err == nil && !ok {
		err = errors.New(errors.ErrCodeInvalidInput, "candidate file is required")
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sampleSize, err := optionalInt(u, "sample_size")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	d, err := s.runner.Distance(r.Context(), ref, cand, sampleSize)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, distanceResponse{Distance: d})
}

type compareResponse struct {
	*pipeline.CompareResult
	// ActualPNG is the image under test, returned when the comparison
	// did not pass so the client can review and promote it.
	ActualPNG []byte `json:"actual_png,omitempty"`
}

// handleCompare expects an optional "expected" file, one or more "sources"
// files in paint order and the optional fields "width", "height",
// "max_distance", "sample_size" and "record".
func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	u, err := parseUpload(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer u.cleanup()

	opts, err := compareOptions(u)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.runner.Compare(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := compareResponse{CompareResult: res}
	if res.ArtifactWritten {
		if resp.ActualPNG, err = os.ReadFile(res.ActualPath); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	// Temporary paths mean nothing to the client.
	res.ExpectedPath = opts.Name
	res.ActualPath = ""
	if !res.Passed() {
		res.ActualPath = signature.ActualPath(opts.Name)
	}
	writeJSON(w, http.StatusOK, resp)
}

func compareOptions(u *upload) (pipeline.CompareOptions, error) {
	opts := pipeline.CompareOptions{MaxDistance: -1}

	expected, name, ok, err := u.file("expected")
	if err != nil {
		return opts, err
	}
	if !ok {
		name = u.value("expected_name")
		if name == "" {
			name = "expected.tiff"
		}
		if err := errors.ValidateFilename(name); err != nil {
			return opts, err
		}
		expected = filepath.Join(u.dir, "missing-"+name)
	}
	opts.ExpectedPath = expected
	opts.Name = name

	if opts.Sources, err = u.files("sources"); err != nil {
		return opts, err
	}
	if opts.Width, _, err = u.intValue("width"); err != nil {
		return opts, err
	}
	if opts.Height, _, err = u.intValue("height"); err != nil {
		return opts, err
	}
	if v, ok, err := u.floatValue("max_distance"); err != nil {
		return opts, err
	} else if ok {
		opts.MaxDistance = v
	}
	if opts.SampleSize, err = optionalInt(u, "sample_size"); err != nil {
		return opts, err
	}
	if opts.Record, err = u.boolValue("record"); err != nil {
		return opts, err
	}
	return opts, nil
}

// handleMerge expects one or more "sources" files and optional "width" and
// "height". It responds with the merged PNG.
func (s *Server) handleMerge(w http.ResponseWriter, r *http.Request) {
	u, err := parseUpload(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer u.cleanup()

	sources, err := u.files("sources")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	width, _, err := u.intValue("width")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	height, _, err := u.intValue("height")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	img, _, err := s.runner.Merge(r.Context(), sources, width, height, false)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	data, err := raster.EncodeBytes(img, raster.FormatPNG)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	opts := store.ListOptions{ExpectedPath: r.URL.Query().Get("expected")}
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "limit must be a non-negative integer (got %q)", v))
			return
		}
		opts.Limit = n
	}
	recs, err := s.runner.Store.List(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if recs == nil {
		recs = []store.Record{}
	}
	writeJSON(w, http.StatusOK, recs)
}

func (s *Server) handleRecord(w http.ResponseWriter, r *http.Request) {
	rec, err := s.runner.Store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func optionalInt(u *upload, key string) (*int, error) {
	n, ok, err := u.intValue(key)
	if err != nil || !ok {
		return nil, err
	}
	return &n, nil
}

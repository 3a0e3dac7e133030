package server

import (
	"encoding/json"
	stderrors "errors"
	"io/fs"
	"net/http"

	"github.com/matzehuels/simcheck/pkg/errors"
	"github.com/matzehuels/simcheck/pkg/observability"
)

// errorResponse is the body of every non-2xx JSON response.
type errorResponse struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	observability.HTTP().OnError(r.Context(), r.Method, r.URL.Path, err)

	code := errors.GetCode(err)
	status := statusFor(err, code)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	msg := errors.UserMessage(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

func statusFor(err error, code errors.Code) int {
	var maxBytes *http.MaxBytesError
	if stderrors.As(err, &maxBytes) {
		return http.StatusRequestEntityTooLarge
	}
	if stderrors.Is(err, fs.ErrNotExist) {
		return http.StatusNotFound
	}
	switch code {
	case errors.ErrCodeInvalidInput,
		errors.ErrCodeInvalidSampleSize,
		errors.ErrCodeInvalidSignature,
		errors.ErrCodeInvalidFormat,
		errors.ErrCodeInvalidPage,
		errors.ErrCodeInvalidPath,
		errors.ErrCodeEmptySourceList:
		return http.StatusBadRequest
	case errors.ErrCodeUnsupportedSource,
		errors.ErrCodeUnsupported,
		errors.ErrCodeDecode,
		errors.ErrCodeVectorRasterization,
		errors.ErrCodeDocumentRender:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeToolMissing:
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}

package server

import (
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	json "github.com/goccy/go-json"

	"github.com/shaikhimroz/new-nfm-sub000/pkg/document"
	apperr "github.com/shaikhimroz/new-nfm-sub000/pkg/errors"
	"github.com/shaikhimroz/new-nfm-sub000/pkg/layout"
)

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Code     string              `json:"code"`
	Message  string              `json:"message"`
	Fields   []apperr.FieldError `json:"fields,omitempty"`
	Problems []document.Problem  `json:"problems,omitempty"`
}

func writeJSON(w http.ResponseWriter, logger *log.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode response", "error", err, "status", status)
	}
}

// statusFor maps an error code to the HTTP status reported for it.
func statusFor(err error) int {
	switch apperr.GetCode(err) {
	case apperr.ErrCodeInvalidInput:
		return http.StatusBadRequest
	case apperr.ErrCodeInvalidOperation:
		if errors.Is(err, layout.ErrWidgetNotFound) {
			return http.StatusNotFound
		}
		return http.StatusConflict
	case apperr.ErrCodeNotFound:
		return http.StatusNotFound
	case apperr.ErrCodeInvalidLayout, apperr.ErrCodeLoad:
		return http.StatusUnprocessableEntity
	case apperr.ErrCodePlacementExhausted:
		return http.StatusConflict
	case apperr.ErrCodeStorage:
		return http.StatusServiceUnavailable
	case apperr.ErrCodeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	body := ErrorResponse{
		Code:    string(apperr.GetCode(err)),
		Message: apperr.UserMessage(err),
		Fields:  apperr.FieldErrors(err),
	}
	var le *document.LoadError
	if errors.As(err, &le) {
		body.Problems = le.Problems
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		if body.Code == "" {
			body.Code = string(apperr.ErrCodeInternal)
			body.Message = "an unexpected error occurred"
		}
	} else {
		s.logger.Debug("request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	}
	writeJSON(w, s.logger, status, body)
}

// decode reads a JSON body into v and checks its validate tags.
func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return apperr.Wrap(apperr.ErrCodeInvalidInput, err, "invalid request body")
	}
	return apperr.ValidateStruct(apperr.ErrCodeInvalidInput, v)
}

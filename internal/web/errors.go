package web

// errors.go centralizes response encoding. Technical errors are logged with
// the chi request ID for correlation; clients get a small JSON envelope.

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/stringauthority/registry/internal/logging"
)

var (
	errBodyTooLarge = errors.New("request body too large")
	errBadYearParam = errors.New("year must be an integer")
)

// ErrorResponse is the JSON body for failed requests.
type ErrorResponse struct {
	Error string `json:"error"`
}

func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	logging.FromContext(r.Context()).Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
	)
	respondJSON(w, statusCode, ErrorResponse{Error: err.Error()})
}

func respondJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

package middleware

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/pondside/corpus/domain/corpus"
	"github.com/pondside/corpus/domain/search"
)

// errorResponse is the JSON body written for failed requests.
type errorResponse struct {
	Error string `json:"error"`
}

// WriteJSON writes v as a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError maps a service error onto its HTTP status and writes the JSON
// error body. Unknown errors become 500 with a generic message so internals
// never leak to the client.
func WriteError(w http.ResponseWriter, r *http.Request, err error, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}

	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		WriteJSON(w, status, errorResponse{Error: "internal server error"})
		return
	}

	logger.Warn("request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	WriteJSON(w, status, errorResponse{Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, corpus.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, corpus.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, corpus.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, search.ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

package httpx

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/jcmexdev/storefront-api/internal/storefront/core/apperr"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{
		Error:   code,
		Message: msg,
	})
}

// writeServiceError maps the apperr taxonomy onto HTTP. Anything outside it
// is logged and answered with fallback, never with the cause.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	var (
		verr *apperr.ValidationError
		nerr *apperr.NotFoundError
		cerr *apperr.ConflictError
	)
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:         "validation_error",
			Message:       verr.Message,
			MissingFields: verr.Fields,
		})
	case errors.As(err, &nerr):
		writeError(w, http.StatusNotFound, "not_found", nerr.Error())
	case errors.As(err, &cerr):
		writeError(w, http.StatusConflict, "conflict", cerr.Error())
	default:
		slog.ErrorContext(r.Context(), fallback, "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", fallback)
	}
}

const maxBodyBytes = 1 << 20

// decode reads a JSON body into v, answering 400 itself on failure.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return false
	}
	return true
}

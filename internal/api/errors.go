package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/teamtrack/teamtrack/internal/domain"
	"github.com/teamtrack/teamtrack/internal/logger"
)

// maxBodySize is the maximum allowed request body size (1 MB).
const maxBodySize = 1 << 20

// errorBody is the error response shape shared with the auth middleware.
type errorBody struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"errorMessage"`
}

const (
	msgInvalidBody = "Invalid request body."
	msgForbidden   = "You are not allowed to perform this action."
	msgInternal    = "Internal server error."
)

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, errorBody{Status: "error", ErrorMessage: message})
}

func writeJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// readJSON decodes the request body into v, enforcing a size limit.
func readJSON(r *http.Request, v any) error {
	lr := io.LimitReader(r.Body, maxBodySize)
	return json.NewDecoder(lr).Decode(v)
}

// writeServiceError maps a service error onto its HTTP status. The message of
// typed domain errors goes to the client unchanged; anything else is logged
// and reported as a generic 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validation *domain.ValidationError
		notFound   *domain.NotFoundError
		conflict   *domain.ConflictError
		authn      *domain.AuthenticationError
		storage    *domain.StorageError
	)
	switch {
	case errors.As(err, &validation):
		writeError(w, http.StatusBadRequest, validation.Message)
	case errors.As(err, &notFound):
		writeError(w, http.StatusNotFound, notFound.Error())
	case errors.As(err, &conflict):
		writeError(w, http.StatusConflict, conflict.Message)
	case errors.As(err, &authn):
		writeError(w, http.StatusUnauthorized, authn.Message)
	case errors.As(err, &storage):
		writeError(w, http.StatusInternalServerError, domain.StorageMessage)
	default:
		logger.FromRequest(r).Error().Err(err).Msg("unhandled service error")
		writeError(w, http.StatusInternalServerError, msgInternal)
	}
}

// pathID parses the named chi URL parameter as a positive id. On failure it
// writes a 400 and returns false.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "Invalid id \""+raw+"\".")
		return 0, false
	}
	return id, true
}

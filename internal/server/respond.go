package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/fritter-app/fritter/internal/models"
)

// writeJSON writes v as a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			slog.Error("failed to encode response", "error", err)
		}
	}
}

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error string `json:"error"`
}

// writeError translates a domain error kind into its HTTP status.
// Anything untyped is a genuine server fault and surfaces as a 500.
func writeError(w http.ResponseWriter, err error) {
	var (
		notFound     *models.NotFoundError
		forbidden    *models.ForbiddenError
		validation   *models.ValidationError
		conflict     *models.ConflictError
		precondition *models.PreconditionError
	)

	switch {
	case errors.As(err, &notFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
	case errors.As(err, &forbidden):
		writeJSON(w, http.StatusForbidden, errorBody{Error: err.Error()})
	case errors.As(err, &validation):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
	case errors.As(err, &conflict):
		writeJSON(w, http.StatusConflict, errorBody{Error: err.Error()})
	case errors.As(err, &precondition):
		writeJSON(w, http.StatusPreconditionFailed, errorBody{Error: err.Error()})
	default:
		slog.Error("internal error", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal server error"})
	}
}

// decodeJSON decodes a request body into v, reporting a validation error on
// malformed input.
func decodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return models.ErrValidation("invalid request body")
	}
	return nil
}

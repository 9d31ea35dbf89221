package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/example/wordapi/internal/database"
	"github.com/example/wordapi/internal/validation"
)

// respondJSON writes v as a JSON body with the given status
func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v)
	}
}

// respondMessage writes a {"message": ...} body
func respondMessage(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"message": message})
}

// respondValidation writes the accumulated field errors as a 400
func respondValidation(w http.ResponseWriter, errs validation.FieldErrors) {
	respondJSON(w, http.StatusBadRequest, map[string]interface{}{
		"message": "Validation error",
		"errors":  errs,
	})
}

// respondError maps storage errors onto the API error taxonomy. The full
// error is logged server-side; clients only see a generic message.
func respondError(w http.ResponseWriter, logger zerolog.Logger, err error) {
	switch {
	case errors.Is(err, database.ErrNotFound):
		respondMessage(w, http.StatusNotFound, "Not found")
	case errors.Is(err, database.ErrUnknownWord):
		respondValidation(w, validation.FieldErrors{"id_word": err.Error()})
	default:
		logger.Error().Err(err).Msg("database error")
		respondMessage(w, http.StatusInternalServerError, "Database error")
	}
}

// decodeJSON parses the request body, turning JSON type mismatches into
// field errors instead of a generic failure.
func decodeJSON(r *http.Request, v interface{}) validation.FieldErrors {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return validation.FieldErrors{typeErr.Field: "Not a valid " + typeErr.Type.String() + "."}
		}
		return validation.FieldErrors{"body": "Invalid JSON payload"}
	}
	return nil
}

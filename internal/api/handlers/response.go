package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/isdelr/leadgate-be/internal/models"
	"github.com/rs/zerolog/log"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

// writeError maps expected failures to their status and hides everything else
// behind a generic 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *models.APIError
	if errors.As(err, &apiErr) {
		writeJSON(w, apiErr.Status(), map[string]string{"error": apiErr.Message})
		return
	}

	log.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("Request failed")
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
}

func decodeJSON(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return models.NewValidationError("Invalid request body")
	}
	return nil
}

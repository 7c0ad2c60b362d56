package response

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

// JSON writes v as the response body.
// Screen endpoints return bare arrays; only errors are enveloped.
func JSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

// OK sends a 200 response
func OK(w http.ResponseWriter, v interface{}) {
	JSON(w, http.StatusOK, v)
}

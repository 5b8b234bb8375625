package api

import (
	"encoding/json"
	"log"
	"net/http"
)

const redactedError = "internal server error"

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeStoreError reports a record store failure, hiding the driver text
// when the server is configured to.
func (api *Api) writeStoreError(w http.ResponseWriter, status int, err error) {
	log.Printf("[DB] %v", err)
	msg := err.Error()
	if api.Config.Server.RedactErrors {
		msg = redactedError
	}
	writeError(w, status, msg)
}

func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

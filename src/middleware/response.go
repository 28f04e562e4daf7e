package middleware

import (
	"encoding/json"
	"net/http"

	"fintrack-server/src/util"
)

func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, map[string]string{"error": message})
}

// WriteInvalid reports a failed field validation as 400 with its reason code.
func WriteInvalid(w http.ResponseWriter, res util.Result) {
	WriteJSON(w, http.StatusBadRequest, map[string]string{
		"error":  res.Message,
		"reason": string(res.Reason),
		"field":  res.Field,
	})
}

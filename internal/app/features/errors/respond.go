// internal/app/features/errors/respond.go
package errors

import (
	"encoding/json"
	"net/http"
)

// Envelope is the JSON body of every API response.
// Success is false for every non-2xx status.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// WriteJSON writes env with the given status code.
func WriteJSON(w http.ResponseWriter, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}

// OK writes a successful envelope.
func OK(w http.ResponseWriter, status int, msg string, data any) {
	WriteJSON(w, status, Envelope{Success: true, Message: msg, Data: data})
}

// Fail writes a failed envelope without logging. Use the ErrorLogger for
// anything a developer might need to see.
func Fail(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, Envelope{Success: false, Message: msg})
}

// Package rest holds the JSON envelope shared by the HTTP handlers and middleware.
package rest

import (
	"encoding/json"
	"net/http"
)

type APIResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *APIError `json:"error,omitempty"`
}

type APIError struct {
	Code    string `json:"code" example:"PAYMENT_NOT_FOUND"`
	Message string `json:"message" example:"payment with variable symbol 1234 not found"`
}

// WriteJSON wraps data in a successful envelope.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(APIResponse{
		Success: true,
		Data:    data,
	})
}

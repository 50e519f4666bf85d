package rest

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/remp2020/crm-stripe-module/internal/application"
)

// WriteError maps application errors to HTTP responses. Server-side failures
// are logged and their details withheld from the client.
func WriteError(w http.ResponseWriter, err error, logger *slog.Logger) {
	statusCode := application.ToHTTPStatus(err)
	errorCode := application.ToErrorCode(err)
	message := err.Error()

	if statusCode >= http.StatusInternalServerError {
		logger.Error("request failed",
			"code", errorCode,
			"status", statusCode,
			"error", err)
		message = http.StatusText(statusCode)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(APIResponse{
		Success: false,
		Error: &APIError{
			Code:    errorCode,
			Message: message,
		},
	})
}

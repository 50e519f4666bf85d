package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/remp2020/crm-stripe-module/internal/application"
)

const maxBodyBytes = 64 << 10

// decodeBody reads a JSON body into dst and validates it.
func (h *Handlers) decodeBody(r *http.Request, dst any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return application.NewInvalidInputError(fmt.Errorf("read body: %w", err))
	}

	if err := json.Unmarshal(body, dst); err != nil {
		return application.NewInvalidInputError(fmt.Errorf("decode body: %w", err))
	}

	if err := h.validate.Struct(dst); err != nil {
		return application.NewInvalidInputError(err)
	}
	return nil
}

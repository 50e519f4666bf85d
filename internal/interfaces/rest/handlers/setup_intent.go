package handlers

import (
	"net/http"

	"github.com/remp2020/crm-stripe-module/internal/interfaces/rest"
)

// HandleSetupIntent issues a setup intent for collecting a card
// @Summary      Create a setup intent
// @Description  Anonymous endpoint used by the card form to save a card for later off-session charges.
// @Tags         stripe
// @Produce      json
// @Success      200  {object}  rest.APIResponse{data=SetupIntentResponse}
// @Failure      502  {object}  rest.APIResponse  "Payment processor failure"
// @Router       /api/v1/stripe/setup-intent [get]
func (h *Handlers) HandleSetupIntent(w http.ResponseWriter, r *http.Request) {
	intent, err := h.setupIntents.Create(r.Context())
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	rest.WriteJSON(w, http.StatusOK, SetupIntentResponse{
		ID:           intent.ID,
		ClientSecret: intent.ClientSecret,
	})
}

package handlers

import (
	"net/http"

	"github.com/remp2020/crm-stripe-module/internal/interfaces/rest"
)

// HandleRecurrentCharge renews a payment with a stored payment method
// @Summary      Charge a stored payment method
// @Description  Used by the renewal scheduler. A declined card is a successful call with result stop or retry.
// @Tags         recurrent
// @Accept       json
// @Produce      json
// @Param        request  body      ChargeRequest     true  "Payment and token"
// @Success      200      {object}  rest.APIResponse{data=ChargeResponse}
// @Failure      400      {object}  rest.APIResponse  "Invalid request"
// @Failure      404      {object}  rest.APIResponse  "Payment not found"
// @Failure      501      {object}  rest.APIResponse  "Gateway cannot charge"
// @Router       /api/v1/recurrent/charge [post]
func (h *Handlers) HandleRecurrentCharge(w http.ResponseWriter, r *http.Request) {
	var req ChargeRequest
	if err := h.decodeBody(r, &req); err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	report, err := h.payments.Charge(r.Context(), req.VariableSymbol, req.Token)
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	rest.WriteJSON(w, http.StatusOK, toChargeResponse(report))
}

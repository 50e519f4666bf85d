package handlers

import (
	"net/http"
	"strings"

	"github.com/remp2020/crm-stripe-module/internal/interfaces/rest"
)

// HandleWallet prepares the wallet pay sheet
// @Summary      Prepare wallet payment
// @Description  Creates and links a fresh intent. Browsers asking for text/html get the pay sheet page instead of JSON.
// @Tags         wallet
// @Produce      json,html
// @Param        vs   path      string  true  "Variable symbol"
// @Success      200  {object}  rest.APIResponse{data=services.WalletCheckout}
// @Failure      404  {object}  rest.APIResponse  "Payment not found"
// @Failure      409  {object}  rest.APIResponse  "Payment does not use the wallet gateway"
// @Router       /stripe/wallet/{vs} [get]
func (h *Handlers) HandleWallet(w http.ResponseWriter, r *http.Request) {
	checkout, err := h.wallet.Prepare(r.Context(), r.PathValue("vs"))
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	if !strings.Contains(r.Header.Get("Accept"), "text/html") {
		rest.WriteJSON(w, http.StatusOK, checkout)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pages.ExecuteTemplate(w, "wallet.html", checkout); err != nil {
		h.logger.Error("failed to render wallet page",
			"variable_symbol", checkout.VariableSymbol,
			"error", err)
	}
}

// HandleWalletConfirm settles a wallet payment confirmed in the browser
// @Summary      Confirm wallet payment
// @Tags         wallet
// @Accept       json
// @Produce      json
// @Param        vs       path      string                true  "Variable symbol"
// @Param        request  body      WalletConfirmRequest  true  "Confirmed intent"
// @Success      200      {object}  rest.APIResponse{data=OutcomeResponse}
// @Failure      400      {object}  rest.APIResponse  "Invalid request"
// @Router       /stripe/wallet/{vs}/confirm [post]
func (h *Handlers) HandleWalletConfirm(w http.ResponseWriter, r *http.Request) {
	var req WalletConfirmRequest
	if err := h.decodeBody(r, &req); err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	outcome, err := h.wallet.Confirm(r.Context(), r.PathValue("vs"), req.PaymentIntentID)
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	rest.WriteJSON(w, http.StatusOK, toOutcomeResponse(outcome))
}

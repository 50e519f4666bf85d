package handlers

import (
	"net/http"

	"github.com/remp2020/crm-stripe-module/internal/domain"
	"github.com/remp2020/crm-stripe-module/internal/interfaces/rest"
)

// HandleCheckout hands the browser over to the hosted checkout
// @Summary      Checkout hand-off page
// @Description  Loads Stripe.js with the publishable key and redirects to the hosted checkout session.
// @Tags         stripe
// @Produce      html
// @Param        session_id  query  string  true  "Checkout session id"
// @Success      200  "HTML page"
// @Failure      400  {object}  rest.APIResponse  "Missing session id"
// @Router       /stripe/checkout [get]
func (h *Handlers) HandleCheckout(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		rest.WriteError(w, domain.NewMissingRequiredFieldError("session_id"), h.logger)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := pages.ExecuteTemplate(w, "checkout.html", checkoutPage{
		PublishableKey: h.cfg.PublishableKey,
		SessionID:      sessionID,
	})
	if err != nil {
		h.logger.Error("failed to render checkout page", "error", err)
	}
}

package handlers

import (
	"net/http"

	"github.com/remp2020/crm-stripe-module/internal/domain"
	"github.com/remp2020/crm-stripe-module/internal/interfaces/rest"
)

// HandleBegin starts a payment on its gateway
// @Summary      Begin a payment
// @Description  Starts the payment on its gateway and returns where the browser must go next.
// @Tags         payments
// @Produce      json
// @Param        vs   path      string            true  "Variable symbol"
// @Success      200  {object}  rest.APIResponse{data=OutcomeResponse}
// @Failure      404  {object}  rest.APIResponse  "Payment not found"
// @Failure      409  {object}  rest.APIResponse  "Payment is not in form or is being processed"
// @Failure      502  {object}  rest.APIResponse  "Payment processor failure"
// @Router       /api/v1/payments/{vs}/begin [post]
func (h *Handlers) HandleBegin(w http.ResponseWriter, r *http.Request) {
	outcome, err := h.payments.Begin(r.Context(), r.PathValue("vs"))
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	rest.WriteJSON(w, http.StatusOK, toOutcomeResponse(outcome))
}

// HandleReturn completes the payment when the browser comes back from the processor
// @Summary      Return from the processor
// @Description  Completes the payment and redirects the browser to the success or failure page. Completion errors also land on the failure page.
// @Tags         payments
// @Param        vs   query     string  true  "Variable symbol"
// @Success      303  "Redirect to the success, failure or wallet page"
// @Failure      400  {object}  rest.APIResponse  "Missing variable symbol"
// @Router       /payments/return [get]
func (h *Handlers) HandleReturn(w http.ResponseWriter, r *http.Request) {
	vs := r.URL.Query().Get("vs")
	if vs == "" {
		rest.WriteError(w, domain.NewMissingRequiredFieldError("vs"), h.logger)
		return
	}

	outcome, err := h.payments.Complete(r.Context(), vs)
	if err != nil {
		h.logger.Error("payment completion failed",
			"variable_symbol", vs,
			"error", err)
		http.Redirect(w, r, h.cfg.FailureURL, http.StatusSeeOther)
		return
	}

	target := outcome.URL
	if target == "" {
		target = h.cfg.FailureURL
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// HandleRedirect tells the caller whether the payment page must hand off to another page
// @Summary      Query redirect target
// @Tags         payments
// @Produce      json
// @Param        vs   path      string  true  "Variable symbol"
// @Success      200  {object}  rest.APIResponse{data=RedirectResponse}
// @Failure      404  {object}  rest.APIResponse  "Payment not found"
// @Router       /api/v1/payments/{vs}/redirect [get]
func (h *Handlers) HandleRedirect(w http.ResponseWriter, r *http.Request) {
	payment, err := h.finder.FindByVariableSymbol(r.Context(), r.PathValue("vs"))
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	resp := RedirectResponse{WantsRedirect: h.resolver.WantsToRedirect(payment)}
	if resp.WantsRedirect {
		target, err := h.resolver.RedirectTarget(payment)
		if err != nil {
			rest.WriteError(w, err, h.logger)
			return
		}
		resp.Target = target
	}

	rest.WriteJSON(w, http.StatusOK, resp)
}

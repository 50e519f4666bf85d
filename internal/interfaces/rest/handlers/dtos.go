package handlers

import (
	"github.com/remp2020/crm-stripe-module/internal/application/services"
	"github.com/remp2020/crm-stripe-module/internal/domain"
)

type OutcomeResponse struct {
	Outcome string `json:"outcome" example:"redirect"`
	URL     string `json:"url,omitempty" example:"https://checkout.stripe.com/c/pay/cs_test_123"`
	Reason  string `json:"reason,omitempty" example:"previous_payment_failed"`
}

func toOutcomeResponse(o domain.Outcome) OutcomeResponse {
	return OutcomeResponse{
		Outcome: string(o.Kind),
		URL:     o.URL,
		Reason:  o.Reason,
	}
}

type SetupIntentResponse struct {
	ID           string `json:"id" example:"seti_123"`
	ClientSecret string `json:"client_secret" example:"seti_123_secret_456"`
}

type RedirectResponse struct {
	WantsRedirect bool   `json:"wants_redirect"`
	Target        string `json:"target,omitempty" example:"https://crm.example.com/stripe/wallet/1234567890"`
}

type ChargeRequest struct {
	VariableSymbol string `json:"variable_symbol" validate:"required" example:"1234567890"`
	Token          string `json:"token" validate:"required" example:"pm_123"`
}

type ChargeResponse struct {
	Result        string `json:"result" example:"ok"`
	ResultCode    string `json:"result_code" example:"card_declined: insufficient_funds"`
	ResultMessage string `json:"result_message" example:"Your card has insufficient funds."`
	Token         string `json:"token,omitempty" example:"pm_123"`
}

func toChargeResponse(r *services.ChargeReport) ChargeResponse {
	resp := ChargeResponse{
		Result:        string(r.Result),
		ResultCode:    r.ResultCode(),
		ResultMessage: r.ResultMessage(),
	}
	if r.HasToken() {
		resp.Token = r.Token()
	}
	return resp
}

type WalletConfirmRequest struct {
	PaymentIntentID string `json:"payment_intent_id" validate:"required" example:"pi_123"`
}

type HealthResponse struct {
	Status string            `json:"status" example:"ok"`
	Checks map[string]string `json:"checks"`
}

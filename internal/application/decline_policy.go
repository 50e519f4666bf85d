package application

import "github.com/remp2020/crm-stripe-module/internal/domain"

// Decline codes after which the stored payment method must never be charged again.
var stopDeclineCodes = map[string]struct{}{
	"expired_card":                      {},
	"lost_card":                         {},
	"stolen_card":                       {},
	"pickup_card":                       {},
	"restricted_card":                   {},
	"fraudulent":                        {},
	"merchant_blacklist":                {},
	"invalid_account":                   {},
	"incorrect_number":                  {},
	"invalid_number":                    {},
	"invalid_expiry_month":              {},
	"invalid_expiry_year":               {},
	"card_not_supported":                {},
	"currency_not_supported":            {},
	"new_account_information_available": {},
	"revocation_of_authorization":       {},
	"revocation_of_all_authorizations":  {},
	"stop_payment_order":                {},
	"security_violation":                {},
	"service_not_allowed":               {},
	"transaction_not_allowed":           {},
	"do_not_try_again":                  {},
}

// Error codes that make the token itself unusable regardless of the decline code.
var stopErrorCodes = map[string]struct{}{
	"expired_card":         {},
	"incorrect_number":     {},
	"invalid_number":       {},
	"invalid_expiry_month": {},
	"invalid_expiry_year":  {},
	"resource_missing":     {},
}

// ClassifyCharge decides the outcome of an off-session charge from the settled
// intent and the decline captured while confirming it. Anything not known to
// disable the token is retried on the next billing cycle.
func ClassifyCharge(intent *domain.Intent, decline *StripeError) domain.ChargeResult {
	if intent.Succeeded() {
		return domain.ChargeOK
	}

	code, declineCode := declineCodes(intent, decline)
	if _, ok := stopDeclineCodes[declineCode]; ok {
		return domain.ChargeStop
	}
	if _, ok := stopErrorCodes[code]; ok {
		return domain.ChargeStop
	}
	return domain.ChargeRetry
}

// the intent's last_payment_error wins over the raw decline
func declineCodes(intent *domain.Intent, decline *StripeError) (code, declineCode string) {
	if intent != nil && intent.LastPaymentError != nil {
		code = intent.LastPaymentError.Code
		declineCode = intent.LastPaymentError.DeclineCode
	}
	if decline != nil {
		if code == "" {
			code = decline.Code
		}
		if declineCode == "" {
			declineCode = decline.DeclineCode
		}
	}
	return code, declineCode
}

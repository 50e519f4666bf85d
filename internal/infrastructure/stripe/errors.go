package stripe

import (
	"errors"

	"github.com/remp2020/crm-stripe-module/internal/application"
	stripego "github.com/stripe/stripe-go/v82"
)

// translateError converts SDK errors into application.StripeError. Network
// failures and other non-API errors are returned unchanged.
func translateError(err error) error {
	if err == nil {
		return nil
	}

	var sdkErr *stripego.Error
	if !errors.As(err, &sdkErr) {
		return err
	}

	out := &application.StripeError{
		Type:        string(sdkErr.Type),
		Code:        string(sdkErr.Code),
		DeclineCode: string(sdkErr.DeclineCode),
		Message:     sdkErr.Msg,
		HTTPStatus:  sdkErr.HTTPStatusCode,
	}
	if sdkErr.PaymentIntent != nil {
		out.PaymentIntentID = sdkErr.PaymentIntent.ID
	}
	return out
}

// resultLabel buckets an error for the request counter.
func resultLabel(err error) string {
	if err == nil {
		return "ok"
	}
	if stripeErr, ok := application.IsStripeError(err); ok && stripeErr.Type != "" {
		return stripeErr.Type
	}
	return "network"
}

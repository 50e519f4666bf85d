package application

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	StripeErrorTypeCard           = "card_error"
	StripeErrorTypeAPI            = "api_error"
	StripeErrorTypeInvalidRequest = "invalid_request_error"
)

// StripeError is a processor failure translated out of the SDK so services can
// branch on it without importing the adapter.
type StripeError struct {
	Type        string
	Code        string
	DeclineCode string
	Message     string
	HTTPStatus  int
	// PaymentIntentID is set when a decline happened during confirmation of an intent.
	PaymentIntentID string
}

func (e *StripeError) Error() string {
	if e.DeclineCode != "" {
		return fmt.Sprintf("stripe error [%s/%s]: %s (status: %d)", e.Code, e.DeclineCode, e.Message, e.HTTPStatus)
	}
	return fmt.Sprintf("stripe error [%s]: %s (status: %d)", e.Code, e.Message, e.HTTPStatus)
}

func (e *StripeError) IsCardError() bool {
	return e.Type == StripeErrorTypeCard
}

func (e *StripeError) IsRetryable() bool {
	return e.HTTPStatus >= http.StatusInternalServerError ||
		e.HTTPStatus == http.StatusTooManyRequests ||
		e.Code == "lock_timeout"
}

func IsStripeError(err error) (*StripeError, bool) {
	var stripeErr *StripeError
	ok := errors.As(err, &stripeErr)
	return stripeErr, ok
}

// IsCardDecline reports a card-level rejection of a charge attempt.
func IsCardDecline(err error) (*StripeError, bool) {
	stripeErr, ok := IsStripeError(err)
	if !ok || !stripeErr.IsCardError() {
		return nil, false
	}
	return stripeErr, true
}

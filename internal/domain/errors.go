package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a business logic error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Domain validation errors
const (
	ErrCodeConfigurationMissing  = "CONFIGURATION_MISSING"
	ErrCodeInvalidAmount         = "INVALID_AMOUNT"
	ErrCodeUnsupportedNextAction = "UNSUPPORTED_NEXT_ACTION"
	ErrCodeUnhandledIntentStatus = "UNHANDLED_INTENT_STATUS"
	ErrCodeCardDeclined          = "CARD_DECLINED"
	ErrCodeUnsupportedOperation  = "UNSUPPORTED_OPERATION"
	ErrCodePaymentNotFound       = "PAYMENT_NOT_FOUND"
	ErrCodeInvalidGateway        = "INVALID_GATEWAY"
	ErrCodeInvalidTransition     = "INVALID_TRANSITION"
	ErrCodeMissingRequiredField  = "MISSING_REQUIRED_FIELD"
)

var ErrInvalidTransition = errors.New("invalid payment status transition")

func NewConfigurationMissingError(key string) *DomainError {
	return &DomainError{
		Code:    ErrCodeConfigurationMissing,
		Message: fmt.Sprintf("required configuration %s is missing", key),
	}
}

func NewInvalidAmountError(amount string, err error) *DomainError {
	return &DomainError{
		Code:    ErrCodeInvalidAmount,
		Message: fmt.Sprintf("invalid amount %q", amount),
		Err:     err,
	}
}

func NewUnsupportedNextActionError(actionType string) *DomainError {
	return &DomainError{
		Code:    ErrCodeUnsupportedNextAction,
		Message: fmt.Sprintf("unable to proceed with payment, unsupported next action type: %s", actionType),
	}
}

func NewUnhandledIntentStatusError(status IntentStatus) *DomainError {
	return &DomainError{
		Code:    ErrCodeUnhandledIntentStatus,
		Message: fmt.Sprintf("unhandled payment intent status: %s", status),
	}
}

func NewUnsupportedOperationError(operation, gateway string) *DomainError {
	return &DomainError{
		Code:    ErrCodeUnsupportedOperation,
		Message: fmt.Sprintf("operation %s is not supported by gateway %s", operation, gateway),
	}
}

func NewPaymentNotFoundError(variableSymbol string) *DomainError {
	return &DomainError{
		Code:    ErrCodePaymentNotFound,
		Message: fmt.Sprintf("payment with variable symbol %s not found", variableSymbol),
	}
}

func NewInvalidGatewayError(expected, actual string) *DomainError {
	return &DomainError{
		Code:    ErrCodeInvalidGateway,
		Message: fmt.Sprintf("payment uses gateway %s instead of %s", actual, expected),
	}
}

func NewInvalidTransitionError(from, to PaymentStatus) *DomainError {
	return &DomainError{
		Code:    ErrCodeInvalidTransition,
		Message: fmt.Sprintf("cannot transition from %s to %s", from, to),
		Err:     ErrInvalidTransition,
	}
}

func NewMissingRequiredFieldError(field string) *DomainError {
	return &DomainError{
		Code:    ErrCodeMissingRequiredField,
		Message: fmt.Sprintf("%s is required", field),
	}
}

// IsErrorCode checks if an error is a DomainError with a specific code
func IsErrorCode(err error, code string) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}

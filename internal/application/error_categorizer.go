package application

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/remp2020/crm-stripe-module/internal/domain"
)

// ErrorCategory represents the nature of an error for retry logic
type ErrorCategory string

const (
	CategoryTransient      ErrorCategory = "TRANSIENT"
	CategoryPermanent      ErrorCategory = "PERMANENT"
	CategoryBusinessRule   ErrorCategory = "BUSINESS_RULE"
	CategoryClientError    ErrorCategory = "CLIENT_ERROR"
	CategoryInfrastructure ErrorCategory = "INFRASTRUCTURE"
)

// CategorizeError determines error category for retry and logging purposes
func CategorizeError(err error) ErrorCategory {
	if err == nil {
		return ""
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return CategoryTransient
	}

	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		switch domainErr.Code {
		case domain.ErrCodePaymentNotFound,
			domain.ErrCodeMissingRequiredField,
			domain.ErrCodeInvalidGateway:
			return CategoryClientError
		case domain.ErrCodeCardDeclined,
			domain.ErrCodeInvalidTransition,
			domain.ErrCodeUnsupportedOperation:
			return CategoryBusinessRule
		default:
			// invalid amount, unsupported next action, unhandled status, missing configuration
			return CategoryPermanent
		}
	}

	if svcErr, ok := IsServiceError(err); ok {
		switch svcErr.Code {
		case ErrCodeInvalidInput, ErrCodeUnsupportedGateway:
			return CategoryClientError
		case ErrCodeLocked, ErrCodeGatewayUnavailable:
			return CategoryTransient
		case ErrCodeInternal:
			return CategoryInfrastructure
		}
	}

	if stripeErr, ok := IsStripeError(err); ok {
		if stripeErr.IsRetryable() {
			return CategoryTransient
		}
		if stripeErr.IsCardError() {
			return CategoryBusinessRule
		}
		return CategoryPermanent
	}

	// Default: Transient (network failures surface as plain errors)
	return CategoryTransient
}

// IsRetryable returns true if the error category suggests retry
func IsRetryable(err error) bool {
	category := CategorizeError(err)
	return category == CategoryTransient || category == CategoryInfrastructure
}

// IsFatal reports errors after which the browser must be sent to the failure page
// rather than shown a server error.
func IsFatal(err error) bool {
	if _, ok := IsCardDecline(err); ok {
		return true
	}
	switch CategorizeError(err) {
	case CategoryPermanent, CategoryBusinessRule:
		return true
	}
	return false
}

// ToHTTPStatus maps error to appropriate HTTP status code
func ToHTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}

	if svcErr, ok := IsServiceError(err); ok {
		return svcErr.HTTPStatus
	}

	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		switch domainErr.Code {
		case domain.ErrCodeInvalidAmount, domain.ErrCodeMissingRequiredField:
			return http.StatusBadRequest
		case domain.ErrCodePaymentNotFound:
			return http.StatusNotFound
		case domain.ErrCodeInvalidGateway, domain.ErrCodeInvalidTransition:
			return http.StatusConflict
		case domain.ErrCodeCardDeclined:
			return http.StatusPaymentRequired
		case domain.ErrCodeUnsupportedOperation:
			return http.StatusNotImplemented
		case domain.ErrCodeUnsupportedNextAction, domain.ErrCodeUnhandledIntentStatus:
			return http.StatusBadGateway
		}
		return http.StatusInternalServerError
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return http.StatusRequestTimeout
	}

	if stripeErr, ok := IsStripeError(err); ok {
		if stripeErr.IsCardError() {
			return http.StatusPaymentRequired
		}
		return http.StatusBadGateway
	}

	return http.StatusInternalServerError
}

// ToErrorCode clear error code for API responses
func ToErrorCode(err error) string {
	if svcErr, ok := IsServiceError(err); ok {
		return svcErr.Code
	}

	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}

	if stripeErr, ok := IsStripeError(err); ok {
		if stripeErr.IsCardError() {
			return domain.ErrCodeCardDeclined
		}
		if stripeErr.Code != "" {
			return strings.ToUpper(stripeErr.Code)
		}
		return "STRIPE_ERROR"
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return "TIMEOUT"
	}

	return ErrCodeInternal
}

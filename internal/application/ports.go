package application

import (
	"context"

	"github.com/remp2020/crm-stripe-module/internal/domain"
)

// StripeAPI is the port for the remote payment processor.
type StripeAPI interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutSessionRequest) (*CheckoutSession, error)
	RetrieveCheckoutSession(ctx context.Context, sessionID string) (*CheckoutSession, error)
	CreatePaymentIntent(ctx context.Context, req PaymentIntentRequest) (*domain.Intent, error)
	RetrievePaymentIntent(ctx context.Context, intentID string) (*domain.Intent, error)
	CreateCustomer(ctx context.Context, req CustomerRequest) (*Customer, error)
	RetrievePaymentMethod(ctx context.Context, paymentMethodID string) (*PaymentMethod, error)
	AttachPaymentMethod(ctx context.Context, paymentMethodID, customerID string) (*PaymentMethod, error)
	CreateSetupIntent(ctx context.Context) (*domain.SetupIntent, error)
}

// PaymentStore is the port for the payments collaborator.
type PaymentStore interface {
	FindByVariableSymbol(ctx context.Context, variableSymbol string) (*domain.Payment, error)
	UpdateStatus(ctx context.Context, payment *domain.Payment, status domain.PaymentStatus, notify bool) error
}

// PaymentMetaStore holds key/value pairs attached to payments. Get reports
// ok=false when the key is absent.
type PaymentMetaStore interface {
	GetPaymentMeta(ctx context.Context, paymentID int64, key domain.MetaKey) (value string, ok bool, err error)
	AddPaymentMeta(ctx context.Context, paymentID int64, key domain.MetaKey, value string) error
	RemovePaymentMeta(ctx context.Context, paymentID int64, key domain.MetaKey) error
}

// UserMetaStore holds key/value pairs attached to users.
type UserMetaStore interface {
	GetUserMeta(ctx context.Context, userID int64, key domain.MetaKey) (value string, ok bool, err error)
	AddUserMeta(ctx context.Context, userID int64, key domain.MetaKey, value string) error
}

// Locker serializes work on a single key across processes.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// Observer receives business events for monitoring. Labels are plain strings
// so implementations need no knowledge of the domain types.
type Observer interface {
	PaymentOutcome(gateway, outcome string)
	RecurrentCharge(result string)
	WalletConfirmation(result string)
}

type NopObserver struct{}

func (NopObserver) PaymentOutcome(string, string) {}
func (NopObserver) RecurrentCharge(string)        {}
func (NopObserver) WalletConfirmation(string)     {}

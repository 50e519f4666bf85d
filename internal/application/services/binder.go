package services

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/remp2020/crm-stripe-module/internal/application"
	"github.com/remp2020/crm-stripe-module/internal/domain"
)

// PaymentMethodBinder guarantees that a user has exactly one processor
// customer and that the payment method in use is attached to it.
type PaymentMethodBinder struct {
	stripe   application.StripeAPI
	userMeta application.UserMetaStore
	locker   application.Locker
	logger   *slog.Logger
}

func NewPaymentMethodBinder(
	stripe application.StripeAPI,
	userMeta application.UserMetaStore,
	locker application.Locker,
	logger *slog.Logger,
) *PaymentMethodBinder {
	return &PaymentMethodBinder{
		stripe:   stripe,
		userMeta: userMeta,
		locker:   locker,
		logger:   logger,
	}
}

// ResolveCustomer returns the customer id the payment method is attached to.
// A new customer is created and remembered on first use.
func (b *PaymentMethodBinder) ResolveCustomer(ctx context.Context, user domain.User, paymentMethodID, cardholderName string) (string, error) {
	if paymentMethodID == "" {
		return "", domain.NewMissingRequiredFieldError("payment method id")
	}

	unlock, err := b.locker.Lock(ctx, customerLockKey(user.ID))
	if err != nil {
		return "", err
	}
	defer unlock()

	customerID, ok, err := b.userMeta.GetUserMeta(ctx, user.ID, domain.MetaStripeCustomer)
	if err != nil {
		return "", application.NewInternalError(err)
	}

	if ok {
		if _, err := b.stripe.AttachPaymentMethod(ctx, paymentMethodID, customerID); err != nil {
			return "", err
		}
		return customerID, nil
	}

	customer, err := b.stripe.CreateCustomer(ctx, application.CustomerRequest{
		PaymentMethodID: paymentMethodID,
		Email:           user.Email,
		Name:            cardholderName,
		IdempotencyKey:  uuid.New().String(),
	})
	if err != nil {
		return "", err
	}

	if err := b.userMeta.AddUserMeta(ctx, user.ID, domain.MetaStripeCustomer, customer.ID); err != nil {
		return "", application.NewInternalError(err)
	}

	b.logger.Info("stripe customer created",
		"user_id", user.ID,
		"customer_id", customer.ID)

	return customer.ID, nil
}

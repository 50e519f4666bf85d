package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/remp2020/crm-stripe-module/internal/application"
	"github.com/remp2020/crm-stripe-module/internal/domain"
	"github.com/remp2020/crm-stripe-module/internal/money"
)

// ChargeReport is the result of one off-session charge attempt together with
// what the processor said about it.
type ChargeReport struct {
	Result  domain.ChargeResult
	Intent  *domain.Intent
	Decline *application.StripeError
}

func (r *ChargeReport) OK() bool {
	return r.Result == domain.ChargeOK
}

// HasToken reports whether the attempt produced a reusable payment method.
func (r *ChargeReport) HasToken() bool {
	return r.Intent.HasPaymentMethod()
}

func (r *ChargeReport) Token() string {
	if r.Intent == nil {
		return ""
	}
	return r.Intent.PaymentMethodID
}

// ResultCode prefers the structured decline of the intent, then the captured
// decline error, then the intent status.
func (r *ChargeReport) ResultCode() string {
	if r.Intent != nil && r.Intent.LastPaymentError != nil && r.Intent.LastPaymentError.Code != "" {
		return fmt.Sprintf("%s: %s", r.Intent.LastPaymentError.Code, r.Intent.LastPaymentError.DeclineCode)
	}
	if r.Decline != nil {
		return r.Decline.Message
	}
	return r.status()
}

func (r *ChargeReport) ResultMessage() string {
	if r.Intent != nil && r.Intent.LastPaymentError != nil && r.Intent.LastPaymentError.Message != "" {
		return r.Intent.LastPaymentError.Message
	}
	if r.Decline != nil {
		return r.Decline.Message
	}
	return r.status()
}

func (r *ChargeReport) status() string {
	if r.Intent == nil {
		return ""
	}
	return string(r.Intent.Status)
}

// RecurrentCharger charges a stored payment method with no cardholder present.
type RecurrentCharger struct {
	stripe      application.StripeAPI
	paymentMeta application.PaymentMetaStore
	userMeta    application.UserMetaStore
	converter   *money.Converter
	logger      *slog.Logger
}

func NewRecurrentCharger(
	stripe application.StripeAPI,
	paymentMeta application.PaymentMetaStore,
	userMeta application.UserMetaStore,
	converter *money.Converter,
	logger *slog.Logger,
) *RecurrentCharger {
	return &RecurrentCharger{
		stripe:      stripe,
		paymentMeta: paymentMeta,
		userMeta:    userMeta,
		converter:   converter,
		logger:      logger,
	}
}

// Charge confirms an off-session intent for the payment using token. A card
// decline is not an error: the settled intent is classified into stop or retry.
func (c *RecurrentCharger) Charge(ctx context.Context, payment *domain.Payment, token string) (*ChargeReport, error) {
	if token == "" {
		return nil, domain.NewMissingRequiredFieldError("token")
	}

	customerID, _, err := c.userMeta.GetUserMeta(ctx, payment.User.ID, domain.MetaStripeCustomer)
	if err != nil {
		return nil, application.NewInternalError(err)
	}

	amount, err := c.converter.DecimalToMinor(payment.Amount, payment.Currency)
	if err != nil {
		return nil, err
	}

	report := &ChargeReport{}

	intent, err := c.stripe.CreatePaymentIntent(ctx, application.PaymentIntentRequest{
		Amount:          amount,
		Currency:        payment.Currency,
		CustomerID:      customerID,
		PaymentMethodID: token,
		Confirm:         true,
		OffSession:      true,
		IdempotencyKey:  uuid.New().String(),
	})
	if err != nil {
		decline, ok := application.IsCardDecline(err)
		if !ok {
			return nil, err
		}
		report.Decline = decline

		if decline.PaymentIntentID != "" {
			intent, err = c.stripe.RetrievePaymentIntent(ctx, decline.PaymentIntentID)
			if err != nil {
				return nil, err
			}
		}
	}
	report.Intent = intent

	if intent != nil {
		if err := c.paymentMeta.AddPaymentMeta(ctx, payment.ID, domain.MetaPaymentIntentID, intent.ID); err != nil {
			return nil, application.NewInternalError(err)
		}
	}

	report.Result = application.ClassifyCharge(intent, report.Decline)

	if report.Result != domain.ChargeOK {
		c.logger.Warn("recurrent charge declined",
			"variable_symbol", payment.VariableSymbol,
			"result", report.Result,
			"result_code", report.ResultCode())
	}

	return report, nil
}

// Token returns the payment method of the intent linked to the payment.
func (c *RecurrentCharger) Token(ctx context.Context, payment *domain.Payment) (string, bool, error) {
	intentID, ok, err := c.paymentMeta.GetPaymentMeta(ctx, payment.ID, domain.MetaPaymentIntentID)
	if err != nil {
		return "", false, application.NewInternalError(err)
	}
	if !ok {
		return "", false, nil
	}

	intent, err := c.stripe.RetrievePaymentIntent(ctx, intentID)
	if err != nil {
		return "", false, err
	}
	return intent.PaymentMethodID, intent.HasPaymentMethod(), nil
}

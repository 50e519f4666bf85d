package services

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/remp2020/crm-stripe-module/internal/application"
	"github.com/remp2020/crm-stripe-module/internal/config"
	"github.com/remp2020/crm-stripe-module/internal/domain"
	"github.com/remp2020/crm-stripe-module/internal/money"
)

// IntentOrchestrator decides which remote call a payment needs next and turns
// the resulting intent into a browser outcome. Every intent id it obtains is
// persisted before it returns so Complete never has to re-drive the flow.
type IntentOrchestrator struct {
	stripe      application.StripeAPI
	binder      *PaymentMethodBinder
	paymentMeta application.PaymentMetaStore
	userMeta    application.UserMetaStore
	converter   *money.Converter
	cfg         config.StripeConfig
	logger      *slog.Logger
}

func NewIntentOrchestrator(
	stripe application.StripeAPI,
	binder *PaymentMethodBinder,
	paymentMeta application.PaymentMetaStore,
	userMeta application.UserMetaStore,
	converter *money.Converter,
	cfg config.StripeConfig,
	logger *slog.Logger,
) *IntentOrchestrator {
	return &IntentOrchestrator{
		stripe:      stripe,
		binder:      binder,
		paymentMeta: paymentMeta,
		userMeta:    userMeta,
		converter:   converter,
		cfg:         cfg,
		logger:      logger,
	}
}

// Begin starts the payment with a stored payment method when one is on file,
// otherwise through a hosted checkout session.
func (o *IntentOrchestrator) Begin(ctx context.Context, payment *domain.Payment, usage domain.FutureUsage) (domain.Outcome, error) {
	paymentMethodID, ok, err := o.paymentMeta.GetPaymentMeta(ctx, payment.ID, domain.MetaPaymentMethodID)
	if err != nil {
		return domain.Outcome{}, application.NewInternalError(err)
	}

	if ok && paymentMethodID != "" {
		return o.beginWithStoredMethod(ctx, payment, paymentMethodID, usage)
	}
	return o.beginCheckout(ctx, payment, usage)
}

func (o *IntentOrchestrator) beginCheckout(ctx context.Context, payment *domain.Payment, usage domain.FutureUsage) (domain.Outcome, error) {
	lineItems, err := o.lineItems(payment)
	if err != nil {
		return domain.Outcome{}, err
	}

	back := returnURL(o.cfg.ReturnURL, payment)
	req := application.CheckoutSessionRequest{
		LineItems:         lineItems,
		SuccessURL:        back,
		CancelURL:         back,
		ClientReferenceID: payment.VariableSymbol,
		FutureUsage:       usage,
		IdempotencyKey:    uuid.New().String(),
	}

	customerID, ok, err := o.userMeta.GetUserMeta(ctx, payment.User.ID, domain.MetaStripeCustomer)
	if err != nil {
		return domain.Outcome{}, application.NewInternalError(err)
	}
	if ok {
		req.CustomerID = customerID
	} else {
		req.CustomerEmail = payment.User.Email
	}

	session, err := o.stripe.CreateCheckoutSession(ctx, req)
	if err != nil {
		return domain.Outcome{}, err
	}

	if err := o.paymentMeta.AddPaymentMeta(ctx, payment.ID, domain.MetaCheckoutSessionID, session.ID); err != nil {
		return domain.Outcome{}, application.NewInternalError(err)
	}

	if session.PaymentIntentID != "" {
		intent, err := o.stripe.RetrievePaymentIntent(ctx, session.PaymentIntentID)
		if err != nil {
			return domain.Outcome{}, err
		}
		if err := o.persistIntent(ctx, payment, intent); err != nil {
			return domain.Outcome{}, err
		}
	}

	o.logger.Info("checkout session created",
		"variable_symbol", payment.VariableSymbol,
		"session_id", session.ID,
		"payment_intent_id", session.PaymentIntentID)

	return domain.Redirect(checkoutURL(o.cfg.CheckoutURL, session.ID)), nil
}

func (o *IntentOrchestrator) beginWithStoredMethod(ctx context.Context, payment *domain.Payment, paymentMethodID string, usage domain.FutureUsage) (domain.Outcome, error) {
	back := returnURL(o.cfg.ReturnURL, payment)

	cardholderName, _, err := o.paymentMeta.GetPaymentMeta(ctx, payment.ID, domain.MetaCardholderName)
	if err != nil {
		return domain.Outcome{}, application.NewInternalError(err)
	}

	customerID, err := o.binder.ResolveCustomer(ctx, payment.User, paymentMethodID, cardholderName)
	if err != nil {
		return domain.Outcome{}, err
	}

	amount, err := o.converter.DecimalToMinor(payment.Amount, payment.Currency)
	if err != nil {
		return domain.Outcome{}, err
	}

	intent, err := o.stripe.CreatePaymentIntent(ctx, application.PaymentIntentRequest{
		Amount:          amount,
		Currency:        payment.Currency,
		CustomerID:      customerID,
		PaymentMethodID: paymentMethodID,
		FutureUsage:     usage,
		ReturnURL:       back,
		Confirm:         true,
		IdempotencyKey:  uuid.New().String(),
	})
	if err != nil {
		decline, ok := application.IsCardDecline(err)
		if !ok {
			return domain.Outcome{}, err
		}

		o.logger.Warn("card declined during confirmation",
			"variable_symbol", payment.VariableSymbol,
			"code", decline.Code,
			"decline_code", decline.DeclineCode)

		if decline.PaymentIntentID == "" {
			return domain.Redirect(back), nil
		}

		intent, err = o.stripe.RetrievePaymentIntent(ctx, decline.PaymentIntentID)
		if err != nil {
			return domain.Outcome{}, err
		}
	}

	if intent == nil {
		return domain.Redirect(back), nil
	}

	if err := o.persistIntent(ctx, payment, intent); err != nil {
		return domain.Outcome{}, err
	}

	switch intent.Status {
	case domain.IntentRequiresAction:
		next := intent.NextAction
		if next != nil && next.Type == domain.NextActionRedirectToURL && next.RedirectURL != "" {
			return domain.Redirect(next.RedirectURL), nil
		}

		actionType := ""
		raw := ""
		if next != nil {
			actionType = next.Type
			raw = next.Raw
		}
		o.logger.Error("unsupported next action",
			"variable_symbol", payment.VariableSymbol,
			"payment_intent_id", intent.ID,
			"next_action", raw)
		return domain.Outcome{}, domain.NewUnsupportedNextActionError(actionType)

	case domain.IntentSucceeded:
		return domain.Redirect(back), nil
	}

	o.logger.Error("unhandled payment intent status",
		"variable_symbol", payment.VariableSymbol,
		"payment_intent_id", intent.ID,
		"status", intent.Status)
	return domain.Outcome{}, domain.NewUnhandledIntentStatusError(intent.Status)
}

// Complete reports whether the intent linked to the payment succeeded. It only
// reads remote state, apart from remembering the processor customer of a
// checkout payment.
func (o *IntentOrchestrator) Complete(ctx context.Context, payment *domain.Payment) (bool, error) {
	intentID, err := o.linkedIntentID(ctx, payment)
	if err != nil {
		return false, err
	}
	if intentID == "" {
		return false, nil
	}

	intent, err := o.stripe.RetrievePaymentIntent(ctx, intentID)
	if err != nil {
		return false, err
	}

	if intent.HasPaymentMethod() {
		o.backfillCustomer(ctx, payment, intent)
	}

	return intent.Succeeded(), nil
}

func (o *IntentOrchestrator) linkedIntentID(ctx context.Context, payment *domain.Payment) (string, error) {
	intentID, ok, err := o.paymentMeta.GetPaymentMeta(ctx, payment.ID, domain.MetaPaymentIntentID)
	if err != nil {
		return "", application.NewInternalError(err)
	}
	if ok {
		return intentID, nil
	}

	sessionID, ok, err := o.paymentMeta.GetPaymentMeta(ctx, payment.ID, domain.MetaCheckoutSessionID)
	if err != nil {
		return "", application.NewInternalError(err)
	}
	if !ok {
		return "", nil
	}

	session, err := o.stripe.RetrieveCheckoutSession(ctx, sessionID)
	if err != nil {
		return "", err
	}
	return session.PaymentIntentID, nil
}

// errors here never change the verdict of Complete
func (o *IntentOrchestrator) backfillCustomer(ctx context.Context, payment *domain.Payment, intent *domain.Intent) {
	_, ok, err := o.userMeta.GetUserMeta(ctx, payment.User.ID, domain.MetaStripeCustomer)
	if err != nil || ok {
		return
	}

	customerID := intent.CustomerID
	if customerID == "" {
		pm, err := o.stripe.RetrievePaymentMethod(ctx, intent.PaymentMethodID)
		if err != nil {
			o.logger.Warn("failed to retrieve payment method for customer backfill",
				"variable_symbol", payment.VariableSymbol,
				"error", err)
			return
		}
		customerID = pm.CustomerID
	}
	if customerID == "" {
		return
	}

	if err := o.userMeta.AddUserMeta(ctx, payment.User.ID, domain.MetaStripeCustomer, customerID); err != nil {
		o.logger.Warn("failed to store stripe customer",
			"user_id", payment.User.ID,
			"error", err)
	}
}

func (o *IntentOrchestrator) persistIntent(ctx context.Context, payment *domain.Payment, intent *domain.Intent) error {
	if err := o.paymentMeta.AddPaymentMeta(ctx, payment.ID, domain.MetaPaymentIntentID, intent.ID); err != nil {
		return application.NewInternalError(err)
	}
	return nil
}

func (o *IntentOrchestrator) lineItems(payment *domain.Payment) ([]application.LineItem, error) {
	if len(payment.Items) == 0 {
		amount, err := o.converter.DecimalToMinor(payment.Amount, payment.Currency)
		if err != nil {
			return nil, err
		}
		return []application.LineItem{{
			Name:       "Payment " + payment.VariableSymbol,
			UnitAmount: amount,
			Currency:   payment.Currency,
			Quantity:   1,
		}}, nil
	}

	items := make([]application.LineItem, 0, len(payment.Items))
	for _, item := range payment.Items {
		amount, err := o.converter.DecimalToMinor(item.Amount, payment.Currency)
		if err != nil {
			return nil, err
		}
		quantity := item.Count
		if quantity < 1 {
			quantity = 1
		}
		items = append(items, application.LineItem{
			Name:       item.Name,
			UnitAmount: amount,
			Currency:   payment.Currency,
			Quantity:   quantity,
		})
	}
	return items, nil
}

package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/remp2020/crm-stripe-module/internal/application"
	"github.com/remp2020/crm-stripe-module/internal/application/services"
	"github.com/remp2020/crm-stripe-module/internal/application/services/testhelpers"
	"github.com/remp2020/crm-stripe-module/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// BEGIN
// ============================================================================

func TestPaymentService_Begin(t *testing.T) {
	ctx := context.Background()

	t.Run("redirects to checkout", func(t *testing.T) {
		f := newFixture(t)
		payment := testhelpers.NewPayment(t, domain.GatewayStripe)
		f.payments.Add(payment)

		f.stripe.On("CreateCheckoutSession", mock.Anything, mock.Anything).
			Return(&application.CheckoutSession{ID: "cs_1", PaymentIntentID: "pi_1"}, nil).Once()
		f.stripe.On("RetrievePaymentIntent", mock.Anything, "pi_1").
			Return(&domain.Intent{ID: "pi_1", Status: domain.IntentRequiresPaymentMethod}, nil).Once()

		outcome, err := f.service.Begin(ctx, payment.VariableSymbol)

		require.NoError(t, err)
		assert.True(t, outcome.IsRedirect())
		assert.Contains(t, f.locker.Locked, "stripe:payment:"+payment.VariableSymbol)
		assert.False(t, f.locker.IsHeld("stripe:payment:"+payment.VariableSymbol))
	})

	t.Run("fatal gateway error becomes fail outcome", func(t *testing.T) {
		f := newFixture(t)
		payment := testhelpers.NewPayment(t, domain.GatewayStripe)
		f.payments.Add(payment)
		require.NoError(t, f.meta.AddPaymentMeta(ctx, payment.ID, domain.MetaPaymentMethodID, "pm_1"))
		require.NoError(t, f.meta.AddUserMeta(ctx, payment.User.ID, domain.MetaStripeCustomer, "cus_1"))

		f.stripe.On("AttachPaymentMethod", mock.Anything, "pm_1", "cus_1").
			Return(&application.PaymentMethod{ID: "pm_1"}, nil).Once()
		f.stripe.On("CreatePaymentIntent", mock.Anything, mock.Anything).
			Return(&domain.Intent{ID: "pi_1", Status: domain.IntentCanceled}, nil).Once()

		outcome, err := f.service.Begin(ctx, payment.VariableSymbol)

		require.NoError(t, err)
		assert.True(t, outcome.IsFail())
		assert.Equal(t, domain.ReasonPreviousPaymentFailed, outcome.Reason)
		assert.Equal(t, "https://crm.example.com/sales-funnel/error?vs="+payment.VariableSymbol, outcome.URL)
	})

	t.Run("transient errors propagate", func(t *testing.T) {
		f := newFixture(t)
		payment := testhelpers.NewPayment(t, domain.GatewayStripe)
		f.payments.Add(payment)

		f.stripe.On("CreateCheckoutSession", mock.Anything, mock.Anything).
			Return(nil, &application.StripeError{Type: application.StripeErrorTypeAPI, HTTPStatus: 503}).Once()

		_, err := f.service.Begin(ctx, payment.VariableSymbol)

		_, ok := application.IsStripeError(err)
		assert.True(t, ok)
	})

	t.Run("concurrent begin is rejected", func(t *testing.T) {
		f := newFixture(t)
		payment := testhelpers.NewPayment(t, domain.GatewayStripe)
		f.payments.Add(payment)
		unlock, err := f.locker.Lock(ctx, "stripe:payment:"+payment.VariableSymbol)
		require.NoError(t, err)
		defer unlock()

		_, err = f.service.Begin(ctx, payment.VariableSymbol)

		svcErr, ok := application.IsServiceError(err)
		require.True(t, ok)
		assert.Equal(t, application.ErrCodeLocked, svcErr.Code)
	})

	t.Run("wallet payment redirects to return url", func(t *testing.T) {
		f := newFixture(t)
		payment := testhelpers.NewPayment(t, domain.GatewayStripeWallet)
		f.payments.Add(payment)

		outcome, err := f.service.Begin(ctx, payment.VariableSymbol)

		require.NoError(t, err)
		assert.Equal(t, domain.Redirect("https://crm.example.com/payments/return?vs="+payment.VariableSymbol), outcome)
	})

	t.Run("paid payment short circuits", func(t *testing.T) {
		f := newFixture(t)
		payment := testhelpers.NewPayment(t, domain.GatewayStripe)
		payment.Status = domain.StatusPaid
		f.payments.Add(payment)

		outcome, err := f.service.Begin(ctx, payment.VariableSymbol)

		require.NoError(t, err)
		assert.True(t, outcome.IsSuccess())
	})

	t.Run("failed payment cannot begin again", func(t *testing.T) {
		f := newFixture(t)
		payment := testhelpers.NewPayment(t, domain.GatewayStripe)
		payment.Status = domain.StatusFail
		f.payments.Add(payment)

		_, err := f.service.Begin(ctx, payment.VariableSymbol)

		assert.True(t, domain.IsErrorCode(err, domain.ErrCodeInvalidTransition))
	})

	t.Run("unknown gateway", func(t *testing.T) {
		f := newFixture(t)
		payment := testhelpers.NewPayment(t, "paypal")
		f.payments.Add(payment)

		_, err := f.service.Begin(ctx, payment.VariableSymbol)

		svcErr, ok := application.IsServiceError(err)
		require.True(t, ok)
		assert.Equal(t, application.ErrCodeUnsupportedGateway, svcErr.Code)
	})
}

// ============================================================================
// COMPLETE
// ============================================================================

func TestPaymentService_Complete(t *testing.T) {
	ctx := context.Background()

	t.Run("succeeded intent marks payment paid", func(t *testing.T) {
		f := newFixture(t)
		payment := testhelpers.NewPayment(t, domain.GatewayStripe)
		f.payments.Add(payment)
		require.NoError(t, f.meta.AddPaymentMeta(ctx, payment.ID, domain.MetaPaymentIntentID, "pi_1"))

		f.stripe.On("RetrievePaymentIntent", mock.Anything, "pi_1").
			Return(&domain.Intent{ID: "pi_1", Status: domain.IntentSucceeded}, nil).Once()

		outcome, err := f.service.Complete(ctx, payment.VariableSymbol)

		require.NoError(t, err)
		assert.True(t, outcome.IsSuccess())
		assert.Equal(t, "https://crm.example.com/sales-funnel/success?vs="+payment.VariableSymbol, outcome.URL)
		assert.Equal(t, domain.StatusPaid, payment.Status)
		assert.NotNil(t, payment.PaidAt)
		assert.Equal(t, []string{payment.VariableSymbol}, f.payments.Notified)

		again, err := f.service.Complete(ctx, payment.VariableSymbol)
		require.NoError(t, err)
		assert.True(t, again.IsSuccess())
		assert.Len(t, f.payments.Notified, 1)
	})

	t.Run("unpaid intent marks payment failed", func(t *testing.T) {
		f := newFixture(t)
		payment := testhelpers.NewPayment(t, domain.GatewayStripe)
		f.payments.Add(payment)
		require.NoError(t, f.meta.AddPaymentMeta(ctx, payment.ID, domain.MetaPaymentIntentID, "pi_1"))

		f.stripe.On("RetrievePaymentIntent", mock.Anything, "pi_1").
			Return(&domain.Intent{ID: "pi_1", Status: domain.IntentRequiresPaymentMethod}, nil).Once()

		outcome, err := f.service.Complete(ctx, payment.VariableSymbol)

		require.NoError(t, err)
		assert.True(t, outcome.IsFail())
		assert.Equal(t, domain.StatusFail, payment.Status)
		assert.Empty(t, f.payments.Notified)
	})

	t.Run("abandoned payment fails without remote call", func(t *testing.T) {
		f := newFixture(t)
		payment := testhelpers.NewPayment(t, domain.GatewayStripe)
		f.payments.Add(payment)

		outcome, err := f.service.Complete(ctx, payment.VariableSymbol)

		require.NoError(t, err)
		assert.True(t, outcome.IsFail())
	})

	t.Run("wallet payment redirects to wallet page", func(t *testing.T) {
		f := newFixture(t)
		payment := testhelpers.NewPayment(t, domain.GatewayStripeWallet)
		f.payments.Add(payment)

		outcome, err := f.service.Complete(ctx, payment.VariableSymbol)

		require.NoError(t, err)
		assert.Equal(t, domain.Redirect("https://crm.example.com/stripe/wallet/"+payment.VariableSymbol), outcome)
		assert.Equal(t, domain.StatusForm, payment.Status)
	})

	t.Run("late confirmation of failed payment", func(t *testing.T) {
		f := newFixture(t)
		payment := testhelpers.NewPayment(t, domain.GatewayStripe)
		payment.Status = domain.StatusFail
		f.payments.Add(payment)
		require.NoError(t, f.meta.AddPaymentMeta(ctx, payment.ID, domain.MetaPaymentIntentID, "pi_1"))

		f.stripe.On("RetrievePaymentIntent", mock.Anything, "pi_1").
			Return(&domain.Intent{ID: "pi_1", Status: domain.IntentSucceeded}, nil).Once()

		outcome, err := f.service.Complete(ctx, payment.VariableSymbol)

		require.NoError(t, err)
		assert.True(t, outcome.IsSuccess())
		assert.Equal(t, domain.StatusPaid, payment.Status)
	})

	t.Run("store failure propagates", func(t *testing.T) {
		f := newFixture(t)
		payment := testhelpers.NewPayment(t, domain.GatewayStripe)
		f.payments.Add(payment)
		require.NoError(t, f.meta.AddPaymentMeta(ctx, payment.ID, domain.MetaPaymentIntentID, "pi_1"))
		dbErr := errors.New("connection reset")
		f.payments.UpdateStatusFn = func(context.Context, *domain.Payment, domain.PaymentStatus, bool) error {
			return dbErr
		}

		f.stripe.On("RetrievePaymentIntent", mock.Anything, "pi_1").
			Return(&domain.Intent{ID: "pi_1", Status: domain.IntentSucceeded}, nil).Once()

		_, err := f.service.Complete(ctx, payment.VariableSymbol)

		assert.ErrorIs(t, err, dbErr)
	})
}

// ============================================================================
// CHARGE
// ============================================================================

func TestPaymentService_Charge(t *testing.T) {
	ctx := context.Background()

	t.Run("ok charge marks payment paid", func(t *testing.T) {
		f := newFixture(t)
		payment := testhelpers.NewPayment(t, domain.GatewayStripeRecurrent)
		f.payments.Add(payment)

		f.stripe.On("CreatePaymentIntent", mock.Anything, mock.Anything).
			Return(&domain.Intent{ID: "pi_1", Status: domain.IntentSucceeded, PaymentMethodID: "pm_1"}, nil).Once()

		report, err := f.service.Charge(ctx, payment.VariableSymbol, "pm_1")

		require.NoError(t, err)
		assert.True(t, report.OK())
		assert.Equal(t, domain.StatusPaid, payment.Status)
		assert.Equal(t, []string{payment.VariableSymbol}, f.payments.Notified)
	})

	t.Run("declined charge marks payment failed", func(t *testing.T) {
		f := newFixture(t)
		payment := testhelpers.NewPayment(t, domain.GatewayStripeRecurrent)
		f.payments.Add(payment)

		f.stripe.On("CreatePaymentIntent", mock.Anything, mock.Anything).Return(nil, &application.StripeError{
			Type:        application.StripeErrorTypeCard,
			Code:        "card_declined",
			DeclineCode: "lost_card",
			HTTPStatus:  402,
		}).Once()

		report, err := f.service.Charge(ctx, payment.VariableSymbol, "pm_1")

		require.NoError(t, err)
		assert.Equal(t, domain.ChargeStop, report.Result)
		assert.Equal(t, domain.StatusFail, payment.Status)
		assert.Empty(t, f.payments.Notified)
	})

	t.Run("one-off gateway cannot charge", func(t *testing.T) {
		f := newFixture(t)
		payment := testhelpers.NewPayment(t, domain.GatewayStripe)
		f.payments.Add(payment)

		_, err := f.service.Charge(ctx, payment.VariableSymbol, "pm_1")

		assert.True(t, domain.IsErrorCode(err, domain.ErrCodeUnsupportedOperation))
	})
}

// ============================================================================
// REGISTRY, RESOLVER, SETUP INTENT
// ============================================================================

func TestGatewayRegistry(t *testing.T) {
	f := newFixture(t)

	for _, code := range []string{domain.GatewayStripe, domain.GatewayStripeRecurrent, domain.GatewayStripeWallet} {
		gateway, err := f.registry.Get(code)
		require.NoError(t, err)
		assert.Equal(t, code, gateway.Code())
	}

	_, err := f.registry.Rechargeable(domain.GatewayStripeWallet)
	assert.True(t, domain.IsErrorCode(err, domain.ErrCodeUnsupportedOperation))

	issuer, ok := f.registry.IntentIssuer()
	require.True(t, ok)
	assert.IsType(t, &services.StripeGateway{}, issuer)
}

func TestRedirectResolver(t *testing.T) {
	resolver := services.NewRedirectResolver(testhelpers.StripeConfig())

	wallet := testhelpers.NewPayment(t, domain.GatewayStripeWallet)
	card := testhelpers.NewPayment(t, domain.GatewayStripe)

	assert.True(t, resolver.WantsToRedirect(wallet))
	assert.False(t, resolver.WantsToRedirect(card))
	assert.False(t, resolver.WantsToRedirect(nil))

	target, err := resolver.RedirectTarget(wallet)
	require.NoError(t, err)
	assert.Equal(t, "https://crm.example.com/stripe/wallet/"+wallet.VariableSymbol, target)

	_, err = resolver.RedirectTarget(card)
	assert.True(t, domain.IsErrorCode(err, domain.ErrCodeInvalidGateway))
}

func TestSetupIntentService_Create(t *testing.T) {
	f := newFixture(t)
	svc := services.NewSetupIntentService(f.registry)

	f.stripe.On("CreateSetupIntent", mock.Anything).
		Return(&domain.SetupIntent{ID: "seti_1", ClientSecret: "seti_1_secret"}, nil).Once()

	intent, err := svc.Create(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "seti_1", intent.ID)
	assert.Equal(t, "seti_1_secret", intent.ClientSecret)
}

// ============================================================================
// OBSERVER
// ============================================================================

type recordingObserver struct {
	outcomes []string
	charges  []string
	wallet   []string
}

func (o *recordingObserver) PaymentOutcome(gateway, outcome string) {
	o.outcomes = append(o.outcomes, gateway+":"+outcome)
}

func (o *recordingObserver) RecurrentCharge(result string) {
	o.charges = append(o.charges, result)
}

func (o *recordingObserver) WalletConfirmation(result string) {
	o.wallet = append(o.wallet, result)
}

func TestPaymentService_Observer(t *testing.T) {
	ctx := context.Background()

	t.Run("reports begin outcome with gateway", func(t *testing.T) {
		f := newFixture(t)
		observer := &recordingObserver{}
		f.service.WithObserver(observer)
		payment := testhelpers.NewPayment(t, domain.GatewayStripeWallet)
		f.payments.Add(payment)

		_, err := f.service.Begin(ctx, payment.VariableSymbol)

		require.NoError(t, err)
		assert.Equal(t, []string{"stripe_wallet:redirect"}, observer.outcomes)
	})

	t.Run("reports errors without gateway when payment is missing", func(t *testing.T) {
		f := newFixture(t)
		observer := &recordingObserver{}
		f.service.WithObserver(observer)

		_, err := f.service.Complete(ctx, "404")

		require.Error(t, err)
		assert.Equal(t, []string{":error"}, observer.outcomes)
	})

	t.Run("reports wallet rejection", func(t *testing.T) {
		f := newFixture(t)
		observer := &recordingObserver{}
		f.walletSvc.WithObserver(observer)

		outcome, err := f.walletSvc.Confirm(ctx, "404", "pi_1")

		require.NoError(t, err)
		assert.True(t, outcome.IsFail())
		assert.Equal(t, []string{"rejected"}, observer.wallet)
	})
}

// ============================================================================
// STATE RE-READ UNDER LOCK
// ============================================================================

// settleWhileLocking changes the stored status right before the lock is
// granted, as a request that held the lock first would.
func settleWhileLocking(f *fixture, variableSymbol string, status domain.PaymentStatus) {
	f.payments.Snapshots = true
	f.locker.LockFn = func(ctx context.Context, key string) (func(), error) {
		f.payments.SetStatus(variableSymbol, status)
		return func() {}, nil
	}
}

func TestPaymentService_RereadsPaymentUnderLock(t *testing.T) {
	ctx := context.Background()

	t.Run("charge of a payment paid meanwhile issues no remote charge", func(t *testing.T) {
		f := newFixture(t)
		payment := testhelpers.NewPayment(t, domain.GatewayStripeRecurrent)
		f.payments.Add(payment)
		settleWhileLocking(f, payment.VariableSymbol, domain.StatusPaid)

		report, err := f.service.Charge(ctx, payment.VariableSymbol, "pm_1")

		assert.Nil(t, report)
		assert.True(t, domain.IsErrorCode(err, domain.ErrCodeInvalidTransition))
		f.stripe.AssertNotCalled(t, "CreatePaymentIntent", mock.Anything, mock.Anything)
		assert.Empty(t, f.payments.Notified)
	})

	t.Run("charge with an unchanged payment still settles it", func(t *testing.T) {
		f := newFixture(t)
		payment := testhelpers.NewPayment(t, domain.GatewayStripeRecurrent)
		f.payments.Add(payment)
		settleWhileLocking(f, payment.VariableSymbol, domain.StatusForm)

		f.stripe.On("CreatePaymentIntent", mock.Anything, mock.Anything).
			Return(&domain.Intent{ID: "pi_1", Status: domain.IntentSucceeded, PaymentMethodID: "pm_1"}, nil).Once()

		report, err := f.service.Charge(ctx, payment.VariableSymbol, "pm_1")

		require.NoError(t, err)
		assert.True(t, report.OK())
		assert.Equal(t, domain.StatusPaid, f.payments.Status(payment.VariableSymbol))
		assert.Equal(t, []string{payment.VariableSymbol}, f.payments.Notified)
	})

	t.Run("complete of a payment paid meanwhile succeeds without remote call", func(t *testing.T) {
		f := newFixture(t)
		payment := testhelpers.NewPayment(t, domain.GatewayStripe)
		f.payments.Add(payment)
		require.NoError(t, f.meta.AddPaymentMeta(ctx, payment.ID, domain.MetaPaymentIntentID, "pi_1"))
		settleWhileLocking(f, payment.VariableSymbol, domain.StatusPaid)

		outcome, err := f.service.Complete(ctx, payment.VariableSymbol)

		require.NoError(t, err)
		assert.True(t, outcome.IsSuccess())
		assert.Equal(t, "https://crm.example.com/sales-funnel/success?vs="+payment.VariableSymbol, outcome.URL)
		f.stripe.AssertNotCalled(t, "RetrievePaymentIntent", mock.Anything, mock.Anything)
		assert.Empty(t, f.payments.Notified)
	})

	t.Run("begin of a payment paid meanwhile succeeds without remote call", func(t *testing.T) {
		f := newFixture(t)
		payment := testhelpers.NewPayment(t, domain.GatewayStripe)
		f.payments.Add(payment)
		settleWhileLocking(f, payment.VariableSymbol, domain.StatusPaid)

		outcome, err := f.service.Begin(ctx, payment.VariableSymbol)

		require.NoError(t, err)
		assert.True(t, outcome.IsSuccess())
		f.stripe.AssertNotCalled(t, "CreateCheckoutSession", mock.Anything, mock.Anything)
	})

	t.Run("begin of a payment failed meanwhile is rejected", func(t *testing.T) {
		f := newFixture(t)
		payment := testhelpers.NewPayment(t, domain.GatewayStripe)
		f.payments.Add(payment)
		settleWhileLocking(f, payment.VariableSymbol, domain.StatusFail)

		_, err := f.service.Begin(ctx, payment.VariableSymbol)

		assert.True(t, domain.IsErrorCode(err, domain.ErrCodeInvalidTransition))
		f.stripe.AssertNotCalled(t, "CreateCheckoutSession", mock.Anything, mock.Anything)
	})
}

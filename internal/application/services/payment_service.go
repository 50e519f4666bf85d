package services

import (
	"context"
	"log/slog"

	"github.com/remp2020/crm-stripe-module/internal/application"
	"github.com/remp2020/crm-stripe-module/internal/config"
	"github.com/remp2020/crm-stripe-module/internal/domain"
)

// PaymentService is the entry point of the return and begin handlers. It
// serializes work per variable symbol and maps gateway verdicts onto payment
// status changes.
type PaymentService struct {
	payments application.PaymentStore
	gateways *GatewayRegistry
	resolver *RedirectResolver
	locker   application.Locker
	observer application.Observer
	cfg      config.StripeConfig
	logger   *slog.Logger
}

func NewPaymentService(
	payments application.PaymentStore,
	gateways *GatewayRegistry,
	resolver *RedirectResolver,
	locker application.Locker,
	cfg config.StripeConfig,
	logger *slog.Logger,
) *PaymentService {
	return &PaymentService{
		payments: payments,
		gateways: gateways,
		resolver: resolver,
		locker:   locker,
		observer: application.NopObserver{},
		cfg:      cfg,
		logger:   logger,
	}
}

// WithObserver reports begin and complete outcomes and charge results to o.
func (s *PaymentService) WithObserver(o application.Observer) *PaymentService {
	s.observer = o
	return s
}

// Begin starts the payment on its gateway. Fatal gateway failures are turned
// into a fail outcome pointing at the failure page.
func (s *PaymentService) Begin(ctx context.Context, variableSymbol string) (domain.Outcome, error) {
	var gatewayCode string
	outcome, err := s.begin(ctx, variableSymbol, &gatewayCode)
	s.observer.PaymentOutcome(gatewayCode, outcomeLabel(outcome, err))
	return outcome, err
}

func (s *PaymentService) begin(ctx context.Context, variableSymbol string, gatewayCode *string) (domain.Outcome, error) {
	payment, err := s.payments.FindByVariableSymbol(ctx, variableSymbol)
	if err != nil {
		return domain.Outcome{}, err
	}
	*gatewayCode = payment.GatewayCode
	if payment.IsPaid() {
		return s.succeeded(payment), nil
	}
	if !payment.IsForm() {
		return domain.Outcome{}, domain.NewInvalidTransitionError(payment.Status, domain.StatusForm)
	}

	gateway, err := s.gateways.Get(payment.GatewayCode)
	if err != nil {
		return domain.Outcome{}, err
	}

	payment, unlock, err := lockPayment(ctx, s.locker, s.payments, variableSymbol)
	if err != nil {
		return domain.Outcome{}, err
	}
	defer unlock()

	if payment.IsPaid() {
		return s.succeeded(payment), nil
	}
	if !payment.IsForm() {
		return domain.Outcome{}, domain.NewInvalidTransitionError(payment.Status, domain.StatusForm)
	}

	outcome, err := gateway.Begin(ctx, payment)
	if err != nil {
		if application.IsFatal(err) {
			s.logger.Error("payment begin failed",
				"variable_symbol", variableSymbol,
				"gateway", payment.GatewayCode,
				"error", err)
			return s.failed(payment), nil
		}
		return domain.Outcome{}, err
	}

	return outcome, nil
}

// Complete settles the payment from the gateway verdict. It is safe to call
// repeatedly; a paid payment short-circuits.
func (s *PaymentService) Complete(ctx context.Context, variableSymbol string) (domain.Outcome, error) {
	var gatewayCode string
	outcome, err := s.complete(ctx, variableSymbol, &gatewayCode)
	s.observer.PaymentOutcome(gatewayCode, outcomeLabel(outcome, err))
	return outcome, err
}

func (s *PaymentService) complete(ctx context.Context, variableSymbol string, gatewayCode *string) (domain.Outcome, error) {
	payment, err := s.payments.FindByVariableSymbol(ctx, variableSymbol)
	if err != nil {
		return domain.Outcome{}, err
	}
	*gatewayCode = payment.GatewayCode
	if payment.IsPaid() {
		return s.succeeded(payment), nil
	}

	gateway, err := s.gateways.Get(payment.GatewayCode)
	if err != nil {
		return domain.Outcome{}, err
	}

	payment, unlock, err := lockPayment(ctx, s.locker, s.payments, variableSymbol)
	if err != nil {
		return domain.Outcome{}, err
	}
	defer unlock()

	if payment.IsPaid() {
		return s.succeeded(payment), nil
	}

	verdict, err := gateway.Complete(ctx, payment)
	if err != nil {
		return domain.Outcome{}, err
	}

	s.logger.Info("payment completed",
		"variable_symbol", variableSymbol,
		"gateway", payment.GatewayCode,
		"verdict", verdict.String())

	switch verdict {
	case domain.CompletionPaid:
		if err := s.payments.UpdateStatus(ctx, payment, domain.StatusPaid, true); err != nil {
			return domain.Outcome{}, err
		}
		return s.succeeded(payment), nil

	case domain.CompletionUnpaid:
		if payment.IsForm() {
			if err := s.payments.UpdateStatus(ctx, payment, domain.StatusFail, false); err != nil {
				return domain.Outcome{}, err
			}
		}
		return s.failed(payment), nil
	}

	if s.resolver.WantsToRedirect(payment) {
		target, err := s.resolver.RedirectTarget(payment)
		if err != nil {
			return domain.Outcome{}, err
		}
		return domain.Redirect(target), nil
	}
	return s.failed(payment), nil
}

// Charge renews a payment off-session with a stored token.
func (s *PaymentService) Charge(ctx context.Context, variableSymbol, token string) (*ChargeReport, error) {
	payment, err := s.payments.FindByVariableSymbol(ctx, variableSymbol)
	if err != nil {
		return nil, err
	}
	if !payment.IsForm() {
		return nil, domain.NewInvalidTransitionError(payment.Status, domain.StatusPaid)
	}

	gateway, err := s.gateways.Rechargeable(payment.GatewayCode)
	if err != nil {
		return nil, err
	}

	payment, unlock, err := lockPayment(ctx, s.locker, s.payments, variableSymbol)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if !payment.IsForm() {
		return nil, domain.NewInvalidTransitionError(payment.Status, domain.StatusPaid)
	}

	report, err := gateway.Charge(ctx, payment, token)
	if err != nil {
		s.observer.RecurrentCharge("error")
		return nil, err
	}
	s.observer.RecurrentCharge(string(report.Result))

	status := domain.StatusFail
	if report.OK() {
		status = domain.StatusPaid
	}
	if err := s.payments.UpdateStatus(ctx, payment, status, report.OK()); err != nil {
		return nil, err
	}

	return report, nil
}

// lockPayment takes the payment lock and reloads the payment under it. State
// checks made before the lock only skip work early; the reloaded row decides.
func lockPayment(ctx context.Context, locker application.Locker, payments application.PaymentStore, variableSymbol string) (*domain.Payment, func(), error) {
	unlock, err := locker.Lock(ctx, paymentLockKey(variableSymbol))
	if err != nil {
		return nil, nil, err
	}

	payment, err := payments.FindByVariableSymbol(ctx, variableSymbol)
	if err != nil {
		unlock()
		return nil, nil, err
	}
	return payment, unlock, nil
}

func (s *PaymentService) succeeded(payment *domain.Payment) domain.Outcome {
	return domain.Success().WithURL(returnURL(s.cfg.SuccessURL, payment))
}

func (s *PaymentService) failed(payment *domain.Payment) domain.Outcome {
	return domain.Fail(domain.ReasonPreviousPaymentFailed).WithURL(returnURL(s.cfg.FailureURL, payment))
}

func outcomeLabel(outcome domain.Outcome, err error) string {
	if err != nil {
		return "error"
	}
	return string(outcome.Kind)
}

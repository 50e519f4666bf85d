package services

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/google/uuid"
	"github.com/remp2020/crm-stripe-module/internal/application"
	"github.com/remp2020/crm-stripe-module/internal/config"
	"github.com/remp2020/crm-stripe-module/internal/domain"
	"github.com/remp2020/crm-stripe-module/internal/money"
)

// WalletIntentClient creates intents the browser wallet confirms on its own
// and verifies them against remote state afterwards.
type WalletIntentClient struct {
	stripe      application.StripeAPI
	paymentMeta application.PaymentMetaStore
	converter   *money.Converter
}

func NewWalletIntentClient(stripe application.StripeAPI, paymentMeta application.PaymentMetaStore, converter *money.Converter) *WalletIntentClient {
	return &WalletIntentClient{
		stripe:      stripe,
		paymentMeta: paymentMeta,
		converter:   converter,
	}
}

func (c *WalletIntentClient) CreateIntent(ctx context.Context, payment *domain.Payment) (*domain.Intent, error) {
	amount, err := c.converter.DecimalToMinor(payment.Amount, payment.Currency)
	if err != nil {
		return nil, err
	}

	return c.stripe.CreatePaymentIntent(ctx, application.PaymentIntentRequest{
		Amount:         amount,
		Currency:       payment.Currency,
		Metadata:       intentMetadata(payment),
		IdempotencyKey: uuid.New().String(),
	})
}

// LinkIntent replaces any intent previously linked to the payment.
func (c *WalletIntentClient) LinkIntent(ctx context.Context, payment *domain.Payment, intentID string) error {
	if err := c.paymentMeta.RemovePaymentMeta(ctx, payment.ID, domain.MetaStripeIntent); err != nil {
		return application.NewInternalError(err)
	}
	if err := c.paymentMeta.AddPaymentMeta(ctx, payment.ID, domain.MetaStripeIntent, intentID); err != nil {
		return application.NewInternalError(err)
	}
	return nil
}

// ValidIntentForPayment reports whether intentID is the one linked to the payment.
func (c *WalletIntentClient) ValidIntentForPayment(ctx context.Context, payment *domain.Payment, intentID string) (bool, error) {
	linked, ok, err := c.paymentMeta.GetPaymentMeta(ctx, payment.ID, domain.MetaStripeIntent)
	if err != nil {
		return false, application.NewInternalError(err)
	}
	return ok && intentID != "" && linked == intentID, nil
}

// IsIntentPaid fetches the intent and checks that it succeeded.
func (c *WalletIntentClient) IsIntentPaid(ctx context.Context, intentID string) (bool, error) {
	intent, err := c.stripe.RetrievePaymentIntent(ctx, intentID)
	if err != nil {
		return false, err
	}
	return intent.Succeeded(), nil
}

func intentMetadata(payment *domain.Payment) map[string]string {
	meta := map[string]string{
		"source":     "crm",
		"user_id":    strconv.FormatInt(payment.User.ID, 10),
		"payment_id": strconv.FormatInt(payment.ID, 10),
		"vs":         payment.VariableSymbol,
	}
	if payment.SubscriptionTypeID != nil {
		meta["subscription_type_id"] = strconv.FormatInt(*payment.SubscriptionTypeID, 10)
	}
	if payment.SubscriptionTypeLength != nil {
		meta["subscription_type_length"] = strconv.Itoa(*payment.SubscriptionTypeLength)
	}
	return meta
}

type WalletDisplayItem struct {
	Label  string `json:"label"`
	Amount int64  `json:"amount"`
}

// WalletCheckout is everything the pay sheet needs to confirm the intent.
type WalletCheckout struct {
	VariableSymbol string              `json:"variable_symbol"`
	IntentID       string              `json:"payment_intent_id"`
	ClientSecret   string              `json:"client_secret"`
	PublishableKey string              `json:"publishable_key"`
	DisplayName    string              `json:"display_name"`
	CountryCode    string              `json:"country_code"`
	Currency       string              `json:"currency"`
	TotalAmount    int64               `json:"total_amount"`
	DisplayItems   []WalletDisplayItem `json:"display_items"`
	ConfirmURL     string              `json:"confirm_url"`
}

type WalletService struct {
	payments application.PaymentStore
	client   *WalletIntentClient
	locker   application.Locker
	observer application.Observer
	cfg      config.StripeConfig
	logger   *slog.Logger
}

func NewWalletService(
	payments application.PaymentStore,
	client *WalletIntentClient,
	locker application.Locker,
	cfg config.StripeConfig,
	logger *slog.Logger,
) *WalletService {
	return &WalletService{
		payments: payments,
		client:   client,
		locker:   locker,
		observer: application.NopObserver{},
		cfg:      cfg,
		logger:   logger,
	}
}

func (s *WalletService) WithObserver(o application.Observer) *WalletService {
	s.observer = o
	return s
}

// Prepare creates and links a fresh intent for the wallet payment.
func (s *WalletService) Prepare(ctx context.Context, variableSymbol string) (*WalletCheckout, error) {
	payment, err := s.payments.FindByVariableSymbol(ctx, variableSymbol)
	if err != nil {
		return nil, err
	}
	if payment.GatewayCode != domain.GatewayStripeWallet {
		return nil, domain.NewInvalidGatewayError(domain.GatewayStripeWallet, payment.GatewayCode)
	}

	unlock, err := s.locker.Lock(ctx, paymentLockKey(variableSymbol))
	if err != nil {
		return nil, err
	}
	defer unlock()

	converter := s.client.converter
	total, err := converter.DecimalToMinor(payment.Amount, payment.Currency)
	if err != nil {
		return nil, err
	}

	items := make([]WalletDisplayItem, 0, len(payment.Items))
	for _, item := range payment.Items {
		amount, err := converter.DecimalToMinor(item.Amount, payment.Currency)
		if err != nil {
			return nil, err
		}
		items = append(items, WalletDisplayItem{Label: item.Name, Amount: amount})
	}

	intent, err := s.client.CreateIntent(ctx, payment)
	if err != nil {
		return nil, err
	}
	if err := s.client.LinkIntent(ctx, payment, intent.ID); err != nil {
		return nil, err
	}

	s.logger.Info("wallet intent linked",
		"variable_symbol", payment.VariableSymbol,
		"payment_intent_id", intent.ID)

	return &WalletCheckout{
		VariableSymbol: payment.VariableSymbol,
		IntentID:       intent.ID,
		ClientSecret:   intent.ClientSecret,
		PublishableKey: s.cfg.PublishableKey,
		DisplayName:    s.cfg.WalletDisplayName,
		CountryCode:    s.cfg.WalletCountry,
		Currency:       payment.Currency,
		TotalAmount:    total,
		DisplayItems:   items,
		ConfirmURL:     walletURL(s.cfg.WalletURL, payment.VariableSymbol) + "/confirm",
	}, nil
}

// Confirm settles the payment once the browser reports the intent confirmed.
// Every rejected check sends the user back to the wallet page.
func (s *WalletService) Confirm(ctx context.Context, variableSymbol, intentID string) (domain.Outcome, error) {
	outcome, err := s.confirm(ctx, variableSymbol, intentID)
	switch {
	case err != nil:
		s.observer.WalletConfirmation("error")
	case outcome.IsFail():
		s.observer.WalletConfirmation("rejected")
	default:
		s.observer.WalletConfirmation("paid")
	}
	return outcome, err
}

func (s *WalletService) confirm(ctx context.Context, variableSymbol, intentID string) (domain.Outcome, error) {
	failed := domain.Fail(domain.ReasonPreviousPaymentFailed).WithURL(walletURL(s.cfg.WalletURL, variableSymbol))

	payment, unlock, err := lockPayment(ctx, s.locker, s.payments, variableSymbol)
	if err != nil {
		if domain.IsErrorCode(err, domain.ErrCodePaymentNotFound) {
			return failed, nil
		}
		return domain.Outcome{}, err
	}
	defer unlock()

	if payment.GatewayCode != domain.GatewayStripeWallet || !payment.IsForm() {
		s.logger.Warn("wallet confirmation rejected",
			"variable_symbol", variableSymbol,
			"gateway", payment.GatewayCode,
			"status", payment.Status)
		return failed, nil
	}

	valid, err := s.client.ValidIntentForPayment(ctx, payment, intentID)
	if err != nil {
		return domain.Outcome{}, err
	}
	if !valid {
		s.logger.Warn("wallet intent does not belong to payment",
			"variable_symbol", variableSymbol,
			"payment_intent_id", intentID)
		return failed, nil
	}

	paid, err := s.client.IsIntentPaid(ctx, intentID)
	if err != nil {
		return domain.Outcome{}, err
	}
	if !paid {
		return failed, nil
	}

	if err := s.payments.UpdateStatus(ctx, payment, domain.StatusPaid, true); err != nil {
		return domain.Outcome{}, err
	}

	return domain.Redirect(returnURL(s.cfg.SuccessURL, payment)), nil
}

package services

import (
	"context"

	"github.com/remp2020/crm-stripe-module/internal/application"
	"github.com/remp2020/crm-stripe-module/internal/config"
	"github.com/remp2020/crm-stripe-module/internal/domain"
)

// Gateway drives a payment of one gateway code from begin to settlement.
type Gateway interface {
	Code() string
	Begin(ctx context.Context, payment *domain.Payment) (domain.Outcome, error)
	Complete(ctx context.Context, payment *domain.Payment) (domain.Completion, error)
}

// Rechargeable gateways can charge a stored token without the user present.
type Rechargeable interface {
	Gateway
	Charge(ctx context.Context, payment *domain.Payment, token string) (*ChargeReport, error)
	CheckValid(ctx context.Context, token string) error
	CheckExpire(ctx context.Context, tokens []string) error
	Token(ctx context.Context, payment *domain.Payment) (string, bool, error)
}

// IntentIssuer gateways can hand out setup intents for collecting a card up front.
type IntentIssuer interface {
	CreateSetupIntent(ctx context.Context) (*domain.SetupIntent, error)
}

func completion(paid bool) domain.Completion {
	if paid {
		return domain.CompletionPaid
	}
	return domain.CompletionUnpaid
}

// StripeGateway handles one-off card payments.
type StripeGateway struct {
	orchestrator *IntentOrchestrator
	stripe       application.StripeAPI
}

var (
	_ Gateway      = (*StripeGateway)(nil)
	_ IntentIssuer = (*StripeGateway)(nil)
)

func NewStripeGateway(orchestrator *IntentOrchestrator, stripe application.StripeAPI) *StripeGateway {
	return &StripeGateway{orchestrator: orchestrator, stripe: stripe}
}

func (g *StripeGateway) Code() string { return domain.GatewayStripe }

func (g *StripeGateway) Begin(ctx context.Context, payment *domain.Payment) (domain.Outcome, error) {
	return g.orchestrator.Begin(ctx, payment, domain.FutureUsageOnSession)
}

func (g *StripeGateway) Complete(ctx context.Context, payment *domain.Payment) (domain.Completion, error) {
	paid, err := g.orchestrator.Complete(ctx, payment)
	if err != nil {
		return domain.CompletionPending, err
	}
	return completion(paid), nil
}

func (g *StripeGateway) CreateSetupIntent(ctx context.Context) (*domain.SetupIntent, error) {
	return g.stripe.CreateSetupIntent(ctx)
}

// RecurrentGateway captures a reusable card on the first payment and charges
// it off-session on renewals.
type RecurrentGateway struct {
	orchestrator *IntentOrchestrator
	charger      *RecurrentCharger
	stripe       application.StripeAPI
}

var (
	_ Rechargeable = (*RecurrentGateway)(nil)
	_ IntentIssuer = (*RecurrentGateway)(nil)
)

func NewRecurrentGateway(orchestrator *IntentOrchestrator, charger *RecurrentCharger, stripe application.StripeAPI) *RecurrentGateway {
	return &RecurrentGateway{orchestrator: orchestrator, charger: charger, stripe: stripe}
}

func (g *RecurrentGateway) Code() string { return domain.GatewayStripeRecurrent }

func (g *RecurrentGateway) Begin(ctx context.Context, payment *domain.Payment) (domain.Outcome, error) {
	return g.orchestrator.Begin(ctx, payment, domain.FutureUsageOffSession)
}

func (g *RecurrentGateway) Complete(ctx context.Context, payment *domain.Payment) (domain.Completion, error) {
	paid, err := g.orchestrator.Complete(ctx, payment)
	if err != nil {
		return domain.CompletionPending, err
	}
	return completion(paid), nil
}

func (g *RecurrentGateway) Charge(ctx context.Context, payment *domain.Payment, token string) (*ChargeReport, error) {
	return g.charger.Charge(ctx, payment, token)
}

// CheckValid always fails: tokens of this processor cannot be pre-validated.
func (g *RecurrentGateway) CheckValid(_ context.Context, _ string) error {
	return domain.NewUnsupportedOperationError("check valid", g.Code())
}

// CheckExpire always fails: tokens of this processor do not expire.
func (g *RecurrentGateway) CheckExpire(_ context.Context, _ []string) error {
	return domain.NewUnsupportedOperationError("check expire", g.Code())
}

func (g *RecurrentGateway) Token(ctx context.Context, payment *domain.Payment) (string, bool, error) {
	return g.charger.Token(ctx, payment)
}

func (g *RecurrentGateway) CreateSetupIntent(ctx context.Context) (*domain.SetupIntent, error) {
	return g.stripe.CreateSetupIntent(ctx)
}

// WalletGateway defers to the wallet pay sheet; settlement is confirmed by
// WalletService, never on return.
type WalletGateway struct {
	cfg config.StripeConfig
}

var _ Gateway = (*WalletGateway)(nil)

func NewWalletGateway(cfg config.StripeConfig) *WalletGateway {
	return &WalletGateway{cfg: cfg}
}

func (g *WalletGateway) Code() string { return domain.GatewayStripeWallet }

func (g *WalletGateway) Begin(_ context.Context, payment *domain.Payment) (domain.Outcome, error) {
	return domain.Redirect(returnURL(g.cfg.ReturnURL, payment)), nil
}

func (g *WalletGateway) Complete(_ context.Context, _ *domain.Payment) (domain.Completion, error) {
	return domain.CompletionPending, nil
}

// GatewayRegistry resolves gateways by code.
type GatewayRegistry struct {
	gateways map[string]Gateway
	order    []string
}

func NewGatewayRegistry(gateways ...Gateway) *GatewayRegistry {
	r := &GatewayRegistry{gateways: make(map[string]Gateway, len(gateways))}
	for _, g := range gateways {
		if _, exists := r.gateways[g.Code()]; !exists {
			r.order = append(r.order, g.Code())
		}
		r.gateways[g.Code()] = g
	}
	return r
}

func (r *GatewayRegistry) Get(code string) (Gateway, error) {
	g, ok := r.gateways[code]
	if !ok {
		return nil, application.NewUnsupportedGatewayError(code)
	}
	return g, nil
}

func (r *GatewayRegistry) Rechargeable(code string) (Rechargeable, error) {
	g, err := r.Get(code)
	if err != nil {
		return nil, err
	}
	rg, ok := g.(Rechargeable)
	if !ok {
		return nil, domain.NewUnsupportedOperationError("charge", code)
	}
	return rg, nil
}

// IntentIssuer returns the first registered gateway able to create setup intents.
func (r *GatewayRegistry) IntentIssuer() (IntentIssuer, bool) {
	for _, code := range r.order {
		if issuer, ok := r.gateways[code].(IntentIssuer); ok {
			return issuer, true
		}
	}
	return nil, false
}

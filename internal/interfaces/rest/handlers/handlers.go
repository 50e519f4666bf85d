// Package handlers exposes the payment flows over HTTP.
package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-playground/validator"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/remp2020/crm-stripe-module/internal/application/services"
	"github.com/remp2020/crm-stripe-module/internal/config"
	"github.com/remp2020/crm-stripe-module/internal/domain"
)

type PaymentFlow interface {
	Begin(ctx context.Context, variableSymbol string) (domain.Outcome, error)
	Complete(ctx context.Context, variableSymbol string) (domain.Outcome, error)
	Charge(ctx context.Context, variableSymbol, token string) (*services.ChargeReport, error)
}

type SetupIntentCreator interface {
	Create(ctx context.Context) (*domain.SetupIntent, error)
}

type WalletFlow interface {
	Prepare(ctx context.Context, variableSymbol string) (*services.WalletCheckout, error)
	Confirm(ctx context.Context, variableSymbol, intentID string) (domain.Outcome, error)
}

type PaymentFinder interface {
	FindByVariableSymbol(ctx context.Context, variableSymbol string) (*domain.Payment, error)
}

type RedirectResolver interface {
	WantsToRedirect(payment *domain.Payment) bool
	RedirectTarget(payment *domain.Payment) (string, error)
}

// Pinger is a dependency checked by the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handlers struct {
	payments     PaymentFlow
	setupIntents SetupIntentCreator
	wallet       WalletFlow
	finder       PaymentFinder
	resolver     RedirectResolver
	health       map[string]Pinger
	cfg          config.StripeConfig
	validate     *validator.Validate
	logger       *slog.Logger
}

func NewHandlers(
	payments PaymentFlow,
	setupIntents SetupIntentCreator,
	wallet WalletFlow,
	finder PaymentFinder,
	resolver RedirectResolver,
	health map[string]Pinger,
	cfg config.StripeConfig,
	logger *slog.Logger,
) *Handlers {
	return &Handlers{
		payments:     payments,
		setupIntents: setupIntents,
		wallet:       wallet,
		finder:       finder,
		resolver:     resolver,
		health:       health,
		cfg:          cfg,
		validate:     validator.New(),
		logger:       logger,
	}
}

// RegisterRoutes mounts the browser-facing pages on the paths of the
// configured public URLs so the two cannot drift apart.
func (h *Handlers) RegisterRoutes(mux *http.ServeMux) {
	returnPath := pathOf(h.cfg.ReturnURL, "/payments/return")
	checkoutPath := pathOf(h.cfg.CheckoutURL, "/stripe/checkout")
	walletPath := pathOf(h.cfg.WalletURL, "/stripe/wallet")

	mux.HandleFunc("GET /api/v1/stripe/setup-intent", h.HandleSetupIntent)
	mux.HandleFunc("POST /api/v1/payments/{vs}/begin", h.HandleBegin)
	mux.HandleFunc("GET /api/v1/payments/{vs}/redirect", h.HandleRedirect)
	mux.HandleFunc("POST /api/v1/recurrent/charge", h.HandleRecurrentCharge)

	mux.HandleFunc("GET "+returnPath, h.HandleReturn)
	mux.HandleFunc("GET "+checkoutPath, h.HandleCheckout)
	mux.HandleFunc("GET "+walletPath+"/{vs}", h.HandleWallet)
	mux.HandleFunc("POST "+walletPath+"/{vs}/confirm", h.HandleWalletConfirm)

	mux.HandleFunc("GET /healthz", h.HandleHealth)
	mux.HandleFunc("GET /docs/doc.json", h.HandleDocs)
	mux.Handle("GET /metrics", promhttp.Handler())
}

func pathOf(rawURL, fallback string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Path == "" || u.Path == "/" {
		return fallback
	}
	return u.Path
}

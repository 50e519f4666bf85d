package services_test

import (
	"testing"

	"github.com/remp2020/crm-stripe-module/internal/application/mocks"
	"github.com/remp2020/crm-stripe-module/internal/application/services"
	"github.com/remp2020/crm-stripe-module/internal/application/services/testhelpers"
	"github.com/remp2020/crm-stripe-module/internal/config"
	"github.com/remp2020/crm-stripe-module/internal/money"
)

type fixture struct {
	stripe   *mocks.MockStripeAPI
	meta     *testhelpers.MockMetaStore
	payments *testhelpers.MockPaymentStore
	locker   *mocks.MockLocker
	cfg      config.StripeConfig

	binder       *services.PaymentMethodBinder
	orchestrator *services.IntentOrchestrator
	charger      *services.RecurrentCharger
	wallet       *services.WalletIntentClient
	registry     *services.GatewayRegistry
	resolver     *services.RedirectResolver
	service      *services.PaymentService
	walletSvc    *services.WalletService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	logger := testhelpers.DiscardLogger()
	converter := money.NewConverter()

	f := &fixture{
		stripe:   mocks.NewMockStripeAPI(t),
		meta:     testhelpers.NewMockMetaStore(),
		payments: testhelpers.NewMockPaymentStore(),
		locker:   mocks.NewMockLocker(),
		cfg:      testhelpers.StripeConfig(),
	}

	f.binder = services.NewPaymentMethodBinder(f.stripe, f.meta, f.locker, logger)
	f.orchestrator = services.NewIntentOrchestrator(f.stripe, f.binder, f.meta, f.meta, converter, f.cfg, logger)
	f.charger = services.NewRecurrentCharger(f.stripe, f.meta, f.meta, converter, logger)
	f.wallet = services.NewWalletIntentClient(f.stripe, f.meta, converter)
	f.registry = services.NewGatewayRegistry(
		services.NewStripeGateway(f.orchestrator, f.stripe),
		services.NewRecurrentGateway(f.orchestrator, f.charger, f.stripe),
		services.NewWalletGateway(f.cfg),
	)
	f.resolver = services.NewRedirectResolver(f.cfg)
	f.service = services.NewPaymentService(f.payments, f.registry, f.resolver, f.locker, f.cfg, logger)
	f.walletSvc = services.NewWalletService(f.payments, f.wallet, f.locker, f.cfg, logger)

	return f
}

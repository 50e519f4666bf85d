package tests

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/remp2020/crm-stripe-module/internal/application"
	"github.com/remp2020/crm-stripe-module/internal/application/mocks"
	"github.com/remp2020/crm-stripe-module/internal/application/services"
	"github.com/remp2020/crm-stripe-module/internal/application/services/testhelpers"
	"github.com/remp2020/crm-stripe-module/internal/config"
	"github.com/remp2020/crm-stripe-module/internal/domain"
	"github.com/remp2020/crm-stripe-module/internal/infrastructure/persistence/postgres"
	"github.com/remp2020/crm-stripe-module/internal/infrastructure/redis"
	"github.com/remp2020/crm-stripe-module/internal/interfaces/rest"
	"github.com/remp2020/crm-stripe-module/internal/interfaces/rest/handlers"
	"github.com/remp2020/crm-stripe-module/internal/interfaces/rest/middleware"
	"github.com/remp2020/crm-stripe-module/internal/money"
	"github.com/remp2020/crm-stripe-module/internal/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

type stack struct {
	db       *testhelpers.TestDatabase
	stripe   *mocks.MockStripeAPI
	meta     *postgres.MetaRepository
	payments *postgres.PaymentRepository
	service  *services.PaymentService
	handler  http.Handler
	cfg      config.StripeConfig
}

func startRedis(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor: wait.ForLog("Ready to accept connections").
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	client, err := redis.Connect(ctx, &config.RedisConfig{
		Addr: fmt.Sprintf("%s:%s", host, port.Port()),
	}, testhelpers.DiscardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return client
}

func setupStack(t *testing.T) *stack {
	t.Helper()

	db := testhelpers.SetupTestDatabase(t)
	t.Cleanup(func() { db.Cleanup(t) })
	redisClient := startRedis(t)

	logger := testhelpers.DiscardLogger()
	cfg := testhelpers.StripeConfig()
	converter := money.NewConverter()
	stripeAPI := mocks.NewMockStripeAPI(t)

	paymentRepo := postgres.NewPaymentRepository(db.DB)
	metaRepo := postgres.NewMetaRepository(db.DB)
	locker := redis.NewLocker(redisClient, 5*time.Second)

	binder := services.NewPaymentMethodBinder(stripeAPI, metaRepo, locker, logger)
	orchestrator := services.NewIntentOrchestrator(stripeAPI, binder, metaRepo, metaRepo, converter, cfg, logger)
	charger := services.NewRecurrentCharger(stripeAPI, metaRepo, metaRepo, converter, logger)
	walletClient := services.NewWalletIntentClient(stripeAPI, metaRepo, converter)

	registry := services.NewGatewayRegistry(
		services.NewStripeGateway(orchestrator, stripeAPI),
		services.NewRecurrentGateway(orchestrator, charger, stripeAPI),
		services.NewWalletGateway(cfg),
	)
	resolver := services.NewRedirectResolver(cfg)
	paymentService := services.NewPaymentService(paymentRepo, registry, resolver, locker, cfg, logger)
	walletService := services.NewWalletService(paymentRepo, walletClient, locker, cfg, logger)

	h := handlers.NewHandlers(
		paymentService,
		services.NewSetupIntentService(registry),
		walletService,
		paymentRepo,
		resolver,
		map[string]handlers.Pinger{"postgres": db.DB, "redis": redisClient},
		cfg,
		logger,
	)
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	return &stack{
		db:       db,
		stripe:   stripeAPI,
		meta:     metaRepo,
		payments: paymentRepo,
		service:  paymentService,
		handler:  middleware.Chain(mux, middleware.Recovery(logger), middleware.Logging(logger)),
		cfg:      cfg,
	}
}

func (s *stack) do(t *testing.T, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, httptest.NewRequest(method, target, nil))
	return w
}

func (s *stack) notifications(t *testing.T, paymentID int64) int {
	t.Helper()
	var n int
	err := s.db.DB.Pool.QueryRow(context.Background(),
		`SELECT COUNT(*) FROM payment_notifications WHERE payment_id = $1`, paymentID).Scan(&n)
	require.NoError(t, err)
	return n
}

func TestIntegration_CheckoutFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	s := setupStack(t)
	ctx := context.Background()
	payment := s.db.PersistPayment(t, testhelpers.NewPayment(t, domain.GatewayStripe))
	vs := payment.VariableSymbol

	// 1. Begin
	s.stripe.On("CreateCheckoutSession", mock.Anything, mock.MatchedBy(func(req application.CheckoutSessionRequest) bool {
		return req.ClientReferenceID == vs && req.CustomerEmail == payment.User.Email
	})).Return(&application.CheckoutSession{ID: "cs_int_1", PaymentIntentID: "pi_int_1"}, nil).Once()
	s.stripe.On("RetrievePaymentIntent", mock.Anything, "pi_int_1").
		Return(&domain.Intent{ID: "pi_int_1", Status: domain.IntentRequiresPaymentMethod}, nil).Once()

	w := s.do(t, http.MethodPost, "/api/v1/payments/"+vs+"/begin")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var begin struct {
		rest.APIResponse
		Data handlers.OutcomeResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &begin))
	assert.Equal(t, string(domain.OutcomeRedirect), begin.Data.Outcome)
	assert.Contains(t, begin.Data.URL, "cs_int_1")

	intentID, ok, err := s.meta.GetPaymentMeta(ctx, payment.ID, domain.MetaPaymentIntentID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "pi_int_1", intentID)

	// 2. Browser returns
	s.stripe.On("RetrievePaymentIntent", mock.Anything, "pi_int_1").
		Return(&domain.Intent{ID: "pi_int_1", Status: domain.IntentSucceeded, PaymentMethodID: "pm_int_1", CustomerID: "cus_int_1"}, nil).Once()

	w = s.do(t, http.MethodGet, "/payments/return?vs="+vs)
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, s.cfg.SuccessURL+"?vs="+vs, w.Header().Get("Location"))

	stored, err := s.payments.FindByVariableSymbol(ctx, vs)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPaid, stored.Status)
	assert.NotNil(t, stored.PaidAt)
	assert.Equal(t, 1, s.notifications(t, payment.ID))

	customerID, ok, err := s.meta.GetUserMeta(ctx, payment.User.ID, domain.MetaStripeCustomer)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "cus_int_1", customerID)

	// 3. Second return is served from the stored status
	w = s.do(t, http.MethodGet, "/payments/return?vs="+vs)
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, 1, s.notifications(t, payment.ID))
}

func TestIntegration_ReconcilerCompletesAbandonedCheckout(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	s := setupStack(t)
	ctx := context.Background()
	payment := s.db.PersistPayment(t, testhelpers.NewPayment(t, domain.GatewayStripe))
	require.NoError(t, s.meta.AddPaymentMeta(ctx, payment.ID, domain.MetaPaymentIntentID, "pi_int_2"))

	s.stripe.On("RetrievePaymentIntent", mock.Anything, "pi_int_2").
		Return(&domain.Intent{ID: "pi_int_2", Status: domain.IntentSucceeded, PaymentMethodID: "pm_int_2", CustomerID: "cus_int_2"}, nil).Once()

	reconciler := worker.NewReconciler(s.payments, s.service, time.Minute, 10, 0, testhelpers.DiscardLogger())

	completed := reconciler.RunOnce(ctx)

	assert.Equal(t, 1, completed)
	stored, err := s.payments.FindByVariableSymbol(ctx, payment.VariableSymbol)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPaid, stored.Status)

	assert.Zero(t, reconciler.RunOnce(ctx))
}

func TestIntegration_Health(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	s := setupStack(t)

	w := s.do(t, http.MethodGet, "/healthz")

	require.Equal(t, http.StatusOK, w.Code)
	var resp handlers.HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Checks["postgres"])
	assert.Equal(t, "ok", resp.Checks["redis"])
}

// @title        CRM Stripe Gateway API
// @version      1.0
// @description  Stripe payment-intent orchestration for CRM payments.
// @BasePath     /
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/remp2020/crm-stripe-module/docs"
	"github.com/remp2020/crm-stripe-module/internal/application/services"
	"github.com/remp2020/crm-stripe-module/internal/config"
	"github.com/remp2020/crm-stripe-module/internal/domain"
	"github.com/remp2020/crm-stripe-module/internal/infrastructure/metrics"
	"github.com/remp2020/crm-stripe-module/internal/infrastructure/persistence/postgres"
	"github.com/remp2020/crm-stripe-module/internal/infrastructure/redis"
	"github.com/remp2020/crm-stripe-module/internal/infrastructure/stripe"
	"github.com/remp2020/crm-stripe-module/internal/interfaces/rest/handlers"
	"github.com/remp2020/crm-stripe-module/internal/interfaces/rest/middleware"
	"github.com/remp2020/crm-stripe-module/internal/money"
	"github.com/remp2020/crm-stripe-module/internal/worker"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	if cfg.Primary.Env == "production" && cfg.Logger.Format == "" {
		cfg.Logger.Format = "json"
	}
	logger := cfg.Logger.NewLogger()
	slog.SetDefault(logger)

	logger.Info("starting gateway service",
		"env", cfg.Primary.Env,
		"port", cfg.Server.Port,
		"log_level", cfg.Logger.Level,
	)

	if err := run(cfg, logger); err != nil {
		logger.Error("gateway stopped with error", "error", err)
		os.Exit(1)
	}

	logger.Info("server exited")
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx := context.Background()

	db, err := postgres.Connect(ctx, &cfg.Database, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	created, err := postgres.NewGatewayRepository(db).Seed(ctx, domain.Gateways())
	if err != nil {
		return err
	}
	logger.Info("payment gateways registered", "created", created)

	redisClient, err := redis.Connect(ctx, &cfg.Redis, logger)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	stripeClient, err := stripe.NewClient(cfg.Stripe)
	if err != nil {
		return err
	}
	stripeAPI := stripe.NewRetryClient(stripeClient, cfg.Retry, logger)

	metrics.MustRegister()
	observer := metrics.Observer{}

	paymentRepo := postgres.NewPaymentRepository(db)
	metaRepo := postgres.NewMetaRepository(db)
	locker := redis.NewLocker(redisClient, cfg.Redis.LockTTL)
	converter := money.NewConverter()

	binder := services.NewPaymentMethodBinder(stripeAPI, metaRepo, locker, logger)
	orchestrator := services.NewIntentOrchestrator(stripeAPI, binder, metaRepo, metaRepo, converter, cfg.Stripe, logger)
	charger := services.NewRecurrentCharger(stripeAPI, metaRepo, metaRepo, converter, logger)
	walletClient := services.NewWalletIntentClient(stripeAPI, metaRepo, converter)

	registry := services.NewGatewayRegistry(
		services.NewStripeGateway(orchestrator, stripeAPI),
		services.NewRecurrentGateway(orchestrator, charger, stripeAPI),
		services.NewWalletGateway(cfg.Stripe),
	)
	resolver := services.NewRedirectResolver(cfg.Stripe)

	paymentService := services.NewPaymentService(paymentRepo, registry, resolver, locker, cfg.Stripe, logger).
		WithObserver(observer)
	walletService := services.NewWalletService(paymentRepo, walletClient, locker, cfg.Stripe, logger).
		WithObserver(observer)
	setupIntentService := services.NewSetupIntentService(registry)

	h := handlers.NewHandlers(
		paymentService,
		setupIntentService,
		walletService,
		paymentRepo,
		resolver,
		map[string]handlers.Pinger{
			"postgres": db,
			"redis":    redisClient,
		},
		cfg.Stripe,
		logger,
	)

	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	handler := middleware.Chain(mux,
		middleware.Timeout(cfg.Server.WriteTimeout),
		middleware.Logging(logger),
		middleware.Recovery(logger),
	)

	server := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	reconciler := worker.NewReconciler(
		paymentRepo,
		paymentService,
		cfg.Worker.Interval,
		cfg.Worker.BatchSize,
		cfg.Worker.MinAge,
		logger,
	)

	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()

	go reconciler.Start(workerCtx)

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
	case err := <-serverErr:
		return err
	}

	logger.Info("shutting down server...")

	cancelWorkers()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	return nil
}

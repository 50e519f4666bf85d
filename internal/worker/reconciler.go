// Package worker runs the background jobs of the gateway.
package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/remp2020/crm-stripe-module/internal/application"
	"github.com/remp2020/crm-stripe-module/internal/domain"
)

type PendingPaymentFinder interface {
	FindFormWithIntent(ctx context.Context, minAge time.Duration, limit int) ([]*domain.Payment, error)
}

type PaymentCompleter interface {
	Complete(ctx context.Context, variableSymbol string) (domain.Outcome, error)
}

// Reconciler completes payments whose browser never came back from the
// processor. It goes through the same complete step as the return URL.
type Reconciler struct {
	repo      PendingPaymentFinder
	completer PaymentCompleter
	interval  time.Duration
	batchSize int
	minAge    time.Duration
	logger    *slog.Logger
}

func NewReconciler(
	repo PendingPaymentFinder,
	completer PaymentCompleter,
	interval time.Duration,
	batchSize int,
	minAge time.Duration,
	logger *slog.Logger,
) *Reconciler {
	return &Reconciler{
		repo:      repo,
		completer: completer,
		interval:  interval,
		batchSize: batchSize,
		minAge:    minAge,
		logger:    logger,
	}
}

func (r *Reconciler) Start(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("starting background reconciler",
		"interval", r.interval,
		"batch_size", r.batchSize,
		"min_age", r.minAge)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("stopping background reconciler")
			return
		case <-ticker.C:
			r.run(ctx)
		}
	}
}

// RunOnce executes a single reconciliation cycle and reports how many payments
// were completed without error.
func (r *Reconciler) RunOnce(ctx context.Context) int {
	return r.run(ctx)
}

func (r *Reconciler) run(ctx context.Context) int {
	pending, err := r.repo.FindFormWithIntent(ctx, r.minAge, r.batchSize)
	if err != nil {
		r.logger.Error("failed to fetch pending payments", "error", err)
		return 0
	}

	if len(pending) == 0 {
		return 0
	}

	r.logger.Info("reconciling pending payments", "count", len(pending))

	done := 0
	for _, p := range pending {
		if ctx.Err() != nil {
			return done
		}

		outcome, err := r.completer.Complete(ctx, p.VariableSymbol)
		if err != nil {
			if svcErr, ok := application.IsServiceError(err); ok && svcErr.Code == application.ErrCodeLocked {
				r.logger.Debug("payment is being completed by another request",
					"variable_symbol", p.VariableSymbol)
				continue
			}
			r.logger.Error("reconciliation failed for payment",
				"variable_symbol", p.VariableSymbol,
				"gateway", p.GatewayCode,
				"error", err)
			continue
		}

		done++
		r.logger.Info("reconciled payment",
			"variable_symbol", p.VariableSymbol,
			"outcome", outcome.Kind)
	}

	return done
}

package stripe

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/remp2020/crm-stripe-module/internal/application"
	"github.com/remp2020/crm-stripe-module/internal/config"
	"github.com/remp2020/crm-stripe-module/internal/domain"
)

// RetryClient retries transient failures of read operations and of creates
// carrying an idempotency key. Card declines are never retried.
type RetryClient struct {
	inner      application.StripeAPI
	baseDelay  time.Duration
	maxRetries int
	logger     *slog.Logger
}

var _ application.StripeAPI = (*RetryClient)(nil)

func NewRetryClient(inner application.StripeAPI, cfg config.RetryConfig, logger *slog.Logger) *RetryClient {
	maxRetries := int(cfg.MaxRetries)
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &RetryClient{
		inner:      inner,
		baseDelay:  time.Duration(cfg.BaseDelay) * time.Second,
		maxRetries: maxRetries,
		logger:     logger,
	}
}

func (r *RetryClient) CreateCheckoutSession(ctx context.Context, req application.CheckoutSessionRequest) (*application.CheckoutSession, error) {
	if req.IdempotencyKey == "" {
		return r.inner.CreateCheckoutSession(ctx, req)
	}
	return retry(r, ctx, "create_checkout_session", func(ctx context.Context) (*application.CheckoutSession, error) {
		return r.inner.CreateCheckoutSession(ctx, req)
	})
}

func (r *RetryClient) RetrieveCheckoutSession(ctx context.Context, sessionID string) (*application.CheckoutSession, error) {
	return retry(r, ctx, "retrieve_checkout_session", func(ctx context.Context) (*application.CheckoutSession, error) {
		return r.inner.RetrieveCheckoutSession(ctx, sessionID)
	})
}

func (r *RetryClient) CreatePaymentIntent(ctx context.Context, req application.PaymentIntentRequest) (*domain.Intent, error) {
	if req.IdempotencyKey == "" {
		return r.inner.CreatePaymentIntent(ctx, req)
	}
	return retry(r, ctx, "create_payment_intent", func(ctx context.Context) (*domain.Intent, error) {
		return r.inner.CreatePaymentIntent(ctx, req)
	})
}

func (r *RetryClient) RetrievePaymentIntent(ctx context.Context, intentID string) (*domain.Intent, error) {
	return retry(r, ctx, "retrieve_payment_intent", func(ctx context.Context) (*domain.Intent, error) {
		return r.inner.RetrievePaymentIntent(ctx, intentID)
	})
}

func (r *RetryClient) CreateCustomer(ctx context.Context, req application.CustomerRequest) (*application.Customer, error) {
	if req.IdempotencyKey == "" {
		return r.inner.CreateCustomer(ctx, req)
	}
	return retry(r, ctx, "create_customer", func(ctx context.Context) (*application.Customer, error) {
		return r.inner.CreateCustomer(ctx, req)
	})
}

func (r *RetryClient) RetrievePaymentMethod(ctx context.Context, paymentMethodID string) (*application.PaymentMethod, error) {
	return retry(r, ctx, "retrieve_payment_method", func(ctx context.Context) (*application.PaymentMethod, error) {
		return r.inner.RetrievePaymentMethod(ctx, paymentMethodID)
	})
}

// AttachPaymentMethod is idempotent on the processor side.
func (r *RetryClient) AttachPaymentMethod(ctx context.Context, paymentMethodID, customerID string) (*application.PaymentMethod, error) {
	return retry(r, ctx, "attach_payment_method", func(ctx context.Context) (*application.PaymentMethod, error) {
		return r.inner.AttachPaymentMethod(ctx, paymentMethodID, customerID)
	})
}

func (r *RetryClient) CreateSetupIntent(ctx context.Context) (*domain.SetupIntent, error) {
	return r.inner.CreateSetupIntent(ctx)
}

// Generic retry helper
func retry[T any](r *RetryClient, ctx context.Context, operation string, fn func(ctx context.Context) (*T, error)) (*T, error) {
	var lastErr error

	for attempt := 0; attempt < r.maxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		resp, err := fn(ctx)
		if err == nil {
			return resp, nil
		}

		lastErr = err

		if !isRetryable(err) {
			return nil, err
		}

		if attempt < r.maxRetries-1 {
			delay := r.backoff(attempt)
			r.logger.Warn("retrying stripe call",
				"operation", operation,
				"attempt", attempt+1,
				"delay", delay,
				"error", err)

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return nil, fmt.Errorf("maximum retries exceeded: %w", lastErr)
}

func isRetryable(err error) bool {
	if _, ok := application.IsCardDecline(err); ok {
		return false
	}
	return application.IsRetryable(err)
}

// Backoff calculation with exponential delay and jitter
func (r *RetryClient) backoff(attempt int) time.Duration {
	base := r.baseDelay * time.Duration(1<<attempt)

	jitter := time.Duration(rand.Intn(1000)) * time.Millisecond

	return base + jitter
}

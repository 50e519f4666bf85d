// Package stripe adapts the stripe-go SDK to application.StripeAPI.
package stripe

import (
	"context"
	"net/http"
	"time"

	"github.com/remp2020/crm-stripe-module/internal/application"
	"github.com/remp2020/crm-stripe-module/internal/config"
	"github.com/remp2020/crm-stripe-module/internal/domain"
	"github.com/remp2020/crm-stripe-module/internal/infrastructure/metrics"
	stripego "github.com/stripe/stripe-go/v82"
)

const requestTimeout = 30 * time.Second

type Client struct {
	sc *stripego.Client
}

var _ application.StripeAPI = (*Client)(nil)

// NewClient builds the SDK client. A missing secret key is a configuration error.
func NewClient(cfg config.StripeConfig) (*Client, error) {
	if cfg.SecretKey == "" {
		return nil, domain.NewConfigurationMissingError("stripe.secret_key")
	}

	backendCfg := &stripego.BackendConfig{
		HTTPClient:        &http.Client{Timeout: requestTimeout},
		MaxNetworkRetries: stripego.Int64(cfg.MaxNetworkRetries),
	}
	if cfg.APIURL != "" {
		backendCfg.URL = stripego.String(cfg.APIURL)
	}

	sc := stripego.NewClient(cfg.SecretKey, stripego.WithBackends(stripego.NewBackendsWithConfig(backendCfg)))

	return &Client{sc: sc}, nil
}

func (c *Client) CreateCheckoutSession(ctx context.Context, req application.CheckoutSessionRequest) (*application.CheckoutSession, error) {
	return call(ctx, "create_checkout_session", func(ctx context.Context) (*application.CheckoutSession, error) {
		session, err := c.sc.V1CheckoutSessions.Create(ctx, checkoutSessionParams(req))
		if err != nil {
			return nil, err
		}
		return toCheckoutSession(session), nil
	})
}

func (c *Client) RetrieveCheckoutSession(ctx context.Context, sessionID string) (*application.CheckoutSession, error) {
	return call(ctx, "retrieve_checkout_session", func(ctx context.Context) (*application.CheckoutSession, error) {
		session, err := c.sc.V1CheckoutSessions.Retrieve(ctx, sessionID, nil)
		if err != nil {
			return nil, err
		}
		return toCheckoutSession(session), nil
	})
}

func (c *Client) CreatePaymentIntent(ctx context.Context, req application.PaymentIntentRequest) (*domain.Intent, error) {
	return call(ctx, "create_payment_intent", func(ctx context.Context) (*domain.Intent, error) {
		pi, err := c.sc.V1PaymentIntents.Create(ctx, paymentIntentParams(req))
		if err != nil {
			return nil, err
		}
		return toDomainIntent(pi), nil
	})
}

func (c *Client) RetrievePaymentIntent(ctx context.Context, intentID string) (*domain.Intent, error) {
	return call(ctx, "retrieve_payment_intent", func(ctx context.Context) (*domain.Intent, error) {
		pi, err := c.sc.V1PaymentIntents.Retrieve(ctx, intentID, nil)
		if err != nil {
			return nil, err
		}
		return toDomainIntent(pi), nil
	})
}

func (c *Client) CreateCustomer(ctx context.Context, req application.CustomerRequest) (*application.Customer, error) {
	return call(ctx, "create_customer", func(ctx context.Context) (*application.Customer, error) {
		customer, err := c.sc.V1Customers.Create(ctx, customerParams(req))
		if err != nil {
			return nil, err
		}
		return &application.Customer{ID: customer.ID}, nil
	})
}

func (c *Client) RetrievePaymentMethod(ctx context.Context, paymentMethodID string) (*application.PaymentMethod, error) {
	return call(ctx, "retrieve_payment_method", func(ctx context.Context) (*application.PaymentMethod, error) {
		pm, err := c.sc.V1PaymentMethods.Retrieve(ctx, paymentMethodID, nil)
		if err != nil {
			return nil, err
		}
		return toPaymentMethod(pm), nil
	})
}

func (c *Client) AttachPaymentMethod(ctx context.Context, paymentMethodID, customerID string) (*application.PaymentMethod, error) {
	return call(ctx, "attach_payment_method", func(ctx context.Context) (*application.PaymentMethod, error) {
		pm, err := c.sc.V1PaymentMethods.Attach(ctx, paymentMethodID, &stripego.PaymentMethodAttachParams{
			Customer: stripego.String(customerID),
		})
		if err != nil {
			return nil, err
		}
		return toPaymentMethod(pm), nil
	})
}

func (c *Client) CreateSetupIntent(ctx context.Context) (*domain.SetupIntent, error) {
	return call(ctx, "create_setup_intent", func(ctx context.Context) (*domain.SetupIntent, error) {
		si, err := c.sc.V1SetupIntents.Create(ctx, &stripego.SetupIntentCreateParams{
			Usage: stripego.String(string(stripego.SetupIntentUsageOffSession)),
		})
		if err != nil {
			return nil, err
		}
		return &domain.SetupIntent{ID: si.ID, ClientSecret: si.ClientSecret}, nil
	})
}

// call translates SDK errors and records the request metrics of one operation.
func call[T any](ctx context.Context, operation string, fn func(ctx context.Context) (*T, error)) (*T, error) {
	start := time.Now()

	resp, err := fn(ctx)
	err = translateError(err)

	metrics.ObserveStripeCall(operation, resultLabel(err), time.Since(start))

	if err != nil {
		return nil, err
	}
	return resp, nil
}

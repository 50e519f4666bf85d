package stripe_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/remp2020/crm-stripe-module/internal/application"
	"github.com/remp2020/crm-stripe-module/internal/config"
	"github.com/remp2020/crm-stripe-module/internal/domain"
	"github.com/remp2020/crm-stripe-module/internal/infrastructure/stripe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	Method         string
	Path           string
	Form           url.Values
	IdempotencyKey string
}

type fakeStripe struct {
	mu       sync.Mutex
	requests []recordedRequest
	routes   map[string]func(w http.ResponseWriter)
}

func newFakeStripe(t *testing.T) (*fakeStripe, *stripe.Client) {
	t.Helper()

	fake := &fakeStripe{routes: make(map[string]func(w http.ResponseWriter))}
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	client, err := stripe.NewClient(config.StripeConfig{
		SecretKey: "sk_test_123",
		APIURL:    server.URL,
	})
	require.NoError(t, err)

	return fake, client
}

func (f *fakeStripe) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	form, _ := url.ParseQuery(string(body))

	f.mu.Lock()
	f.requests = append(f.requests, recordedRequest{
		Method:         r.Method,
		Path:           r.URL.Path,
		Form:           form,
		IdempotencyKey: r.Header.Get("Idempotency-Key"),
	})
	handler, ok := f.routes[r.Method+" "+r.URL.Path]
	f.mu.Unlock()

	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"type":"invalid_request_error","code":"resource_missing","message":"No such route"}}`))
		return
	}
	handler(w)
}

func (f *fakeStripe) on(method, path string, status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes[method+" "+path] = func(w http.ResponseWriter) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

func (f *fakeStripe) last() recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func TestNewClient_MissingSecret(t *testing.T) {
	_, err := stripe.NewClient(config.StripeConfig{})

	assert.True(t, domain.IsErrorCode(err, domain.ErrCodeConfigurationMissing))
}

func TestClient_CreateCheckoutSession(t *testing.T) {
	fake, client := newFakeStripe(t)
	fake.on(http.MethodPost, "/v1/checkout/sessions", http.StatusOK,
		`{"id":"cs_1","object":"checkout.session","url":"https://checkout.stripe.com/c/cs_1","payment_intent":"pi_1"}`)

	session, err := client.CreateCheckoutSession(context.Background(), application.CheckoutSessionRequest{
		LineItems: []application.LineItem{
			{Name: "Monthly subscription", UnitAmount: 2500, Currency: "EUR", Quantity: 1},
		},
		SuccessURL:        "https://crm.example.com/payments/return?vs=1",
		CancelURL:         "https://crm.example.com/payments/return?vs=1",
		ClientReferenceID: "1",
		CustomerEmail:     "jane@example.com",
		FutureUsage:       domain.FutureUsageOnSession,
		IdempotencyKey:    "idem-1",
	})

	require.NoError(t, err)
	assert.Equal(t, "cs_1", session.ID)
	assert.Equal(t, "pi_1", session.PaymentIntentID)

	req := fake.last()
	assert.Equal(t, "idem-1", req.IdempotencyKey)
	assert.Equal(t, "payment", req.Form.Get("mode"))
	assert.Equal(t, "2500", req.Form.Get("line_items[0][price_data][unit_amount]"))
	assert.Equal(t, "Monthly subscription", req.Form.Get("line_items[0][price_data][product_data][name]"))
	assert.Equal(t, "1", req.Form.Get("client_reference_id"))
	assert.Equal(t, "jane@example.com", req.Form.Get("customer_email"))
	assert.Equal(t, "on_session", req.Form.Get("payment_intent_data[setup_future_usage]"))
}

func TestClient_CreatePaymentIntent(t *testing.T) {
	t.Run("maps next action", func(t *testing.T) {
		fake, client := newFakeStripe(t)
		fake.on(http.MethodPost, "/v1/payment_intents", http.StatusOK, `{
			"id":"pi_1","object":"payment_intent","status":"requires_action",
			"client_secret":"pi_1_secret","payment_method":"pm_1","customer":"cus_1",
			"next_action":{"type":"redirect_to_url","redirect_to_url":{"url":"https://hooks.stripe.com/3ds","return_url":"https://crm.example.com"}}
		}`)

		intent, err := client.CreatePaymentIntent(context.Background(), application.PaymentIntentRequest{
			Amount:          2500,
			Currency:        "EUR",
			CustomerID:      "cus_1",
			PaymentMethodID: "pm_1",
			FutureUsage:     domain.FutureUsageOffSession,
			ReturnURL:       "https://crm.example.com/payments/return?vs=1",
			Confirm:         true,
		})

		require.NoError(t, err)
		assert.Equal(t, domain.IntentRequiresAction, intent.Status)
		assert.Equal(t, "pm_1", intent.PaymentMethodID)
		assert.Equal(t, "cus_1", intent.CustomerID)
		require.NotNil(t, intent.NextAction)
		assert.Equal(t, domain.NextActionRedirectToURL, intent.NextAction.Type)
		assert.Equal(t, "https://hooks.stripe.com/3ds", intent.NextAction.RedirectURL)
		assert.Contains(t, intent.NextAction.Raw, "redirect_to_url")

		req := fake.last()
		assert.Equal(t, "2500", req.Form.Get("amount"))
		assert.Equal(t, "true", req.Form.Get("confirm"))
		assert.Equal(t, "off_session", req.Form.Get("setup_future_usage"))
		assert.Equal(t, "automatic", req.Form.Get("confirmation_method"))
	})

	t.Run("translates card decline", func(t *testing.T) {
		fake, client := newFakeStripe(t)
		fake.on(http.MethodPost, "/v1/payment_intents", http.StatusPaymentRequired, `{"error":{
			"type":"card_error","code":"card_declined","decline_code":"insufficient_funds",
			"message":"Your card has insufficient funds.",
			"payment_intent":{"id":"pi_2","object":"payment_intent","status":"requires_payment_method"}
		}}`)

		_, err := client.CreatePaymentIntent(context.Background(), application.PaymentIntentRequest{
			Amount:          2500,
			Currency:        "EUR",
			PaymentMethodID: "pm_1",
			Confirm:         true,
			OffSession:      true,
			Metadata:        map[string]string{"vs": "1"},
		})

		decline, ok := application.IsCardDecline(err)
		require.True(t, ok)
		assert.Equal(t, "card_declined", decline.Code)
		assert.Equal(t, "insufficient_funds", decline.DeclineCode)
		assert.Equal(t, "pi_2", decline.PaymentIntentID)
		assert.Equal(t, http.StatusPaymentRequired, decline.HTTPStatus)

		req := fake.last()
		assert.Equal(t, "true", req.Form.Get("off_session"))
		assert.Equal(t, "1", req.Form.Get("metadata[vs]"))
		assert.Equal(t, "never", req.Form.Get("automatic_payment_methods[allow_redirects]"))
	})
}

func TestClient_RetrievePaymentIntent(t *testing.T) {
	fake, client := newFakeStripe(t)
	fake.on(http.MethodGet, "/v1/payment_intents/pi_1", http.StatusOK, `{
		"id":"pi_1","object":"payment_intent","status":"requires_payment_method",
		"last_payment_error":{"type":"card_error","code":"expired_card","decline_code":"expired_card","message":"Your card has expired."}
	}`)

	intent, err := client.RetrievePaymentIntent(context.Background(), "pi_1")

	require.NoError(t, err)
	assert.Equal(t, domain.IntentRequiresPaymentMethod, intent.Status)
	require.NotNil(t, intent.LastPaymentError)
	assert.Equal(t, "expired_card", intent.LastPaymentError.Code)
	assert.Equal(t, "Your card has expired.", intent.LastPaymentError.Message)
	assert.False(t, intent.HasPaymentMethod())
}

func TestClient_Customers(t *testing.T) {
	fake, client := newFakeStripe(t)
	fake.on(http.MethodPost, "/v1/customers", http.StatusOK, `{"id":"cus_1","object":"customer"}`)
	fake.on(http.MethodPost, "/v1/payment_methods/pm_1/attach", http.StatusOK, `{"id":"pm_1","object":"payment_method","customer":"cus_1"}`)
	fake.on(http.MethodGet, "/v1/payment_methods/pm_1", http.StatusOK, `{"id":"pm_1","object":"payment_method","customer":"cus_1"}`)

	customer, err := client.CreateCustomer(context.Background(), application.CustomerRequest{
		PaymentMethodID: "pm_1",
		Email:           "jane@example.com",
		Name:            "Jane Doe",
	})
	require.NoError(t, err)
	assert.Equal(t, "cus_1", customer.ID)
	assert.Equal(t, "Jane Doe", fake.last().Form.Get("name"))

	pm, err := client.AttachPaymentMethod(context.Background(), "pm_1", "cus_1")
	require.NoError(t, err)
	assert.Equal(t, "cus_1", pm.CustomerID)
	assert.Equal(t, "cus_1", fake.last().Form.Get("customer"))

	pm, err = client.RetrievePaymentMethod(context.Background(), "pm_1")
	require.NoError(t, err)
	assert.Equal(t, "cus_1", pm.CustomerID)
}

func TestClient_CreateSetupIntent(t *testing.T) {
	fake, client := newFakeStripe(t)
	fake.on(http.MethodPost, "/v1/setup_intents", http.StatusOK,
		`{"id":"seti_1","object":"setup_intent","client_secret":"seti_1_secret"}`)

	intent, err := client.CreateSetupIntent(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "seti_1", intent.ID)
	assert.Equal(t, "seti_1_secret", intent.ClientSecret)
	assert.Equal(t, "off_session", fake.last().Form.Get("usage"))
}

func TestClient_InvalidRequest(t *testing.T) {
	_, client := newFakeStripe(t)

	_, err := client.RetrieveCheckoutSession(context.Background(), "cs_missing")

	stripeErr, ok := application.IsStripeError(err)
	require.True(t, ok)
	assert.Equal(t, application.StripeErrorTypeInvalidRequest, stripeErr.Type)
	assert.Equal(t, http.StatusNotFound, stripeErr.HTTPStatus)
	assert.False(t, stripeErr.IsRetryable())
}

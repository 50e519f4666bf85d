package testhelpers

import (
	"io"
	"log/slog"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/remp2020/crm-stripe-module/internal/config"
	"github.com/remp2020/crm-stripe-module/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var sequence atomic.Int64

// NewPayment returns a form payment of 25.00 EUR with a single line item and a
// unique variable symbol.
func NewPayment(t *testing.T, gatewayCode string) *domain.Payment {
	t.Helper()

	id := sequence.Add(1)
	user := domain.User{ID: 1000 + id, Email: "user" + strconv.FormatInt(id, 10) + "@example.com"}
	items := []domain.PaymentItem{
		{Name: "Monthly subscription", Amount: decimal.RequireFromString("25.00"), Count: 1},
	}

	payment, err := domain.NewPayment(
		strconv.FormatInt(9000000000+id, 10),
		decimal.RequireFromString("25.00"),
		"EUR",
		gatewayCode,
		user,
		items,
	)
	require.NoError(t, err)
	payment.ID = id

	return payment
}

func StripeConfig() config.StripeConfig {
	return config.StripeConfig{
		SecretKey:         "sk_test_123",
		PublishableKey:    "pk_test_123",
		Currency:          "EUR",
		ReturnURL:         "https://crm.example.com/payments/return",
		CheckoutURL:       "https://crm.example.com/stripe/checkout",
		SuccessURL:        "https://crm.example.com/sales-funnel/success",
		FailureURL:        "https://crm.example.com/sales-funnel/error",
		WalletURL:         "https://crm.example.com/stripe/wallet",
		WalletDisplayName: "Example Press",
		WalletCountry:     "SK",
	}
}

func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

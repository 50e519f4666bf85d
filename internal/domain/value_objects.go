package domain

// MetaKey names a metadata entry attached to a payment or a user.
type MetaKey string

const (
	MetaPaymentIntentID MetaKey = "payment_intent_id"
	MetaPaymentMethodID MetaKey = "payment_method_id"
	MetaCardholderName  MetaKey = "cardholder_name"
	MetaStripeIntent    MetaKey = "stripe_intent"

	// MetaCheckoutSessionID lets complete find the intent when the session was created without one.
	MetaCheckoutSessionID MetaKey = "checkout_session_id"

	// user meta
	MetaStripeCustomer MetaKey = "stripe_customer"
)

// FutureUsage tells the processor whether to retain the payment method and for which kind of reuse.
type FutureUsage string

const (
	FutureUsageOnSession  FutureUsage = "on_session"
	FutureUsageOffSession FutureUsage = "off_session"
)

const (
	GatewayStripe          = "stripe"
	GatewayStripeRecurrent = "stripe_recurrent"
	GatewayStripeWallet    = "stripe_wallet"
)

// Gateway is the registration row advertised to the payments collaborator.
type Gateway struct {
	Code      string
	Name      string
	Priority  int
	Visible   bool
	Recurrent bool
}

// Gateways returns the registration rows of every stripe gateway.
func Gateways() []Gateway {
	return []Gateway{
		{Code: GatewayStripe, Name: "Stripe", Priority: 120, Visible: true, Recurrent: false},
		{Code: GatewayStripeRecurrent, Name: "Stripe Recurrent", Priority: 121, Visible: true, Recurrent: true},
		{Code: GatewayStripeWallet, Name: "Stripe Wallet", Priority: 122, Visible: true, Recurrent: false},
	}
}

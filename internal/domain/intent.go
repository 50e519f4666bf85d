package domain

// IntentStatus mirrors the lifecycle status of a remote payment intent.
type IntentStatus string

const (
	IntentRequiresPaymentMethod IntentStatus = "requires_payment_method"
	IntentRequiresConfirmation  IntentStatus = "requires_confirmation"
	IntentRequiresAction        IntentStatus = "requires_action"
	IntentProcessing            IntentStatus = "processing"
	IntentRequiresCapture       IntentStatus = "requires_capture"
	IntentCanceled              IntentStatus = "canceled"
	IntentSucceeded             IntentStatus = "succeeded"
)

const NextActionRedirectToURL = "redirect_to_url"

// PaymentError is the structured decline reported by the processor on an intent.
type PaymentError struct {
	Code        string
	DeclineCode string
	Message     string
}

type NextAction struct {
	Type        string
	RedirectURL string
	// Raw holds the undecoded next_action payload for triage logs.
	Raw string
}

// Intent is the in-request view of a remote payment intent. It is never cached
// beyond the call that fetched it.
type Intent struct {
	ID               string
	Status           IntentStatus
	ClientSecret     string
	PaymentMethodID  string
	CustomerID       string
	LastPaymentError *PaymentError
	NextAction       *NextAction
}

func (i *Intent) Succeeded() bool {
	return i != nil && i.Status == IntentSucceeded
}

func (i *Intent) HasPaymentMethod() bool {
	return i != nil && i.PaymentMethodID != ""
}

// SetupIntent carries what the browser needs to collect a card for later use.
type SetupIntent struct {
	ID           string
	ClientSecret string
}

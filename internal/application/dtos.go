package application

import "github.com/remp2020/crm-stripe-module/internal/domain"

type LineItem struct {
	Name       string
	UnitAmount int64
	Currency   string
	Quantity   int64
}

type CheckoutSessionRequest struct {
	LineItems         []LineItem
	SuccessURL        string
	CancelURL         string
	ClientReferenceID string
	CustomerID        string
	CustomerEmail     string
	FutureUsage       domain.FutureUsage
	IdempotencyKey    string
}

type CheckoutSession struct {
	ID              string
	URL             string
	PaymentIntentID string
}

type PaymentIntentRequest struct {
	Amount          int64
	Currency        string
	CustomerID      string
	PaymentMethodID string
	FutureUsage     domain.FutureUsage
	ReturnURL       string
	Confirm         bool
	OffSession      bool
	Metadata        map[string]string
	IdempotencyKey  string
}

type CustomerRequest struct {
	PaymentMethodID string
	Email           string
	Name            string
	IdempotencyKey  string
}

type Customer struct {
	ID string
}

type PaymentMethod struct {
	ID         string
	CustomerID string
}

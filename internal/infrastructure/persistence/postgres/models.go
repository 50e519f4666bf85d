package postgres

import (
	"time"
)

// PaymentModel is a payments row joined with the owner's email.
type PaymentModel struct {
	ID                     int64
	VariableSymbol         string
	UserID                 int64
	UserEmail              string
	GatewayCode            string
	Amount                 string
	Currency               string
	Status                 string
	SubscriptionTypeID     *int64
	SubscriptionTypeLength *int
	CreatedAt              time.Time
	PaidAt                 *time.Time
}

type PaymentItemModel struct {
	Name   string
	Amount string
	Count  int64
}

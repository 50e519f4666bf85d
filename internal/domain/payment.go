// Package domain encodes a payment, its user and line items, and the
// vocabulary shared by the stripe gateways.
package domain

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus represents the current state of a payment in its lifecycle
type PaymentStatus string

const (
	StatusForm    PaymentStatus = "form"
	StatusPaid    PaymentStatus = "paid"
	StatusFail    PaymentStatus = "fail"
	StatusTimeout PaymentStatus = "timeout"
	StatusRefund  PaymentStatus = "refund"
)

type User struct {
	ID    int64
	Email string
}

type PaymentItem struct {
	Name   string
	Amount decimal.Decimal
	Count  int64
}

type Payment struct {
	ID             int64
	VariableSymbol string
	Amount         decimal.Decimal
	Currency       string
	Status         PaymentStatus
	GatewayCode    string
	User           User
	Items          []PaymentItem

	SubscriptionTypeID     *int64
	SubscriptionTypeLength *int

	CreatedAt time.Time
	PaidAt    *time.Time
}

func NewPayment(
	variableSymbol string,
	amount decimal.Decimal,
	currency string,
	gatewayCode string,
	user User,
	items []PaymentItem,
) (*Payment, error) {
	if variableSymbol == "" {
		return nil, NewMissingRequiredFieldError("variable symbol")
	}
	if currency == "" {
		return nil, NewMissingRequiredFieldError("currency")
	}
	if gatewayCode == "" {
		return nil, NewMissingRequiredFieldError("gateway code")
	}
	if amount.IsNegative() {
		return nil, NewInvalidAmountError(amount.String(), nil)
	}

	return &Payment{
		VariableSymbol: variableSymbol,
		Amount:         amount,
		Currency:       currency,
		Status:         StatusForm,
		GatewayCode:    gatewayCode,
		User:           user,
		Items:          items,
		CreatedAt:      time.Now(),
	}, nil
}

// MarkPaid moves the payment to paid and stamps the settlement time.
func (p *Payment) MarkPaid(paidAt time.Time) error {
	if err := p.transition(StatusPaid); err != nil {
		return err
	}
	p.PaidAt = &paidAt
	return nil
}

// TransitionTo validates and applies a status change requested by a collaborator.
func (p *Payment) TransitionTo(target PaymentStatus) error {
	if target == StatusPaid {
		return p.MarkPaid(time.Now())
	}
	return p.transition(target)
}

func (p *Payment) IsForm() bool {
	return p.Status == StatusForm
}

func (p *Payment) IsPaid() bool {
	return p.Status == StatusPaid
}

func (p *Payment) transition(target PaymentStatus) error {
	if err := p.canTransitionTo(target); err != nil {
		return err
	}
	p.Status = target
	return nil
}

// a failed payment may still be confirmed late by the processor
func (p *Payment) canTransitionTo(target PaymentStatus) error {
	switch p.Status {
	case StatusForm:
		return p.allow(target, StatusPaid, StatusFail, StatusTimeout)
	case StatusFail, StatusTimeout:
		return p.allow(target, StatusPaid)
	case StatusPaid:
		return p.allow(target, StatusRefund)
	}
	return NewInvalidTransitionError(p.Status, target)
}

func (p *Payment) allow(target PaymentStatus, allowed ...PaymentStatus) error {
	if slices.Contains(allowed, target) {
		return nil
	}
	return NewInvalidTransitionError(p.Status, target)
}

package postgres

import (
	"fmt"

	"github.com/remp2020/crm-stripe-module/internal/domain"
	"github.com/shopspring/decimal"
)

// NUMERIC columns are selected as text so the decimal value survives unchanged.
func toDomainModel(m PaymentModel, items []PaymentItemModel) (*domain.Payment, error) {
	amount, err := decimal.NewFromString(m.Amount)
	if err != nil {
		return nil, fmt.Errorf("parse amount of payment %s: %w", m.VariableSymbol, err)
	}

	domainItems := make([]domain.PaymentItem, 0, len(items))
	for _, it := range items {
		itemAmount, err := decimal.NewFromString(it.Amount)
		if err != nil {
			return nil, fmt.Errorf("parse item amount of payment %s: %w", m.VariableSymbol, err)
		}
		domainItems = append(domainItems, domain.PaymentItem{
			Name:   it.Name,
			Amount: itemAmount,
			Count:  it.Count,
		})
	}

	return &domain.Payment{
		ID:             m.ID,
		VariableSymbol: m.VariableSymbol,
		Amount:         amount,
		Currency:       m.Currency,
		Status:         domain.PaymentStatus(m.Status),
		GatewayCode:    m.GatewayCode,
		User: domain.User{
			ID:    m.UserID,
			Email: m.UserEmail,
		},
		Items:                  domainItems,
		SubscriptionTypeID:     m.SubscriptionTypeID,
		SubscriptionTypeLength: m.SubscriptionTypeLength,
		CreatedAt:              m.CreatedAt,
		PaidAt:                 m.PaidAt,
	}, nil
}

func toDBModel(p *domain.Payment) *PaymentModel {
	return &PaymentModel{
		ID:                     p.ID,
		VariableSymbol:         p.VariableSymbol,
		UserID:                 p.User.ID,
		UserEmail:              p.User.Email,
		GatewayCode:            p.GatewayCode,
		Amount:                 p.Amount.StringFixed(2),
		Currency:               p.Currency,
		Status:                 string(p.Status),
		SubscriptionTypeID:     p.SubscriptionTypeID,
		SubscriptionTypeLength: p.SubscriptionTypeLength,
		CreatedAt:              p.CreatedAt,
		PaidAt:                 p.PaidAt,
	}
}

// Package mocks provides testify mocks of the application ports.
package mocks

import (
	"context"

	"github.com/remp2020/crm-stripe-module/internal/application"
	"github.com/remp2020/crm-stripe-module/internal/domain"
	"github.com/stretchr/testify/mock"
)

// MockStripeAPI is a mock implementation of application.StripeAPI.
type MockStripeAPI struct {
	mock.Mock
}

var _ application.StripeAPI = (*MockStripeAPI)(nil)

// NewMockStripeAPI creates a mock and asserts its expectations when the test ends.
func NewMockStripeAPI(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockStripeAPI {
	m := &MockStripeAPI{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockStripeAPI) CreateCheckoutSession(ctx context.Context, req application.CheckoutSessionRequest) (*application.CheckoutSession, error) {
	args := m.Called(ctx, req)
	session, _ := args.Get(0).(*application.CheckoutSession)
	return session, args.Error(1)
}

func (m *MockStripeAPI) RetrieveCheckoutSession(ctx context.Context, sessionID string) (*application.CheckoutSession, error) {
	args := m.Called(ctx, sessionID)
	session, _ := args.Get(0).(*application.CheckoutSession)
	return session, args.Error(1)
}

func (m *MockStripeAPI) CreatePaymentIntent(ctx context.Context, req application.PaymentIntentRequest) (*domain.Intent, error) {
	args := m.Called(ctx, req)
	intent, _ := args.Get(0).(*domain.Intent)
	return intent, args.Error(1)
}

func (m *MockStripeAPI) RetrievePaymentIntent(ctx context.Context, intentID string) (*domain.Intent, error) {
	args := m.Called(ctx, intentID)
	intent, _ := args.Get(0).(*domain.Intent)
	return intent, args.Error(1)
}

func (m *MockStripeAPI) CreateCustomer(ctx context.Context, req application.CustomerRequest) (*application.Customer, error) {
	args := m.Called(ctx, req)
	customer, _ := args.Get(0).(*application.Customer)
	return customer, args.Error(1)
}

func (m *MockStripeAPI) RetrievePaymentMethod(ctx context.Context, paymentMethodID string) (*application.PaymentMethod, error) {
	args := m.Called(ctx, paymentMethodID)
	pm, _ := args.Get(0).(*application.PaymentMethod)
	return pm, args.Error(1)
}

func (m *MockStripeAPI) AttachPaymentMethod(ctx context.Context, paymentMethodID, customerID string) (*application.PaymentMethod, error) {
	args := m.Called(ctx, paymentMethodID, customerID)
	pm, _ := args.Get(0).(*application.PaymentMethod)
	return pm, args.Error(1)
}

func (m *MockStripeAPI) CreateSetupIntent(ctx context.Context) (*domain.SetupIntent, error) {
	args := m.Called(ctx)
	intent, _ := args.Get(0).(*domain.SetupIntent)
	return intent, args.Error(1)
}

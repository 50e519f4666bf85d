package services

import (
	"context"
	"errors"

	"github.com/remp2020/crm-stripe-module/internal/application"
	"github.com/remp2020/crm-stripe-module/internal/domain"
)

type SetupIntentService struct {
	gateways *GatewayRegistry
}

func NewSetupIntentService(gateways *GatewayRegistry) *SetupIntentService {
	return &SetupIntentService{gateways: gateways}
}

// Create issues a setup intent the browser uses to collect a card for later charges.
func (s *SetupIntentService) Create(ctx context.Context) (*domain.SetupIntent, error) {
	issuer, ok := s.gateways.IntentIssuer()
	if !ok {
		return nil, application.NewInternalError(errors.New("no gateway can issue setup intents"))
	}
	return issuer.CreateSetupIntent(ctx)
}

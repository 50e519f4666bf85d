package metrics

import "github.com/remp2020/crm-stripe-module/internal/application"

// Observer forwards service events to the prometheus collectors.
type Observer struct{}

var _ application.Observer = Observer{}

func (Observer) PaymentOutcome(gateway, outcome string) { IncPaymentOutcome(gateway, outcome) }
func (Observer) RecurrentCharge(result string)          { IncRecurrentCharge(result) }
func (Observer) WalletConfirmation(result string)       { IncWalletConfirmation(result) }

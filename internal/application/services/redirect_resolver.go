package services

import (
	"github.com/remp2020/crm-stripe-module/internal/config"
	"github.com/remp2020/crm-stripe-module/internal/domain"
)

// RedirectResolver tells the success-page resolver that wallet payments are
// finished on the wallet page rather than on the generic return page.
type RedirectResolver struct {
	cfg config.StripeConfig
}

func NewRedirectResolver(cfg config.StripeConfig) *RedirectResolver {
	return &RedirectResolver{cfg: cfg}
}

func (r *RedirectResolver) WantsToRedirect(payment *domain.Payment) bool {
	return payment != nil && payment.GatewayCode == domain.GatewayStripeWallet
}

// RedirectTarget must only be asked after WantsToRedirect returned true.
func (r *RedirectResolver) RedirectTarget(payment *domain.Payment) (string, error) {
	if !r.WantsToRedirect(payment) {
		actual := ""
		if payment != nil {
			actual = payment.GatewayCode
		}
		return "", domain.NewInvalidGatewayError(domain.GatewayStripeWallet, actual)
	}
	return walletURL(r.cfg.WalletURL, payment.VariableSymbol), nil
}

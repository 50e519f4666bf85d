package stripe

import (
	"encoding/json"

	"github.com/remp2020/crm-stripe-module/internal/application"
	"github.com/remp2020/crm-stripe-module/internal/domain"
	stripego "github.com/stripe/stripe-go/v82"
)

func toDomainIntent(pi *stripego.PaymentIntent) *domain.Intent {
	if pi == nil {
		return nil
	}

	intent := &domain.Intent{
		ID:           pi.ID,
		Status:       domain.IntentStatus(pi.Status),
		ClientSecret: pi.ClientSecret,
	}
	if pi.PaymentMethod != nil {
		intent.PaymentMethodID = pi.PaymentMethod.ID
	}
	if pi.Customer != nil {
		intent.CustomerID = pi.Customer.ID
	}
	if pi.LastPaymentError != nil {
		intent.LastPaymentError = &domain.PaymentError{
			Code:        string(pi.LastPaymentError.Code),
			DeclineCode: string(pi.LastPaymentError.DeclineCode),
			Message:     pi.LastPaymentError.Msg,
		}
	}
	if pi.NextAction != nil {
		next := &domain.NextAction{Type: string(pi.NextAction.Type)}
		if pi.NextAction.RedirectToURL != nil {
			next.RedirectURL = pi.NextAction.RedirectToURL.URL
		}
		if raw, err := json.Marshal(pi.NextAction); err == nil {
			next.Raw = string(raw)
		}
		intent.NextAction = next
	}

	return intent
}

func toCheckoutSession(s *stripego.CheckoutSession) *application.CheckoutSession {
	session := &application.CheckoutSession{
		ID:  s.ID,
		URL: s.URL,
	}
	if s.PaymentIntent != nil {
		session.PaymentIntentID = s.PaymentIntent.ID
	}
	return session
}

func toPaymentMethod(pm *stripego.PaymentMethod) *application.PaymentMethod {
	out := &application.PaymentMethod{ID: pm.ID}
	if pm.Customer != nil {
		out.CustomerID = pm.Customer.ID
	}
	return out
}

func checkoutSessionParams(req application.CheckoutSessionRequest) *stripego.CheckoutSessionCreateParams {
	params := &stripego.CheckoutSessionCreateParams{
		Mode:              stripego.String(string(stripego.CheckoutSessionModePayment)),
		SuccessURL:        stripego.String(req.SuccessURL),
		CancelURL:         stripego.String(req.CancelURL),
		ClientReferenceID: stripego.String(req.ClientReferenceID),
		PaymentIntentData: &stripego.CheckoutSessionCreatePaymentIntentDataParams{
			SetupFutureUsage: stripego.String(string(req.FutureUsage)),
		},
	}

	if req.CustomerID != "" {
		params.Customer = stripego.String(req.CustomerID)
	} else {
		params.CustomerCreation = stripego.String(string(stripego.CheckoutSessionCustomerCreationAlways))
		if req.CustomerEmail != "" {
			params.CustomerEmail = stripego.String(req.CustomerEmail)
		}
	}

	for _, item := range req.LineItems {
		params.LineItems = append(params.LineItems, &stripego.CheckoutSessionCreateLineItemParams{
			PriceData: &stripego.CheckoutSessionCreateLineItemPriceDataParams{
				Currency: stripego.String(item.Currency),
				ProductData: &stripego.CheckoutSessionCreateLineItemPriceDataProductDataParams{
					Name: stripego.String(item.Name),
				},
				UnitAmount: stripego.Int64(item.UnitAmount),
			},
			Quantity: stripego.Int64(item.Quantity),
		})
	}

	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}
	return params
}

func paymentIntentParams(req application.PaymentIntentRequest) *stripego.PaymentIntentCreateParams {
	params := &stripego.PaymentIntentCreateParams{
		Amount:   stripego.Int64(req.Amount),
		Currency: stripego.String(req.Currency),
	}

	if req.CustomerID != "" {
		params.Customer = stripego.String(req.CustomerID)
	}
	if req.PaymentMethodID != "" {
		params.PaymentMethod = stripego.String(req.PaymentMethodID)
	}
	if req.FutureUsage != "" {
		params.SetupFutureUsage = stripego.String(string(req.FutureUsage))
	}
	if req.ReturnURL != "" {
		params.ReturnURL = stripego.String(req.ReturnURL)
	}
	if req.Confirm {
		params.Confirm = stripego.Bool(true)
		params.ConfirmationMethod = stripego.String(string(stripego.PaymentIntentConfirmationMethodAutomatic))
		params.CaptureMethod = stripego.String(string(stripego.PaymentIntentCaptureMethodAutomatic))
	}
	if req.Confirm && req.ReturnURL == "" {
		// without a return url the intent may not pick a redirect-based method
		params.AutomaticPaymentMethods = &stripego.PaymentIntentCreateAutomaticPaymentMethodsParams{
			Enabled:        stripego.Bool(true),
			AllowRedirects: stripego.String(string(stripego.PaymentIntentAutomaticPaymentMethodsAllowRedirectsNever)),
		}
	}
	if req.OffSession {
		params.OffSession = stripego.Bool(true)
	}
	for key, value := range req.Metadata {
		params.AddMetadata(key, value)
	}

	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}
	return params
}

func customerParams(req application.CustomerRequest) *stripego.CustomerCreateParams {
	params := &stripego.CustomerCreateParams{
		PaymentMethod: stripego.String(req.PaymentMethodID),
	}
	if req.Email != "" {
		params.Email = stripego.String(req.Email)
	}
	if req.Name != "" {
		params.Name = stripego.String(req.Name)
	}
	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}
	return params
}

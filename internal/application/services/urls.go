package services

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/remp2020/crm-stripe-module/internal/domain"
)

func withQuery(base string, params url.Values) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	q := u.Query()
	for key, values := range params {
		for _, v := range values {
			q.Set(key, v)
		}
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// returnURL appends the variable symbol the return handlers look the payment up by.
func returnURL(base string, payment *domain.Payment) string {
	return withQuery(base, url.Values{"vs": {payment.VariableSymbol}})
}

func checkoutURL(base, sessionID string) string {
	return withQuery(base, url.Values{"session_id": {sessionID}})
}

func walletURL(base, variableSymbol string) string {
	return strings.TrimRight(base, "/") + "/" + url.PathEscape(variableSymbol)
}

func paymentLockKey(variableSymbol string) string {
	return "stripe:payment:" + variableSymbol
}

func customerLockKey(userID int64) string {
	return "stripe:customer:" + strconv.FormatInt(userID, 10)
}

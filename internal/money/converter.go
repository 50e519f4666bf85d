// Package money converts major-unit decimal amounts into the minor-unit
// integers expected by the payment processor.
package money

import (
	"errors"
	"math"
	"strings"

	"github.com/remp2020/crm-stripe-module/internal/domain"
	"github.com/shopspring/decimal"
)

const defaultExponent int32 = 2

// ISO-4217 currencies whose minor unit is not hundredths.
var exponents = map[string]int32{
	"BIF": 0, "CLP": 0, "DJF": 0, "GNF": 0, "ISK": 0, "JPY": 0, "KMF": 0, "KRW": 0,
	"MGA": 0, "PYG": 0, "RWF": 0, "UGX": 0, "VND": 0, "VUV": 0, "XAF": 0, "XOF": 0, "XPF": 0,
	"BHD": 3, "IQD": 3, "JOD": 3, "KWD": 3, "LYD": 3, "OMR": 3, "TND": 3,
}

var maxMinor = decimal.NewFromInt(math.MaxInt64)

// Exponent returns the number of minor-unit digits of the currency.
func Exponent(currency string) int32 {
	if e, ok := exponents[strings.ToUpper(currency)]; ok {
		return e
	}
	return defaultExponent
}

type Converter struct{}

func NewConverter() *Converter {
	return &Converter{}
}

// ToMinor parses the textual decimal amount and converts it to minor units.
func (c *Converter) ToMinor(amount, currency string) (int64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil {
		return 0, domain.NewInvalidAmountError(amount, err)
	}
	return c.DecimalToMinor(d, currency)
}

// DecimalToMinor rounds half away from zero only at the minor-unit boundary.
func (c *Converter) DecimalToMinor(amount decimal.Decimal, currency string) (int64, error) {
	if strings.TrimSpace(currency) == "" {
		return 0, domain.NewMissingRequiredFieldError("currency")
	}
	if amount.IsNegative() {
		return 0, domain.NewInvalidAmountError(amount.String(), errors.New("amount cannot be negative"))
	}

	minor := amount.Shift(Exponent(currency)).Round(0)
	if minor.GreaterThan(maxMinor) {
		return 0, domain.NewInvalidAmountError(amount.String(), errors.New("amount overflows minor units"))
	}

	return minor.IntPart(), nil
}

// Package money formats amounts for display. Record sets keep plain
// decimals; currency symbols are only added here.
package money

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// INR is the ISO-4217 code for the Indian Rupee.
const INR = money.INR

// NewFromDecimal converts amount to go-money minor units, rounding half
// away from zero. Unknown codes fall back to INR.
func NewFromDecimal(amount decimal.Decimal, currencyCode string) *money.Money {
	currency := money.GetCurrency(currencyCode)
	if currency == nil {
		currency = money.GetCurrency(INR)
	}
	multiplier := decimal.New(1, int32(currency.Fraction))
	minor := amount.Mul(multiplier).Round(0).IntPart()
	return money.New(minor, currency.Code)
}

// Format renders amount with the currency's symbol and grouping.
func Format(amount decimal.Decimal, currencyCode string) string {
	return NewFromDecimal(amount, currencyCode).Display()
}

// FormatINR renders amount as rupees, e.g. ₹1,234.50.
func FormatINR(amount decimal.Decimal) string {
	return Format(amount, INR)
}

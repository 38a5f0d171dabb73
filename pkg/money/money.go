// Package money formats minor-unit amounts for display.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

// zeroDecimal lists ISO-4217 currencies without a minor unit.
var zeroDecimal = map[string]bool{
	"JPY": true,
	"KRW": true,
	"VND": true,
	"CLP": true,
	"ISK": true,
	"UGX": true,
}

// Exponent returns the number of minor-unit digits for currency.
func Exponent(currency string) int32 {
	if zeroDecimal[strings.ToUpper(currency)] {
		return 0
	}
	return 2
}

// Decimal converts a minor-unit amount into a decimal major-unit value.
func Decimal(amount int64, currency string) decimal.Decimal {
	return decimal.New(amount, -Exponent(currency))
}

// Format renders amount as "<major units> <CURRENCY>", e.g. "29.99 INR".
func Format(amount int64, currency string) string {
	exp := Exponent(currency)
	return Decimal(amount, currency).StringFixed(exp) + " " + strings.ToUpper(currency)
}

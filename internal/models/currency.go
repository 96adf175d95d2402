package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Static offline rate table: 1 unit of foreign currency in IDR. Rates are not
// fetched live; updating them is a code change.
var idrRates = map[string]decimal.Decimal{
	"IDR": decimal.NewFromInt(1),
	"USD": decimal.NewFromInt(15800),
	"EUR": decimal.NewFromInt(17100),
	"SGD": decimal.NewFromInt(11700),
	"MYR": decimal.NewFromFloat(3350),
	"JPY": decimal.NewFromFloat(105.5),
}

// ConvertFromIDR converts an IDR amount (smallest unit, i.e. whole rupiah)
// into the target currency using the static rate table.
func ConvertFromIDR(amount int64, currency string) (decimal.Decimal, error) {
	rate, ok := idrRates[currency]
	if !ok {
		return decimal.Zero, fmt.Errorf("unknown currency %q", currency)
	}
	return decimal.NewFromInt(amount).DivRound(rate, 2), nil
}

// SupportedCurrencies lists the codes present in the rate table.
func SupportedCurrencies() []string {
	codes := make([]string, 0, len(idrRates))
	for code := range idrRates {
		codes = append(codes, code)
	}
	return codes
}

// Package currency renders exact decimal amounts for display. All
// aggregation happens on decimal.Decimal values; this is the only place
// an amount is rounded or grouped.
package currency

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var printer = message.NewPrinter(language.English)

// Format renders an amount with two decimal places and thousands
// grouping, e.g. "12,345.60". No currency symbol; callers add their own.
func Format(amount decimal.Decimal) string {
	f, _ := amount.Round(2).Float64()
	return printer.Sprint(number.Decimal(f,
		number.MinFractionDigits(2),
		number.MaxFractionDigits(2),
	))
}

package report

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/awsaudit-dev/awsaudit/internal/billing"
)

// Flat renders every ledger account sorted by spend descending. The
// header total counts all accounts; rows below the limit are hidden
// but still counted. The limit is an inclusive lower bound.
func Flat(ledger *billing.Ledger, limit decimal.Decimal, displayIDs bool) string {
	var b strings.Builder
	b.WriteString(TotalsHeader(ledger.TotalSpend(), ledger.Currency, limit))

	for _, rec := range bySpendDesc(ledger.All()) {
		if rec.Total.LessThan(limit) {
			continue
		}
		b.WriteString(accountLine(rec, displayIDs))
	}
	return b.String()
}

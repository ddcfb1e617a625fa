// Package report renders spend reports from an already-built ledger
// or cost tree. Renderers are pure: they never mutate their inputs and
// produce text (or CSV rows) only.
package report

import (
	"fmt"
	"sort"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/awsaudit-dev/awsaudit/internal/currency"
	"github.com/awsaudit-dev/awsaudit/internal/model"
)

// TotalsHeader is the report preamble: the grand total across all
// accounts (including those below the display threshold) and the
// threshold itself.
func TotalsHeader(total decimal.Decimal, currencyCode string, limit decimal.Decimal) string {
	return fmt.Sprintf("== Current AWS totals:  $%s %s (only shown below: > $%s) ==\n\n",
		currency.Format(total), currencyCode, limit)
}

// accountLine renders one account row. The identifier column is
// emitted only when requested.
func accountLine(rec model.AccountRecord, displayIDs bool) string {
	spend := "$" + currency.Format(rec.Total)
	if displayIDs {
		return fmt.Sprintf("%-25s\t(%s)\t%s %s\n", rec.Name, rec.ID, spend, rec.Currency)
	}
	return fmt.Sprintf("%-25s\t\t%s %s\n", rec.Name, spend, rec.Currency)
}

// bySpendDesc returns a copy sorted by spend descending, ties broken
// by identifier so repeated renders are byte-identical.
func bySpendDesc(records []model.AccountRecord) []model.AccountRecord {
	sorted := make([]model.AccountRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].Total.Equal(sorted[j].Total) {
			return sorted[i].Total.GreaterThan(sorted[j].Total)
		}
		return sorted[i].ID < sorted[j].ID
	})
	return sorted
}

func sumTotals(records []model.AccountRecord) decimal.Decimal {
	return lo.Reduce(records, func(sum decimal.Decimal, rec model.AccountRecord, _ int) decimal.Decimal {
		return sum.Add(rec.Total)
	}, decimal.Zero)
}

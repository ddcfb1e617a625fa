package report

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/awsaudit-dev/awsaudit/internal/billing"
	"github.com/awsaudit-dev/awsaudit/internal/currency"
)

// Leaderboard renders the top N spenders. Unlike the flat report, the
// header total reflects only the accounts listed: truncation happens
// before the sum.
func Leaderboard(ledger *billing.Ledger, top int, displayIDs bool) string {
	leaders := lo.Slice(bySpendDesc(ledger.All()), 0, top)

	var b strings.Builder
	fmt.Fprintf(&b, "== AWS top %d leaderboard:  $%s %s ==\n\n",
		top, currency.Format(sumTotals(leaders)), ledger.Currency)

	for _, rec := range leaders {
		b.WriteString(accountLine(rec, displayIDs))
	}
	b.WriteString("\n\n")
	return b.String()
}

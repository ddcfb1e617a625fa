package report

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/awsaudit-dev/awsaudit/internal/costtree"
	"github.com/awsaudit-dev/awsaudit/internal/currency"
)

// Hierarchy renders the cost tree pre-order: each node before its
// children, children in directory order, the orphan root last. Only
// accounts within a node are re-sorted (by spend descending). Every
// child is visited even when its own subtotal is below the limit, so
// an OU can appear as an empty section.
func Hierarchy(t *costtree.Tree, limit decimal.Decimal, displayIDs bool) string {
	var b strings.Builder
	for _, root := range t.Roots() {
		t.Walk(root, func(id costtree.NodeID) {
			writeNode(&b, t, id, limit, displayIDs)
		})
	}
	return b.String()
}

func writeNode(b *strings.Builder, t *costtree.Tree, id costtree.NodeID, limit decimal.Decimal, displayIDs bool) {
	spend := "$" + currency.Format(t.NodeSpend(id))

	if path := t.ParentPath(id); len(path) > 0 {
		fmt.Fprintf(b, "%s -> %s: %s %s\n==========\n",
			strings.Join(path, " -> "), t.Name(id), spend, t.Currency(id))
	} else {
		fmt.Fprintf(b, "%s: %s %s\n", t.Name(id), spend, t.Currency(id))
	}

	for _, rec := range bySpendDesc(t.Accounts(id)) {
		if rec.Total.LessThan(limit) {
			continue
		}
		b.WriteString(accountLine(rec, displayIDs))
	}
	b.WriteString("\n")
}

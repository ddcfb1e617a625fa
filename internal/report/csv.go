package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/awsaudit-dev/awsaudit/internal/billing"
	"github.com/awsaudit-dev/awsaudit/internal/costtree"
	"github.com/awsaudit-dev/awsaudit/internal/currency"
	"github.com/awsaudit-dev/awsaudit/internal/model"
)

// CSV headers are a fixed contract with downstream plot and reporting
// consumers.
var (
	accountCSVHeader = []string{"year", "month", "person", "spend"}
	orgCSVHeader     = []string{"year", "month", "lab or PI", "project", "spend", "num accounts"}
)

// WriteAccountCSV appends one row per ledger account with spend at or
// above limit, creating the file with a header row when it does not
// exist yet.
func WriteAccountCSV(path string, ledger *billing.Ledger, limit decimal.Decimal) error {
	var rows [][]string
	for _, rec := range bySpendDesc(ledger.All()) {
		if rec.Total.LessThan(limit) {
			continue
		}
		rows = append(rows, []string{
			ledger.Period.Year,
			ledger.Period.Month,
			rec.Name,
			"$" + currency.Format(rec.Total),
		})
	}
	return appendRows(path, accountCSVHeader, rows)
}

// WriteOrgCSV appends one row per OU whose direct spend exceeds limit,
// in the same pre-order as the hierarchical report. Top-level nodes
// list themselves in the parent column.
func WriteOrgCSV(path string, t *costtree.Tree, limit decimal.Decimal, period model.BillingPeriod) error {
	var rows [][]string
	for _, root := range t.Roots() {
		t.Walk(root, func(id costtree.NodeID) {
			direct := t.DirectSpend(id)
			if !direct.GreaterThan(limit) {
				return
			}
			parentName := t.Name(id)
			if p := t.Parent(id); p != costtree.None {
				parentName = t.Name(p)
			}
			rows = append(rows, []string{
				period.Year,
				period.Month,
				parentName,
				t.Name(id),
				"$" + currency.Format(direct),
				strconv.Itoa(len(t.Accounts(id))),
			})
		})
	}
	return appendRows(path, orgCSVHeader, rows)
}

// appendRows appends rows to path, writing the header first only when
// the file does not already exist.
func appendRows(path string, header []string, rows [][]string) error {
	_, statErr := os.Stat(path)
	writeHeader := os.IsNotExist(statErr)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening CSV %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if writeHeader {
		if err := w.Write(header); err != nil {
			return fmt.Errorf("writing CSV header: %w", err)
		}
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("writing CSV row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}

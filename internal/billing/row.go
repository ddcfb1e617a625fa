package billing

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Column positions in the consolidated billing export. These are a
// fixed schema contract with the upstream export format; nothing
// outside this file touches positional indices.
const (
	fieldAccountID   = 2
	fieldRowType     = 3
	fieldBillingDate = 6
	fieldAccountName = 9
	fieldDescription = 18
	fieldCurrency    = 23
	fieldTotal       = 24
	fieldCredit      = 25

	// minFields is the shortest row worth classifying at all.
	minFields = 4

	minAccountTotalFields = 25
	minLinkedItemFields   = 26

	rowTypeAccountTotal   = "AccountTotal"
	rowTypeLinkedLineItem = "LinkedLineItem"

	// unauthorizedUsage marks fraud-clawback credit line items.
	// The match is a case-sensitive substring, per the export format.
	unauthorizedUsage = "Unauthorized Usage"
)

// accountTotalRow is an "AccountTotal" export row decoded into named
// fields.
type accountTotalRow struct {
	AccountID string
	Name      string
	Total     decimal.Decimal
	Currency  string
	Date      string
}

// linkedItemRow is a fraud-credit "LinkedLineItem" export row. Credit
// is always <= 0 in real exports, so it is added, never subtracted.
type linkedItemRow struct {
	AccountID string
	Credit    decimal.Decimal
}

// decodeAccountTotal decodes an account-total row. Rows of the wrong
// type, rows too short for the schema, and rows with an unparseable
// amount are skipped (ok=false), never fatal.
func decodeAccountTotal(rec []string) (accountTotalRow, bool) {
	if len(rec) < minAccountTotalFields || rec[fieldRowType] != rowTypeAccountTotal {
		return accountTotalRow{}, false
	}

	total, err := decimal.NewFromString(rec[fieldTotal])
	if err != nil {
		return accountTotalRow{}, false
	}

	return accountTotalRow{
		AccountID: rec[fieldAccountID],
		Name:      rec[fieldAccountName],
		Total:     total,
		Currency:  rec[fieldCurrency],
		Date:      rec[fieldBillingDate],
	}, true
}

// decodeLinkedItem decodes a linked line item carrying an
// unauthorized-usage credit. All other linked items are skipped.
func decodeLinkedItem(rec []string) (linkedItemRow, bool) {
	if len(rec) < minLinkedItemFields || rec[fieldRowType] != rowTypeLinkedLineItem {
		return linkedItemRow{}, false
	}
	if !strings.Contains(rec[fieldDescription], unauthorizedUsage) {
		return linkedItemRow{}, false
	}

	credit, err := decimal.NewFromString(rec[fieldCredit])
	if err != nil {
		return linkedItemRow{}, false
	}

	return linkedItemRow{
		AccountID: rec[fieldAccountID],
		Credit:    credit,
	}, true
}

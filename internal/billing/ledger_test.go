package billing

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

// accountTotalRec builds an AccountTotal export row with the schema's
// positional fields populated.
func accountTotalRec(id, name, date, currency, total string) []string {
	rec := make([]string, minAccountTotalFields)
	rec[fieldAccountID] = id
	rec[fieldRowType] = rowTypeAccountTotal
	rec[fieldBillingDate] = date
	rec[fieldAccountName] = name
	rec[fieldCurrency] = currency
	rec[fieldTotal] = total
	return rec
}

// linkedItemRec builds a LinkedLineItem export row.
func linkedItemRec(id, description, credit string) []string {
	rec := make([]string, minLinkedItemFields)
	rec[fieldAccountID] = id
	rec[fieldRowType] = rowTypeLinkedLineItem
	rec[fieldDescription] = description
	rec[fieldCredit] = credit
	return rec
}

func exportCSV(t *testing.T, records [][]string) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	require.NoError(t, w.WriteAll(records))
	return &buf
}

func TestParseExport(t *testing.T) {
	buf := exportCSV(t, [][]string{
		{"InvoiceID", "Payer", "ignored"}, // short row, skipped
		accountTotalRec("111122223333", "research-lab", "2026-08-01", "USD", "1234.56"),
		accountTotalRec("444455556666", "web-frontend", "2026-08-01", "USD", "42.01"),
		{"x", "y", "444455556666", "StatementTotal"}, // wrong row type
	})

	ledger, err := ParseExport(buf)
	require.NoError(t, err)

	assert.Equal(t, 2, ledger.Len())
	assert.Equal(t, "USD", ledger.Currency)
	assert.Equal(t, "2026", ledger.Period.Year)
	assert.Equal(t, "08", ledger.Period.Month)
	assert.False(t, ledger.MixedCurrencies)

	rec, ok := ledger.Get("111122223333")
	require.True(t, ok)
	assert.Equal(t, "research-lab", rec.Name)
	assert.True(t, rec.Total.Equal(dec("1234.56")))
	assert.Equal(t, "USD", rec.Currency)

	assert.True(t, ledger.TotalSpend().Equal(dec("1276.57")))
}

func TestParseExportCreditAdjustment(t *testing.T) {
	buf := exportCSV(t, [][]string{
		// Credit appears before the account total; the pass ordering
		// still applies it.
		linkedItemRec("111122223333", "AWS Unauthorized Usage clawback", "-30"),
		accountTotalRec("111122223333", "research-lab", "2026-08-01", "USD", "100"),
		// Lowercase description must not match.
		linkedItemRec("111122223333", "unauthorized usage", "-50"),
		// Credit for an account absent from the ledger is skipped.
		linkedItemRec("999988887777", "Unauthorized Usage", "-10"),
	})

	ledger, err := ParseExport(buf)
	require.NoError(t, err)
	require.Equal(t, 1, ledger.Len())

	rec, ok := ledger.Get("111122223333")
	require.True(t, ok)
	assert.True(t, rec.Total.Equal(dec("70")), "got %s", rec.Total)
}

func TestParseExportDefaultCurrencyFirstSeen(t *testing.T) {
	buf := exportCSV(t, [][]string{
		accountTotalRec("1", "a", "2026-08-01", "USD", "1"),
		accountTotalRec("2", "b", "2026-08-01", "EUR", "2"),
	})

	ledger, err := ParseExport(buf)
	require.NoError(t, err)
	assert.Equal(t, "USD", ledger.Currency)
	assert.True(t, ledger.MixedCurrencies)

	rec, _ := ledger.Get("2")
	assert.Equal(t, "EUR", rec.Currency)
}

func TestParseExportOverwritesDuplicateAccount(t *testing.T) {
	buf := exportCSV(t, [][]string{
		accountTotalRec("1", "old-name", "2026-08-01", "USD", "5"),
		accountTotalRec("1", "new-name", "2026-08-01", "USD", "7"),
	})

	ledger, err := ParseExport(buf)
	require.NoError(t, err)
	require.Equal(t, 1, ledger.Len())

	rec, _ := ledger.Get("1")
	assert.Equal(t, "new-name", rec.Name)
	assert.True(t, rec.Total.Equal(dec("7")))
}

func TestParseExportMalformedAmountSkipped(t *testing.T) {
	buf := exportCSV(t, [][]string{
		accountTotalRec("1", "a", "2026-08-01", "USD", "not-a-number"),
		accountTotalRec("2", "b", "2026-08-01", "USD", "3"),
	})

	ledger, err := ParseExport(buf)
	require.NoError(t, err)
	assert.Equal(t, 1, ledger.Len())
}

func TestLedgerAllSortedByID(t *testing.T) {
	buf := exportCSV(t, [][]string{
		accountTotalRec("b", "bee", "2026-08-01", "USD", "1"),
		accountTotalRec("a", "ay", "2026-08-01", "USD", "2"),
		accountTotalRec("c", "sea", "2026-08-01", "USD", "3"),
	})

	ledger, err := ParseExport(buf)
	require.NoError(t, err)

	var ids []string
	for _, rec := range ledger.All() {
		ids = append(ids, rec.ID)
	}
	assert.Equal(t, []string{"a", "b", "c"}, ids)
}

func TestParseExportEmpty(t *testing.T) {
	ledger, err := ParseExport(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, 0, ledger.Len())
	assert.True(t, ledger.Period.IsZero())
}

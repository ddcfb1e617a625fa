// Package billing parses consolidated billing exports into the spend
// ledger and resolves the export itself from S3 or the local
// filesystem.
package billing

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/awsaudit-dev/awsaudit/internal/model"
)

// Ledger maps account identifiers to their sealed spend records for
// one billing period. Built once per run; read-only afterwards.
type Ledger struct {
	accounts map[string]model.AccountRecord

	// Currency is the report default: the first currency code seen in
	// an account-total row. The export is assumed single-currency.
	Currency string

	// Period is the billing year/month gleaned from the export.
	Period model.BillingPeriod

	// MixedCurrencies is set when account-total rows disagree on
	// currency. Totals are still summed without conversion.
	MixedCurrencies bool
}

// NewLedger builds a ledger directly from records, bypassing export
// parsing.
func NewLedger(currency string, period model.BillingPeriod, records ...model.AccountRecord) *Ledger {
	l := &Ledger{
		accounts: make(map[string]model.AccountRecord, len(records)),
		Currency: currency,
		Period:   period,
	}
	for _, rec := range records {
		l.accounts[rec.ID] = rec
	}
	return l
}

// ParseExport builds the ledger from a consolidated billing CSV. The
// first pass seals account totals; the second applies unauthorized-
// usage credits, which only lands on accounts already in the ledger.
func ParseExport(r io.Reader) (*Ledger, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // export rows vary in width by type

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading billing export: %w", err)
	}

	l := &Ledger{accounts: make(map[string]model.AccountRecord)}

	for _, rec := range records {
		if len(rec) < minFields {
			continue
		}
		row, ok := decodeAccountTotal(rec)
		if !ok {
			continue
		}

		if l.Currency == "" {
			l.Currency = row.Currency
		} else if row.Currency != l.Currency {
			l.MixedCurrencies = true
		}

		if l.Period.IsZero() && len(row.Date) >= 7 {
			l.Period = model.BillingPeriod{
				Year:  row.Date[0:4],
				Month: row.Date[5:7],
			}
		}

		l.accounts[row.AccountID] = model.AccountRecord{
			ID:       row.AccountID,
			Name:     row.Name,
			Total:    row.Total,
			Currency: row.Currency,
		}
	}

	// Credit pass. Runs strictly after every account total is sealed so
	// a credit can never land before its account is seen.
	for _, rec := range records {
		if len(rec) < minFields {
			continue
		}
		row, ok := decodeLinkedItem(rec)
		if !ok {
			continue
		}
		acct, ok := l.accounts[row.AccountID]
		if !ok {
			continue
		}
		acct.Total = acct.Total.Add(row.Credit)
		l.accounts[row.AccountID] = acct
	}

	return l, nil
}

// Get returns the record for an account identifier.
func (l *Ledger) Get(id string) (model.AccountRecord, bool) {
	rec, ok := l.accounts[id]
	return rec, ok
}

// IDs returns all ledger account identifiers in sorted order.
func (l *Ledger) IDs() []string {
	ids := lo.Keys(l.accounts)
	sort.Strings(ids)
	return ids
}

// All returns every record, ordered by account identifier so repeated
// renders of the same ledger are byte-identical.
func (l *Ledger) All() []model.AccountRecord {
	return lo.Map(l.IDs(), func(id string, _ int) model.AccountRecord {
		return l.accounts[id]
	})
}

// Len returns the number of accounts in the ledger.
func (l *Ledger) Len() int {
	return len(l.accounts)
}

// TotalSpend sums every account's total, including accounts below any
// display threshold.
func (l *Ledger) TotalSpend() decimal.Decimal {
	return lo.Reduce(l.All(), func(sum decimal.Decimal, rec model.AccountRecord, _ int) decimal.Decimal {
		return sum.Add(rec.Total)
	}, decimal.Zero)
}

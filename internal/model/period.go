package model

// BillingPeriod is the year and month a billing export covers, gleaned
// from the first account-total row's date field. Kept as strings in the
// export's own formatting ("2026" / "08") since they only ever appear
// verbatim in CSV output.
type BillingPeriod struct {
	Year  string
	Month string
}

// IsZero reports whether no period was found in the export.
func (p BillingPeriod) IsZero() bool {
	return p.Year == "" && p.Month == ""
}

package model

import "github.com/shopspring/decimal"

// AccountRecord is one AWS account's spend as sealed into the ledger:
// the identifier and display name from the billing export, the total
// across all services after credit adjustments, and the currency the
// export reported it in.
type AccountRecord struct {
	ID       string
	Name     string
	Total    decimal.Decimal
	Currency string
}

// NodeIdentity identifies an organizational unit as the directory
// reports it.
type NodeIdentity struct {
	ID   string
	Name string
}

// AccountIdentity identifies an account attached to an organizational
// unit. The directory's display name may lag behind the billing
// export's, so the ledger name wins when both are known.
type AccountIdentity struct {
	ID   string
	Name string
}

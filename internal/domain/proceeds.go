package domain

import "github.com/shopspring/decimal"

// ProceedsBalance represents a seller's accumulated, not-yet-withdrawn sale
// revenue. Balances are implicitly created at zero on first credit, only
// increase through completed sales, and only reset to zero through a
// successful withdrawal by the owner.
type ProceedsBalance struct {
	Owner  Address
	Amount decimal.Decimal
}

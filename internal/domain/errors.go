package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Precondition failures shared by every mutating operation. All failures
// abort the whole operation with no partial mutation.
var (
	// ErrPriceMustBeAboveZero rejects listing or updating with a
	// non-positive price.
	ErrPriceMustBeAboveZero = errors.New("price must be above zero")

	// ErrNotApprovedForMarketplace rejects a listing when the marketplace
	// holds neither direct approval nor operator approval for the asset.
	ErrNotApprovedForMarketplace = errors.New("marketplace is not approved to transfer the asset")

	// ErrNoProceeds rejects a withdrawal against a zero balance.
	ErrNoProceeds = errors.New("no proceeds to withdraw")

	// ErrTransferFailed reports that the external value transfer failed
	// during withdrawal; the ledger mutation is rolled back with it.
	ErrTransferFailed = errors.New("value transfer failed")
)

// NotAnOwnerError reports that the caller lacks authorization for the
// listing or the underlying asset.
type NotAnOwnerError struct {
	AssetContract Address
	TokenID       string
}

func (e *NotAnOwnerError) Error() string {
	return fmt.Sprintf("caller is not the owner of token %s in contract %s", e.TokenID, e.AssetContract)
}

// NotListedError reports that an operation targeted a non-existent listing.
type NotListedError struct {
	AssetContract Address
	TokenID       string
}

func (e *NotListedError) Error() string {
	return fmt.Sprintf("token %s in contract %s is not listed", e.TokenID, e.AssetContract)
}

// PriceNotMetError reports insufficient payment on purchase. Price carries
// the listed price so the caller can diagnose without a second lookup.
type PriceNotMetError struct {
	AssetContract Address
	TokenID       string
	Price         decimal.Decimal
}

func (e *PriceNotMetError) Error() string {
	return fmt.Sprintf("payment below listed price %s for token %s in contract %s",
		e.Price.String(), e.TokenID, e.AssetContract)
}

package domain

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Address is a hex-encoded account or asset-contract address.
type Address string

// ZeroAddress is the null address. It marks the seller slot of a sentinel
// listing and can never authorize an operation.
const ZeroAddress Address = "0x0000000000000000000000000000000000000000"

// IsZero reports whether the address is empty or the null address.
func (a Address) IsZero() bool {
	return a == "" || a == ZeroAddress
}

// Listing represents an active offer to sell one asset unit at a fixed price.
// A listing is keyed by (AssetContract, TokenID); the recorded seller is the
// only address entitled to proceeds and authorized to mutate or cancel it.
type Listing struct {
	AssetContract Address
	TokenID       string
	Price         decimal.Decimal
	Seller        Address
}

// SentinelListing returns the zero record used to represent "no listing
// exists" for the given asset unit. Reads of absent listings always return
// this value, so absent and zero-valued are indistinguishable.
func SentinelListing(contract Address, tokenID string) Listing {
	return Listing{
		AssetContract: contract,
		TokenID:       tokenID,
		Price:         decimal.Zero,
		Seller:        ZeroAddress,
	}
}

// IsListed reports whether the asset unit is currently offered for sale.
// A strictly positive price is the absence test: price zero means sentinel.
func (l Listing) IsListed() bool {
	return l.Price.GreaterThan(decimal.Zero)
}

// Validate ensures the listing adheres to domain rules before it is stored.
func (l Listing) Validate() error {
	if l.AssetContract.IsZero() {
		return errors.New("listing asset contract cannot be empty")
	}
	if l.TokenID == "" {
		return errors.New("listing token ID cannot be empty")
	}
	if !l.Price.GreaterThan(decimal.Zero) {
		return ErrPriceMustBeAboveZero
	}
	if l.Seller.IsZero() {
		return errors.New("listing seller cannot be the zero address")
	}
	return nil
}

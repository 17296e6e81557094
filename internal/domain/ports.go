package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// MarketTx exposes the listing registry and proceeds ledger primitives
// inside a single unit of work. Mutations staged through a MarketTx become
// visible only when the surrounding Atomic call returns nil.
type MarketTx interface {
	// GetListing returns the listing for the asset unit, or the sentinel
	// zero record when absent. It never fails on absence.
	GetListing(ctx context.Context, contract Address, tokenID string) (Listing, error)

	// SetListing creates or overwrites the listing. The listing must carry
	// a strictly positive price.
	SetListing(ctx context.Context, l Listing) error

	// ClearListing resets the listing to the sentinel record.
	ClearListing(ctx context.Context, contract Address, tokenID string) error

	// Proceeds returns the owner's withdrawable balance, zero when the
	// owner has never been credited.
	Proceeds(ctx context.Context, owner Address) (decimal.Decimal, error)

	// CreditProceeds adds amount to the owner's balance, creating it at
	// zero first if needed.
	CreditProceeds(ctx context.Context, owner Address, amount decimal.Decimal) error

	// ZeroProceeds resets the owner's balance to zero.
	ZeroProceeds(ctx context.Context, owner Address) error
}

// MarketStore owns all listing and proceeds state. Operations are serialized:
// no two Atomic blocks observe or mutate overlapping state concurrently, and
// a block that returns an error leaves no trace of its staged mutations.
type MarketStore interface {
	// Atomic runs fn as one all-or-nothing unit of work. Every mutation
	// staged by fn is committed if and only if fn returns nil.
	Atomic(ctx context.Context, fn func(tx MarketTx) error) error

	// GetListing is the read-only accessor outside any unit of work.
	GetListing(ctx context.Context, contract Address, tokenID string) (Listing, error)

	// Proceeds is the read-only balance accessor outside any unit of work.
	Proceeds(ctx context.Context, owner Address) (decimal.Decimal, error)
}

// AssetRegistry is the external ownership and approval collaborator. It is
// the source of truth for asset ownership; the marketplace never caches its
// answers beyond the instant of each check.
type AssetRegistry interface {
	// OwnerOf returns the current owner of the asset unit.
	OwnerOf(ctx context.Context, contract Address, tokenID string) (Address, error)

	// IsApprovedOrOperator reports whether spender holds direct transfer
	// approval for the asset unit or blanket operator approval from its
	// owner.
	IsApprovedOrOperator(ctx context.Context, contract Address, tokenID string, spender Address) (bool, error)

	// TransferFrom moves the asset unit from its current owner to the
	// recipient. It fails if from is not the current owner or the transfer
	// is unauthorized at execution time.
	TransferFrom(ctx context.Context, contract Address, tokenID string, from, to Address) error
}

// PaymentGateway is the external value-transfer collaborator. A failed Send
// must surface as an error so the caller can roll back; it is never silently
// ignored.
type PaymentGateway interface {
	Send(ctx context.Context, to Address, amount decimal.Decimal) error
}

// EventPublisher delivers marketplace lifecycle notifications to external
// consumers. Publishing happens after the operation's state is committed.
type EventPublisher interface {
	Publish(ev MarketEvent)
}

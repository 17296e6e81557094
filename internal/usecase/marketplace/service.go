package marketplace

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/tokenbay/marketplace-backend/internal/domain"
)

// ListItemInput represents the input for listing an asset unit for sale.
type ListItemInput struct {
	AssetContract domain.Address
	TokenID       string
	Price         decimal.Decimal
	Caller        domain.Address
}

// BuyItemInput represents the input for purchasing a listed asset unit.
type BuyItemInput struct {
	AssetContract domain.Address
	TokenID       string
	Caller        domain.Address
	PaidAmount    decimal.Decimal
}

// UpdateListingInput represents the input for re-pricing an existing listing.
type UpdateListingInput struct {
	AssetContract domain.Address
	TokenID       string
	NewPrice      decimal.Decimal
	Caller        domain.Address
}

// Service orchestrates the listing registry, the proceeds ledger, and the
// external ownership and value-transfer collaborators. It is the only writer
// of marketplace state.
//
// Every mutating operation validates its preconditions first, then mutates
// internal state, and only then invokes an external collaborator, inside the
// same atomic unit of work. A reentrant observer of committed state during
// the external call therefore sees post-operation values, and a failed
// external call rolls the whole operation back.
type Service struct {
	Store    domain.MarketStore
	Assets   domain.AssetRegistry
	Payments domain.PaymentGateway
	Events   domain.EventPublisher

	// Operator is the address the marketplace presents when checking that
	// it holds transfer approval for an asset.
	Operator domain.Address
}

// NewService creates a new marketplace Service instance.
func NewService(
	store domain.MarketStore,
	assets domain.AssetRegistry,
	payments domain.PaymentGateway,
	events domain.EventPublisher,
	operator domain.Address,
) *Service {
	return &Service{
		Store:    store,
		Assets:   assets,
		Payments: payments,
		Events:   events,
		Operator: operator,
	}
}

// ListItem records a new listing for the caller's asset unit.
// Preconditions, first failure wins:
//  1. Price must be strictly positive.
//  2. Caller must be the current owner per the asset registry.
//  3. The marketplace must hold transfer approval for the asset.
//
// Re-listing an already-listed item silently replaces the prior listing.
func (s *Service) ListItem(ctx context.Context, input ListItemInput) (domain.Listing, error) {
	if !input.Price.GreaterThan(decimal.Zero) {
		return domain.Listing{}, domain.ErrPriceMustBeAboveZero
	}

	owner, err := s.Assets.OwnerOf(ctx, input.AssetContract, input.TokenID)
	if err != nil {
		return domain.Listing{}, fmt.Errorf("failed to resolve asset owner: %w", err)
	}
	if owner != input.Caller {
		return domain.Listing{}, &domain.NotAnOwnerError{
			AssetContract: input.AssetContract,
			TokenID:       input.TokenID,
		}
	}

	approved, err := s.Assets.IsApprovedOrOperator(ctx, input.AssetContract, input.TokenID, s.Operator)
	if err != nil {
		return domain.Listing{}, fmt.Errorf("failed to check marketplace approval: %w", err)
	}
	if !approved {
		return domain.Listing{}, domain.ErrNotApprovedForMarketplace
	}

	listing := domain.Listing{
		AssetContract: input.AssetContract,
		TokenID:       input.TokenID,
		Price:         input.Price,
		Seller:        input.Caller,
	}
	err = s.Store.Atomic(ctx, func(tx domain.MarketTx) error {
		return tx.SetListing(ctx, listing)
	})
	if err != nil {
		return domain.Listing{}, err
	}

	s.Events.Publish(domain.NewItemListedEvent(listing))
	return listing, nil
}

// BuyItem executes an atomic sale of a listed asset unit against the
// caller's payment. In order, inside one unit of work:
//  1. Credit the seller's proceeds with the listed price.
//  2. Credit any overpayment back to the buyer's own proceeds balance.
//  3. Clear the listing.
//  4. Transfer the asset from seller to buyer via the asset registry.
//
// State mutation completes before the external transfer so that a reentrant
// call during the transfer observes the item as delisted and the proceeds as
// credited. A failed transfer rolls everything back.
func (s *Service) BuyItem(ctx context.Context, input BuyItemInput) (domain.Listing, error) {
	var sold domain.Listing
	err := s.Store.Atomic(ctx, func(tx domain.MarketTx) error {
		listing, err := tx.GetListing(ctx, input.AssetContract, input.TokenID)
		if err != nil {
			return fmt.Errorf("failed to read listing: %w", err)
		}
		if !listing.IsListed() {
			return &domain.NotListedError{
				AssetContract: input.AssetContract,
				TokenID:       input.TokenID,
			}
		}
		if input.PaidAmount.LessThan(listing.Price) {
			return &domain.PriceNotMetError{
				AssetContract: input.AssetContract,
				TokenID:       input.TokenID,
				Price:         listing.Price,
			}
		}

		if err := tx.CreditProceeds(ctx, listing.Seller, listing.Price); err != nil {
			return fmt.Errorf("failed to credit seller proceeds: %w", err)
		}

		// Overpayment is refunded through the buyer's own proceeds
		// balance rather than kept or sent back inline, so the refund
		// needs no extra external call.
		excess := input.PaidAmount.Sub(listing.Price)
		if excess.GreaterThan(decimal.Zero) {
			if err := tx.CreditProceeds(ctx, input.Caller, excess); err != nil {
				return fmt.Errorf("failed to credit buyer refund: %w", err)
			}
		}

		if err := tx.ClearListing(ctx, input.AssetContract, input.TokenID); err != nil {
			return fmt.Errorf("failed to clear listing: %w", err)
		}

		if err := s.Assets.TransferFrom(ctx, input.AssetContract, input.TokenID, listing.Seller, input.Caller); err != nil {
			return fmt.Errorf("asset transfer failed: %w", err)
		}

		sold = listing
		return nil
	})
	if err != nil {
		return domain.Listing{}, err
	}

	s.Events.Publish(domain.NewItemBoughtEvent(sold, input.Caller))
	return sold, nil
}

// UpdateListing changes the price of an existing listing. Authorization is
// checked against the recorded seller, not the live asset owner; a sentinel
// listing's zero-address seller can never match the caller, so updating an
// absent listing fails the same way as updating someone else's.
func (s *Service) UpdateListing(ctx context.Context, input UpdateListingInput) (domain.Listing, error) {
	updated := domain.Listing{
		AssetContract: input.AssetContract,
		TokenID:       input.TokenID,
		Price:         input.NewPrice,
		Seller:        input.Caller,
	}
	err := s.Store.Atomic(ctx, func(tx domain.MarketTx) error {
		listing, err := tx.GetListing(ctx, input.AssetContract, input.TokenID)
		if err != nil {
			return fmt.Errorf("failed to read listing: %w", err)
		}
		if listing.Seller != input.Caller {
			return &domain.NotAnOwnerError{
				AssetContract: input.AssetContract,
				TokenID:       input.TokenID,
			}
		}
		if !input.NewPrice.GreaterThan(decimal.Zero) {
			return domain.ErrPriceMustBeAboveZero
		}
		return tx.SetListing(ctx, updated)
	})
	if err != nil {
		return domain.Listing{}, err
	}

	// A listing update shares the listed-event shape.
	s.Events.Publish(domain.NewItemListedEvent(updated))
	return updated, nil
}

// CancelListing removes the caller's listing, resetting it to the sentinel
// record. Only the recorded seller may cancel.
func (s *Service) CancelListing(ctx context.Context, contract domain.Address, tokenID string, caller domain.Address) error {
	err := s.Store.Atomic(ctx, func(tx domain.MarketTx) error {
		listing, err := tx.GetListing(ctx, contract, tokenID)
		if err != nil {
			return fmt.Errorf("failed to read listing: %w", err)
		}
		if listing.Seller != caller {
			return &domain.NotAnOwnerError{AssetContract: contract, TokenID: tokenID}
		}
		return tx.ClearListing(ctx, contract, tokenID)
	})
	if err != nil {
		return err
	}

	s.Events.Publish(domain.NewItemCanceledEvent(contract, tokenID, caller))
	return nil
}

// WithdrawProceeds pays out the caller's full accumulated balance. The
// balance is zeroed before the external value transfer is invoked, inside
// the same unit of work, so a failed transfer rolls the zeroing back and the
// ledger is never left zeroed with the funds unsent.
func (s *Service) WithdrawProceeds(ctx context.Context, caller domain.Address) (decimal.Decimal, error) {
	var amount decimal.Decimal
	err := s.Store.Atomic(ctx, func(tx domain.MarketTx) error {
		balance, err := tx.Proceeds(ctx, caller)
		if err != nil {
			return fmt.Errorf("failed to read proceeds balance: %w", err)
		}
		if !balance.GreaterThan(decimal.Zero) {
			return domain.ErrNoProceeds
		}

		if err := tx.ZeroProceeds(ctx, caller); err != nil {
			return fmt.Errorf("failed to zero proceeds balance: %w", err)
		}

		if err := s.Payments.Send(ctx, caller, balance); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrTransferFailed, err)
		}

		amount = balance
		return nil
	})
	if err != nil {
		return decimal.Zero, err
	}
	return amount, nil
}

// GetListing returns the listing for the asset unit, or the sentinel zero
// record when absent. Pure read, never fails on absence.
func (s *Service) GetListing(ctx context.Context, contract domain.Address, tokenID string) (domain.Listing, error) {
	return s.Store.GetListing(ctx, contract, tokenID)
}

// GetProceeds returns the address's withdrawable balance, zero when never
// credited. Pure read, never fails on absence.
func (s *Service) GetProceeds(ctx context.Context, owner domain.Address) (decimal.Decimal, error) {
	return s.Store.Proceeds(ctx, owner)
}

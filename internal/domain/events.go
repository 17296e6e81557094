package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EventType identifies a marketplace lifecycle notification.
type EventType string

const (
	EventItemListed   EventType = "ITEM_LISTED"
	EventItemBought   EventType = "ITEM_BOUGHT"
	EventItemCanceled EventType = "ITEM_CANCELED"
)

// MarketEvent is the notification emitted after each mutating lifecycle
// operation, consumed by external indexers and UIs. Listed and canceled
// events carry the seller; bought events carry the buyer. Price is zero for
// cancellations.
type MarketEvent struct {
	ID            uuid.UUID       `json:"id"`
	Type          EventType       `json:"type"`
	AssetContract Address         `json:"asset_contract"`
	TokenID       string          `json:"token_id"`
	Price         decimal.Decimal `json:"price"`
	Seller        Address         `json:"seller,omitempty"`
	Buyer         Address         `json:"buyer,omitempty"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

// NewItemListedEvent builds the notification for a created or updated
// listing; both share the same shape.
func NewItemListedEvent(l Listing) MarketEvent {
	return MarketEvent{
		ID:            uuid.New(),
		Type:          EventItemListed,
		AssetContract: l.AssetContract,
		TokenID:       l.TokenID,
		Price:         l.Price,
		Seller:        l.Seller,
		OccurredAt:    time.Now().UTC(),
	}
}

// NewItemBoughtEvent builds the notification for a completed purchase.
func NewItemBoughtEvent(l Listing, buyer Address) MarketEvent {
	return MarketEvent{
		ID:            uuid.New(),
		Type:          EventItemBought,
		AssetContract: l.AssetContract,
		TokenID:       l.TokenID,
		Price:         l.Price,
		Buyer:         buyer,
		OccurredAt:    time.Now().UTC(),
	}
}

// NewItemCanceledEvent builds the notification for a canceled listing.
func NewItemCanceledEvent(contract Address, tokenID string, seller Address) MarketEvent {
	return MarketEvent{
		ID:            uuid.New(),
		Type:          EventItemCanceled,
		AssetContract: contract,
		TokenID:       tokenID,
		Price:         decimal.Zero,
		Seller:        seller,
		OccurredAt:    time.Now().UTC(),
	}
}

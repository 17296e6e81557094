package memory

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/tokenbay/marketplace-backend/internal/domain"
)

type listingKey struct {
	contract domain.Address
	tokenID  string
}

// Store is the in-memory MarketStore. A single mutex serializes every unit
// of work, so no two operations observe or mutate overlapping state
// concurrently. Mutations are staged in an overlay and applied only when the
// Atomic callback succeeds.
type Store struct {
	mu       sync.Mutex
	listings map[listingKey]domain.Listing
	proceeds map[domain.Address]decimal.Decimal
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		listings: make(map[listingKey]domain.Listing),
		proceeds: make(map[domain.Address]decimal.Decimal),
	}
}

// Atomic runs fn under the store lock with all writes staged in an overlay.
// The overlay is applied to the base maps only when fn returns nil; an error
// discards every staged mutation.
func (s *Store) Atomic(ctx context.Context, fn func(tx domain.MarketTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memTx{
		store:    s,
		listings: make(map[listingKey]*domain.Listing),
		proceeds: make(map[domain.Address]decimal.Decimal),
	}
	if err := fn(tx); err != nil {
		return err
	}
	tx.apply()
	return nil
}

// GetListing returns the stored listing, or the sentinel record when absent.
func (s *Store) GetListing(ctx context.Context, contract domain.Address, tokenID string) (domain.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.listings[listingKey{contract, tokenID}]; ok {
		return l, nil
	}
	return domain.SentinelListing(contract, tokenID), nil
}

// Proceeds returns the owner's balance, zero when never credited.
func (s *Store) Proceeds(ctx context.Context, owner domain.Address) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if amount, ok := s.proceeds[owner]; ok {
		return amount, nil
	}
	return decimal.Zero, nil
}

// memTx stages mutations on top of the base maps. A nil listing pointer in
// the overlay marks a cleared entry.
type memTx struct {
	store    *Store
	listings map[listingKey]*domain.Listing
	proceeds map[domain.Address]decimal.Decimal
}

func (t *memTx) GetListing(ctx context.Context, contract domain.Address, tokenID string) (domain.Listing, error) {
	key := listingKey{contract, tokenID}
	if staged, ok := t.listings[key]; ok {
		if staged == nil {
			return domain.SentinelListing(contract, tokenID), nil
		}
		return *staged, nil
	}
	if l, ok := t.store.listings[key]; ok {
		return l, nil
	}
	return domain.SentinelListing(contract, tokenID), nil
}

func (t *memTx) SetListing(ctx context.Context, l domain.Listing) error {
	if err := l.Validate(); err != nil {
		return err
	}
	staged := l
	t.listings[listingKey{l.AssetContract, l.TokenID}] = &staged
	return nil
}

func (t *memTx) ClearListing(ctx context.Context, contract domain.Address, tokenID string) error {
	t.listings[listingKey{contract, tokenID}] = nil
	return nil
}

func (t *memTx) Proceeds(ctx context.Context, owner domain.Address) (decimal.Decimal, error) {
	if amount, ok := t.proceeds[owner]; ok {
		return amount, nil
	}
	if amount, ok := t.store.proceeds[owner]; ok {
		return amount, nil
	}
	return decimal.Zero, nil
}

func (t *memTx) CreditProceeds(ctx context.Context, owner domain.Address, amount decimal.Decimal) error {
	current, err := t.Proceeds(ctx, owner)
	if err != nil {
		return err
	}
	t.proceeds[owner] = current.Add(amount)
	return nil
}

func (t *memTx) ZeroProceeds(ctx context.Context, owner domain.Address) error {
	t.proceeds[owner] = decimal.Zero
	return nil
}

// apply writes the overlay back to the base maps. Cleared listings are truly
// removed; the price-above-zero predicate stays the listed test either way.
func (t *memTx) apply() {
	for key, staged := range t.listings {
		if staged == nil {
			delete(t.store.listings, key)
			continue
		}
		t.store.listings[key] = *staged
	}
	for owner, amount := range t.proceeds {
		t.store.proceeds[owner] = amount
	}
}

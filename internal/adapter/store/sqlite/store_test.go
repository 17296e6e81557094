package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tokenbay/marketplace-backend/internal/domain"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "market.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	listing := domain.Listing{
		AssetContract: "0xabc",
		TokenID:       "1",
		Price:         decimal.RequireFromString("0.000000000000000123"),
		Seller:        "0xseller",
	}

	require.NoError(t, store.Atomic(ctx, func(tx domain.MarketTx) error {
		return tx.SetListing(ctx, listing)
	}))

	got, err := store.GetListing(ctx, "0xabc", "1")
	require.NoError(t, err)
	// TEXT storage keeps the decimal exact.
	assert.True(t, got.Price.Equal(listing.Price))
	assert.Equal(t, listing.Seller, got.Seller)
}

func TestSQLiteAbsentReturnsSentinel(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	got, err := store.GetListing(ctx, "0xabc", "404")
	require.NoError(t, err)
	assert.False(t, got.IsListed())
	assert.Equal(t, domain.ZeroAddress, got.Seller)

	balance, err := store.Proceeds(ctx, "0xnobody")
	require.NoError(t, err)
	assert.True(t, balance.IsZero())
}

func TestSQLiteOverwriteAndClear(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	first := domain.Listing{AssetContract: "0xabc", TokenID: "1", Price: decimal.NewFromInt(100), Seller: "0xseller"}
	second := first
	second.Price = decimal.NewFromInt(250)

	require.NoError(t, store.Atomic(ctx, func(tx domain.MarketTx) error {
		return tx.SetListing(ctx, first)
	}))
	require.NoError(t, store.Atomic(ctx, func(tx domain.MarketTx) error {
		return tx.SetListing(ctx, second)
	}))

	got, err := store.GetListing(ctx, "0xabc", "1")
	require.NoError(t, err)
	assert.True(t, got.Price.Equal(second.Price))

	require.NoError(t, store.Atomic(ctx, func(tx domain.MarketTx) error {
		return tx.ClearListing(ctx, "0xabc", "1")
	}))

	got, err = store.GetListing(ctx, "0xabc", "1")
	require.NoError(t, err)
	assert.False(t, got.IsListed())
}

func TestSQLiteAtomicRollback(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	require.NoError(t, store.Atomic(ctx, func(tx domain.MarketTx) error {
		return tx.CreditProceeds(ctx, "0xseller", decimal.NewFromInt(100))
	}))

	err := store.Atomic(ctx, func(tx domain.MarketTx) error {
		if err := tx.ZeroProceeds(ctx, "0xseller"); err != nil {
			return err
		}
		return errors.New("send failed")
	})
	require.Error(t, err)

	balance, err := store.Proceeds(ctx, "0xseller")
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(100)))
}

func TestSQLiteCreditAccumulates(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	require.NoError(t, store.Atomic(ctx, func(tx domain.MarketTx) error {
		if err := tx.CreditProceeds(ctx, "0xseller", decimal.NewFromInt(100)); err != nil {
			return err
		}
		return tx.CreditProceeds(ctx, "0xseller", decimal.RequireFromString("0.5"))
	}))

	balance, err := store.Proceeds(ctx, "0xseller")
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.RequireFromString("100.5")))
}

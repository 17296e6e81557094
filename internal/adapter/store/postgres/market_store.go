package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/tokenbay/marketplace-backend/internal/domain"
)

// marketStore implements domain.MarketStore on PostgreSQL. Atomic units of
// work map to SQL transactions at the serializable isolation level, so the
// all-or-nothing and no-interleaving guarantees come from the database.
type marketStore struct {
	db *DB
}

// NewMarketStore creates a new PostgreSQL-backed market store.
func NewMarketStore(db *DB) domain.MarketStore {
	return &marketStore{db: db}
}

// Atomic runs fn inside one SQL transaction. Staged mutations are committed
// only when fn returns nil; any error rolls the transaction back.
func (s *marketStore) Atomic(ctx context.Context, fn func(tx domain.MarketTx) error) error {
	sqlTx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(&marketTx{tx: sqlTx}); err != nil {
		if rbErr := sqlTx.Rollback(); rbErr != nil {
			return errors.Join(err, fmt.Errorf("failed to roll back transaction: %w", rbErr))
		}
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetListing retrieves a listing outside any unit of work.
func (s *marketStore) GetListing(ctx context.Context, contract domain.Address, tokenID string) (domain.Listing, error) {
	return getListing(ctx, s.db, contract, tokenID)
}

// Proceeds retrieves a balance outside any unit of work.
func (s *marketStore) Proceeds(ctx context.Context, owner domain.Address) (decimal.Decimal, error) {
	return getProceeds(ctx, s.db, owner)
}

// marketTx implements domain.MarketTx on a live SQL transaction.
type marketTx struct {
	tx *sql.Tx
}

func (t *marketTx) GetListing(ctx context.Context, contract domain.Address, tokenID string) (domain.Listing, error) {
	return getListing(ctx, t.tx, contract, tokenID)
}

func (t *marketTx) SetListing(ctx context.Context, l domain.Listing) error {
	if err := l.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO listings (asset_contract, token_id, price, seller)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (asset_contract, token_id)
		DO UPDATE SET price = EXCLUDED.price, seller = EXCLUDED.seller
	`

	_, err := t.tx.ExecContext(ctx, query,
		string(l.AssetContract),
		l.TokenID,
		l.Price.String(),
		string(l.Seller),
	)
	if err != nil {
		return fmt.Errorf("failed to set listing: %w", err)
	}
	return nil
}

func (t *marketTx) ClearListing(ctx context.Context, contract domain.Address, tokenID string) error {
	query := `DELETE FROM listings WHERE asset_contract = $1 AND token_id = $2`

	_, err := t.tx.ExecContext(ctx, query, string(contract), tokenID)
	if err != nil {
		return fmt.Errorf("failed to clear listing: %w", err)
	}
	return nil
}

func (t *marketTx) Proceeds(ctx context.Context, owner domain.Address) (decimal.Decimal, error) {
	return getProceeds(ctx, t.tx, owner)
}

func (t *marketTx) CreditProceeds(ctx context.Context, owner domain.Address, amount decimal.Decimal) error {
	current, err := getProceeds(ctx, t.tx, owner)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO proceeds (owner, amount)
		VALUES ($1, $2)
		ON CONFLICT (owner)
		DO UPDATE SET amount = EXCLUDED.amount
	`

	_, err = t.tx.ExecContext(ctx, query, string(owner), current.Add(amount).String())
	if err != nil {
		return fmt.Errorf("failed to credit proceeds: %w", err)
	}
	return nil
}

func (t *marketTx) ZeroProceeds(ctx context.Context, owner domain.Address) error {
	query := `UPDATE proceeds SET amount = 0 WHERE owner = $1`

	_, err := t.tx.ExecContext(ctx, query, string(owner))
	if err != nil {
		return fmt.Errorf("failed to zero proceeds: %w", err)
	}
	return nil
}

// querier is the subset of database/sql shared by *sql.DB and *sql.Tx.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getListing(ctx context.Context, q querier, contract domain.Address, tokenID string) (domain.Listing, error) {
	query := `
		SELECT price, seller
		FROM listings
		WHERE asset_contract = $1 AND token_id = $2
	`

	var priceStr string
	var seller string

	err := q.QueryRowContext(ctx, query, string(contract), tokenID).Scan(&priceStr, &seller)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.SentinelListing(contract, tokenID), nil
		}
		return domain.Listing{}, fmt.Errorf("failed to get listing: %w", err)
	}

	price, err := decimal.NewFromString(priceStr)
	if err != nil {
		return domain.Listing{}, fmt.Errorf("failed to parse listing price: %w", err)
	}

	return domain.Listing{
		AssetContract: contract,
		TokenID:       tokenID,
		Price:         price,
		Seller:        domain.Address(seller),
	}, nil
}

func getProceeds(ctx context.Context, q querier, owner domain.Address) (decimal.Decimal, error) {
	query := `SELECT amount FROM proceeds WHERE owner = $1`

	var amountStr string
	err := q.QueryRowContext(ctx, query, string(owner)).Scan(&amountStr)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, nil
		}
		return decimal.Zero, fmt.Errorf("failed to get proceeds: %w", err)
	}

	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse proceeds amount: %w", err)
	}
	return amount, nil
}

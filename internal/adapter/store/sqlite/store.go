package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/glebarez/go-sqlite"
	"github.com/shopspring/decimal"
	"github.com/tokenbay/marketplace-backend/internal/domain"
)

// Store implements domain.MarketStore on an embedded SQLite database, for
// single-node deployments that want durability without a PostgreSQL server.
// Amounts are stored as TEXT so decimal values round-trip exactly.
type Store struct {
	db *sql.DB
}

// Open creates a SQLite-backed market store at dbPath with WAL mode enabled.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return nil, fmt.Errorf("failed to set pragma %s: %w", pragma, err)
		}
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS listings (
			asset_contract TEXT NOT NULL,
			token_id TEXT NOT NULL,
			price TEXT NOT NULL,
			seller TEXT NOT NULL,
			PRIMARY KEY (asset_contract, token_id)
		);
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create listings table: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS proceeds (
			owner TEXT PRIMARY KEY,
			amount TEXT NOT NULL
		);
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create proceeds table: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Atomic runs fn inside one SQLite transaction, committing only when fn
// returns nil.
func (s *Store) Atomic(ctx context.Context, fn func(tx domain.MarketTx) error) error {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(&storeTx{tx: sqlTx}); err != nil {
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
func (s *Store) GetListing(ctx context.Context, contract domain.Address, tokenID string) (domain.Listing, error) {
	return getListing(ctx, s.db, contract, tokenID)
}

// Proceeds retrieves a balance outside any unit of work.
func (s *Store) Proceeds(ctx context.Context, owner domain.Address) (decimal.Decimal, error) {
	return getProceeds(ctx, s.db, owner)
}

type storeTx struct {
	tx *sql.Tx
}

func (t *storeTx) GetListing(ctx context.Context, contract domain.Address, tokenID string) (domain.Listing, error) {
	return getListing(ctx, t.tx, contract, tokenID)
}

func (t *storeTx) SetListing(ctx context.Context, l domain.Listing) error {
	if err := l.Validate(); err != nil {
		return err
	}

	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO listings (asset_contract, token_id, price, seller)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (asset_contract, token_id)
		DO UPDATE SET price = excluded.price, seller = excluded.seller
	`, string(l.AssetContract), l.TokenID, l.Price.String(), string(l.Seller))
	if err != nil {
		return fmt.Errorf("failed to set listing: %w", err)
	}
	return nil
}

func (t *storeTx) ClearListing(ctx context.Context, contract domain.Address, tokenID string) error {
	_, err := t.tx.ExecContext(ctx,
		"DELETE FROM listings WHERE asset_contract = ? AND token_id = ?",
		string(contract), tokenID)
	if err != nil {
		return fmt.Errorf("failed to clear listing: %w", err)
	}
	return nil
}

func (t *storeTx) Proceeds(ctx context.Context, owner domain.Address) (decimal.Decimal, error) {
	return getProceeds(ctx, t.tx, owner)
}

func (t *storeTx) CreditProceeds(ctx context.Context, owner domain.Address, amount decimal.Decimal) error {
	current, err := getProceeds(ctx, t.tx, owner)
	if err != nil {
		return err
	}

	_, err = t.tx.ExecContext(ctx, `
		INSERT INTO proceeds (owner, amount)
		VALUES (?, ?)
		ON CONFLICT (owner)
		DO UPDATE SET amount = excluded.amount
	`, string(owner), current.Add(amount).String())
	if err != nil {
		return fmt.Errorf("failed to credit proceeds: %w", err)
	}
	return nil
}

func (t *storeTx) ZeroProceeds(ctx context.Context, owner domain.Address) error {
	_, err := t.tx.ExecContext(ctx,
		"UPDATE proceeds SET amount = '0' WHERE owner = ?",
		string(owner))
	if err != nil {
		return fmt.Errorf("failed to zero proceeds: %w", err)
	}
	return nil
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getListing(ctx context.Context, q querier, contract domain.Address, tokenID string) (domain.Listing, error) {
	var priceStr string
	var seller string

	err := q.QueryRowContext(ctx,
		"SELECT price, seller FROM listings WHERE asset_contract = ? AND token_id = ?",
		string(contract), tokenID).Scan(&priceStr, &seller)
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
	var amountStr string
	err := q.QueryRowContext(ctx,
		"SELECT amount FROM proceeds WHERE owner = ?",
		string(owner)).Scan(&amountStr)
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

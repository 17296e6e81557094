// Package payment provides an in-process value-transfer collaborator backed
// by a simple account ledger.
package payment

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/tokenbay/marketplace-backend/internal/domain"
)

// Ledger implements domain.PaymentGateway. Recipients can be marked as
// rejecting so a failed transfer and the resulting rollback are exercisable
// without a real payment network.
type Ledger struct {
	mu       sync.Mutex
	balances map[domain.Address]decimal.Decimal
	rejected map[domain.Address]bool
}

// NewLedger creates an empty payment ledger.
func NewLedger() *Ledger {
	return &Ledger{
		balances: make(map[domain.Address]decimal.Decimal),
		rejected: make(map[domain.Address]bool),
	}
}

// Send credits amount to the recipient's account. It fails when the
// recipient is marked as rejecting transfers.
func (l *Ledger) Send(ctx context.Context, to domain.Address, amount decimal.Decimal) error {
	if to.IsZero() {
		return fmt.Errorf("cannot send to the zero address")
	}
	if !amount.GreaterThan(decimal.Zero) {
		return fmt.Errorf("send amount must be positive, got %s", amount)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.rejected[to] {
		return fmt.Errorf("recipient %s rejected the transfer", to)
	}
	l.balances[to] = l.balances[to].Add(amount)
	return nil
}

// Reject marks an address as refusing incoming transfers.
func (l *Ledger) Reject(addr domain.Address) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rejected[addr] = true
}

// BalanceOf returns the amount delivered to addr so far.
func (l *Ledger) BalanceOf(addr domain.Address) decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[addr]
}

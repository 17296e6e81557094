// Package custody provides an in-process asset registry implementing the
// ownership and approval collaborator. It mirrors the semantics of a
// non-fungible token contract: one owner per asset unit, a per-token
// approved spender that resets on transfer, and blanket operator approvals
// granted per owner.
package custody

import (
	"context"
	"fmt"
	"sync"

	"github.com/tokenbay/marketplace-backend/internal/domain"
)

type assetKey struct {
	contract domain.Address
	tokenID  string
}

type operatorKey struct {
	contract domain.Address
	owner    domain.Address
	operator domain.Address
}

// Registry is the in-memory AssetRegistry implementation.
type Registry struct {
	mu        sync.RWMutex
	owners    map[assetKey]domain.Address
	approvals map[assetKey]domain.Address
	operators map[operatorKey]bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		owners:    make(map[assetKey]domain.Address),
		approvals: make(map[assetKey]domain.Address),
		operators: make(map[operatorKey]bool),
	}
}

// Mint records a new asset unit owned by owner. Minting an existing unit
// fails.
func (r *Registry) Mint(ctx context.Context, contract domain.Address, tokenID string, owner domain.Address) error {
	if owner.IsZero() {
		return fmt.Errorf("cannot mint token %s to the zero address", tokenID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := assetKey{contract, tokenID}
	if _, exists := r.owners[key]; exists {
		return fmt.Errorf("token %s in contract %s already exists", tokenID, contract)
	}
	r.owners[key] = owner
	return nil
}

// OwnerOf returns the current owner of the asset unit.
func (r *Registry) OwnerOf(ctx context.Context, contract domain.Address, tokenID string) (domain.Address, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	owner, ok := r.owners[assetKey{contract, tokenID}]
	if !ok {
		return domain.ZeroAddress, fmt.Errorf("token %s in contract %s does not exist", tokenID, contract)
	}
	return owner, nil
}

// Approve grants spender transfer approval for one asset unit. Only the
// current owner may approve; approving the zero address revokes.
func (r *Registry) Approve(ctx context.Context, contract domain.Address, tokenID string, caller, spender domain.Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := assetKey{contract, tokenID}
	owner, ok := r.owners[key]
	if !ok {
		return fmt.Errorf("token %s in contract %s does not exist", tokenID, contract)
	}
	if owner != caller {
		return fmt.Errorf("only the owner may approve token %s", tokenID)
	}

	if spender.IsZero() {
		delete(r.approvals, key)
		return nil
	}
	r.approvals[key] = spender
	return nil
}

// SetApprovalForAll grants or revokes operator's blanket approval over all
// of owner's assets in the contract.
func (r *Registry) SetApprovalForAll(ctx context.Context, contract domain.Address, owner, operator domain.Address, approved bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := operatorKey{contract, owner, operator}
	if approved {
		r.operators[key] = true
		return nil
	}
	delete(r.operators, key)
	return nil
}

// IsApprovedOrOperator reports whether spender holds direct approval for the
// asset unit or blanket operator approval from its owner.
func (r *Registry) IsApprovedOrOperator(ctx context.Context, contract domain.Address, tokenID string, spender domain.Address) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	key := assetKey{contract, tokenID}
	owner, ok := r.owners[key]
	if !ok {
		return false, fmt.Errorf("token %s in contract %s does not exist", tokenID, contract)
	}
	if r.approvals[key] == spender {
		return true, nil
	}
	return r.operators[operatorKey{contract, owner, spender}], nil
}

// TransferFrom moves the asset unit from its current owner to the recipient.
// It fails if from is not the current owner at execution time. Any per-token
// approval is cleared by the transfer.
func (r *Registry) TransferFrom(ctx context.Context, contract domain.Address, tokenID string, from, to domain.Address) error {
	if to.IsZero() {
		return fmt.Errorf("cannot transfer token %s to the zero address", tokenID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := assetKey{contract, tokenID}
	owner, ok := r.owners[key]
	if !ok {
		return fmt.Errorf("token %s in contract %s does not exist", tokenID, contract)
	}
	if owner != from {
		return fmt.Errorf("transfer rejected: %s is not the owner of token %s", from, tokenID)
	}

	r.owners[key] = to
	delete(r.approvals, key)
	return nil
}

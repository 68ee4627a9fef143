// Package repository declares the storage interfaces the service layer
// programs against. The concrete SQLite implementation lives in
// repository/sqlite; tests substitute in-memory fakes.
package repository

import (
	"context"

	"github.com/sakif/codevault/internal/model"
)

// AccountRepository stores local accounts.
type AccountRepository interface {
	// Create inserts a new account. A second account with the same upstream
	// identity violates a uniqueness constraint and returns an error matching
	// apperror.ErrConflict — callers treat that as a benign race and re-fetch.
	Create(ctx context.Context, account *model.Account) error

	// GetByID returns the account with the given service-generated ID, or an
	// error matching apperror.ErrNotFound.
	GetByID(ctx context.Context, id string) (*model.Account, error)

	// GetByUpstreamID returns the account bound to an upstream identity, or
	// an error matching apperror.ErrNotFound.
	GetByUpstreamID(ctx context.Context, upstreamID string) (*model.Account, error)

	// Delete removes the account and, in the same transaction, every code it
	// owns.
	Delete(ctx context.Context, id string) error
}

// CodeRepository stores user-owned codes. Every method that touches a single
// code takes both the code ID and the owner ID; a mismatch on either behaves
// exactly like the code not existing.
type CodeRepository interface {
	Create(ctx context.Context, code *model.Code) error
	GetByID(ctx context.Context, id, ownerID string) (*model.Code, error)
	ListByOwner(ctx context.Context, ownerID string) ([]model.Code, error)

	// Update rewrites the mutable fields of a code, scoped by ID and OwnerID.
	Update(ctx context.Context, code *model.Code) error

	Delete(ctx context.Context, id, ownerID string) error
}

package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sakif/codevault/internal/apperror"
	"github.com/sakif/codevault/internal/model"
	"github.com/sakif/codevault/internal/repository"
)

// AccountStore implements repository.AccountRepository on the shared pool.
type AccountStore struct {
	db *DB
}

// Accounts returns the account repository view of the database.
func (db *DB) Accounts() *AccountStore {
	return &AccountStore{db: db}
}

// compile-time check that *AccountStore implements repository.AccountRepository
var _ repository.AccountRepository = (*AccountStore)(nil)

// Create inserts a new account. The UNIQUE constraint on upstream_id rejects
// a concurrent insert for the same upstream identity; that case surfaces as
// apperror.ErrConflict so the resolver can re-fetch the winner's row.
func (s *AccountStore) Create(ctx context.Context, account *model.Account) error {
	_, err := s.db.conn.ExecContext(ctx,
		`INSERT INTO accounts (id, username, display_name, avatar_url, upstream_id)
		 VALUES (?, ?, ?, ?, ?)`,
		account.ID,
		account.Username,
		account.DisplayName,
		account.AvatarURL,
		account.UpstreamID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict(err)
		}
		return fmt.Errorf("sqlite: inserting account (upstream=%s): %w", account.UpstreamID, err)
	}

	return nil
}

// GetByID retrieves an account by its service-generated identifier.
func (s *AccountStore) GetByID(ctx context.Context, id string) (*model.Account, error) {
	return s.get(ctx,
		`SELECT id, username, display_name, avatar_url, upstream_id
		 FROM accounts WHERE id = ?`, id)
}

// GetByUpstreamID retrieves an account by the identity provider's subject.
func (s *AccountStore) GetByUpstreamID(ctx context.Context, upstreamID string) (*model.Account, error) {
	return s.get(ctx,
		`SELECT id, username, display_name, avatar_url, upstream_id
		 FROM accounts WHERE upstream_id = ?`, upstreamID)
}

func (s *AccountStore) get(ctx context.Context, query, arg string) (*model.Account, error) {
	var a model.Account

	err := s.db.conn.QueryRowContext(ctx, query, arg).Scan(
		&a.ID,
		&a.Username,
		&a.DisplayName,
		&a.AvatarURL,
		&a.UpstreamID,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound()
		}
		return nil, fmt.Errorf("sqlite: getting account: %w", err)
	}

	return &a, nil
}

// Delete removes an account and all of its codes in one transaction, so a
// crash mid-delete can never strand codes without an owner. The FK cascade
// would also remove the codes; the explicit DELETE keeps the intent visible
// in the query log.
func (s *AccountStore) Delete(ctx context.Context, id string) error {
	tx, err := s.db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning delete transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM codes WHERE owner_id = ?`, id); err != nil {
		return fmt.Errorf("sqlite: deleting codes for account %s: %w", id, err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting account %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound()
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing delete: %w", err)
	}

	return nil
}

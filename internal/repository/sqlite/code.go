package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sakif/codevault/internal/apperror"
	"github.com/sakif/codevault/internal/model"
	"github.com/sakif/codevault/internal/repository"
)

// CodeStore implements repository.CodeRepository on the shared pool.
type CodeStore struct {
	db *DB
}

// Codes returns the code repository view of the database.
func (db *DB) Codes() *CodeStore {
	return &CodeStore{db: db}
}

// compile-time check that *CodeStore implements repository.CodeRepository
var _ repository.CodeRepository = (*CodeStore)(nil)

// Create inserts a new code. The caller assigns the ID and OwnerID.
func (s *CodeStore) Create(ctx context.Context, code *model.Code) error {
	_, err := s.db.conn.ExecContext(ctx,
		`INSERT INTO codes (id, owner_id, content, display_name, icon_url, website_url)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		code.ID,
		code.OwnerID,
		code.Content,
		code.DisplayName,
		code.IconURL,
		code.WebsiteURL,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting code: %w", err)
	}

	return nil
}

// GetByID fetches a single code, scoped by owner. A code that exists but
// belongs to someone else comes back as NotFound — existence of other users'
// records is never revealed.
func (s *CodeStore) GetByID(ctx context.Context, id, ownerID string) (*model.Code, error) {
	var c model.Code

	err := s.db.conn.QueryRowContext(ctx,
		`SELECT id, owner_id, content, display_name, icon_url, website_url
		 FROM codes
		 WHERE id = ? AND owner_id = ?`,
		id, ownerID,
	).Scan(
		&c.ID,
		&c.OwnerID,
		&c.Content,
		&c.DisplayName,
		&c.IconURL,
		&c.WebsiteURL,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound()
		}
		return nil, fmt.Errorf("sqlite: getting code %s: %w", id, err)
	}

	return &c, nil
}

// ListByOwner returns every code owned by ownerID, ordered by ID so listings
// and checksums are deterministic across requests.
func (s *CodeStore) ListByOwner(ctx context.Context, ownerID string) ([]model.Code, error) {
	rows, err := s.db.conn.QueryContext(ctx,
		`SELECT id, owner_id, content, display_name, icon_url, website_url
		 FROM codes
		 WHERE owner_id = ?
		 ORDER BY id`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing codes: %w", err)
	}
	defer rows.Close()

	codes := make([]model.Code, 0, 16)
	for rows.Next() {
		var c model.Code
		if err := rows.Scan(
			&c.ID, &c.OwnerID, &c.Content, &c.DisplayName,
			&c.IconURL, &c.WebsiteURL,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning code row: %w", err)
		}
		codes = append(codes, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating codes: %w", err)
	}

	return codes, nil
}

// Update rewrites the mutable fields of a code, scoped by ID AND OwnerID.
// Zero rows affected means not-found-or-not-owned.
func (s *CodeStore) Update(ctx context.Context, code *model.Code) error {
	result, err := s.db.conn.ExecContext(ctx,
		`UPDATE codes
		 SET content = ?, display_name = ?, icon_url = ?, website_url = ?
		 WHERE id = ? AND owner_id = ?`,
		code.Content,
		code.DisplayName,
		code.IconURL,
		code.WebsiteURL,
		code.ID,
		code.OwnerID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating code %s: %w", code.ID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound()
	}

	return nil
}

// Delete removes a code, scoped by ID AND OwnerID.
func (s *CodeStore) Delete(ctx context.Context, id, ownerID string) error {
	result, err := s.db.conn.ExecContext(ctx,
		`DELETE FROM codes WHERE id = ? AND owner_id = ?`,
		id, ownerID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting code %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound()
	}

	return nil
}

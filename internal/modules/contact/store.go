// README: Contact store backed by PostgreSQL.
package contact

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tripmate/internal/types"
)

type PGStore struct {
	db *pgxpool.Pool
}

func NewPGStore(db *pgxpool.Pool) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) Create(ctx context.Context, c *Contact) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO contacts (id, owner_id, name, phone, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		string(c.ID), string(c.OwnerID), c.Name, c.Phone, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("contact: create: %w", err)
	}
	return nil
}

func (s *PGStore) Get(ctx context.Context, id types.ID) (*Contact, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, owner_id, name, phone, created_at FROM contacts WHERE id = $1`,
		string(id),
	)
	var c Contact
	err := row.Scan(&c.ID, &c.OwnerID, &c.Name, &c.Phone, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("contact: get: %w", err)
	}
	return &c, nil
}

func (s *PGStore) ListByOwner(ctx context.Context, ownerID types.ID) ([]Contact, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, owner_id, name, phone, created_at
		FROM contacts
		WHERE owner_id = $1
		ORDER BY created_at`,
		string(ownerID),
	)
	if err != nil {
		return nil, fmt.Errorf("contact: list: %w", err)
	}
	defer rows.Close()

	var out []Contact
	for rows.Next() {
		var c Contact
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.Name, &c.Phone, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *PGStore) Delete(ctx context.Context, id types.ID) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM contacts WHERE id = $1`, string(id))
	if err != nil {
		return fmt.Errorf("contact: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

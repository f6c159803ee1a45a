// README: Group store backed by PostgreSQL.
package group

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

func (s *PGStore) Create(ctx context.Context, g *Group, members []Member) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("group: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO groups (id, name, creator_id, created_at)
		VALUES ($1, $2, $3, $4)`,
		string(g.ID), g.Name, string(g.CreatorID), g.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("group: create: %w", err)
	}
	for _, m := range members {
		if _, err := tx.Exec(ctx, `
			INSERT INTO group_members (group_id, user_id, joined_at)
			VALUES ($1, $2, $3)
			ON CONFLICT DO NOTHING`,
			string(m.GroupID), string(m.UserID), m.JoinedAt,
		); err != nil {
			return fmt.Errorf("group: add member: %w", err)
		}
	}
	return tx.Commit(ctx)
}

func (s *PGStore) Get(ctx context.Context, id types.ID) (*Group, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, name, creator_id, created_at FROM groups WHERE id = $1`,
		string(id),
	)
	var g Group
	err := row.Scan(&g.ID, &g.Name, &g.CreatorID, &g.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("group: get: %w", err)
	}
	return &g, nil
}

func (s *PGStore) AddMember(ctx context.Context, m Member) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO group_members (group_id, user_id, joined_at)
		VALUES ($1, $2, $3)
		ON CONFLICT DO NOTHING`,
		string(m.GroupID), string(m.UserID), m.JoinedAt,
	)
	if err != nil {
		return fmt.Errorf("group: add member: %w", err)
	}
	return nil
}

func (s *PGStore) IsMember(ctx context.Context, groupID, userID types.ID) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM group_members WHERE group_id = $1 AND user_id = $2
		)`,
		string(groupID), string(userID),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("group: is member: %w", err)
	}
	return exists, nil
}

func (s *PGStore) ListMembers(ctx context.Context, groupID types.ID) ([]Member, error) {
	rows, err := s.db.Query(ctx, `
		SELECT group_id, user_id, joined_at
		FROM group_members
		WHERE group_id = $1
		ORDER BY joined_at`,
		string(groupID),
	)
	if err != nil {
		return nil, fmt.Errorf("group: list members: %w", err)
	}
	defer rows.Close()

	var out []Member
	for rows.Next() {
		var m Member
		if err := rows.Scan(&m.GroupID, &m.UserID, &m.JoinedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

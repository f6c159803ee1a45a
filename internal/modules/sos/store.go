// README: SOS alert store backed by PostgreSQL.
package sos

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"tripmate/internal/types"
)

type PGStore struct {
	db *pgxpool.Pool
}

func NewPGStore(db *pgxpool.Pool) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) Create(ctx context.Context, a *Alert) error {
	var lat, lng *float64
	if a.Position != nil {
		lat, lng = &a.Position.Lat, &a.Position.Lng
	}
	_, err := s.db.Exec(ctx, `
		INSERT INTO sos_alerts (id, user_id, message, lat, lng, success_count, failure_count, created_at)
		VALUES ($1, $2, $3, $4, $5, 0, 0, $6)`,
		string(a.ID), string(a.UserID), a.Message, lat, lng, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sos: create: %w", err)
	}
	return nil
}

func (s *PGStore) UpdateDelivery(ctx context.Context, id types.ID, success, failure int) error {
	_, err := s.db.Exec(ctx, `
		UPDATE sos_alerts SET success_count = $1, failure_count = $2 WHERE id = $3`,
		success, failure, string(id),
	)
	if err != nil {
		return fmt.Errorf("sos: update delivery: %w", err)
	}
	return nil
}

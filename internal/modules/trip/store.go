// README: Trip store backed by PostgreSQL.
package trip

import (
	"context"
	"encoding/json"
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

func (s *PGStore) Create(ctx context.Context, t *Trip) error {
	geom, err := marshalGeometry(t.Geometry)
	if err != nil {
		return err
	}
	var srcLat, srcLng, dstLat, dstLng *float64
	if t.Source != nil {
		srcLat, srcLng = &t.Source.Lat, &t.Source.Lng
	}
	if t.Destination != nil {
		dstLat, dstLng = &t.Destination.Lat, &t.Destination.Lng
	}
	_, err = s.db.Exec(ctx, `
		INSERT INTO trips (
			id, user_id, source_name, destination_name,
			source_lat, source_lng, dest_lat, dest_lng,
			travel_date, travel_time, mode, preference,
			status, geometry, match_radius_km, created_at
		) VALUES (
			$1, $2, $3, $4,
			$5, $6, $7, $8,
			$9, $10, $11, $12,
			$13, $14, $15, $16
		)`,
		string(t.ID), string(t.UserID), t.SourceName, t.DestinationName,
		srcLat, srcLng, dstLat, dstLng,
		t.TravelDate, t.TravelTime, string(t.Mode), string(t.Preference),
		string(t.Status), geom, t.MatchRadiusKm, t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("trip: create: %w", err)
	}
	return nil
}

const selectTrip = `
	SELECT id, user_id, source_name, destination_name,
	       source_lat, source_lng, dest_lat, dest_lng,
	       travel_date, travel_time, mode, preference,
	       status, geometry, match_radius_km, created_at
	FROM trips`

func (s *PGStore) Get(ctx context.Context, id types.ID) (*Trip, error) {
	row := s.db.QueryRow(ctx, selectTrip+` WHERE id = $1`, string(id))
	t, err := scanTrip(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("trip: get: %w", err)
	}
	return t, nil
}

func (s *PGStore) ListByUser(ctx context.Context, userID types.ID) ([]Trip, error) {
	rows, err := s.db.Query(ctx, selectTrip+` WHERE user_id = $1 ORDER BY created_at DESC`, string(userID))
	if err != nil {
		return nil, fmt.Errorf("trip: list: %w", err)
	}
	defer rows.Close()

	var out []Trip
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

// UpdateStatus performs a compare-and-set on the status column; returns
// false when the row was already moved off the expected status.
func (s *PGStore) UpdateStatus(ctx context.Context, id types.ID, from, to Status) (bool, error) {
	tag, err := s.db.Exec(ctx,
		`UPDATE trips SET status = $1 WHERE id = $2 AND status = $3`,
		string(to), string(id), string(from),
	)
	if err != nil {
		return false, fmt.Errorf("trip: update status: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (s *PGStore) Delete(ctx context.Context, id types.ID) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM trips WHERE id = $1`, string(id))
	if err != nil {
		return fmt.Errorf("trip: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanTrip(row pgx.Row) (*Trip, error) {
	var t Trip
	var srcLat, srcLng, dstLat, dstLng *float64
	var geomJSON []byte
	err := row.Scan(
		&t.ID, &t.UserID, &t.SourceName, &t.DestinationName,
		&srcLat, &srcLng, &dstLat, &dstLng,
		&t.TravelDate, &t.TravelTime, &t.Mode, &t.Preference,
		&t.Status, &geomJSON, &t.MatchRadiusKm, &t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if srcLat != nil && srcLng != nil {
		t.Source = &types.Point{Lat: *srcLat, Lng: *srcLng}
	}
	if dstLat != nil && dstLng != nil {
		t.Destination = &types.Point{Lat: *dstLat, Lng: *dstLng}
	}
	if len(geomJSON) > 0 {
		if err := json.Unmarshal(geomJSON, &t.Geometry); err != nil {
			return nil, fmt.Errorf("trip: decode geometry: %w", err)
		}
	}
	return &t, nil
}

func marshalGeometry(g []types.Point) ([]byte, error) {
	if len(g) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(g)
	if err != nil {
		return nil, fmt.Errorf("trip: encode geometry: %w", err)
	}
	return b, nil
}

// README: Matching store: Postgres for trips and match records, Redis GEO
// as an optional candidate pre-filter.
package matching

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"tripmate/internal/types"
)

const (
	tripSourcesGeoKey = "matching:trip_sources"
	// prefilterRadiusKm matches the maximum configurable trip radius, so the
	// geo index can only drop candidates the source-proximity rule would
	// reject anyway.
	prefilterRadiusKm = 100.0
)

// geoIndexClient is the subset of redis operations the pre-filter needs,
// narrowed so tests can substitute a double.
type geoIndexClient interface {
	GeoAdd(ctx context.Context, key string, geoLocation ...*redis.GeoLocation) *redis.IntCmd
	GeoSearch(ctx context.Context, key string, q *redis.GeoSearchQuery) *redis.StringSliceCmd
	ZRem(ctx context.Context, key string, members ...interface{}) *redis.IntCmd
}

type PGStore struct {
	db    *pgxpool.Pool
	redis geoIndexClient
}

// NewPGStore builds the store. redisClient may be nil; the pre-filter then
// degrades to a plain table scan.
func NewPGStore(db *pgxpool.Pool, redisClient *redis.Client) *PGStore {
	s := &PGStore{db: db}
	if redisClient != nil {
		s.redis = redisClient
	}
	return s
}

// IndexTripSource registers a trip's source position in the geo index.
// Trips without coordinates are simply not indexed.
func (s *PGStore) IndexTripSource(ctx context.Context, tripID types.ID, source *types.Point) error {
	if s.redis == nil || source == nil {
		return nil
	}
	return s.redis.GeoAdd(ctx, tripSourcesGeoKey, &redis.GeoLocation{
		Name:      string(tripID),
		Longitude: source.Lng,
		Latitude:  source.Lat,
	}).Err()
}

// RemoveTripSource drops a trip from the geo index.
func (s *PGStore) RemoveTripSource(ctx context.Context, tripID types.ID) error {
	if s.redis == nil {
		return nil
	}
	return s.redis.ZRem(ctx, tripSourcesGeoKey, string(tripID)).Err()
}

func (s *PGStore) ActiveTripsExcept(ctx context.Context, t Trip) ([]Trip, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, source_name, destination_name,
		       source_lat, source_lng, dest_lat, dest_lng,
		       travel_date, mode, match_radius_km, geometry
		FROM trips
		WHERE status = 'active' AND user_id <> $1 AND id <> $2`,
		string(t.UserID), string(t.ID),
	)
	if err != nil {
		return nil, fmt.Errorf("matching: load active trips: %w", err)
	}
	defer rows.Close()

	var out []Trip
	for rows.Next() {
		c, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return s.prefilter(ctx, t, out), nil
}

// prefilter narrows candidates to those whose source lies within the geo
// index search radius. Trips without an indexed source always pass; any
// Redis failure falls back to the unfiltered set.
func (s *PGStore) prefilter(ctx context.Context, t Trip, candidates []Trip) []Trip {
	if s.redis == nil || t.Source == nil {
		return candidates
	}
	near, err := s.redis.GeoSearch(ctx, tripSourcesGeoKey, &redis.GeoSearchQuery{
		Longitude:  t.Source.Lng,
		Latitude:   t.Source.Lat,
		Radius:     prefilterRadiusKm,
		RadiusUnit: "km",
	}).Result()
	if err != nil {
		return candidates
	}
	allowed := make(map[types.ID]bool, len(near))
	for _, id := range near {
		allowed[types.ID(id)] = true
	}
	// The new trip sits at the center of the search, so a result without it
	// means the index has never seen this trip. Such an index cannot be
	// trusted to narrow anything.
	if !allowed[t.ID] {
		return candidates
	}
	out := candidates[:0]
	for _, c := range candidates {
		if c.Source == nil || allowed[c.ID] {
			out = append(out, c)
		}
	}
	return out
}

func (s *PGStore) InsertMatches(ctx context.Context, matches []TripMatch) error {
	if len(matches) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, m := range matches {
		batch.Queue(`
			INSERT INTO trip_matches (id, trip_id, matched_trip_id, score, status, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			string(m.ID), string(m.TripID), string(m.MatchedTripID),
			m.Score, string(m.Status), m.CreatedAt,
		)
	}
	br := s.db.SendBatch(ctx, batch)
	defer br.Close()
	for range matches {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("matching: insert matches: %w", err)
		}
	}
	return nil
}

// ListForTrip returns the matches recorded for one trip, newest first.
func (s *PGStore) ListForTrip(ctx context.Context, tripID types.ID) ([]TripMatch, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, trip_id, matched_trip_id, score, status, created_at
		FROM trip_matches
		WHERE trip_id = $1
		ORDER BY created_at DESC, score DESC`,
		string(tripID),
	)
	if err != nil {
		return nil, fmt.Errorf("matching: list matches: %w", err)
	}
	defer rows.Close()

	var out []TripMatch
	for rows.Next() {
		var m TripMatch
		if err := rows.Scan(&m.ID, &m.TripID, &m.MatchedTripID, &m.Score, &m.Status, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func scanTrip(rows pgx.Rows) (Trip, error) {
	var c Trip
	var srcLat, srcLng, dstLat, dstLng *float64
	var geomJSON []byte
	if err := rows.Scan(&c.ID, &c.UserID, &c.SourceName, &c.DestinationName,
		&srcLat, &srcLng, &dstLat, &dstLng,
		&c.TravelDate, &c.Mode, &c.RadiusKm, &geomJSON); err != nil {
		return Trip{}, err
	}
	if srcLat != nil && srcLng != nil {
		c.Source = &types.Point{Lat: *srcLat, Lng: *srcLng}
	}
	if dstLat != nil && dstLng != nil {
		c.Destination = &types.Point{Lat: *dstLat, Lng: *dstLng}
	}
	geom, err := decodeGeometry(geomJSON)
	if err != nil {
		return Trip{}, err
	}
	c.Geometry = geom
	return c, nil
}

func decodeGeometry(raw []byte) ([]types.Point, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var pts []types.Point
	if err := json.Unmarshal(raw, &pts); err != nil {
		return nil, fmt.Errorf("matching: decode geometry: %w", err)
	}
	return pts, nil
}

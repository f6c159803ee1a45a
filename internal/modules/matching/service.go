// README: Matching orchestrator: scores a new trip against all other active
// trips and persists qualifying matches as mirrored pairs.
package matching

import (
	"context"
	"log/slog"
	"time"

	"tripmate/internal/observability"
	"tripmate/internal/types"
)

// DefaultMinScore is the score bar a trip pair must clear to become a match.
// Deliberately independent of the configurable match radius: the radius moves
// geometric thresholds, not the bar.
const DefaultMinScore = 50

// Store is the persistence surface the orchestrator needs.
type Store interface {
	// ActiveTripsExcept returns every active trip that belongs to a
	// different user than the given trip.
	ActiveTripsExcept(ctx context.Context, t Trip) ([]Trip, error)
	// InsertMatches persists all match records in a single batch.
	InsertMatches(ctx context.Context, matches []TripMatch) error
}

type Service struct {
	store    Store
	log      *slog.Logger
	minScore int
	now      func() time.Time
}

func NewService(store Store, log *slog.Logger, minScore int) *Service {
	if minScore <= 0 {
		minScore = DefaultMinScore
	}
	return &Service{store: store, log: log, minScore: minScore, now: time.Now}
}

// MatchTrip runs one matching pass for a newly created trip. It returns the
// number of match records written. All matches for the trip land in one
// batch insert, so a reader never observes a partially matched trip.
func (s *Service) MatchTrip(ctx context.Context, t Trip) (int, error) {
	candidates, err := s.store.ActiveTripsExcept(ctx, t)
	if err != nil {
		return 0, err
	}

	now := s.now().UTC()
	var matches []TripMatch
	for _, c := range candidates {
		res := Score(t, c)
		observability.MatchScores.Observe(float64(res.Score))
		if res.Score < s.minScore {
			continue
		}
		matches = append(matches,
			TripMatch{
				ID:            types.NewID(),
				TripID:        t.ID,
				MatchedTripID: c.ID,
				Score:         res.Score,
				Status:        StatusPending,
				CreatedAt:     now,
			},
			TripMatch{
				ID:            types.NewID(),
				TripID:        c.ID,
				MatchedTripID: t.ID,
				Score:         res.Score,
				Status:        StatusPending,
				CreatedAt:     now,
			},
		)
		s.log.Debug("trip pair matched",
			"trip_id", string(t.ID),
			"candidate_id", string(c.ID),
			"score", res.Score,
			"reasons", res.Tags(),
		)
	}

	if len(matches) == 0 {
		return 0, nil
	}
	if err := s.store.InsertMatches(ctx, matches); err != nil {
		return 0, err
	}
	observability.MatchesTotal.Add(float64(len(matches)))
	return len(matches), nil
}

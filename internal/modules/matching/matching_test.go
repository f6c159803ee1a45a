// README: Orchestrator tests with an in-memory store double.
package matching

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tripmate/internal/types"
)

// mockStore is a hand-written test double for Store. Set only the function
// fields a test needs.
type mockStore struct {
	activeTrips   func(ctx context.Context, t Trip) ([]Trip, error)
	insertMatches func(ctx context.Context, matches []TripMatch) error

	inserted [][]TripMatch
}

func (m *mockStore) ActiveTripsExcept(ctx context.Context, t Trip) ([]Trip, error) {
	return m.activeTrips(ctx, t)
}

func (m *mockStore) InsertMatches(ctx context.Context, matches []TripMatch) error {
	m.inserted = append(m.inserted, matches)
	if m.insertMatches != nil {
		return m.insertMatches(ctx, matches)
	}
	return nil
}

var _ Store = (*mockStore)(nil)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestMatchTrip_QualifyingCandidateProducesMirroredPair(t *testing.T) {
	newTrip := baseTrip("new", "u1")
	candidate := baseTrip("cand", "u2") // identical geometry-wise: scores 150

	store := &mockStore{
		activeTrips: func(context.Context, Trip) ([]Trip, error) {
			return []Trip{candidate}, nil
		},
	}
	svc := NewService(store, discardLogger(), DefaultMinScore)
	fixed := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	n, err := svc.MatchTrip(context.Background(), newTrip)

	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.Len(t, store.inserted, 1, "exactly one batch insert")
	batch := store.inserted[0]
	require.Len(t, batch, 2)

	assert.Equal(t, types.ID("new"), batch[0].TripID)
	assert.Equal(t, types.ID("cand"), batch[0].MatchedTripID)
	assert.Equal(t, types.ID("cand"), batch[1].TripID)
	assert.Equal(t, types.ID("new"), batch[1].MatchedTripID)
	assert.Equal(t, batch[0].Score, batch[1].Score)
	assert.Equal(t, batch[0].CreatedAt, batch[1].CreatedAt)
	assert.Equal(t, fixed, batch[0].CreatedAt)
	assert.Equal(t, StatusPending, batch[0].Status)
	assert.NotEqual(t, batch[0].ID, batch[1].ID)
}

func TestMatchTrip_ScoreBelowThresholdProducesNothing(t *testing.T) {
	newTrip := baseTrip("new", "u1")
	// Same date (30) + same mode (20) only: score 50 would pass, so strip
	// the mode match to land on 30.
	candidate := Trip{
		ID: "cand", UserID: "u2",
		TravelDate: newTrip.TravelDate,
		Mode:       types.ModeTrain,
		RadiusKm:   10,
	}
	newTrip.Source, newTrip.Destination, newTrip.DestinationName = nil, nil, ""

	store := &mockStore{
		activeTrips: func(context.Context, Trip) ([]Trip, error) {
			return []Trip{candidate}, nil
		},
	}
	svc := NewService(store, discardLogger(), DefaultMinScore)

	n, err := svc.MatchTrip(context.Background(), newTrip)

	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Empty(t, store.inserted)
}

func TestMatchTrip_ScoreExactlyAtThresholdMatches(t *testing.T) {
	newTrip := Trip{
		ID: "new", UserID: "u1",
		TravelDate: "2026-09-15",
		Mode:       types.ModeTrain,
		RadiusKm:   10,
	}
	// Same date (30) + same mode (20) = exactly 50.
	candidate := Trip{
		ID: "cand", UserID: "u2",
		TravelDate: "2026-09-15",
		Mode:       types.ModeTrain,
		RadiusKm:   10,
	}

	store := &mockStore{
		activeTrips: func(context.Context, Trip) ([]Trip, error) {
			return []Trip{candidate}, nil
		},
	}
	svc := NewService(store, discardLogger(), DefaultMinScore)

	n, err := svc.MatchTrip(context.Background(), newTrip)

	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestMatchTrip_MultipleCandidatesSingleBatch(t *testing.T) {
	newTrip := baseTrip("new", "u1")
	store := &mockStore{
		activeTrips: func(context.Context, Trip) ([]Trip, error) {
			return []Trip{baseTrip("c1", "u2"), baseTrip("c2", "u3"), baseTrip("c3", "u4")}, nil
		},
	}
	svc := NewService(store, discardLogger(), DefaultMinScore)

	n, err := svc.MatchTrip(context.Background(), newTrip)

	require.NoError(t, err)
	assert.Equal(t, 6, n)
	require.Len(t, store.inserted, 1, "all pairs must land in one batch")
	assert.Len(t, store.inserted[0], 6)
}

func TestMatchTrip_StoreErrorsPropagateToCaller(t *testing.T) {
	boom := errors.New("db down")
	store := &mockStore{
		activeTrips: func(context.Context, Trip) ([]Trip, error) { return nil, boom },
	}
	svc := NewService(store, discardLogger(), DefaultMinScore)

	_, err := svc.MatchTrip(context.Background(), baseTrip("new", "u1"))
	assert.ErrorIs(t, err, boom)

	store = &mockStore{
		activeTrips: func(context.Context, Trip) ([]Trip, error) {
			return []Trip{baseTrip("cand", "u2")}, nil
		},
		insertMatches: func(context.Context, []TripMatch) error { return boom },
	}
	svc = NewService(store, discardLogger(), DefaultMinScore)

	_, err = svc.MatchTrip(context.Background(), baseTrip("new", "u1"))
	assert.ErrorIs(t, err, boom)
}

package trip

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tripmate/internal/modules/matching"
	"tripmate/internal/modules/routing"
	"tripmate/internal/types"
)

type mockStore struct {
	create       func(ctx context.Context, t *Trip) error
	get          func(ctx context.Context, id types.ID) (*Trip, error)
	listByUser   func(ctx context.Context, userID types.ID) ([]Trip, error)
	updateStatus func(ctx context.Context, id types.ID, from, to Status) (bool, error)
	del          func(ctx context.Context, id types.ID) error

	created []*Trip
}

func (m *mockStore) Create(ctx context.Context, t *Trip) error {
	m.created = append(m.created, t)
	if m.create != nil {
		return m.create(ctx, t)
	}
	return nil
}
func (m *mockStore) Get(ctx context.Context, id types.ID) (*Trip, error) { return m.get(ctx, id) }
func (m *mockStore) ListByUser(ctx context.Context, userID types.ID) ([]Trip, error) {
	return m.listByUser(ctx, userID)
}
func (m *mockStore) UpdateStatus(ctx context.Context, id types.ID, from, to Status) (bool, error) {
	return m.updateStatus(ctx, id, from, to)
}
func (m *mockStore) Delete(ctx context.Context, id types.ID) error { return m.del(ctx, id) }

var _ Store = (*mockStore)(nil)

type mockGeocoder struct {
	lookup func(ctx context.Context, name string) (types.Point, error)
}

func (m *mockGeocoder) Lookup(ctx context.Context, name string) (types.Point, error) {
	return m.lookup(ctx, name)
}

type mockRouter struct {
	route func(ctx context.Context, profile string, waypoints []types.Point, opts routing.RouteOptions) ([]routing.Candidate, error)
}

func (m *mockRouter) Route(ctx context.Context, profile string, waypoints []types.Point, opts routing.RouteOptions) ([]routing.Candidate, error) {
	return m.route(ctx, profile, waypoints, opts)
}

type mockMatcher struct {
	err  error
	done chan matching.Trip
}

func (m *mockMatcher) MatchTrip(_ context.Context, t matching.Trip) (int, error) {
	if m.done != nil {
		defer func() { m.done <- t }()
	}
	if m.err != nil {
		return 0, m.err
	}
	return 2, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func okGeocoder() *mockGeocoder {
	return &mockGeocoder{lookup: func(_ context.Context, name string) (types.Point, error) {
		if name == "Berlin" {
			return types.Point{Lat: 52.52, Lng: 13.405}, nil
		}
		return types.Point{Lat: 53.5511, Lng: 9.9937}, nil
	}}
}

func okRouter() *mockRouter {
	return &mockRouter{route: func(_ context.Context, _ string, wp []types.Point, _ routing.RouteOptions) ([]routing.Candidate, error) {
		return []routing.Candidate{{
			Geometry:       []types.Point{wp[0], {Lat: 53, Lng: 11.5}, wp[1]},
			DistanceMeters: 290_000,
			DurationSec:    3.5 * 3600,
		}}, nil
	}}
}

func validCmd() CreateCommand {
	return CreateCommand{
		UserID:      "u1",
		SourceName:  "Berlin",
		Destination: "Hamburg",
		TravelDate:  "2026-09-15",
		TravelTime:  "08:30",
		Mode:        "car",
		Preference:  "fastest",
	}
}

func newService(store *mockStore, g *mockGeocoder, r *mockRouter, m Matcher) *Service {
	return NewService(store, g, r, routing.NewAnalyzer(1.5), m, nil, nil, discardLogger())
}

type mockSourceIndex struct {
	indexErr error
	indexed  []types.ID
	removed  []types.ID
}

func (m *mockSourceIndex) IndexTripSource(_ context.Context, id types.ID, _ *types.Point) error {
	m.indexed = append(m.indexed, id)
	return m.indexErr
}

func (m *mockSourceIndex) RemoveTripSource(_ context.Context, id types.ID) error {
	m.removed = append(m.removed, id)
	return nil
}

func TestCreate_HappyPath(t *testing.T) {
	store := &mockStore{}
	done := make(chan matching.Trip, 1)
	svc := newService(store, okGeocoder(), okRouter(), &mockMatcher{done: done})

	res, err := svc.Create(context.Background(), validCmd())

	require.NoError(t, err)
	require.NotNil(t, res.Trip)
	assert.Equal(t, StatusActive, res.Trip.Status)
	assert.Equal(t, DefaultMatchRadiusKm, res.Trip.MatchRadiusKm)
	assert.Equal(t, types.ModeCar, res.Trip.Mode)
	require.NotNil(t, res.Trip.Source)
	assert.InDelta(t, 52.52, res.Trip.Source.Lat, 1e-9)
	assert.Len(t, res.Trip.Geometry, 3)
	require.Len(t, res.Routes, 1)
	assert.Equal(t, routing.LabelCheapest, res.Routes[0].Label)

	select {
	case view := <-done:
		assert.Equal(t, res.Trip.ID, view.ID)
		assert.Equal(t, 10, view.RadiusKm)
	case <-time.After(time.Second):
		t.Fatal("matching pass never ran")
	}
}

func TestCreate_ValidationErrors(t *testing.T) {
	svc := newService(&mockStore{}, okGeocoder(), okRouter(), &mockMatcher{})

	tests := []struct {
		name   string
		mutate func(*CreateCommand)
	}{
		{"missing user", func(c *CreateCommand) { c.UserID = "" }},
		{"missing source", func(c *CreateCommand) { c.SourceName = "" }},
		{"missing destination", func(c *CreateCommand) { c.Destination = "" }},
		{"bad date", func(c *CreateCommand) { c.TravelDate = "15/09/2026" }},
		{"unknown mode", func(c *CreateCommand) { c.Mode = "teleport" }},
		{"radius too small", func(c *CreateCommand) { c.MatchRadiusKm = -3 }},
		{"radius too large", func(c *CreateCommand) { c.MatchRadiusKm = 101 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := validCmd()
			tt.mutate(&cmd)
			_, err := svc.Create(context.Background(), cmd)
			assert.ErrorIs(t, err, ErrBadRequest)
		})
	}
}

func TestCreate_GeocodeFailureIsFatal(t *testing.T) {
	store := &mockStore{}
	g := &mockGeocoder{lookup: func(context.Context, string) (types.Point, error) {
		return types.Point{}, errors.New("no result")
	}}
	svc := newService(store, g, okRouter(), &mockMatcher{})

	_, err := svc.Create(context.Background(), validCmd())

	assert.ErrorIs(t, err, ErrGeocodeFailed)
	assert.Empty(t, store.created, "nothing may be persisted on geocode failure")
}

func TestCreate_RoutingFailureDegradesToFallback(t *testing.T) {
	store := &mockStore{}
	r := &mockRouter{route: func(context.Context, string, []types.Point, routing.RouteOptions) ([]routing.Candidate, error) {
		return nil, errors.New("osrm down")
	}}
	done := make(chan matching.Trip, 1)
	svc := newService(store, okGeocoder(), r, &mockMatcher{done: done})

	res, err := svc.Create(context.Background(), validCmd())

	require.NoError(t, err, "routing failure must not fail trip creation")
	assert.Len(t, res.Trip.Geometry, 2, "straight-line fallback has the two endpoints")
	require.Len(t, res.Routes, 1)
	assert.Equal(t, routing.LabelCheapest, res.Routes[0].Label)
	<-done
}

func TestCreate_MatchingFailureDoesNotFailCreation(t *testing.T) {
	store := &mockStore{}
	done := make(chan matching.Trip, 1)
	svc := newService(store, okGeocoder(), okRouter(), &mockMatcher{err: errors.New("match store down"), done: done})

	res, err := svc.Create(context.Background(), validCmd())

	require.NoError(t, err)
	assert.NotNil(t, res.Trip)
	<-done // matching ran and failed without surfacing
}

func TestCreate_ExplicitRadiusKept(t *testing.T) {
	store := &mockStore{}
	svc := newService(store, okGeocoder(), okRouter(), nil)
	cmd := validCmd()
	cmd.MatchRadiusKm = 42

	res, err := svc.Create(context.Background(), cmd)

	require.NoError(t, err)
	assert.Equal(t, 42, res.Trip.MatchRadiusKm)
}

func TestUpdateStatus_Transitions(t *testing.T) {
	tests := []struct {
		name    string
		from    Status
		to      Status
		wantErr error
	}{
		{"active to completed", StatusActive, StatusCompleted, nil},
		{"active to cancelled", StatusActive, StatusCancelled, nil},
		{"completed is terminal", StatusCompleted, StatusCancelled, ErrInvalidState},
		{"cancelled is terminal", StatusCancelled, StatusActive, ErrInvalidState},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &mockStore{
				get: func(context.Context, types.ID) (*Trip, error) {
					return &Trip{ID: "t1", UserID: "u1", Status: tt.from}, nil
				},
				updateStatus: func(_ context.Context, _ types.ID, from, to Status) (bool, error) {
					assert.Equal(t, tt.from, from)
					assert.Equal(t, tt.to, to)
					return true, nil
				},
			}
			svc := newService(store, okGeocoder(), okRouter(), nil)
			err := svc.UpdateStatus(context.Background(), "t1", "u1", tt.to)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGet_OwnershipEnforced(t *testing.T) {
	store := &mockStore{
		get: func(context.Context, types.ID) (*Trip, error) {
			return &Trip{ID: "t1", UserID: "owner"}, nil
		},
	}
	svc := newService(store, okGeocoder(), okRouter(), nil)

	_, err := svc.Get(context.Background(), "t1", "intruder")
	assert.ErrorIs(t, err, ErrForbidden)

	got, err := svc.Get(context.Background(), "t1", "owner")
	require.NoError(t, err)
	assert.Equal(t, types.ID("t1"), got.ID)
}

func TestCreate_RegistersSourceInGeoIndex(t *testing.T) {
	store := &mockStore{}
	index := &mockSourceIndex{}
	svc := NewService(store, okGeocoder(), okRouter(), routing.NewAnalyzer(1.5), nil, nil, index, discardLogger())

	res, err := svc.Create(context.Background(), validCmd())

	require.NoError(t, err)
	require.Len(t, index.indexed, 1)
	assert.Equal(t, res.Trip.ID, index.indexed[0])
}

func TestCreate_GeoIndexFailureDoesNotFailCreation(t *testing.T) {
	store := &mockStore{}
	index := &mockSourceIndex{indexErr: errors.New("redis down")}
	svc := NewService(store, okGeocoder(), okRouter(), routing.NewAnalyzer(1.5), nil, nil, index, discardLogger())

	res, err := svc.Create(context.Background(), validCmd())

	require.NoError(t, err)
	assert.NotNil(t, res.Trip)
	assert.Len(t, store.created, 1)
}

func TestUpdateStatus_RemovesSourceFromGeoIndex(t *testing.T) {
	store := &mockStore{
		get: func(context.Context, types.ID) (*Trip, error) {
			return &Trip{ID: "t1", UserID: "u1", Status: StatusActive}, nil
		},
		updateStatus: func(context.Context, types.ID, Status, Status) (bool, error) {
			return true, nil
		},
	}
	index := &mockSourceIndex{}
	svc := NewService(store, okGeocoder(), okRouter(), routing.NewAnalyzer(1.5), nil, nil, index, discardLogger())

	require.NoError(t, svc.UpdateStatus(context.Background(), "t1", "u1", StatusCompleted))
	assert.Equal(t, []types.ID{"t1"}, index.removed)
}

func TestDelete_RemovesSourceFromGeoIndex(t *testing.T) {
	store := &mockStore{
		get: func(context.Context, types.ID) (*Trip, error) {
			return &Trip{ID: "t1", UserID: "u1", Status: StatusActive}, nil
		},
		del: func(context.Context, types.ID) error { return nil },
	}
	index := &mockSourceIndex{}
	svc := NewService(store, okGeocoder(), okRouter(), routing.NewAnalyzer(1.5), nil, nil, index, discardLogger())

	require.NoError(t, svc.Delete(context.Background(), "t1", "u1"))
	assert.Equal(t, []types.ID{"t1"}, index.removed)
}

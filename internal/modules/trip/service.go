// README: Trip service: creation pipeline (geocode, route, analyze, persist)
// and post-commit best-effort matching.
package trip

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"tripmate/internal/geocode"
	"tripmate/internal/modules/matching"
	"tripmate/internal/modules/routing"
	"tripmate/internal/observability"
	"tripmate/internal/types"
)

var (
	ErrBadRequest    = errors.New("bad request")
	ErrNotFound      = errors.New("trip not found")
	ErrForbidden     = errors.New("not the trip owner")
	ErrInvalidState  = errors.New("invalid status transition")
	ErrGeocodeFailed = errors.New("could not geocode trip endpoints")
)

// Store is the persistence surface for trips.
type Store interface {
	Create(ctx context.Context, t *Trip) error
	Get(ctx context.Context, id types.ID) (*Trip, error)
	ListByUser(ctx context.Context, userID types.ID) ([]Trip, error)
	UpdateStatus(ctx context.Context, id types.ID, from, to Status) (bool, error)
	Delete(ctx context.Context, id types.ID) error
}

// Matcher runs one matching pass; failures here must never surface to the
// trip creation caller.
type Matcher interface {
	MatchTrip(ctx context.Context, t matching.Trip) (int, error)
}

// Publisher emits the trip-created event consumed by the match worker. May
// be nil, in which case matching runs in-process.
type Publisher interface {
	TripCreated(ctx context.Context, t matching.Trip) error
}

// SourceIndex maintains the geo index the matching store uses to pre-filter
// candidates. Updates are best-effort; the pre-filter degrades to a full
// scan when the index is missing entries.
type SourceIndex interface {
	IndexTripSource(ctx context.Context, tripID types.ID, source *types.Point) error
	RemoveTripSource(ctx context.Context, tripID types.ID) error
}

type Service struct {
	store    Store
	geocoder geocode.Geocoder
	router   routing.Router
	analyzer *routing.Analyzer
	matcher  Matcher
	events   Publisher
	geoIndex SourceIndex
	log      *slog.Logger
	now      func() time.Time
}

func NewService(store Store, geocoder geocode.Geocoder, router routing.Router, analyzer *routing.Analyzer, matcher Matcher, events Publisher, geoIndex SourceIndex, log *slog.Logger) *Service {
	return &Service{
		store:    store,
		geocoder: geocoder,
		router:   router,
		analyzer: analyzer,
		matcher:  matcher,
		events:   events,
		geoIndex: geoIndex,
		log:      log,
		now:      time.Now,
	}
}

type CreateCommand struct {
	UserID        types.ID
	SourceName    string
	Destination   string
	TravelDate    string
	TravelTime    string
	Mode          string
	Preference    string
	MatchRadiusKm int
}

// CreateResult carries the persisted trip plus the analyzed route
// alternatives for display.
type CreateResult struct {
	Trip   *Trip
	Routes []routing.Ranked
}

// Create validates and persists a new trip. Geocoding failure is fatal;
// routing failure degrades to a synthetic straight-line route; matching
// failure is logged and swallowed.
func (s *Service) Create(ctx context.Context, cmd CreateCommand) (*CreateResult, error) {
	if err := validateCreate(cmd); err != nil {
		return nil, err
	}
	radius := cmd.MatchRadiusKm
	if radius == 0 {
		radius = DefaultMatchRadiusKm
	}

	src, err := s.geocoder.Lookup(ctx, cmd.SourceName)
	if err != nil {
		observability.GeocodeFailures.Inc()
		return nil, fmt.Errorf("%w: source %q: %v", ErrGeocodeFailed, cmd.SourceName, err)
	}
	dst, err := s.geocoder.Lookup(ctx, cmd.Destination)
	if err != nil {
		observability.GeocodeFailures.Inc()
		return nil, fmt.Errorf("%w: destination %q: %v", ErrGeocodeFailed, cmd.Destination, err)
	}

	mode := types.ParseMode(cmd.Mode)
	pref := types.ParsePreference(cmd.Preference)

	cands, err := s.router.Route(ctx, routing.Profile(mode), []types.Point{src, dst},
		routing.RouteOptions{Alternatives: 3, Steps: true})
	if err != nil {
		s.log.Warn("routing provider failed, falling back to straight line",
			"source", cmd.SourceName, "destination", cmd.Destination, "err", err)
		cands = nil
	}
	if len(cands) == 0 {
		observability.RouteFallbacks.Inc()
	}
	ranked := s.analyzer.Analyze(src, dst, mode, pref, cands)

	t := &Trip{
		ID:              types.NewID(),
		UserID:          cmd.UserID,
		SourceName:      cmd.SourceName,
		DestinationName: cmd.Destination,
		Source:          &src,
		Destination:     &dst,
		TravelDate:      cmd.TravelDate,
		TravelTime:      cmd.TravelTime,
		Mode:            mode,
		Preference:      pref,
		Status:          StatusActive,
		Geometry:        ranked[0].Geometry,
		MatchRadiusKm:   radius,
		CreatedAt:       s.now().UTC(),
	}
	if err := s.store.Create(ctx, t); err != nil {
		return nil, err
	}

	s.indexSource(ctx, t.ID, t.Source)
	s.scheduleMatching(ctx, t.MatchingView())

	return &CreateResult{Trip: t, Routes: ranked}, nil
}

// scheduleMatching hands the new trip to the matching pass after the trip
// row is committed. Preference order: publish for the worker, else run
// in-process. Neither path can fail trip creation.
func (s *Service) scheduleMatching(ctx context.Context, view matching.Trip) {
	if s.events != nil {
		err := s.events.TripCreated(ctx, view)
		if err == nil {
			return
		}
		s.log.Error("trip-created publish failed, matching in-process", "trip_id", string(view.ID), "err", err)
	}
	if s.matcher == nil {
		return
	}
	detached := context.WithoutCancel(ctx)
	go func() {
		n, err := s.matcher.MatchTrip(detached, view)
		if err != nil {
			observability.MatchPassFailures.Inc()
			s.log.Error("matching pass failed", "trip_id", string(view.ID), "err", err)
			return
		}
		s.log.Info("matching pass complete", "trip_id", string(view.ID), "matches", n)
	}()
}

func (s *Service) Get(ctx context.Context, id, userID types.ID) (*Trip, error) {
	t, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.UserID != userID {
		return nil, ErrForbidden
	}
	return t, nil
}

func (s *Service) ListByUser(ctx context.Context, userID types.ID) ([]Trip, error) {
	return s.store.ListByUser(ctx, userID)
}

// UpdateStatus moves a trip to a terminal state. Transitions are
// append-only: terminal states never change again.
func (s *Service) UpdateStatus(ctx context.Context, id, userID types.ID, to Status) error {
	t, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if t.UserID != userID {
		return ErrForbidden
	}
	if !CanTransition(t.Status, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidState, t.Status, to)
	}
	ok, err := s.store.UpdateStatus(ctx, id, t.Status, to)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidState
	}
	// Every allowed transition ends in a terminal state, so the trip stops
	// being a matching candidate.
	s.removeSource(ctx, id)
	return nil
}

func (s *Service) Delete(ctx context.Context, id, userID types.ID) error {
	t, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if t.UserID != userID {
		return ErrForbidden
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.removeSource(ctx, id)
	return nil
}

// indexSource registers the trip in the candidate geo index. Best-effort:
// a failure only costs pre-filter coverage, never the trip itself.
func (s *Service) indexSource(ctx context.Context, id types.ID, source *types.Point) {
	if s.geoIndex == nil {
		return
	}
	if err := s.geoIndex.IndexTripSource(ctx, id, source); err != nil {
		s.log.Warn("geo index add failed", "trip_id", string(id), "err", err)
	}
}

func (s *Service) removeSource(ctx context.Context, id types.ID) {
	if s.geoIndex == nil {
		return
	}
	if err := s.geoIndex.RemoveTripSource(ctx, id); err != nil {
		s.log.Warn("geo index remove failed", "trip_id", string(id), "err", err)
	}
}

func validateCreate(cmd CreateCommand) error {
	if cmd.UserID == "" || cmd.SourceName == "" || cmd.Destination == "" {
		return fmt.Errorf("%w: user, source and destination are required", ErrBadRequest)
	}
	if _, err := time.Parse("2006-01-02", cmd.TravelDate); err != nil {
		return fmt.Errorf("%w: travel date must be YYYY-MM-DD", ErrBadRequest)
	}
	if cmd.Mode != "" && !types.ValidMode(cmd.Mode) {
		return fmt.Errorf("%w: unknown transport mode %q", ErrBadRequest, cmd.Mode)
	}
	if cmd.MatchRadiusKm != 0 && (cmd.MatchRadiusKm < MinMatchRadiusKm || cmd.MatchRadiusKm > MaxMatchRadiusKm) {
		return fmt.Errorf("%w: match radius must be between %d and %d km", ErrBadRequest, MinMatchRadiusKm, MaxMatchRadiusKm)
	}
	return nil
}

// README: Combined-route builder: merges group members' trips into one
// multi-stop route request and interprets the returned geometry.
package grouproute

import (
	"context"
	"errors"

	"tripmate/internal/modules/routing"
	"tripmate/internal/types"
)

// ErrNoRoute signals that the provider could not produce a combined route.
// Unlike single-trip routing there is no synthetic fallback here: a partial
// or estimated group route would be worse than none.
var ErrNoRoute = errors.New("no combined route available")

type WaypointKind string

const (
	KindPickup  WaypointKind = "pickup"
	KindDropoff WaypointKind = "dropoff"
)

// Waypoint is a single stop extracted from a member's trip.
type Waypoint struct {
	Position  types.Point  `json:"position"`
	Kind      WaypointKind `json:"kind"`
	UserID    types.ID     `json:"user_id"`
	PlaceName string       `json:"place_name"`
}

// MemberTrip is the slice of a trip the builder needs.
type MemberTrip struct {
	UserID          types.ID
	SourceName      string
	DestinationName string
	Source          *types.Point
	Destination     *types.Point
	Mode            types.TransportMode
}

// CombinedRoute is the group's shared route for display.
type CombinedRoute struct {
	Geometry       []types.Point       `json:"geometry"`
	DistanceMeters float64             `json:"distance_meters"`
	DurationSec    float64             `json:"duration_seconds"`
	Waypoints      []Waypoint          `json:"waypoints"`
	Mode           types.TransportMode `json:"mode"`
}

type Builder struct {
	router routing.Router
}

func NewBuilder(router routing.Router) *Builder {
	return &Builder{router: router}
}

// Build requests one multi-stop route across all members' pickups and
// dropoffs. Waypoints are ordered gather-then-distribute: every pickup in
// trip order first, then every dropoff — a display heuristic, not a vehicle
// routing solve. Trips missing coordinates contribute no waypoints. The
// first trip's transport mode is the group's shared mode.
func (b *Builder) Build(ctx context.Context, trips []MemberTrip) (*CombinedRoute, error) {
	var pickups, dropoffs []Waypoint
	for _, t := range trips {
		if t.Source == nil || t.Destination == nil {
			continue
		}
		pickups = append(pickups, Waypoint{
			Position:  *t.Source,
			Kind:      KindPickup,
			UserID:    t.UserID,
			PlaceName: t.SourceName,
		})
		dropoffs = append(dropoffs, Waypoint{
			Position:  *t.Destination,
			Kind:      KindDropoff,
			UserID:    t.UserID,
			PlaceName: t.DestinationName,
		})
	}
	waypoints := append(pickups, dropoffs...)
	if len(waypoints) < 2 {
		return nil, ErrNoRoute
	}

	coords := make([]types.Point, len(waypoints))
	for i, w := range waypoints {
		coords[i] = w.Position
	}

	mode := trips[0].Mode
	cands, err := b.router.Route(ctx, routing.Profile(mode), coords, routing.RouteOptions{})
	if err != nil || len(cands) == 0 {
		return nil, ErrNoRoute
	}

	best := cands[0]
	return &CombinedRoute{
		Geometry:       best.Geometry,
		DistanceMeters: best.DistanceMeters,
		DurationSec:    best.DurationSec,
		Waypoints:      waypoints,
		Mode:           mode,
	}, nil
}

// README: Match records, scoring rules, and structured match reasons.
package matching

import (
	"fmt"
	"time"

	"tripmate/internal/types"
)

// Trip is the comparison record the scorer works on. The trip module
// projects its aggregate into this shape so scoring stays decoupled from
// persistence concerns. Nullable fields reflect geocoding or routing
// failures at trip creation time.
type Trip struct {
	ID              types.ID
	UserID          types.ID
	Source          *types.Point
	Destination     *types.Point
	SourceName      string
	DestinationName string
	TravelDate      string // YYYY-MM-DD, compared by exact equality
	Mode            types.TransportMode
	RadiusKm        int
	Geometry        []types.Point
}

// TripMatch is a directed compatibility edge between two trips. Matches are
// always created in mirrored pairs carrying the same score.
type TripMatch struct {
	ID            types.ID
	TripID        types.ID
	MatchedTripID types.ID
	Score         int
	Status        Status
	CreatedAt     time.Time
}

type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
)

type RuleID string

const (
	RuleSourcesNearby       RuleID = "starting_points_nearby"
	RuleDestinationsNearby  RuleID = "destinations_nearby"
	RuleSameDestinationName RuleID = "same_destination_name"
	RuleCanPickup           RuleID = "can_pickup"
	RuleCanDropoff          RuleID = "can_dropoff"
	RuleReversePickup       RuleID = "reverse_pickup"
	RuleReverseDropoff      RuleID = "reverse_dropoff"
	RuleSameTravelDate      RuleID = "same_travel_date"
	RuleSameTransportMode   RuleID = "same_transport_mode"
)

// Reason records one scoring rule that fired, with the measured distance for
// proximity rules. The human-readable tag is a derived view; tests and
// callers should match on Rule, not on the rendered string.
type Reason struct {
	Rule       RuleID   `json:"rule"`
	DistanceKm *float64 `json:"distance_km,omitempty"`
}

func (r Reason) String() string {
	if r.DistanceKm != nil {
		return fmt.Sprintf("%s_%.2fkm", r.Rule, *r.DistanceKm)
	}
	return string(r.Rule)
}

// Details exposes the raw distances behind the proximity rules that fired.
type Details struct {
	SourceDistanceKm      *float64 `json:"source_distance_km,omitempty"`
	DestinationDistanceKm *float64 `json:"destination_distance_km,omitempty"`
	RouteProximityKm      *float64 `json:"route_proximity_km,omitempty"`
}

// Result is the scorer's verdict for one trip pair. Reasons keep rule
// evaluation order.
type Result struct {
	Score   int      `json:"score"`
	Reasons []Reason `json:"reasons"`
	Details Details  `json:"details"`
}

// Tags renders the reasons as machine-readable strings.
func (r Result) Tags() []string {
	out := make([]string, len(r.Reasons))
	for i, reason := range r.Reasons {
		out[i] = reason.String()
	}
	return out
}

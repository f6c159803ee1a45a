// README: Route candidate and analysis result definitions.
package routing

import (
	"context"

	"tripmate/internal/types"
)

// Step is one turn-by-turn instruction from the routing provider.
type Step struct {
	Instruction    string  `json:"instruction"`
	DistanceMeters float64 `json:"distance_meters"`
	DurationSec    float64 `json:"duration_seconds"`
}

// Candidate is one path alternative returned by the routing provider.
type Candidate struct {
	Geometry       []types.Point `json:"geometry"`
	DistanceMeters float64       `json:"distance_meters"`
	DurationSec    float64       `json:"duration_seconds"`
	Steps          []Step        `json:"steps,omitempty"`
}

func (c Candidate) DistanceKm() float64 {
	return c.DistanceMeters / 1000.0
}

// AvgSpeedKmh returns the candidate's average speed, or 0 for a degenerate
// zero-duration candidate.
func (c Candidate) AvgSpeedKmh() float64 {
	if c.DurationSec <= 0 {
		return 0
	}
	return c.DistanceKm() / (c.DurationSec / 3600.0)
}

type RoadClass string

const (
	RoadHighway RoadClass = "highway"
	RoadUrban   RoadClass = "urban"
	RoadMixed   RoadClass = "mixed"
)

type Label string

const (
	LabelCheapest Label = "cheapest"
	LabelFastest  Label = "fastest"
	LabelBalanced Label = "balanced"
)

// Ranked is a candidate annotated with the analyzer's cost model outputs.
type Ranked struct {
	Candidate

	Label         Label     `json:"label"`
	RoadClass     RoadClass `json:"road_class"`
	Cost          float64   `json:"estimated_cost"`
	TrafficFactor float64   `json:"traffic_factor"`
	// FuelKmPerUnit is distance covered per unit of fuel/energy; 0 for
	// human-powered modes.
	FuelKmPerUnit float64 `json:"fuel_km_per_unit"`

	cheapScore float64
	fastScore  float64
}

// RouteOptions controls a routing provider request.
type RouteOptions struct {
	Alternatives int
	Steps        bool
}

// Router is the external road-routing provider. Implementations return the
// candidate paths for the ordered waypoint sequence, or an empty slice when
// no route could be computed.
type Router interface {
	Route(ctx context.Context, profile string, waypoints []types.Point, opts RouteOptions) ([]Candidate, error)
}

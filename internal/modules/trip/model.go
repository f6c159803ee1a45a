// README: Trip aggregate and status definitions.
package trip

import (
	"time"

	"tripmate/internal/modules/matching"
	"tripmate/internal/types"
)

type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

const (
	DefaultMatchRadiusKm = 10
	MinMatchRadiusKm     = 1
	MaxMatchRadiusKm     = 100
)

type Trip struct {
	ID              types.ID
	UserID          types.ID
	SourceName      string
	DestinationName string
	Source          *types.Point
	Destination     *types.Point
	TravelDate      string // YYYY-MM-DD
	TravelTime      string // HH:MM, informational only
	Mode            types.TransportMode
	Preference      types.Preference
	Status          Status
	Geometry        []types.Point
	MatchRadiusKm   int
	CreatedAt       time.Time
}

// CanTransition reports whether a status change is allowed. Active trips can
// only move to a terminal state; terminal states are final.
func CanTransition(from, to Status) bool {
	if from != StatusActive {
		return false
	}
	return to == StatusCompleted || to == StatusCancelled
}

// MatchingView projects the trip into the scorer's comparison record.
func (t Trip) MatchingView() matching.Trip {
	return matching.Trip{
		ID:              t.ID,
		UserID:          t.UserID,
		Source:          t.Source,
		Destination:     t.Destination,
		SourceName:      t.SourceName,
		DestinationName: t.DestinationName,
		TravelDate:      t.TravelDate,
		Mode:            t.Mode,
		RadiusKm:        t.MatchRadiusKm,
		Geometry:        t.Geometry,
	}
}

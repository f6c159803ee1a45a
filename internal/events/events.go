// README: Trip lifecycle events shared by the API producer and the match
// worker consumer.
package events

import (
	"encoding/json"

	"tripmate/internal/modules/matching"
	"tripmate/internal/types"
)

// TripCreated is the wire payload published after a trip row is committed.
// It carries the full comparison record so the worker never has to read the
// trip back before scoring.
type TripCreated struct {
	TripID          types.ID            `json:"trip_id"`
	UserID          types.ID            `json:"user_id"`
	SourceName      string              `json:"source_name"`
	DestinationName string              `json:"destination_name"`
	Source          *types.Point        `json:"source,omitempty"`
	Destination     *types.Point        `json:"destination,omitempty"`
	TravelDate      string              `json:"travel_date"`
	Mode            types.TransportMode `json:"mode"`
	MatchRadiusKm   int                 `json:"match_radius_km"`
	Geometry        []types.Point       `json:"geometry,omitempty"`
}

func FromMatchingTrip(t matching.Trip) TripCreated {
	return TripCreated{
		TripID:          t.ID,
		UserID:          t.UserID,
		SourceName:      t.SourceName,
		DestinationName: t.DestinationName,
		Source:          t.Source,
		Destination:     t.Destination,
		TravelDate:      t.TravelDate,
		Mode:            t.Mode,
		MatchRadiusKm:   t.RadiusKm,
		Geometry:        t.Geometry,
	}
}

func (e TripCreated) MatchingTrip() matching.Trip {
	return matching.Trip{
		ID:              e.TripID,
		UserID:          e.UserID,
		SourceName:      e.SourceName,
		DestinationName: e.DestinationName,
		Source:          e.Source,
		Destination:     e.Destination,
		TravelDate:      e.TravelDate,
		Mode:            e.Mode,
		RadiusKm:        e.MatchRadiusKm,
		Geometry:        e.Geometry,
	}
}

func Decode(b []byte) (TripCreated, error) {
	var e TripCreated
	err := json.Unmarshal(b, &e)
	return e, err
}

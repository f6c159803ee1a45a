// README: Multi-factor compatibility scorer for trip pairs.
package matching

import (
	"math"
	"strings"

	"tripmate/internal/geo"
	"tripmate/internal/types"
)

// Rule weights. Proximity rules scale linearly with closeness; the flat
// rules contribute all-or-nothing.
const (
	weightSourcesNearby      = 45
	weightDestinationsNearby = 45
	weightSameDestName       = 10
	weightCanPickup          = 40
	weightCanDropoff         = 40
	weightReversePickup      = 35
	weightReverseDropoff     = 35
	weightSameTravelDate     = 30
	weightSameTransportMode  = 20
)

// Score computes the compatibility between two trips. All rules are additive
// and independent; a rule whose inputs are missing on either side is skipped
// entirely — absent data is a missing signal, not a mismatch. The effective
// radius is the smaller of the two trips' radii, so neither party's looser
// tolerance can force a match on the other.
func Score(a, b Trip) Result {
	radiusKm := float64(minInt(a.RadiusKm, b.RadiusKm))
	routeRadiusKm := radiusKm / 2

	var res Result

	// Endpoint proximity.
	if a.Source != nil && b.Source != nil {
		if d := geo.DistanceKm(*a.Source, *b.Source); d <= radiusKm {
			res.add(RuleSourcesNearby, proximityScore(weightSourcesNearby, d, radiusKm), &d)
			res.Details.SourceDistanceKm = &d
		}
	}
	if a.Destination != nil && b.Destination != nil {
		if d := geo.DistanceKm(*a.Destination, *b.Destination); d <= radiusKm {
			res.add(RuleDestinationsNearby, proximityScore(weightDestinationsNearby, d, radiusKm), &d)
			res.Details.DestinationDistanceKm = &d
		}
	}
	if sameName(a.DestinationName, b.DestinationName) {
		res.add(RuleSameDestinationName, weightSameDestName, nil)
	}

	// Route proximity. The four rules are deliberately directional: A's
	// route passing B's doorstep says nothing about B's route.
	res.routeRule(RuleCanPickup, weightCanPickup, b.Source, a.Geometry, routeRadiusKm)
	res.routeRule(RuleCanDropoff, weightCanDropoff, b.Destination, a.Geometry, routeRadiusKm)
	res.routeRule(RuleReversePickup, weightReversePickup, a.Source, b.Geometry, routeRadiusKm)
	res.routeRule(RuleReverseDropoff, weightReverseDropoff, a.Destination, b.Geometry, routeRadiusKm)

	// Schedule and mode.
	if a.TravelDate != "" && a.TravelDate == b.TravelDate {
		res.add(RuleSameTravelDate, weightSameTravelDate, nil)
	}
	if a.Mode != "" && strings.EqualFold(string(a.Mode), string(b.Mode)) {
		res.add(RuleSameTransportMode, weightSameTransportMode, nil)
	}

	return res
}

func (r *Result) add(rule RuleID, score int, distKm *float64) {
	r.Score += score
	r.Reasons = append(r.Reasons, Reason{Rule: rule, DistanceKm: distKm})
}

func (r *Result) routeRule(rule RuleID, weight int, point *types.Point, route []types.Point, radiusKm float64) {
	if point == nil || len(route) == 0 {
		return
	}
	d := geo.DistanceToRouteKm(*point, route)
	if d > radiusKm {
		return
	}
	r.add(rule, proximityScore(weight, d, radiusKm), &d)
	if r.Details.RouteProximityKm == nil {
		r.Details.RouteProximityKm = &d
	}
}

// proximityScore scales a rule weight by how close the measurement is to the
// threshold: full weight at distance zero, zero exactly at the threshold.
func proximityScore(weight int, distKm, radiusKm float64) int {
	if radiusKm <= 0 {
		return 0
	}
	return int(math.Round(float64(weight) * (1 - distKm/radiusKm)))
}

func sameName(a, b string) bool {
	a = strings.TrimSpace(a)
	b = strings.TrimSpace(b)
	return a != "" && strings.EqualFold(a, b)
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

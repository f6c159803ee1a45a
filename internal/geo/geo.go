// Package geo contains pure geographic computation helpers.
package geo

import (
	"math"

	"tripmate/internal/types"
)

const earthRadiusKm = 6371.0

// DistanceKm returns the great-circle distance in kilometres between two
// points specified in decimal degrees.
func DistanceKm(a, b types.Point) float64 {
	dLat := degreesToRadians(b.Lat - a.Lat)
	dLng := degreesToRadians(b.Lng - a.Lng)

	rLat1 := degreesToRadians(a.Lat)
	rLat2 := degreesToRadians(b.Lat)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusKm * c
}

// DistanceToRouteKm returns the minimum distance from p to any vertex of the
// route polyline. This is a vertex approximation, not a point-to-segment
// projection; its accuracy depends on how densely the geometry is sampled.
// An empty route is infinitely far away.
func DistanceToRouteKm(p types.Point, route []types.Point) float64 {
	min := math.Inf(1)
	for _, v := range route {
		if d := DistanceKm(p, v); d < min {
			min = d
		}
	}
	return min
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// README: Route alternative analyzer: cost model, traffic factor, and
// cheapest/fastest/balanced selection across provider candidates.
package routing

import (
	"sort"

	"tripmate/internal/geo"
	"tripmate/internal/types"
)

const (
	// fallbackDetourFactor inflates straight-line distance to approximate
	// road distance when the routing provider is unavailable.
	fallbackDetourFactor = 1.3
	// fallbackSpeedKmh is the assumed average speed for fallback routes.
	fallbackSpeedKmh = 60.0
	// maxTrafficFactor caps the congestion ratio so one pathological
	// candidate cannot dominate the fastest score.
	maxTrafficFactor = 3.0

	highwaySpeedKmh = 70.0
	urbanSpeedKmh   = 40.0
)

// Analyzer scores route candidates and picks the best alternative per
// optimization objective. Pure computation, safe for concurrent use.
type Analyzer struct {
	// FuelUnitPrice converts fuel/energy units into money.
	FuelUnitPrice float64
}

func NewAnalyzer(fuelUnitPrice float64) *Analyzer {
	return &Analyzer{FuelUnitPrice: fuelUnitPrice}
}

// Analyze annotates each candidate with cost, traffic factor, and composite
// scores, then selects the cheapest, fastest, and balanced alternatives.
// With zero candidates it synthesizes a single straight-line fallback between
// origin and destination so the caller stays functional when the provider is
// down. The returned slice is ordered by the caller's overall preference.
func (a *Analyzer) Analyze(origin, dest types.Point, mode types.TransportMode, pref types.Preference, cands []Candidate) []Ranked {
	if len(cands) == 0 {
		cands = []Candidate{a.Fallback(origin, dest)}
	}

	annotated := make([]Ranked, 0, len(cands))
	for _, c := range cands {
		annotated = append(annotated, a.annotate(c, mode))
	}

	picked := selectAlternatives(annotated)
	sortByPreference(picked, pref)
	return picked
}

// Fallback synthesizes a degraded two-point route from straight-line
// distance when the provider returned nothing.
func (a *Analyzer) Fallback(origin, dest types.Point) Candidate {
	distKm := geo.DistanceKm(origin, dest) * fallbackDetourFactor
	return Candidate{
		Geometry:       []types.Point{origin, dest},
		DistanceMeters: distKm * 1000,
		DurationSec:    distKm / fallbackSpeedKmh * 3600,
	}
}

func (a *Analyzer) annotate(c Candidate, mode types.TransportMode) Ranked {
	avg := c.AvgSpeedKmh()
	class := classifyRoad(avg, mode)

	rate := fuelRate(mode, class)
	cost := rate * c.DistanceKm() * a.FuelUnitPrice

	traffic := 1.0
	if avg > 0 {
		traffic = NominalSpeedKmh(mode) / avg
		if traffic < 1.0 {
			traffic = 1.0
		}
		if traffic > maxTrafficFactor {
			traffic = maxTrafficFactor
		}
	}

	var kmPerUnit float64
	if rate > 0 {
		kmPerUnit = 1.0 / rate
	}

	return Ranked{
		Candidate:     c,
		RoadClass:     class,
		Cost:          cost,
		TrafficFactor: traffic,
		FuelKmPerUnit: kmPerUnit,
		cheapScore:    cost,
		fastScore:     c.DurationSec * traffic,
	}
}

// classifyRoad buckets a candidate by average speed. Only car routes are
// split into highway/urban; other modes always read as mixed.
func classifyRoad(avgSpeedKmh float64, mode types.TransportMode) RoadClass {
	if mode != types.ModeCar {
		return RoadMixed
	}
	switch {
	case avgSpeedKmh > highwaySpeedKmh:
		return RoadHighway
	case avgSpeedKmh < urbanSpeedKmh:
		return RoadUrban
	default:
		return RoadMixed
	}
}

// selectAlternatives picks at most three labelled results: the cheapest
// candidate always, the fastest only when it is a different candidate, and
// a balanced pick only when at least three alternatives exist and it differs
// from both.
func selectAlternatives(all []Ranked) []Ranked {
	cheapIdx := minIndex(all, func(r Ranked) float64 { return r.cheapScore })
	fastIdx := minIndex(all, func(r Ranked) float64 { return r.fastScore })

	out := make([]Ranked, 0, 3)
	cheap := all[cheapIdx]
	cheap.Label = LabelCheapest
	out = append(out, cheap)

	if fastIdx != cheapIdx {
		fast := all[fastIdx]
		fast.Label = LabelFastest
		out = append(out, fast)
	}

	if len(all) >= 3 {
		bestCheap := all[cheapIdx].cheapScore
		bestFast := all[fastIdx].fastScore
		balIdx := minIndex(all, func(r Ranked) float64 {
			return normalized(r.cheapScore, bestCheap) + normalized(r.fastScore, bestFast)
		})
		if balIdx != cheapIdx && balIdx != fastIdx {
			bal := all[balIdx]
			bal.Label = LabelBalanced
			out = append(out, bal)
		}
	}
	return out
}

func normalized(v, best float64) float64 {
	if best <= 0 {
		return v
	}
	return v / best
}

func sortByPreference(rs []Ranked, pref types.Preference) {
	switch pref {
	case types.PreferCheapest:
		sort.SliceStable(rs, func(i, j int) bool { return rs[i].Cost < rs[j].Cost })
	default:
		sort.SliceStable(rs, func(i, j int) bool {
			return rs[i].DurationSec*rs[i].TrafficFactor < rs[j].DurationSec*rs[j].TrafficFactor
		})
	}
}

func minIndex(rs []Ranked, score func(Ranked) float64) int {
	best := 0
	for i := 1; i < len(rs); i++ {
		if score(rs[i]) < score(rs[best]) {
			best = i
		}
	}
	return best
}

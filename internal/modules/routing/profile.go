// README: Fixed per-mode tables: routing profile, nominal speed, fuel rates.
package routing

import "tripmate/internal/types"

// modeProfile maps each transport mode to the road-routing provider profile
// used when requesting geometry for it. Modes the provider cannot route
// natively degrade to the driving profile.
var modeProfile = map[types.TransportMode]string{
	types.ModeCar:     "driving",
	types.ModeCycling: "cycling",
	types.ModeWalking: "foot",
	types.ModeBus:     "driving",
	types.ModeTrain:   "driving",
	types.ModeFlight:  "driving",
}

// Profile returns the routing provider profile for a transport mode.
func Profile(mode types.TransportMode) string {
	if p, ok := modeProfile[mode]; ok {
		return p
	}
	return "driving"
}

// nominalSpeedKmh is the expected free-flow speed per mode, used as the
// reference when deriving a traffic factor from observed average speed.
var nominalSpeedKmh = map[types.TransportMode]float64{
	types.ModeCar:     60,
	types.ModeCycling: 15,
	types.ModeWalking: 5,
	types.ModeBus:     40,
	types.ModeTrain:   80,
	types.ModeFlight:  800,
}

// NominalSpeedKmh returns the expected average speed for a mode.
func NominalSpeedKmh(mode types.TransportMode) float64 {
	if v, ok := nominalSpeedKmh[mode]; ok {
		return v
	}
	return nominalSpeedKmh[types.ModeCar]
}

// fuelRatePerKm is fuel/energy units consumed per kilometre, keyed by mode
// and road class. Human-powered modes consume nothing; shared and scheduled
// modes carry a per-seat share that does not vary with road class.
var fuelRatePerKm = map[types.TransportMode]map[RoadClass]float64{
	types.ModeCar: {
		RoadHighway: 0.06,
		RoadUrban:   0.09,
		RoadMixed:   0.075,
	},
	types.ModeCycling: {RoadHighway: 0, RoadUrban: 0, RoadMixed: 0},
	types.ModeWalking: {RoadHighway: 0, RoadUrban: 0, RoadMixed: 0},
	types.ModeBus:     {RoadHighway: 0.02, RoadUrban: 0.02, RoadMixed: 0.02},
	types.ModeTrain:   {RoadHighway: 0.015, RoadUrban: 0.015, RoadMixed: 0.015},
	types.ModeFlight:  {RoadHighway: 0.12, RoadUrban: 0.12, RoadMixed: 0.12},
}

func fuelRate(mode types.TransportMode, class RoadClass) float64 {
	rates, ok := fuelRatePerKm[mode]
	if !ok {
		rates = fuelRatePerKm[types.ModeCar]
	}
	return rates[class]
}

// README: Transport mode and route optimization preference enumerations.
package types

import "strings"

type TransportMode string

const (
	ModeCar     TransportMode = "car"
	ModeCycling TransportMode = "cycling"
	ModeWalking TransportMode = "walking"
	ModeBus     TransportMode = "bus"
	ModeTrain   TransportMode = "train"
	ModeFlight  TransportMode = "flight"
)

var allModes = map[TransportMode]bool{
	ModeCar:     true,
	ModeCycling: true,
	ModeWalking: true,
	ModeBus:     true,
	ModeTrain:   true,
	ModeFlight:  true,
}

// ParseMode normalizes a transport mode string. Unknown values fall back
// to car rather than erroring, matching how trips were historically stored.
func ParseMode(s string) TransportMode {
	m := TransportMode(strings.ToLower(strings.TrimSpace(s)))
	if allModes[m] {
		return m
	}
	return ModeCar
}

func ValidMode(s string) bool {
	return allModes[TransportMode(strings.ToLower(strings.TrimSpace(s)))]
}

type Preference string

const (
	PreferFastest  Preference = "fastest"
	PreferCheapest Preference = "cheapest"
)

func ParsePreference(s string) Preference {
	if Preference(strings.ToLower(strings.TrimSpace(s))) == PreferCheapest {
		return PreferCheapest
	}
	return PreferFastest
}

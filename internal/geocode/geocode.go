// Package geocode resolves place names to coordinates.
package geocode

import (
	"context"
	"errors"

	"tripmate/internal/types"
)

// ErrNotFound is returned when the provider has no coordinates for a name.
var ErrNotFound = errors.New("geocode: place not found")

// Geocoder is the external geocoding provider.
type Geocoder interface {
	Lookup(ctx context.Context, placeName string) (types.Point, error)
}

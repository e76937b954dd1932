// internal/engine/geo/distance.go
package geo

import (
	"math"

	"property-advisor/internal/common/errors"
	"property-advisor/internal/models"
)

// EarthRadiusMeters is the mean Earth radius of the spherical approximation.
const EarthRadiusMeters = 6371000.0

// Distance returns the great-circle distance between two coordinates in
// meters, using the Haversine formula. Symmetric, zero for identical points.
func Distance(a, b models.Coordinate) (float64, error) {
	if !a.Valid() {
		return 0, errors.NewInvalidCoordinateError("", a.Latitude, a.Longitude)
	}
	if !b.Valid() {
		return 0, errors.NewInvalidCoordinateError("", b.Latitude, b.Longitude)
	}
	return haversine(a, b), nil
}

// haversine assumes both coordinates were already validated.
func haversine(a, b models.Coordinate) float64 {
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180
	dLng := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadiusMeters * c
}

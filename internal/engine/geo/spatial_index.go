// internal/engine/geo/spatial_index.go
package geo

import (
	"math"
	"sort"

	"property-advisor/internal/models"
)

// metersPerDegreeLat is the approximate north-south extent of one degree.
const metersPerDegreeLat = 111320.0

type cellKey struct {
	latIdx int
	lngIdx int
}

// ServiceDistance pairs a service with its exact distance from a query point.
type ServiceDistance struct {
	Service models.Service
	Meters  float64
}

// SpatialIndex buckets services into fixed-size lat/lng grid cells so a
// proximity query only scans the center cell and a neighbor ring scaled to
// the radius, instead of every service.
//
// An index is immutable once built. Rebuilds construct a fresh index aside
// and the owner publishes it atomically (copy-and-swap), so readers never
// observe a partially built structure and no locking is needed on queries.
type SpatialIndex struct {
	cellDegrees float64
	cells       map[cellKey][]models.Service
	count       int
	skipped     int
}

// BuildIndex partitions the service set into grid cells. Services with
// invalid coordinates are skipped entirely; they contribute no coverage.
func BuildIndex(services []models.Service, cellDegrees float64) *SpatialIndex {
	idx := &SpatialIndex{
		cellDegrees: cellDegrees,
		cells:       make(map[cellKey][]models.Service),
	}

	for _, svc := range services {
		if !svc.Coordinate.Valid() {
			idx.skipped++
			continue
		}
		key := idx.keyFor(svc.Coordinate)
		idx.cells[key] = append(idx.cells[key], svc)
		idx.count++
	}

	return idx
}

// Count returns the number of indexed services.
func (idx *SpatialIndex) Count() int { return idx.count }

// Skipped returns how many services were rejected for invalid coordinates.
func (idx *SpatialIndex) Skipped() int { return idx.skipped }

func (idx *SpatialIndex) keyFor(c models.Coordinate) cellKey {
	return cellKey{
		latIdx: int(math.Floor(c.Latitude / idx.cellDegrees)),
		lngIdx: int(math.Floor(c.Longitude / idx.cellDegrees)),
	}
}

// Nearby returns every service within radiusMeters of the point, sorted by
// ascending distance. The neighbor ring widens with the radius, so a radius
// larger than one cell still finds everything. An empty result is a valid
// answer, not an error.
func (idx *SpatialIndex) Nearby(point models.Coordinate, radiusMeters float64) []ServiceDistance {
	if !point.Valid() || radiusMeters <= 0 || idx.count == 0 {
		return nil
	}

	center := idx.keyFor(point)

	cellHeightMeters := idx.cellDegrees * metersPerDegreeLat
	latRing := int(radiusMeters/cellHeightMeters) + 1

	// Longitude degrees shrink with latitude; widen the east-west ring
	// accordingly. Clamp the cosine away from zero near the poles.
	cosLat := math.Cos(point.Latitude * math.Pi / 180)
	if cosLat < 0.01 {
		cosLat = 0.01
	}
	lngRing := int(radiusMeters/(cellHeightMeters*cosLat)) + 1

	var out []ServiceDistance
	for dLat := -latRing; dLat <= latRing; dLat++ {
		for dLng := -lngRing; dLng <= lngRing; dLng++ {
			key := cellKey{latIdx: center.latIdx + dLat, lngIdx: center.lngIdx + dLng}
			for _, svc := range idx.cells[key] {
				d := haversine(point, svc.Coordinate)
				if d <= radiusMeters {
					out = append(out, ServiceDistance{Service: svc, Meters: d})
				}
			}
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Meters < out[j].Meters })
	return out
}

// NearestInCategory returns the closest service of the given category within
// radiusMeters, or false when none qualifies.
func (idx *SpatialIndex) NearestInCategory(point models.Coordinate, category models.ServiceCategory, radiusMeters float64) (ServiceDistance, bool) {
	for _, sd := range idx.Nearby(point, radiusMeters) {
		if sd.Service.Category == category {
			return sd, true
		}
	}
	return ServiceDistance{}, false
}

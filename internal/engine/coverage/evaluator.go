// internal/engine/coverage/evaluator.go
package coverage

import (
	"property-advisor/internal/common/logger"
	"property-advisor/internal/engine/geo"
	"property-advisor/internal/models"
)

// Index is the slice of the spatial index the evaluator needs.
type Index interface {
	NearestInCategory(point models.Coordinate, category models.ServiceCategory, radiusMeters float64) (geo.ServiceDistance, bool)
}

// CategoryCoverage is the coverage of one amenity category at a location.
type CategoryCoverage struct {
	Category      models.ServiceCategory `json:"category"`
	Score         float64                `json:"score"`
	Found         bool                   `json:"found"`
	NearestMeters float64                `json:"nearestMeters,omitempty"`
	ServiceID     string                 `json:"serviceId,omitempty"`
	ServiceName   string                 `json:"serviceName,omitempty"`
	Required      bool                   `json:"required"`
}

// Result carries per-category coverage plus the aggregate services
// sub-score in [0,1].
type Result struct {
	PerCategory map[models.ServiceCategory]CategoryCoverage `json:"perCategory"`
	Aggregate   float64                                     `json:"aggregate"`
}

// Evaluator computes proximity coverage with an escalating radius ladder.
// The last radius is the maximum: the decay formula is
// score = max(0, 1 - distance/maxRadius).
type Evaluator struct {
	radii []float64
	log   logger.Logger
}

// defaultRadii is the ladder used when the caller supplies none.
var defaultRadii = []float64{500, 1000, 2000}

func New(radiiMeters []float64, log logger.Logger) *Evaluator {
	if len(radiiMeters) == 0 {
		radiiMeters = defaultRadii
	}
	return &Evaluator{radii: radiiMeters, log: log}
}

// MaxRadius returns the outer limit of the radius ladder.
func (e *Evaluator) MaxRadius() float64 {
	return e.radii[len(e.radii)-1]
}

// Coverage evaluates every category, required or not; non-required
// categories still show up for informational display, they just weigh half
// as much in the aggregate. Read-only, no side effects.
func (e *Evaluator) Coverage(idx Index, point models.Coordinate, required []models.ServiceCategory) Result {
	isRequired := make(map[models.ServiceCategory]bool, len(required))
	for _, c := range required {
		isRequired[c] = true
	}

	maxRadius := e.MaxRadius()
	per := make(map[models.ServiceCategory]CategoryCoverage, len(models.AllCategories))

	var weightedSum, weightTotal float64
	for _, cat := range models.AllCategories {
		cov := CategoryCoverage{Category: cat, Required: isRequired[cat]}

		// Escalate through the radius ladder; the nearest hit at the
		// smallest radius is also the global nearest, so stop there.
		for _, r := range e.radii {
			if sd, ok := idx.NearestInCategory(point, cat, r); ok {
				score := 1 - sd.Meters/maxRadius
				if score < 0 {
					score = 0
				}
				cov.Score = score
				cov.Found = true
				cov.NearestMeters = sd.Meters
				cov.ServiceID = sd.Service.ID
				cov.ServiceName = sd.Service.Name
				break
			}
		}

		per[cat] = cov

		weight := 1.0
		if cov.Required {
			weight = 2.0
		}
		weightedSum += cov.Score * weight
		weightTotal += weight
	}

	aggregate := 0.0
	if weightTotal > 0 {
		aggregate = weightedSum / weightTotal
	}

	return Result{PerCategory: per, Aggregate: aggregate}
}

// internal/engine/scoring/scorer.go
package scoring

import (
	"fmt"
	"math"
	"strings"

	"property-advisor/internal/common/errors"
	"property-advisor/internal/common/logger"
	"property-advisor/internal/engine/coverage"
	"property-advisor/internal/engine/geo"
	"property-advisor/internal/models"
)

// Config fixes the scoring constants. Decay curves and defaults are
// deliberately configurable, not hard-coded.
type Config struct {
	// Centroid of the investor's operative area, used for location decay
	// when the profile names no preferred zone.
	Centroid                    models.Coordinate
	MaxConsideredDistanceMeters float64

	// PriceDecayBand is the fraction of the violated budget boundary over
	// which the price sub-score decays linearly to zero. With the default
	// 0.5, a price up to 50% above budget max still scores positive.
	PriceDecayBand float64

	// ReservedScore is the availability sub-score of reserved listings.
	ReservedScore float64

	// TieEpsilon bounds what counts as "the same" overall score.
	TieEpsilon float64

	// FuzzyZoneScore is the location sub-score of a partial zone match.
	FuzzyZoneScore float64
}

// Scorer turns a property, a profile and a coverage result into one
// RecommendationResult with per-criterion explanations.
type Scorer struct {
	cfg Config
	log logger.Logger
}

func New(cfg Config, log logger.Logger) *Scorer {
	if cfg.FuzzyZoneScore == 0 {
		cfg.FuzzyZoneScore = 0.7
	}
	return &Scorer{cfg: cfg, log: log}
}

// NormalizeWeights validates and renormalizes profile weight overrides.
// This runs exactly once per request; every Score call receives the already
// normalized weights.
func NormalizeWeights(p *models.Profile) (models.Weights, error) {
	w := p.EffectiveWeights()
	if !w.Valid() {
		return models.Weights{}, errors.NewInvalidWeightsError(
			fmt.Sprintf("location=%.3f price=%.3f services=%.3f features=%.3f availability=%.3f",
				w.Location, w.Price, w.Services, w.Features, w.Availability))
	}
	return w.Normalized(), nil
}

// Score computes the weighted result for one property. Per-entity problems
// (missing coordinates, currency mismatch) zero the affected sub-score and
// annotate the rationale; they never fail the batch. The second return is
// false when not a single criterion was computable, in which case the
// property is excluded from the ranked output.
func (s *Scorer) Score(prop models.Property, profile models.Profile, weights models.Weights, cov coverage.Result) (*models.RecommendationResult, bool) {
	var (
		sub       models.SubScores
		rationale []string
		computed  int
	)

	// Location.
	locScore, locOK, locNote := s.locationScore(prop, profile)
	sub.Location = locScore
	if locOK {
		computed++
	}
	if locNote != "" {
		rationale = append(rationale, locNote)
	}

	// Price.
	priceScore, err := s.PriceFit(prop.Price, profile)
	if err != nil {
		sub.Price = 0
		rationale = append(rationale, fmt.Sprintf("currency mismatch: %s listing vs %s budget, no conversion rate supplied",
			prop.Price.Currency, profile.Currency))
	} else {
		sub.Price = priceScore
		computed++
		if priceScore >= 1 {
			rationale = append(rationale, "price within budget")
		} else if priceScore > 0 {
			rationale = append(rationale, "price outside budget but within the decay band")
		} else {
			rationale = append(rationale, "price far outside budget")
		}
	}

	// Services, straight from the coverage aggregate. Without a valid
	// coordinate no coverage exists to take.
	if prop.HasValidCoordinate() {
		sub.Services = cov.Aggregate
		computed++
		rationale = append(rationale, coverageRationale(cov, profile)...)
	} else {
		sub.Services = 0
	}

	// Features.
	featScore, featNote := s.featuresScore(prop, profile)
	sub.Features = featScore
	computed++
	if featNote != "" {
		rationale = append(rationale, featNote)
	}

	// Availability.
	availScore, availOK := s.availabilityScore(prop.Status)
	sub.Availability = availScore
	if availOK {
		computed++
		rationale = append(rationale, fmt.Sprintf("status: %s", prop.Status))
	} else {
		rationale = append(rationale, fmt.Sprintf("unknown availability status %q", prop.Status))
	}

	if computed == 0 {
		return nil, false
	}

	overall := weights.Location*sub.Location +
		weights.Price*sub.Price +
		weights.Services*sub.Services +
		weights.Features*sub.Features +
		weights.Availability*sub.Availability
	overall = clamp01(overall)

	res := &models.RecommendationResult{
		Property:             prop,
		Score:                overall,
		SubScores:            sub,
		NearestServiceMeters: nearestRequired(cov, profile),
		Rationale:            rationale,
	}
	return res, true
}

// locationScore returns (score, computable, rationale note).
func (s *Scorer) locationScore(prop models.Property, profile models.Profile) (float64, bool, string) {
	if len(profile.PreferredZones) > 0 && prop.Zone != "" {
		propZone := normalizeZone(prop.Zone)
		for _, z := range profile.PreferredZones {
			if normalizeZone(z) == propZone {
				return 1.0, true, fmt.Sprintf("zone match: %s", prop.Zone)
			}
		}
		for _, z := range profile.PreferredZones {
			zn := normalizeZone(z)
			if strings.Contains(propZone, zn) || strings.Contains(zn, propZone) {
				return s.cfg.FuzzyZoneScore, true, fmt.Sprintf("partial zone match: %s", prop.Zone)
			}
		}
	}

	if !prop.HasValidCoordinate() {
		return 0, false, "missing coordinates"
	}

	d, err := geo.Distance(*prop.Coordinate, s.cfg.Centroid)
	if err != nil {
		return 0, false, "missing coordinates"
	}
	score := 1 - d/s.cfg.MaxConsideredDistanceMeters
	if score < 0 {
		score = 0
	}
	return score, true, fmt.Sprintf("%.0f m from operative-area centroid", d)
}

// PriceFit computes the triangular price sub-score: 1.0 inside the budget
// range, linear decay to zero across the configured band outside it. A
// profile with no budget at all treats price as unconstrained and scores
// 1.0; a zero BudgetMax with a positive BudgetMin is an open-ended maximum.
// Returns CURRENCY_MISMATCH when currencies differ and no conversion rate
// was supplied by the caller.
func (s *Scorer) PriceFit(price models.Price, profile models.Profile) (float64, error) {
	amount := price.Amount
	if price.Currency != "" && profile.Currency != "" && !strings.EqualFold(price.Currency, profile.Currency) {
		rate, ok := profile.ConversionRates[price.Currency]
		if !ok || rate <= 0 {
			return 0, errors.NewCurrencyMismatchError(price.Currency, profile.Currency)
		}
		amount = amount * rate
	}

	min, max := profile.BudgetMin, profile.BudgetMax
	if min == 0 && max == 0 {
		return 1.0, nil
	}
	openMax := max == 0
	if amount >= min && (openMax || amount <= max) {
		return 1.0, nil
	}

	var boundary, overshoot float64
	if !openMax && amount > max {
		boundary = max
		overshoot = amount - max
	} else {
		boundary = min
		overshoot = min - amount
	}
	allowance := s.cfg.PriceDecayBand * boundary
	if allowance <= 0 {
		return 0, nil
	}
	score := 1 - overshoot/allowance
	if score < 0 {
		score = 0
	}
	return score, nil
}

// featuresScore is the fraction of requested structural minimums met,
// multiplied by a binary type match when the profile fixes a type.
func (s *Scorer) featuresScore(prop models.Property, profile models.Profile) (float64, string) {
	var requested, met int
	if profile.MinBedrooms > 0 {
		requested++
		if prop.Bedrooms >= profile.MinBedrooms {
			met++
		}
	}
	if profile.MinBathrooms > 0 {
		requested++
		if prop.Bathrooms >= profile.MinBathrooms {
			met++
		}
	}
	if profile.MinBuiltArea > 0 {
		requested++
		if prop.BuiltArea >= profile.MinBuiltArea {
			met++
		}
	}

	score := 1.0
	note := ""
	if requested > 0 {
		score = float64(met) / float64(requested)
		note = fmt.Sprintf("%d/%d structural minimums met", met, requested)
	}

	if profile.PropertyType != "" && prop.Type != profile.PropertyType {
		return 0, fmt.Sprintf("type mismatch: %s wanted, %s listed", profile.PropertyType, prop.Type)
	}

	return score, note
}

func (s *Scorer) availabilityScore(status models.AvailabilityStatus) (float64, bool) {
	switch status {
	case models.AvailabilityActive:
		return 1.0, true
	case models.AvailabilityReserved:
		return s.cfg.ReservedScore, true
	case models.AvailabilitySold:
		return 0.0, true
	}
	return 0.0, false
}

// Less is the deterministic sort order: overall score descending, ties
// within TieEpsilon broken by services sub-score descending, then price
// ascending, then property id.
func Less(a, b *models.RecommendationResult, eps float64) bool {
	if math.Abs(a.Score-b.Score) > eps {
		return a.Score > b.Score
	}
	if math.Abs(a.SubScores.Services-b.SubScores.Services) > eps {
		return a.SubScores.Services > b.SubScores.Services
	}
	if a.Property.Price.Amount != b.Property.Price.Amount {
		return a.Property.Price.Amount < b.Property.Price.Amount
	}
	return a.Property.ID < b.Property.ID
}

func coverageRationale(cov coverage.Result, profile models.Profile) []string {
	var notes []string
	for _, cat := range profile.RequiredServices {
		cc, ok := cov.PerCategory[cat]
		if !ok {
			continue
		}
		if cc.Found {
			name := cc.ServiceName
			if name == "" {
				name = cc.ServiceID
			}
			notes = append(notes, fmt.Sprintf("%s: %s at %.0f m", cat, name, cc.NearestMeters))
		} else {
			notes = append(notes, fmt.Sprintf("%s: no service within coverage radius", cat))
		}
	}
	return notes
}

func nearestRequired(cov coverage.Result, profile models.Profile) map[models.ServiceCategory]float64 {
	if len(profile.RequiredServices) == 0 {
		return nil
	}
	out := make(map[models.ServiceCategory]float64)
	for _, cat := range profile.RequiredServices {
		if cc, ok := cov.PerCategory[cat]; ok && cc.Found {
			out[cat] = cc.NearestMeters
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func normalizeZone(z string) string {
	return strings.ToLower(strings.TrimSpace(z))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

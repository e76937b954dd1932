// internal/models/profile.go
package models

import "fmt"

// Weights is the criterion weight split of the overall score. Values are
// relative; scoring normalizes them to sum to one.
type Weights struct {
	Location     float64 `json:"location"`
	Price        float64 `json:"price"`
	Services     float64 `json:"services"`
	Features     float64 `json:"features"`
	Availability float64 `json:"availability"`
}

// DefaultWeights is the split used when a profile carries no override.
func DefaultWeights() Weights {
	return Weights{
		Location:     0.35,
		Price:        0.25,
		Services:     0.20,
		Features:     0.15,
		Availability: 0.05,
	}
}

// Valid rejects negative components and the all-zero vector.
func (w Weights) Valid() bool {
	if w.Location < 0 || w.Price < 0 || w.Services < 0 || w.Features < 0 || w.Availability < 0 {
		return false
	}
	return w.Sum() > 0
}

func (w Weights) Sum() float64 {
	return w.Location + w.Price + w.Services + w.Features + w.Availability
}

// Normalized scales the weights so they sum to one.
func (w Weights) Normalized() Weights {
	sum := w.Sum()
	if sum == 0 {
		return w
	}
	return Weights{
		Location:     w.Location / sum,
		Price:        w.Price / sum,
		Services:     w.Services / sum,
		Features:     w.Features / sum,
		Availability: w.Availability / sum,
	}
}

// Profile captures one client's search preferences. A nil Weights means
// the configured default split applies.
type Profile struct {
	ClientID       string   `json:"clientId"`
	BudgetMin      float64  `json:"budgetMin"`
	BudgetMax      float64  `json:"budgetMax"`
	Currency       string   `json:"currency"`
	PreferredZones []string `json:"preferredZones,omitempty"`

	PropertyType PropertyType `json:"propertyType,omitempty"`
	MinBedrooms  int          `json:"minBedrooms,omitempty"`
	MinBathrooms int          `json:"minBathrooms,omitempty"`
	MinBuiltArea float64      `json:"minBuiltAreaM2,omitempty"`

	RequiredServices []ServiceCategory `json:"requiredServices,omitempty"`

	Weights *Weights `json:"weights,omitempty"`

	// ConversionRates maps a foreign currency code to the multiplier that
	// converts its amounts into the profile currency.
	ConversionRates map[string]float64 `json:"conversionRates,omitempty"`
}

// EffectiveWeights returns the override when present, the default split
// otherwise. No validation or normalization happens here.
func (p Profile) EffectiveWeights() Weights {
	if p.Weights != nil {
		return *p.Weights
	}
	return DefaultWeights()
}

// RequiresCategory reports whether the profile names the category as a
// required service.
func (p Profile) RequiresCategory(cat ServiceCategory) bool {
	for _, c := range p.RequiredServices {
		if c == cat {
			return true
		}
	}
	return false
}

// Validate checks the request-level invariants that must hold before any
// scoring work starts.
func (p Profile) Validate() error {
	if p.ClientID == "" {
		return fmt.Errorf("clientId is required")
	}
	if p.Currency == "" {
		return fmt.Errorf("currency is required")
	}
	if p.BudgetMin < 0 || p.BudgetMax < 0 {
		return fmt.Errorf("budget bounds must be non-negative")
	}
	if p.BudgetMax > 0 && p.BudgetMin > p.BudgetMax {
		return fmt.Errorf("budgetMin %.2f exceeds budgetMax %.2f", p.BudgetMin, p.BudgetMax)
	}
	for rateCurrency, rate := range p.ConversionRates {
		if rate <= 0 {
			return fmt.Errorf("conversion rate for %s must be positive", rateCurrency)
		}
	}
	return nil
}

// internal/repository/repository.go
package repository

import (
	"context"

	"property-advisor/internal/models"
)

// FilterHint is the advisory pre-filter passed to a property repository.
// Backends are free to apply all, part, or none of it: the engine rescores
// and refilters everything it receives, so the hint is an optimization, not
// a correctness requirement.
type FilterHint struct {
	Zones    []string            `json:"zones,omitempty"`
	PriceMin float64             `json:"priceMin,omitempty"`
	PriceMax float64             `json:"priceMax,omitempty"`
	Currency string              `json:"currency,omitempty"`
	Type     models.PropertyType `json:"type,omitempty"`
}

// PropertyRepository hands the engine an in-memory snapshot of candidate
// listings. The engine assumes nothing about the backing store.
type PropertyRepository interface {
	ListCandidates(ctx context.Context, hint FilterHint) ([]models.Property, error)
}

// ServiceRepository supplies the georeferenced urban services; called once
// per spatial-index build.
type ServiceRepository interface {
	ListServices(ctx context.Context) ([]models.Service, error)
}

// internal/repository/memory/memory.go
package memory

import (
	"context"
	"strings"
	"sync"

	"property-advisor/internal/models"
	"property-advisor/internal/repository"
)

// PropertyRepo serves an in-memory snapshot of listings. Used by tests and
// by deployments that load a reviewed dataset at startup.
type PropertyRepo struct {
	mu         sync.RWMutex
	properties []models.Property
}

func NewPropertyRepo(properties []models.Property) *PropertyRepo {
	return &PropertyRepo{properties: properties}
}

// Replace swaps the snapshot; the caller is expected to bump the engine's
// property-set version afterwards.
func (r *PropertyRepo) Replace(properties []models.Property) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.properties = properties
}

// ListCandidates applies the advisory hint to the snapshot. A listing in a
// different currency than the hint is kept: only the engine knows whether a
// conversion rate exists.
func (r *PropertyRepo) ListCandidates(_ context.Context, hint repository.FilterHint) ([]models.Property, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Property, 0, len(r.properties))
	for _, p := range r.properties {
		if !matchesHint(p, hint) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func matchesHint(p models.Property, hint repository.FilterHint) bool {
	if hint.Type != "" && p.Type != hint.Type {
		return false
	}
	if len(hint.Zones) > 0 && p.Zone != "" {
		matched := false
		for _, z := range hint.Zones {
			if strings.EqualFold(strings.TrimSpace(z), strings.TrimSpace(p.Zone)) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	sameCurrency := hint.Currency == "" || strings.EqualFold(p.Price.Currency, hint.Currency)
	if sameCurrency {
		// Price bounds are advisory and already widened by the caller; a
		// foreign-currency amount is not comparable here, so skip the check.
		if hint.PriceMin > 0 && p.Price.Amount < hint.PriceMin {
			return false
		}
		if hint.PriceMax > 0 && p.Price.Amount > hint.PriceMax {
			return false
		}
	}
	return true
}

// ServiceRepo serves a static set of urban services.
type ServiceRepo struct {
	mu       sync.RWMutex
	services []models.Service
}

func NewServiceRepo(services []models.Service) *ServiceRepo {
	return &ServiceRepo{services: services}
}

func (r *ServiceRepo) Replace(services []models.Service) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.services = services
}

func (r *ServiceRepo) ListServices(_ context.Context) ([]models.Service, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Service, len(r.services))
	copy(out, r.services)
	return out, nil
}

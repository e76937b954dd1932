// internal/models/service.go
package models

// ServiceCategory groups urban services for coverage evaluation.
type ServiceCategory string

const (
	CategoryEducation  ServiceCategory = "education"
	CategoryHealth     ServiceCategory = "health"
	CategoryTransport  ServiceCategory = "transport"
	CategoryCommerce   ServiceCategory = "commerce"
	CategorySecurity   ServiceCategory = "security"
	CategoryRecreation ServiceCategory = "recreation"
	CategoryOther      ServiceCategory = "other"
)

// AllCategories is the fixed evaluation order; iterating it instead of a
// map keeps coverage output deterministic.
var AllCategories = []ServiceCategory{
	CategoryEducation,
	CategoryHealth,
	CategoryTransport,
	CategoryCommerce,
	CategorySecurity,
	CategoryRecreation,
	CategoryOther,
}

// Service is one georeferenced urban amenity.
type Service struct {
	ID          string          `json:"id"`
	Coordinate  Coordinate      `json:"coordinate"`
	Category    ServiceCategory `json:"category"`
	Subcategory string          `json:"subcategory,omitempty"`
	Name        string          `json:"name,omitempty"`
}

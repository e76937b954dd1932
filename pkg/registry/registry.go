// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xeipuuv/gojsonschema"
)

// LoadRegistry reads and validates a criteria registry file.
func LoadRegistry(path string) (*CriteriaRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := validateAgainst(registrySchema, data); err != nil {
		return nil, fmt.Errorf("registry %s: %w", path, err)
	}
	var reg CriteriaRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, err
	}
	return &reg, nil
}

// Default returns the built-in criteria catalog used when no registry file
// is deployed.
func Default() *CriteriaRegistry {
	return &CriteriaRegistry{
		Version: "1.0.0",
		Criteria: []Criterion{
			{Key: "location", DisplayName: "Location", Description: "Zone preference match or distance from the operative area", DefaultWeight: 0.35, RationaleTemplate: "zone match: {zone}"},
			{Key: "price", DisplayName: "Price fit", Description: "Fit of the listing price inside the client budget", DefaultWeight: 0.25, RationaleTemplate: "price within budget"},
			{Key: "services", DisplayName: "Service coverage", Description: "Proximity to urban services, required categories weighted double", DefaultWeight: 0.20, RationaleTemplate: "{category}: {service} at {distance} m"},
			{Key: "features", DisplayName: "Features", Description: "Structural minimums and property type match", DefaultWeight: 0.15, RationaleTemplate: "{met}/{requested} structural minimums met"},
			{Key: "availability", DisplayName: "Availability", Description: "Commercial status of the listing", DefaultWeight: 0.05, RationaleTemplate: "status: {status}"},
		},
	}
}

// Find returns the criterion for a weight key, or false when unknown.
func (r *CriteriaRegistry) Find(key string) (Criterion, bool) {
	for _, c := range r.Criteria {
		if c.Key == key {
			return c, true
		}
	}
	return Criterion{}, false
}

// ValidateProfileJSON checks a raw profile document against the published
// schema. Returns the individual violations, empty when valid.
func ValidateProfileJSON(doc []byte) ([]string, error) {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(profileSchema),
		gojsonschema.NewBytesLoader(doc),
	)
	if err != nil {
		return nil, fmt.Errorf("profile validation: %w", err)
	}
	if result.Valid() {
		return nil, nil
	}
	errs := make([]string, len(result.Errors()))
	for i, desc := range result.Errors() {
		errs[i] = desc.String()
	}
	return errs, nil
}

func validateAgainst(schema string, doc []byte) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schema),
		gojsonschema.NewBytesLoader(doc),
	)
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return fmt.Errorf("document validation failed: %v", errs)
	}
	return nil
}

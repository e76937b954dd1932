// pkg/registry/schema.go
package registry

// CriteriaRegistry is the published catalog of scoring criteria. External
// tooling reads it to render explanations and to know which weight keys a
// profile may override.
type CriteriaRegistry struct {
	Version     string      `json:"version"`
	LastUpdated string      `json:"lastUpdated"`
	Criteria    []Criterion `json:"criteria"`
}

// Criterion describes one scoring dimension.
type Criterion struct {
	Key               string  `json:"key"`
	DisplayName       string  `json:"displayName"`
	Description       string  `json:"description"`
	DefaultWeight     float64 `json:"defaultWeight"`
	RationaleTemplate string  `json:"rationaleTemplate"`
}

// registrySchema validates a registry document on load.
const registrySchema = `{
  "type": "object",
  "required": ["version", "criteria"],
  "properties": {
    "version": {"type": "string", "minLength": 1},
    "lastUpdated": {"type": "string"},
    "criteria": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["key", "displayName", "defaultWeight"],
        "properties": {
          "key": {"type": "string", "enum": ["location", "price", "services", "features", "availability"]},
          "displayName": {"type": "string", "minLength": 1},
          "description": {"type": "string"},
          "defaultWeight": {"type": "number", "minimum": 0, "maximum": 1},
          "rationaleTemplate": {"type": "string"}
        }
      }
    }
  }
}`

// profileSchema validates a client profile document arriving as JSON
// before it is bound to the typed model.
const profileSchema = `{
  "type": "object",
  "required": ["clientId", "currency"],
  "properties": {
    "clientId": {"type": "string", "minLength": 1},
    "budgetMin": {"type": "number", "minimum": 0},
    "budgetMax": {"type": "number", "minimum": 0},
    "currency": {"type": "string", "minLength": 3, "maxLength": 3},
    "preferredZones": {"type": "array", "items": {"type": "string"}},
    "propertyType": {"type": "string", "enum": ["house", "apartment", "land", "penthouse", "office", "other"]},
    "minBedrooms": {"type": "integer", "minimum": 0},
    "minBathrooms": {"type": "integer", "minimum": 0},
    "minBuiltAreaM2": {"type": "number", "minimum": 0},
    "requiredServices": {
      "type": "array",
      "items": {"type": "string", "enum": ["education", "health", "transport", "commerce", "security", "recreation", "other"]}
    },
    "weights": {
      "type": "object",
      "properties": {
        "location": {"type": "number", "minimum": 0},
        "price": {"type": "number", "minimum": 0},
        "services": {"type": "number", "minimum": 0},
        "features": {"type": "number", "minimum": 0},
        "availability": {"type": "number", "minimum": 0}
      }
    },
    "conversionRates": {
      "type": "object",
      "additionalProperties": {"type": "number", "exclusiveMinimum": 0}
    }
  }
}`

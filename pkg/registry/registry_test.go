// pkg/registry/registry_test.go
package registry

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRegistryFile(t *testing.T, reg *CriteriaRegistry) string {
	t.Helper()
	data, err := json.Marshal(reg)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "criteria.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestLoadRegistry_RoundTrip(t *testing.T) {
	path := writeRegistryFile(t, Default())

	reg, err := LoadRegistry(path)
	require.NoError(t, err)
	assert.Len(t, reg.Criteria, 5)

	c, ok := reg.Find("price")
	require.True(t, ok)
	assert.Equal(t, 0.25, c.DefaultWeight)
}

func TestLoadRegistry_RejectsUnknownCriterionKey(t *testing.T) {
	reg := Default()
	reg.Criteria[0].Key = "vibes"
	path := writeRegistryFile(t, reg)

	_, err := LoadRegistry(path)
	assert.Error(t, err)
}

func TestLoadRegistry_RejectsMissingVersion(t *testing.T) {
	reg := Default()
	reg.Version = ""
	path := writeRegistryFile(t, reg)

	_, err := LoadRegistry(path)
	assert.Error(t, err)
}

func TestLoadRegistry_MissingFile(t *testing.T) {
	_, err := LoadRegistry(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}

func TestDefault_WeightsMatchEngineSplit(t *testing.T) {
	var sum float64
	for _, c := range Default().Criteria {
		sum += c.DefaultWeight
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestValidateProfileJSON(t *testing.T) {
	tests := []struct {
		name       string
		doc        string
		violations bool
	}{
		{
			name: "valid profile",
			doc: `{
				"clientId": "client-1",
				"budgetMin": 100000,
				"budgetMax": 150000,
				"currency": "USD",
				"preferredZones": ["Equipetrol"],
				"requiredServices": ["education", "health"],
				"weights": {"location": 0.5, "price": 0.5}
			}`,
			violations: false,
		},
		{
			name:       "penthouse type accepted",
			doc:        `{"clientId": "c1", "currency": "USD", "propertyType": "penthouse"}`,
			violations: false,
		},
		{
			name:       "unknown property type",
			doc:        `{"clientId": "c1", "currency": "USD", "propertyType": "warehouse"}`,
			violations: true,
		},
		{
			name:       "missing client id",
			doc:        `{"currency": "USD"}`,
			violations: true,
		},
		{
			name:       "bad currency length",
			doc:        `{"clientId": "c1", "currency": "DOLLARS"}`,
			violations: true,
		},
		{
			name:       "unknown service category",
			doc:        `{"clientId": "c1", "currency": "USD", "requiredServices": ["casinos"]}`,
			violations: true,
		},
		{
			name:       "negative weight",
			doc:        `{"clientId": "c1", "currency": "USD", "weights": {"location": -1}}`,
			violations: true,
		},
		{
			name:       "zero conversion rate",
			doc:        `{"clientId": "c1", "currency": "USD", "conversionRates": {"BOB": 0}}`,
			violations: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			violations, err := ValidateProfileJSON([]byte(tt.doc))
			require.NoError(t, err)
			if tt.violations {
				assert.NotEmpty(t, violations)
			} else {
				assert.Empty(t, violations)
			}
		})
	}
}

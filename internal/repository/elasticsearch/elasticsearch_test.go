// internal/repository/elasticsearch/elasticsearch_test.go
package elasticsearch

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"property-advisor/internal/models"
	"property-advisor/internal/repository"
)

func queryJSON(t *testing.T, hint repository.FilterHint) string {
	data, err := json.Marshal(buildCandidateQuery(hint))
	require.NoError(t, err)
	return string(data)
}

func TestBuildCandidateQuery_EmptyHintMatchesAll(t *testing.T) {
	q := queryJSON(t, repository.FilterHint{})
	assert.JSONEq(t, `{"query":{"match_all":{}}}`, q)
}

func TestBuildCandidateQuery_TypeFilter(t *testing.T) {
	q := queryJSON(t, repository.FilterHint{Type: models.PropertyHouse})
	assert.Contains(t, q, `"term":{"property_type":"house"}`)
}

func TestBuildCandidateQuery_ZonesKeepUnlabeledListings(t *testing.T) {
	q := queryJSON(t, repository.FilterHint{Zones: []string{"Centro", "Equipetrol"}})

	assert.Contains(t, q, `"terms":{"zone":["Centro","Equipetrol"]}`)
	// The should branch admitting documents without a zone field.
	assert.Contains(t, q, `"exists":{"field":"zone"}`)
	assert.Contains(t, q, `"minimum_should_match":1`)
}

func TestBuildCandidateQuery_PriceBoundsOnlyForHintCurrency(t *testing.T) {
	q := queryJSON(t, repository.FilterHint{Currency: "USD", PriceMin: 50000, PriceMax: 225000})

	assert.Contains(t, q, `"range":{"price_amount":{"gte":50000,"lte":225000}}`)
	// Foreign-currency listings bypass the range clause.
	assert.Contains(t, q, `"term":{"price_currency":"USD"}`)
}

func TestBuildCandidateQuery_NoPriceClauseWithoutCurrency(t *testing.T) {
	q := queryJSON(t, repository.FilterHint{PriceMin: 50000, PriceMax: 225000})
	assert.NotContains(t, q, "price_amount")
}

func TestDocToProperty(t *testing.T) {
	lat, lng := -17.7833, -63.1821
	p := docToProperty(propertyDoc{
		ID:        "prop-1",
		Latitude:  &lat,
		Longitude: &lng,
		Price:     120000,
		Currency:  "USD",
		Type:      "house",
		Bedrooms:  3,
		Bathrooms: 2,
		BuiltArea: 200,
		LotArea:   350,
		Zone:      "Centro",
		Status:    "active",
		Ingested:  "2026-08-01T12:00:00Z",
	})

	require.NotNil(t, p.Coordinate)
	assert.Equal(t, -17.7833, p.Coordinate.Latitude)
	assert.Equal(t, models.PropertyHouse, p.Type)
	assert.Equal(t, models.AvailabilityActive, p.Status)
	assert.Equal(t, 2026, p.IngestedAt.Year())
}

func TestDocToProperty_MissingGeodata(t *testing.T) {
	p := docToProperty(propertyDoc{ID: "prop-2", Price: 95000, Currency: "USD"})
	assert.Nil(t, p.Coordinate)
	assert.False(t, p.HasValidCoordinate())
}

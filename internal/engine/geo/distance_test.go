// internal/engine/geo/distance_test.go
package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"property-advisor/internal/common/errors"
	"property-advisor/internal/models"
)

var (
	plazaPrincipal = models.Coordinate{Latitude: -17.7833, Longitude: -63.1821}
	ventura        = models.Coordinate{Latitude: -17.7612, Longitude: -63.1976}
)

func TestDistance_ZeroForIdenticalPoints(t *testing.T) {
	d, err := Distance(plazaPrincipal, plazaPrincipal)
	require.NoError(t, err)
	assert.Equal(t, 0.0, d)
}

func TestDistance_Symmetric(t *testing.T) {
	ab, err := Distance(plazaPrincipal, ventura)
	require.NoError(t, err)
	ba, err := Distance(ventura, plazaPrincipal)
	require.NoError(t, err)
	assert.Equal(t, ab, ba)
}

func TestDistance_KnownDistances(t *testing.T) {
	tests := []struct {
		name      string
		a, b      models.Coordinate
		expected  float64
		tolerance float64
	}{
		{
			// One degree of latitude along a meridian.
			name:      "one degree latitude",
			a:         models.Coordinate{Latitude: 0, Longitude: 0},
			b:         models.Coordinate{Latitude: 1, Longitude: 0},
			expected:  111195,
			tolerance: 50,
		},
		{
			name:      "quarter circumference pole to equator",
			a:         models.Coordinate{Latitude: 90, Longitude: 0},
			b:         models.Coordinate{Latitude: 0, Longitude: 0},
			expected:  10007543,
			tolerance: 1000,
		},
		{
			name:      "across the city",
			a:         plazaPrincipal,
			b:         ventura,
			expected:  2930,
			tolerance: 100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Distance(tt.a, tt.b)
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, d, tt.tolerance)
		})
	}
}

func TestDistance_InvalidCoordinates(t *testing.T) {
	tests := []struct {
		name string
		a, b models.Coordinate
	}{
		{"latitude above range", models.Coordinate{Latitude: 91, Longitude: 0}, plazaPrincipal},
		{"latitude below range", models.Coordinate{Latitude: -90.5, Longitude: 0}, plazaPrincipal},
		{"longitude above range", plazaPrincipal, models.Coordinate{Latitude: 0, Longitude: 180.1}},
		{"longitude below range", plazaPrincipal, models.Coordinate{Latitude: 0, Longitude: -181}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Distance(tt.a, tt.b)
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidCoordinate))
		})
	}
}

func TestDistance_BoundaryCoordinatesAreValid(t *testing.T) {
	corners := []models.Coordinate{
		{Latitude: 90, Longitude: 180},
		{Latitude: -90, Longitude: -180},
	}
	for _, c := range corners {
		_, err := Distance(c, plazaPrincipal)
		assert.NoError(t, err)
	}
}

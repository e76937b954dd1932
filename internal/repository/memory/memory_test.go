// internal/repository/memory/memory_test.go
package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"property-advisor/internal/models"
	"property-advisor/internal/repository"
)

func sampleProperties() []models.Property {
	return []models.Property{
		{ID: "p1", Zone: "Centro", Type: models.PropertyHouse, Price: models.Price{Amount: 120000, Currency: "USD"}},
		{ID: "p2", Zone: "Equipetrol", Type: models.PropertyApartment, Price: models.Price{Amount: 95000, Currency: "USD"}},
		{ID: "p3", Zone: "", Type: models.PropertyHouse, Price: models.Price{Amount: 300000, Currency: "USD"}},
		{ID: "p4", Zone: "Centro", Type: models.PropertyHouse, Price: models.Price{Amount: 870000, Currency: "BOB"}},
	}
}

func ids(props []models.Property) []string {
	out := make([]string, len(props))
	for i, p := range props {
		out[i] = p.ID
	}
	return out
}

func TestListCandidates_EmptyHintReturnsAll(t *testing.T) {
	repo := NewPropertyRepo(sampleProperties())
	props, err := repo.ListCandidates(context.Background(), repository.FilterHint{})
	require.NoError(t, err)
	assert.Len(t, props, 4)
}

func TestListCandidates_ZoneHint(t *testing.T) {
	repo := NewPropertyRepo(sampleProperties())

	props, err := repo.ListCandidates(context.Background(), repository.FilterHint{Zones: []string{"centro"}})
	require.NoError(t, err)

	// Unlabeled p3 passes through; zone match is case-insensitive.
	assert.Equal(t, []string{"p1", "p3", "p4"}, ids(props))
}

func TestListCandidates_TypeHint(t *testing.T) {
	repo := NewPropertyRepo(sampleProperties())

	props, err := repo.ListCandidates(context.Background(), repository.FilterHint{Type: models.PropertyApartment})
	require.NoError(t, err)
	assert.Equal(t, []string{"p2"}, ids(props))
}

func TestListCandidates_PriceBoundsSkipForeignCurrency(t *testing.T) {
	repo := NewPropertyRepo(sampleProperties())

	props, err := repo.ListCandidates(context.Background(), repository.FilterHint{
		Currency: "USD",
		PriceMin: 100000,
		PriceMax: 200000,
	})
	require.NoError(t, err)

	// p2 and p3 fall outside the USD bounds; the BOB listing stays in.
	assert.Equal(t, []string{"p1", "p4"}, ids(props))
}

func TestReplace_SwapsSnapshot(t *testing.T) {
	repo := NewPropertyRepo(sampleProperties())
	repo.Replace([]models.Property{{ID: "fresh", Price: models.Price{Amount: 1, Currency: "USD"}}})

	props, err := repo.ListCandidates(context.Background(), repository.FilterHint{})
	require.NoError(t, err)
	assert.Equal(t, []string{"fresh"}, ids(props))
}

func TestServiceRepo_ReturnsCopy(t *testing.T) {
	repo := NewServiceRepo([]models.Service{
		{ID: "s1", Category: models.CategoryHealth},
	})

	svcs, err := repo.ListServices(context.Background())
	require.NoError(t, err)
	require.Len(t, svcs, 1)

	svcs[0].ID = "mutated"
	again, err := repo.ListServices(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "s1", again[0].ID)
}

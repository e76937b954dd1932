// internal/repository/postgres/postgres_test.go
package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"property-advisor/internal/common/errors"
	"property-advisor/internal/common/logger"
	"property-advisor/internal/models"
	"property-advisor/internal/repository"
)

var propertyRows = []string{
	"id", "latitude", "longitude", "price_amount", "price_currency",
	"property_type", "bedrooms", "bathrooms", "built_area_m2", "lot_area_m2",
	"zone", "status", "source_file", "ingested_at",
}

func TestListCandidates_NoFilters(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	ingested := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT .+ FROM properties ORDER BY id").
		WillReturnRows(sqlmock.NewRows(propertyRows).
			AddRow("prop-1", -17.7833, -63.1821, 120000.0, "USD",
				"house", 3, 2, 200.0, 350.0,
				"Centro", "active", "batch-2026-08.csv", ingested).
			AddRow("prop-2", nil, nil, 95000.0, "USD",
				"apartment", 2, 1, 90.0, 0.0,
				nil, "reserved", nil, nil))

	repo := NewPropertyRepo(db, logger.NewNoOpLogger())
	props, err := repo.ListCandidates(context.Background(), repository.FilterHint{})
	require.NoError(t, err)
	require.Len(t, props, 2)

	assert.Equal(t, "prop-1", props[0].ID)
	require.NotNil(t, props[0].Coordinate)
	assert.Equal(t, -17.7833, props[0].Coordinate.Latitude)
	assert.Equal(t, "Centro", props[0].Zone)
	assert.Equal(t, ingested, props[0].IngestedAt)

	assert.Equal(t, "prop-2", props[1].ID)
	assert.Nil(t, props[1].Coordinate)
	assert.Equal(t, "", props[1].Zone)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListCandidates_HintBuildsWhereClause(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT .+ FROM properties WHERE \(zone = ANY\(\$1\) OR zone = '' OR zone IS NULL\) AND property_type = \$2 AND \(price_currency <> \$3 OR price_amount >= \$4\) AND \(price_currency <> \$5 OR price_amount <= \$6\) ORDER BY id`).
		WillReturnRows(sqlmock.NewRows(propertyRows))

	repo := NewPropertyRepo(db, logger.NewNoOpLogger())
	_, err = repo.ListCandidates(context.Background(), repository.FilterHint{
		Zones:    []string{"Centro", "Equipetrol"},
		Type:     models.PropertyHouse,
		Currency: "USD",
		PriceMin: 50000,
		PriceMax: 225000,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListCandidates_QueryFailureWrapped(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT .+ FROM properties").
		WillReturnError(fmt.Errorf("connection refused"))

	repo := NewPropertyRepo(db, logger.NewNoOpLogger())
	_, err = repo.ListCandidates(context.Background(), repository.FilterHint{})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeRepositoryError))
}

func TestListServices(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT .+ FROM services ORDER BY id").
		WillReturnRows(sqlmock.NewRows([]string{"id", "latitude", "longitude", "category", "subcategory", "name"}).
			AddRow("svc-1", -17.7838, -63.1828, "education", "primary", "Colegio Centro").
			AddRow("svc-2", -17.7820, -63.1850, "health", nil, nil))

	repo := NewServiceRepo(db, logger.NewNoOpLogger())
	svcs, err := repo.ListServices(context.Background())
	require.NoError(t, err)
	require.Len(t, svcs, 2)

	assert.Equal(t, models.CategoryEducation, svcs[0].Category)
	assert.Equal(t, "Colegio Centro", svcs[0].Name)
	assert.Equal(t, "", svcs[1].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListServices_QueryFailureWrapped(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT .+ FROM services").
		WillReturnError(fmt.Errorf("connection refused"))

	repo := NewServiceRepo(db, logger.NewNoOpLogger())
	_, err = repo.ListServices(context.Background())
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeRepositoryError))
}

// internal/repository/postgres/postgres.go
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"

	apperrors "property-advisor/internal/common/errors"
	"property-advisor/internal/common/logger"
	"property-advisor/internal/models"
	"property-advisor/internal/repository"
)

// PropertyRepo reads listings from PostgreSQL. The WHERE clause built from
// the hint is advisory: it narrows the candidate set but the engine still
// rescores everything returned.
type PropertyRepo struct {
	db  *sql.DB
	log logger.Logger
}

func NewPropertyRepo(db *sql.DB, log logger.Logger) *PropertyRepo {
	return &PropertyRepo{db: db, log: log}
}

const propertyColumns = `id, latitude, longitude, price_amount, price_currency,
	property_type, bedrooms, bathrooms, built_area_m2, lot_area_m2,
	zone, status, source_file, ingested_at`

func (r *PropertyRepo) ListCandidates(ctx context.Context, hint repository.FilterHint) ([]models.Property, error) {
	query, args := buildCandidateQuery(hint)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewRepositoryError("postgres list candidates", err)
	}
	defer rows.Close()

	var out []models.Property
	for rows.Next() {
		var (
			p        models.Property
			lat, lng sql.NullFloat64
			zone     sql.NullString
			source   sql.NullString
			ingested sql.NullTime
		)
		err := rows.Scan(&p.ID, &lat, &lng, &p.Price.Amount, &p.Price.Currency,
			&p.Type, &p.Bedrooms, &p.Bathrooms, &p.BuiltArea, &p.LotArea,
			&zone, &p.Status, &source, &ingested)
		if err != nil {
			return nil, apperrors.NewRepositoryError("postgres scan property", err)
		}
		if lat.Valid && lng.Valid {
			p.Coordinate = &models.Coordinate{Latitude: lat.Float64, Longitude: lng.Float64}
		}
		p.Zone = zone.String
		p.SourceFile = source.String
		if ingested.Valid {
			p.IngestedAt = ingested.Time
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewRepositoryError("postgres iterate properties", err)
	}

	r.log.Debug("candidates fetched", map[string]interface{}{"count": len(out)})
	return out, nil
}

func buildCandidateQuery(hint repository.FilterHint) (string, []interface{}) {
	var (
		conds []string
		args  []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if len(hint.Zones) > 0 {
		conds = append(conds, fmt.Sprintf("(zone = ANY(%s) OR zone = '' OR zone IS NULL)", arg(pq.Array(hint.Zones))))
	}
	if hint.Type != "" {
		conds = append(conds, fmt.Sprintf("property_type = %s", arg(string(hint.Type))))
	}
	// Price bounds only apply to rows in the hint currency; foreign-currency
	// rows pass through for the engine to convert or annotate.
	if hint.Currency != "" && hint.PriceMin > 0 {
		conds = append(conds, fmt.Sprintf("(price_currency <> %s OR price_amount >= %s)", arg(hint.Currency), arg(hint.PriceMin)))
	}
	if hint.Currency != "" && hint.PriceMax > 0 {
		conds = append(conds, fmt.Sprintf("(price_currency <> %s OR price_amount <= %s)", arg(hint.Currency), arg(hint.PriceMax)))
	}

	query := "SELECT " + propertyColumns + " FROM properties"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY id"
	return query, args
}

// ServiceRepo reads the urban-services catalog from PostgreSQL.
type ServiceRepo struct {
	db  *sql.DB
	log logger.Logger
}

func NewServiceRepo(db *sql.DB, log logger.Logger) *ServiceRepo {
	return &ServiceRepo{db: db, log: log}
}

func (r *ServiceRepo) ListServices(ctx context.Context) ([]models.Service, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, latitude, longitude, category, subcategory, name FROM services ORDER BY id`)
	if err != nil {
		return nil, apperrors.NewRepositoryError("postgres list services", err)
	}
	defer rows.Close()

	var out []models.Service
	for rows.Next() {
		var (
			s           models.Service
			subcategory sql.NullString
			name        sql.NullString
		)
		if err := rows.Scan(&s.ID, &s.Coordinate.Latitude, &s.Coordinate.Longitude, &s.Category, &subcategory, &name); err != nil {
			return nil, apperrors.NewRepositoryError("postgres scan service", err)
		}
		s.Subcategory = subcategory.String
		s.Name = name.String
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewRepositoryError("postgres iterate services", err)
	}
	return out, nil
}

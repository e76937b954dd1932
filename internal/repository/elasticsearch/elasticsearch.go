// internal/repository/elasticsearch/elasticsearch.go
package elasticsearch

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	apperrors "property-advisor/internal/common/errors"
	"property-advisor/internal/common/logger"
	"property-advisor/internal/models"
	"property-advisor/internal/repository"
)

const defaultPageSize = 500

// PropertyRepo reads listings from an Elasticsearch index. The bool query
// built from the hint is the advisory pre-filter; scoring happens in the
// engine, not in ES relevance.
type PropertyRepo struct {
	client *elasticsearch.Client
	index  string
	log    logger.Logger
}

func NewPropertyRepo(client *elasticsearch.Client, index string, log logger.Logger) *PropertyRepo {
	return &PropertyRepo{client: client, index: index, log: log}
}

type propertyDoc struct {
	ID        string   `json:"id"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Price     float64  `json:"price_amount"`
	Currency  string   `json:"price_currency"`
	Type      string   `json:"property_type"`
	Bedrooms  int      `json:"bedrooms"`
	Bathrooms int      `json:"bathrooms"`
	BuiltArea float64  `json:"built_area_m2"`
	LotArea   float64  `json:"lot_area_m2"`
	Zone      string   `json:"zone"`
	Status    string   `json:"status"`
	Source    string   `json:"source_file"`
	Ingested  string   `json:"ingested_at"`
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			Source propertyDoc `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func (r *PropertyRepo) ListCandidates(ctx context.Context, hint repository.FilterHint) ([]models.Property, error) {
	body, err := json.Marshal(buildCandidateQuery(hint))
	if err != nil {
		return nil, apperrors.NewRepositoryError("elasticsearch marshal query", err)
	}

	size := defaultPageSize
	req := esapi.SearchRequest{
		Index: []string{r.index},
		Body:  strings.NewReader(string(body)),
		Size:  &size,
	}

	res, err := req.Do(ctx, r.client)
	if err != nil {
		return nil, apperrors.NewRepositoryError("elasticsearch search", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, apperrors.NewRepositoryError("elasticsearch search", errStatus(res.Status()))
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, apperrors.NewRepositoryError("elasticsearch decode response", err)
	}

	out := make([]models.Property, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		out = append(out, docToProperty(hit.Source))
	}

	r.log.Debug("candidates fetched", map[string]interface{}{"count": len(out)})
	return out, nil
}

func buildCandidateQuery(hint repository.FilterHint) map[string]interface{} {
	filterClauses := []interface{}{}
	shouldClauses := []interface{}{}

	if hint.Type != "" {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"property_type": string(hint.Type)},
		})
	}

	if len(hint.Zones) > 0 {
		// Zone is advisory: unlabeled listings stay in the candidate set.
		shouldClauses = append(shouldClauses,
			map[string]interface{}{
				"terms": map[string]interface{}{"zone": hint.Zones},
			},
			map[string]interface{}{
				"bool": map[string]interface{}{
					"must_not": map[string]interface{}{
						"exists": map[string]interface{}{"field": "zone"},
					},
				},
			},
		)
	}

	if hint.Currency != "" && (hint.PriceMin > 0 || hint.PriceMax > 0) {
		priceRange := map[string]interface{}{}
		if hint.PriceMin > 0 {
			priceRange["gte"] = hint.PriceMin
		}
		if hint.PriceMax > 0 {
			priceRange["lte"] = hint.PriceMax
		}
		// Foreign-currency listings pass through for the engine to convert.
		filterClauses = append(filterClauses, map[string]interface{}{
			"bool": map[string]interface{}{
				"should": []interface{}{
					map[string]interface{}{
						"bool": map[string]interface{}{
							"must_not": map[string]interface{}{
								"term": map[string]interface{}{"price_currency": hint.Currency},
							},
						},
					},
					map[string]interface{}{
						"range": map[string]interface{}{"price_amount": priceRange},
					},
				},
				"minimum_should_match": 1,
			},
		})
	}

	boolQuery := map[string]interface{}{}
	if len(filterClauses) > 0 {
		boolQuery["filter"] = filterClauses
	}
	if len(shouldClauses) > 0 {
		boolQuery["should"] = shouldClauses
		boolQuery["minimum_should_match"] = 1
	}
	if len(boolQuery) == 0 {
		return map[string]interface{}{
			"query": map[string]interface{}{"match_all": map[string]interface{}{}},
		}
	}
	return map[string]interface{}{
		"query": map[string]interface{}{"bool": boolQuery},
	}
}

func docToProperty(doc propertyDoc) models.Property {
	p := models.Property{
		ID:         doc.ID,
		Price:      models.Price{Amount: doc.Price, Currency: doc.Currency},
		Type:       models.PropertyType(doc.Type),
		Bedrooms:   doc.Bedrooms,
		Bathrooms:  doc.Bathrooms,
		BuiltArea:  doc.BuiltArea,
		LotArea:    doc.LotArea,
		Zone:       doc.Zone,
		Status:     models.AvailabilityStatus(doc.Status),
		SourceFile: doc.Source,
	}
	if doc.Latitude != nil && doc.Longitude != nil {
		p.Coordinate = &models.Coordinate{Latitude: *doc.Latitude, Longitude: *doc.Longitude}
	}
	if doc.Ingested != "" {
		if t, err := time.Parse(time.RFC3339, doc.Ingested); err == nil {
			p.IngestedAt = t
		}
	}
	return p
}

type errStatus string

func (e errStatus) Error() string { return string(e) }

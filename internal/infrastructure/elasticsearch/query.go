package elasticsearch

import (
	"encoding/json"
	"fmt"

	"github.com/geocoding-gateway/internal/config"
	"github.com/geocoding-gateway/internal/domain"
)

// buildSearchBody translates normalized filters into the backend query
// body. The ranking itself belongs to the backend, the gateway only
// shapes constraints.
func buildSearchBody(
	q string,
	filters domain.Filters,
	settings config.QueryConfig,
	explain bool,
) map[string]interface{} {
	must := []interface{}{
		map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  q,
				"fields": []string{"label", "name", "zip_codes"},
			},
		},
	}

	var filter []interface{}
	if len(filters.Datasets) > 0 {
		filter = append(filter, termsClause("dataset", filters.Datasets))
	}
	if len(filters.ZoneTypes) > 0 {
		filter = append(filter, termsClause("zone_type", filters.ZoneTypes))
	}
	if len(filters.POITypes) > 0 {
		filter = append(filter, termsClause("poi_type.id", filters.POITypes))
	}
	if filters.Shape != nil {
		filter = append(filter, shapeClause(filters.Shape))
	}

	boolQuery := map[string]interface{}{"must": must}
	if len(filter) > 0 {
		boolQuery["filter"] = filter
	}

	body := map[string]interface{}{
		"query":   map[string]interface{}{"bool": boolQuery},
		"size":    settings.Limit,
		"timeout": fmt.Sprintf("%dms", settings.Timeout.Milliseconds()),
	}
	if explain {
		body["explain"] = true
	}

	if filters.Coord != nil {
		body["sort"] = []interface{}{
			map[string]interface{}{
				"_geo_distance": map[string]interface{}{
					"coord": map[string]interface{}{
						"lat": filters.Coord.Lat,
						"lon": filters.Coord.Lon,
					},
					"order": "asc",
					"unit":  "m",
				},
			},
		}
	}

	return body
}

// buildReverseBody matches everything within a fixed radius of the
// point and lets distance sorting do the ranking.
func buildReverseBody(coord domain.Coord, settings config.QueryConfig) map[string]interface{} {
	point := map[string]interface{}{
		"lat": coord.Lat,
		"lon": coord.Lon,
	}

	return map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"filter": []interface{}{
					map[string]interface{}{
						"geo_distance": map[string]interface{}{
							"distance": "500m",
							"coord":    point,
						},
					},
				},
			},
		},
		"sort": []interface{}{
			map[string]interface{}{
				"_geo_distance": map[string]interface{}{
					"coord": point,
					"order": "asc",
					"unit":  "m",
				},
			},
		},
		"size":    settings.Limit,
		"timeout": fmt.Sprintf("%dms", settings.Timeout.Milliseconds()),
	}
}

func termsClause(field string, values []string) map[string]interface{} {
	return map[string]interface{}{
		"terms": map[string]interface{}{field: values},
	}
}

// shapeClause restricts documents of the scoped types to the given
// geometry. Types outside the scope are unaffected.
func shapeClause(shape *domain.Shape) map[string]interface{} {
	inScope := termsClause("type", shape.Scope)
	contained := map[string]interface{}{
		"geo_shape": map[string]interface{}{
			"approx_coord": map[string]interface{}{
				"shape":    json.RawMessage(shape.Geometry),
				"relation": "intersects",
			},
		},
	}

	return map[string]interface{}{
		"bool": map[string]interface{}{
			"should": []interface{}{
				map[string]interface{}{
					"bool": map[string]interface{}{
						"must_not": []interface{}{inScope},
					},
				},
				map[string]interface{}{
					"bool": map[string]interface{}{
						"must": []interface{}{inScope, contained},
					},
				},
			},
			"minimum_should_match": 1,
		},
	}
}

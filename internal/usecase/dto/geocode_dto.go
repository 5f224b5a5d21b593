package dto

import (
	"github.com/geocoding-gateway/internal/domain"
)

// GeocodeQuery is the untyped wire form of a geocode request, built
// once per request from query parameters and immediately consumed into
// domain.Filters. Field names are camel-cased on the wire.
type GeocodeQuery struct {
	Q          string   `json:"q" validate:"required"`
	Lat        *float64 `json:"lat"`
	Lon        *float64 `json:"lon"`
	Shape      *string  `json:"shape"`
	ShapeScope []string `json:"shapeScope"`
	Datasets   []string `json:"datasets"`
	ZoneTypes  []string `json:"zoneTypes"`
	POITypes   []string `json:"poiTypes"`
}

// ToFilters normalizes the query into domain filters. Total and
// side-effect free. A coordinate half without its counterpart, or a
// shape without a scope (and vice versa), is dropped silently rather
// than rejected. Kept for wire compatibility, clients rely on it.
func (q GeocodeQuery) ToFilters() domain.Filters {
	f := domain.Filters{
		Datasets:  q.Datasets,
		ZoneTypes: q.ZoneTypes,
		POITypes:  q.POITypes,
	}

	if q.Lat != nil && q.Lon != nil {
		f.Coord = &domain.Coord{Lat: *q.Lat, Lon: *q.Lon}
	}

	if q.Shape != nil && q.ShapeScope != nil {
		f.Shape = &domain.Shape{Geometry: *q.Shape, Scope: q.ShapeScope}
	}

	return f
}

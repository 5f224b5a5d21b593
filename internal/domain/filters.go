package domain

// Coord is a WGS84 point, latitude first.
type Coord struct {
	Lat float64
	Lon float64
}

// Shape restricts a search to documents contained in a GeoJSON geometry.
// Scope lists the document types the restriction applies to.
type Shape struct {
	Geometry string
	Scope    []string
}

// Filters is the normalized form of a geocode request's constraints.
// Coord and Shape are joint fields: they are set only when the client
// supplied both halves of the pair, a partial pair collapses to nil
// without an error. Values are never mutated after construction.
type Filters struct {
	Coord     *Coord
	Shape     *Shape
	Datasets  []string
	ZoneTypes []string
	POITypes  []string
}

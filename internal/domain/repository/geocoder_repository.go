package repository

import (
	"context"
	"encoding/json"

	"github.com/geocoding-gateway/internal/config"
	"github.com/geocoding-gateway/internal/domain"
)

// GeocoderRepository is the gateway's view of the remote search
// backend. Implementations must be safe for concurrent use, a single
// instance is shared by all request handlers.
type GeocoderRepository interface {
	// Search runs a ranked document query for q under the given filters.
	Search(ctx context.Context, q string, filters domain.Filters, settings config.QueryConfig) ([]domain.Document, error)

	// Reverse finds the documents closest to coord, nearest first.
	Reverse(ctx context.Context, coord domain.Coord, settings config.QueryConfig) ([]domain.Document, error)

	// Explain returns the backend's scoring explanation for the top hit
	// of the same query, as an opaque payload.
	Explain(ctx context.Context, q string, filters domain.Filters, settings config.QueryConfig) (json.RawMessage, error)

	// Status probes the backend's health and version.
	Status(ctx context.Context) (*domain.StorageStatus, error)
}

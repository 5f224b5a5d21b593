package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/geocoding-gateway/internal/config"
	"github.com/geocoding-gateway/internal/domain"
	"github.com/geocoding-gateway/internal/domain/repository"
	"github.com/geocoding-gateway/internal/pkg/errors"
	"github.com/geocoding-gateway/internal/pkg/utils"
	"github.com/geocoding-gateway/internal/usecase/dto"
)

// GeocodeUseCase runs forward and reverse geocoding against the shared
// backend handle, with an optional response cache in front of forward
// queries.
type GeocodeUseCase struct {
	geocoderRepo repository.GeocoderRepository
	cacheRepo    repository.CacheRepository
	settings     config.QueryConfig
	logger       *zap.Logger
	cacheTTL     time.Duration
}

// NewGeocodeUseCase wires the use case. cacheRepo may be nil, forward
// queries then always hit the backend.
func NewGeocodeUseCase(
	geocoderRepo repository.GeocoderRepository,
	cacheRepo repository.CacheRepository,
	settings config.QueryConfig,
	logger *zap.Logger,
	cacheTTL time.Duration,
) *GeocodeUseCase {
	return &GeocodeUseCase{
		geocoderRepo: geocoderRepo,
		cacheRepo:    cacheRepo,
		settings:     settings,
		logger:       logger,
		cacheTTL:     cacheTTL,
	}
}

// Forward normalizes the query and runs a ranked search.
func (uc *GeocodeUseCase) Forward(ctx context.Context, query dto.GeocodeQuery) (*dto.SearchResponseBody, error) {
	filters := query.ToFilters()

	key := searchCacheKey(query)
	if cached := uc.cacheLookup(ctx, key); cached != nil {
		return cached, nil
	}

	docs, err := uc.geocoderRepo.Search(ctx, query.Q, filters, uc.settings)
	if err != nil {
		uc.logger.Error("Forward geocode failed", zap.String("q", query.Q), zap.Error(err))
		return nil, errors.ErrBackendQuery
	}

	body := dto.NewSearchResponseBody(docs)
	uc.cacheStore(ctx, key, &body)
	return &body, nil
}

// ForwardExplain runs the same query with backend-side scoring
// explanation. Never cached, the payload is diagnostic.
func (uc *GeocodeUseCase) ForwardExplain(ctx context.Context, query dto.GeocodeQuery) (*dto.ExplainResponseBody, error) {
	explanation, err := uc.geocoderRepo.Explain(ctx, query.Q, query.ToFilters(), uc.settings)
	if err != nil {
		uc.logger.Error("Explain failed", zap.String("q", query.Q), zap.Error(err))
		return nil, errors.ErrBackendQuery
	}

	body := dto.NewExplainResponseBody(explanation)
	return &body, nil
}

// Reverse finds the documents nearest to the given point.
func (uc *GeocodeUseCase) Reverse(ctx context.Context, lat, lon float64) (*dto.SearchResponseBody, error) {
	if !utils.ValidateCoordinates(lat, lon) {
		return nil, errors.ErrInvalidCoordinates
	}

	docs, err := uc.geocoderRepo.Reverse(ctx, domain.Coord{Lat: lat, Lon: lon}, uc.settings)
	if err != nil {
		uc.logger.Error("Reverse geocode failed",
			zap.Float64("lat", lat),
			zap.Float64("lon", lon),
			zap.Error(err))
		return nil, errors.ErrBackendQuery
	}

	body := dto.NewSearchResponseBody(docs)
	return &body, nil
}

func (uc *GeocodeUseCase) cacheLookup(ctx context.Context, key string) *dto.SearchResponseBody {
	if uc.cacheRepo == nil {
		return nil
	}
	raw, err := uc.cacheRepo.Get(ctx, key)
	if err != nil || raw == nil {
		return nil
	}
	var body dto.SearchResponseBody
	if err := json.Unmarshal(raw, &body); err != nil {
		uc.logger.Warn("Dropping undecodable cache entry", zap.String("key", key), zap.Error(err))
		return nil
	}
	return &body
}

// cacheStore is best effort, a cache failure never fails the request.
func (uc *GeocodeUseCase) cacheStore(ctx context.Context, key string, body *dto.SearchResponseBody) {
	if uc.cacheRepo == nil {
		return
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return
	}
	if err := uc.cacheRepo.Set(ctx, key, raw, uc.cacheTTL); err != nil {
		uc.logger.Warn("Failed to cache search response", zap.String("key", key), zap.Error(err))
	}
}

// searchCacheKey fingerprints the full query, two requests share an
// entry only when every filter matches.
func searchCacheKey(query dto.GeocodeQuery) string {
	raw, _ := json.Marshal(query)
	sum := sha256.Sum256(raw)
	return "search:" + hex.EncodeToString(sum[:])
}

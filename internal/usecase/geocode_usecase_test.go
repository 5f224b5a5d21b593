package usecase_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/geocoding-gateway/internal/config"
	"github.com/geocoding-gateway/internal/domain"
	apperrors "github.com/geocoding-gateway/internal/pkg/errors"
	"github.com/geocoding-gateway/internal/usecase"
	"github.com/geocoding-gateway/internal/usecase/dto"
)

// MockGeocoderRepository is a mock of GeocoderRepository
type MockGeocoderRepository struct {
	mock.Mock
}

func (m *MockGeocoderRepository) Search(ctx context.Context, q string, filters domain.Filters, settings config.QueryConfig) ([]domain.Document, error) {
	args := m.Called(ctx, q, filters, settings)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Document), args.Error(1)
}

func (m *MockGeocoderRepository) Reverse(ctx context.Context, coord domain.Coord, settings config.QueryConfig) ([]domain.Document, error) {
	args := m.Called(ctx, coord, settings)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Document), args.Error(1)
}

func (m *MockGeocoderRepository) Explain(ctx context.Context, q string, filters domain.Filters, settings config.QueryConfig) (json.RawMessage, error) {
	args := m.Called(ctx, q, filters, settings)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(json.RawMessage), args.Error(1)
}

func (m *MockGeocoderRepository) Status(ctx context.Context) (*domain.StorageStatus, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StorageStatus), args.Error(1)
}

// MockCacheRepository is a mock of CacheRepository
type MockCacheRepository struct {
	mock.Mock
}

func (m *MockCacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockCacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockCacheRepository) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func settings() config.QueryConfig {
	return config.QueryConfig{Index: "munin", Limit: 10, Timeout: 2 * time.Second}
}

func TestGeocodeUseCase_Forward(t *testing.T) {
	logger := zap.NewNop()
	ctx := context.Background()

	t.Run("success without cache", func(t *testing.T) {
		mockRepo := &MockGeocoderRepository{}
		uc := usecase.NewGeocodeUseCase(mockRepo, nil, settings(), logger, time.Minute)

		docs := []domain.Document{json.RawMessage(`{"id":"addr:1"}`)}
		mockRepo.On("Search", ctx, "bakery", mock.Anything, settings()).Return(docs, nil)

		result, err := uc.Forward(ctx, dto.GeocodeQuery{Q: "bakery", Datasets: []string{"oa"}})
		require.NoError(t, err)

		assert.Equal(t, 1, result.DocsCount)
		mockRepo.AssertExpectations(t)
	})

	t.Run("normalized filters reach the repository", func(t *testing.T) {
		mockRepo := &MockGeocoderRepository{}
		uc := usecase.NewGeocodeUseCase(mockRepo, nil, settings(), logger, time.Minute)

		lat, lon := 48.85, 2.35
		mockRepo.On("Search", ctx, "bakery",
			mock.MatchedBy(func(f domain.Filters) bool {
				return f.Coord != nil && f.Coord.Lat == lat && f.Coord.Lon == lon
			}),
			settings(),
		).Return([]domain.Document{}, nil)

		_, err := uc.Forward(ctx, dto.GeocodeQuery{Q: "bakery", Lat: &lat, Lon: &lon})
		require.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("backend failure maps to backend query error", func(t *testing.T) {
		mockRepo := &MockGeocoderRepository{}
		uc := usecase.NewGeocodeUseCase(mockRepo, nil, settings(), logger, time.Minute)

		mockRepo.On("Search", ctx, "bakery", mock.Anything, settings()).
			Return(nil, errors.New("connection reset"))

		_, err := uc.Forward(ctx, dto.GeocodeQuery{Q: "bakery"})
		assert.Equal(t, apperrors.ErrBackendQuery, err)
	})

	t.Run("cache hit skips the backend", func(t *testing.T) {
		mockRepo := &MockGeocoderRepository{}
		mockCache := &MockCacheRepository{}
		uc := usecase.NewGeocodeUseCase(mockRepo, mockCache, settings(), logger, time.Minute)

		cached, _ := json.Marshal(dto.NewSearchResponseBody([]domain.Document{
			json.RawMessage(`{"id":"addr:9"}`),
		}))
		mockCache.On("Get", ctx, mock.Anything).Return(cached, nil)

		result, err := uc.Forward(ctx, dto.GeocodeQuery{Q: "bakery"})
		require.NoError(t, err)

		assert.Equal(t, 1, result.DocsCount)
		mockRepo.AssertNotCalled(t, "Search")
	})

	t.Run("cache miss stores the fresh envelope", func(t *testing.T) {
		mockRepo := &MockGeocoderRepository{}
		mockCache := &MockCacheRepository{}
		uc := usecase.NewGeocodeUseCase(mockRepo, mockCache, settings(), logger, time.Minute)

		mockCache.On("Get", ctx, mock.Anything).Return(nil, nil)
		mockRepo.On("Search", ctx, "bakery", mock.Anything, settings()).
			Return([]domain.Document{}, nil)
		mockCache.On("Set", ctx, mock.Anything, mock.Anything, time.Minute).Return(nil)

		_, err := uc.Forward(ctx, dto.GeocodeQuery{Q: "bakery"})
		require.NoError(t, err)
		mockCache.AssertExpectations(t)
	})
}

func TestGeocodeUseCase_Reverse(t *testing.T) {
	logger := zap.NewNop()
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		mockRepo := &MockGeocoderRepository{}
		uc := usecase.NewGeocodeUseCase(mockRepo, nil, settings(), logger, time.Minute)

		docs := []domain.Document{json.RawMessage(`{"id":"addr:42"}`)}
		mockRepo.On("Reverse", ctx, domain.Coord{Lat: 48.85, Lon: 2.35}, settings()).
			Return(docs, nil)

		result, err := uc.Reverse(ctx, 48.85, 2.35)
		require.NoError(t, err)
		assert.Equal(t, 1, result.DocsCount)
	})

	t.Run("out of range coordinates rejected", func(t *testing.T) {
		mockRepo := &MockGeocoderRepository{}
		uc := usecase.NewGeocodeUseCase(mockRepo, nil, settings(), logger, time.Minute)

		_, err := uc.Reverse(ctx, 91.0, 2.35)
		assert.Equal(t, apperrors.ErrInvalidCoordinates, err)
		mockRepo.AssertNotCalled(t, "Reverse")
	})
}

func TestStatusUseCase_Status(t *testing.T) {
	logger := zap.NewNop()
	ctx := context.Background()

	t.Run("healthy backend", func(t *testing.T) {
		mockRepo := &MockGeocoderRepository{}
		uc := usecase.NewStatusUseCase(mockRepo, "1.4.0", logger)

		mockRepo.On("Status", ctx).Return(&domain.StorageStatus{
			Health:  "green",
			Version: "7.13.0",
		}, nil)

		body := uc.Status(ctx)
		assert.Equal(t, "green", body.Status)
		assert.Equal(t, "7.13.0", body.ElasticsearchVersion)
		assert.Equal(t, "1.4.0", body.BragiVersion)
	})

	t.Run("probe failure degrades but keeps gateway version", func(t *testing.T) {
		mockRepo := &MockGeocoderRepository{}
		uc := usecase.NewStatusUseCase(mockRepo, "1.4.0", logger)

		mockRepo.On("Status", ctx).Return(nil, errors.New("timeout"))

		body := uc.Status(ctx)
		assert.Equal(t, "unavailable", body.Status)
		assert.Equal(t, "1.4.0", body.BragiVersion)
	})
}

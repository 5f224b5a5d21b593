package usecase

import (
	"context"

	"go.uber.org/zap"

	"github.com/geocoding-gateway/internal/domain/repository"
	"github.com/geocoding-gateway/internal/usecase/dto"
)

// StatusUseCase reports backend health next to the gateway's own
// version.
type StatusUseCase struct {
	geocoderRepo repository.GeocoderRepository
	bragiVersion string
	logger       *zap.Logger
}

func NewStatusUseCase(geocoderRepo repository.GeocoderRepository, bragiVersion string, logger *zap.Logger) *StatusUseCase {
	return &StatusUseCase{
		geocoderRepo: geocoderRepo,
		bragiVersion: bragiVersion,
		logger:       logger,
	}
}

// Status never fails: when the backend probe errors the envelope
// degrades to "unavailable" while the gateway version stays populated.
func (uc *StatusUseCase) Status(ctx context.Context) dto.StatusResponseBody {
	status, err := uc.geocoderRepo.Status(ctx)
	if err != nil {
		uc.logger.Warn("Backend status probe failed", zap.Error(err))
		return dto.NewStatusResponseBody(nil, uc.bragiVersion)
	}
	return dto.NewStatusResponseBody(status, uc.bragiVersion)
}

package handler

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/geocoding-gateway/internal/pkg/errors"
	"github.com/geocoding-gateway/internal/pkg/utils"
	"github.com/geocoding-gateway/internal/pkg/validator"
	"github.com/geocoding-gateway/internal/usecase"
	"github.com/geocoding-gateway/internal/usecase/dto"
)

// GeocodeHandler serves the forward and reverse geocoding endpoints.
type GeocodeHandler struct {
	geocodeUC *usecase.GeocodeUseCase
	logger    *zap.Logger
}

func NewGeocodeHandler(geocodeUC *usecase.GeocodeUseCase, logger *zap.Logger) *GeocodeHandler {
	return &GeocodeHandler{
		geocodeUC: geocodeUC,
		logger:    logger,
	}
}

// Forward handles GET /api/v1/autocomplete.
func (h *GeocodeHandler) Forward(c *fiber.Ctx) error {
	query, err := parseGeocodeQuery(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	result, err := h.geocodeUC.Forward(c.Context(), query)
	if err != nil {
		return utils.SendError(c, err)
	}

	return c.JSON(result)
}

// ForwardExplain handles GET /api/v1/autocomplete/explain.
func (h *GeocodeHandler) ForwardExplain(c *fiber.Ctx) error {
	query, err := parseGeocodeQuery(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	result, err := h.geocodeUC.ForwardExplain(c.Context(), query)
	if err != nil {
		return utils.SendError(c, err)
	}

	return c.JSON(result)
}

// Reverse handles GET /api/v1/reverse. Unlike forward geocoding both
// coordinates are mandatory here.
func (h *GeocodeHandler) Reverse(c *fiber.Ctx) error {
	lat, latErr := strconv.ParseFloat(c.Query("lat"), 64)
	lon, lonErr := strconv.ParseFloat(c.Query("lon"), 64)
	if latErr != nil || lonErr != nil {
		return utils.SendError(c, errors.ErrInvalidCoordinates)
	}

	result, err := h.geocodeUC.Reverse(c.Context(), lat, lon)
	if err != nil {
		return utils.SendError(c, err)
	}

	return c.JSON(result)
}

// parseGeocodeQuery builds the wire query from HTTP parameters. The
// joint-field collapse itself happens later in the normalizer, here a
// parameter is either read or left nil.
func parseGeocodeQuery(c *fiber.Ctx) (dto.GeocodeQuery, error) {
	query := dto.GeocodeQuery{
		Q:          c.Query("q"),
		ShapeScope: splitParam(c.Query("shapeScope")),
		Datasets:   splitParam(c.Query("datasets")),
		ZoneTypes:  splitParam(c.Query("zoneTypes")),
		POITypes:   splitParam(c.Query("poiTypes")),
	}

	if raw := c.Query("lat"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return query, errors.ErrInvalidCoordinates
		}
		query.Lat = &v
	}
	if raw := c.Query("lon"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return query, errors.ErrInvalidCoordinates
		}
		query.Lon = &v
	}
	if raw := c.Query("shape"); raw != "" {
		query.Shape = &raw
	}

	if err := validator.Validate(&query); err != nil {
		return query, errors.ErrMissingQuery
	}
	return query, nil
}

// splitParam parses a comma-separated multi-value parameter. An absent
// parameter stays nil so joint-field presence checks remain exact.
func splitParam(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

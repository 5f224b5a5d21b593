package middleware

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/geocoding-gateway/internal/pkg/metrics"
)

// Metrics records request counts and latency per route. The registered
// route pattern is used as the label, not the raw path, to keep
// cardinality bounded.
func Metrics(provider *metrics.Provider) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		route := c.Route().Path
		method := c.Method()
		status := strconv.Itoa(c.Response().StatusCode())

		provider.RequestsTotal.WithLabelValues(method, route, status).Inc()
		provider.RequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
		return err
	}
}

package middleware

import (
	"strconv"
	"time"

	"bookstore/pkg/metrics"

	"github.com/gofiber/fiber/v2"
)

// Metrics records request count and latency per route template.
func Metrics(m *metrics.ServerMetrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		// Route path is the template (/orders/:id), keeping label cardinality bounded.
		route := c.Route().Path
		m.Requests.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		m.LatencyMS.WithLabelValues(c.Method(), route).Observe(float64(time.Since(start).Microseconds()) / 1000)
		return err
	}
}

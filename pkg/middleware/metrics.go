package middleware

import (
	"strconv"
	"time"

	"github.com/NeuralTrust/PromptGuard/pkg/common"
	"github.com/NeuralTrust/PromptGuard/pkg/infra/prometheus"
	"github.com/gofiber/fiber/v2"
)

type metricsMiddleware struct{}

func NewMetricsMiddleware() Middleware {
	return &metricsMiddleware{}
}

func (m *metricsMiddleware) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		startTime := time.Now()
		c.Locals(common.LatencyContextKey, startTime)

		err := c.Next()

		// route pattern, not the raw path, to keep label cardinality bounded
		path := c.Route().Path
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		prometheus.RequestTotal.WithLabelValues(c.Method(), path, statusClass(status)).Inc()
		if prometheus.Config.EnableLatency {
			prometheus.RequestLatency.WithLabelValues(path).
				Observe(float64(time.Since(startTime).Milliseconds()))
		}
		return err
	}
}

func statusClass(code int) string {
	if code < 100 || code > 599 {
		return "5xx"
	}
	return strconv.Itoa(code/100) + "xx"
}

package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/arnold/smartgoals-api/internal/logger"
	"github.com/arnold/smartgoals-api/internal/metrics"
)

// RequestLogger writes one structured log line per request, tags the
// response with X-Request-ID and records request metrics.
func RequestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		reqID := c.Get(fiber.HeaderXRequestID)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Locals("requestId", reqID)
		c.Set(fiber.HeaderXRequestID, reqID)

		err := c.Next()
		if err != nil {
			// Let the app error handler write the response so the
			// logged status matches what the client sees.
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		duration := time.Since(start)
		route := c.Route().Path

		metrics.RecordHTTPRequest(c.Method(), route, status, duration.Seconds())

		attrs := []any{
			"rid", reqID,
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"latency_ms", duration.Milliseconds(),
			"client_ip", c.IP(),
		}
		if err != nil {
			attrs = append(attrs, "error", err.Error())
		}
		switch {
		case status >= 500:
			logger.L().Error("http_request", attrs...)
		case status >= 400:
			logger.L().Warn("http_request", attrs...)
		default:
			logger.L().Info("http_request", attrs...)
		}
		return nil
	}
}

// RequestID returns the id assigned by RequestLogger.
func RequestID(c *fiber.Ctx) string {
	id, _ := c.Locals("requestId").(string)
	return id
}

package middleware

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/offerhub/offerhub/internal/apperr"
)

// Audit emits one structured log line per request. Errors returned by
// handlers have not been rendered yet, so their status is derived here the
// same way ErrorHandler does.
func Audit(logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = errorStatus(err)
		}
		requestID, _ := c.Locals(requestIDHeader).(string)

		attrs := []any{
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.Int("status", status),
			slog.Duration("duration", time.Since(start)),
		}
		if requestID != "" {
			attrs = append(attrs, slog.String("request_id", requestID))
		}

		switch {
		case status >= fiber.StatusInternalServerError:
			logger.Error("http.request", append(attrs, slog.Any("error", err))...)
		case err != nil:
			logger.Info("http.request", append(attrs, slog.String("error", err.Error()))...)
		default:
			logger.Info("http.request", attrs...)
		}
		return err
	}
}

func errorStatus(err error) int {
	var fe *fiber.Error
	if apperr.KindOf(err) == "" && errors.As(err, &fe) {
		return fe.Code
	}
	return apperr.Status(err)
}

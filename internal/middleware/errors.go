package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/offerhub/offerhub/internal/apperr"
)

// ErrorHandler renders handler errors as {"message": ...} with the status
// derived from their kind. Unclassified errors are logged and hidden.
func ErrorHandler(logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := errorStatus(err)
		msg := err.Error()

		var fe *fiber.Error
		switch {
		case apperr.KindOf(err) != "":
		case errors.As(err, &fe):
			msg = fe.Message
		default:
			msg = http.StatusText(http.StatusInternalServerError)
		}

		if status >= http.StatusInternalServerError && logger != nil {
			logger.Error("request.failed",
				slog.String("method", c.Method()),
				slog.String("path", c.Path()),
				slog.Int("status", status),
				slog.Any("error", err),
			)
		}
		return c.Status(status).JSON(fiber.Map{"message": msg})
	}
}

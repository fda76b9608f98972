package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
)

const (
	statusOK     = "ok"
	statusMemory = "memory"
)

// RegisterHealthRoutes adds a readiness endpoint reporting each backend.
// Backends replaced by in-memory stores report "memory".
func RegisterHealthRoutes(app *fiber.App, d Deps) {
	app.Get("/healthz", func(c *fiber.Ctx) error {
		dbStatus, redisStatus, imageStatus := statusMemory, statusMemory, statusMemory

		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if d.DB != nil {
			dbStatus = statusOK
			if err := d.DB.Ping(ctx); err != nil {
				dbStatus = err.Error()
			}
		}
		if d.Cache != nil {
			redisStatus = statusOK
			if err := d.Cache.Ping(ctx).Err(); err != nil {
				redisStatus = err.Error()
			}
		}
		if d.Images != nil {
			imageStatus = statusOK
		}

		status := http.StatusOK
		for _, s := range []string{dbStatus, redisStatus} {
			if s != statusOK && s != statusMemory {
				status = http.StatusServiceUnavailable
			}
		}
		return c.Status(status).JSON(fiber.Map{
			"status":    fiber.Map{"postgres": dbStatus, "redis": redisStatus, "images": imageStatus},
			"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		})
	})
}

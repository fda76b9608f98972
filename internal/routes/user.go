package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/offerhub/offerhub/internal/account"
)

// RegisterUserRoutes wires signup and login.
func RegisterUserRoutes(r fiber.Router, h *account.Handler) {
	group := r.Group("/user")
	group.Post("/signup", h.Signup)
	group.Post("/login", h.Login)
}

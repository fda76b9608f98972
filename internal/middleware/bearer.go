package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/offerhub/offerhub/internal/auth"
)

// Bearer resolves the Authorization header through gate and stores the
// caller's identity on the request. Requests without a valid token stop
// here with 401.
func Bearer(gate *auth.Gate) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := gate.Resolve(c.UserContext(), c.Get(fiber.HeaderAuthorization))
		if err != nil {
			return err
		}
		auth.WithIdentity(c, id)
		return c.Next()
	}
}

package auth

import "github.com/gofiber/fiber/v2"

const identityKey = "auth.identity"

// WithIdentity stores id on the request.
func WithIdentity(c *fiber.Ctx, id Identity) {
	c.Locals(identityKey, id)
}

// IdentityFrom returns the identity stored by the bearer middleware.
func IdentityFrom(c *fiber.Ctx) (Identity, bool) {
	id, ok := c.Locals(identityKey).(Identity)
	return id, ok
}

package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/offerhub/offerhub/internal/offer"
)

// RegisterOfferRoutes wires the public catalog and the bearer-protected
// write endpoints.
func RegisterOfferRoutes(r fiber.Router, h *offer.Handler, bearer fiber.Handler) {
	r.Get("/offers", h.List)
	r.Get("/offers/:id", h.Get)

	group := r.Group("/offer")
	group.Post("/publish", bearer, h.Publish)
	group.Put("/update/:id", bearer, h.Update)
	group.Delete("/delete/:id", bearer, h.Delete)
}

package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/shebloom/shebloom/internal/sos"
)

// RegisterSOSRoutes wires the emergency contact endpoints.
func RegisterSOSRoutes(api fiber.Router, h *sos.Handler) {
	contacts := api.Group("/sos-contacts")
	contacts.Get("", h.List)
	contacts.Post("", h.Add)
	contacts.Patch("/:contactId", h.Update)
	contacts.Delete("/:contactId", h.Delete)
}

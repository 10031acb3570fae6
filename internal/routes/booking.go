package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/shebloom/shebloom/internal/booking"
)

// RegisterBookingRoutes wires the mentor and booking endpoints.
func RegisterBookingRoutes(api fiber.Router, h *booking.Handler) {
	api.Get("/mentors", h.Mentors)
	api.Post("/bookings", h.Book)
	api.Get("/bookings", h.List)
	api.Post("/bookings/:bookingId/cancel", h.Cancel)
}

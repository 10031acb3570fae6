package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/shebloom/shebloom/internal/account"
)

// RegisterAuthRoutes wires the public authentication endpoints.
func RegisterAuthRoutes(api fiber.Router, h *account.Handler, loginLimit fiber.Handler) {
	auth := api.Group("/auth")
	auth.Post("/register", h.Register)
	auth.Post("/login", loginLimit, h.Login)
	auth.Post("/refresh", h.Refresh)
}
